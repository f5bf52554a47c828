package app

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats describes the daemon's own resource usage.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
	Goroutines int     `json:"goroutines"`
}

func selfProcess() *process.Process {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}
	return p
}

// processStats reads the current figures for p. Fields that cannot be read
// on this platform are left zero.
func processStats(p *process.Process) *ProcessStats {
	if p == nil {
		return nil
	}
	st := &ProcessStats{PID: p.Pid, Goroutines: runtime.NumGoroutine()}
	if mem, err := p.MemoryInfo(); err == nil {
		st.RSSBytes = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		st.Threads = n
	}
	return st
}
