package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// get issues a GET for path on the daemon at baseURL. The caller closes the
// response body.
func get(baseURL, path, accept string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "usagebarctl/"+Version)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return httpClient.Do(req)
}

// getJSON decodes the JSON body of path into dst. Non-200 replies become an
// error carrying the daemon's message, if any.
func getJSON(baseURL, path string, dst any) error {
	resp, err := get(baseURL, path, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if msg := strings.TrimSpace(string(b)); msg != "" {
			return fmt.Errorf("%s: HTTP %s: %s", path, resp.Status, msg)
		}
		return fmt.Errorf("%s: HTTP %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode: %w", path, err)
	}
	return nil
}

// getStatus returns only the HTTP status code of path.
func getStatus(baseURL, path string) (int, error) {
	resp, err := get(baseURL, path, "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
