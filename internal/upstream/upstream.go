// Package upstream holds the plumbing shared by every outbound HTTP adapter.
package upstream

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// BrowserUserAgent is sent to retailer sites that reject non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const maxBody = 8 << 20

// FetchError describes a failed call to an external collaborator. StatusCode is zero
// when the request never got a response.
type FetchError struct {
	Collaborator string
	Op           string
	StatusCode   int
	Err          error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Collaborator, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewClient returns an http.Client with a fixed per-call timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Do executes req and returns the body of a 2xx response. Everything else comes back
// as a *FetchError.
func Do(client *http.Client, collaborator, op string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Collaborator: collaborator, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &FetchError{Collaborator: collaborator, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Collaborator: collaborator,
			Op:           op,
			StatusCode:   resp.StatusCode,
			Err:          fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return body, nil
}
