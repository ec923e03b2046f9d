package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps what an upstream can make us buffer.
const maxResponseBytes = 1 << 20

var ErrResponseTooLarge = errors.New("upstream response exceeds size limit")

// StatusError carries the status of a non-2xx upstream reply.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// jsonGetter issues read-only JSON calls against one upstream.
type jsonGetter struct {
	baseURL string
	http    *http.Client
}

func newJSONGetter(baseURL string, timeout time.Duration) *jsonGetter {
	return &jsonGetter{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// get decodes a 2xx body into target. Other statuses surface as *StatusError
// with the body drained.
func (g *jsonGetter) get(ctx context.Context, path string, target any) error {
	url := g.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	if len(body) > maxResponseBytes {
		return ErrResponseTooLarge
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
