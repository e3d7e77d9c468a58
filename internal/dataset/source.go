package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxExportBytes caps how much of a response body is read.
const maxExportBytes = 64 << 20

// Source returns the raw bytes of an export.
type Source interface {
	// Name identifies the source in logs and as the cache key.
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource downloads an export, typically a spreadsheet "export?format=csv"
// link shared as readable by anyone with the link.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource builds an HTTPSource whose client gives up after timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Name() string {
	return s.URL
}

// Fetch performs one GET. There is no retry: a failure fails the refresh.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, NewSourceError(ErrorUnavailable, s.URL, "build request", err)
	}
	req.Header.Set("Accept", "text/csv")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransportError(s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, NewSourceError(ErrorBadStatus, s.URL, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes+1))
	if err != nil {
		return nil, classifyTransportError(s.URL, err)
	}
	if len(body) > maxExportBytes {
		return nil, NewSourceError(ErrorBadData, s.URL, "export exceeds size limit", nil)
	}
	return body, nil
}

func classifyTransportError(source string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewSourceError(ErrorTimeout, source, "request timed out", err)
	}
	return NewSourceError(ErrorUnavailable, source, "request failed", err)
}

// FileSource reads an export from disk, for offline checks.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return "file://" + s.Path
}

func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	body, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, NewSourceError(ErrorUnavailable, s.Name(), "read file", err)
	}
	return body, nil
}
