package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/virtup/virtup/internal/retry"
)

// probeTimeout bounds the pre-fetch reachability check. The transfer itself
// has no overall deadline: disk images are large and the context governs
// cancellation.
const probeTimeout = 30 * time.Second

// httpSource fetches an artifact over HTTP(S).
type httpSource struct {
	url    string
	client *http.Client
}

func newHTTPSource(rawURL string) *httpSource {
	return &httpSource{
		url:    rawURL,
		client: &http.Client{},
	}
}

// Probe issues a HEAD request and fails on connection errors or non-2xx
// status codes.
func (s *httpSource) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Status errors never heal on their own, unlike connection drops.
		return retry.Fatal(fmt.Errorf("unexpected status %s", resp.Status))
	}
	return nil
}

// Open starts the GET transfer.
func (s *httpSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, retry.Fatal(fmt.Errorf("unexpected status %s", resp.Status))
	}

	return resp.Body, nil
}
