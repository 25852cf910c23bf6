// Package media fetches attachments and turns audio and images into text.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aiox-platform/travelbot/internal/metrics"
)

// MaxAttachmentBytes caps how much of an attachment is read.
const MaxAttachmentBytes = 25 << 20

// Fetcher downloads attachment content over HTTP.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch returns the body of url. Transport failures and non-2xx statuses are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building attachment request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	metrics.ProviderCallDuration.WithLabelValues("attachment").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetching attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching attachment: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	if len(data) > MaxAttachmentBytes {
		return nil, fmt.Errorf("attachment exceeds %d bytes", MaxAttachmentBytes)
	}
	return data, nil
}
