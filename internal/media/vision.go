package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aiox-platform/travelbot/internal/config"
	"github.com/aiox-platform/travelbot/internal/metrics"
)

// Vision calls the Azure Computer Vision describe operation.
type Vision struct {
	client   *http.Client
	key      string
	endpoint string
}

func NewVision(cfg config.VisionConfig) *Vision {
	return &Vision{
		client:   &http.Client{Timeout: 30 * time.Second},
		key:      cfg.Key,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
}

// Configured reports whether a key and endpoint are set.
func (v *Vision) Configured() bool {
	return v.key != "" && v.endpoint != ""
}

// Describe returns the top caption for image, or "" when the service has none.
func (v *Vision) Describe(ctx context.Context, image []byte) (string, error) {
	reqURL := v.endpoint + "/vision/v3.2/describe?maxCandidates=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("building vision request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", v.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	resp, err := v.client.Do(req)
	metrics.ProviderCallDuration.WithLabelValues("vision").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading vision response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Description struct {
			Captions []struct {
				Text       string  `json:"text"`
				Confidence float64 `json:"confidence"`
			} `json:"captions"`
		} `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding vision response: %w", err)
	}
	if len(result.Description.Captions) == 0 {
		return "", nil
	}
	return result.Description.Captions[0].Text, nil
}
