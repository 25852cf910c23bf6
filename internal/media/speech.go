package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aiox-platform/travelbot/internal/config"
	"github.com/aiox-platform/travelbot/internal/metrics"
)

// Recognition statuses that mean "nothing confident was heard".
var noMatchStatuses = map[string]bool{
	"NoMatch":               true,
	"InitialSilenceTimeout": true,
	"BabbleTimeout":         true,
}

// Speech calls the Azure Speech short-audio recognition REST endpoint.
type Speech struct {
	client   *http.Client
	key      string
	region   string
	language string
	endpoint string
}

func NewSpeech(cfg config.SpeechConfig) *Speech {
	endpoint := cfg.Endpoint
	if endpoint == "" && cfg.Region != "" {
		endpoint = fmt.Sprintf("https://%s.stt.speech.microsoft.com", cfg.Region)
	}
	return &Speech{
		client:   &http.Client{Timeout: 60 * time.Second},
		key:      cfg.Key,
		region:   cfg.Region,
		language: cfg.Language,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

// Configured reports whether a subscription key and region are set.
func (s *Speech) Configured() bool {
	return s.key != "" && s.region != ""
}

// Recognize returns the display text of the first utterance in wav, or ""
// when the service found no confident match.
func (s *Speech) Recognize(ctx context.Context, wav []byte) (string, error) {
	q := url.Values{}
	q.Set("language", s.language)
	reqURL := s.endpoint + "/speech/recognition/conversation/cognitiveservices/v1?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("building speech request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.ProviderCallDuration.WithLabelValues("speech").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading speech response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		RecognitionStatus string `json:"RecognitionStatus"`
		DisplayText       string `json:"DisplayText"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding speech response: %w", err)
	}

	switch {
	case result.RecognitionStatus == "Success":
		return strings.TrimSpace(result.DisplayText), nil
	case noMatchStatuses[result.RecognitionStatus]:
		return "", nil
	default:
		return "", fmt.Errorf("speech recognition status %q", result.RecognitionStatus)
	}
}
