package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpeg converts ogg audio to the 16 kHz mono PCM wav the speech service accepts.
type FFmpeg struct {
	path string
}

// NewFFmpeg uses the executable at path, or "ffmpeg" from PATH when empty.
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path}
}

// ToWAV runs ffmpeg in a private temp directory. A non-zero exit is an error
// carrying ffmpeg's stderr.
func (f *FFmpeg) ToWAV(ctx context.Context, ogg []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "travelbot-audio-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input.ogg")
	outPath := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(inPath, ogg, 0o600); err != nil {
		return nil, fmt.Errorf("writing ogg input: %w", err)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", inPath,
		"-ac", "1", "-ar", "16000", "-acodec", "pcm_s16le",
		outPath,
	}
	cmd := exec.CommandContext(ctx, f.path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("ffmpeg command failed", "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	wav, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading wav output: %w", err)
	}
	return wav, nil
}
