package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Converter re-encodes voice notes to 16 kHz mono PCM WAV with ffmpeg.
// Audio is streamed through stdin/stdout, nothing touches the disk.
type Converter struct {
	binary string
	logger *zap.Logger
}

// NewConverter creates a converter using the ffmpeg binary at path
func NewConverter(path string, logger *zap.Logger) *Converter {
	if path == "" {
		path = "ffmpeg"
	}
	return &Converter{binary: path, logger: logger}
}

// Available reports whether the ffmpeg binary can be found
func (c *Converter) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// ToWAV converts an Ogg/Opus clip to WAV
func (c *Converter) ToWAV(ctx context.Context, clip []byte) ([]byte, error) {
	if len(clip) == 0 {
		return nil, ErrEmptyClip
	}

	// ffmpeg -i pipe:0 -ac 1 -ar 16000 -f wav pipe:1
	cmd := exec.CommandContext(ctx, c.binary,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-ac", "1", "-ar", "16000",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(clip)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	if c.logger != nil {
		c.logger.Debug("🔊 Converted voice note to WAV",
			zap.Int("input_bytes", len(clip)),
			zap.Int("output_bytes", stdout.Len()),
		)
	}
	return stdout.Bytes(), nil
}
