package media

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FFmpeg decodes media through the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	run         Runner
}

// Option configures an FFmpeg.
type Option func(*FFmpeg)

// WithRunner replaces the process runner (used by tests).
func WithRunner(r Runner) Option {
	return func(f *FFmpeg) {
		f.run = r
	}
}

// New creates an FFmpeg using the given binary paths; empty paths fall back to
// "ffmpeg" and "ffprobe" on PATH.
func New(ffmpegPath, ffprobePath string, opts ...Option) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	f := &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		run:         execRunner{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// pcmArgs re-encode to the format the speech services accept: 16-bit PCM, mono, 16kHz.
func pcmArgs() []string {
	return []string{"-vn", "-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", "-f", "wav"}
}

// ExtractAudio writes the audio track of videoPath into workDir as PCM WAV and
// returns the path of the written file.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, workDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	out := filepath.Join(workDir, base+"_audio.wav")

	args := []string{"-y", "-i", videoPath}
	args = append(args, pcmArgs()...)
	args = append(args, out)

	log.Printf("[FFmpeg] Extracting audio: %s -> %s", videoPath, out)
	output, err := f.run.CombinedOutput(ctx, f.ffmpegPath, args...)
	if err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, lastLines(output, 3))
	}
	return out, nil
}

// Duration returns the container duration of path in seconds.
func (f *FFmpeg) Duration(ctx context.Context, path string) (decimal.Decimal, error) {
	output, err := f.run.CombinedOutput(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ffprobe: %w: %s", err, lastLines(output, 3))
	}
	return parseDuration(string(output))
}

// parseDuration reads the first numeric line of ffprobe output.
func parseDuration(output string) (decimal.Decimal, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "N/A" {
			continue
		}
		d, err := decimal.NewFromString(line)
		if err != nil {
			continue
		}
		if d.IsNegative() {
			return decimal.Zero, fmt.Errorf("negative duration %s", line)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("could not parse duration from ffprobe output %q", strings.TrimSpace(output))
}

// ExtractClip writes the [start, end) window of src to dst as PCM WAV.
func (f *FFmpeg) ExtractClip(ctx context.Context, src, dst string, start, end decimal.Decimal) error {
	if !end.GreaterThan(start) {
		return fmt.Errorf("empty clip window %s-%s", start, end)
	}
	args := []string{
		"-y",
		"-ss", start.String(),
		"-t", end.Sub(start).String(),
		"-i", src,
	}
	args = append(args, pcmArgs()...)
	args = append(args, dst)

	output, err := f.run.CombinedOutput(ctx, f.ffmpegPath, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg clip %s-%s: %w: %s", start, end, err, lastLines(output, 3))
	}
	return nil
}

// lastLines keeps the tail of noisy ffmpeg output for error messages.
func lastLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".webm": true,
	".flv": true, ".wmv": true, ".m4v": true, ".mpeg": true, ".mpg": true, ".3gp": true,
}

// IsVideo reports whether name has a video container extension.
func IsVideo(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}
