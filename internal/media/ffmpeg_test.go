package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output []byte
	err    error
}

func (r *fakeRunner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, call{name: name, args: args})
	return r.output, r.err
}

func TestExtractAudio(t *testing.T) {
	runner := &fakeRunner{}
	f := New("/opt/ffmpeg", "", WithRunner(runner))

	out, err := f.ExtractAudio(context.Background(), "/uploads/x/talk.mp4", "/tmp/work")
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if want := filepath.Join("/tmp/work", "talk_audio.wav"); out != want {
		t.Errorf("output path = %q, want %q", out, want)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.calls))
	}
	c := runner.calls[0]
	if c.name != "/opt/ffmpeg" {
		t.Errorf("binary = %q", c.name)
	}
	joined := strings.Join(c.args, " ")
	for _, want := range []string{"-i /uploads/x/talk.mp4", "-acodec pcm_s16le", "-ac 1", "-ar 16000"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestExtractAudioFailure(t *testing.T) {
	runner := &fakeRunner{
		output: []byte("noise\nmore noise\nOutput file #0 does not contain any stream\n"),
		err:    errors.New("exit status 1"),
	}
	f := New("", "", WithRunner(runner))

	_, err := f.ExtractAudio(context.Background(), "silent.mp4", t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "does not contain any stream") {
		t.Errorf("error should carry decoder output, got %v", err)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"plain", "65.000000\n", "65", false},
		{"fraction", "12.345678\n", "12.345678", false},
		{"leading noise", "N/A\n\n42.5\n", "42.5", false},
		{"garbage", "not a number\n", "", true},
		{"empty", "", "", true},
		{"negative", "-3\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("", "ffprobe", WithRunner(&fakeRunner{output: []byte(tt.output)}))
			got, err := f.Duration(context.Background(), "a.wav")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Duration: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Duration = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractClip(t *testing.T) {
	runner := &fakeRunner{}
	f := New("ffmpeg", "", WithRunner(runner))

	err := f.ExtractClip(context.Background(), "in.wav", "chunk_002.wav",
		decimal.NewFromInt(60), decimal.RequireFromString("65.5"))
	if err != nil {
		t.Fatalf("ExtractClip: %v", err)
	}
	joined := strings.Join(runner.calls[0].args, " ")
	if !strings.Contains(joined, "-ss 60 -t 5.5 -i in.wav") {
		t.Errorf("unexpected window args: %q", joined)
	}
	if !strings.HasSuffix(joined, "chunk_002.wav") {
		t.Errorf("destination should be last arg: %q", joined)
	}
}

func TestExtractClipRejectsEmptyWindow(t *testing.T) {
	runner := &fakeRunner{}
	f := New("", "", WithRunner(runner))

	if err := f.ExtractClip(context.Background(), "in.wav", "out.wav", decimal.NewFromInt(5), decimal.NewFromInt(5)); err == nil {
		t.Fatal("expected error for empty window")
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner should not be called, got %d calls", len(runner.calls))
	}
}

func TestIsVideo(t *testing.T) {
	for name, want := range map[string]bool{
		"talk.mp4":        true,
		"TALK.MKV":        true,
		"clip.webm":       true,
		"memo.wav":        false,
		"song.mp3":        false,
		"archive.mp4.zip": false,
		"noext":           false,
	} {
		if got := IsVideo(name); got != want {
			t.Errorf("IsVideo(%q) = %v, want %v", name, got, want)
		}
	}
}
