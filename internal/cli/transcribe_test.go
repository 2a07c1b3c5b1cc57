package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/transcript"
)

type fakeTranscriber struct {
	err      error
	kind     string
	language string
}

func (f *fakeTranscriber) TranscribeAudio(ctx context.Context, audioPath, language string) (*transcript.Transcript, error) {
	f.kind, f.language = "audio", language
	return f.result(), f.err
}

func (f *fakeTranscriber) TranscribeVideo(ctx context.Context, videoPath, language string) (*transcript.Transcript, error) {
	f.kind, f.language = "video", language
	return f.result(), f.err
}

func (f *fakeTranscriber) result() *transcript.Transcript {
	if f.err != nil {
		return nil
	}
	return &transcript.Transcript{Fragments: []transcript.Fragment{
		{Index: 0, Start: 0, End: 30, Text: "first"},
		{Index: 1, Start: 30, End: 42, Text: "No match found."},
	}}
}

func testEnv(ft *fakeTranscriber) (*Env, *bytes.Buffer, *config.Config) {
	var out bytes.Buffer
	cfg := &config.Config{ChunkLength: 30, Parallel: 1, DefaultLanguage: "en-US"}
	return &Env{
		Out:        &out,
		LoadConfig: func(string) (*config.Config, error) { return cfg, nil },
		NewTranscriber: func(ctx context.Context, c *config.Config) (Transcriber, error) {
			return ft, nil
		},
	}, &out, cfg
}

func createTestFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func createTranscribeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}

func TestClampParallel(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{-5, 1}, {0, 1}, {1, 1}, {4, 4}, {MaxParallel, MaxParallel}, {100, MaxParallel},
	}
	for _, tt := range tests {
		if got := ClampParallel(tt.input); got != tt.want {
			t.Errorf("ClampParallel(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseTranscribeOptions(t *testing.T) {
	opts, err := ParseTranscribeOptions("talk.MP4", "", "fr-FR", 20, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if !opts.Video {
		t.Errorf("video extension not detected")
	}

	if _, err := ParseTranscribeOptions("", "", "", 0, 0, false); err == nil {
		t.Errorf("expected error for empty input")
	}
	if _, err := ParseTranscribeOptions("a.wav", "", "", -1, 0, false); err == nil {
		t.Errorf("expected error for negative chunk length")
	}
}

func TestRunTranscribe(t *testing.T) {
	ft := &fakeTranscriber{}
	env, out, cfg := testEnv(ft)

	opts, err := ParseTranscribeOptions(createTestFile(t, "memo.wav"), "", "", 15, 20, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := RunTranscribe(createTranscribeCmd(context.Background()), env, opts); err != nil {
		t.Fatalf("RunTranscribe: %v", err)
	}

	want := "[00:00:00 - 00:00:30] first\n[00:00:30 - 00:00:42] No match found.\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if ft.kind != "audio" || ft.language != "en-US" {
		t.Errorf("kind=%q language=%q", ft.kind, ft.language)
	}
	if cfg.ChunkLength != 15 || cfg.Parallel != MaxParallel {
		t.Errorf("flags not applied: chunk=%d parallel=%d", cfg.ChunkLength, cfg.Parallel)
	}
}

func TestRunTranscribeErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		env, _, _ := testEnv(&fakeTranscriber{})
		opts, _ := ParseTranscribeOptions("/nonexistent/file.wav", "", "", 0, 0, false)
		err := RunTranscribe(createTranscribeCmd(context.Background()), env, opts)
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("err = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("invalid language", func(t *testing.T) {
		ft := &fakeTranscriber{}
		env, _, _ := testEnv(ft)
		opts, _ := ParseTranscribeOptions(createTestFile(t, "memo.wav"), "", "en-US;rm", 0, 0, false)
		err := RunTranscribe(createTranscribeCmd(context.Background()), env, opts)
		if err == nil || !strings.Contains(err.Error(), "invalid language code") {
			t.Errorf("err = %v", err)
		}
		if ft.kind != "" {
			t.Errorf("transcriber called for %q", ft.kind)
		}
	})

	t.Run("pipeline failure", func(t *testing.T) {
		ft := &fakeTranscriber{err: &pipeline.StageError{Stage: pipeline.StageExtract, Err: errors.New("no audio stream")}}
		env, out, _ := testEnv(ft)
		opts, _ := ParseTranscribeOptions(createTestFile(t, "clip.mkv"), "", "vi-VN", 0, 0, false)
		err := RunTranscribe(createTranscribeCmd(context.Background()), env, opts)
		if err == nil || err.Error() != "Error extracting audio from video: no audio stream" {
			t.Errorf("err = %v", err)
		}
		if ft.kind != "video" || ft.language != "vi-VN" {
			t.Errorf("kind=%q language=%q", ft.kind, ft.language)
		}
		if out.Len() != 0 {
			t.Errorf("partial output written: %q", out.String())
		}
	})
}

func TestRootCommand(t *testing.T) {
	ft := &fakeTranscriber{}
	env, out, _ := testEnv(ft)

	root := NewRootCmd(env)
	root.SetArgs([]string{"transcribe", createTestFile(t, "memo.wav"), "--language", "de-DE"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ft.language != "de-DE" || !strings.Contains(out.String(), "first") {
		t.Errorf("language=%q output=%q", ft.language, out.String())
	}
}
