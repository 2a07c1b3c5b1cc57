package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"vidscribe/internal/stt"
	"vidscribe/internal/transcript"
)

const (
	DefaultChunkLength = 30
	DefaultLanguage    = "en-US"
)

// Media is the part of the media decoder the pipeline depends on.
type Media interface {
	ExtractAudio(ctx context.Context, videoPath, workDir string) (string, error)
	Duration(ctx context.Context, path string) (decimal.Decimal, error)
	ExtractClip(ctx context.Context, src, dst string, start, end decimal.Decimal) error
}

// Transcriber chunks audio and sends every chunk to a speech provider.
type Transcriber struct {
	media       Media
	provider    stt.Provider
	chunkLength int
	parallel    int
	workRoot    string
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithChunkLength sets the chunk length in seconds.
func WithChunkLength(seconds int) Option {
	return func(t *Transcriber) {
		if seconds > 0 {
			t.chunkLength = seconds
		}
	}
}

// WithParallel sets how many chunks are processed at once.
func WithParallel(n int) Option {
	return func(t *Transcriber) {
		if n > 0 {
			t.parallel = n
		}
	}
}

// WithWorkRoot sets the directory per-request work directories are created in.
func WithWorkRoot(dir string) Option {
	return func(t *Transcriber) {
		t.workRoot = dir
	}
}

// New creates a Transcriber. Chunks are processed one at a time unless
// WithParallel is given.
func New(media Media, provider stt.Provider, opts ...Option) *Transcriber {
	t := &Transcriber{
		media:       media,
		provider:    provider,
		chunkLength: DefaultChunkLength,
		parallel:    1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ChunkLength returns the configured chunk length in seconds.
func (t *Transcriber) ChunkLength() int {
	return t.chunkLength
}

// ProviderName returns the name of the speech provider in use.
func (t *Transcriber) ProviderName() string {
	return t.provider.Name()
}

// TranscribeVideo extracts the audio track of videoPath and transcribes it.
func (t *Transcriber) TranscribeVideo(ctx context.Context, videoPath, language string) (*transcript.Transcript, error) {
	workDir, cleanup, err := t.newWorkDir()
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	defer cleanup()

	audioPath, err := t.media.ExtractAudio(ctx, videoPath, workDir)
	if err != nil {
		log.Printf("[Pipeline] Audio extraction failed for %s: %v", filepath.Base(videoPath), err)
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	return t.transcribe(ctx, audioPath, workDir, language)
}

// TranscribeAudio transcribes audioPath chunk by chunk.
func (t *Transcriber) TranscribeAudio(ctx context.Context, audioPath, language string) (*transcript.Transcript, error) {
	workDir, cleanup, err := t.newWorkDir()
	if err != nil {
		return nil, &StageError{Stage: StageProcess, Err: err}
	}
	defer cleanup()

	return t.transcribe(ctx, audioPath, workDir, language)
}

func (t *Transcriber) newWorkDir() (string, func(), error) {
	dir, err := os.MkdirTemp(t.workRoot, "vidscribe-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("[Pipeline] Failed to remove work directory %s: %v", dir, err)
		}
	}, nil
}

func (t *Transcriber) transcribe(ctx context.Context, audioPath, workDir, language string) (*transcript.Transcript, error) {
	if language == "" {
		language = DefaultLanguage
	}
	startTime := time.Now()

	duration, err := t.media.Duration(ctx, audioPath)
	if err != nil {
		return nil, &StageError{Stage: StageProcess, Err: err}
	}

	windows := Windows(duration, t.chunkLength)
	log.Printf("[Pipeline] Transcribing %s: duration=%ss, chunks=%d, language=%s, provider=%s",
		filepath.Base(audioPath), duration.String(), len(windows), language, t.provider.Name())

	// Each goroutine owns one slot, so fragments stay in chunk order.
	fragments := make([]transcript.Fragment, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.parallel)
	for _, w := range windows {
		w := w
		g.Go(func() error {
			frag, err := t.processChunk(gctx, audioPath, workDir, language, w)
			if err != nil {
				return err
			}
			fragments[w.Index] = frag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[Pipeline] Aborted %s: %v", filepath.Base(audioPath), err)
		return nil, &StageError{Stage: StageProcess, Err: err}
	}

	log.Printf("[Pipeline] Completed %s: chunks=%d, duration=%v", filepath.Base(audioPath), len(windows), time.Since(startTime))
	return &transcript.Transcript{
		Language:    language,
		ChunkLength: t.chunkLength,
		Duration:    duration.InexactFloat64(),
		Fragments:   fragments,
	}, nil
}

func (t *Transcriber) processChunk(ctx context.Context, audioPath, workDir, language string, w Window) (transcript.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return transcript.Fragment{}, err
	}

	chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%03d.wav", w.Index))
	if err := t.media.ExtractClip(ctx, audioPath, chunkPath, w.Start, w.End); err != nil {
		return transcript.Fragment{}, fmt.Errorf("chunk %d: %w", w.Index, err)
	}
	defer func() {
		if err := os.Remove(chunkPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[Pipeline] Failed to remove %s: %v", chunkPath, err)
		}
	}()

	res := t.provider.Transcribe(ctx, chunkPath, language)
	if err := ctx.Err(); err != nil {
		return transcript.Fragment{}, err
	}
	if res.Kind != stt.KindRecognized {
		log.Printf("[Pipeline] Chunk %d: %s", w.Index, res.Display())
	}

	return transcript.Fragment{
		Index: w.Index,
		Start: w.Start.InexactFloat64(),
		End:   w.End.InexactFloat64(),
		Kind:  res.Kind.String(),
		Text:  res.Display(),
	}, nil
}
