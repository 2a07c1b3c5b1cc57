package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/media"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/stt"
	"vidscribe/internal/transcript"
)

// MaxParallel caps concurrent chunk requests to stay under provider rate limits.
const MaxParallel = 8

var ErrFileNotFound = errors.New("file not found")

// Transcriber is the pipeline as seen by the CLI.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioPath, language string) (*transcript.Transcript, error)
	TranscribeVideo(ctx context.Context, videoPath, language string) (*transcript.Transcript, error)
}

// Env holds what a command needs from the outside world.
type Env struct {
	Out            io.Writer
	LoadConfig     func(path string) (*config.Config, error)
	NewTranscriber func(ctx context.Context, cfg *config.Config) (Transcriber, error)
}

// DefaultEnv uses the real config loader, speech provider and ffmpeg.
func DefaultEnv() *Env {
	return &Env{
		Out:            os.Stdout,
		LoadConfig:     config.Load,
		NewTranscriber: NewPipeline,
	}
}

// NewPipeline builds the transcription pipeline from configuration.
func NewPipeline(ctx context.Context, cfg *config.Config) (Transcriber, error) {
	provider, err := stt.CreateProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create STT provider: %w", err)
	}
	ff := media.New(cfg.FFmpegPath, cfg.FFprobePath)
	return pipeline.New(ff, provider,
		pipeline.WithChunkLength(cfg.ChunkLength),
		pipeline.WithParallel(cfg.Parallel),
		pipeline.WithWorkRoot(cfg.WorkDir),
	), nil
}

// TranscribeOptions are the validated flags of the transcribe command.
type TranscribeOptions struct {
	InputPath   string
	ConfigPath  string
	Language    string
	ChunkLength int
	Parallel    int
	Video       bool
}

// ClampParallel keeps n within [1, MaxParallel].
func ClampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxParallel {
		return MaxParallel
	}
	return n
}

// ParseTranscribeOptions validates flag values.
func ParseTranscribeOptions(inputPath, configPath, language string, chunkLength, parallel int, video bool) (TranscribeOptions, error) {
	if inputPath == "" {
		return TranscribeOptions{}, errors.New("input file is required")
	}
	if chunkLength < 0 {
		return TranscribeOptions{}, fmt.Errorf("chunk length must be positive, got %d", chunkLength)
	}
	return TranscribeOptions{
		InputPath:   inputPath,
		ConfigPath:  configPath,
		Language:    language,
		ChunkLength: chunkLength,
		Parallel:    parallel,
		Video:       video || media.IsVideo(inputPath),
	}, nil
}

// RunTranscribe transcribes one local file and prints the transcript.
func RunTranscribe(cmd *cobra.Command, env *Env, opts TranscribeOptions) error {
	if _, err := os.Stat(opts.InputPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, opts.InputPath)
	}

	cfg, err := env.LoadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.ChunkLength > 0 {
		cfg.ChunkLength = opts.ChunkLength
	}
	if opts.Parallel != 0 {
		cfg.Parallel = ClampParallel(opts.Parallel)
	}
	language, err := stt.ResolveLanguage(opts.Language, cfg.DefaultLanguage)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	t, err := env.NewTranscriber(ctx, cfg)
	if err != nil {
		return err
	}

	var tr *transcript.Transcript
	if opts.Video {
		tr, err = t.TranscribeVideo(ctx, opts.InputPath, language)
	} else {
		tr, err = t.TranscribeAudio(ctx, opts.InputPath, language)
	}
	if err != nil {
		return errors.New(pipeline.UserMessage(err))
	}

	_, err = fmt.Fprint(env.Out, tr.String())
	return err
}

func newTranscribeCmd(env *Env, configPath *string) *cobra.Command {
	var (
		language    string
		chunkLength int
		parallel    int
		video       bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe a local audio or video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ParseTranscribeOptions(args[0], *configPath, language, chunkLength, parallel, video)
			if err != nil {
				return err
			}
			return RunTranscribe(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "BCP-47 language code (default from config, en-US)")
	cmd.Flags().IntVar(&chunkLength, "chunk-length", 0, "chunk length in seconds (default from config, 30)")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "chunks transcribed at once")
	cmd.Flags().BoolVar(&video, "video", false, "extract the audio track first (implied for video extensions)")
	return cmd
}
