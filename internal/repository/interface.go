package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"vidscribe/internal/model"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("transcription not found")

// TranscriptionRepository defines the interface for transcription history
type TranscriptionRepository interface {
	// Create creates a new transcription record
	Create(ctx context.Context, t *model.Transcription) error

	// UpdateResult stores the outcome (status, transcript, fragments, timings)
	UpdateResult(ctx context.Context, t *model.Transcription) error

	// GetByID retrieves a transcription by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.Transcription, error)

	// List retrieves transcriptions newest first with pagination
	List(ctx context.Context, limit, offset int) ([]model.Transcription, error)

	// FindCompleted returns the newest completed transcription of the same
	// content made by the same provider with the same language and chunk length.
	FindCompleted(ctx context.Context, sourceHash, provider, language string, chunkLength int) (*model.Transcription, error)
}
