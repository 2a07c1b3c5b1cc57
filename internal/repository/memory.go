package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"vidscribe/internal/model"
	"vidscribe/internal/transcript"
)

// memoryRepository keeps transcriptions in process memory. Used when no
// database path is configured.
type memoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Transcription
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[uuid.UUID]*model.Transcription)}
}

func (r *memoryRepository) Create(ctx context.Context, t *model.Transcription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = clone(t)
	return nil
}

func (r *memoryRepository) UpdateResult(ctx context.Context, t *model.Transcription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[t.ID]
	if !ok {
		return ErrNotFound
	}
	rec.Status = t.Status
	if t.Transcript != nil {
		rec.Transcript = t.Transcript
	}
	if t.Fragments != nil {
		rec.Fragments = append([]transcript.Fragment(nil), t.Fragments...)
	}
	if t.ErrorMessage != nil {
		rec.ErrorMessage = t.ErrorMessage
	}
	if t.DurationMs != nil {
		rec.DurationMs = t.DurationMs
	}
	if t.ProcessingTimeMs != nil {
		rec.ProcessingTimeMs = t.ProcessingTimeMs
	}
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to avoid race conditions
	return clone(rec), nil
}

func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]model.Transcription, error) {
	r.mu.Lock()
	all := make([]model.Transcription, 0, len(r.items))
	for _, rec := range r.items {
		all = append(all, *clone(rec))
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryRepository) FindCompleted(ctx context.Context, sourceHash, provider, language string, chunkLength int) (*model.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *model.Transcription
	for _, rec := range r.items {
		if rec.Status != model.StatusCompleted || rec.SourceHash != sourceHash ||
			rec.Provider != provider || rec.Language != language || rec.ChunkLength != chunkLength {
			continue
		}
		if best == nil || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return clone(best), nil
}

func clone(t *model.Transcription) *model.Transcription {
	c := *t
	if t.Fragments != nil {
		c.Fragments = append([]transcript.Fragment(nil), t.Fragments...)
	}
	return &c
}
