package model

import (
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/transcript"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	MediaAudio = "audio"
	MediaVideo = "video"
)

// Transcription represents one transcription request and its result
type Transcription struct {
	ID               uuid.UUID             `json:"id"`
	Filename         string                `json:"filename"`
	MediaKind        string                `json:"media_kind"`
	SourceHash       string                `json:"source_hash"`
	SizeBytes        int64                 `json:"size_bytes"`
	Provider         string                `json:"stt_provider"`
	Language         string                `json:"language"`
	ChunkLength      int                   `json:"chunk_length"`
	Status           string                `json:"status"`
	Transcript       *string               `json:"transcript,omitempty"`
	Fragments        []transcript.Fragment `json:"fragments,omitempty"`
	ErrorMessage     *string               `json:"error_message,omitempty"`
	DurationMs       *int                  `json:"duration_ms,omitempty"`
	ProcessingTimeMs *int                  `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// Reusable reports whether the record may be served for a later upload of
// the same content. Every chunk must have been heard by the service.
func (t *Transcription) Reusable() bool {
	if t.Status != StatusCompleted || len(t.Fragments) == 0 {
		return false
	}
	for _, f := range t.Fragments {
		if !f.Heard() {
			return false
		}
	}
	return true
}
