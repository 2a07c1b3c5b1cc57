package api

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/media"
	"vidscribe/internal/model"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/repository"
	"vidscribe/internal/storage"
	"vidscribe/internal/stt"
	"vidscribe/internal/transcript"
)

// resolveLanguage applies the default language to an empty form value and
// canonicalizes the tag.
func (h *Handler) resolveLanguage(code string) (string, error) {
	return stt.ResolveLanguage(code, h.defaultLanguage)
}

// mediaKindFromName infers audio or video from the file extension.
func mediaKindFromName(name string) string {
	if media.IsVideo(name) {
		return model.MediaVideo
	}
	return model.MediaAudio
}

// transcribeUpload runs the pipeline on a saved upload and records the
// result. A reusable transcription of the same content, provider, language
// and chunk length is returned instead of calling the speech service again.
// The returned bool reports reuse.
func (h *Handler) transcribeUpload(ctx context.Context, up *storage.Upload, kind, language string) (*model.Transcription, bool) {
	chunkLength := h.transcriber.ChunkLength()
	provider := h.transcriber.ProviderName()

	prev, err := h.repo.FindCompleted(ctx, up.Hash, provider, language, chunkLength)
	switch {
	case err == nil && prev.Reusable():
		log.Printf("[Transcribe] Reusing transcription %s for %s", prev.ID, up.Filename)
		return prev, true
	case err == nil:
		log.Printf("[Transcribe] Transcription %s has unanswered chunks, running %s again", prev.ID, up.Filename)
	case !errors.Is(err, repository.ErrNotFound):
		log.Printf("[Transcribe] Warning: reuse lookup failed: %v", err)
	}

	rec := &model.Transcription{
		ID:          uuid.New(),
		Filename:    up.Filename,
		MediaKind:   kind,
		SourceHash:  up.Hash,
		SizeBytes:   up.Size,
		Provider:    provider,
		Language:    language,
		ChunkLength: chunkLength,
		Status:      model.StatusProcessing,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.repo.Create(ctx, rec); err != nil {
		log.Printf("[Transcribe] Warning: failed to record transcription: %v", err)
	}

	log.Printf("[Transcribe] %s %s: file=%s, language=%s", rec.ID, kind, up.Filename, language)
	startTime := time.Now()

	tr, err := h.run(ctx, up.Path, kind, language)
	processingMs := int(time.Since(startTime).Milliseconds())
	rec.ProcessingTimeMs = &processingMs

	if err != nil {
		msg := pipeline.UserMessage(err)
		log.Printf("[Transcribe] %s failed: %v", rec.ID, err)
		rec.Status = model.StatusFailed
		rec.ErrorMessage = &msg
	} else {
		text := tr.String()
		durationMs := int(tr.Duration * 1000)
		rec.Status = model.StatusCompleted
		rec.Transcript = &text
		rec.Fragments = tr.Fragments
		rec.DurationMs = &durationMs
		log.Printf("[Transcribe] %s completed: chunks=%d, processing=%dms", rec.ID, len(tr.Fragments), processingMs)
	}

	// The request context may already be canceled; persist the outcome anyway.
	if err := h.repo.UpdateResult(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[Transcribe] Warning: failed to store result for %s: %v", rec.ID, err)
	}
	return rec, false
}

func (h *Handler) run(ctx context.Context, path, kind, language string) (*transcript.Transcript, error) {
	if kind == model.MediaVideo {
		return h.transcriber.TranscribeVideo(ctx, path, language)
	}
	return h.transcriber.TranscribeAudio(ctx, path, language)
}

// displayText is what the pages show in place of a transcript.
func displayText(rec *model.Transcription) string {
	if rec.Status == model.StatusFailed && rec.ErrorMessage != nil {
		return *rec.ErrorMessage
	}
	if rec.Transcript != nil {
		return *rec.Transcript
	}
	return ""
}
