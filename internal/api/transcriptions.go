package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vidscribe/internal/model"
	"vidscribe/internal/repository"
	"vidscribe/internal/utils"
)

// createTranscription handles POST /api/v1/transcriptions
func (h *Handler) createTranscription(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file is required")
		return
	}

	raw := c.PostForm("language")
	lang, err := h.resolveLanguage(raw)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, fmt.Sprintf("invalid language code: %q", raw))
		return
	}

	kind := c.PostForm("kind")
	switch kind {
	case "":
		kind = mediaKindFromName(file.Filename)
	case model.MediaAudio, model.MediaVideo:
	default:
		utils.Error(c, http.StatusBadRequest, "kind must be audio or video")
		return
	}

	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		utils.Error(c, http.StatusBadRequest, fmt.Sprintf("file size exceeds %dMB limit", h.maxUploadBytes>>20))
		return
	}

	up, err := h.uploads.Save(file)
	if err != nil {
		log.Printf("[Upload] Error saving %s: %v", file.Filename, err)
		utils.Error(c, http.StatusInternalServerError, "failed to save file")
		return
	}
	defer up.Release()

	rec, reused := h.transcribeUpload(c.Request.Context(), up, kind, lang)
	if rec.Status == model.StatusFailed {
		utils.Failure(c, http.StatusUnprocessableEntity, displayText(rec), gin.H{"transcription": rec})
		return
	}

	utils.Success(c, gin.H{
		"transcription": rec,
		"reused":        reused,
	})
}

// listTranscriptions handles GET /api/v1/transcriptions
func (h *Handler) listTranscriptions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.Printf("Error listing transcriptions: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		item := gin.H{
			"id":           rec.ID.String(),
			"filename":     rec.Filename,
			"media_kind":   rec.MediaKind,
			"language":     rec.Language,
			"chunk_length": rec.ChunkLength,
			"status":       rec.Status,
			"created_at":   rec.CreatedAt,
		}
		if rec.DurationMs != nil {
			item["duration_ms"] = *rec.DurationMs
		}

		if text := displayText(&rec); text != "" {
			item["transcript_preview"] = preview(text, 100)
		}

		items = append(items, item)
	}

	utils.Success(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"count":  len(items),
	})
}

// getTranscription handles GET /api/v1/transcriptions/:id
func (h *Handler) getTranscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return
	}

	rec, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, "transcription not found")
		return
	}
	if err != nil {
		log.Printf("Error getting transcription %s: %v", id, err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve transcription")
		return
	}

	utils.Success(c, gin.H{"transcription": rec})
}

// preview cuts text to at most n runes.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
