package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidscribe/internal/model"
)

type language struct {
	Code string
	Name string
}

var languages = []language{
	{"en-US", "English (United States)"},
	{"en-GB", "English (United Kingdom)"},
	{"fr-FR", "French"},
	{"de-DE", "German"},
	{"es-ES", "Spanish"},
	{"it-IT", "Italian"},
	{"pt-BR", "Portuguese (Brazil)"},
	{"hi-IN", "Hindi"},
	{"ja-JP", "Japanese"},
	{"zh-CN", "Chinese (Mandarin)"},
	{"vi-VN", "Vietnamese"},
}

// transcribePage describes one of the two upload forms.
type transcribePage struct {
	kind    string
	title   string
	field   string
	accept  string
	missing string
}

var (
	videoPage = transcribePage{
		kind:    model.MediaVideo,
		title:   "Video transcription",
		field:   "video_file",
		accept:  "video/*",
		missing: "No video file uploaded.",
	}
	audioPage = transcribePage{
		kind:    model.MediaAudio,
		title:   "Audio transcription",
		field:   "audio_file",
		accept:  "audio/*",
		missing: "No audio file uploaded.",
	}
)

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (h *Handler) videoTranscribePage(c *gin.Context) {
	h.render(c, videoPage, gin.H{})
}

func (h *Handler) audioTranscribePage(c *gin.Context) {
	h.render(c, audioPage, gin.H{})
}

func (h *Handler) videoTranscribe(c *gin.Context) {
	h.handleUpload(c, videoPage)
}

func (h *Handler) audioTranscribe(c *gin.Context) {
	h.handleUpload(c, audioPage)
}

func (h *Handler) handleUpload(c *gin.Context, page transcribePage) {
	raw := c.PostForm("language")

	file, err := c.FormFile(page.field)
	if err != nil {
		log.Printf("[Upload] %s missing: %v", page.field, err)
		h.render(c, page, gin.H{"Error": page.missing})
		return
	}

	lang, err := h.resolveLanguage(raw)
	if err != nil {
		h.render(c, page, gin.H{"Error": fmt.Sprintf("Invalid language code: %q", raw)})
		return
	}

	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		h.render(c, page, gin.H{
			"Error":    fmt.Sprintf("File size exceeds the %dMB limit.", h.maxUploadBytes>>20),
			"Selected": lang,
		})
		return
	}

	up, err := h.uploads.Save(file)
	if err != nil {
		log.Printf("[Upload] Error saving %s: %v", file.Filename, err)
		h.render(c, page, gin.H{"Error": "Failed to save the uploaded file.", "Selected": lang})
		return
	}
	defer up.Release()

	rec, reused := h.transcribeUpload(c.Request.Context(), up, page.kind, lang)
	h.render(c, page, gin.H{
		"Transcription": displayText(rec),
		"Filename":      up.Filename,
		"Reused":        reused,
		"Selected":      lang,
	})
}

func (h *Handler) render(c *gin.Context, page transcribePage, data gin.H) {
	data["Title"] = page.title
	data["Field"] = page.field
	data["Accept"] = page.accept
	data["Languages"] = languages
	if _, ok := data["Selected"]; !ok {
		data["Selected"] = h.defaultLanguage
	}
	c.HTML(http.StatusOK, "transcribe.html", data)
}
