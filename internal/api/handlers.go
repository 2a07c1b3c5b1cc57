package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidscribe/internal/repository"
	"vidscribe/internal/storage"
	"vidscribe/internal/transcript"
	"vidscribe/internal/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Transcriber runs the chunked transcription pipeline.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioPath, language string) (*transcript.Transcript, error)
	TranscribeVideo(ctx context.Context, videoPath, language string) (*transcript.Transcript, error)
	ChunkLength() int
	ProviderName() string
}

// Handler serves the web pages, the JSON API and the download proxy.
type Handler struct {
	transcriber     Transcriber
	uploads         *storage.Uploads
	repo            repository.TranscriptionRepository
	httpClient      *http.Client
	defaultLanguage string
	maxUploadBytes  int64
	workRoot        string
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaultLanguage sets the language used when a form leaves it empty.
func WithDefaultLanguage(lang string) Option {
	return func(h *Handler) {
		if lang != "" {
			h.defaultLanguage = lang
		}
	}
}

// WithMaxUploadBytes limits the size of accepted uploads. Zero disables the check.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		h.maxUploadBytes = n
	}
}

// WithDownloadTimeout bounds a whole download proxy request.
func WithDownloadTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.httpClient = &http.Client{Timeout: d}
	}
}

// WithWorkRoot sets where download proxy temp directories are created.
func WithWorkRoot(dir string) Option {
	return func(h *Handler) {
		h.workRoot = dir
	}
}

// NewHandler wires the handler dependencies
func NewHandler(t Transcriber, uploads *storage.Uploads, repo repository.TranscriptionRepository, opts ...Option) *Handler {
	h := &Handler{
		transcriber:     t,
		uploads:         uploads,
		repo:            repo,
		httpClient:      &http.Client{Timeout: 10 * time.Minute},
		defaultLanguage: "en-US",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	// Health check
	r.GET("/health", h.healthCheck)

	// Web pages
	r.GET("/", h.index)
	r.GET("/video_transcribe", h.videoTranscribePage)
	r.POST("/video_transcribe", h.videoTranscribe)
	r.GET("/audio_transcribe", h.audioTranscribePage)
	r.POST("/audio_transcribe", h.audioTranscribe)

	// Download proxy
	r.GET("/download", h.downloadPage)
	r.POST("/download", h.downloadVideo)

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/transcriptions", h.createTranscription)
		v1.GET("/transcriptions", h.listTranscriptions)
		v1.GET("/transcriptions/:id", h.getTranscription)
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":       "ok",
		"service":      "vidscribe",
		"stt_provider": h.transcriber.ProviderName(),
	})
}
