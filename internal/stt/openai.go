package stt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements STT using the OpenAI audio transcription API
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI STT provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe sends one chunk to the transcription endpoint
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath, language string) Result {
	if _, err := os.Stat(audioPath); err != nil {
		return setupError(p.Name(), fmt.Errorf("failed to read audio file: %w", err))
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: audioPath,
		Language: isoLanguage(language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		log.Printf("[OpenAI STT] API error: %v", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return canceled(p.Name(), "Error", fmt.Sprintf("HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message), "")
		}
		return clientError(p.Name(), fmt.Errorf("OpenAI transcription request failed: %w", err))
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return noMatch(p.Name(), "")
	}
	log.Printf("[OpenAI STT] Transcription successful: length=%d, duration=%v", len(text), time.Since(startTime))
	return recognized(p.Name(), text, 0, resp.Text)
}
