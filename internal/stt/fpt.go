package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// FPTProvider implements STT using FPT.AI Speech-to-Text API.
// The service only recognizes Vietnamese.
type FPTProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewFPTProvider creates a new FPT STT provider
func NewFPTProvider(apiKey, url string) *FPTProvider {
	return &FPTProvider{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Name returns the provider name
func (p *FPTProvider) Name() string {
	return "fpt"
}

// FPTSTTResponse represents FPT.AI STT API response
type FPTSTTResponse struct {
	Hypotheses []struct {
		Utterance  string  `json:"utterance"`
		Confidence float64 `json:"confidence"`
	} `json:"hypotheses"`
	ErrorCode int    `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Transcribe sends one audio chunk to FPT.AI
func (p *FPTProvider) Transcribe(ctx context.Context, audioPath, language string) Result {
	if lang := isoLanguage(language); lang != "vi" {
		return setupError(p.Name(), fmt.Errorf("FPT.AI only supports Vietnamese, got language %q", language))
	}

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return setupError(p.Name(), fmt.Errorf("failed to read audio file: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(audioBytes))
	if err != nil {
		return setupError(p.Name(), fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to send request to FPT.AI: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to read response body: %w", err))
	}
	log.Printf("[FPT STT] Response preview: %s", preview(body))

	if resp.StatusCode != http.StatusOK {
		return canceled(p.Name(), "Error", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), string(body))
	}

	var sttResp FPTSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to parse FPT.AI response: %w", err))
	}

	if sttResp.ErrorCode != 0 {
		log.Printf("[FPT STT] API error code %d: %s", sttResp.ErrorCode, sttResp.Message)
		return canceled(p.Name(), fmt.Sprintf("code %d", sttResp.ErrorCode), sttResp.Message, string(body))
	}

	if len(sttResp.Hypotheses) == 0 || strings.TrimSpace(sttResp.Hypotheses[0].Utterance) == "" {
		return noMatch(p.Name(), string(body))
	}

	hyp := sttResp.Hypotheses[0]
	return recognized(p.Name(), strings.TrimSpace(hyp.Utterance), hyp.Confidence, string(body))
}
