package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// AzureProvider implements STT using the Azure Speech short-audio REST API.
// Each call is a recognize-once request; audio must stay under the service's
// 60 second limit, which is why the pipeline chunks.
type AzureProvider struct {
	subscriptionKey string
	region          string
	endpoint        string
	httpClient      *http.Client
}

// NewAzureProvider creates a new Azure STT provider. endpoint overrides the
// regional URL and may be empty.
func NewAzureProvider(subscriptionKey, region, endpoint string) *AzureProvider {
	if endpoint == "" && region != "" {
		endpoint = fmt.Sprintf("https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", region)
	}
	return &AzureProvider{
		subscriptionKey: subscriptionKey,
		region:          region,
		endpoint:        endpoint,
		httpClient:      &http.Client{Timeout: 90 * time.Second},
	}
}

// Name returns the provider name
func (p *AzureProvider) Name() string {
	return "azure"
}

// AzureSTTResponse represents the simple-format recognition response
type AzureSTTResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"`
}

// Transcribe sends one WAV chunk to Azure and classifies the outcome
func (p *AzureProvider) Transcribe(ctx context.Context, audioPath, language string) Result {
	startTime := time.Now()

	req, err := p.newRequest(ctx, audioPath, language)
	if err != nil {
		log.Printf("[Azure STT] Failed to build recognizer request: %v", err)
		return setupError(p.Name(), err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[Azure STT] HTTP error: %v", err)
		return clientError(p.Name(), fmt.Errorf("failed to send request to Azure Speech: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to read response body: %w", err))
	}
	log.Printf("[Azure STT] Response preview: %s", preview(body))

	// Auth, quota and bad-language failures surface as cancellations, the
	// same way the Speech SDK reports them.
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Azure STT] API error: Status %d, Body: %s", resp.StatusCode, string(body))
		return canceled(p.Name(), "Error",
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), string(body))
	}

	var sttResp AzureSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to parse Azure Speech response: %w", err))
	}

	switch sttResp.RecognitionStatus {
	case "Success":
		text := strings.TrimSpace(sttResp.DisplayText)
		if text == "" {
			return noMatch(p.Name(), string(body))
		}
		log.Printf("[Azure STT] Recognized %d chars in %v", len(text), time.Since(startTime))
		return recognized(p.Name(), text, 0, string(body))
	case "NoMatch", "InitialSilenceTimeout", "BabbleTimeout":
		log.Printf("[Azure STT] No match (%s)", sttResp.RecognitionStatus)
		return noMatch(p.Name(), string(body))
	case "Error":
		return canceled(p.Name(), "Error", "the recognition service encountered an internal error", string(body))
	default:
		log.Printf("[Azure STT] Unrecognized status: %q", sttResp.RecognitionStatus)
		return Result{Kind: KindUnknown, Reason: sttResp.RecognitionStatus, Provider: p.Name(), RawResponse: string(body)}
	}
}

func (p *AzureProvider) newRequest(ctx context.Context, audioPath, language string) (*http.Request, error) {
	if p.subscriptionKey == "" {
		return nil, fmt.Errorf("azure subscription key is not configured")
	}
	if p.endpoint == "" {
		return nil, fmt.Errorf("azure region is not configured")
	}
	if language == "" {
		return nil, fmt.Errorf("language code is required")
	}

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid azure endpoint: %w", err)
	}
	q := u.Query()
	q.Set("language", language)
	q.Set("format", "simple")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(audioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.subscriptionKey)
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
