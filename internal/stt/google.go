package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleSpeechBaseURL = "https://speech.googleapis.com/v1"

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API
type GoogleProvider struct {
	projectID  string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	useAPIKey  bool // true if using API key, false if using service account
}

// isGoogleAPIKey reports whether keyData looks like an API key rather than
// a key file path or inline service-account JSON.
func isGoogleAPIKey(keyData string) bool {
	return len(keyData) == 39 && strings.HasPrefix(keyData, "AIzaSy")
}

// NewGoogleProvider creates a new Google STT provider
// keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file (e.g., "./keys/google-service-account.json")
//   - A JSON string containing the service account credentials
//   - Empty, to use application default credentials
func NewGoogleProvider(ctx context.Context, projectID, keyData string) (*GoogleProvider, error) {
	keyDataTrimmed := strings.TrimSpace(keyData)

	if isGoogleAPIKey(keyDataTrimmed) {
		log.Printf("[Google STT] Using API key authentication")
		return &GoogleProvider{
			projectID:  projectID,
			apiKey:     keyDataTrimmed,
			baseURL:    googleSpeechBaseURL,
			httpClient: &http.Client{Timeout: 90 * time.Second},
			useAPIKey:  true,
		}, nil
	}

	const scope = "https://www.googleapis.com/auth/cloud-platform"
	var creds *google.Credentials
	var err error

	switch {
	case keyDataTrimmed == "":
		creds, err = google.FindDefaultCredentials(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
	case strings.HasPrefix(keyDataTrimmed, "{"):
		log.Printf("[Google STT] Using inline service account JSON")
		creds, err = google.CredentialsFromJSON(ctx, []byte(keyDataTrimmed), scope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	default:
		log.Printf("[Google STT] Reading key file: %s", keyDataTrimmed)
		jsonData, err := os.ReadFile(keyDataTrimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file '%s': %w", keyDataTrimmed, err)
		}
		creds, err = google.CredentialsFromJSON(ctx, jsonData, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 90 * time.Second

	return &GoogleProvider{
		projectID:  projectID,
		baseURL:    googleSpeechBaseURL,
		httpClient: client,
	}, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// GoogleSTTRequest represents Google Speech-to-Text API request
type GoogleSTTRequest struct {
	Config GoogleSTTConfig `json:"config"`
	Audio  GoogleSTTAudio  `json:"audio"`
}

// GoogleSTTConfig represents recognition config
type GoogleSTTConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

// GoogleSTTAudio represents audio data
type GoogleSTTAudio struct {
	Content string `json:"content"` // Base64 encoded
}

// GoogleSTTResponse represents Google Speech-to-Text API response
type GoogleSTTResponse struct {
	Results []GoogleSTTResult `json:"results"`
	Error   *GoogleSTTError   `json:"error,omitempty"`
}

// GoogleSTTResult represents a recognition result
type GoogleSTTResult struct {
	Alternatives []GoogleSTTAlternative `json:"alternatives"`
}

// GoogleSTTAlternative represents a transcript alternative
type GoogleSTTAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// GoogleSTTError represents an API error
type GoogleSTTError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type googleErrorEnvelope struct {
	Error *GoogleSTTError `json:"error"`
}

// Transcribe transcribes one audio chunk with a synchronous recognize call
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath, language string) Result {
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return setupError(p.Name(), fmt.Errorf("failed to read audio file: %w", err))
	}

	encoding, sampleRate := getGoogleAudioConfig(filepath.Ext(audioPath))
	reqBody := GoogleSTTRequest{
		Config: GoogleSTTConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: GoogleSTTAudio{
			Content: base64.StdEncoding.EncodeToString(audioBytes),
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return setupError(p.Name(), fmt.Errorf("failed to marshal request: %w", err))
	}

	apiURL := p.baseURL + "/speech:recognize"
	if p.useAPIKey {
		apiURL += "?key=" + p.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return setupError(p.Name(), fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if p.projectID != "" && !p.useAPIKey {
		req.Header.Set("X-Goog-User-Project", p.projectID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[Google STT] HTTP error: %v", err)
		return clientError(p.Name(), fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to read response body: %w", err))
	}
	log.Printf("[Google STT] Response preview: %s", preview(body))

	if resp.StatusCode != http.StatusOK {
		var env googleErrorEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
			return canceled(p.Name(), env.Error.Status, env.Error.Message, string(body))
		}
		return canceled(p.Name(), "Error", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), string(body))
	}

	var sttResp GoogleSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return clientError(p.Name(), fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err))
	}
	if sttResp.Error != nil {
		return canceled(p.Name(), sttResp.Error.Status, sttResp.Error.Message, string(body))
	}

	// A synchronous recognize call may split speech into several results.
	var parts []string
	var confidence float64
	for _, r := range sttResp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if text := strings.TrimSpace(alt.Transcript); text != "" {
			parts = append(parts, text)
			if confidence == 0 {
				confidence = alt.Confidence
			}
		}
	}
	if len(parts) == 0 {
		log.Printf("[Google STT] No results returned")
		return noMatch(p.Name(), string(body))
	}

	transcript := strings.Join(parts, " ")
	log.Printf("[Google STT] Transcription successful: confidence=%.2f, length=%d, duration=%v",
		confidence, len(transcript), time.Since(startTime))
	return recognized(p.Name(), transcript, confidence, string(body))
}

// getGoogleAudioConfig determines encoding and sample rate based on file extension
func getGoogleAudioConfig(fileExt string) (string, int) {
	switch strings.ToLower(fileExt) {
	case ".mp3":
		return "MP3", 44100
	case ".ogg":
		return "OGG_OPUS", 48000
	case ".flac":
		return "FLAC", 44100
	default:
		// Chunks are always written as 16kHz PCM WAV
		return "LINEAR16", 16000
	}
}
