package stt

import "fmt"

// Kind classifies the outcome of one recognition call.
type Kind int

const (
	KindRecognized Kind = iota
	KindNoMatch
	KindCanceled
	KindUnknown
	KindClientError
)

func (k Kind) String() string {
	switch k {
	case KindRecognized:
		return "recognized"
	case KindNoMatch:
		return "no_match"
	case KindCanceled:
		return "canceled"
	case KindUnknown:
		return "unknown"
	case KindClientError:
		return "client_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result represents the result of a speech-to-text recognition call
type Result struct {
	Kind        Kind
	Transcript  string  // The recognized text (KindRecognized only)
	Confidence  float64 // Confidence score (0.0-1.0), may be 0 if not provided
	Reason      string  // Cancellation reason or unrecognized service status
	Detail      string  // Error detail for KindCanceled / KindClientError
	Setup       bool    // KindClientError raised while building the request
	Provider    string  // The provider used (e.g., "azure", "google")
	RawResponse string  // Raw response from the provider (for debugging/logging)
}

// Display renders the result as the text of a transcript line.
func (r Result) Display() string {
	switch r.Kind {
	case KindRecognized:
		return r.Transcript
	case KindNoMatch:
		return "No match found."
	case KindCanceled:
		return fmt.Sprintf("Speech Recognition canceled: %s. Error: %s", r.Reason, r.Detail)
	case KindUnknown:
		return fmt.Sprintf("Speech recognition failed. Reason: %s", r.Reason)
	default:
		if r.Setup {
			return "Error creating speech recognizer: " + r.Detail
		}
		return "Error transcribing audio: " + r.Detail
	}
}

func recognized(provider, text string, confidence float64, raw string) Result {
	return Result{Kind: KindRecognized, Transcript: text, Confidence: confidence, Provider: provider, RawResponse: raw}
}

func noMatch(provider, raw string) Result {
	return Result{Kind: KindNoMatch, Provider: provider, RawResponse: raw}
}

func canceled(provider, reason, detail, raw string) Result {
	return Result{Kind: KindCanceled, Reason: reason, Detail: detail, Provider: provider, RawResponse: raw}
}

func clientError(provider string, err error) Result {
	return Result{Kind: KindClientError, Detail: err.Error(), Provider: provider}
}

func setupError(provider string, err error) Result {
	return Result{Kind: KindClientError, Detail: err.Error(), Setup: true, Provider: provider}
}

// preview trims a response body for logging.
func preview(body []byte) string {
	s := string(body)
	if len(s) > 500 {
		s = s[:500] + "..."
	}
	return s
}
