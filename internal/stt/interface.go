package stt

import "context"

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe runs a single recognize-once call on a short audio chunk.
	// It never fails: transport and configuration problems are reported
	// through a Result of KindClientError.
	Transcribe(ctx context.Context, audioPath, language string) Result

	// Name returns the name of the provider (e.g., "azure", "google")
	Name() string
}
