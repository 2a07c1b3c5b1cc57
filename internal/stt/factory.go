package stt

import (
	"context"
	"fmt"
	"log"
	"strings"

	"vidscribe/internal/config"
)

// CreateProvider creates an STT provider from the loaded configuration
func CreateProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	providerName := strings.ToLower(cfg.Provider)

	if providerName == "" {
		providerName = "azure"
		log.Printf("[STT Factory] provider not set, defaulting to 'azure'")
	}

	switch providerName {
	case "azure":
		return createAzureProvider(cfg.Azure)
	case "google":
		return createGoogleProvider(ctx, cfg.Google)
	case "openai":
		return createOpenAIProvider(cfg.OpenAI)
	case "fpt":
		return createFPTProvider(cfg.FPT)
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: azure, google, openai, fpt", providerName)
	}
}

func createAzureProvider(c config.AzureConfig) (Provider, error) {
	if c.SubscriptionKey == "" {
		return nil, fmt.Errorf("azure subscription key is not set")
	}
	if c.Region == "" && c.Endpoint == "" {
		return nil, fmt.Errorf("azure region is not set")
	}
	log.Printf("[STT Factory] Creating Azure STT provider: region=%s", c.Region)
	return NewAzureProvider(c.SubscriptionKey, c.Region, c.Endpoint), nil
}

// createGoogleProvider creates a Google STT provider
// KeyFile can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file
//   - A JSON string containing the service account credentials
//   - Empty, to use application default credentials
func createGoogleProvider(ctx context.Context, c config.GoogleConfig) (Provider, error) {
	isAPIKey := isGoogleAPIKey(strings.TrimSpace(c.KeyFile))
	if !isAPIKey && c.ProjectID == "" {
		return nil, fmt.Errorf("google project id is required when using a service account")
	}

	if isAPIKey {
		log.Printf("[STT Factory] Creating Google STT provider with API key")
	} else {
		log.Printf("[STT Factory] Creating Google STT provider with project: %s", c.ProjectID)
	}
	return NewGoogleProvider(ctx, c.ProjectID, c.KeyFile)
}

func createOpenAIProvider(c config.OpenAIConfig) (Provider, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	log.Printf("[STT Factory] Creating OpenAI STT provider: model=%s", c.Model)
	return NewOpenAIProvider(c.APIKey, c.Model, c.BaseURL), nil
}

func createFPTProvider(c config.FPTConfig) (Provider, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("FPT_AI_API_KEY is not set")
	}

	url := c.URL
	if url == "" {
		url = "https://api.fpt.ai/hmi/asr/v1"
		log.Printf("[STT Factory] FPT url not set, using default: %s", url)
	}

	log.Printf("[STT Factory] Creating FPT STT provider")
	return NewFPTProvider(c.APIKey, url), nil
}
