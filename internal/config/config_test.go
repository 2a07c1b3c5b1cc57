package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFromFileAndCredentials(t *testing.T) {
	dir := t.TempDir()
	creds := writeFile(t, dir, "azure.json", `{"subscription_key":"secret","region":"westeurope"}`)
	cfgPath := writeFile(t, dir, "config.yaml", `
server:
  port: "9000"
storage:
  upload_dir: /var/uploads
database:
  path: /var/lib/vidscribe.db
transcription:
  chunk_length: 20
  parallel: 4
  default_language: fr-FR
download:
  timeout: 30s
azure:
  credentials_path: `+creds+`
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.UploadDir != "/var/uploads" {
		t.Errorf("UploadDir = %q", cfg.UploadDir)
	}
	if cfg.DatabasePath != "/var/lib/vidscribe.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.ChunkLength != 20 || cfg.Parallel != 4 {
		t.Errorf("ChunkLength/Parallel = %d/%d", cfg.ChunkLength, cfg.Parallel)
	}
	if cfg.DefaultLanguage != "fr-FR" {
		t.Errorf("DefaultLanguage = %q", cfg.DefaultLanguage)
	}
	if cfg.DownloadTimeout != 30*time.Second {
		t.Errorf("DownloadTimeout = %v", cfg.DownloadTimeout)
	}
	if cfg.Azure.SubscriptionKey != "secret" || cfg.Azure.Region != "westeurope" {
		t.Errorf("azure credentials not loaded: %+v", cfg.Azure)
	}
}

func TestLoadDefaultsWithEnv(t *testing.T) {
	t.Setenv("AZURE_SPEECH_KEY", "env-key")
	t.Setenv("AZURE_SPEECH_REGION", "eastus")
	t.Setenv("CHUNK_LENGTH", "45")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "azure" {
		t.Errorf("Provider = %q, want azure", cfg.Provider)
	}
	if cfg.ChunkLength != 45 {
		t.Errorf("ChunkLength = %d, want 45", cfg.ChunkLength)
	}
	if cfg.DefaultLanguage != "en-US" {
		t.Errorf("DefaultLanguage = %q, want en-US", cfg.DefaultLanguage)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MaxUploadBytes() != 500<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}
}

func TestEnvOverridesCredentialsFile(t *testing.T) {
	dir := t.TempDir()
	creds := writeFile(t, dir, "azure.json", `{"subscription_key":"file-key","region":"westeurope"}`)
	t.Setenv("AZURE_CREDENTIALS_PATH", creds)
	t.Setenv("AZURE_SPEECH_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Azure.SubscriptionKey != "env-key" {
		t.Errorf("SubscriptionKey = %q, want env-key", cfg.Azure.SubscriptionKey)
	}
	if cfg.Azure.Region != "westeurope" {
		t.Errorf("Region = %q, want westeurope from file", cfg.Azure.Region)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{
			name:    "missing azure key",
			wantErr: "azure subscription key is required",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"STT_PROVIDER": "watson"},
			wantErr: "unsupported STT provider",
		},
		{
			name:    "openai without key",
			env:     map[string]string{"STT_PROVIDER": "openai"},
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "bad chunk length",
			env:     map[string]string{"CHUNK_LENGTH": "abc"},
			wantErr: "invalid CHUNK_LENGTH",
		},
		{
			name:    "non-positive chunk length",
			env:     map[string]string{"CHUNK_LENGTH": "0", "AZURE_SPEECH_KEY": "k", "AZURE_SPEECH_REGION": "r"},
			wantErr: "chunk length must be positive",
		},
		{
			name:    "bad yaml",
			file:    "server: [",
			wantErr: "failed to parse config file",
		},
		{
			name:    "missing credentials file",
			env:     map[string]string{"AZURE_CREDENTIALS_PATH": filepath.Join(dir, "nope.json")},
			wantErr: "failed to read azure credentials file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, t.TempDir(), "config.yaml", tt.file)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
