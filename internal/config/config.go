package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string
	UploadDir       string
	WorkDir         string
	DatabasePath    string
	FFmpegPath      string
	FFprobePath     string
	Provider        string
	ChunkLength     int
	Parallel        int
	DefaultLanguage string
	MaxUploadMB     int64
	DownloadTimeout time.Duration

	Azure  AzureConfig
	Google GoogleConfig
	FPT    FPTConfig
	OpenAI OpenAIConfig
}

type AzureConfig struct {
	CredentialsPath string
	SubscriptionKey string
	Region          string
	Endpoint        string
}

type GoogleConfig struct {
	ProjectID string
	KeyFile   string
}

type FPTConfig struct {
	APIKey string
	URL    string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		UploadDir   string `yaml:"upload_dir"`
		WorkDir     string `yaml:"work_dir"`
		MaxUploadMB int64  `yaml:"max_upload_mb"`
	} `yaml:"storage"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Media struct {
		FFmpegPath  string `yaml:"ffmpeg_path"`
		FFprobePath string `yaml:"ffprobe_path"`
	} `yaml:"media"`
	Transcription struct {
		Provider        string `yaml:"provider"`
		ChunkLength     int    `yaml:"chunk_length"`
		Parallel        int    `yaml:"parallel"`
		DefaultLanguage string `yaml:"default_language"`
	} `yaml:"transcription"`
	Download struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"download"`
	Azure struct {
		CredentialsPath string `yaml:"credentials_path"`
		Endpoint        string `yaml:"endpoint"`
	} `yaml:"azure"`
	Google struct {
		ProjectID string `yaml:"project_id"`
		KeyFile   string `yaml:"key_file"`
	} `yaml:"google"`
	FPT struct {
		URL string `yaml:"url"`
	} `yaml:"fpt"`
	OpenAI struct {
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
}

// azureCredentials is the layout of the file referenced by azure.credentials_path
type azureCredentials struct {
	SubscriptionKey string `json:"subscription_key"`
	Region          string `json:"region"`
}

// Load builds the configuration from defaults, the optional YAML file at
// path and environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:            "8080",
		UploadDir:       "uploads",
		Provider:        "azure",
		ChunkLength:     30,
		Parallel:        1,
		DefaultLanguage: "en-US",
		MaxUploadMB:     500,
		DownloadTimeout: 10 * time.Minute,
		FPT:             FPTConfig{URL: "https://api.fpt.ai/hmi/asr/v1"},
		OpenAI:          OpenAIConfig{Model: "whisper-1"},
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Azure.CredentialsPath != "" && (cfg.Azure.SubscriptionKey == "" || cfg.Azure.Region == "") {
		if err := cfg.loadAzureCredentials(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Server.Port)
	setString(&c.UploadDir, fc.Storage.UploadDir)
	setString(&c.WorkDir, fc.Storage.WorkDir)
	if fc.Storage.MaxUploadMB > 0 {
		c.MaxUploadMB = fc.Storage.MaxUploadMB
	}
	setString(&c.DatabasePath, fc.Database.Path)
	setString(&c.FFmpegPath, fc.Media.FFmpegPath)
	setString(&c.FFprobePath, fc.Media.FFprobePath)
	setString(&c.Provider, fc.Transcription.Provider)
	if fc.Transcription.ChunkLength != 0 {
		c.ChunkLength = fc.Transcription.ChunkLength
	}
	if fc.Transcription.Parallel != 0 {
		c.Parallel = fc.Transcription.Parallel
	}
	setString(&c.DefaultLanguage, fc.Transcription.DefaultLanguage)
	if fc.Download.Timeout != "" {
		d, err := time.ParseDuration(fc.Download.Timeout)
		if err != nil {
			return fmt.Errorf("invalid download.timeout %q: %w", fc.Download.Timeout, err)
		}
		c.DownloadTimeout = d
	}
	setString(&c.Azure.CredentialsPath, fc.Azure.CredentialsPath)
	setString(&c.Azure.Endpoint, fc.Azure.Endpoint)
	setString(&c.Google.ProjectID, fc.Google.ProjectID)
	setString(&c.Google.KeyFile, fc.Google.KeyFile)
	setString(&c.FPT.URL, fc.FPT.URL)
	setString(&c.OpenAI.Model, fc.OpenAI.Model)
	setString(&c.OpenAI.BaseURL, fc.OpenAI.BaseURL)
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.WorkDir = getEnv("WORK_DIR", c.WorkDir)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.FFmpegPath = getEnv("FFMPEG_PATH", c.FFmpegPath)
	c.FFprobePath = getEnv("FFPROBE_PATH", c.FFprobePath)
	c.Provider = strings.ToLower(getEnv("STT_PROVIDER", c.Provider))
	c.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", c.DefaultLanguage)

	if v := os.Getenv("CHUNK_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CHUNK_LENGTH %q: %w", v, err)
		}
		c.ChunkLength = n
	}
	if v := os.Getenv("TRANSCRIBE_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRANSCRIBE_PARALLEL %q: %w", v, err)
		}
		c.Parallel = n
	}

	c.Azure.CredentialsPath = getEnv("AZURE_CREDENTIALS_PATH", c.Azure.CredentialsPath)
	c.Azure.SubscriptionKey = getEnv("AZURE_SPEECH_KEY", c.Azure.SubscriptionKey)
	c.Azure.Region = getEnv("AZURE_SPEECH_REGION", c.Azure.Region)
	c.Azure.Endpoint = getEnv("AZURE_SPEECH_ENDPOINT", c.Azure.Endpoint)
	c.Google.ProjectID = getEnv("GOOGLE_STT_PROJECT_ID", c.Google.ProjectID)
	c.Google.KeyFile = getEnv("GOOGLE_STT_KEY_FILE", c.Google.KeyFile)
	c.FPT.APIKey = getEnv("FPT_AI_API_KEY", c.FPT.APIKey)
	c.FPT.URL = getEnv("FPT_AI_STT_URL", c.FPT.URL)
	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("OPENAI_STT_MODEL", c.OpenAI.Model)
	return nil
}

func (c *Config) loadAzureCredentials() error {
	data, err := os.ReadFile(c.Azure.CredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to read azure credentials file: %w", err)
	}
	var creds azureCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse azure credentials file: %w", err)
	}
	setString(&c.Azure.SubscriptionKey, creds.SubscriptionKey)
	setString(&c.Azure.Region, creds.Region)
	return nil
}

// Validate checks the settings the selected provider needs.
func (c *Config) Validate() error {
	if c.ChunkLength <= 0 {
		return fmt.Errorf("chunk length must be positive, got %d", c.ChunkLength)
	}
	if c.Parallel < 1 {
		c.Parallel = 1
	}

	switch c.Provider {
	case "azure":
		if c.Azure.SubscriptionKey == "" {
			return fmt.Errorf("azure subscription key is required: set azure.credentials_path in the config file or AZURE_SPEECH_KEY")
		}
		if c.Azure.Region == "" && c.Azure.Endpoint == "" {
			return fmt.Errorf("azure region is required: set it in the credentials file or AZURE_SPEECH_REGION")
		}
	case "google":
		if !strings.HasPrefix(strings.TrimSpace(c.Google.KeyFile), "AIzaSy") && c.Google.ProjectID == "" {
			return fmt.Errorf("GOOGLE_STT_PROJECT_ID is required when using a service account")
		}
	case "fpt":
		if c.FPT.APIKey == "" {
			return fmt.Errorf("FPT_AI_API_KEY is required for the fpt provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported STT provider: %s. Supported: azure, google, fpt, openai", c.Provider)
	}
	return nil
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
