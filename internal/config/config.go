package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	OutputDir      string
	ServiceURL     string
	MaxUploadBytes int64
	Workers        int

	// ConfidenceThreshold separates auto-redacted findings from ones that need review.
	ConfidenceThreshold float64

	OllamaURL   string
	OllamaModel string
	DisableAI   bool

	// NatsURL is optional; run events are not published when empty.
	NatsURL string

	LogLevel string

	// StageDelayScale multiplies the progress stage durations. 0 disables the animation.
	StageDelayScale float64

	// WhitelistPath is the path to the file containing values that are never reported
	WhitelistPath string
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddr:          ":8000",
		DBPath:              "redactor.db",
		OutputDir:           "output",
		ServiceURL:          "http://localhost:8000",
		MaxUploadBytes:      50 * 1024 * 1024,
		Workers:             runtime.NumCPU(),
		ConfidenceThreshold: 0.8,
		OllamaURL:           "http://localhost:11434/api/generate",
		OllamaModel:         "llama3.2",
		DisableAI:           true,
		LogLevel:            "info",
		StageDelayScale:     1,
		WhitelistPath:       "whitelist.txt",
	}
}

// Load builds the config from defaults, a .env file, an optional YAML file
// and REDACTOR_* environment variables, in increasing priority. An empty path
// means $HOME/.redactor.yaml, which may be absent.
func Load(path string) (*Config, error) {
	for _, envPath := range []string{".env", "../.env"} {
		if err := godotenv.Load(envPath); err == nil {
			break
		}
	}

	cfg := DefaultConfig()
	v := viper.New()
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("service_url", cfg.ServiceURL)
	v.SetDefault("max_upload_bytes", cfg.MaxUploadBytes)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("confidence_threshold", cfg.ConfidenceThreshold)
	v.SetDefault("ollama_url", cfg.OllamaURL)
	v.SetDefault("ollama_model", cfg.OllamaModel)
	v.SetDefault("disable_ai", cfg.DisableAI)
	v.SetDefault("nats_url", cfg.NatsURL)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("stage_delay_scale", cfg.StageDelayScale)
	v.SetDefault("whitelist_path", cfg.WhitelistPath)

	v.SetEnvPrefix("REDACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		home, err := homedir.Dir()
		if err == nil {
			path = filepath.Join(home, ".redactor.yaml")
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg.ListenAddr = v.GetString("listen_addr")
	cfg.DBPath = v.GetString("db_path")
	cfg.OutputDir = v.GetString("output_dir")
	cfg.ServiceURL = v.GetString("service_url")
	cfg.MaxUploadBytes = v.GetInt64("max_upload_bytes")
	cfg.Workers = v.GetInt("workers")
	cfg.ConfidenceThreshold = v.GetFloat64("confidence_threshold")
	cfg.OllamaURL = v.GetString("ollama_url")
	cfg.OllamaModel = v.GetString("ollama_model")
	cfg.DisableAI = v.GetBool("disable_ai")
	cfg.NatsURL = v.GetString("nats_url")
	cfg.LogLevel = v.GetString("log_level")
	cfg.StageDelayScale = v.GetFloat64("stage_delay_scale")
	cfg.WhitelistPath = v.GetString("whitelist_path")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"db_path", c.DBPath},
		{"output_dir", c.OutputDir},
		{"listen_addr", c.ListenAddr},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be within [0,1]")
	}
	if c.StageDelayScale < 0 {
		return fmt.Errorf("stage_delay_scale must not be negative")
	}
	if !c.DisableAI && c.OllamaURL == "" {
		return fmt.Errorf("ollama_url is required when AI verification is enabled")
	}
	return nil
}
