package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	// PublicBaseURL is the externally reachable base URL the payment
	// provider redirects back to.
	PublicBaseURL string `yaml:"publicBaseURL"`

	PayPalMode         string `yaml:"paypalMode"`
	PayPalClientID     string `yaml:"paypalClientID"`
	PayPalClientSecret string `yaml:"paypalClientSecret"`

	GenerationProvider string `yaml:"generationProvider"`
	GenerationModel    string `yaml:"generationModel"`
	GenerationAPIKey   string `yaml:"generationAPIKey"`
	GenerationBaseURL  string `yaml:"generationBaseURL"`

	AskRateLimitPerMinute int `yaml:"askRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}
	if v := os.Getenv("PAYPAL_MODE"); v != "" {
		cfg.PayPalMode = v
	}
	if v := os.Getenv("PAYPAL_CLIENT_ID"); v != "" {
		cfg.PayPalClientID = v
	}
	if v := os.Getenv("PAYPAL_CLIENT_SECRET"); v != "" {
		cfg.PayPalClientSecret = v
	}
	if v := os.Getenv("GENERATION_PROVIDER"); v != "" {
		cfg.GenerationProvider = v
	}
	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		cfg.GenerationModel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.GenerationProvider != "gemini" {
		cfg.GenerationAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.GenerationProvider == "gemini" {
		cfg.GenerationAPIKey = v
	}
	if v := os.Getenv("ASK_RATE_LIMIT_PER_MINUTE"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			return cfg, fmt.Errorf("parse ASK_RATE_LIMIT_PER_MINUTE: %w", convErr)
		}
		cfg.AskRateLimitPerMinute = n
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.PublicBaseURL == "" {
		return errors.New("config: publicBaseURL is required (set in config.yaml or PUBLIC_BASE_URL)")
	}
	if cfg.PayPalClientID == "" || cfg.PayPalClientSecret == "" {
		return errors.New("config: paypalClientID and paypalClientSecret are required (set in config.yaml or PAYPAL_CLIENT_ID / PAYPAL_CLIENT_SECRET)")
	}
	switch cfg.PayPalMode {
	case "", "sandbox", "live":
	default:
		return fmt.Errorf("config: paypalMode %q is not recognized (use sandbox or live)", cfg.PayPalMode)
	}
	// GenerationAPIKey is deliberately optional: the payment endpoints keep
	// serving without it, only /ai-ask is unavailable.
	return nil
}
