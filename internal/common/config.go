package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	OCR      OCRConfig
	Model    ModelConfig
	Pending  PendingConfig
	Feedback FeedbackConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr     string
	APIToken string
}

// OCRConfig holds page reader configuration
type OCRConfig struct {
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// ModelConfig holds the NER model endpoint configuration
type ModelConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// PendingConfig holds pending result store configuration
type PendingConfig struct {
	Dir       string
	Retention time.Duration
}

// FeedbackConfig holds training sample sink configuration
type FeedbackConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     getEnv("NLP_API_ADDR", ":8000"),
			APIToken: getEnv("NLP_API_TOKEN", "secret-token"),
		},
		OCR: OCRConfig{
			Pdftoppm:  getEnv("OCR_PDFTOPPM", "pdftoppm"),
			Tesseract: getEnv("OCR_TESSERACT", "tesseract"),
			Lang:      getEnv("OCR_LANG", "deu+eng"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Model: ModelConfig{
			BaseURL: getEnv("NLP_MODEL_URL", ""),
			Token:   getEnv("NLP_MODEL_TOKEN", ""),
			Timeout: getEnvAsDuration("NLP_MODEL_TIMEOUT", 30*time.Second),
		},
		Pending: PendingConfig{
			Dir:       getEnv("NLP_PENDING_DIR", "./pending_results"),
			Retention: time.Duration(getEnvAsInt("NLP_PENDING_RETENTION_SECONDS", 86400)) * time.Second,
		},
		Feedback: FeedbackConfig{
			Dir: getEnv("NLP_FEEDBACK_DIR", "./feedback"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "NLP_API_ADDR is required", ErrInvalidInput)
	}
	if c.Server.APIToken == "" {
		return NewAppError("CONFIG_ERROR", "NLP_API_TOKEN is required", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
