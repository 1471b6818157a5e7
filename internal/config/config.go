package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	WAPhoneNumberID string
	WAAccessToken   string
	WAVerifyToken   string

	OpenRouterKey     string
	OpenRouterModel   string
	OpenRouterBaseURL string

	Port    string
	DataDir string
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		WAPhoneNumberID:   os.Getenv("WA_PHONE_NUMBER_ID"),
		WAAccessToken:     os.Getenv("WA_ACCESS_TOKEN"),
		WAVerifyToken:     os.Getenv("WA_VERIFY_TOKEN"),
		OpenRouterKey:     os.Getenv("OPENROUTER_KEY"),
		OpenRouterModel:   os.Getenv("OPENROUTER_MODEL"),
		OpenRouterBaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		Port:              os.Getenv("PORT"),
		DataDir:           os.Getenv("DATA_DIR"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.OpenRouterModel == "" {
		cfg.OpenRouterModel = "qwen/qwen3-30b-a3b:free"
	}

	if cfg.OpenRouterBaseURL == "" {
		cfg.OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	}

	if cfg.WAVerifyToken == "" {
		token, err := randomHex(16)
		if err != nil {
			return nil, fmt.Errorf("generating verify token: %w", err)
		}
		cfg.WAVerifyToken = token
	}

	for _, req := range []struct {
		name, val string
	}{
		{"WA_PHONE_NUMBER_ID", cfg.WAPhoneNumberID},
		{"WA_ACCESS_TOKEN", cfg.WAAccessToken},
		{"OPENROUTER_KEY", cfg.OpenRouterKey},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
