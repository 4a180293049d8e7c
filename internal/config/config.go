// Package config loads application settings from the environment and
// an optional .env file, and writes refreshed tokens back to that
// file without disturbing its other lines.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/randalmurphal/postflow/internal/genai"
)

// DefaultEnvFile is the dotenv file read when no path is given.
const DefaultEnvFile = ".env"

// Environment keys understood by the application.
const (
	KeyOpenAIAPIKey     = "OPENAI_API_KEY"
	KeyOpenAIModel      = "OPENAI_MODEL"
	KeyOpenAIImageModel = "OPENAI_IMAGE_MODEL"
	KeyOpenAIBaseURL    = "OPENAI_BASE_URL"

	KeyLinkedInAccessToken  = "LINKEDIN_ACCESS_TOKEN"
	KeyLinkedInClientID     = "LINKEDIN_CLIENT_ID"
	KeyLinkedInClientSecret = "LINKEDIN_CLIENT_SECRET"
	KeyLinkedInRedirectURI  = "LINKEDIN_REDIRECT_URI"

	KeyImageDir = "POSTFLOW_IMAGE_DIR"
	KeyTraceDB  = "POSTFLOW_TRACE_DB"
	KeyAddr     = "POSTFLOW_ADDR"
)

// Config holds every setting the application reads. Build it once
// with Load and pass it by pointer.
type Config struct {
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string
	OpenAIBaseURL    string

	LinkedInAccessToken  string
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string

	ImageDir string
	TraceDB  string
	Addr     string

	envFile string
}

// Load reads settings from the dotenv file at path and from the
// environment. Environment variables win over file values; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault(KeyOpenAIModel, genai.DefaultModel)
	v.SetDefault(KeyOpenAIImageModel, genai.DefaultImageModel)
	v.SetDefault(KeyImageDir, "data/images")
	v.SetDefault(KeyAddr, ":8501")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat env file %s: %w", path, err)
	}

	return &Config{
		OpenAIAPIKey:     v.GetString(KeyOpenAIAPIKey),
		OpenAIModel:      v.GetString(KeyOpenAIModel),
		OpenAIImageModel: v.GetString(KeyOpenAIImageModel),
		OpenAIBaseURL:    v.GetString(KeyOpenAIBaseURL),

		LinkedInAccessToken:  v.GetString(KeyLinkedInAccessToken),
		LinkedInClientID:     v.GetString(KeyLinkedInClientID),
		LinkedInClientSecret: v.GetString(KeyLinkedInClientSecret),
		LinkedInRedirectURI:  v.GetString(KeyLinkedInRedirectURI),

		ImageDir: v.GetString(KeyImageDir),
		TraceDB:  v.GetString(KeyTraceDB),
		Addr:     v.GetString(KeyAddr),

		envFile: path,
	}, nil
}

// EnvFile returns the dotenv path this configuration was loaded from.
func (c *Config) EnvFile() string {
	return c.envFile
}

// ValidateGeneration checks the settings content generation needs.
func (c *Config) ValidateGeneration() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%s is not set; add it to your .env file", KeyOpenAIAPIKey)
	}
	return nil
}

// ValidatePublishing checks the settings LinkedIn publishing needs.
func (c *Config) ValidatePublishing() error {
	if c.LinkedInAccessToken == "" {
		return fmt.Errorf("%s is not set; run the authorize command first", KeyLinkedInAccessToken)
	}
	return nil
}

// ValidateAuthorization checks the settings the OAuth flow needs.
func (c *Config) ValidateAuthorization() error {
	if c.LinkedInClientID == "" {
		return fmt.Errorf("%s is not set", KeyLinkedInClientID)
	}
	if c.LinkedInClientSecret == "" {
		return fmt.Errorf("%s is not set", KeyLinkedInClientSecret)
	}
	return nil
}

// SaveAccessToken persists a LinkedIn access token to the env file
// and updates the in-memory value.
func (c *Config) SaveAccessToken(token string) error {
	if err := WriteEnvValue(c.envFile, KeyLinkedInAccessToken, token); err != nil {
		return err
	}
	c.LinkedInAccessToken = token
	return nil
}
