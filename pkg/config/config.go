// Package config reads runtime settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/harrisonrobin/quadrant/pkg/drive"
)

// Config keeps the runtime settings for the server.
type Config struct {
	Host string
	Port int

	// SecretKey signs the session cookie.
	SecretKey string
	// DataFile is the local task document path.
	DataFile string

	GoogleClientID     string
	GoogleClientSecret string
	// OAuthRedirectURL must match the URI registered with Google.
	OAuthRedirectURL string

	OpenAIKey   string
	OpenAIModel string

	// DriveFileName is the well-known remote file name.
	DriveFileName string

	// ReclassifyDefaults selects the aggressive magic-sort predicate
	// that also re-scores tasks sitting on the exact default tuple.
	ReclassifyDefaults bool
}

// Load reads configuration from environment variables with sane
// defaults. Google client credentials are required; everything else
// falls back.
func Load() (Config, error) {
	cfg := Config{
		Host:               getenv("HOST", "0.0.0.0"),
		Port:               getenvInt("PORT", 8080),
		SecretKey:          getenv("SECRET_KEY", ""),
		DataFile:           getenv("DATA_FILE", "tasks.json"),
		GoogleClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		OAuthRedirectURL:   getenv("OAUTH_REDIRECT_URL", "http://localhost:8080/oauth2callback"),
		OpenAIKey:          strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:        getenv("OPENAI_MODEL", "gpt-3.5-turbo"),
		DriveFileName:      getenv("DRIVE_FILE_NAME", drive.DefaultFileName),
		ReclassifyDefaults: getenvBool("RECLASSIFY_DEFAULTS"),
	}

	if cfg.SecretKey == "" {
		return cfg, fmt.Errorf("SECRET_KEY is required")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return cfg, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}
