package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	ListenAddr     string
	LogLevel       string
	LogFormat      string
	ImageDir       string
	ImageURLPrefix string
	CORSOrigins    []string
	APIBaseURL     string
}

// Load reads an optional .env file and then the environment. Values already
// present in the environment win over the file.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		ImageDir:       getEnv("IMAGE_DIR", "./public/images/apartments"),
		ImageURLPrefix: getEnv("IMAGE_URL_PREFIX", "/images/apartments/"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://frontend:3000")),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080"),
	}
}

// RequireDatabase reports an error when DATABASE_URL is unset.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL not set")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
