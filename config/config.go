package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server   ServerConfig
	Listing  ListingConfig
	Search   SearchConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// ListingConfig throttles the public read endpoints. RateLimit <= 0 disables throttling.
type ListingConfig struct {
	RateLimit float64
	RateBurst int
}

type SearchConfig struct {
	ElasticsearchURL string
}

func (c SearchConfig) Enabled() bool {
	return c.ElasticsearchURL != ""
}

type SecurityConfig struct {
	AdminToken string
}

// LoadDotEnv seeds the environment from the given files, ".env" by default. Missing files are not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			logrus.Debugf("env file %s not loaded: %v", f, err)
		}
	}
}

func Load() (*Config, error) {
	rateLimit, err := getEnvAsFloat("LISTING_RATE_LIMIT", 50)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getEnvAsInt("LISTING_RATE_BURST", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:   ServerConfig{Addr: getEnv("SERVER_ADDR", ":80"), AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS")},
		Listing:  ListingConfig{RateLimit: rateLimit, RateBurst: rateBurst},
		Search:   SearchConfig{ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL")},
		Security: SecurityConfig{AdminToken: os.Getenv("ADMIN_TOKEN")},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Listing.RateLimit > 0 && c.Listing.RateBurst < 1 {
		return fmt.Errorf("LISTING_RATE_BURST must be positive when LISTING_RATE_LIMIT is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvAsList splits a comma separated value, dropping blank items.
func getEnvAsList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
