// utils/config.go
package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	DatabaseURL    string
	StoreTimeout   time.Duration

	RedisURL        string
	ProfileCacheTTL time.Duration

	MalformedPolicy string

	LogLevel  string
	LogFormat string

	R2 R2Config

	ArchiveInterval time.Duration
	ArchiveAfter    time.Duration
	ArchiveBatch    int
}

// LoadConfig reads the process environment. Call godotenv.Load first if a
// .env file should be honoured.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getenvDefault("PORT", "8000"),
		AllowedOrigins:  splitList(getenvDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		MalformedPolicy: getenvDefault("MATCH_MALFORMED_POLICY", "skip"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "console"),
		R2: R2Config{
			AccountID:       strings.TrimSpace(os.Getenv("CLOUDFLARE_ACCOUNT_ID")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_ID")),
			AccessKeySecret: strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_SECRET")),
			Bucket:          strings.TrimSpace(os.Getenv("R2_BUCKET_NAME")),
		},
	}

	var err error
	if cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheTTL, err = durationEnv("PROFILE_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ArchiveInterval, err = durationEnv("ARCHIVE_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ArchiveAfter, err = durationEnv("ARCHIVE_AFTER", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.ArchiveBatch = 100
	if v := strings.TrimSpace(os.Getenv("ARCHIVE_BATCH")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("ARCHIVE_BATCH must be a positive integer, got %q", v)
		}
		cfg.ArchiveBatch = n
	}

	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			// credentialed CORS cannot use a wildcard origin
			return nil, errors.New("ALLOWED_ORIGINS must list explicit origins, not *")
		}
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

// ArchiveEnabled reports whether match archiving to R2 is configured.
func (c *Config) ArchiveEnabled() bool { return c.R2.Bucket != "" }

func getenvDefault(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 5s, got %q", k, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
