// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Backend API that serves matchups, stats, recommendations and odds.
	APIBaseURL   string
	MatchupsPath string
	APITimeout   time.Duration

	// RequireLocks gates the build action on both lock picks being set.
	RequireLocks bool

	// Session cookie signing secret (required).
	SessionSecret string
	SessionTTL    time.Duration

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
	LogFile    string

	// PostgreSQL slip ledger – optional. Either DATABASE_URL or DB_PASS enables it.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// Redis response cache – optional.
	RedisURL string
	CacheTTL time.Duration
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()
	setDefaults(v)

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

// LoadLedger reads only the settings the ledger tools need. SESSION_SECRET
// is not required here.
func LoadLedger() *Config {
	v := newViper()
	setDefaults(v)

	cfg := fromViper(v)
	if !cfg.LedgerEnabled() {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("MATCHUPS_PATH", "/matchups")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("MULTI_REQUIRE_LOCKS", true)
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_USER", "multi")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "multibuilder")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_TTL", "60s")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		APIBaseURL:    strings.TrimRight(strings.TrimSpace(v.GetString("API_BASE_URL")), "/"),
		MatchupsPath:  v.GetString("MATCHUPS_PATH"),
		APITimeout:    v.GetDuration("API_TIMEOUT"),
		RequireLocks:  v.GetBool("MULTI_REQUIRE_LOCKS"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		Debug:         v.GetBool("DEBUG"),
		Port:          v.GetString("PORT"),
		TLSDomains:    splitTrimmed(v.GetString("TLS_DOMAINS")),
		LogFile:       v.GetString("LOG_FILE"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBUser:        v.GetString("DB_USER"),
		DBPass:        v.GetString("DB_PASS"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		RedisURL:      v.GetString("REDIS_URL"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),
	}
}

// LedgerEnabled reports whether submitted slips should be recorded in Postgres.
func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != "" || c.DBPass != ""
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// SessionKey returns the session cookie signing key as a byte slice.
func (c *Config) SessionKey() []byte {
	return []byte(c.SessionSecret)
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL must be set")
	}
	if !strings.HasPrefix(c.MatchupsPath, "/") {
		return fmt.Errorf("config: MATCHUPS_PATH must start with '/', got %q", c.MatchupsPath)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("config: API_TIMEOUT must be positive")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET must be set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if !c.Debug && len(c.TLSDomains) == 0 {
		return fmt.Errorf("config: TLS_DOMAINS must be set outside debug mode")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
