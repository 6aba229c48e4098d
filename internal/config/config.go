package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds everything the terminal needs from the environment.
// Values come from .env (loaded in main) or real environment variables.
type Config struct {
	Env       string // "production" or "development"
	Addr      string // HTTP listen address
	WebOrigin string // allowed CORS origin for the front end

	// Shared MySQL server hosting both schemas
	DBHost string
	DBPort int
	DBUser string
	DBPass string

	ProductDB string // product / inventory schema
	StaffDB   string // staff / attendance schema

	// Optional CA certificate for TLS to the DB server.
	// Relative paths resolve against the executable's directory.
	SSLCA string

	ProductPoolSize int
	StaffPoolSize   int

	CachePath       string
	RefreshInterval time.Duration

	// EFTPOS terminal
	TerminalHost    string
	TerminalPort    int
	TerminalTimeout time.Duration
	TerminalName    string
	Currency        string

	JWTSecret string
}

// Load reads the environment into a Config, applying defaults that match
// the shop's standard deployment.
func Load() *Config {
	return &Config{
		Env:       getEnv("APP_ENV", "production"),
		Addr:      getEnv("LISTEN_ADDR", ":8080"),
		WebOrigin: getEnv("WEB_ORIGIN", "http://localhost:5173"),

		DBHost: getEnv("DB_HOST", "127.0.0.1"),
		DBPort: getEnvInt("DB_PORT", 3306),
		DBUser: getEnv("DB_USER", "root"),
		DBPass: getEnv("DB_PASS", ""),

		ProductDB: getEnv("DB_NAME", "mgdb"),
		StaffDB:   getEnv("STAFF_DB_NAME", "erfandb"),

		SSLCA: resolveSSLCA(getEnv("DB_SSL_CA", "")),

		ProductPoolSize: getEnvInt("DB_POOL_SIZE", 4),
		StaffPoolSize:   getEnvInt("STAFF_DB_POOL_SIZE", 3),

		CachePath:       getEnv("CACHE_PATH", "products_cache.json"),
		RefreshInterval: getEnvDuration("CACHE_REFRESH_INTERVAL", 30*time.Second),

		TerminalHost:    getEnv("TERMINAL_HOST", "127.0.0.1"),
		TerminalPort:    getEnvInt("TERMINAL_PORT", 2005),
		TerminalTimeout: getEnvDuration("TERMINAL_TIMEOUT", 15*time.Second),
		TerminalName:    getEnv("TERMINAL_NAME", "Modern POS"),
		Currency:        getEnv("CURRENCY", "MYR"),

		JWTSecret: getEnv("JWT_SECRET", "change_me_in_production"),
	}
}

// resolveSSLCA anchors a relative CA path to the install location so the
// app behaves the same regardless of the working directory it starts in.
func resolveSSLCA(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	return filepath.Join(filepath.Dir(exe), path)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
