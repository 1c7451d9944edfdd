package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Identity provider (Auth0-style OIDC). When AuthClientID is empty the
	// SSO routes respond 503 and only the local password login works.
	AuthIssuerBaseURL string
	AuthClientID      string
	AuthClientSecret  string

	// Public base URL of this service, used to build the OAuth callback URL.
	BaseURL string
	// Where login/logout land the browser afterwards.
	FrontendBaseURL string

	// Set the Secure flag on session cookies (required behind HTTPS).
	CookieSecure bool
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=timeclock port=5432 sslmode=disable"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSOrigins:       getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		AuthIssuerBaseURL: getEnv("AUTH_ISSUER_BASE_URL", ""),
		AuthClientID:      getEnv("AUTH_CLIENT_ID", ""),
		AuthClientSecret:  getEnv("AUTH_CLIENT_SECRET", ""),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		FrontendBaseURL:   getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		CookieSecure:      getEnv("COOKIE_SECURE", "false") == "true",
	}

	// Fail fast on an unusable setup
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set. It is required to sign session tokens.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=timeclock port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN is using the development default, set your own Postgres DSN for production.")
	}
	if cfg.AuthClientID == "" {
		log.Println("[WARN] AUTH_CLIENT_ID is not set. SSO login is disabled, only the local password login is available.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
