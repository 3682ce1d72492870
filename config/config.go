package config

import (
	"os"
	"regexp"
	"strings"
)

// Config is read once from the environment at startup.
type Config struct {
	Port           string
	DatabaseURL    string
	DatabaseDriver string
	AuthSecret     string
	AppURL         string
	EmailFrom      string
	ResendAPIKey   string
	AdminEmails    []string
	CORSOrigins    []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts no proxy.
	TrustedProxies []string
	// Demo is set when no database is configured. The app then runs on the
	// in-memory store and refuses invite and RSVP writes.
	Demo bool
}

const devAuthSecret = "corralio-dev-secret-change-me"

func Load() *Config {
	cfg := &Config{
		Port:           env("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: env("DATABASE_DRIVER", "postgres"),
		AuthSecret:     os.Getenv("AUTH_SECRET"),
		AppURL:         strings.TrimRight(env("APP_URL", "http://localhost:8080"), "/"),
		EmailFrom:      env("EMAIL_FROM", "Corralio <noreply@corralio.app>"),
		ResendAPIKey:   env("RESEND_API_KEY", os.Getenv("AUTH_RESEND_KEY")),
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
	}
	cfg.Demo = cfg.DatabaseURL == ""
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.AppURL}
	}
	return cfg
}

// Secret returns AUTH_SECRET, falling back to a fixed value in demo mode only.
func (c *Config) Secret() string {
	if c.AuthSecret == "" && c.Demo {
		return devAuthSecret
	}
	return c.AuthSecret
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var listSeparator = regexp.MustCompile(`[,\s]+`)

func splitList(raw string) []string {
	var out []string
	for _, part := range listSeparator.Split(raw, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
