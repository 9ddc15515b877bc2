package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBackendURL      = "http://localhost:5000"
	defaultUpstreamTimeout = 30 * time.Second
	defaultProbeSchedule   = "@every 30s"
	defaultProbePath       = "/"
)

// Config holds all configuration for the gateway
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Frontend FrontendConfig
	CORS     CORSConfig
	Probe    ProbeConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Port string
	// SecureCookies marks cookies written by the gateway (logout) as Secure
	SecureCookies bool
}

// BackendConfig describes the upstream API every proxy route forwards to
type BackendConfig struct {
	URL        string        // Base URL, no trailing slash
	Timeout    time.Duration // Per outbound call
	RoutesFile string        // Optional YAML route table, empty = built-in routes
}

// FrontendConfig describes where gated page requests are handed off
type FrontendConfig struct {
	URL string // Empty = serve a JSON page descriptor
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// ProbeConfig controls the periodic upstream reachability check
type ProbeConfig struct {
	Schedule string // Cron spec, empty disables the probe
	Path     string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from the given lookup function
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	// BACKEND_URL wins over the public variant exposed to the browser bundle
	backendURL := get("BACKEND_URL", get("NEXT_PUBLIC_BACKEND_URL", defaultBackendURL))
	backendURL, err := normalizeBaseURL("BACKEND_URL", backendURL)
	if err != nil {
		return nil, err
	}

	frontendURL := get("FRONTEND_URL", "")
	if frontendURL != "" {
		frontendURL, err = normalizeBaseURL("FRONTEND_URL", frontendURL)
		if err != nil {
			return nil, err
		}
	}

	timeout := defaultUpstreamTimeout
	if raw := get("UPSTREAM_TIMEOUT", ""); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", raw, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", timeout)
		}
	}

	// An explicitly empty PROBE_SCHEDULE disables the probe
	probeSchedule := defaultProbeSchedule
	if v, ok := lookup("PROBE_SCHEDULE"); ok {
		probeSchedule = strings.TrimSpace(v)
	}

	return &Config{
		Server: ServerConfig{
			Port:          get("PORT", "8080"),
			SecureCookies: get("SECURE_COOKIES", "false") == "true",
		},
		Backend: BackendConfig{
			URL:        backendURL,
			Timeout:    timeout,
			RoutesFile: get("ROUTES_FILE", ""),
		},
		Frontend: FrontendConfig{
			URL: frontendURL,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Probe: ProbeConfig{
			Schedule: probeSchedule,
			Path:     get("PROBE_PATH", defaultProbePath),
		},
		Logging: LoggingConfig{
			Level:  get("LOG_LEVEL", "info"),
			Format: get("LOG_FORMAT", "json"),
		},
	}, nil
}

func normalizeBaseURL(name, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid %s %q: missing host", name, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
