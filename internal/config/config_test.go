package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Empty(t, cfg.Frontend.URL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "@every 30s", cfg.Probe.Schedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestFromEnv_BackendURLPrecedence(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "public variant only",
			env:  map[string]string{"NEXT_PUBLIC_BACKEND_URL": "https://api.example.com/"},
			want: "https://api.example.com",
		},
		{
			name: "server variant wins",
			env: map[string]string{
				"BACKEND_URL":             "http://backend:5000",
				"NEXT_PUBLIC_BACKEND_URL": "https://api.example.com",
			},
			want: "http://backend:5000",
		},
		{
			name: "blank server variant falls back",
			env: map[string]string{
				"BACKEND_URL":             "  ",
				"NEXT_PUBLIC_BACKEND_URL": "https://api.example.com",
			},
			want: "https://api.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromEnv(envLookup(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Backend.URL)
		})
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "backend without scheme", env: map[string]string{"BACKEND_URL": "backend:5000"}},
		{name: "backend ftp", env: map[string]string{"BACKEND_URL": "ftp://backend"}},
		{name: "frontend without host", env: map[string]string{"FRONTEND_URL": "http://"}},
		{name: "bad timeout", env: map[string]string{"UPSTREAM_TIMEOUT": "soon"}},
		{name: "negative timeout", env: map[string]string{"UPSTREAM_TIMEOUT": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envLookup(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envLookup(map[string]string{
		"PORT":                 "9000",
		"SECURE_COOKIES":       "true",
		"UPSTREAM_TIMEOUT":     "5s",
		"ROUTES_FILE":          "routes.yaml",
		"FRONTEND_URL":         "http://web:3000/",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
		"PROBE_SCHEDULE":       "",
		"LOG_FORMAT":           "console",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "routes.yaml", cfg.Backend.RoutesFile)
	assert.Equal(t, "http://web:3000", cfg.Frontend.URL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Probe.Schedule, "explicit empty schedule disables the probe")
	assert.Equal(t, "console", cfg.Logging.Format)
}
