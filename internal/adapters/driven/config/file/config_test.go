package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvClientID, EnvClientSecret, EnvBaseURL, EnvReadOnly, EnvAPIBaseURL} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func newTestLoader(t *testing.T, content string) *Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	l, err := NewLoader(path)
	require.NoError(t, err)
	l.SetEnvFile("")
	return l
}

func TestLoader_Defaults(t *testing.T) {
	clearEnv(t)
	l := newTestLoader(t, "")

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/oauth/callback", cfg.RedirectURI())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, 200, cfg.RateLimit)
	assert.Equal(t, time.Hour, cfg.RateWindow.Duration)
	assert.Equal(t, 10*time.Minute, cfg.AuthRequestTTL.Duration)
	assert.Equal(t, TokenStoreMemory, cfg.TokenStore)
	assert.False(t, cfg.ReadOnly)
}

func TestLoader_File(t *testing.T) {
	clearEnv(t)
	l := newTestLoader(t, `
client_id = "file-id"
client_secret = "file-secret"
base_url = "https://budget.example.com/"
read_only = true
use_pkce = true
request_timeout = "5s"
rate_limit = 50
token_store = "sqlite"
`)

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "file-id", cfg.ClientID)
	assert.Equal(t, "https://budget.example.com/oauth/callback", cfg.RedirectURI())
	assert.True(t, cfg.ReadOnly)
	assert.True(t, cfg.UsePKCE)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, 50, cfg.RateLimit)
	assert.Equal(t, TokenStoreSQLite, cfg.TokenStore)
	// unset keys keep their defaults
	assert.Equal(t, time.Hour, cfg.RateWindow.Duration)
	assert.Equal(t, cfg, l.Current())
	require.NoError(t, cfg.Validate())
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	l := newTestLoader(t, `
client_id = "file-id"
read_only = false
`)
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvReadOnly, "true")
	t.Setenv(EnvAPIBaseURL, "http://127.0.0.1:9999/v1")

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.ClientID)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, "http://127.0.0.1:9999/v1", cfg.APIBaseURL)
}

func TestLoader_DotEnv(t *testing.T) {
	clearEnv(t)
	l := newTestLoader(t, "")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("YNAB_CLIENT_ID=dotenv-id\nYNAB_CLIENT_SECRET=dotenv-secret\n"), 0600))
	l.SetEnvFile(envFile)

	t.Run("fills unset variables", func(t *testing.T) {
		cfg, err := l.Load()
		require.NoError(t, err)
		assert.Equal(t, "dotenv-id", cfg.ClientID)
		assert.Equal(t, "dotenv-secret", cfg.ClientSecret)
	})

	t.Run("process environment wins", func(t *testing.T) {
		t.Setenv(EnvClientID, "process-id")
		cfg, err := l.Load()
		require.NoError(t, err)
		assert.Equal(t, "process-id", cfg.ClientID)
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		l.SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))
		_, err := l.Load()
		assert.NoError(t, err)
	})
}

func TestLoader_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("malformed toml", func(t *testing.T) {
		l := newTestLoader(t, "client_id = ")
		_, err := l.Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		l := newTestLoader(t, `request_timeout = "soon"`)
		_, err := l.Load()
		assert.Error(t, err)
	})

	t.Run("bad read-only flag", func(t *testing.T) {
		l := newTestLoader(t, "")
		t.Setenv(EnvReadOnly, "maybe")
		_, err := l.Load()
		assert.ErrorContains(t, err, EnvReadOnly)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := Defaults()
	valid.ClientID = "id"
	valid.ClientSecret = "secret"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing client id", func(c *Config) { c.ClientID = "" }, "client_id"},
		{"missing client secret", func(c *Config) { c.ClientSecret = "" }, "client_secret"},
		{"relative base url", func(c *Config) { c.BaseURL = "/callback" }, "base_url"},
		{"unknown token store", func(c *Config) { c.TokenStore = "redis" }, "token_store"},
		{"zero rate limit", func(c *Config) { c.RateLimit = 0 }, "rate_limit"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("reports all problems", func(t *testing.T) {
		cfg := Defaults()
		err := cfg.Validate()
		assert.ErrorContains(t, err, "client_id")
		assert.ErrorContains(t, err, "client_secret")
	})
}

func TestConfig_RedirectURI(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:8000/", RedirectPath: "oauth/callback"}
	assert.Equal(t, "http://localhost:8000/oauth/callback", cfg.RedirectURI())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	l := newTestLoader(t, "verbose = false\n")
	_, err := l.Load()
	require.NoError(t, err)

	var mu sync.Mutex
	var got []Config
	w, err := NewWatcher(l, func(cfg Config) {
		mu.Lock()
		got = append(got, cfg)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(l.Path(), []byte("verbose = true\n"), 0600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Verbose
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, l.Current().Verbose)
}

func TestLoader_Save(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	l, err := NewLoader(path)
	require.NoError(t, err)
	l.SetEnvFile("")

	cfg := Defaults()
	cfg.ClientID = "saved-id"
	cfg.RequestTimeout = Duration{45 * time.Second}
	require.NoError(t, l.Save(cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "saved-id", loaded.ClientID)
	assert.Equal(t, 45*time.Second, loaded.RequestTimeout.Duration)
}
