package file

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the file.
const (
	EnvClientID     = "YNAB_CLIENT_ID"
	EnvClientSecret = "YNAB_CLIENT_SECRET"
	EnvBaseURL      = "YNAB_BASE_URL"
	EnvReadOnly     = "YNAB_READ_ONLY"
	EnvAPIBaseURL   = "YNAB_API_BASE_URL"
)

// Token store backends.
const (
	TokenStoreMemory = "memory"
	TokenStoreSQLite = "sqlite"
)

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all settings.
type Config struct {
	// ClientID and ClientSecret are the OAuth application registration.
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// BaseURL is the public URL of this server; the OAuth redirect URI is
	// BaseURL followed by RedirectPath.
	BaseURL      string `toml:"base_url"`
	RedirectPath string `toml:"redirect_path"`

	// Upstream endpoints. Empty values select the public YNAB endpoints.
	APIBaseURL   string `toml:"api_base_url"`
	AuthorizeURL string `toml:"authorize_url"`
	TokenURL     string `toml:"token_url"`

	// ReadOnly refuses transaction updates regardless of granted scope.
	ReadOnly bool `toml:"read_only"`
	UsePKCE  bool `toml:"use_pkce"`

	RequestTimeout Duration `toml:"request_timeout"`
	MaxRetries     int      `toml:"max_retries"`
	RetryBase      Duration `toml:"retry_base"`
	RateLimit      int      `toml:"rate_limit"`
	RateWindow     Duration `toml:"rate_window"`
	AuthRequestTTL Duration `toml:"auth_request_ttl"`

	// TokenStore is "memory" (default) or "sqlite".
	TokenStore string `toml:"token_store"`
	DataDir    string `toml:"data_dir"`

	// HTTPAddr is the listen address for the OAuth routes and HTTP transport.
	HTTPAddr string `toml:"http_addr"`
	Verbose  bool   `toml:"verbose"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		RedirectPath:   "/oauth/callback",
		RequestTimeout: Duration{30 * time.Second},
		MaxRetries:     2,
		RetryBase:      Duration{500 * time.Millisecond},
		RateLimit:      200,
		RateWindow:     Duration{time.Hour},
		AuthRequestTTL: Duration{10 * time.Minute},
		TokenStore:     TokenStoreMemory,
		HTTPAddr:       "127.0.0.1:8000",
	}
}

// RedirectURI returns the OAuth callback URL.
func (c *Config) RedirectURI() string {
	path := c.RedirectPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.BaseURL, "/") + path
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, fmt.Errorf("client_id is required (set %s or client_id in the config file)", EnvClientID))
	}
	if c.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("client_secret is required (set %s or client_secret in the config file)", EnvClientSecret))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q must be an absolute URL", c.BaseURL))
	}
	if c.TokenStore != TokenStoreMemory && c.TokenStore != TokenStoreSQLite {
		errs = append(errs, fmt.Errorf("token_store %q must be %q or %q", c.TokenStore, TokenStoreMemory, TokenStoreSQLite))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("rate_limit must be positive"))
	}
	if c.RateWindow.Duration <= 0 {
		errs = append(errs, errors.New("rate_window must be positive"))
	}
	if c.RequestTimeout.Duration <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.AuthRequestTTL.Duration <= 0 {
		errs = append(errs, errors.New("auth_request_ttl must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must not be negative"))
	}
	return errors.Join(errs...)
}

// Loader reads configuration from a TOML file and the environment.
type Loader struct {
	mu       sync.RWMutex
	filePath string
	envFile  string
	current  Config
}

// NewLoader creates a loader for path.
// If path is empty, defaults to ~/.budget-mcp/config.toml.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".budget-mcp", "config.toml")
	}
	return &Loader{
		filePath: path,
		envFile:  ".env",
		current:  Defaults(),
	}, nil
}

// SetEnvFile changes the dotenv file read by Load. Empty disables it.
func (l *Loader) SetEnvFile(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.envFile = path
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads the file and environment and returns the merged configuration.
// A missing file is not an error.
func (l *Loader) Load() (Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := Defaults()

	data, err := os.ReadFile(l.filePath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", l.filePath, err)
		}
	case os.IsNotExist(err):
		// No config file yet - defaults and environment only
	default:
		return Config{}, fmt.Errorf("reading %s: %w", l.filePath, err)
	}

	if l.envFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(l.envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", l.envFile, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	l.current = cfg
	return cfg, nil
}

// Current returns the most recently loaded configuration.
func (l *Loader) Current() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvReadOnly); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", EnvReadOnly, v)
		}
		cfg.ReadOnly = b
	}
	return nil
}

// Save writes cfg to the configuration file with restricted permissions.
// Environment overrides are written as resolved values.
func (l *Loader) Save(cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.filePath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(l.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", l.filePath, err)
	}
	l.current = cfg
	return nil
}
