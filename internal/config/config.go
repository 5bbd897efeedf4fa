package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned when a request needs a secret that is not
// present in the environment.
var ErrMissingCredential = errors.New("missing credential")

// CredentialError names the environment variable that was not set. It
// matches ErrMissingCredential under errors.Is.
type CredentialError struct {
	Name string
}

func (e *CredentialError) Error() string {
	return e.Name + " not configured"
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the dashboard.
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Dashboard Dashboard `yaml:"dashboard"`
	LLM       LLM       `yaml:"llm"`
	GitHub    GitHub    `yaml:"github"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Limits    Limits    `yaml:"limits"`
	Errors    Errors    `yaml:"errors"`
}

// Storage holds paths for the snapshot and for data the dashboard keeps.
type Storage struct {
	SnapshotPath string `yaml:"snapshot_path"`
	DataDir      string `yaml:"data_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	GRPCPort     int           `yaml:"grpc_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Dashboard controls view sizes and presentation.
type Dashboard struct {
	TopTickers    int               `yaml:"top_tickers"`
	MatrixTickers int               `yaml:"matrix_tickers"`
	TopPosts      int               `yaml:"top_posts"`
	TitleLength   int               `yaml:"title_length"`
	Timezone      string            `yaml:"timezone"`
	Palette       map[string]string `yaml:"palette"`
	DefaultColor  string            `yaml:"default_color"`
	SectorColors  []string          `yaml:"sector_colors"`
}

// Location resolves Timezone, falling back to the process's local zone.
func (d Dashboard) Location() (*time.Location, error) {
	if d.Timezone == "" || d.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("loading timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// LLM configures the chat-completion endpoint used by the analyze action.
// The API key is not stored here; see LLMCredentials.
type LLM struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int64         `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GitHub configures the workflow dispatched by the trigger-scrape action.
type GitHub struct {
	APIURL   string `yaml:"api_url"`
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	Workflow string `yaml:"workflow"`
	Ref      string `yaml:"ref"`
}

// Alpaca holds credentials and endpoints for the Alpaca market data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Limits throttles the proxy actions.
type Limits struct {
	ActionsPerMinute int `yaml:"actions_per_minute"`
	Burst            int `yaml:"burst"`
}

// Errors configures error reporting.
type Errors struct {
	SentryDSN   string `yaml:"sentry_dsn"`
	Environment string `yaml:"environment"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Storage: Storage{
			SnapshotPath: "data/dashboard_data.json",
			DataDir:      "data",
			SQLitePath:   "data/yarsdash.db",
		},
		Server: Server{
			Host:         "0.0.0.0",
			Port:         8080,
			GRPCPort:     9090,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Logging: Logging{Level: "info", Format: "json"},
		Dashboard: Dashboard{
			TopTickers:    15,
			MatrixTickers: 10,
			TopPosts:      25,
			TitleLength:   40,
			Timezone:      "Local",
			DefaultColor:  "#6b7280",
		},
		LLM: LLM{
			BaseURL:     "https://api.deepseek.com",
			Model:       "deepseek-chat",
			MaxTokens:   2000,
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		GitHub: GitHub{
			APIURL:   "https://api.github.com",
			Owner:    "liamli123",
			Repo:     "yars",
			Workflow: "scrape.yml",
			Ref:      "main",
		},
		Alpaca: Alpaca{DataURL: "https://data.alpaca.markets"},
		Limits: Limits{ActionsPerMinute: 6, Burst: 2},
		Errors: Errors{Environment: "development"},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() *Config {
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		cfg.Storage.SnapshotPath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("DASHBOARD_TIMEZONE"); v != "" {
		cfg.Dashboard.Timezone = v
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	// Standard Alpaca env vars (highest priority, canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Errors.SentryDSN = v
	}
	if v := os.Getenv("SENTRY_ENVIRONMENT"); v != "" {
		cfg.Errors.Environment = v
	}
}

// ---------------------------------------------------------------------------
// Request-time secrets
// ---------------------------------------------------------------------------

// LLMCredentials returns the chat-completion API key. It is read on every
// call so a rotated key takes effect without a restart.
func LLMCredentials() (string, error) {
	key := os.Getenv("DEEPSEEK_API_KEY")
	if key == "" {
		return "", &CredentialError{Name: "DEEPSEEK_API_KEY"}
	}
	return key, nil
}

// GitHubTarget identifies the repository whose workflow is dispatched.
type GitHubTarget struct {
	Token string
	Owner string
	Repo  string
}

// GitHubCredentials reads the access token and repository coordinates from
// the environment, using the configured owner and repo as defaults.
func GitHubCredentials(gh GitHub) (GitHubTarget, error) {
	t := GitHubTarget{
		Token: os.Getenv("GITHUB_PAT"),
		Owner: gh.Owner,
		Repo:  gh.Repo,
	}
	if v := os.Getenv("GITHUB_OWNER"); v != "" {
		t.Owner = v
	}
	if v := os.Getenv("GITHUB_REPO"); v != "" {
		t.Repo = v
	}
	if t.Token == "" {
		return t, &CredentialError{Name: "GITHUB_PAT"}
	}
	return t, nil
}
