package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Create a temporary YAML config file.
	yamlContent := []byte(`
storage:
  snapshot_path: "/tmp/yarsdash/dashboard_data.json"
  data_dir: "/tmp/yarsdash/data"
  sqlite_path: "/tmp/yarsdash/yarsdash.db"
server:
  host: "127.0.0.1"
  port: 3000
  grpc_port: 9191
  read_timeout: 5s
logging:
  level: "debug"
  format: "text"
dashboard:
  top_tickers: 20
  timezone: "America/New_York"
  palette:
    wallstreetbets: "#000000"
llm:
  model: "deepseek-reasoner"
github:
  owner: "someone"
limits:
  actions_per_minute: 30
`)

	tmpFile, err := os.CreateTemp("", "yarsdash-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	for _, k := range []string{"SNAPSHOT_PATH", "DATA_DIR", "SQLITE_PATH", "PORT", "LOG_LEVEL", "DASHBOARD_TIMEZONE", "LLM_MODEL", "LLM_BASE_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.SnapshotPath != "/tmp/yarsdash/dashboard_data.json" {
		t.Errorf("Storage.SnapshotPath = %q", cfg.Storage.SnapshotPath)
	}
	if cfg.Storage.SQLitePath != "/tmp/yarsdash/yarsdash.db" {
		t.Errorf("Storage.SQLitePath = %q", cfg.Storage.SQLitePath)
	}

	// -- Server --
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 60s", cfg.Server.WriteTimeout)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	// -- Dashboard --
	if cfg.Dashboard.TopTickers != 20 {
		t.Errorf("Dashboard.TopTickers = %d, want 20", cfg.Dashboard.TopTickers)
	}
	if cfg.Dashboard.MatrixTickers != 10 {
		t.Errorf("Dashboard.MatrixTickers = %d, want default 10", cfg.Dashboard.MatrixTickers)
	}
	if cfg.Dashboard.Palette["wallstreetbets"] != "#000000" {
		t.Errorf("Dashboard.Palette = %v", cfg.Dashboard.Palette)
	}
	loc, err := cfg.Dashboard.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("Location = %s", loc)
	}

	// -- LLM / GitHub --
	if cfg.LLM.Model != "deepseek-reasoner" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://api.deepseek.com" || cfg.LLM.MaxTokens != 2000 || cfg.LLM.Temperature != 0.3 {
		t.Errorf("LLM defaults = %+v", cfg.LLM)
	}
	if cfg.GitHub.Owner != "someone" || cfg.GitHub.Repo != "yars" || cfg.GitHub.Workflow != "scrape.yml" {
		t.Errorf("GitHub = %+v", cfg.GitHub)
	}
	if cfg.Limits.ActionsPerMinute != 30 || cfg.Limits.Burst != 2 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
storage:
  data_dir: "/original/data"
`)

	tmpFile, err := os.CreateTemp("", "yarsdash-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	// Set environment overrides.
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("PORT", "4000")
	t.Setenv("APCA_API_KEY_ID", "")
	t.Setenv("APCA_API_SECRET_KEY", "")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000 (env override)", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/yarsdash.yaml"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load missing file error = %v, want ErrNotExist", err)
	}
}

func TestLLMCredentials(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")
	_, err := LLMCredentials()
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if err.Error() != "DEEPSEEK_API_KEY not configured" {
		t.Errorf("message = %q", err.Error())
	}

	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	key, err := LLMCredentials()
	if err != nil || key != "sk-test" {
		t.Errorf("LLMCredentials() = %q, %v", key, err)
	}
}

func TestGitHubCredentials(t *testing.T) {
	gh := Default().GitHub

	t.Setenv("GITHUB_PAT", "")
	t.Setenv("GITHUB_OWNER", "")
	t.Setenv("GITHUB_REPO", "")
	if _, err := GitHubCredentials(gh); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}

	t.Setenv("GITHUB_PAT", "ghp_x")
	target, err := GitHubCredentials(gh)
	if err != nil {
		t.Fatalf("GitHubCredentials() error: %v", err)
	}
	if target.Owner != "liamli123" || target.Repo != "yars" {
		t.Errorf("defaults = %+v", target)
	}

	t.Setenv("GITHUB_OWNER", "me")
	t.Setenv("GITHUB_REPO", "fork")
	target, _ = GitHubCredentials(gh)
	if target.Owner != "me" || target.Repo != "fork" || target.Token != "ghp_x" {
		t.Errorf("overrides = %+v", target)
	}
}
