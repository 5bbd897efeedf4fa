package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"yarsdash/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedTarget(token string) func(config.GitHub) (config.GitHubTarget, error) {
	return func(gh config.GitHub) (config.GitHubTarget, error) {
		return config.GitHubTarget{Token: token, Owner: gh.Owner, Repo: gh.Repo}, nil
	}
}

func TestTrigger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/repos/liamli123/yars/actions/workflows/scrape.yml/dispatches" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ghp_test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
			t.Errorf("Accept = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["ref"] != "main" {
			t.Errorf("body = %v, %v", body, err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := config.Default().GitHub
	cfg.APIURL = srv.URL
	if err := NewClient(cfg, fixedTarget("ghp_test"), discard).Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
}

func TestTriggerUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not Found"}`)
	}))
	defer srv.Close()

	cfg := config.Default().GitHub
	cfg.APIURL = srv.URL
	err := NewClient(cfg, fixedTarget("ghp_test"), discard).Trigger(context.Background())

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upErr.Status != http.StatusNotFound {
		t.Errorf("status = %d", upErr.Status)
	}
	if want := `GitHub API returned 404: {"message":"Not Found"}`; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestTriggerMissingToken(t *testing.T) {
	c := NewClient(config.Default().GitHub, func(config.GitHub) (config.GitHubTarget, error) {
		return config.GitHubTarget{}, &config.CredentialError{Name: "GITHUB_PAT"}
	}, discard)
	if err := c.Trigger(context.Background()); !errors.Is(err, config.ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}
