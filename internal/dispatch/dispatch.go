// Package dispatch starts the scraping workflow through the GitHub Actions
// workflow_dispatch REST endpoint.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yarsdash/internal/config"
)

// UpstreamError is any answer other than 204 No Content from GitHub. It
// carries the upstream status and body unchanged.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API returned %d: %s", e.Status, e.Body)
}

// Client issues a single dispatch per call, without retries.
type Client struct {
	cfg        config.GitHub
	target     func(config.GitHub) (config.GitHubTarget, error)
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client. target resolves the token and repository on
// every call; pass config.GitHubCredentials to read them from the
// environment.
func NewClient(cfg config.GitHub, target func(config.GitHub) (config.GitHubTarget, error), log *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		target:     target,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With("component", "dispatch"),
	}
}

// Trigger dispatches the configured workflow on the configured ref.
func (c *Client) Trigger(ctx context.Context) error {
	t, err := c.target(c.cfg)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		strings.TrimRight(c.cfg.APIURL, "/"),
		url.PathEscape(t.Owner), url.PathEscape(t.Repo), url.PathEscape(c.cfg.Workflow))

	body, err := json.Marshal(map[string]string{"ref": c.cfg.Ref})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatching workflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		c.log.Info("workflow dispatched", "owner", t.Owner, "repo", t.Repo, "workflow", c.cfg.Workflow, "ref", c.cfg.Ref)
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &UpstreamError{Status: resp.StatusCode, Body: string(data)}
}
