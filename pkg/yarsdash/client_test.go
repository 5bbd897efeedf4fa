package yarsdash

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	c := NewClient(baseURL)

	if c == nil {
		t.Fatal("expected non-nil client")
	}

	if c.baseURL != "http://localhost:8080" {
		t.Errorf("expected trimmed baseURL, got %q", c.baseURL)
	}

	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["prompt"] != "hello" {
			t.Errorf("prompt = %v", body["prompt"])
		}
		w.Write([]byte(`{"analysis":"neutral"}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got != "neutral" {
		t.Errorf("analysis = %q", got)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"GITHUB_PAT not configured"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).TriggerScrape(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != 500 || apiErr.Message != "GITHUB_PAT not configured" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestSelectTickerQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ticker") != "$V/MA" || q.Get("selected") != "$AAPL" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"selected":"$V/MA","detail":null}`))
	}))
	defer srv.Close()

	sel, err := NewClient(srv.URL).SelectTicker(context.Background(), "$AAPL", "$V/MA")
	if err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}
	if sel.Selected != "$V/MA" || sel.Detail != nil {
		t.Errorf("selection = %+v", sel)
	}
}
