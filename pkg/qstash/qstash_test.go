package qstash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "", Token: "t"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewClient(Config{URL: "::not-a-url", Token: "t"}); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewClient(Config{URL: "https://qstash.upstash.io", Token: "t"}); err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
}

func TestPublishJSON(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.RequestURI
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"messageId":"msg_1"}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "secret"})

	err := client.PublishJSON(context.Background(), "https://hooks.example.com/leads", map[string]any{"event": "lead.captured"})
	if err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}
	if gotPath != "/v2/publish/https%3A%2F%2Fhooks.example.com%2Fleads" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["event"] != "lead.captured" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestPublishJSONErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid destination", http.StatusUnprocessableEntity)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "secret"})

	if err := client.PublishJSON(context.Background(), "https://hooks.example.com/leads", map[string]any{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
