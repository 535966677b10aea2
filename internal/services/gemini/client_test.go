package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"chalkboard/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.Gemini{APIKey: "test-key", Model: "gemini-test", BaseURL: server.URL}
	return NewClient(cfg, opts...)
}

func completionBody(content string) []byte {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func TestPointsParsesAndTruncates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Write(completionBody("- Plants absorb sunlight.\n\n* Chlorophyll converts it to energy.\n1. Oxygen is released.\nExtra point that must be dropped."))
	})

	points, err := client.Points(context.Background(), "Photosynthesis")
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d: %v", len(points), points)
	}
	if points[0] != "Plants absorb sunlight." {
		t.Fatalf("unexpected first point: %q", points[0])
	}
	for _, point := range points {
		if point == "" {
			t.Fatal("expected non-empty points")
		}
	}
}

func TestScriptReturnsTrimmedText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("  Welcome to this quick look at photosynthesis.  "))
	})
	script, err := client.Script(context.Background(), "Photosynthesis", []string{"a", "b"})
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if script != "Welcome to this quick look at photosynthesis." {
		t.Fatalf("unexpected script: %q", script)
	}
}

func TestProgramStripsCodeFence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("```python\nfrom manim import *\n\nclass TopicScene(Scene):\n    pass\n```"))
	})
	program, err := client.Program(context.Background(), "Gravity", []string{"a"})
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	if program != "from manim import *\n\nclass TopicScene(Scene):\n    pass" {
		t.Fatalf("unexpected program: %q", program)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(config.Gemini{BaseURL: "http://127.0.0.1:0"})
	if _, err := client.Points(context.Background(), "Topic"); err == nil {
		t.Fatal("expected error without api key")
	}
	if client.Configured() {
		t.Fatal("expected unconfigured client")
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write(completionBody("recovered"))
	}, WithSleeper(func(time.Duration) {}))

	script, err := client.Script(context.Background(), "Topic", nil)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if script != "recovered" {
		t.Fatalf("unexpected script: %q", script)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}, WithSleeper(func(time.Duration) {}))

	if _, err := client.Script(context.Background(), "Topic", nil); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt, got %d", calls.Load())
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(""))
	}, WithRetryMaxAttempts(1))
	if _, err := client.Script(context.Background(), "Topic", nil); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestSplitPointsHandlesNumbering(t *testing.T) {
	points := splitPoints("1. First\n2. Second\n3. Third")
	if len(points) != 3 || points[1] != "Second" {
		t.Fatalf("unexpected points: %v", points)
	}
}
