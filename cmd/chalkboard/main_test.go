package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chalkboard/internal/daemon"
)

func runCommand(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if server != "" {
		args = append([]string{"--server", server}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateCommandPrintsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req daemon.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Topic != "Photosynthesis basics" {
			t.Errorf("unexpected topic: %q", req.Topic)
		}
		json.NewEncoder(w).Encode(daemon.GenerateResponse{
			RequestID: "req-1",
			Topic:     req.Topic,
			Slug:      "photosynthesis_basics",
			PublicID:  "educational_videos/photosynthesis_basics_20260825_120000",
			VideoURL:  "https://host/final.mp4",
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "generate", "Photosynthesis", "basics")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "https://host/final.mp4") {
		t.Fatalf("output missing video url:\n%s", out)
	}
}

func TestGenerateCommandJSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(daemon.GenerateResponse{RequestID: "req-1", VideoURL: "https://host/v.mp4"})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "--json", "generate", "Gravity")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	var result daemon.GenerateResponse
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("expected JSON output, got:\n%s", out)
	}
	if result.RequestID != "req-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGenerateCommandSurfacesStageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "manim exploded", "stage": "render"})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "generate", "Gravity")
	if err == nil {
		t.Fatal("expected error from failed generation")
	}
	if !strings.Contains(err.Error(), "render") || !strings.Contains(err.Error(), "manim exploded") {
		t.Fatalf("error missing stage detail: %v", err)
	}
}

func TestJobsCommandListsRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "failed" {
			t.Errorf("expected failed filter, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string][]daemon.JobView{"jobs": {
			{RequestID: "req-9", Topic: "Waves", Status: "failed", ErrorMessage: "render exploded"},
		}})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "jobs", "--failed")
	if err != nil {
		t.Fatalf("jobs: %v\n%s", err, out)
	}
	if !strings.Contains(out, "req-9") || !strings.Contains(out, "render exploded") {
		t.Fatalf("output missing failed run:\n%s", out)
	}
}

func TestJobsCommandRejectsConflictingFilters(t *testing.T) {
	_, err := runCommand(t, "http://127.0.0.1:0", "jobs", "--failed", "--completed")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected mutually exclusive error, got %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(daemon.StatusResponse{
			Running:            true,
			PID:                42,
			MissingCredentials: []string{"gemini"},
			Dependencies: []daemon.DependencyStatus{
				{Name: "Manim", Command: "manim", Available: false, Detail: "not found"},
			},
			Jobs: daemon.JobCounts{Total: 3, Completed: 2, Failed: 1},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	for _, want := range []string{"gemini", "Manim", "not found"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPathCommand(t *testing.T) {
	out, err := runCommand(t, "", "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(out, "config.toml") {
		t.Fatalf("unexpected path output: %q", out)
	}
}
