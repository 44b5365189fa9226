// Package main provides a mock collaborator server for integration testing.
// It speaks the OpenAI-compatible chat API and replies with verdict fixtures
// from a directory, served in filename order.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr       string
		fixtureDir string
	)

	cmd := &cobra.Command{
		Use:   "mock-collaborator",
		Short: "Mock collaborator server serving verdict fixtures",
		Long: `Mock-collaborator is an OpenAI-compatible chat endpoint for testing
the review pipeline without a real model. Responses come from JSON fixture
files served in filename order; the last fixture repeats when exhausted.

Fixtures are verdict objects:
  {"rating": "SOME", "rationale": "...", "evidence": [...], "uncertainty": false}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := newServer(fixtureDir)
			if err != nil {
				return err
			}
			slog.Info("mock collaborator listening", "addr", addr, "fixtures", len(server.fixtures))
			return http.ListenAndServe(addr, server.router())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":11434", "Listen address")
	cmd.Flags().StringVar(&fixtureDir, "fixtures", "", "Directory of verdict fixture files (required)")
	_ = cmd.MarkFlagRequired("fixtures")

	return cmd
}

// capturedRequest records one incoming chat request.
type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type server struct {
	mu       sync.Mutex
	fixtures []string
	index    int
	requests []capturedRequest
}

// newServer loads the .json fixtures under dir in filename order.
func newServer(dir string) (*server, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixture dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no .json fixtures in %s", dir)
	}

	fixtures := make([]string, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		if !json.Valid(content) {
			return nil, fmt.Errorf("fixture %s is not valid JSON", name)
		}
		fixtures = append(fixtures, string(content))
	}

	return &server{fixtures: fixtures}, nil
}

func (s *server) router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", s.handleChat)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /requests", s.handleRequests)
	mux.HandleFunc("POST /reset", s.handleReset)
	return mux
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var captured capturedRequest
	if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
		http.Error(w, fmt.Sprintf(`{"error": {"message": %q}}`, err.Error()), http.StatusBadRequest)
		return
	}
	s.requests = append(s.requests, captured)

	content := s.fixtures[len(s.fixtures)-1]
	if s.index < len(s.fixtures) {
		content = s.fixtures[s.index]
		s.index++
	}

	resp := map[string]any{
		"model": captured.Model,
		"choices": []map[string]any{
			{
				"message": map[string]string{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     len(promptText(captured)) / 4,
			"completion_tokens": len(content) / 4,
			"total_tokens":      (len(promptText(captured)) + len(content)) / 4,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"fixtures":       len(s.fixtures),
		"served":         s.index,
		"requests_total": len(s.requests),
	})
}

func (s *server) handleRequests(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.requests)
}

func (s *server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = 0
	s.requests = nil
	w.WriteHeader(http.StatusNoContent)
}

func promptText(req capturedRequest) string {
	var b strings.Builder
	for _, m := range req.Messages {
		b.WriteString(m.Content)
	}
	return b.String()
}
