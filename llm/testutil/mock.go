// Package testutil provides a mock collaborator HTTP server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServer is an OpenAI-compatible test server that returns queued
// responses in order and records incoming requests.
type MockServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses []string
	index     int
	requests  []CapturedRequest
	failCode  int
	failCount int
}

// CapturedRequest records a request received by the mock server.
type CapturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// NewMockServer creates a mock server returning the given responses in
// sequence. The last response repeats once the queue is exhausted.
func NewMockServer(responses ...string) *MockServer {
	m := &MockServer{responses: responses}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// FailNext makes the next n requests fail with the given status code.
func (m *MockServer) FailNext(n, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCount = n
	m.failCode = statusCode
}

// Requests returns the requests captured so far.
func (m *MockServer) Requests() []CapturedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CapturedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns how many requests the server has received.
func (m *MockServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var captured CapturedRequest
	_ = json.NewDecoder(r.Body).Decode(&captured)
	m.requests = append(m.requests, captured)

	if m.failCount > 0 {
		m.failCount--
		w.WriteHeader(m.failCode)
		fmt.Fprintf(w, `{"error": {"message": "injected failure"}}`)
		return
	}

	content := ""
	if len(m.responses) > 0 {
		if m.index < len(m.responses) {
			content = m.responses[m.index]
			m.index++
		} else {
			content = m.responses[len(m.responses)-1]
		}
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
			"prompt_tokens":     100,
			"completion_tokens": 50,
			"total_tokens":      150,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
