package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T, fixtures map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range fixtures {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func chatRequest(t *testing.T, router http.Handler) string {
	t.Helper()

	body := `{"model": "judge", "messages": [{"role": "user", "content": "evaluate"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Choices, 1)
	return resp.Choices[0].Message.Content
}

func TestFixturesServedInOrderThenRepeat(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"01.json": `{"rating": "GOOD"}`,
		"02.json": `{"rating": "SOME"}`,
	})

	s, err := newServer(dir)
	require.NoError(t, err)
	router := s.router()

	assert.Equal(t, `{"rating": "GOOD"}`, chatRequest(t, router))
	assert.Equal(t, `{"rating": "SOME"}`, chatRequest(t, router))
	// Exhausted: last fixture repeats.
	assert.Equal(t, `{"rating": "SOME"}`, chatRequest(t, router))
}

func TestStatsAndRequests(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"01.json": `{"rating": "GOOD"}`})

	s, err := newServer(dir)
	require.NoError(t, err)
	router := s.router()

	chatRequest(t, router)

	statsReq := httptest.NewRequest(http.MethodGet, "/stats", nil)
	statsRec := httptest.NewRecorder()
	router.ServeHTTP(statsRec, statsReq)
	require.Equal(t, http.StatusOK, statsRec.Code)

	var stats map[string]int
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats["requests_total"])
	assert.Equal(t, 1, stats["served"])

	reqsReq := httptest.NewRequest(http.MethodGet, "/requests", nil)
	reqsRec := httptest.NewRecorder()
	router.ServeHTTP(reqsRec, reqsReq)
	require.Equal(t, http.StatusOK, reqsRec.Code)

	var captured []capturedRequest
	require.NoError(t, json.Unmarshal(reqsRec.Body.Bytes(), &captured))
	require.Len(t, captured, 1)
	assert.Equal(t, "judge", captured[0].Model)
}

func TestResetClearsState(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"01.json": `{"rating": "GOOD"}`,
		"02.json": `{"rating": "SOME"}`,
	})

	s, err := newServer(dir)
	require.NoError(t, err)
	router := s.router()

	chatRequest(t, router)

	resetReq := httptest.NewRequest(http.MethodPost, "/reset", nil)
	resetRec := httptest.NewRecorder()
	router.ServeHTTP(resetRec, resetReq)
	require.Equal(t, http.StatusNoContent, resetRec.Code)

	// Serving restarts from the first fixture.
	assert.Equal(t, `{"rating": "GOOD"}`, chatRequest(t, router))
}

func TestNewServerRejectsInvalidFixture(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"01.json": `not json`})

	_, err := newServer(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestNewServerRequiresFixtures(t *testing.T) {
	_, err := newServer(t.TempDir())
	require.Error(t, err)
}
