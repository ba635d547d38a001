package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimed/fyt-engine/probe"
)

func testRouter() http.Handler {
	orch := probe.NewOrchestrator(probe.NewRegistry(), probe.NewResultCache(600), probe.NewCooldownRegistry(), "test-agent", allEnabled)
	engine := NewEngine(orch)
	return NewRouter(engine, slog.Default())
}

func TestRouterV1IsGone(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestRouterUnknownVersionIsNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v99/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterCurrentVersionReturnsEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v5/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_version":5`)
}

func TestRouterLegacyFindIsFixedAliasForV2(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/find/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_version":2`)
}

func TestRouterDowngradedVersionCoercesResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v2/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_version":2`)
}

func TestRouterCoerceToIDExtractsCanonicalID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/coerce_to_id?d=https://youtu.be/dQw4w9WgXcQ", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":"dQw4w9WgXcQ"}`, w.Body.String())
}

func TestRouterCoerceToIDRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/coerce_to_id?d=not-a-video", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterStreamEndpointEmitsNDJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v5/dQw4w9WgXcQ?stream=true", nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.GreaterOrEqual(t, len(lines), 2, "expect at least a names map and a trailing sentinel/verdict")
	assert.Equal(t, "null", lines[len(lines)-2], "the sentinel phase is encoded as a bare null, per StreamItem.MarshalJSON")
}
