package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/reclaimed/fyt-engine/probe"
	"github.com/reclaimed/fyt-engine/videoid"
)

// NewRouter builds the thin JSON-only HTTP surface described in
// SPEC_FULL.md §6.1. It intentionally carries no HTML templating, static
// file serving, robots handling, or no-JavaScript fallback — those remain
// the excluded presentation layer; this wires only the routes the core's
// two entry points need.
func NewRouter(engine *Engine, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware(logger))

	r.HandleFunc("/find/{id}", handleLegacyFind(engine)).Methods(http.MethodGet)
	r.HandleFunc("/api/v{version:[0-9]+}/youtube/{id}", handleVersioned(engine)).Methods(http.MethodGet)
	r.HandleFunc("/api/v{version:[0-9]+}/{id}", handleVersioned(engine)).Methods(http.MethodGet)
	r.HandleFunc("/api/coerce_to_id", handleCoerceToID).Methods(http.MethodGet)

	return r
}

func requestIDMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := uuid.NewString()
			w.Header().Set("X-Request-Id", id)
			logger.Info("request", "request_id", id, "path", req.URL.Path)
			next.ServeHTTP(w, req)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleLegacyFind is a fixed alias for the v2 batch response, kept for
// backwards compatibility with callers predating the versioned /api/v{n}
// routes, per SPEC_FULL.md §6.1.
func handleLegacyFind(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		env, err := engine.Generate(req.Context(), id, true)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		coerced, err := CoerceToVersion(env, minSupportedVersion)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, coerced)
	}
}

func handleVersioned(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		version, convErr := strconv.Atoi(vars["version"])
		if convErr != nil {
			http.Error(w, "unrecognised api version", http.StatusNotFound)
			return
		}
		if version == 1 {
			http.Error(w, "This API version is no longer supported.", http.StatusGone)
			return
		}
		if version < minSupportedVersion || version > CurrentAPIVersion {
			http.Error(w, "unrecognised api version", http.StatusNotFound)
			return
		}

		id := vars["id"]
		includeRaw := version < 4 || req.URL.Query().Get("includeRaw") == "true"
		stream := version >= 4 && req.URL.Query().Get("stream") == "true"

		if stream {
			serveStream(w, req, engine, id, includeRaw, version)
			return
		}

		env, err := engine.Generate(req.Context(), id, includeRaw)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if version == CurrentAPIVersion {
			writeJSON(w, http.StatusOK, env)
			return
		}
		coerced, err := CoerceToVersion(env, version)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, coerced)
	}
}

func serveStream(w http.ResponseWriter, req *http.Request, engine *Engine, id string, includeRaw bool, version int) {
	flusher, ok := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	ch := make(chan probe.Item, 32)
	go func() {
		_ = engine.GenerateStream(req.Context(), id, includeRaw, ch)
	}()

	enc := json.NewEncoder(w)
	for item := range ch {
		// At the current version every phase passes through unmodified, so
		// StreamItem's own phase dispatch can encode it directly; older
		// versions still need CoerceStreamItem's per-item rewriting (and its
		// standalone-Link drop rule).
		if version == CurrentAPIVersion {
			_ = enc.Encode(NewStreamItem(item))
			if ok {
				flusher.Flush()
			}
			continue
		}
		value, drop, err := CoerceStreamItem(item, version)
		if err != nil || drop {
			continue
		}
		_ = enc.Encode(value)
		if ok {
			flusher.Flush()
		}
	}
}

func handleCoerceToID(w http.ResponseWriter, req *http.Request) {
	d := req.URL.Query().Get("d")
	id, ok := videoid.Parse(d)
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": string(id)})
}
