// Package server exposes the scoring engine over HTTP for the story-list UI.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AhmedHasab/eyelhekaya/pkg/trend"
)

// Server provides the HTTP API.
type Server struct {
	engine *trend.Engine
	rng    *rand.Rand
	port   int
}

// New creates an HTTP server over the engine. rng drives the weighted pick
// endpoint; nil seeds from the clock.
func New(engine *trend.Engine, rng *rand.Rand, port int) *Server {
	if port == 0 {
		port = 8080
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Server{engine: engine, rng: rng, port: port}
}

// Handler returns the route mux. Split out from ListenAndServe for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/trends/long", s.handleDiscover(trend.ActionDiscoverLong))
	mux.HandleFunc("/api/v1/trends/short", s.handleDiscover(trend.ActionDiscoverShort))
	mux.HandleFunc("/api/v1/rescore", s.handleRescore)
	mux.HandleFunc("/api/v1/refresh", s.handleRefresh)
	mux.HandleFunc("/api/v1/pick", s.handlePick)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Fprintf(os.Stderr, "eyelhekaya server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDiscover(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}

		windowDays := 0
		if v := r.URL.Query().Get("window_days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "window_days must be a non-negative integer"})
				return
			}
			windowDays = n
		}

		var (
			results []trend.Candidate
			err     error
		)
		if action == trend.ActionDiscoverShort {
			results, err = s.engine.DiscoverShort(r.Context(), windowDays)
		} else {
			results, err = s.engine.DiscoverLong(r.Context(), windowDays)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"results": results,
			"count":   len(results),
		})
	}
}

func (s *Server) handleRescore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Stories    []trend.Story `json:"stories"`
		MaxResults int           `json:"max_results"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	ranked, err := s.engine.Rescore(r.Context(), req.Stories, req.MaxResults)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ranked_stories": ranked,
		"count":          len(ranked),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := s.engine.ForceRefresh(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	c, err := s.engine.Pick(r.Context(), s.rng)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pick": c})
}

// writeEngineError maps pipeline outcomes onto HTTP statuses: bad input is
// the caller's fault, an empty slate is an explicit no-results answer, and
// everything else is a server-side failure.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trend.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, trend.ErrNoCandidates):
		writeJSON(w, http.StatusOK, map[string]any{
			"results": []any{},
			"count":   0,
			"message": "no results",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
