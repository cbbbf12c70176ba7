package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"timeless-mapper/internal/apperr"
	"timeless-mapper/internal/config"
	"timeless-mapper/internal/db"
	"timeless-mapper/internal/engine"
	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/refdata"
)

// DataLoader loads reference data. *refdata.Loader satisfies it.
type DataLoader interface {
	Load(ctx context.Context) (*refdata.Data, error)
}

// Server is the HTTP API server that connects the reference data, the seed
// engine and the database.
type Server struct {
	cfg     *config.Config
	db      *db.DB
	loader  DataLoader
	data    *refdata.Data
	scanner *engine.Scanner
	mu      sync.RWMutex
	ready   bool
}

// NewServer creates a Server. database and loader may be nil; history and
// reload endpoints are then unavailable.
func NewServer(cfg *config.Config, database *db.DB, loader DataLoader) *Server {
	return &Server{
		cfg:    cfg,
		db:     database,
		loader: loader,
	}
}

// SetData is called when reference data finishes loading.
func (s *Server) SetData(data *refdata.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.scanner = engine.NewScanner(data.Mapper, s.cfg.SearchWorkers)
	s.ready = true
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *Server) current() (*refdata.Data, *engine.Scanner) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.scanner
}

// Handler returns the HTTP handler with all API routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("GET /api/factions", s.handleFactions)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	// Radius queries
	mux.HandleFunc("GET /api/sockets", s.requireReady(s.handleSockets))
	mux.HandleFunc("GET /api/sockets/{id}/radius", s.requireReady(s.handleSocketRadius))
	mux.HandleFunc("GET /api/radius/all", s.requireReady(s.handleRadiusAll))
	mux.HandleFunc("POST /api/radius/best-socket", s.requireReady(s.handleBestSocket))
	mux.HandleFunc("GET /api/tree/path", s.requireReady(s.handleTreePath))
	// Seeds
	mux.HandleFunc("POST /api/seed/analyze", s.requireReady(s.handleSeedAnalyze))
	mux.HandleFunc("POST /api/seed/compare", s.requireReady(s.handleSeedCompare))
	mux.HandleFunc("POST /api/seed/search", s.requireReady(s.handleSeedSearch))
	mux.HandleFunc("POST /api/seed/distribution", s.requireReady(s.handleSeedDistribution))
	// History
	mux.HandleFunc("GET /api/history", s.requireDB(s.handleGetHistory))
	mux.HandleFunc("GET /api/history/{id}", s.requireDB(s.handleGetHistoryByID))
	mux.HandleFunc("DELETE /api/history/{id}", s.requireDB(s.handleDeleteHistory))
	mux.HandleFunc("POST /api/history/clear", s.requireDB(s.handleClearHistory))
	// Saved seeds
	mux.HandleFunc("GET /api/seeds/saved", s.requireDB(s.handleGetSavedSeeds))
	mux.HandleFunc("POST /api/seeds/saved", s.requireDB(s.handleAddSavedSeed))
	mux.HandleFunc("PUT /api/seeds/saved/{id}", s.requireDB(s.handleUpdateSavedSeed))
	mux.HandleFunc("DELETE /api/seeds/saved/{id}", s.requireDB(s.handleDeleteSavedSeed))
	return requestIDMiddleware(corsMiddleware(mux))
}

func (s *Server) requireReady(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.isReady() {
			writeError(w, http.StatusServiceUnavailable, "reference data is still loading")
			return
		}
		h(w, r)
	}
}

func (s *Server) requireDB(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.db == nil {
			writeError(w, http.StatusServiceUnavailable, "database is not configured")
			return
		}
		h(w, r)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// requestIDMiddleware tags every request with an X-Request-ID, keeping a
// caller-supplied one when it is a valid UUID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeAppError writes err with the status its code maps to. Details, such as
// the valid faction names, are included when present.
func writeAppError(w http.ResponseWriter, err error) {
	details := apperr.DetailsOf(err)
	if len(details) == 0 {
		writeError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error(), "details": details})
}

// resolveRadius picks a radius from a preset name, an explicit value or the
// configured default, in that order.
func (s *Server) resolveRadius(name string, value *float64) (float64, error) {
	if name != "" {
		r, ok := graph.RadiusByName(name)
		if !ok {
			return 0, apperr.InvalidArgumentf("unknown radius %q", name).
				WithDetails("small", "medium", "large", "very large")
		}
		return r, nil
	}
	if value != nil {
		return *value, nil
	}
	return s.cfg.DefaultRadius, nil
}

// radiusQuery reads ?radius=, accepting a number or a preset name.
func (s *Server) radiusQuery(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("radius")
	if raw == "" {
		return s.cfg.DefaultRadius, nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, nil
	}
	return s.resolveRadius(raw, nil)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
