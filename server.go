// This file implements the HTTP API: a thin transport over the engine that
// lets other processes upload embeddings, load dataset files, and search.
package vectro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Server exposes the engine over HTTP.
//
// Endpoints:
//
//	GET  /            HTML index of endpoints
//	GET  /health      liveness + version
//	GET  /api/stats   dataset count, dimensionality, index state
//	POST /api/search  {"query": [...], "k": 10} -> ranked results
//	POST /api/upload  {"embeddings": [...]} -> replaces state, rebuilds index
//	GET  /api/load    ?path=... -> loads a dataset file, rebuilds index
//
// Uploads and loads swap in immutable snapshots under a write lock; searches
// take the read lock only long enough to grab the current index.
type Server struct {
	cfg Config
	log *slog.Logger

	mu      sync.RWMutex
	dataset *Dataset
	index   VectorIndex
}

// NewServer creates a server with no data loaded. A nil logger defaults to
// slog's package-level logger.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, log: logger}
}

// LoadDatasetFile loads a dataset file and rebuilds the index per the
// configured compression method.
func (s *Server) LoadDatasetFile(path string) error {
	dataset, err := LoadDataset(path)
	if err != nil {
		return err
	}
	return s.swapDataset(dataset)
}

// swapDataset builds an index over dataset and installs both atomically.
func (s *Server) swapDataset(dataset *Dataset) error {
	var index VectorIndex
	if s.cfg.CompressionMethod == CompressionQuantized {
		qi, err := NewQuantizedIndex(dataset, s.cfg.Codec)
		if err != nil {
			return err
		}
		qi.SetWorkers(s.cfg.Workers)
		index = qi
	} else {
		fi, err := NewFlatIndex(dataset)
		if err != nil {
			return err
		}
		fi.SetWorkers(s.cfg.Workers)
		index = fi
	}

	s.mu.Lock()
	s.dataset = dataset
	s.index = index
	s.mu.Unlock()

	s.log.Info("dataset installed",
		"count", dataset.Len(),
		"dim", dataset.Dim(),
		"index", index.Kind())
	return nil
}

// Handler returns the server's routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndexPage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/load", s.handleLoad)
	return s.logRequests(mux)
}

// ListenAndServe serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr, "version", Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>vectro</title></head><body>
<h1>vectro %s</h1>
<ul>
<li>GET /health</li>
<li>GET /api/stats</li>
<li>POST /api/search {"query": [...], "k": 10}</li>
<li>POST /api/upload {"embeddings": [{"id": ..., "vector": [...]}]}</li>
<li>GET /api/load?path=...</li>
</ul>
</body></html>
`, Version)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": Version,
	})
}

// stats is the shared response shape of /api/stats, /api/upload, /api/load.
type stats struct {
	Count       int  `json:"count"`
	Dimensions  *int `json:"dimensions"`
	IndexLoaded bool `json:"index_loaded"`
}

func (s *Server) currentStats() stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := stats{IndexLoaded: s.index != nil}
	if s.dataset != nil {
		st.Count = s.dataset.Len()
		dim := s.dataset.Dim()
		st.Dimensions = &dim
	}
	return st
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentStats())
}

type searchRequest struct {
	Query []float32 `json:"query"`
	K     int       `json:"k"`
}

type searchHit struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

type searchResponse struct {
	Results     []searchHit `json:"results"`
	QueryTimeMs float64     `json:"query_time_ms"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()
	if index == nil {
		writeError(w, http.StatusNotFound, "no index loaded")
		return
	}

	k := req.K
	if k == 0 {
		k = s.cfg.TopK
	}

	start := time.Now()
	results, err := index.SearchVector(req.Query, k)
	if err != nil {
		switch {
		case errors.Is(err, ErrDimensionMismatch), errors.Is(err, ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	hits := make([]searchHit, len(results))
	for i, res := range results {
		hits[i] = searchHit{ID: res.ID, Score: res.Similarity}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Results:     hits,
		QueryTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
	})
}

type uploadRequest struct {
	Embeddings []Embedding `json:"embeddings"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Embeddings) == 0 {
		writeError(w, http.StatusBadRequest, "no embeddings in request")
		return
	}

	dataset := NewDataset()
	for i, e := range req.Embeddings {
		if err := dataset.AddEmbedding(e); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("embedding %d: %v", i, err))
			return
		}
	}
	if err := s.swapDataset(dataset); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.currentStats())
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing path parameter")
		return
	}
	if err := s.LoadDatasetFile(path); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.currentStats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
