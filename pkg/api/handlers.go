package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cfiledb/cfiledb/pkg/query"
	"github.com/cfiledb/cfiledb/pkg/store"
)

// Server holds the API server state
type Server struct {
	store   IColumnStore
	engine  *query.Engine
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(cs IColumnStore, engine *query.Engine, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:   cs,
		engine:  engine,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handlePutColumn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	var req PutColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.recordStoreOp("put_column", false, start)
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.store.PutColumn(name, req.Values); err != nil {
		s.recordStoreOp("put_column", false, start)
		s.sendStoreError(w, err)
		return
	}

	s.recordStoreOp("put_column", true, start)
	s.updateStoreStats()
	sendSuccess(w, map[string]interface{}{
		"column": name,
		"rows":   len(req.Values),
	})
}

func (s *Server) handleGetColumn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	info, err := s.store.ColumnInfo(name)
	if err != nil {
		s.recordStoreOp("get_column", false, start)
		s.sendStoreError(w, err)
		return
	}

	s.recordStoreOp("get_column", true, start)
	sendSuccess(w, info)
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	if err := s.store.DeleteColumn(name); err != nil {
		s.recordStoreOp("delete_column", false, start)
		s.sendStoreError(w, err)
		return
	}

	s.recordStoreOp("delete_column", true, start)
	s.updateStoreStats()
	sendSuccess(w, map[string]string{"column": name})
}

func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	names, err := s.store.ListColumns()
	if err != nil {
		s.recordStoreOp("list_columns", false, start)
		s.sendStoreError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	s.recordStoreOp("list_columns", true, start)
	sendSuccess(w, names)
}

func (s *Server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	ordinal, err := parseUint32(chi.URLParam(r, "ordinal"))
	if err != nil {
		sendError(w, "Invalid ordinal", http.StatusBadRequest)
		return
	}

	value, err := s.store.GetValue(name, ordinal)
	if err != nil {
		s.recordStoreOp("get_value", false, start)
		s.sendStoreError(w, err)
		return
	}

	s.recordStoreOp("get_value", true, start)
	sendSuccess(w, ValueResponse{Column: name, Ordinal: ordinal, Value: value})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	from, err := parseUint32(r.URL.Query().Get("start"))
	if err != nil {
		sendError(w, "Invalid start", http.StatusBadRequest)
		return
	}
	to, err := parseUint32(r.URL.Query().Get("end"))
	if err != nil {
		sendError(w, "Invalid end", http.StatusBadRequest)
		return
	}

	q := query.RangeQuery{Column: name, Start: from, End: to}
	if err := q.Validate(); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("aggregate") == "true" {
		stats, err := s.engine.Aggregate(r.Context(), q)
		if err != nil {
			s.recordStoreOp("aggregate", false, start)
			s.sendStoreError(w, err)
			return
		}
		s.recordStoreOp("aggregate", true, start)
		sendSuccess(w, stats)
		return
	}

	result, err := s.engine.ExecuteRange(r.Context(), q)
	if err != nil {
		s.recordStoreOp("scan", false, start)
		s.sendStoreError(w, err)
		return
	}

	s.recordStoreOp("scan", true, start)
	sendSuccess(w, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.UpdateStoreStats(stats.Columns, stats.TotalRows)
	}
	sendSuccess(w, stats)
}

// sendStoreError maps store errors onto HTTP status codes.
func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrColumnNotFound), errors.Is(err, store.ErrOrdinalNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrInvalidName):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		sendError(w, fmt.Sprintf("Internal error: %v", err), http.StatusInternalServerError)
	}
}

func (s *Server) recordStoreOp(operation string, success bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(operation, success, time.Since(start))
	}
}

func (s *Server) updateStoreStats() {
	if s.metrics == nil {
		return
	}
	if stats, err := s.store.Stats(); err == nil {
		s.metrics.UpdateStoreStats(stats.Columns, stats.TotalRows)
	}
}

func parseUint32(raw string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
