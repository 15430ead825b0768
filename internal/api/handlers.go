package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jwulff/inventory-go/internal/storage"
)

// AddIngredientRequest is the body of POST /api/ingredients.
type AddIngredientRequest struct {
	Name     string `json:"name"`
	Quantity uint32 `json:"quantity"`
	Unit     string `json:"unit"`
}

// DeleteIngredientsRequest is the body of DELETE /api/ingredients.
type DeleteIngredientsRequest struct {
	Names []string `json:"names"`
}

// addIngredientBody and deleteIngredientsBody tell absent fields apart
// from zero values.
type addIngredientBody struct {
	Name     *string `json:"name"`
	Quantity *uint32 `json:"quantity"`
	Unit     *string `json:"unit"`
}

type deleteIngredientsBody struct {
	Names *[]string `json:"names"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Deleted   []string `json:"deleted,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Uptime      string `json:"uptime"`
	Database    string `json:"database"`
	OpenConns   int    `json:"open_connections"`
	InUseConns  int    `json:"in_use_connections"`
	IdleConns   int    `json:"idle_connections"`
	WaitCount   int64  `json:"wait_count"`
	MaxOpenConn int    `json:"max_open_connections"`
}

// GET /api/ingredients
func (s *Server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.store.ListIngredients(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// POST /api/ingredients
func (s *Server) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	var body addIngredientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	switch {
	case body.Name == nil || *body.Name == "":
		s.writeError(w, r, http.StatusBadRequest, "name is required", nil)
		return
	case body.Quantity == nil:
		s.writeError(w, r, http.StatusBadRequest, "quantity is required", nil)
		return
	case body.Unit == nil:
		s.writeError(w, r, http.StatusBadRequest, "unit is required", nil)
		return
	}
	req := AddIngredientRequest{Name: *body.Name, Quantity: *body.Quantity, Unit: *body.Unit}

	if err := s.store.AddIngredient(r.Context(), req.Name, req.Quantity, req.Unit); err != nil {
		s.writeStoreError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DELETE /api/ingredients
//
// Names are deleted in order and the first failure stops the request.
// Deletes that already succeeded stay committed and are listed in the error.
func (s *Server) handleDeleteIngredients(w http.ResponseWriter, r *http.Request) {
	var body deleteIngredientsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if body.Names == nil {
		s.writeError(w, r, http.StatusBadRequest, "names is required", nil)
		return
	}
	req := DeleteIngredientsRequest{Names: *body.Names}

	deleted := make([]string, 0, len(req.Names))
	for _, name := range req.Names {
		if err := s.store.DeleteIngredient(r.Context(), name); err != nil {
			s.writeStoreError(w, r, err, deleted)
			return
		}
		deleted = append(deleted, name)
	}
	w.WriteHeader(http.StatusOK)
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Database:  "unchecked",
	}
	status := http.StatusOK

	if s.pool != nil {
		if err := s.pool.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", "error", err)
			resp.Status = "unhealthy"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
		stats := s.pool.Stats()
		resp.OpenConns = stats.OpenConnections
		resp.InUseConns = stats.InUse
		resp.IdleConns = stats.Idle
		resp.WaitCount = stats.WaitCount
		resp.MaxOpenConn = stats.MaxOpenConnections
	}

	writeJSON(w, status, resp)
}

// writeStoreError maps store failures to status codes: not found is 404,
// everything else 500.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, deleted []string) {
	status := http.StatusInternalServerError
	if storage.IsNotFound(err) {
		status = http.StatusNotFound
	} else {
		s.logger.Error("store operation failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	s.writeError(w, r, status, err.Error(), deleted)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, deleted []string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Deleted:   deleted,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
