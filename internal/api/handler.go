// Package api exposes the ask pipeline over HTTP. The transport layer is a
// thin collaborator: it validates request shape, delegates to the services,
// and maps failure kinds to status codes.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"labintel/internal/catalog"
	"labintel/internal/domain"
	"labintel/internal/service"
)

// Handler serves the /v1 API.
type Handler struct {
	ask    *service.AskService
	cat    *catalog.Catalog
	askLog domain.AskLogRepository // nil disables /v1/history
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(ask *service.AskService, cat *catalog.Catalog, askLog domain.AskLogRepository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ask: ask, cat: cat, askLog: askLog, logger: logger.With("component", "api")}
}

// Routes mounts the API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/ask", h.handleAsk)
	r.Get("/schema", h.handleSchema)
	r.Get("/history", h.handleHistory)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer    string     `json:"answer"`
	Table     *tableJSON `json:"table,omitempty"`
	RowCount  int        `json:"row_count"`
	Truncated bool       `json:"truncated"`
}

type tableJSON struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: "InvalidRequest", Message: "invalid JSON body"})
		return
	}

	answer, err := h.ask.Ask(r.Context(), req.Question)
	if err != nil {
		status := httpStatusFromDomainError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("ask failed", "kind", service.FailureKind(err), "error", err)
		}
		writeJSON(w, status, errorBodyFromError(err))
		return
	}

	resp := askResponse{
		Answer:    answer.Text,
		RowCount:  answer.RowCount,
		Truncated: answer.Truncated,
	}
	if answer.Table != nil {
		resp.Table = &tableJSON{Columns: answer.Table.Columns, Rows: answer.Table.Rows}
	}
	writeJSON(w, http.StatusOK, resp)
}

type schemaColumnJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type schemaTableJSON struct {
	Table   string             `json:"table"`
	Columns []schemaColumnJSON `json:"columns"`
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	descriptors := h.cat.Describe()
	out := make([]schemaTableJSON, len(descriptors))
	for i, d := range descriptors {
		t := schemaTableJSON{Table: d.Table}
		for _, c := range d.Columns {
			t.Columns = append(t.Columns, schemaColumnJSON{Name: c.Name, Type: string(c.Type), Nullable: c.Nullable})
		}
		out[i] = t
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": out})
}

type historyEntryJSON struct {
	ID          int64  `json:"id"`
	Question    string `json:"question"`
	Statement   string `json:"statement,omitempty"`
	Status      string `json:"status"`
	FailureKind string `json:"failure_kind,omitempty"`
	RowCount    int    `json:"row_count"`
	Truncated   bool   `json:"truncated"`
	DurationMs  int64  `json:"duration_ms"`
	CreatedAt   string `json:"created_at"`
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.askLog == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Kind: "NotFound", Message: "ask log is not enabled"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Kind: "InvalidRequest", Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.askLog.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("history list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Kind: "internal", Message: "could not list history"})
		return
	}

	out := make([]historyEntryJSON, len(records))
	for i, rec := range records {
		out[i] = historyEntryJSON{
			ID:          rec.ID,
			Question:    rec.Question,
			Statement:   rec.Statement,
			Status:      rec.Status,
			FailureKind: rec.FailureKind,
			RowCount:    rec.RowCount,
			Truncated:   rec.Truncated,
			DurationMs:  rec.DurationMs,
			CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": out})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
