package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/godilite/qa-scorecard/internal/service"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	scoring ScoringService
	logger  *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request: %v", err))
		return false
	}
	return true
}

func templateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "template id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(r.Context().Err(), context.DeadlineExceeded):
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, scorecard.ErrManualScoreOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRubricNotFound), errors.Is(err, service.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func (h *Handlers) CalculateScore(w http.ResponseWriter, r *http.Request) {
	var req service.ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.scoring.CalculateScore(r.Context(), req)
	if err != nil {
		h.handleError(w, r, "CalculateScore", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ExplainScore(w http.ResponseWriter, r *http.Request) {
	var req service.ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	exp, err := h.scoring.ExplainScore(r.Context(), req)
	if err != nil {
		h.handleError(w, r, "ExplainScore", err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"roles": h.scoring.Roles()})
}

func (h *Handlers) ListVariants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scoring.ListVariants(chi.URLParam(r, "role")))
}

func (h *Handlers) GetRubric(w http.ResponseWriter, r *http.Request) {
	view, err := h.scoring.GetRubric(chi.URLParam(r, "role"), r.URL.Query().Get("variant"))
	if err != nil {
		h.handleError(w, r, "GetRubric", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.scoring.ListTemplates(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		h.handleError(w, r, "ListTemplates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]service.TemplateSummary{"templates": list})
}

func (h *Handlers) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}
	var req service.TemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TemplateID = id

	result, err := h.scoring.ApplyTemplate(r.Context(), req)
	if err != nil {
		h.handleError(w, r, "ApplyTemplate", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}
	var req service.SaveTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TemplateID = id
	req.Name = strings.TrimSpace(req.Name)

	if err := h.scoring.SaveTemplate(r.Context(), req); err != nil {
		h.handleError(w, r, "SaveTemplate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
