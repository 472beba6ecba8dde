package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/centavo-app/centavo/internal/apperr"
	"github.com/centavo-app/centavo/internal/ledger"
	"github.com/centavo-app/centavo/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *ledger.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

var monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// monthParam reads and validates the optional ?month=YYYY-MM query parameter.
func monthParam(r *http.Request) (string, bool) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return "", true
	}
	return month, monthRe.MatchString(month)
}

// ListRecords handles GET /api/records.
//
//	@Summary		List records with optional type and month filtering
//	@Tags			records
//	@Produce		json
//	@Param			type	query		string	false	"Filter by record type"
//	@Param			month	query		string	false	"Filter by month (YYYY-MM)"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records [get]
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("month must be YYYY-MM"))
		return
	}
	typ := models.RecordType(r.URL.Query().Get("type"))

	records := h.svc.List(typ, month)
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}

// GetRecord handles GET /api/records/{id}.
//
//	@Summary		Get a single record by id
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{object}	models.Record
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id} [get]
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get record failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CreateRecord handles POST /api/records.
//
//	@Summary		Create a new record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Record	true	"Record to create"
//	@Success		201		{object}	models.Record
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records [post]
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	created, err := h.svc.Create(rec)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("create record failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateRecord handles PUT /api/records/{id}.
//
//	@Summary		Apply a partial update to a record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Record id"
//	@Param			body	body		models.RecordPatch	true	"Fields to change"
//	@Success		200		{object}	models.Record
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id} [put]
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var patch models.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	updated, err := h.svc.Update(id, patch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("update record failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteRecord handles DELETE /api/records/{id}. Deleting an unknown id is a
// success; the record is gone either way.
//
//	@Summary		Delete a record
//	@Tags			records
//	@Param			id	path	string	true	"Record id"
//	@Success		204
//	@Security		BearerAuth
//	@Router			/records/{id} [delete]
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	h.svc.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/summary.
//
//	@Summary		Month overview: totals, category breakdown, budget usage
//	@Tags			reports
//	@Produce		json
//	@Param			month	query		string	true	"Month (YYYY-MM)"
//	@Success		200		{object}	report.Summary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if !monthRe.MatchString(month) {
		writeJSON(w, http.StatusBadRequest, errorBody("month must be YYYY-MM"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Summary(month))
}

// Flush handles POST /api/flush.
//
//	@Summary		Persist unsaved changes immediately
//	@Tags			persistence
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flush [post]
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Flush(r.Context()); err != nil {
		slog.Error("flush failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("flush failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
