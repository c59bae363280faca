// Package handler exposes officiant assignments at /huwelijk-ambtenaren.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"trouwen/internal/officiant/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/httputil"
)

type Service interface {
	Create(ctx context.Context, in models.Input) (*models.Created, error)
	Replace(ctx context.Context, officiantID id.OfficiantID, in models.Input) (*models.Officiant, error)
	Delete(ctx context.Context, officiantID id.OfficiantID) error
	Get(ctx context.Context, officiantID id.OfficiantID) (*models.Officiant, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Officiant, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/huwelijk-ambtenaren", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleReplace)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.Filter{
		SourceOrganization: id.RSIN(strings.TrimSpace(q.Get("bronOrganisatie"))),
		CreatedOrder:       strings.ToLower(q.Get("order[registratiedatum]")),
	}
	if raw := q.Get("huwelijk"); raw != "" {
		marriageID, err := id.ParseMarriageID(raw)
		if err != nil {
			httputil.Fail(w, r, h.logger, "invalid marriage filter", err)
			return
		}
		filter.Marriage = marriageID
	}
	officiants, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to list officiants", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(officiants))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid officiant request", err)
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to create officiant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	officiantID, err := id.ParseOfficiantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid officiant id", err)
		return
	}
	o, err := h.service.Get(r.Context(), officiantID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to get officiant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	officiantID, err := id.ParseOfficiantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid officiant id", err)
		return
	}
	var in models.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid officiant request", err)
		return
	}
	o, err := h.service.Replace(r.Context(), officiantID, in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to replace officiant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	officiantID, err := id.ParseOfficiantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid officiant id", err)
		return
	}
	if err := h.service.Delete(r.Context(), officiantID); err != nil {
		httputil.Fail(w, r, h.logger, "failed to delete officiant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
