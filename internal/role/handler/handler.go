// Package handler exposes marriage roles at /rollen.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouwen/internal/role/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/httputil"
)

type Service interface {
	Create(ctx context.Context, in models.Input) (*models.Detail, error)
	Replace(ctx context.Context, roleID id.RoleID, in models.Input) (*models.Detail, error)
	Delete(ctx context.Context, roleID id.RoleID) error
	Get(ctx context.Context, roleID id.RoleID) (*models.Detail, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Role, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/rollen", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleReplace)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var filter models.Filter
	q := r.URL.Query()
	if raw := q.Get("huwelijk"); raw != "" {
		marriageID, err := id.ParseMarriageID(raw)
		if err != nil {
			httputil.Fail(w, r, h.logger, "invalid marriage filter", err)
			return
		}
		filter.Marriage = marriageID
	}
	if raw := q.Get("rol"); raw != "" {
		parentID, err := id.ParseRoleID(raw)
		if err != nil {
			httputil.Fail(w, r, h.logger, "invalid parent filter", err)
			return
		}
		filter.Parent = parentID
	}
	roles, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to list roles", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(roles))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid role request", err)
		return
	}
	role, err := h.service.Create(r.Context(), in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to create role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	roleID, err := id.ParseRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid role id", err)
		return
	}
	role, err := h.service.Get(r.Context(), roleID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to get role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	roleID, err := id.ParseRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid role id", err)
		return
	}
	var in models.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid role request", err)
		return
	}
	role, err := h.service.Replace(r.Context(), roleID, in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to replace role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	roleID, err := id.ParseRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid role id", err)
		return
	}
	if err := h.service.Delete(r.Context(), roleID); err != nil {
		httputil.Fail(w, r, h.logger, "failed to delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
