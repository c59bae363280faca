// Package handler exposes the marriage-type catalog at /types.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trouwen/internal/audit"
	"trouwen/internal/catalog/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/httputil"
)

type Service interface {
	Create(ctx context.Context, in models.Input) (*models.MarriageType, error)
	Replace(ctx context.Context, typeID id.MarriageTypeID, in models.Input) (*models.MarriageType, error)
	Delete(ctx context.Context, typeID id.MarriageTypeID) error
	Get(ctx context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error)
	List(ctx context.Context, filter models.Filter) ([]*models.MarriageType, error)
	History(ctx context.Context, typeID id.MarriageTypeID) ([]audit.LogEntry, error)
	Revert(ctx context.Context, typeID id.MarriageTypeID, version int) (*models.MarriageType, error)
}

type Handler struct {
	service    Service
	publicBase string
	logger     *slog.Logger
}

// New builds the handler. publicBase prefixes the url rendered for each entry.
func New(service Service, publicBase string, logger *slog.Logger) *Handler {
	return &Handler{service: service, publicBase: publicBase, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/types", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleReplace)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/log", h.handleLog)
		r.Post("/{id}/revert/{version}", h.handleRevert)
	})
}

type entryResponse struct {
	*models.MarriageType
	URL string `json:"url"`
}

func (h *Handler) render(t *models.MarriageType) entryResponse {
	return entryResponse{MarriageType: t, URL: t.URL(h.publicBase)}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.Filter{
		SourceOrganization: id.RSIN(strings.TrimSpace(q.Get("bronOrganisatie"))),
		Identifier:         strings.TrimSpace(q.Get("identificatie")),
	}
	types, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to list marriage types", err)
		return
	}
	out := make([]entryResponse, 0, len(types))
	for _, t := range types {
		out = append(out, h.render(t))
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(out))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type request", err)
		return
	}
	t, err := h.service.Create(r.Context(), in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to create marriage type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.render(t))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	typeID, err := id.ParseMarriageTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type id", err)
		return
	}
	t, err := h.service.Get(r.Context(), typeID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to get marriage type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.render(t))
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	typeID, err := id.ParseMarriageTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type id", err)
		return
	}
	var in models.Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type request", err)
		return
	}
	t, err := h.service.Replace(r.Context(), typeID, in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to replace marriage type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.render(t))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	typeID, err := id.ParseMarriageTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type id", err)
		return
	}
	if err := h.service.Delete(r.Context(), typeID); err != nil {
		httputil.Fail(w, r, h.logger, "failed to delete marriage type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	typeID, err := id.ParseMarriageTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type id", err)
		return
	}
	entries, err := h.service.History(r.Context(), typeID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to load marriage type log", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(entries))
}

func (h *Handler) handleRevert(w http.ResponseWriter, r *http.Request) {
	typeID, err := id.ParseMarriageTypeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid marriage type id", err)
		return
	}
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid version",
			dErrors.New(dErrors.CodeBadRequest, "version must be a positive number"))
		return
	}
	t, err := h.service.Revert(r.Context(), typeID, version)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to revert marriage type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, h.render(t))
}
