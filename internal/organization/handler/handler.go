// Package handler exposes organizations at /organisaties and persons at /personen.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"trouwen/internal/organization/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/httputil"
)

type Service interface {
	CreateOrganization(ctx context.Context, in models.OrganizationInput) (*models.Organization, error)
	ReplaceOrganization(ctx context.Context, orgID id.OrganizationID, in models.OrganizationInput) (*models.Organization, error)
	DeleteOrganization(ctx context.Context, orgID id.OrganizationID) error
	GetOrganization(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error)
	ListOrganizations(ctx context.Context, filter models.OrganizationFilter) ([]*models.Organization, error)

	CreatePerson(ctx context.Context, in models.PersonInput) (*models.Person, error)
	ReplacePerson(ctx context.Context, personID id.PersonID, in models.PersonInput) (*models.Person, error)
	DeletePerson(ctx context.Context, personID id.PersonID) error
	GetPerson(ctx context.Context, personID id.PersonID) (*models.Person, error)
	ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/organisaties", func(r chi.Router) {
		r.Get("/", h.handleListOrganizations)
		r.Post("/", h.handleCreateOrganization)
		r.Get("/{id}", h.handleGetOrganization)
		r.Put("/{id}", h.handleReplaceOrganization)
		r.Delete("/{id}", h.handleDeleteOrganization)
	})
	r.Route("/personen", func(r chi.Router) {
		r.Get("/", h.handleListPersons)
		r.Post("/", h.handleCreatePerson)
		r.Get("/{id}", h.handleGetPerson)
		r.Put("/{id}", h.handleReplacePerson)
		r.Delete("/{id}", h.handleDeletePerson)
	})
}

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.OrganizationFilter{
		RSIN:      id.RSIN(strings.TrimSpace(q.Get("rsin"))),
		NameOrder: strings.ToLower(q.Get("order[naam]")),
	}
	orgs, err := h.service.ListOrganizations(r.Context(), filter)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to list organizations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(orgs))
}

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var in models.OrganizationInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid organization request", err)
		return
	}
	org, err := h.service.CreateOrganization(r.Context(), in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to create organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, org)
}

func (h *Handler) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid organization id", err)
		return
	}
	org, err := h.service.GetOrganization(r.Context(), orgID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to get organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) handleReplaceOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid organization id", err)
		return
	}
	var in models.OrganizationInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid organization request", err)
		return
	}
	org, err := h.service.ReplaceOrganization(r.Context(), orgID, in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to replace organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid organization id", err)
		return
	}
	if err := h.service.DeleteOrganization(r.Context(), orgID); err != nil {
		httputil.Fail(w, r, h.logger, "failed to delete organization", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPersons(w http.ResponseWriter, r *http.Request) {
	var filter models.PersonFilter
	if raw := r.URL.Query().Get("bronOrganisatie"); raw != "" {
		orgID, err := id.ParseOrganizationID(raw)
		if err != nil {
			httputil.Fail(w, r, h.logger, "invalid organization filter", err)
			return
		}
		filter.Organization = orgID
	}
	filter.Email = strings.TrimSpace(r.URL.Query().Get("emailadres"))

	persons, err := h.service.ListPersons(r.Context(), filter)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to list persons", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(persons))
}

func (h *Handler) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var in models.PersonInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid person request", err)
		return
	}
	p, err := h.service.CreatePerson(r.Context(), in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to create person", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid person id", err)
		return
	}
	p, err := h.service.GetPerson(r.Context(), personID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to get person", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleReplacePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid person id", err)
		return
	}
	var in models.PersonInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Fail(w, r, h.logger, "invalid person request", err)
		return
	}
	p, err := h.service.ReplacePerson(r.Context(), personID, in)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to replace person", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid person id", err)
		return
	}
	if err := h.service.DeletePerson(r.Context(), personID); err != nil {
		httputil.Fail(w, r, h.logger, "failed to delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
