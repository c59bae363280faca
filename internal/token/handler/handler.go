// Package handler exposes tokens at /tokens.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/httputil"
	"trouwen/pkg/platform/validation"
)

type Service interface {
	Get(ctx context.Context, tokenID id.TokenID) (*models.Token, error)
	ListByObject(ctx context.Context, objectType string, objectID uuid.UUID) ([]*models.Token, error)
	Redeem(ctx context.Context, tokenID id.TokenID, code string) (*models.Token, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/tokens", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/inwisselen", h.handleRedeem)
	})
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	objectType := q.Get("objectType")
	objectID, err := uuid.Parse(q.Get("objectId"))
	if objectType == "" || err != nil {
		httputil.Fail(w, r, h.logger, "invalid token filter",
			dErrors.New(dErrors.CodeBadRequest, "objectType and objectId are required"))
		return
	}
	tokens, err := h.service.ListByObject(r.Context(), objectType, objectID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to list tokens", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewCollection(tokens))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tokenID, err := id.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid token id", err)
		return
	}
	t, err := h.service.Get(r.Context(), tokenID)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to get token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	tokenID, err := id.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(w, r, h.logger, "invalid token id", err)
		return
	}
	var req redeemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(w, r, h.logger, "invalid redeem request", err)
		return
	}
	schema := validation.Schema{
		{Name: "code", Value: req.Code, Rules: []validation.Rule{validation.Required("Deze waarde mag niet leeg zijn.")}},
	}
	if err := schema.Validate(); err != nil {
		httputil.Fail(w, r, h.logger, "invalid redeem request", err)
		return
	}
	t, err := h.service.Redeem(r.Context(), tokenID, req.Code)
	if err != nil {
		httputil.Fail(w, r, h.logger, "failed to redeem token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}
