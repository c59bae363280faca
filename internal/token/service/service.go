// Package service issues and redeems single-use tokens.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	officiantmodels "trouwen/internal/officiant/models"
	"trouwen/internal/platform/metrics"
	"trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/requestcontext"
	"trouwen/pkg/secrets"
)

type Store interface {
	Create(ctx context.Context, t *models.Token) error
	FindByID(ctx context.Context, tokenID id.TokenID) (*models.Token, error)
	ListByObject(ctx context.Context, objectType string, objectID uuid.UUID) ([]*models.Token, error)
	MarkUsed(ctx context.Context, tokenID id.TokenID, at time.Time) error
}

// IssueRequest describes the token to create.
type IssueRequest struct {
	Action      string
	Description string
	Person      string
	ObjectType  string
	ObjectID    uuid.UUID
}

const codeBytes = 24

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("trouwen/token"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a token with a fresh random code. The cleartext code is only
// returned here.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.Issued, error) {
	ctx, span := s.tracer.Start(ctx, "token.Issue", trace.WithAttributes(
		attribute.String("object_type", req.ObjectType),
	))
	defer span.End()

	code, err := secrets.Generate(codeBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token code")
	}
	hash, err := secrets.Hash(code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash token code")
	}

	t, err := models.NewToken(id.NewTokenID(), req.Action, req.Description, req.Person, req.ObjectType, req.ObjectID, hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build token")
	}
	t.OwnerApplication = requestcontext.Application(ctx).ApplicationID

	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store token")
	}

	s.metrics.IncTokenIssued()
	s.logger.InfoContext(ctx, "token issued",
		"token_id", t.ID.String(),
		"object_type", t.ObjectType,
		"object_id", t.ObjectID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Issued{Token: t, Code: code}, nil
}

// OfficiantCreated issues the invitation the officiant's contact person
// accepts to conduct the marriage.
func (s *Service) OfficiantCreated(ctx context.Context, ev officiantmodels.OfficiantCreated) (*models.Issued, error) {
	return s.Issue(ctx, IssueRequest{
		Action:      models.ActionAcceptInvitation,
		Description: models.DescriptionAcceptInvitation,
		Person:      ev.ContactPerson,
		ObjectType:  officiantmodels.ObjectType,
		ObjectID:    uuid.UUID(ev.OfficiantID),
	})
}

func (s *Service) Get(ctx context.Context, tokenID id.TokenID) (*models.Token, error) {
	t, err := s.store.FindByID(ctx, tokenID)
	if err != nil {
		return nil, translate(err, "failed to load token")
	}
	return t, nil
}

func (s *Service) ListByObject(ctx context.Context, objectType string, objectID uuid.UUID) ([]*models.Token, error) {
	tokens, err := s.store.ListByObject(ctx, objectType, objectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tokens")
	}
	return tokens, nil
}

// Redeem checks code against the token and marks it used. A token can be
// redeemed once.
func (s *Service) Redeem(ctx context.Context, tokenID id.TokenID, code string) (*models.Token, error) {
	ctx, span := s.tracer.Start(ctx, "token.Redeem")
	defer span.End()

	t, err := s.store.FindByID(ctx, tokenID)
	if err != nil {
		return nil, translate(err, "failed to load token")
	}
	if t.IsUsed() {
		return nil, dErrors.New(dErrors.CodeConflict, "token has already been used")
	}
	if err := secrets.Verify(code, t.CodeHash); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			s.logger.WarnContext(ctx, "token redemption with wrong code",
				"token_id", tokenID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, dErrors.New(dErrors.CodeForbidden, "invalid token code")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify token code")
	}

	now := requestcontext.Now(ctx)
	if err := s.store.MarkUsed(ctx, tokenID, now); err != nil {
		return nil, translate(err, "failed to redeem token")
	}
	t.UsedAt = &now

	s.logger.InfoContext(ctx, "token redeemed",
		"token_id", tokenID.String(),
		"object_type", t.ObjectType,
		"request_id", requestcontext.RequestID(ctx),
	)
	return t, nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "token not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "token has already been used")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
