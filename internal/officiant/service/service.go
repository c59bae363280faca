// Package service manages officiant assignments and raises the invitation
// for each new officiant.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trouwen/internal/audit"
	"trouwen/internal/officiant/models"
	"trouwen/internal/platform/metrics"
	tokenmodels "trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/requestcontext"
)

const msgPrimaryTaken = "Een huwelijk kan maar één primaire ambtenaar hebben"

type Service struct {
	store   Store
	tokens  TokenIssuer
	tx      TxRunner
	audit   AuditLog
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

func New(store Store, tokens TokenIssuer, tx TxRunner, auditLog AuditLog, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		tx:     tx,
		audit:  auditLog,
		logger: slog.Default(),
		tracer: otel.Tracer("trouwen/officiant"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new officiant and issues exactly one invitation token for
// it in the same transaction.
func (s *Service) Create(ctx context.Context, in models.Input) (*models.Created, error) {
	ctx, span := s.tracer.Start(ctx, "officiant.Create")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	caller := requestcontext.Application(ctx)
	o, err := models.NewOfficiant(id.NewOfficiantID(), in, caller.RSIN, caller.ApplicationID, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}
	span.SetAttributes(attribute.String("officiant_id", o.ID.String()))

	var invitation *tokenmodels.Issued
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, o); err != nil {
			return err
		}
		if _, err := s.audit.Record(ctx, audit.ActionCreate, models.ObjectType, uuid.UUID(o.ID), o.Tracked()); err != nil {
			return err
		}
		var err error
		invitation, err = s.tokens.OfficiantCreated(ctx, models.OfficiantCreated{
			OfficiantID:   o.ID,
			ContactPerson: o.ContactPerson,
		})
		return err
	})
	if err != nil {
		return nil, translate(err, "failed to create officiant")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionCreate))
	s.logger.InfoContext(ctx, "officiant created",
		"officiant_id", o.ID.String(),
		"marriage_id", o.Marriage.String(),
		"primary", o.Primary,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Created{Officiant: o, Invitation: invitation}, nil
}

func (s *Service) Replace(ctx context.Context, officiantID id.OfficiantID, in models.Input) (*models.Officiant, error) {
	ctx, span := s.tracer.Start(ctx, "officiant.Replace")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var o *models.Officiant
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.store.FindByID(ctx, officiantID)
		if err != nil {
			return err
		}
		if err := o.Replace(in, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.store.Update(ctx, o); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, audit.ActionUpdate, models.ObjectType, uuid.UUID(o.ID), o.Tracked())
		return err
	})
	if err != nil {
		return nil, translate(err, "failed to update officiant")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionUpdate))
	return o, nil
}

func (s *Service) Delete(ctx context.Context, officiantID id.OfficiantID) error {
	ctx, span := s.tracer.Start(ctx, "officiant.Delete")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, officiantID); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionRemove, models.ObjectType, uuid.UUID(officiantID), nil)
		return err
	})
	if err != nil {
		return translate(err, "failed to delete officiant")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionRemove))
	s.logger.InfoContext(ctx, "officiant deleted",
		"officiant_id", officiantID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, officiantID id.OfficiantID) (*models.Officiant, error) {
	o, err := s.store.FindByID(ctx, officiantID)
	if err != nil {
		return nil, translate(err, "failed to load officiant")
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Officiant, error) {
	if filter.CreatedOrder != "" && filter.CreatedOrder != "asc" && filter.CreatedOrder != "desc" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "order must be asc or desc")
	}
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list officiants")
	}
	return out, nil
}

func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "officiant not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, msgPrimaryTaken)
	}
	if _, ok := dErrors.As(err); ok {
		return invariantToValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
