// Package service manages the marriage-type catalog, including its change
// history and reverting an entry to an earlier version.
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
	"trouwen/internal/catalog/models"
	"trouwen/internal/platform/metrics"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/requestcontext"
)

const msgIdentifierTaken = "De identificatie dient uniek te zijn voor de bronOrganisatie"

type Store interface {
	Create(ctx context.Context, t *models.MarriageType) error
	Update(ctx context.Context, t *models.MarriageType) error
	Delete(ctx context.Context, typeID id.MarriageTypeID) error
	FindByID(ctx context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error)
	List(ctx context.Context, filter models.Filter) ([]*models.MarriageType, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditLog records changes and answers history questions.
type AuditLog interface {
	Record(ctx context.Context, action audit.Action, objectClass string, objectID uuid.UUID, tracked audit.Data) (*audit.LogEntry, error)
	History(ctx context.Context, objectClass string, objectID uuid.UUID) ([]audit.LogEntry, error)
	Snapshot(ctx context.Context, objectClass string, objectID uuid.UUID, version int) (audit.Data, error)
}

type Service struct {
	store   Store
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

func New(store Store, tx TxRunner, auditLog AuditLog, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tx:     tx,
		audit:  auditLog,
		logger: slog.Default(),
		tracer: otel.Tracer("trouwen/catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, in models.Input) (*models.MarriageType, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Create")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	caller := requestcontext.Application(ctx)
	t, err := models.NewMarriageType(id.NewMarriageTypeID(), in, caller.RSIN, caller.ApplicationID, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, t); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionCreate, models.ObjectType, uuid.UUID(t.ID), t.Tracked())
		return err
	})
	if err != nil {
		return nil, translate(err, "failed to create marriage type")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionCreate))
	s.logger.InfoContext(ctx, "marriage type created",
		"type_id", t.ID.String(),
		"name", t.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return t, nil
}

func (s *Service) Replace(ctx context.Context, typeID id.MarriageTypeID, in models.Input) (*models.MarriageType, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Replace")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var t *models.MarriageType
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.store.FindByID(ctx, typeID)
		if err != nil {
			return err
		}
		return s.update(ctx, t, in)
	})
	if err != nil {
		return nil, translate(err, "failed to update marriage type")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionUpdate))
	return t, nil
}

func (s *Service) update(ctx context.Context, t *models.MarriageType, in models.Input) error {
	if err := t.Replace(in, requestcontext.Now(ctx)); err != nil {
		return err
	}
	if err := s.store.Update(ctx, t); err != nil {
		return err
	}
	_, err := s.audit.Record(ctx, audit.ActionUpdate, models.ObjectType, uuid.UUID(t.ID), t.Tracked())
	return err
}

func (s *Service) Delete(ctx context.Context, typeID id.MarriageTypeID) error {
	ctx, span := s.tracer.Start(ctx, "catalog.Delete")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, typeID); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionRemove, models.ObjectType, uuid.UUID(typeID), nil)
		return err
	})
	if err != nil {
		return translate(err, "failed to delete marriage type")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionRemove))
	return nil
}

func (s *Service) Get(ctx context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error) {
	t, err := s.store.FindByID(ctx, typeID)
	if err != nil {
		return nil, translate(err, "failed to load marriage type")
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.MarriageType, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list marriage types")
	}
	return out, nil
}

// History returns the change log of an existing entry, newest first.
func (s *Service) History(ctx context.Context, typeID id.MarriageTypeID) ([]audit.LogEntry, error) {
	if _, err := s.store.FindByID(ctx, typeID); err != nil {
		return nil, translate(err, "failed to load marriage type")
	}
	entries, err := s.audit.History(ctx, models.ObjectType, uuid.UUID(typeID))
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Revert restores the tracked fields of the entry as they were at version.
// The revert is logged as a regular update.
func (s *Service) Revert(ctx context.Context, typeID id.MarriageTypeID, version int) (*models.MarriageType, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Revert", trace.WithAttributes(
		attribute.String("type_id", typeID.String()),
		attribute.Int("version", version),
	))
	defer span.End()

	if version < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version must be a positive number")
	}

	var t *models.MarriageType
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.store.FindByID(ctx, typeID)
		if err != nil {
			return err
		}
		state, err := s.audit.Snapshot(ctx, models.ObjectType, uuid.UUID(typeID), version)
		if err != nil {
			return err
		}
		in := t.Restored(state)
		in.Normalize()
		if err := in.Validate(); err != nil {
			return err
		}
		return s.update(ctx, t, in)
	})
	if err != nil {
		return nil, translate(err, "failed to revert marriage type")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionUpdate))
	s.logger.InfoContext(ctx, "marriage type reverted",
		"type_id", typeID.String(),
		"version", version,
		"request_id", requestcontext.RequestID(ctx),
	)
	return t, nil
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
		return dErrors.New(dErrors.CodeNotFound, "marriage type not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, msgIdentifierTaken)
	}
	if _, ok := dErrors.As(err); ok {
		return invariantToValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
