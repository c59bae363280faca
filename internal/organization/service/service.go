// Package service manages organizations and their contact persons.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"trouwen/internal/audit"
	"trouwen/internal/organization/models"
	"trouwen/internal/platform/metrics"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/requestcontext"
)

const (
	ObjectClassOrganization = "organization"
	ObjectClassPerson       = "person"
)

type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, orgID id.OrganizationID) error
	FindByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error)
	FindByRSIN(ctx context.Context, rsin id.RSIN) (*models.Organization, error)
	List(ctx context.Context, filter models.OrganizationFilter) ([]*models.Organization, error)
}

type PersonStore interface {
	Create(ctx context.Context, p *models.Person) error
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, personID id.PersonID) error
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	List(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error)
	CountByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLog interface {
	Record(ctx context.Context, action audit.Action, objectClass string, objectID uuid.UUID, tracked audit.Data) (*audit.LogEntry, error)
}

type Service struct {
	orgs    OrganizationStore
	persons PersonStore
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

func New(orgs OrganizationStore, persons PersonStore, tx TxRunner, auditLog AuditLog, opts ...Option) *Service {
	s := &Service{
		orgs:    orgs,
		persons: persons,
		tx:      tx,
		audit:   auditLog,
		logger:  slog.Default(),
		tracer:  otel.Tracer("trouwen/organization"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateOrganization(ctx context.Context, in models.OrganizationInput) (*models.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organization.CreateOrganization")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	org, err := models.NewOrganization(id.NewOrganizationID(), in, requestcontext.Application(ctx).ApplicationID, now)
	if err != nil {
		return nil, invariantToValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionCreate, ObjectClassOrganization, uuid.UUID(org.ID), org.Tracked())
		return err
	})
	if err != nil {
		return nil, translateOrganizationError(err, "failed to create organization")
	}

	s.metrics.IncRecordWritten(ObjectClassOrganization, string(audit.ActionCreate))
	s.logger.InfoContext(ctx, "organization created",
		"organization_id", org.ID.String(),
		"rsin", org.RSIN.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return org, nil
}

func (s *Service) ReplaceOrganization(ctx context.Context, orgID id.OrganizationID, in models.OrganizationInput) (*models.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organization.ReplaceOrganization")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var org *models.Organization
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		org, err = s.orgs.FindByID(ctx, orgID)
		if err != nil {
			return err
		}
		org.Replace(in, requestcontext.Now(ctx))
		if err := s.orgs.Update(ctx, org); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, audit.ActionUpdate, ObjectClassOrganization, uuid.UUID(org.ID), org.Tracked())
		return err
	})
	if err != nil {
		return nil, translateOrganizationError(err, "failed to update organization")
	}

	s.metrics.IncRecordWritten(ObjectClassOrganization, string(audit.ActionUpdate))
	return org, nil
}

// DeleteOrganization removes an organization that no person refers to.
func (s *Service) DeleteOrganization(ctx context.Context, orgID id.OrganizationID) error {
	ctx, span := s.tracer.Start(ctx, "organization.DeleteOrganization")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.persons.CountByOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		if n > 0 {
			return sentinel.ErrHasDependents
		}
		if err := s.orgs.Delete(ctx, orgID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, audit.ActionRemove, ObjectClassOrganization, uuid.UUID(orgID), nil)
		return err
	})
	if err != nil {
		return translateOrganizationError(err, "failed to delete organization")
	}

	s.metrics.IncRecordWritten(ObjectClassOrganization, string(audit.ActionRemove))
	s.logger.InfoContext(ctx, "organization deleted",
		"organization_id", orgID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) GetOrganization(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, translateOrganizationError(err, "failed to load organization")
	}
	return org, nil
}

func (s *Service) FindOrganizationByRSIN(ctx context.Context, rsin id.RSIN) (*models.Organization, error) {
	org, err := s.orgs.FindByRSIN(ctx, rsin)
	if err != nil {
		return nil, translateOrganizationError(err, "failed to load organization")
	}
	return org, nil
}

func (s *Service) ListOrganizations(ctx context.Context, filter models.OrganizationFilter) ([]*models.Organization, error) {
	switch filter.NameOrder {
	case "", "asc", "desc":
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "order[naam] must be asc or desc")
	}
	orgs, err := s.orgs.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

func (s *Service) CreatePerson(ctx context.Context, in models.PersonInput) (*models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "organization.CreatePerson")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	orgID, err := parseOrganizationRef(in.Organization)
	if err != nil {
		return nil, err
	}

	var p *models.Person
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireOrganization(ctx, orgID); err != nil {
			return err
		}
		var err error
		p, err = models.NewPerson(id.NewPersonID(), orgID, in, requestcontext.Application(ctx).ApplicationID, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.persons.Create(ctx, p); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, audit.ActionCreate, ObjectClassPerson, uuid.UUID(p.ID), p.Tracked())
		return err
	})
	if err != nil {
		return nil, translatePersonError(err, "failed to create person")
	}

	s.metrics.IncRecordWritten(ObjectClassPerson, string(audit.ActionCreate))
	s.logger.InfoContext(ctx, "person created",
		"person_id", p.ID.String(),
		"organization_id", orgID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

func (s *Service) ReplacePerson(ctx context.Context, personID id.PersonID, in models.PersonInput) (*models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "organization.ReplacePerson")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	orgID, err := parseOrganizationRef(in.Organization)
	if err != nil {
		return nil, err
	}

	var p *models.Person
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.persons.FindByID(ctx, personID)
		if err != nil {
			return err
		}
		if err := s.requireOrganization(ctx, orgID); err != nil {
			return err
		}
		if err := p.Replace(orgID, in, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.persons.Update(ctx, p); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, audit.ActionUpdate, ObjectClassPerson, uuid.UUID(p.ID), p.Tracked())
		return err
	})
	if err != nil {
		return nil, translatePersonError(err, "failed to update person")
	}

	s.metrics.IncRecordWritten(ObjectClassPerson, string(audit.ActionUpdate))
	return p, nil
}

func (s *Service) DeletePerson(ctx context.Context, personID id.PersonID) error {
	ctx, span := s.tracer.Start(ctx, "organization.DeletePerson")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.persons.Delete(ctx, personID); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionRemove, ObjectClassPerson, uuid.UUID(personID), nil)
		return err
	})
	if err != nil {
		return translatePersonError(err, "failed to delete person")
	}
	s.metrics.IncRecordWritten(ObjectClassPerson, string(audit.ActionRemove))
	return nil
}

func (s *Service) GetPerson(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	p, err := s.persons.FindByID(ctx, personID)
	if err != nil {
		return nil, translatePersonError(err, "failed to load person")
	}
	return p, nil
}

func (s *Service) ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	persons, err := s.persons.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}
	return persons, nil
}

var errOrganizationMissing = errors.New("organization missing")

func (s *Service) requireOrganization(ctx context.Context, orgID id.OrganizationID) error {
	if _, err := s.orgs.FindByID(ctx, orgID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errOrganizationMissing
		}
		return err
	}
	return nil
}

func parseOrganizationRef(raw string) (id.OrganizationID, error) {
	orgID, err := id.ParseOrganizationID(raw)
	if err != nil {
		return id.OrganizationID{}, dErrors.NewValidation("bronOrganisatie: ongeldige verwijzing", []dErrors.Violation{
			{Field: "bronOrganisatie", Message: "De bronorganisatie is geen geldige verwijzing."},
		})
	}
	return orgID, nil
}

func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

func translateOrganizationError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "organization not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "an organization with this RSIN already exists")
	case errors.Is(err, sentinel.ErrHasDependents):
		return dErrors.New(dErrors.CodeConflict, "organization still has persons")
	}
	if _, ok := dErrors.As(err); ok {
		return invariantToValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func translatePersonError(err error, msg string) error {
	switch {
	case errors.Is(err, errOrganizationMissing):
		return dErrors.NewValidation("bronOrganisatie: organization not found", []dErrors.Violation{
			{Field: "bronOrganisatie", Message: "De bronorganisatie bestaat niet."},
		})
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "person not found")
	}
	if _, ok := dErrors.As(err); ok {
		return invariantToValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
