// Package service manages marriage participant roles and their parent/child
// structure.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"trouwen/internal/audit"
	"trouwen/internal/platform/metrics"
	"trouwen/internal/role/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Role) error
	Update(ctx context.Context, r *models.Role) error
	Delete(ctx context.Context, roleID id.RoleID) error
	FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Role, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLog interface {
	Record(ctx context.Context, action audit.Action, objectClass string, objectID uuid.UUID, tracked audit.Data) (*audit.LogEntry, error)
}

var (
	errParentMissing  = errors.New("parent role missing")
	errParentMarriage = errors.New("parent role belongs to another marriage")
	errParentCycle    = errors.New("parent role would create a cycle")
)

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
		tracer: otel.Tracer("trouwen/role"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, in models.Input) (*models.Detail, error) {
	ctx, span := s.tracer.Start(ctx, "role.Create")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	caller := requestcontext.Application(ctx)
	r, err := models.NewRole(id.NewRoleID(), in, caller.RSIN, caller.ApplicationID, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkParent(ctx, r); err != nil {
			return err
		}
		if err := s.store.Create(ctx, r); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionCreate, models.ObjectType, uuid.UUID(r.ID), r.Tracked())
		return err
	})
	if err != nil {
		return nil, translate(err, "failed to create role")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionCreate))
	s.logger.InfoContext(ctx, "role created",
		"role_id", r.ID.String(),
		"kind", string(r.Kind),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Detail{Role: r, Children: []*models.Node{}}, nil
}

func (s *Service) Replace(ctx context.Context, roleID id.RoleID, in models.Input) (*models.Detail, error) {
	ctx, span := s.tracer.Start(ctx, "role.Replace")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var detail *models.Detail
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		r, err := s.store.FindByID(ctx, roleID)
		if err != nil {
			return err
		}
		if err := r.Replace(in, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.checkParent(ctx, r); err != nil {
			return err
		}
		if err := s.store.Update(ctx, r); err != nil {
			return err
		}
		if _, err := s.audit.Record(ctx, audit.ActionUpdate, models.ObjectType, uuid.UUID(r.ID), r.Tracked()); err != nil {
			return err
		}
		detail, err = s.detail(ctx, r)
		return err
	})
	if err != nil {
		return nil, translate(err, "failed to update role")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionUpdate))
	return detail, nil
}

// checkParent verifies that r's parent exists, belongs to the same marriage
// and is not r or one of its descendants.
func (s *Service) checkParent(ctx context.Context, r *models.Role) error {
	if !r.HasParent() {
		return nil
	}
	parent, err := s.store.FindByID(ctx, r.Parent)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errParentMissing
		}
		return err
	}
	if parent.Marriage != r.Marriage {
		return errParentMarriage
	}
	seen := map[id.RoleID]bool{r.ID: true}
	for cur := parent; cur.HasParent(); {
		if seen[cur.Parent] {
			return errParentCycle
		}
		seen[cur.Parent] = true
		if cur, err = s.store.FindByID(ctx, cur.Parent); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, roleID id.RoleID) error {
	ctx, span := s.tracer.Start(ctx, "role.Delete")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, roleID); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, audit.ActionRemove, models.ObjectType, uuid.UUID(roleID), nil)
		return err
	})
	if err != nil {
		return translate(err, "failed to delete role")
	}

	s.metrics.IncRecordWritten(models.ObjectType, string(audit.ActionRemove))
	return nil
}

// Get returns the role with its child roles up to models.MaxDepth levels.
func (s *Service) Get(ctx context.Context, roleID id.RoleID) (*models.Detail, error) {
	r, err := s.store.FindByID(ctx, roleID)
	if err != nil {
		return nil, translate(err, "failed to load role")
	}
	detail, err := s.detail(ctx, r)
	if err != nil {
		return nil, translate(err, "failed to load child roles")
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Role, error) {
	roles, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list roles")
	}
	return roles, nil
}

func (s *Service) detail(ctx context.Context, r *models.Role) (*models.Detail, error) {
	children, err := s.children(ctx, r.ID, 1)
	if err != nil {
		return nil, err
	}
	return &models.Detail{Role: r, Children: children}, nil
}

func (s *Service) children(ctx context.Context, parent id.RoleID, depth int) ([]*models.Node, error) {
	nodes := []*models.Node{}
	if depth > models.MaxDepth {
		return nodes, nil
	}
	roles, err := s.store.List(ctx, models.Filter{Parent: parent})
	if err != nil {
		return nil, err
	}
	for _, child := range roles {
		grandchildren, err := s.children(ctx, child.ID, depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &models.Node{
			ID:       child.ID,
			Kind:     child.Kind,
			Holder:   child.Holder,
			Children: grandchildren,
		})
	}
	return nodes, nil
}

func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

func parentViolation(msg string) error {
	return dErrors.NewValidation("rol: "+msg, []dErrors.Violation{{Field: "rol", Message: msg}})
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, errParentMissing):
		return parentViolation("De bovenliggende rol bestaat niet.")
	case errors.Is(err, errParentMarriage):
		return parentViolation("De bovenliggende rol hoort bij een ander huwelijk.")
	case errors.Is(err, errParentCycle):
		return parentViolation("De bovenliggende rol mag geen onderliggende rol zijn.")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "role not found")
	case errors.Is(err, sentinel.ErrHasDependents):
		return dErrors.New(dErrors.CodeConflict, "role still has child roles")
	}
	if _, ok := dErrors.As(err); ok {
		return invariantToValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
