package service

import (
	"context"

	"github.com/google/uuid"

	"trouwen/internal/audit"
	"trouwen/internal/officiant/models"
	tokenmodels "trouwen/internal/token/models"
	id "trouwen/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, o *models.Officiant) error
	Update(ctx context.Context, o *models.Officiant) error
	Delete(ctx context.Context, officiantID id.OfficiantID) error
	FindByID(ctx context.Context, officiantID id.OfficiantID) (*models.Officiant, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Officiant, error)
}

// TokenIssuer reacts to a stored officiant by issuing its invitation.
type TokenIssuer interface {
	OfficiantCreated(ctx context.Context, ev models.OfficiantCreated) (*tokenmodels.Issued, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLog interface {
	Record(ctx context.Context, action audit.Action, objectClass string, objectID uuid.UUID, tracked audit.Data) (*audit.LogEntry, error)
}
