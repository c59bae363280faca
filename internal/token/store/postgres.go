package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trouwen/internal/platform/postgres"
	"trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
	txcontext "trouwen/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tokenColumns = `id, action, description, person, object_type, object_id, code_hash, created_at, used_at, owner_application`

func (s *PostgresStore) Create(ctx context.Context, t *models.Token) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO tokens (`+tokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.UUID(t.ID), t.Action, t.Description, t.Person, t.ObjectType, t.ObjectID, t.CodeHash, t.CreatedAt, t.UsedAt,
		postgres.NullableID(t.OwnerApplication))
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tokenID id.TokenID) (*models.Token, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = $1`, uuid.UUID(tokenID))
	t, err := scanToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) ListByObject(ctx context.Context, objectType string, objectID uuid.UUID) ([]*models.Token, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT `+tokenColumns+` FROM tokens
		WHERE object_type = $1 AND object_id = $2
		ORDER BY created_at ASC
	`, objectType, objectID)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var out []*models.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return out, nil
}

// MarkUsed relies on the used_at IS NULL guard so two concurrent redemptions
// cannot both succeed.
func (s *PostgresStore) MarkUsed(ctx context.Context, tokenID id.TokenID, at time.Time) error {
	exec := txcontext.Exec(ctx, s.db)
	res, err := exec.ExecContext(ctx, `UPDATE tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, uuid.UUID(tokenID), at)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tokens WHERE id = $1)`, uuid.UUID(tokenID)).Scan(&exists); err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrAlreadyUsed
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(row scanner) (*models.Token, error) {
	var (
		t       models.Token
		tokenID uuid.UUID
		used    sql.NullTime
		owner   uuid.NullUUID
	)
	err := row.Scan(&tokenID, &t.Action, &t.Description, &t.Person, &t.ObjectType, &t.ObjectID, &t.CodeHash, &t.CreatedAt, &used, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	t.ID = id.TokenID(tokenID)
	if owner.Valid {
		t.OwnerApplication = id.ApplicationID(owner.UUID)
	}
	if used.Valid {
		v := used.Time
		t.UsedAt = &v
	}
	return &t, nil
}
