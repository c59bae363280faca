package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trouwen/internal/platform/postgres"
	"trouwen/internal/role/models"
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

const columns = `id, source_organization, consent, kind, status, marriage_id, parent_id, holder, owner_application, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.Role) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO roles (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(r.ID), string(r.SourceOrganization), r.Consent, string(r.Kind), r.Status,
		postgres.NullableID(r.Marriage), postgres.NullableID(r.Parent), r.Holder,
		postgres.NullableID(r.OwnerApplication), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, r *models.Role) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE roles
		SET consent = $2, kind = $3, status = $4, marriage_id = $5, parent_id = $6,
		    holder = $7, updated_at = $8
		WHERE id = $1
	`,
		uuid.UUID(r.ID), r.Consent, string(r.Kind), r.Status,
		postgres.NullableID(r.Marriage), postgres.NullableID(r.Parent), r.Holder, r.UpdatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}
	return requireRow(res)
}

// Delete removes a leaf role. The parent_id foreign key rejects deleting a
// role that still has children.
func (s *PostgresStore) Delete(ctx context.Context, roleID id.RoleID) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, uuid.UUID(roleID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrHasDependents
		}
		return fmt.Errorf("delete role: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT `+columns+` FROM roles WHERE id = $1`, uuid.UUID(roleID))
	r, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Role, error) {
	var (
		where []string
		args  []any
	)
	if !filter.Marriage.IsNil() {
		args = append(args, uuid.UUID(filter.Marriage))
		where = append(where, fmt.Sprintf("marriage_id = $%d", len(args)))
	}
	if !filter.Parent.IsNil() {
		args = append(args, uuid.UUID(filter.Parent))
		where = append(where, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	query := `SELECT ` + columns + ` FROM roles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC`

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var out []*models.Role
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Role, error) {
	var (
		r                models.Role
		roleID           uuid.UUID
		rsin, kind       string
		marriage, parent uuid.NullUUID
		owner            uuid.NullUUID
		updated          sql.NullTime
	)
	err := row.Scan(&roleID, &rsin, &r.Consent, &kind, &r.Status, &marriage, &parent,
		&r.Holder, &owner, &r.CreatedAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}
	r.ID = id.RoleID(roleID)
	r.SourceOrganization = id.RSIN(rsin)
	r.Kind = models.Kind(kind)
	if marriage.Valid {
		r.Marriage = id.MarriageID(marriage.UUID)
	}
	if parent.Valid {
		r.Parent = id.RoleID(parent.UUID)
	}
	if owner.Valid {
		r.OwnerApplication = id.ApplicationID(owner.UUID)
	}
	if updated.Valid {
		t := updated.Time
		r.UpdatedAt = &t
	}
	return &r, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
