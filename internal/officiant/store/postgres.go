package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trouwen/internal/officiant/models"
	"trouwen/internal/platform/postgres"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
	txcontext "trouwen/pkg/platform/tx"
)

const primaryConstraint = "officiants_primary_per_marriage"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const columns = `id, source_organization, marriage_id, is_primary, consent, status, officiant, role, contact_person, owner_application, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, o *models.Officiant) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO officiants (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(o.ID), string(o.SourceOrganization), postgres.NullableID(o.Marriage), o.Primary,
		o.Consent, o.Status, o.OfficiantRef, string(o.Role), o.ContactPerson,
		postgres.NullableID(o.OwnerApplication), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, primaryConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert officiant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, o *models.Officiant) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE officiants
		SET marriage_id = $2, is_primary = $3, consent = $4, status = $5, officiant = $6,
		    role = $7, contact_person = $8, updated_at = $9
		WHERE id = $1
	`,
		uuid.UUID(o.ID), postgres.NullableID(o.Marriage), o.Primary, o.Consent, o.Status,
		o.OfficiantRef, string(o.Role), o.ContactPerson, o.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, primaryConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update officiant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, officiantID id.OfficiantID) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM officiants WHERE id = $1`, uuid.UUID(officiantID))
	if err != nil {
		return fmt.Errorf("delete officiant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, officiantID id.OfficiantID) (*models.Officiant, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+columns+` FROM officiants WHERE id = $1`, uuid.UUID(officiantID))
	o, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Officiant, error) {
	var (
		where []string
		args  []any
	)
	if !filter.Marriage.IsNil() {
		args = append(args, uuid.UUID(filter.Marriage))
		where = append(where, fmt.Sprintf("marriage_id = $%d", len(args)))
	}
	if filter.SourceOrganization != "" {
		args = append(args, string(filter.SourceOrganization))
		where = append(where, fmt.Sprintf("source_organization = $%d", len(args)))
	}
	query := `SELECT ` + columns + ` FROM officiants`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if filter.CreatedOrder == "desc" {
		query += ` ORDER BY created_at DESC`
	} else {
		query += ` ORDER BY created_at ASC`
	}

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query officiants: %w", err)
	}
	defer rows.Close()

	var out []*models.Officiant
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate officiants: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Officiant, error) {
	var (
		o           models.Officiant
		officiantID uuid.UUID
		rsin, role  string
		marriage    uuid.NullUUID
		owner       uuid.NullUUID
		updated     sql.NullTime
	)
	err := row.Scan(&officiantID, &rsin, &marriage, &o.Primary, &o.Consent, &o.Status,
		&o.OfficiantRef, &role, &o.ContactPerson, &owner, &o.CreatedAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan officiant: %w", err)
	}
	o.ID = id.OfficiantID(officiantID)
	o.SourceOrganization = id.RSIN(rsin)
	o.Role = models.Role(role)
	if marriage.Valid {
		o.Marriage = id.MarriageID(marriage.UUID)
	}
	if owner.Valid {
		o.OwnerApplication = id.ApplicationID(owner.UUID)
	}
	if updated.Valid {
		t := updated.Time
		o.UpdatedAt = &t
	}
	return &o, nil
}
