package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trouwen/internal/catalog/models"
	"trouwen/internal/platform/postgres"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
	txcontext "trouwen/pkg/platform/tx"
)

const identifierConstraint = "marriage_types_identifier_per_organization"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const columns = `id, identifier, source_organization, name, summary, description, product,
	extra_products, locations, officiants, language, contact_person, owner_application, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.MarriageType) error {
	lists, err := encodeLists(t)
	if err != nil {
		return err
	}
	_, err = txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO marriage_types (`+columns+`)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		uuid.UUID(t.ID), t.Identifier, string(t.SourceOrganization), t.Name, t.Summary, t.Description, t.Product,
		lists[0], lists[1], lists[2], t.Language, t.ContactPerson,
		postgres.NullableID(t.OwnerApplication), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, identifierConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert marriage type: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, t *models.MarriageType) error {
	lists, err := encodeLists(t)
	if err != nil {
		return err
	}
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE marriage_types
		SET identifier = NULLIF($2, ''), name = $3, summary = $4, description = $5, product = $6,
		    extra_products = $7, locations = $8, officiants = $9, language = $10,
		    contact_person = $11, updated_at = $12
		WHERE id = $1
	`,
		uuid.UUID(t.ID), t.Identifier, t.Name, t.Summary, t.Description, t.Product,
		lists[0], lists[1], lists[2], t.Language, t.ContactPerson, t.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, identifierConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update marriage type: %w", err)
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

func (s *PostgresStore) Delete(ctx context.Context, typeID id.MarriageTypeID) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM marriage_types WHERE id = $1`, uuid.UUID(typeID))
	if err != nil {
		return fmt.Errorf("delete marriage type: %w", err)
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

func (s *PostgresStore) FindByID(ctx context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+columns+` FROM marriage_types WHERE id = $1`, uuid.UUID(typeID))
	t, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.MarriageType, error) {
	var (
		where []string
		args  []any
	)
	if filter.SourceOrganization != "" {
		args = append(args, string(filter.SourceOrganization))
		where = append(where, fmt.Sprintf("source_organization = $%d", len(args)))
	}
	if filter.Identifier != "" {
		args = append(args, filter.Identifier)
		where = append(where, fmt.Sprintf("identifier = $%d", len(args)))
	}
	query := `SELECT ` + columns + ` FROM marriage_types`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC`

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query marriage types: %w", err)
	}
	defer rows.Close()

	var out []*models.MarriageType
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate marriage types: %w", err)
	}
	return out, nil
}

// encodeLists renders the list columns as JSON text; lib/pq would send []byte
// as bytea.
func encodeLists(t *models.MarriageType) ([3]string, error) {
	var out [3]string
	for i, list := range [][]string{t.ExtraProducts, t.Locations, t.Officiants} {
		if list == nil {
			list = []string{}
		}
		raw, err := json.Marshal(list)
		if err != nil {
			return out, fmt.Errorf("encode marriage type lists: %w", err)
		}
		out[i] = string(raw)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.MarriageType, error) {
	var (
		t                          models.MarriageType
		typeID                     uuid.UUID
		identifier                 sql.NullString
		rsin                       string
		extras, locations, persons []byte
		owner                      uuid.NullUUID
		updated                    sql.NullTime
	)
	err := row.Scan(&typeID, &identifier, &rsin, &t.Name, &t.Summary, &t.Description, &t.Product,
		&extras, &locations, &persons, &t.Language, &t.ContactPerson, &owner, &t.CreatedAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan marriage type: %w", err)
	}
	t.ID = id.MarriageTypeID(typeID)
	t.Identifier = identifier.String
	t.SourceOrganization = id.RSIN(rsin)
	for dst, raw := range map[*[]string][]byte{&t.ExtraProducts: extras, &t.Locations: locations, &t.Officiants: persons} {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("decode marriage type lists: %w", err)
		}
	}
	if owner.Valid {
		t.OwnerApplication = id.ApplicationID(owner.UUID)
	}
	if updated.Valid {
		u := updated.Time
		t.UpdatedAt = &u
	}
	return &t, nil
}
