package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trouwen/internal/organization/models"
	"trouwen/internal/platform/postgres"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
	txcontext "trouwen/pkg/platform/tx"
)

type OrganizationPostgres struct {
	db *sql.DB
}

func NewOrganizationPostgres(db *sql.DB) *OrganizationPostgres {
	return &OrganizationPostgres{db: db}
}

const organizationColumns = `id, rsin, kvk, btw, eori, name, description, phone, email, owner_application, created_at, updated_at`

func (s *OrganizationPostgres) Create(ctx context.Context, org *models.Organization) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO organizations (`+organizationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(org.ID), string(org.RSIN), org.KVK, org.VAT, org.EORI,
		org.Name, org.Description, org.Phone, org.Email,
		postgres.NullableID(org.OwnerApplication), org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *OrganizationPostgres) Update(ctx context.Context, org *models.Organization) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE organizations
		SET rsin = $2, kvk = $3, btw = $4, eori = $5, name = $6, description = $7,
		    phone = $8, email = $9, updated_at = $10
		WHERE id = $1
	`,
		uuid.UUID(org.ID), string(org.RSIN), org.KVK, org.VAT, org.EORI,
		org.Name, org.Description, org.Phone, org.Email, org.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update organization: %w", err)
	}
	return requireRow(res)
}

func (s *OrganizationPostgres) Delete(ctx context.Context, orgID id.OrganizationID) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, uuid.UUID(orgID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrHasDependents
		}
		return fmt.Errorf("delete organization: %w", err)
	}
	return requireRow(res)
}

func (s *OrganizationPostgres) FindByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(orgID))
}

func (s *OrganizationPostgres) FindByRSIN(ctx context.Context, rsin id.RSIN) (*models.Organization, error) {
	return s.findOne(ctx, `WHERE rsin = $1`, string(rsin))
}

func (s *OrganizationPostgres) List(ctx context.Context, filter models.OrganizationFilter) ([]*models.Organization, error) {
	var (
		where []string
		args  []any
	)
	if filter.RSIN != "" {
		args = append(args, string(filter.RSIN))
		where = append(where, fmt.Sprintf("rsin = $%d", len(args)))
	}
	query := `SELECT ` + organizationColumns + ` FROM organizations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	switch filter.NameOrder {
	case "asc":
		query += ` ORDER BY lower(name) ASC`
	case "desc":
		query += ` ORDER BY lower(name) DESC`
	default:
		query += ` ORDER BY created_at ASC`
	}

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var out []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return out, nil
}

func (s *OrganizationPostgres) findOne(ctx context.Context, where string, arg any) (*models.Organization, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations `+where, arg)
	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row scanner) (*models.Organization, error) {
	var (
		org     models.Organization
		orgID   uuid.UUID
		rsin    string
		owner   uuid.NullUUID
		updated sql.NullTime
	)
	err := row.Scan(&orgID, &rsin, &org.KVK, &org.VAT, &org.EORI, &org.Name, &org.Description,
		&org.Phone, &org.Email, &owner, &org.CreatedAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	org.ID = id.OrganizationID(orgID)
	org.RSIN = id.RSIN(rsin)
	if owner.Valid {
		org.OwnerApplication = id.ApplicationID(owner.UUID)
	}
	org.UpdatedAt = timePtr(updated)
	return &org, nil
}

type PersonPostgres struct {
	db *sql.DB
}

func NewPersonPostgres(db *sql.DB) *PersonPostgres {
	return &PersonPostgres{db: db}
}

const personColumns = `id, organization_id, given_names, family_name, email, phone, language, registered_at, owner_application, updated_at`

func (s *PersonPostgres) Create(ctx context.Context, p *models.Person) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO persons (`+personColumns+`, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $8)
	`,
		uuid.UUID(p.ID), uuid.UUID(p.Organization), p.GivenNames, p.FamilyName, p.Email,
		p.Phone, p.Language, p.RegisteredAt, postgres.NullableID(p.OwnerApplication), p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *PersonPostgres) Update(ctx context.Context, p *models.Person) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE persons
		SET organization_id = $2, given_names = $3, family_name = $4, email = $5,
		    phone = $6, language = $7, updated_at = $8
		WHERE id = $1
	`,
		uuid.UUID(p.ID), uuid.UUID(p.Organization), p.GivenNames, p.FamilyName, p.Email,
		p.Phone, p.Language, p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update person: %w", err)
	}
	return requireRow(res)
}

func (s *PersonPostgres) Delete(ctx context.Context, personID id.PersonID) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, uuid.UUID(personID))
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireRow(res)
}

func (s *PersonPostgres) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, uuid.UUID(personID))
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PersonPostgres) List(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	var (
		where []string
		args  []any
	)
	if !filter.Organization.IsNil() {
		args = append(args, uuid.UUID(filter.Organization))
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		where = append(where, fmt.Sprintf("lower(email) = lower($%d)", len(args)))
	}
	query := `SELECT ` + personColumns + ` FROM persons`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY registered_at ASC`

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()

	var out []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

func (s *PersonPostgres) CountByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error) {
	var n int
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM persons WHERE organization_id = $1`, uuid.UUID(orgID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return n, nil
}

func scanPerson(row scanner) (*models.Person, error) {
	var (
		p        models.Person
		personID uuid.UUID
		orgID    uuid.UUID
		owner    uuid.NullUUID
		updated  sql.NullTime
	)
	err := row.Scan(&personID, &orgID, &p.GivenNames, &p.FamilyName, &p.Email, &p.Phone,
		&p.Language, &p.RegisteredAt, &owner, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan person: %w", err)
	}
	p.ID = id.PersonID(personID)
	p.Organization = id.OrganizationID(orgID)
	if owner.Valid {
		p.OwnerApplication = id.ApplicationID(owner.UUID)
	}
	p.UpdatedAt = timePtr(updated)
	return &p, nil
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

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
