package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"trouwen/internal/application/models"
	"trouwen/internal/platform/postgres"
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

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO applications (id, client_id, name, secret, rsin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(app.ID), app.ClientID, app.Name, app.Secret, string(app.RSIN), app.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(appID))
}

func (s *PostgresStore) FindByClientID(ctx context.Context, clientID string) (*models.Application, error) {
	return s.findOne(ctx, `WHERE client_id = $1`, clientID)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Application, error) {
	var (
		app   models.Application
		appID uuid.UUID
		rsin  string
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, client_id, name, secret, rsin, created_at
		FROM applications `+where, arg).
		Scan(&appID, &app.ClientID, &app.Name, &app.Secret, &rsin, &app.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	app.RSIN = id.RSIN(rsin)
	return &app, nil
}
