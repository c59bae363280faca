package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"trouwen/internal/platform/postgres"
	id "trouwen/pkg/domain"
	txcontext "trouwen/pkg/platform/tx"
)

// PostgresStore persists log entries in the log_entries table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const appendRetries = 3

// Append assigns the next version in the INSERT itself. Inside a transaction
// an advisory lock on the object serializes writers, since a failed INSERT
// would abort the transaction; outside one a version collision is retried.
func (s *PostgresStore) Append(ctx context.Context, entry *LogEntry) error {
	payload, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("marshal log data: %w", err)
	}
	var app *uuid.UUID
	if !entry.Application.IsNil() {
		u := uuid.UUID(entry.Application)
		app = &u
	}

	exec := txcontext.Exec(ctx, s.db)
	_, inTx := txcontext.From(ctx)
	if inTx {
		lockKey := entry.ObjectClass + ":" + entry.ObjectID.String()
		if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("lock log object: %w", err)
		}
	}

	query := `
		INSERT INTO log_entries (id, action, object_class, object_id, version, data, logged_at, application)
		SELECT $1, $2, $3, $4, COALESCE(MAX(version), 0) + 1, $5, $6, $7
		FROM log_entries
		WHERE object_class = $3 AND object_id = $4
		RETURNING version
	`
	for attempt := 0; ; attempt++ {
		err = exec.QueryRowContext(ctx, query,
			uuid.UUID(entry.ID),
			string(entry.Action),
			entry.ObjectClass,
			entry.ObjectID,
			payload,
			entry.LoggedAt,
			app,
		).Scan(&entry.Version)
		if err == nil {
			return nil
		}
		if inTx || attempt >= appendRetries || !postgres.IsUniqueViolation(err, "log_entries_object_version") {
			return fmt.Errorf("insert log entry: %w", err)
		}
	}
}

func (s *PostgresStore) ListByObject(ctx context.Context, objectClass string, objectID uuid.UUID) ([]LogEntry, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT id, action, object_class, object_id, version, data, logged_at, application
		FROM log_entries
		WHERE object_class = $1 AND object_id = $2
		ORDER BY version ASC
	`, objectClass, objectID)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			e       LogEntry
			entryID uuid.UUID
			action  string
			payload []byte
			app     uuid.NullUUID
		)
		if err := rows.Scan(&entryID, &action, &e.ObjectClass, &e.ObjectID, &e.Version, &payload, &e.LoggedAt, &app); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Data); err != nil {
			return nil, fmt.Errorf("decode log data: %w", err)
		}
		e.ID = id.LogEntryID(entryID)
		e.Action = Action(action)
		if app.Valid {
			e.Application = id.ApplicationID(app.UUID)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return entries, nil
}
