package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trouwen/internal/platform/metrics"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	txcontext "trouwen/pkg/platform/tx"
	"trouwen/pkg/requestcontext"
)

// Store persists log entries. Append must assign entry.Version as one more
// than the highest version already stored for the object.
type Store interface {
	Append(ctx context.Context, entry *LogEntry) error
	ListByObject(ctx context.Context, objectClass string, objectID uuid.UUID) ([]LogEntry, error)
}

// Streamer forwards persisted entries to an external consumer.
type Streamer interface {
	Stream(ctx context.Context, entry LogEntry) error
}

const defaultStreamBuffer = 256

// Service records and reads the versioned change log.
type Service struct {
	store    Store
	streamer Streamer
	queue    chan LogEntry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
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

// WithStreamer enables forwarding of committed entries. Entries are queued
// and sent by Run; when the queue is full the entry is dropped from the
// stream only.
func WithStreamer(streamer Streamer, buffer int) Option {
	return func(s *Service) {
		if buffer <= 0 {
			buffer = defaultStreamBuffer
		}
		s.streamer = streamer
		s.queue = make(chan LogEntry, buffer)
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("trouwen/audit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends a log entry for one change. On update only the fields that
// differ from the latest logged state are kept; an update that changes no
// tracked field is not logged and returns a nil entry. The entry is queued
// for streaming only once the surrounding transaction commits.
func (s *Service) Record(ctx context.Context, action Action, objectClass string, objectID uuid.UUID, tracked Data) (*LogEntry, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Record", trace.WithAttributes(
		attribute.String("object_class", objectClass),
		attribute.String("action", string(action)),
	))
	defer span.End()

	data, err := normalize(tracked)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode log data")
	}

	switch action {
	case ActionCreate:
	case ActionUpdate:
		entries, err := s.store.ListByObject(ctx, objectClass, objectID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
		}
		data = diff(fold(entries, len(entries)), data)
		if len(data) == 0 {
			return nil, nil
		}
	case ActionRemove:
		data = Data{}
	default:
		return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unknown log action %q", action))
	}

	entry := &LogEntry{
		ID:          id.NewLogEntryID(),
		Action:      action,
		ObjectClass: objectClass,
		ObjectID:    objectID,
		Data:        data,
		LoggedAt:    requestcontext.Now(ctx),
		Application: requestcontext.Application(ctx).ApplicationID,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append log entry")
	}
	s.metrics.IncLogEntry(objectClass, string(action))
	streamed := *entry
	txcontext.AfterCommit(ctx, func() { s.enqueue(ctx, streamed) })
	return entry, nil
}

// History returns every entry of the object, newest first.
func (s *Service) History(ctx context.Context, objectClass string, objectID uuid.UUID) ([]LogEntry, error) {
	ctx, span := s.tracer.Start(ctx, "audit.History")
	defer span.End()

	entries, err := s.store.ListByObject(ctx, objectClass, objectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	out := make([]LogEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

// Snapshot returns the tracked field state of the object as of version.
func (s *Service) Snapshot(ctx context.Context, objectClass string, objectID uuid.UUID, version int) (Data, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Snapshot", trace.WithAttributes(
		attribute.Int("version", version),
	))
	defer span.End()

	if version < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version must be a positive number")
	}
	entries, err := s.store.ListByObject(ctx, objectClass, objectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	if version > len(entries) {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("version %d not found", version))
	}
	return fold(entries, version), nil
}

// Run forwards queued entries to the streamer until ctx is done. Stream
// failures are logged and counted; they never reach the writer.
func (s *Service) Run(ctx context.Context) error {
	if s.streamer == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return nil
		case entry := <-s.queue:
			s.stream(ctx, entry)
		}
	}
}

func (s *Service) drain() {
	ctx := context.Background()
	for {
		select {
		case entry := <-s.queue:
			s.stream(ctx, entry)
		default:
			return
		}
	}
}

func (s *Service) stream(ctx context.Context, entry LogEntry) {
	if err := s.streamer.Stream(ctx, entry); err != nil {
		s.metrics.IncStreamFailure()
		s.logger.ErrorContext(ctx, "failed to stream log entry",
			"error", err,
			"object_class", entry.ObjectClass,
			"object_id", entry.ObjectID.String(),
			"version", entry.Version,
		)
	}
}

func (s *Service) enqueue(ctx context.Context, entry LogEntry) {
	if s.queue == nil {
		return
	}
	select {
	case s.queue <- entry:
	default:
		s.metrics.IncStreamFailure()
		s.logger.WarnContext(ctx, "log stream queue full, entry not streamed",
			"object_class", entry.ObjectClass,
			"version", entry.Version,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// fold merges the data of entries with version <= upTo.
func fold(entries []LogEntry, upTo int) Data {
	state := Data{}
	for _, e := range entries {
		if e.Version > upTo {
			break
		}
		for k, v := range e.Data {
			state[k] = v
		}
	}
	return state
}

func diff(current, next Data) Data {
	changed := Data{}
	for k, v := range next {
		if old, ok := current[k]; !ok || !reflect.DeepEqual(old, v) {
			changed[k] = v
		}
	}
	return changed
}

// normalize round-trips through JSON so values compare the same whether they
// came from a struct field or from a stored entry.
func normalize(d Data) (Data, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	out := Data{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
