package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	txcontext "trouwen/pkg/platform/tx"
	"trouwen/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
	object  uuid.UUID
	app     id.ApplicationID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.service = NewService(s.store, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	s.object = uuid.New()
	s.app = id.NewApplicationID()
	s.ctx = requestcontext.WithApplication(context.Background(), requestcontext.Caller{ApplicationID: s.app})
	s.ctx = requestcontext.WithTime(s.ctx, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) record(action Action, data Data) *LogEntry {
	entry, err := s.service.Record(s.ctx, action, "marriage_type", s.object, data)
	s.Require().NoError(err)
	return entry
}

func (s *ServiceSuite) TestRecord() {
	s.Run("create logs every tracked field as version 1", func() {
		entry := s.record(ActionCreate, Data{"naam": "Huwelijk", "taal": "nl"})

		s.Equal(1, entry.Version)
		s.Equal(Data{"naam": "Huwelijk", "taal": "nl"}, entry.Data)
		s.Equal(s.app, entry.Application)
		s.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), entry.LoggedAt)
	})

	s.Run("update keeps only changed fields", func() {
		entry := s.record(ActionUpdate, Data{"naam": "Partnerschap", "taal": "nl"})

		s.Equal(2, entry.Version)
		s.Equal(Data{"naam": "Partnerschap"}, entry.Data)
	})

	s.Run("update without changes is not logged", func() {
		entry := s.record(ActionUpdate, Data{"naam": "Partnerschap", "taal": "nl"})

		s.Nil(entry)
		history, err := s.service.History(s.ctx, "marriage_type", s.object)
		s.Require().NoError(err)
		s.Len(history, 2)
	})

	s.Run("remove logs an empty entry", func() {
		entry := s.record(ActionRemove, Data{"naam": "Partnerschap"})

		s.Equal(3, entry.Version)
		s.Empty(entry.Data)
	})

	s.Run("unknown action is rejected", func() {
		_, err := s.service.Record(s.ctx, Action("rename"), "marriage_type", s.object, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestHistoryNewestFirst() {
	s.record(ActionCreate, Data{"naam": "A-naam"})
	s.record(ActionUpdate, Data{"naam": "B-naam"})
	s.record(ActionUpdate, Data{"naam": "C-naam"})

	history, err := s.service.History(s.ctx, "marriage_type", s.object)
	s.Require().NoError(err)

	s.Require().Len(history, 3)
	s.Equal([]int{3, 2, 1}, []int{history[0].Version, history[1].Version, history[2].Version})
	s.Equal(ActionCreate, history[2].Action)
}

func (s *ServiceSuite) TestHistoryOfUnknownObjectIsEmpty() {
	history, err := s.service.History(s.ctx, "marriage_type", uuid.New())
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *ServiceSuite) TestSnapshot() {
	s.record(ActionCreate, Data{"naam": "Huwelijk", "samenvatting": "eerste samenvatting", "taal": "nl"})
	s.record(ActionUpdate, Data{"naam": "Partnerschap", "samenvatting": "eerste samenvatting", "taal": "nl"})
	s.record(ActionUpdate, Data{"naam": "Partnerschap", "samenvatting": "tweede samenvatting", "taal": "en"})

	s.Run("folds entries up to the version", func() {
		snap, err := s.service.Snapshot(s.ctx, "marriage_type", s.object, 2)
		s.Require().NoError(err)
		s.Equal(Data{"naam": "Partnerschap", "samenvatting": "eerste samenvatting", "taal": "nl"}, snap)
	})

	s.Run("first version equals the created state", func() {
		snap, err := s.service.Snapshot(s.ctx, "marriage_type", s.object, 1)
		s.Require().NoError(err)
		s.Equal("Huwelijk", snap["naam"])
	})

	s.Run("unknown version is not found", func() {
		_, err := s.service.Snapshot(s.ctx, "marriage_type", s.object, 4)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-positive version is a bad request", func() {
		_, err := s.service.Snapshot(s.ctx, "marriage_type", s.object, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestRecordNormalizesStructValues(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	object := uuid.New()
	ref := id.NewPersonID()

	_, err := svc.Record(context.Background(), ActionCreate, "officiant", object, Data{"contactpersoon": ref})
	require.NoError(t, err)

	entry, err := svc.Record(context.Background(), ActionUpdate, "officiant", object, Data{"contactpersoon": ref})
	require.NoError(t, err)
	assert.Nil(t, entry, "same value in typed and decoded form must not count as a change")
}

func TestConcurrentRecordsGetContiguousVersions(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	object := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(context.Background(), ActionCreate, "role", object, Data{"n": i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := svc.History(context.Background(), "role", object)
	require.NoError(t, err)
	require.Len(t, history, 20)
	for i, e := range history {
		assert.Equal(t, 20-i, e.Version)
	}
}

type stubStreamer struct {
	mu      sync.Mutex
	entries []LogEntry
	err     error
}

func (s *stubStreamer) Stream(_ context.Context, entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *stubStreamer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestRunStreamsRecordedEntries(t *testing.T) {
	streamer := &stubStreamer{}
	svc := NewService(NewInMemoryStore(), WithStreamer(streamer, 8))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	_, err := svc.Record(context.Background(), ActionCreate, "person", uuid.New(), Data{"voornaam": "John"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return streamer.count() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestStreamFailureDoesNotFailRecord(t *testing.T) {
	streamer := &stubStreamer{err: errors.New("broker down")}
	svc := NewService(NewInMemoryStore(),
		WithStreamer(streamer, 1),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)

	object := uuid.New()
	_, err := svc.Record(context.Background(), ActionCreate, "person", object, Data{"voornaam": "John"})
	require.NoError(t, err)
	// queue holds one entry; the second is dropped from the stream but still logged
	_, err = svc.Record(context.Background(), ActionUpdate, "person", object, Data{"voornaam": "Jan"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, 1, streamer.count())

	history, err := svc.History(context.Background(), "person", object)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRolledBackRecordIsNotStreamed(t *testing.T) {
	streamer := &stubStreamer{}
	svc := NewService(NewInMemoryStore(), WithStreamer(streamer, 8))
	runner := txcontext.NewMemoryRunner()

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		if _, err := svc.Record(ctx, ActionCreate, "officiant", uuid.New(), Data{"ambtenaar": "x"}); err != nil {
			return err
		}
		return errors.New("token store down")
	})
	require.Error(t, err)

	committed := uuid.New()
	err = runner.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := svc.Record(ctx, ActionCreate, "officiant", committed, Data{"ambtenaar": "y"})
		return err
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Run(ctx))
	require.Equal(t, 1, streamer.count())
	assert.Equal(t, committed, streamer.entries[0].ObjectID)
}
