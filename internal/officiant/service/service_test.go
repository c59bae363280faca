package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks TokenIssuer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"trouwen/internal/audit"
	"trouwen/internal/officiant/models"
	"trouwen/internal/officiant/service/mocks"
	"trouwen/internal/officiant/store"
	tokenmodels "trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/tx"
	"trouwen/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	tokens  *mocks.MockTokenIssuer
	audit   *audit.Service
	service *Service
	ctx     context.Context
	caller  requestcontext.Caller
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.audit = audit.NewService(audit.NewInMemoryStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(store.NewInMemory(), s.tokens, tx.NewMemoryRunner(), s.audit, WithLogger(logger))
	s.caller = requestcontext.Caller{ApplicationID: id.NewApplicationID(), RSIN: "002220647"}
	s.ctx = requestcontext.WithApplication(context.Background(), s.caller)
	s.ctx = requestcontext.WithTime(s.ctx, time.Date(2026, 6, 12, 10, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func issued(ev models.OfficiantCreated) *tokenmodels.Issued {
	return &tokenmodels.Issued{
		Token: &tokenmodels.Token{
			ID:         id.NewTokenID(),
			Action:     tokenmodels.ActionAcceptInvitation,
			Person:     ev.ContactPerson,
			ObjectType: models.ObjectType,
			ObjectID:   uuid.UUID(ev.OfficiantID),
		},
		Code: "secret",
	}
}

func (s *ServiceSuite) expectInvitation() {
	s.tokens.EXPECT().OfficiantCreated(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev models.OfficiantCreated) (*tokenmodels.Issued, error) {
			return issued(ev), nil
		}).Times(1)
}

func (s *ServiceSuite) TestCreate() {
	s.Run("issues exactly one invitation for the new officiant", func() {
		var got models.OfficiantCreated
		s.tokens.EXPECT().OfficiantCreated(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev models.OfficiantCreated) (*tokenmodels.Issued, error) {
				got = ev
				return issued(ev), nil
			}).Times(1)

		created, err := s.service.Create(s.ctx, models.Input{
			Marriage:      uuid.NewString(),
			ContactPerson: "https://example.com/personen/1",
			OfficiantRef:  "https://example.com/ambtenaren/7",
		})
		s.Require().NoError(err)

		s.Equal(created.ID, got.OfficiantID)
		s.Equal("https://example.com/personen/1", got.ContactPerson)
		s.Require().NotNil(created.Invitation)
		s.Equal(uuid.UUID(created.ID), created.Invitation.Token.ObjectID)
	})

	s.Run("applies defaults and caller ownership", func() {
		s.expectInvitation()
		created, err := s.service.Create(s.ctx, models.Input{})
		s.Require().NoError(err)

		s.Equal(models.RoleOfficiant, created.Role)
		s.Equal(models.DefaultStatus, created.Status)
		s.Equal(s.caller.RSIN, created.SourceOrganization)
		s.Equal(s.caller.ApplicationID, created.OwnerApplication)
	})

	s.Run("accepts Dutch role names", func() {
		s.expectInvitation()
		created, err := s.service.Create(s.ctx, models.Input{Role: "Bode"})
		s.Require().NoError(err)
		s.Equal(models.RoleUsher, created.Role)
	})

	s.Run("unknown role is rejected without issuing a token", func() {
		_, err := s.service.Create(s.ctx, models.Input{Role: "witness"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("rol", dErrors.ViolationsOf(err)[0].Field)
	})

	s.Run("records the tracked fields", func() {
		s.expectInvitation()
		created, err := s.service.Create(s.ctx, models.Input{OfficiantRef: "https://example.com/ambtenaren/8"})
		s.Require().NoError(err)

		history, err := s.audit.History(s.ctx, models.ObjectType, uuid.UUID(created.ID))
		s.Require().NoError(err)
		s.Require().Len(history, 1)
		s.Equal(1, history[0].Version)
		s.Equal("https://example.com/ambtenaren/8", history[0].Data["ambtenaar"])
	})
}

func (s *ServiceSuite) TestPrimaryPerMarriage() {
	marriage := uuid.NewString()

	s.Run("second primary conflicts", func() {
		s.expectInvitation()
		_, err := s.service.Create(s.ctx, models.Input{Marriage: marriage, Primary: true})
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctx, models.Input{Marriage: marriage, Primary: true})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), msgPrimaryTaken)
	})

	s.Run("non-primary officiants on the same marriage are fine", func() {
		s.tokens.EXPECT().OfficiantCreated(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev models.OfficiantCreated) (*tokenmodels.Issued, error) {
				return issued(ev), nil
			}).Times(2)
		_, err := s.service.Create(s.ctx, models.Input{Marriage: marriage})
		s.Require().NoError(err)
		_, err = s.service.Create(s.ctx, models.Input{Marriage: marriage, Role: "bode"})
		s.Require().NoError(err)
	})

	s.Run("promoting another officiant to primary conflicts", func() {
		s.expectInvitation()
		created, err := s.service.Create(s.ctx, models.Input{Marriage: marriage})
		s.Require().NoError(err)

		_, err = s.service.Replace(s.ctx, created.ID, models.Input{Marriage: marriage, Primary: true})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("primary without a marriage is invalid", func() {
		_, err := s.service.Create(s.ctx, models.Input{Primary: true})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("list filters by marriage", func() {
		marriageID, err := id.ParseMarriageID(marriage)
		s.Require().NoError(err)
		list, err := s.service.List(s.ctx, models.Filter{Marriage: marriageID})
		s.Require().NoError(err)
		s.Len(list, 4)
		primaries := 0
		for _, o := range list {
			if o.Primary {
				primaries++
			}
		}
		s.Equal(1, primaries)
	})
}

func (s *ServiceSuite) TestIssuerFailureFailsCreate() {
	s.tokens.EXPECT().OfficiantCreated(gomock.Any(), gomock.Any()).Return(nil, errors.New("token store down"))

	_, err := s.service.Create(s.ctx, models.Input{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

type recordingStreamer struct {
	mu      sync.Mutex
	entries []audit.LogEntry
}

func (r *recordingStreamer) Stream(_ context.Context, entry audit.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (s *ServiceSuite) TestIssuerFailureStreamsNothing() {
	streamer := &recordingStreamer{}
	log := audit.NewService(audit.NewInMemoryStore(), audit.WithStreamer(streamer, 8))
	svc := New(store.NewInMemory(), s.tokens, tx.NewMemoryRunner(), log,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.tokens.EXPECT().OfficiantCreated(gomock.Any(), gomock.Any()).Return(nil, errors.New("token store down"))

	_, err := svc.Create(s.ctx, models.Input{Marriage: uuid.NewString(), Primary: true})
	s.Require().Error(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Require().NoError(log.Run(ctx))
	s.Empty(streamer.entries)
}

func (s *ServiceSuite) TestReplaceAndDelete() {
	s.expectInvitation()
	created, err := s.service.Create(s.ctx, models.Input{OfficiantRef: "https://example.com/ambtenaren/1"})
	s.Require().NoError(err)

	s.Run("replace bumps the version when tracked fields change", func() {
		o, err := s.service.Replace(s.ctx, created.ID, models.Input{
			OfficiantRef: "https://example.com/ambtenaren/2",
			Status:       "Geaccepteerd",
		})
		s.Require().NoError(err)
		s.Equal("Geaccepteerd", o.Status)
		s.NotNil(o.UpdatedAt)

		history, err := s.audit.History(s.ctx, models.ObjectType, uuid.UUID(created.ID))
		s.Require().NoError(err)
		s.Require().Len(history, 2)
		s.Equal(2, history[0].Version)
	})

	s.Run("delete then get is not found", func() {
		s.Require().NoError(s.service.Delete(s.ctx, created.ID))
		_, err := s.service.Get(s.ctx, created.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("delete of unknown officiant is not found", func() {
		err := s.service.Delete(s.ctx, id.NewOfficiantID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("list rejects a bad order", func() {
		_, err := s.service.List(s.ctx, models.Filter{CreatedOrder: "sideways"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
