package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	officiantmodels "trouwen/internal/officiant/models"
	"trouwen/internal/token/models"
	"trouwen/internal/token/store"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/requestcontext"
	"trouwen/pkg/secrets"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	store   *store.InMemory
	ctx     context.Context
	app     id.ApplicationID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.store = store.NewInMemory()
	s.service = New(s.store, WithLogger(logger))
	s.app = id.NewApplicationID()
	s.ctx = requestcontext.WithApplication(context.Background(), requestcontext.Caller{ApplicationID: s.app})
	s.ctx = requestcontext.WithTime(s.ctx, time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC))
}

func (s *ServiceSuite) TestOfficiantCreated() {
	officiantID := id.NewOfficiantID()
	issued, err := s.service.OfficiantCreated(s.ctx, officiantmodels.OfficiantCreated{
		OfficiantID:   officiantID,
		ContactPerson: "https://example.com/personen/1",
	})
	s.Require().NoError(err)

	s.Run("describes the invitation", func() {
		s.Equal(models.ActionAcceptInvitation, issued.Token.Action)
		s.Equal(models.DescriptionAcceptInvitation, issued.Token.Description)
		s.Equal("https://example.com/personen/1", issued.Token.Person)
		s.Equal(officiantmodels.ObjectType, issued.Token.ObjectType)
		s.Equal(uuid.UUID(officiantID), issued.Token.ObjectID)
		s.Equal(s.app, issued.Token.OwnerApplication)
	})

	s.Run("stores only the code hash", func() {
		stored, err := s.service.Get(s.ctx, issued.Token.ID)
		s.Require().NoError(err)
		s.NotEqual(issued.Code, stored.CodeHash)
		s.NoError(secrets.Verify(issued.Code, stored.CodeHash))
	})

	s.Run("is listed for the officiant", func() {
		tokens, err := s.service.ListByObject(s.ctx, officiantmodels.ObjectType, uuid.UUID(officiantID))
		s.Require().NoError(err)
		s.Len(tokens, 1)
	})
}

func (s *ServiceSuite) TestRedeem() {
	issue := func() *models.Issued {
		issued, err := s.service.Issue(s.ctx, IssueRequest{
			Action:     models.ActionAcceptInvitation,
			ObjectType: officiantmodels.ObjectType,
			ObjectID:   uuid.New(),
		})
		s.Require().NoError(err)
		return issued
	}

	s.Run("marks the token used", func() {
		issued := issue()
		t, err := s.service.Redeem(s.ctx, issued.Token.ID, issued.Code)
		s.Require().NoError(err)
		s.Require().NotNil(t.UsedAt)
		s.True(t.UsedAt.Equal(requestcontext.Now(s.ctx)))
	})

	s.Run("a used token cannot be redeemed twice", func() {
		issued := issue()
		_, err := s.service.Redeem(s.ctx, issued.Token.ID, issued.Code)
		s.Require().NoError(err)

		_, err = s.service.Redeem(s.ctx, issued.Token.ID, issued.Code)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("wrong code is forbidden", func() {
		issued := issue()
		_, err := s.service.Redeem(s.ctx, issued.Token.ID, "not-the-code")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		stored, err := s.service.Get(s.ctx, issued.Token.ID)
		s.Require().NoError(err)
		s.False(stored.IsUsed())
	})

	s.Run("unknown token is not found", func() {
		_, err := s.service.Redeem(s.ctx, id.NewTokenID(), "code")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestIssueRejectsMissingObject() {
	_, err := s.service.Issue(s.ctx, IssueRequest{Action: models.ActionAcceptInvitation, ObjectType: "officiant"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
