//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trouwen/internal/catalog/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
	ctx      context.Context
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "marriage_types"))
}

func (s *PostgresSuite) TestRoundTripsLists() {
	mt := newType(s.T(), "groot", "002220647")
	mt.Officiants = []string{"https://example.com/ambtenaren/1"}
	s.Require().NoError(s.store.Create(s.ctx, mt))

	found, err := s.store.FindByID(s.ctx, mt.ID)
	s.Require().NoError(err)
	s.Equal(mt.Name, found.Name)
	s.Equal(mt.Locations, found.Locations)
	s.Equal(mt.Officiants, found.Officiants)
	s.Empty(found.ExtraProducts)
}

func (s *PostgresSuite) TestIdentifierPerOrganization() {
	s.Require().NoError(s.store.Create(s.ctx, newType(s.T(), "groot", "002220647")))
	s.ErrorIs(s.store.Create(s.ctx, newType(s.T(), "groot", "002220647")), sentinel.ErrAlreadyUsed)
	s.NoError(s.store.Create(s.ctx, newType(s.T(), "groot", "123456789")))
	s.NoError(s.store.Create(s.ctx, newType(s.T(), "", "002220647")))
	s.NoError(s.store.Create(s.ctx, newType(s.T(), "", "002220647")))

	list, err := s.store.List(s.ctx, models.Filter{SourceOrganization: "002220647"})
	s.Require().NoError(err)
	s.Len(list, 3)
}

func (s *PostgresSuite) TestUpdateAndDelete() {
	mt := newType(s.T(), "groot", "002220647")
	s.Require().NoError(s.store.Create(s.ctx, mt))

	mt.Name = "Klein huwelijk"
	s.Require().NoError(s.store.Update(s.ctx, mt))
	found, err := s.store.FindByID(s.ctx, mt.ID)
	s.Require().NoError(err)
	s.Equal("Klein huwelijk", found.Name)

	s.Require().NoError(s.store.Delete(s.ctx, mt.ID))
	_, err = s.store.FindByID(s.ctx, mt.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, id.NewMarriageTypeID()), sentinel.ErrNotFound)
}
