//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trouwen/internal/organization/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	orgs     *OrganizationPostgres
	persons  *PersonPostgres
	ctx      context.Context
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.orgs = NewOrganizationPostgres(s.postgres.DB)
	s.persons = NewPersonPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "persons", "organizations"))
}

func (s *PostgresSuite) newOrganization(rsin string) *models.Organization {
	org, err := models.NewOrganization(id.NewOrganizationID(), models.OrganizationInput{
		RSIN: rsin,
		KVK:  "30280353",
		Name: "Gemeente Zuiddrecht",
	}, id.ApplicationID{}, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return org
}

func (s *PostgresSuite) TestRoundTrip() {
	org := s.newOrganization("0022.20.647")
	s.Require().NoError(s.orgs.Create(s.ctx, org))

	found, err := s.orgs.FindByRSIN(s.ctx, "0022.20.647")
	s.Require().NoError(err)
	s.Equal(org.ID, found.ID)
	s.Equal("30280353", found.KVK)
	s.True(found.CreatedAt.Equal(org.CreatedAt))
	s.Nil(found.UpdatedAt)

	s.ErrorIs(s.orgs.Create(s.ctx, s.newOrganization("0022.20.647")), sentinel.ErrAlreadyUsed)
}

func (s *PostgresSuite) TestDeleteWithPersonsIsRefused() {
	org := s.newOrganization("002220647")
	s.Require().NoError(s.orgs.Create(s.ctx, org))

	p, err := models.NewPerson(id.NewPersonID(), org.ID, models.PersonInput{GivenNames: "John", FamilyName: "Doh", Language: "nl"}, id.ApplicationID{}, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.persons.Create(s.ctx, p))

	s.ErrorIs(s.orgs.Delete(s.ctx, org.ID), sentinel.ErrHasDependents)

	s.Require().NoError(s.persons.Delete(s.ctx, p.ID))
	s.Require().NoError(s.orgs.Delete(s.ctx, org.ID))
	s.ErrorIs(s.orgs.Delete(s.ctx, org.ID), sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestPersonForUnknownOrganization() {
	p, err := models.NewPerson(id.NewPersonID(), id.NewOrganizationID(), models.PersonInput{GivenNames: "John", FamilyName: "Doh"}, id.ApplicationID{}, time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.persons.Create(s.ctx, p), sentinel.ErrNotFound)
}
