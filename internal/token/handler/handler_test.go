package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trouwen/internal/token/models"
	"trouwen/internal/token/service"
	"trouwen/internal/token/store"
	"trouwen/pkg/requestcontext"
	"trouwen/pkg/testutil"
)

func setup(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.New(store.NewInMemory(), service.WithLogger(logger))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, svc
}

func issue(t *testing.T, svc *service.Service, objectID uuid.UUID) *models.Issued {
	t.Helper()
	ctx := requestcontext.WithApplication(context.Background(), testutil.DevApplication)
	issued, err := svc.Issue(ctx, service.IssueRequest{
		Action:     models.ActionAcceptInvitation,
		ObjectType: "officiant",
		ObjectID:   objectID,
	})
	require.NoError(t, err)
	return issued
}

func TestRedeemToken(t *testing.T) {
	router, svc := setup(t)
	issued := issue(t, svc, uuid.New())
	path := "/tokens/" + issued.Token.ID.String() + "/inwisselen"

	testutil.Then(t, "a wrong code is forbidden", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"code": "nope"}))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	testutil.Then(t, "a missing code is a validation error", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{}))
		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
		assert.Equal(t, []string{"code"}, testutil.ViolatedFields(t, rr))
	})

	testutil.Then(t, "the right code redeems it once", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"code": issued.Code}))
		testutil.AssertStatusOK(t, rr)
		got := testutil.UnmarshalResponse[models.Token](t, rr)
		assert.NotNil(t, got.UsedAt)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"code": issued.Code}))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}

func TestGetAndListTokens(t *testing.T) {
	router, svc := setup(t)
	objectID := uuid.New()
	issued := issue(t, svc, objectID)

	t.Run("get never exposes the code hash", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/tokens/"+issued.Token.ID.String()))
		testutil.AssertStatusOK(t, rr)
		assert.NotContains(t, rr.Body.String(), issued.Token.CodeHash)
		assert.NotContains(t, rr.Body.String(), issued.Code)
	})

	t.Run("list by object", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/tokens?objectType=officiant&objectId="+objectID.String()))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "count", float64(1))
	})

	t.Run("list requires an object", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/tokens?objectType=officiant"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("unknown token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/tokens/"+uuid.NewString()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
