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

	"trouwen/internal/audit"
	"trouwen/internal/officiant/models"
	"trouwen/internal/officiant/service"
	"trouwen/internal/officiant/store"
	tokenmodels "trouwen/internal/token/models"
	tokenservice "trouwen/internal/token/service"
	tokenstore "trouwen/internal/token/store"
	"trouwen/pkg/platform/tx"
	"trouwen/pkg/testutil"
)

type createdResponse struct {
	models.Officiant
	Invitation *tokenmodels.Issued `json:"uitnodiging"`
}

func setup(t *testing.T) (http.Handler, *tokenservice.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tokens := tokenservice.New(tokenstore.NewInMemory(), tokenservice.WithLogger(logger))
	svc := service.New(store.NewInMemory(), tokens, tx.NewMemoryRunner(),
		audit.NewService(audit.NewInMemoryStore()), service.WithLogger(logger))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, testutil.WithCaller(req, testutil.DevApplication))
		})
	})
	New(svc, logger).Register(r)
	return r, tokens
}

func TestCreateOfficiantIssuesInvitation(t *testing.T) {
	router, tokens := setup(t)

	var created *createdResponse
	testutil.When(t, "an officiant is created", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/huwelijk-ambtenaren", map[string]any{
			"huwelijk":       uuid.NewString(),
			"primair":        true,
			"contactPersoon": "https://example.com/personen/1",
			"rol":            "trouwambtenaar",
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		created = testutil.UnmarshalResponse[createdResponse](t, rr)
	})

	testutil.Then(t, "exactly one invitation token exists for it", func(t *testing.T) {
		list, err := tokens.ListByObject(context.Background(), models.ObjectType, uuid.UUID(created.ID))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, tokenmodels.ActionAcceptInvitation, list[0].Action)
		assert.Equal(t, tokenmodels.DescriptionAcceptInvitation, list[0].Description)
		assert.Equal(t, "https://example.com/personen/1", list[0].Person)
	})

	testutil.Then(t, "the response carries the invitation code once", func(t *testing.T) {
		require.NotNil(t, created.Invitation)
		assert.NotEmpty(t, created.Invitation.Code)
		assert.Equal(t, models.RoleOfficiant, created.Role)
		assert.Equal(t, models.DefaultStatus, created.Status)
		assert.Equal(t, testutil.DevApplication.RSIN, created.SourceOrganization)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/huwelijk-ambtenaren/"+created.ID.String()))
		testutil.AssertStatusOK(t, rr)
		assert.NotContains(t, rr.Body.String(), "uitnodiging")
	})
}

func TestOfficiantErrors(t *testing.T) {
	router, _ := setup(t)
	marriage := uuid.NewString()

	t.Run("second primary officiant conflicts", func(t *testing.T) {
		body := map[string]any{"huwelijk": marriage, "primair": true}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/huwelijk-ambtenaren", body))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/huwelijk-ambtenaren", body))
		testutil.AssertStatus(t, rr, http.StatusConflict)
		errBody := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "Een huwelijk kan maar één primaire ambtenaar hebben", errBody.Description)
	})

	t.Run("unknown role", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/huwelijk-ambtenaren", map[string]any{"rol": "getuige"}))
		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
		assert.Equal(t, []string{"rol"}, testutil.ViolatedFields(t, rr))
	})

	t.Run("source organization is not writable", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/huwelijk-ambtenaren", map[string]any{"bronOrganisatie": "123456789"}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("list by marriage", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/huwelijk-ambtenaren?huwelijk="+marriage))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "count", float64(1))
	})

	t.Run("replace and delete", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/huwelijk-ambtenaren", map[string]any{}))
		require.Equal(t, http.StatusCreated, rr.Code)
		created := testutil.UnmarshalResponse[createdResponse](t, rr)
		path := "/huwelijk-ambtenaren/" + created.ID.String()

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, path, map[string]any{"status": "Geaccepteerd"}))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "Geaccepteerd")

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, path))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
