package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trouwen/internal/audit"
	"trouwen/internal/role/models"
	"trouwen/internal/role/service"
	"trouwen/internal/role/store"
	"trouwen/pkg/platform/tx"
	"trouwen/pkg/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), tx.NewMemoryRunner(), audit.NewService(audit.NewInMemoryStore()), service.WithLogger(logger))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, testutil.WithCaller(req, testutil.DevApplication))
		})
	})
	New(svc, logger).Register(r)
	return r
}

func createRole(t *testing.T, router http.Handler, body map[string]string) *models.Detail {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/rollen", body))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return testutil.UnmarshalResponse[models.Detail](t, rr)
}

func TestRoleTree(t *testing.T) {
	router := newRouter(t)
	marriage := uuid.NewString()

	var partner, witness *models.Detail
	testutil.Given(t, "a partner with a witness", func(t *testing.T) {
		partner = createRole(t, router, map[string]string{"soort": "partner", "huwelijk": marriage})
		witness = createRole(t, router, map[string]string{"huwelijk": marriage, "rol": partner.ID.String()})
	})

	testutil.Then(t, "the witness defaults apply", func(t *testing.T) {
		assert.Equal(t, models.KindWitness, witness.Kind)
		assert.Equal(t, "uitgenodigd", witness.Status)
		assert.Equal(t, partner.ID, witness.Parent)
	})

	testutil.Then(t, "the partner lists the witness as child", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/rollen/"+partner.ID.String()))
		testutil.AssertStatusOK(t, rr)
		got := testutil.UnmarshalResponse[models.Detail](t, rr)
		require.Len(t, got.Children, 1)
		assert.Equal(t, witness.ID, got.Children[0].ID)
	})

	testutil.Then(t, "the partner cannot be deleted while it has children", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/rollen/"+partner.ID.String()))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	testutil.Then(t, "children can be listed by parent", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/rollen?rol="+partner.ID.String()))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "count", float64(1))
	})

	testutil.Then(t, "deleting the witness first allows deleting the partner", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/rollen/"+witness.ID.String()))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/rollen/"+partner.ID.String()))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})
}

func TestRoleErrors(t *testing.T) {
	router := newRouter(t)

	t.Run("unknown kind", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/rollen", map[string]string{"soort": "huwelijk"}))
		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
		assert.Equal(t, []string{"soort"}, testutil.ViolatedFields(t, rr))
	})

	t.Run("replace unknown role", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/rollen/"+uuid.NewString(), map[string]string{}))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("invalid marriage filter", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/rollen?huwelijk=x"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
