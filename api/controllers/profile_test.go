package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkarmah/storefront/internal/profile"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

func newProfileRouter(t *testing.T) http.Handler {
	t.Helper()
	sessions := stubSessionLoader{snap: session.Snapshot{
		State: enums.SessionStateAuthenticated,
		User:  &session.User{ID: "u-1", Name: "Noora", Email: "noora@example.com"},
	}}
	svc, err := profile.NewService(profile.NewMemoryStore(), sessions, logger.Nop())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/profile", ProfileGet(svc, logger.Nop()))
	r.Put("/profile", ProfileUpdate(svc, logger.Nop()))
	return r
}

func putProfile(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)))
	return rec
}

func TestProfileUpdateFlow(t *testing.T) {
	h := newProfileRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data profile.Profile `json:"data"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "Noora", got.Data.Name)

	form := `{"name":"Noora","email":"noora@example.com","mobile":"97433334444","date_of_birth":"","image_uri":""}`
	rec = putProfile(h, form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Data profile.Result `json:"data"`
	}
	decode(t, rec, &res)
	assert.Equal(t, []string{"Mobile"}, res.Data.Changed)

	rec = putProfile(h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	assert.Empty(t, res.Data.Changed)
	assert.Equal(t, profile.NoChangesMessage, res.Data.Message)
}

func TestProfileUpdateRejectsBadEmail(t *testing.T) {
	h := newProfileRouter(t)

	rec := putProfile(h, `{"name":"Noora","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	assert.Contains(t, body.Error.Details, "email")
}
