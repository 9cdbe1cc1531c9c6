package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselim/awards-voting/internal/middleware"
)

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodPost, "/api/admin/login", map[string]any{"code": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.request(http.MethodPost, "/api/admin/login", map[string]any{"code": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.request(http.MethodPost, "/api/admin/login", map[string]any{"code": "admin-code"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "admin", body["role"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, cookieValue(t, rec, middleware.AdminCookie))

	rec = s.request(http.MethodPost, "/api/admin/login", map[string]any{"code": "analyst-code"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "analyst", decode(t, rec)["role"])
}

func TestAdminAuthForms(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodGet, "/api/admin/voting-status", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "no credential")

	rec = s.request(http.MethodGet, "/api/admin/voting-status", nil,
		withHeader(middleware.AdminCodeHeader, "wrong"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Raw shared secret.
	rec = s.request(http.MethodGet, "/api/admin/voting-status", nil,
		withHeader(middleware.AdminCodeHeader, "admin-code"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Token from the login exchange, as bearer and as cookie.
	rec = s.request(http.MethodPost, "/api/admin/login", map[string]any{"code": "admin-code"})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = s.request(http.MethodGet, "/api/admin/voting-status", nil,
		withHeader("Authorization", "Bearer "+token))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/api/admin/voting-status", nil,
		withCookie(middleware.AdminCookie, token))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVotingStatusToggleClosesCasts(t *testing.T) {
	s := newTestServer(t)
	s.seedCategory(1, "Performer of the Year", "Ali Hassan")
	_, session := s.signupUser("Jane Doe", "0501234567", "5 Mar 1998")
	admin := withHeader(middleware.AdminCodeHeader, "admin-code")

	rec := s.request(http.MethodPost, "/api/admin/voting-status",
		map[string]any{"voting_active": false}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Any cast after the admin's response observes the closed gate.
	rec = s.request(http.MethodPost, "/api/vote", map[string]any{
		"category_id": 1, "nominee_id": 1,
	}, withCookie(middleware.SessionCookie, session))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.request(http.MethodGet, "/api/admin/voting-status", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["voting_active"])
	assert.Equal(t, "admin", body["updated_by"])

	// Reopen and the cast goes through.
	rec = s.request(http.MethodPost, "/api/admin/voting-status",
		map[string]any{"voting_active": true}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(http.MethodPost, "/api/vote", map[string]any{
		"category_id": 1, "nominee_id": 1,
	}, withCookie(middleware.SessionCookie, session))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResetVotes(t *testing.T) {
	s := newTestServer(t)
	s.seedCategory(1, "Performer of the Year", "Ali Hassan")
	s.seedCategory(2, "Best Newcomer", "Sara Noor")
	admin := withHeader(middleware.AdminCodeHeader, "admin-code")

	for i, u := range []struct{ name, phone string }{
		{"Jane Doe", "0501111111"}, {"Omar Khalil", "0502222222"},
	} {
		_, session := s.signupUser(u.name, u.phone, "5 Mar 1998")
		for _, cat := range []int{1, 2} {
			rec := s.request(http.MethodPost, "/api/vote", map[string]any{
				"category_id": cat, "nominee_id": 1,
			}, withCookie(middleware.SessionCookie, session))
			require.Equal(t, http.StatusCreated, rec.Code, "user %d cat %d: %s", i, cat, rec.Body.String())
		}
	}

	rec := s.request(http.MethodPost, "/api/admin/reset-votes",
		map[string]any{"category_id": 1}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["deleted"])

	rec = s.request(http.MethodGet, "/api/categories/2/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results, _ := decode(t, rec)["results"].([]any)
	assert.Len(t, results, 1, "other categories keep their tallies")

	rec = s.request(http.MethodPost, "/api/admin/reset-votes", map[string]any{}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["deleted"])
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.signupUser("Jane Doe", "0501234567", "5 Mar 1998")
	admin := withHeader(middleware.AdminCodeHeader, "admin-code")

	rec := s.request(http.MethodGet, "/api/admin/users", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	users, _ := decode(t, rec)["users"].([]any)
	require.Len(t, users, 1)
	u := users[0].(map[string]any)
	assert.Equal(t, code, u["access_code"], "export includes the access code")

	rec = s.request(http.MethodDelete, "/api/admin/users/1", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(http.MethodDelete, "/api/admin/users/1", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.request(http.MethodDelete, "/api/admin/users/zero", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCategoryManagement(t *testing.T) {
	s := newTestServer(t)
	admin := withHeader(middleware.AdminCodeHeader, "admin-code")

	rec := s.request(http.MethodPost, "/api/admin/categories",
		map[string]any{"number": 1, "title": "Performer of the Year"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.request(http.MethodPost, "/api/admin/categories",
		map[string]any{"number": 1, "title": "Duplicate"}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.request(http.MethodPost, "/api/admin/categories/1/nominees",
		map[string]any{"name": "Ali Hassan"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.request(http.MethodPost, "/api/admin/categories/1/nominees",
		map[string]any{"name": "Ali Hassan"}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.request(http.MethodPost, "/api/admin/categories/9/nominees",
		map[string]any{"name": "Anyone"}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodDelete, "/api/admin/categories/1/nominees/Ali%20Hassan", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(http.MethodDelete, "/api/admin/categories/1/nominees/Ali%20Hassan", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRegistrantManagement(t *testing.T) {
	s := newTestServer(t)
	admin := withHeader(middleware.AdminCodeHeader, "admin-code")

	rec := s.request(http.MethodPost, "/api/admin/birthdates",
		map[string]any{"birthdate": "5 Mar 1998"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/api/admin/registrants",
		map[string]any{"fullname": "Jane Doe", "birthdate": "5 Mar 1998"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.request(http.MethodGet, "/api/admin/registrants", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	regs, _ := decode(t, rec)["registrants"].([]any)
	assert.Len(t, regs, 1)

	// The allow-list rows just created satisfy a real signup.
	rec = s.request(http.MethodPost, "/api/signup", map[string]any{
		"fullname": "Jane Doe", "phone": "0501234567", "birthdate": "5 Mar 1998",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
