package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mselim/awards-voting/internal/config"
	"github.com/mselim/awards-voting/internal/database"
	"github.com/mselim/awards-voting/internal/handler"
	"github.com/mselim/awards-voting/internal/middleware"
	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/repository"
	"github.com/mselim/awards-voting/internal/router"
)

// testServer boots the full HTTP surface against a throwaway SQLite store
// with no Redis and no queue publisher, exactly the degraded mode the
// production wiring falls back to.
type testServer struct {
	t    *testing.T
	e    *echo.Echo
	db   *sql.DB
	cfg  config.Config
	gate *repository.VotingConfigRepo
	cats *repository.CategoryRepo
	regs *repository.RegistrantRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		Env:              "test",
		DBDriver:         "sqlite",
		DBPath:           filepath.Join(t.TempDir(), "test.db"),
		JWTSecret:        "test-jwt-secret",
		AdminCode:        "admin-code",
		AnalystCode:      "analyst-code",
		AdminTokenTTLMin: 60,
		SessionIdleMin:   30,
		SessionMaxDays:   31,
		PhoneCountryCode: "+971",
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db, cfg.DBDriver))

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db,
		time.Duration(cfg.SessionIdleMin)*time.Minute,
		time.Duration(cfg.SessionMaxDays)*24*time.Hour)
	votes := repository.NewVoteRepo(db)
	gate := repository.NewVotingConfigRepo(db, nil)
	cats := repository.NewCategoryRepo(db)
	regs := repository.NewRegistrantRepo(db)

	sessionAuth := middleware.NewSessionAuth(users, sessions)

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, sessions, regs, sessionAuth),
		Vote:    handler.NewVoteHandler(gate, cats, votes, sessionAuth, nil),
		Results: handler.NewResultsHandler(cats, votes),
		Admin:   handler.NewAdminHandler(cfg, gate, votes, users, regs, cats),
		Hero:    handler.NewHeroHandler(""),
		Session: sessionAuth,
	}

	e := echo.New()
	router.Register(e, cfg, nil, h)

	return &testServer{t: t, e: e, db: db, cfg: cfg, gate: gate, cats: cats, regs: regs}
}

// request serializes body (when non-nil) as JSON, applies any request
// modifiers and dispatches through the router.
func (s *testServer) request(method, path string, body any, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, mod := range mods {
		mod(req)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func withHeader(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func cookieValue(t *testing.T, rec *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// signupUser seeds the allow-lists, signs the attendee up and returns
// their access code and session cookie.
func (s *testServer) signupUser(name, phone, birthdate string) (code, session string) {
	s.t.Helper()
	ctx := context.Background()
	require.NoError(s.t, s.regs.AllowBirthdate(ctx, birthdate))
	_, err := s.regs.Create(ctx, modelRegistrant(name, birthdate))
	require.NoError(s.t, err)

	rec := s.request(http.MethodPost, "/api/signup", map[string]any{
		"fullname": name, "phone": phone, "birthdate": birthdate,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, "signup body: %s", rec.Body.String())
	body := decode(s.t, rec)
	code, _ = body["access_code"].(string)
	require.NotEmpty(s.t, code)
	session = cookieValue(s.t, rec, middleware.SessionCookie)
	require.NotEmpty(s.t, session)
	return code, session
}

func modelRegistrant(name, birthdate string) model.Registrant {
	return model.Registrant{Fullname: name, Birthdate: birthdate}
}

// seedCategory creates one category with its nominees in list order.
func (s *testServer) seedCategory(number int, title string, nominees ...string) {
	s.t.Helper()
	ctx := context.Background()
	require.NoError(s.t, s.cats.Create(ctx, number, title))
	for _, n := range nominees {
		require.NoError(s.t, s.cats.AddNominee(ctx, number, n))
	}
}
