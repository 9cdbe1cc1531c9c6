package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/repository"
	"github.com/mselim/awards-voting/internal/utils"
)

// SessionCookie is the name of the cookie carrying the opaque session
// token.
const SessionCookie = "session_id"

// AccessCodeHeader is the dedicated header alternative to a Bearer token.
const AccessCodeHeader = "X-Access-Code"

// SessionAuth resolves a request to an authenticated user across the two
// credential mechanisms: a cookie session, falling back to an access code
// in a header. A successful header authentication lazily opens a
// persisted session and sets the cookie, so the client's next request
// takes the cheaper cookie path.
//
// Resolution never fails hard: storage errors are logged and treated as
// "unauthenticated", and endpoints that require auth translate that into
// a 401 themselves.
type SessionAuth struct {
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
}

func NewSessionAuth(users *repository.UserRepo, sessions *repository.SessionRepo) *SessionAuth {
	return &SessionAuth{Users: users, Sessions: sessions}
}

// Resolve returns the authenticated user and their session id, or
// ok=false when the request carries no usable credential.
func (s *SessionAuth) Resolve(c echo.Context) (model.User, string, bool) {
	ctx := c.Request().Context()

	// 1) Cookie session. An expired session is deleted by the repository
	// and falls through to the header path instead of being extended.
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		sess, err := s.Sessions.Get(ctx, ck.Value)
		switch {
		case err == nil:
			u, err := s.Users.GetByID(ctx, sess.UserID)
			if err == nil {
				return u, sess.ID, true
			}
			if err != sql.ErrNoRows {
				log.Printf("session-auth: load user %d: %v", sess.UserID, err)
			}
		case errors.Is(err, repository.ErrSessionExpired), errors.Is(err, sql.ErrNoRows):
			// fall through to header auth
		default:
			log.Printf("session-auth: session lookup: %v", err)
		}
	}

	// 2) Access code from header: X-Access-Code or "Authorization: Bearer".
	code := c.Request().Header.Get(AccessCodeHeader)
	if code == "" {
		if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			code = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	code = utils.NormalizeAccessCode(code)
	if code == "" {
		return model.User{}, "", false
	}
	u, err := s.Users.GetByAccessCode(ctx, code)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("session-auth: access-code lookup: %v", err)
		}
		return model.User{}, "", false
	}

	// 3) Upgrade the header credential into a persisted session so the
	// next request rides the cookie.
	sess, err := s.Sessions.Create(ctx, u.ID, SessionData(u))
	if err != nil {
		log.Printf("session-auth: lazy session create: %v", err)
		// The user is still authenticated for this request.
		return u, "", true
	}
	SetSessionCookie(c, sess)
	return u, sess.ID, true
}

// Optional resolves auth when present and always continues. Handlers read
// "user_id" / "user" from the context and decide for themselves.
func (s *SessionAuth) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if u, sid, ok := s.Resolve(c); ok {
				c.Set("user", u)
				c.Set("user_id", u.ID)
				c.Set("session_id", sid)
			}
			return next(c)
		}
	}
}

// Required rejects unauthenticated requests with a 401 JSON body.
func (s *SessionAuth) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, sid, ok := s.Resolve(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "authentication required",
				})
			}
			c.Set("user", u)
			c.Set("user_id", u.ID)
			c.Set("session_id", sid)
			return next(c)
		}
	}
}

// CurrentUser pulls the resolved user out of the context.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get("user").(model.User)
	return u, ok
}

// SetSessionCookie writes the session cookie with the session's absolute
// expiry.
func SetSessionCookie(c echo.Context, s model.Session) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on logout.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionData builds the small JSON blob of display fields cached on the
// session row.
func SessionData(u model.User) string {
	b, err := json.Marshal(map[string]any{
		"fullname": u.Fullname,
		"user_id":  u.ID,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}
