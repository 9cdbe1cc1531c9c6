package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mselim/awards-voting/internal/config"
	"github.com/mselim/awards-voting/internal/middleware"
	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/repository"
	"github.com/mselim/awards-voting/internal/utils"
)

// AuthHandler bundles dependencies for attendee signup, login and session
// endpoints.
type AuthHandler struct {
	Cfg         config.Config
	Users       *repository.UserRepo
	Sessions    *repository.SessionRepo
	Registrants *repository.RegistrantRepo
	Auth        *middleware.SessionAuth
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo,
	reg *repository.RegistrantRepo, auth *middleware.SessionAuth) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Registrants: reg, Auth: auth}
}

// ----- DTOs -----

type signupReq struct {
	Fullname  string `json:"fullname"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate"`
}
type loginReq struct {
	AccessCode string `json:"access_code"`
}
type userPart struct {
	ID        uint64 `json:"id"`
	Fullname  string `json:"fullname"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Birthdate string `json:"birthdate"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Fullname: u.Fullname, Phone: u.Phone, Email: u.Email, Birthdate: u.Birthdate}
}

// birthdateLayout is the wire format for birthdates ("5 Mar 1998").
const birthdateLayout = "2 Jan 2006"

// normalizeBirthdate parses and reformats a birthdate so lookups use one
// canonical spelling.
func normalizeBirthdate(s string) (string, error) {
	t, err := time.Parse(birthdateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format(birthdateLayout), nil
}

// Signup matches the request against the registration allow-list and the
// birthdate allow-list, creates the user with a fresh access code and
// opens a session. The access code is returned once, here.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Fullname = strings.TrimSpace(req.Fullname)
	if req.Fullname == "" || req.Phone == "" || req.Birthdate == "" {
		return fail(c, http.StatusBadRequest, "fullname, phone and birthdate are required")
	}
	birthdate, err := normalizeBirthdate(req.Birthdate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid birthdate, expected e.g. 5 Mar 1998")
	}
	phone, err := utils.NormalizePhone(req.Phone, h.Cfg.PhoneCountryCode)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid phone number")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	allowed, err := h.Registrants.BirthdateAllowed(ctx, birthdate)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "signup failed")
	}
	if !allowed {
		return fail(c, http.StatusForbidden, "birthdate not eligible")
	}
	if _, err := h.Registrants.Find(ctx, req.Fullname, birthdate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "no matching event registration found")
		}
		return fail(c, http.StatusInternalServerError, "signup failed")
	}

	u, err := h.Users.Create(ctx, model.User{
		Fullname:    req.Fullname,
		Phone:       phone,
		CountryCode: h.Cfg.PhoneCountryCode,
		Email:       strings.TrimSpace(req.Email),
		Birthdate:   birthdate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPhoneExists) {
			return fail(c, http.StatusConflict, "phone number already registered")
		}
		return fail(c, http.StatusInternalServerError, "signup failed")
	}

	sess, err := h.Sessions.Create(ctx, u.ID, middleware.SessionData(u))
	if err == nil {
		middleware.SetSessionCookie(c, sess)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"user":        toUserPart(u),
		"access_code": u.AccessCode,
	})
}

// Login authenticates by access code and opens a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	code := utils.NormalizeAccessCode(req.AccessCode)
	if !utils.ValidAccessCode(code) {
		return fail(c, http.StatusBadRequest, "access code required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "invalid access code")
		}
		return fail(c, http.StatusInternalServerError, "login failed")
	}
	sess, err := h.Sessions.Create(ctx, u.ID, middleware.SessionData(u))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "login failed")
	}
	middleware.SetSessionCookie(c, sess)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": toUserPart(u)})
}

// Logout deletes the presented session and clears the cookie. Logging out
// without a session is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if ck, err := c.Cookie(middleware.SessionCookie); err == nil && ck.Value != "" {
		_ = h.Sessions.Delete(ctx, ck.Value)
	}
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CheckSession reports whether the request resolves to a user. It never
// errors; absence of auth is {logged_in:false}.
func (h *AuthHandler) CheckSession(c echo.Context) error {
	u, _, ok := h.Auth.Resolve(c)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"logged_in": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"logged_in": true, "user": toUserPart(u)})
}

// fail writes the uniform failure body.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}
