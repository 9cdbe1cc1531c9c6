package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mselim/awards-voting/internal/config"
	"github.com/mselim/awards-voting/internal/middleware"
	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/repository"
	"github.com/mselim/awards-voting/internal/utils"
)

// AdminHandler implements moderation endpoints. Every route behind it is
// gated by middleware.AdminAuth; destructive operations run through the
// same transactional repositories as the cast path, so a reset or user
// deletion is all-or-nothing.
type AdminHandler struct {
	Cfg         config.Config
	Gate        *repository.VotingConfigRepo
	Votes       *repository.VoteRepo
	Users       *repository.UserRepo
	Registrants *repository.RegistrantRepo
	Categories  *repository.CategoryRepo
}

func NewAdminHandler(cfg config.Config, gate *repository.VotingConfigRepo, votes *repository.VoteRepo,
	users *repository.UserRepo, regs *repository.RegistrantRepo, cats *repository.CategoryRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Gate: gate, Votes: votes, Users: users, Registrants: regs, Categories: cats}
}

// Login exchanges the shared secret for a signed admin token so the
// dashboard does not have to resend the code on every request.
func (h *AdminHandler) Login(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return fail(c, http.StatusBadRequest, "code required")
	}
	role := ""
	switch {
	case utils.VerifySecret(h.Cfg.AdminCode, req.Code):
		role = "admin"
	case utils.VerifySecret(h.Cfg.AnalystCode, req.Code):
		role = "analyst"
	default:
		return fail(c, http.StatusForbidden, "invalid code")
	}
	tok, err := utils.NewAdminToken(h.Cfg.JWTSecret, role, h.Cfg.AdminTokenTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "login failed")
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"role":    role,
		"token":   tok.Token,
		"expires": tok.Exp,
	})
}

// VotingStatus handles GET /api/admin/voting-status.
func (h *AdminHandler) VotingStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cfg, err := h.Gate.Status(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "status unavailable")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"voting_active": cfg.Active,
		"updated_by":    cfg.UpdatedBy,
		"updated_at":    cfg.UpdatedAt.Format(time.RFC3339),
	})
}

// SetVotingStatus handles POST /api/admin/voting-status. Once the admin
// receives this response, any later cast observes the new gate value.
func (h *AdminHandler) SetVotingStatus(c echo.Context) error {
	var req struct {
		VotingActive bool `json:"voting_active"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Gate.SetOpen(ctx, req.VotingActive, middleware.AdminRole(c)); err != nil {
		log.Printf("admin: set voting gate failed: %v", err)
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "voting_active": req.VotingActive})
}

// ResetVotes handles POST /api/admin/reset-votes. With no filters it
// wipes the ledger; category_id and/or user_id narrow the deletion.
func (h *AdminHandler) ResetVotes(c echo.Context) error {
	var req struct {
		CategoryID int    `json:"category_id"`
		UserID     uint64 `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		deleted int64
		err     error
	)
	switch {
	case req.UserID != 0:
		deleted, err = h.Votes.DeleteByUser(ctx, req.UserID, req.CategoryID)
	case req.CategoryID != 0:
		deleted, err = h.Votes.DeleteByCategory(ctx, req.CategoryID)
	default:
		deleted, err = h.Votes.DeleteAll(ctx)
	}
	if err != nil {
		log.Printf("admin: reset votes failed: %v", err)
		return fail(c, http.StatusInternalServerError, "reset failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "deleted": deleted})
}

// ListUsers handles GET /api/admin/users. Access codes are included; this
// is the export the front desk prints.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list failed")
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{
			"id":          u.ID,
			"fullname":    u.Fullname,
			"phone":       u.Phone,
			"email":       u.Email,
			"birthdate":   u.Birthdate,
			"access_code": u.AccessCode,
			"created_at":  u.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": out})
}

// DeleteUser handles DELETE /api/admin/users/:id, cascading over the
// user's votes and sessions in one transaction.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		log.Printf("admin: delete user %d failed: %v", id, err)
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CreateRegistrant handles POST /api/admin/registrants.
func (h *AdminHandler) CreateRegistrant(c echo.Context) error {
	var req struct {
		Fullname  string `json:"fullname"`
		Birthdate string `json:"birthdate"`
		Phone     string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Fullname) == "" {
		return fail(c, http.StatusBadRequest, "fullname and birthdate required")
	}
	birthdate, err := normalizeBirthdate(req.Birthdate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid birthdate")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Registrants.Create(ctx, model.Registrant{
		Fullname:  req.Fullname,
		Birthdate: birthdate,
		Phone:     req.Phone,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// ListRegistrants handles GET /api/admin/registrants.
func (h *AdminHandler) ListRegistrants(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	regs, err := h.Registrants.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "registrants": regs})
}

// AllowBirthdate handles POST /api/admin/birthdates.
func (h *AdminHandler) AllowBirthdate(c echo.Context) error {
	var req struct {
		Birthdate string `json:"birthdate"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	birthdate, err := normalizeBirthdate(req.Birthdate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid birthdate")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Registrants.AllowBirthdate(ctx, birthdate); err != nil {
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CreateCategory handles POST /api/admin/categories.
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	}
	if err := c.Bind(&req); err != nil || req.Number <= 0 || strings.TrimSpace(req.Title) == "" {
		return fail(c, http.StatusBadRequest, "number and title required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Create(ctx, req.Number, strings.TrimSpace(req.Title)); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(err.Error(), "1062") {
			return fail(c, http.StatusConflict, "category already exists")
		}
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// AddNominee handles POST /api/admin/categories/:id/nominees.
func (h *AdminHandler) AddNominee(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "invalid category")
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return fail(c, http.StatusBadRequest, "name required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Categories.AddNominee(ctx, id, strings.TrimSpace(req.Name))
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"success": true})
	case errors.Is(err, repository.ErrCategoryNotFound):
		return fail(c, http.StatusNotFound, "category not found")
	case errors.Is(err, repository.ErrNomineeExists):
		return fail(c, http.StatusConflict, "nominee already exists")
	default:
		return fail(c, http.StatusInternalServerError, "create failed")
	}
}

// RemoveNominee handles DELETE /api/admin/categories/:id/nominees/:name.
// Removal shifts later nominees down one position; in-flight clients that
// cached the old ordering are reconciled at cast time by the resolver.
func (h *AdminHandler) RemoveNominee(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "invalid category")
	}
	// Path params arrive percent-encoded; names contain spaces.
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "name required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "name required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Categories.RemoveNominee(ctx, id, name)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	case errors.Is(err, repository.ErrNomineeNotFound):
		return fail(c, http.StatusNotFound, "nominee not found")
	default:
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
}
