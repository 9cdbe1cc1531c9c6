package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mselim/awards-voting/internal/middleware"
	"github.com/mselim/awards-voting/internal/nominee"
	"github.com/mselim/awards-voting/internal/queue"
	"github.com/mselim/awards-voting/internal/repository"
)

// VoteHandler owns the cast path. The order inside Cast is deliberate:
// gate first (so a closed event rejects load as cheaply as possible, even
// before authentication), then auth, then nominee resolution, then the
// transactional insert whose unique constraint is the authoritative
// duplicate check.
type VoteHandler struct {
	Gate       *repository.VotingConfigRepo
	Categories *repository.CategoryRepo
	Votes      *repository.VoteRepo
	Auth       *middleware.SessionAuth

	// Publish fires the audit event after an accepted cast. Nil disables
	// publishing (tests).
	Publish func(ctx context.Context, ev queue.VoteCastEvent) error
}

func NewVoteHandler(gate *repository.VotingConfigRepo, cats *repository.CategoryRepo,
	votes *repository.VoteRepo, auth *middleware.SessionAuth,
	publish func(ctx context.Context, ev queue.VoteCastEvent) error) *VoteHandler {
	return &VoteHandler{Gate: gate, Categories: cats, Votes: votes, Auth: auth, Publish: publish}
}

type castReq struct {
	CategoryID  int    `json:"category_id"`
	NomineeID   int    `json:"nominee_id"`
	NomineeName string `json:"nominee_name"`
}

// Cast handles POST /api/vote.
func (h *VoteHandler) Cast(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	open, err := h.Gate.IsOpen(ctx)
	if err != nil {
		log.Printf("vote: gate check failed: %v", err)
		return fail(c, http.StatusInternalServerError, "service unavailable")
	}
	if !open {
		return fail(c, http.StatusForbidden, "voting is closed")
	}

	u, _, ok := h.Auth.Resolve(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	var req castReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.CategoryID <= 0 {
		return fail(c, http.StatusBadRequest, "invalid category")
	}

	cat, err := h.Categories.GetByNumber(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return fail(c, http.StatusBadRequest, "invalid category")
		}
		return fail(c, http.StatusInternalServerError, "service unavailable")
	}
	nomineeID, err := nominee.Resolve(cat, req.NomineeID, req.NomineeName)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid nominee")
	}

	v, err := h.Votes.Cast(ctx, u.ID, cat.Number, nomineeID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyVoted) {
			return fail(c, http.StatusConflict, "already voted in this category")
		}
		log.Printf("vote: cast failed for user %d category %d: %v", u.ID, cat.Number, err)
		return fail(c, http.StatusInternalServerError, "service unavailable")
	}

	if h.Publish != nil {
		name := ""
		if nomineeID-1 < len(cat.Nominees) {
			name = cat.Nominees[nomineeID-1]
		}
		ev := queue.VoteCastEvent{
			EventID:       uuid.NewString(),
			UserID:        u.ID,
			CategoryID:    cat.Number,
			CategoryTitle: cat.Title,
			NomineeID:     nomineeID,
			NomineeName:   name,
			CastAt:        v.CreatedAt.Format(time.RFC3339),
		}
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pcancel()
			_ = h.Publish(pctx, ev)
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"vote": echo.Map{
			"category_id": v.CategoryID,
			"nominee_id":  v.NomineeID,
			"created_at":  v.CreatedAt.Format(time.RFC3339),
		},
	})
}

// MyVotes handles GET /api/my-votes; auth is enforced by middleware.
func (h *VoteHandler) MyVotes(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	votes, err := h.Votes.VotesForUser(ctx, u.ID)
	if err != nil {
		log.Printf("vote: list for user %d failed: %v", u.ID, err)
		return fail(c, http.StatusInternalServerError, "service unavailable")
	}
	out := make([]echo.Map, 0, len(votes))
	for _, v := range votes {
		out = append(out, echo.Map{
			"category_id": v.CategoryID,
			"nominee_id":  v.NomineeID,
			"created_at":  v.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "votes": out})
}
