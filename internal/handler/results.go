package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/repository"
)

// ResultsHandler serves the public read side: category lists and tallies.
// These endpoints degrade to empty data instead of erroring; a dashboard
// showing zero during a live event is less disruptive than a hard 500.
type ResultsHandler struct {
	Categories *repository.CategoryRepo
	Votes      *repository.VoteRepo
}

func NewResultsHandler(cats *repository.CategoryRepo, votes *repository.VoteRepo) *ResultsHandler {
	return &ResultsHandler{Categories: cats, Votes: votes}
}

// ListCategories handles GET /api/categories.
func (h *ResultsHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		log.Printf("results: list categories failed: %v", err)
		cats = []model.Category{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "categories": cats})
}

// CategoryResults handles GET /api/categories/:id/results.
func (h *ResultsHandler) CategoryResults(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "invalid category")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tally, err := h.Votes.Tally(ctx, id)
	if err != nil {
		log.Printf("results: tally for category %d failed: %v", id, err)
		tally = []model.TallyRow{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"category_id": id,
		"results":     tally,
	})
}
