// Package router maps the HTTP surface onto handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mselim/awards-voting/internal/config"
	"github.com/mselim/awards-voting/internal/handler"
	"github.com/mselim/awards-voting/internal/middleware"
)

// Handlers bundles everything the routes need.
type Handlers struct {
	Auth    *handler.AuthHandler
	Vote    *handler.VoteHandler
	Results *handler.ResultsHandler
	Admin   *handler.AdminHandler
	Hero    *handler.HeroHandler
	Session *middleware.SessionAuth
}

// Register wires all routes. Burst-prone endpoints (signup, login, vote)
// sit behind the Redis token bucket; the public results endpoint sits
// behind the short-TTL response cache. Both middlewares are no-ops when
// rdb is nil.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.GET("/healthz", handler.Health)

	limited := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cached := middleware.CacheResults(config.LoadCacheConfig(), rdb)

	api := e.Group("/api")

	// Public endpoints.
	api.POST("/signup", h.Auth.Signup, limited)
	api.POST("/login", h.Auth.Login, limited)
	api.POST("/logout", h.Auth.Logout)
	api.GET("/check-session", h.Auth.CheckSession)
	api.GET("/categories", h.Results.ListCategories)
	api.GET("/categories/:id/results", h.Results.CategoryResults, cached)
	api.GET("/hero-images", h.Hero.HeroImages)

	// The cast path does its own auth after the gate check, so it is not
	// behind Required.
	api.POST("/vote", h.Vote.Cast, limited)
	api.GET("/my-votes", h.Vote.MyVotes, h.Session.Required())

	// Admin endpoints. Login exchanges the shared secret for a token; the
	// rest require either form of admin credential.
	api.POST("/admin/login", h.Admin.Login, limited)
	adm := api.Group("/admin", middleware.AdminAuth(cfg))
	adm.GET("/voting-status", h.Admin.VotingStatus)
	adm.POST("/voting-status", h.Admin.SetVotingStatus)
	adm.POST("/reset-votes", h.Admin.ResetVotes)
	adm.GET("/users", h.Admin.ListUsers)
	adm.DELETE("/users/:id", h.Admin.DeleteUser)
	adm.GET("/registrants", h.Admin.ListRegistrants)
	adm.POST("/registrants", h.Admin.CreateRegistrant)
	adm.POST("/birthdates", h.Admin.AllowBirthdate)
	adm.POST("/categories", h.Admin.CreateCategory)
	adm.POST("/categories/:id/nominees", h.Admin.AddNominee)
	adm.DELETE("/categories/:id/nominees/:name", h.Admin.RemoveNominee)
}
