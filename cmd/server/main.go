package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mselim/awards-voting/internal/config"
	"github.com/mselim/awards-voting/internal/database"
	"github.com/mselim/awards-voting/internal/handler"
	"github.com/mselim/awards-voting/internal/middleware"
	"github.com/mselim/awards-voting/internal/queue"
	"github.com/mselim/awards-voting/internal/repository"
	"github.com/mselim/awards-voting/internal/router"
	queue_publisher "github.com/mselim/awards-voting/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db, cfg.DBDriver); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; gate cache, rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db,
		time.Duration(cfg.SessionIdleMin)*time.Minute,
		time.Duration(cfg.SessionMaxDays)*24*time.Hour)
	votes := repository.NewVoteRepo(db)
	gate := repository.NewVotingConfigRepo(db, rdb)
	cats := repository.NewCategoryRepo(db)
	regs := repository.NewRegistrantRepo(db)

	sessionAuth := middleware.NewSessionAuth(users, sessions)

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, sessions, regs, sessionAuth),
		Vote:    handler.NewVoteHandler(gate, cats, votes, sessionAuth, queue_publisher.PublishVoteCast),
		Results: handler.NewResultsHandler(cats, votes),
		Admin:   handler.NewAdminHandler(cfg, gate, votes, users, regs, cats),
		Hero:    handler.NewHeroHandler(cfg.UnsplashKey),
		Session: sessionAuth,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	router.Register(e, cfg, rdb, h)

	// Periodic expired-session sweep. Resolve-time checks stay
	// authoritative; this only keeps the table small.
	go func() {
		t := time.NewTicker(15 * time.Minute)
		defer t.Stop()
		for range t.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := sessions.DeleteExpired(ctx); err != nil {
				log.Printf("session sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("session sweep removed %d rows", n)
			}
			cancel()
		}
	}()

	// Audit-log consumer; runs its own reconnect loop.
	go func() {
		if err := queue.StartVoteConsumer(); err != nil {
			log.Printf("vote consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
