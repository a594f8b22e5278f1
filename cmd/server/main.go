package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/config"
	"github.com/officefit/office-yoga/internal/database"
	"github.com/officefit/office-yoga/internal/handler"
	"github.com/officefit/office-yoga/internal/middleware"
	"github.com/officefit/office-yoga/internal/queue"
	"github.com/officefit/office-yoga/internal/repository"
	"github.com/officefit/office-yoga/internal/router"
	queue_publisher "github.com/officefit/office-yoga/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; rate limiting and response cache disabled")
	}
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	// Repositories over the single store.
	users := repository.NewUserRepo(db)
	offices := repository.NewOfficeRepo(db)
	coaches := repository.NewCoachRepo(db)
	events := repository.NewEventRepo(db)
	registrations := repository.NewRegistrationRepo(db)

	// Handlers.
	userH := handler.NewUserHandler(users)
	userH.InvalidateCache = func() { middleware.InvalidateCache(rdb, cacheCfg.Prefix) }
	coachH := handler.NewCoachHandler(coaches)
	officeH := handler.NewOfficeHandler(offices)
	eventH := handler.NewEventHandler(events, users)
	regH := handler.NewRegistrationHandler(events, users, registrations)
	regH.Publish = func(ctx context.Context, ev queue.RegistrationEvent) {
		_ = queue_publisher.PublishRegistration(ctx, ev)
	}

	// Background consumer writes the registration audit log.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterPublic(e, userH, coachH, officeH, middleware.ResponseCache(cacheCfg, rdb))
	router.RegisterAPI(e, userH, eventH, regH, cfg.APIKey)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
