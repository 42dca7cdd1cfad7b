package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/config"
	"github.com/css-intel/courtevent/internal/database"
	"github.com/css-intel/courtevent/internal/handler"
	"github.com/css-intel/courtevent/internal/middleware"
	"github.com/css-intel/courtevent/internal/queue"
	"github.com/css-intel/courtevent/internal/repository"
	"github.com/css-intel/courtevent/internal/router"
	"github.com/css-intel/courtevent/internal/service"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client both the response cache and the
	// rate limiter become no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	checkins := repository.NewCheckinRepo(db)
	regs := repository.NewRegistrationRepo(db)

	// The ticket service owns the check-in lifecycle; the queue publisher
	// feeds the audit trail consumer.
	ticketSvc := service.NewTicketService(tickets, checkins, queue.NewPublisher())

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	eventH := handler.NewEventHandler(events)
	ticketH := handler.NewTicketHandler(ticketSvc, tickets, events)
	checkinH := handler.NewCheckinHandler(ticketSvc)
	analyticsH := handler.NewAnalyticsHandler(ticketSvc, events, tickets)
	regH := handler.NewRegistrationHandler(regs, events)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(rateCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterEvents(e, eventH, cfg.JWTSecret, cacheCfg, rdb)
	router.RegisterTickets(e, ticketH, cfg.JWTSecret)
	router.RegisterCheckin(e, checkinH, cfg.JWTSecret)
	router.RegisterRegistrations(e, regH, cfg.JWTSecret)
	router.RegisterAnalytics(e, analyticsH, cfg.JWTSecret)

	// Audit-trail consumer: drains checkin.recorded into the append-only
	// log.  It reconnects on broker failure and never takes the API down.
	go func() {
		if err := queue.StartCheckinConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
