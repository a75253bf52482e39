package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/archive"
	"github.com/iliyamo/conference-volunteer-shifts/internal/config"
	"github.com/iliyamo/conference-volunteer-shifts/internal/database"
	"github.com/iliyamo/conference-volunteer-shifts/internal/handler"
	"github.com/iliyamo/conference-volunteer-shifts/internal/middleware"
	"github.com/iliyamo/conference-volunteer-shifts/internal/queue"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
	"github.com/iliyamo/conference-volunteer-shifts/internal/router"
	"github.com/iliyamo/conference-volunteer-shifts/internal/scheduler"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis is optional; nil disables rate limiting and the board cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	conferences := repository.NewConferenceRepo(db)
	programs := repository.NewProgramRepo(db)
	enrollments := repository.NewEnrollmentRepo(db)
	timeslots := repository.NewTimeslotRepo(db)
	signups := repository.NewSignupRepo(db)
	qualifications := repository.NewQualificationRepo(db)

	// Scheduling engine.
	generator := scheduler.NewGenerator(conferences, enrollments, programs)
	reconciler := scheduler.NewReconciler(generator.BuildForEnrollment, timeslots, enrollments)
	cascade := scheduler.NewCascadeUpdater(enrollments, timeslots)
	engine := scheduler.NewSignupEngine(db, timeslots, signups, enrollments, qualifications)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	adminH := handler.NewAdminHandler(conferences, programs, enrollments, timeslots, signups, qualifications, reconciler, cascade, engine, cfg.AMQPURL, rdb, cacheCfg)
	volH := handler.NewVolunteerHandler(conferences, timeslots, signups, engine, rdb, cacheCfg)

	// Background workers.
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartCapacityConsumer(cfg.AMQPURL, cascade); err != nil {
				log.Printf("capacity-consumer stopped: %v", err)
			}
		}()
	}
	archiver := archive.New(conferences)
	if err := archiver.Start(cfg.ArchiveCron); err != nil {
		log.Fatalf("archiver: %v", err)
	}
	defer archiver.Stop()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)
	router.RegisterVolunteer(e, volH, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
