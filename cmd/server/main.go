package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/billing"
	"github.com/greenloop/waste-pickup/internal/config"
	"github.com/greenloop/waste-pickup/internal/database"
	"github.com/greenloop/waste-pickup/internal/handler"
	"github.com/greenloop/waste-pickup/internal/middleware"
	"github.com/greenloop/waste-pickup/internal/queue"
	"github.com/greenloop/waste-pickup/internal/repository"
	"github.com/greenloop/waste-pickup/internal/reward"
	"github.com/greenloop/waste-pickup/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.SeedAdmin(seedCtx, db, cfg.BcryptCost); err != nil {
		log.Printf("seed admin: %v", err)
	}
	cancel()

	// Redis backs the rate limiter and leaderboard cache.  nil means
	// those features are disabled, not a startup failure.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	pickups := repository.NewPickupRepo(db)
	wasteLogs := repository.NewWasteLogRepo(db)
	payments := repository.NewPaymentRepo(db)
	rewards := repository.NewRewardRepo(db)
	standings := repository.NewStandingRepo(db)
	messages := repository.NewContactRepo(db)

	gateway := billing.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret,
		time.Duration(cfg.GatewayTimeoutSec)*time.Second)
	reconciler := reward.NewReconciler(rewards, standings)

	authH := handler.NewAuthHandler(cfg, users, tokens, standings)
	requesterH := handler.NewRequesterPickupHandler(pickups, wasteLogs)
	collectorH := handler.NewCollectorHandler(db, users, pickups, wasteLogs, payments, rewards, standings)
	paymentH := handler.NewPaymentHandler(db, gateway, cfg.PaymentCurrency, users, pickups, wasteLogs, payments, rewards, standings)
	rewardH := handler.NewRewardHandler(reconciler, rewards)
	leaderboardH := handler.NewLeaderboardHandler(standings)
	profileH := handler.NewProfileHandler(users)
	contactH := handler.NewContactHandler(messages)
	adminH := handler.NewAdminHandler(users, pickups, wasteLogs, reconciler)

	e := echo.New()
	e.HideBanner = true

	if rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			e.Use(middleware.NewTokenBucket(rlCfg, rdb))
		}
	}

	router.RegisterRoutes(e, contactH)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterRequester(e, cfg.JWTSecret, requesterH, profileH, rewardH, paymentH)
	router.RegisterCollector(e, cfg.JWTSecret, collectorH)
	router.RegisterLeaderboards(e, leaderboardH, rdb, config.LoadCacheConfig())
	router.RegisterOversight(e, cfg.JWTSecret, adminH, contactH)

	// Background consumer writes completion events to logs/pickup.log.
	go func() {
		if err := queue.StartPickupConsumer(); err != nil {
			log.Printf("pickup consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
