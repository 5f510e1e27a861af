package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clanops/roster-bot/internal/api"
	"github.com/clanops/roster-bot/internal/bot"
	"github.com/clanops/roster-bot/internal/core/challenge"
	"github.com/clanops/roster-bot/internal/core/ratelimit"
	"github.com/clanops/roster-bot/internal/core/service"
	"github.com/clanops/roster-bot/internal/core/validate"
	"github.com/clanops/roster-bot/internal/infrastructure/chat"
	"github.com/clanops/roster-bot/internal/infrastructure/config"
	mongodb "github.com/clanops/roster-bot/internal/infrastructure/db/mongo"
	redisdb "github.com/clanops/roster-bot/internal/infrastructure/db/redis"
	"github.com/clanops/roster-bot/internal/infrastructure/queue"
	"github.com/clanops/roster-bot/internal/infrastructure/storage"
	"github.com/clanops/roster-bot/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage backends ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	proofs, err := storage.NewProofStore(storage.Config{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("proof storage init failed")
	}
	if err := proofs.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("proof bucket init failed")
	}

	// --- Repositories ---
	members := mongodb.NewMemberRepository(db)
	pending := mongodb.NewPendingRepository(db)
	users := mongodb.NewUserRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"members": members.EnsureIndexes,
		"pending": pending.EnsureIndexes,
		"users":   users.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Chat gateway ---
	notifier, err := chat.NewClient(chat.Config{
		BaseURL: cfg.Chat.GatewayURL,
		Token:   cfg.Chat.Token,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("chat gateway init failed")
	}

	// --- Core services ---
	bank, err := challenge.Load(cfg.ChallengeFile)
	if err != nil {
		if cfg.ChallengeEnabled {
			log.Fatal().Err(err).Str("file", cfg.ChallengeFile).Msg("challenge bank load failed")
		}
		bank = challenge.NewBank(nil)
	}

	nicknamePolicy := validate.NicknamePolicy{
		MinLen:       cfg.NicknameMinLen,
		MaxLen:       cfg.NicknameMaxLen,
		Alphanumeric: cfg.NicknameAlphanumeric,
	}

	sessions := service.NewSessionStore()
	registration := service.NewRegistrationService(members, pending, sessions, proofs, notifier, bank, service.RegistrationConfig{
		ChallengeEnabled: cfg.ChallengeEnabled,
		Nickname:         nicknamePolicy,
		AdminActorID:     cfg.AdminActorID,
	}, log)
	admin := service.NewAdminService(members, pending, notifier, cfg.AdminActorID, log)
	auth := service.NewAuthService(users, cfg.JWTSecret, 24*time.Hour)

	// --- Update pipeline ---
	limiter := ratelimit.New(cfg.RateLimit, time.Duration(cfg.RateWindowSeconds)*time.Second)
	dedup := redisdb.NewUpdateDeduper(rdb)
	router := bot.NewRouter(registration, admin, notifier, limiter, dedup, cfg.AdminActorID, nicknamePolicy, log)

	dispatcher := queue.NewDispatcher(cfg.DispatcherWorkers, router, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Updates:      dispatcher,
		Admin:        admin,
		Auth:         auth,
		Mongo:        db,
		Redis:        rdb,
		JWTSecret:    cfg.JWTSecret,
		AdminActorID: cfg.AdminActorID,
		Log:          log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Int("workers", cfg.DispatcherWorkers).Msg("roster bot started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
