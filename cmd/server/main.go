package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/internal/router"
	"github.com/anonto42/gamematch/backend/internal/services"
	"github.com/anonto42/gamematch/backend/pkg/config"
	"github.com/anonto42/gamematch/backend/pkg/firebase"
	"github.com/anonto42/gamematch/backend/pkg/logger"
	"github.com/anonto42/gamematch/backend/pkg/pubsub"
	"github.com/anonto42/gamematch/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.Log)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.SQL); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate relational store")
	}

	var inbox repositories.NotificationRepository
	if db.Mongo != nil {
		mongoInbox := repositories.NewMongoNotificationRepository(db.Mongo.Database(cfg.Mongo.Database))
		if err := mongoInbox.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create notification indexes")
		}
		inbox = mongoInbox
	} else {
		inbox = repositories.NewPostgresNotificationRepository(db.SQL)
	}

	publisher, subscriber, err := pubsub.New(pubsub.Config{
		Driver: cfg.PubSub.Driver,
		Redis: pubsub.RedisConfig{
			Address:     cfg.PubSub.RedisAddress,
			Password:    cfg.PubSub.RedisPassword,
			DB:          cfg.PubSub.RedisDB,
			DialTimeout: cfg.PubSub.DialTimeout,
		},
		Kafka: pubsub.KafkaConfig{
			Brokers: cfg.PubSub.KafkaBrokers,
			Topic:   cfg.PubSub.KafkaTopic,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to initialize pubsub")
	}

	store, err := storage.New(ctx, storage.Config{
		Driver: cfg.Storage.Driver,
		Local: storage.LocalConfig{
			BasePath:  cfg.Storage.LocalPath,
			PublicURL: cfg.Storage.PublicURL,
		},
		S3: storage.S3Config{
			Endpoint:        cfg.Storage.S3Endpoint,
			Region:          cfg.Storage.S3Region,
			Bucket:          cfg.Storage.S3Bucket,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3UsePathStyle,
			PublicURL:       cfg.Storage.S3PublicURL,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialize storage")
	}

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Auth.Provider).Msg("failed to initialize auth provider")
	}

	dispatcher := services.NewDispatcher(publisher, inbox, cfg.Notify.Timeout)

	opts := router.Options{
		Store:      repositories.NewStore(db.SQL),
		Verifier:   verifier,
		Notifier:   dispatcher,
		Inbox:      inbox,
		Subscriber: subscriber,
		Storage:    store,
		Feed: services.FeedConfig{
			Window:         cfg.Feed.Window,
			PageSize:       cfg.Feed.PageSize,
			FollowPriority: cfg.Feed.FollowPriority,
		},
		Development: cfg.IsDevelopment(),
	}
	if cfg.Storage.Driver == "local" && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		opts.StaticURL = cfg.Storage.PublicURL
		opts.StaticDir = cfg.Storage.LocalPath
	}
	e := router.New(opts)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	dispatcher.Wait()
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close publisher")
	}
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (middleware.Verifier, error) {
	switch cfg.Provider {
	case "jwt":
		v, err := middleware.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "firebase", "":
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return app, nil
	default:
		return nil, errors.New("unsupported auth provider: " + cfg.Provider)
	}
}
