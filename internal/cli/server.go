package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"globent-quiz-service/internal/app"
	"globent-quiz-service/internal/auth"
	"globent-quiz-service/internal/config"
	"globent-quiz-service/internal/infra/memory"
	mongostore "globent-quiz-service/internal/infra/mongo"
	pgstore "globent-quiz-service/internal/infra/postgres"
	rediscache "globent-quiz-service/internal/infra/redis"
	"globent-quiz-service/internal/play"
	transport "globent-quiz-service/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// playRegistry is satisfied by the memory and Redis registries.
type playRegistry interface {
	transport.PlayRegistry
	CloseAll() []string
}

type stores struct {
	quizzes app.QuizStore
	users   app.UserStore
	close   func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) must be set")
	}

	finalPort := resolvePort(portFlag, cfg.Server.Port)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)
	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)

	loader := memory.QuizLoaderFunc(st.quizzes.ByPIN)
	var (
		cache    app.QuizCache
		registry playRegistry
	)
	if redisClient != nil {
		cache = rediscache.NewQuizCache(redisClient, loader, quizTTL)
		registry = rediscache.NewPlayRegistry(redisClient, redisTTL)
	} else {
		cache = memory.NewQuizCache(loader, quizTTL)
		registry = memory.NewPlayRegistry()
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL))
	gate := auth.NewGate(tokens, st.users, cfg.Auth.AdminEmails)

	quizzes := app.NewQuizService(st.quizzes, cache, gate, log)
	accounts := app.NewAuthService(st.users, tokens, log)
	revealDelay := config.TTLDuration(cfg.Play.RevealDelay, play.DefaultRevealDelay)
	wsHandler := transport.NewWSHandler(quizzes, gate, registry, revealDelay, log)

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.Deps{
			Quizzes:     quizzes,
			Accounts:    accounts,
			Auth:        gate,
			Play:        wsHandler,
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      log,
		}),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Info("starting quiz service", "port", finalPort, "storage", cfg.Storage.Driver, "redis", redisClient != nil)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	closed := registry.CloseAll()
	log.Info("stopped play sessions", "count", len(closed))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// resolvePort prefers the flag (or PORT), then server.port, then 8080.
func resolvePort(flag, configured string) string {
	switch {
	case flag != "":
		return flag
	case configured != "":
		return configured
	default:
		return "8080"
	}
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return stores{}, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}
		return stores{
			quizzes: mongostore.NewQuizStore(db),
			users:   mongostore.NewUserStore(db),
			close:   func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return stores{}, err
		}
		pool, err := pgstore.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return stores{}, err
		}
		return stores{
			quizzes: pgstore.NewQuizStore(pool),
			users:   pgstore.NewUserStore(pool),
			close:   pool.Close,
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		return stores{
			quizzes: memory.NewQuizStore(),
			users:   memory.NewUserStore(),
			close:   func() {},
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
