package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/ledger"
	"github.com/librarium-app/librarium/internal/lifecycle"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/mail"
	"github.com/librarium-app/librarium/internal/registration"
	"github.com/librarium-app/librarium/internal/session"
	"github.com/librarium-app/librarium/internal/stats"
	"github.com/librarium-app/librarium/internal/store"
	"github.com/librarium-app/librarium/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the library web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	adapter := logging.NewAdapter(logger)

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	documents, err := store.NewStoreFromPGXPool(pool, store.WithLogger(adapter))
	if err != nil {
		return err
	}

	if err = documents.InitSchema(ctx); err != nil {
		return err
	}

	activityLedger, err := ledger.NewLedgerFromPGXPool(pool, ledger.WithLogger(adapter))
	if err != nil {
		return err
	}

	engine := lifecycle.NewEngine(documents, activityLedger, lifecycle.WithLogger(adapter))
	statsService := stats.NewService(documents, activityLedger)

	mailQueue := mail.NewQueue(mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}), adapter)
	defer mailQueue.Close()

	sessions, closeSessions, err := newSessionStore(cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	accounts := registration.NewService(documents, mailQueue, registration.Config{
		AdminEmail: cfg.Mail.AdminEmail,
		BaseURL:    cfg.BaseURL(),
	}, registration.WithLogger(adapter))

	server := web.NewServer(
		documents, engine, statsService, accounts, sessions, web.WithLogger(logger))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.Router(),
	}

	notifyCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		logger.Info("server listening", zap.String("addr", httpServer.Addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		return err
	case <-notifyCtx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// newSessionStore picks the session backend: Redis when an address is
// configured, process memory otherwise.
func newSessionStore(cfg *config.Config) (session.Store, func(), error) {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}

	if cfg.Redis.Addr == "" {
		memoryStore := session.NewMemoryStore(ttl)

		return memoryStore, memoryStore.Close, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisStore, err := session.NewRedisStore(client, ttl)
	if err != nil {
		return nil, nil, err
	}

	return redisStore, func() { _ = client.Close() }, nil
}
