package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mentorai/mentorai/assets"
	"github.com/mentorai/mentorai/internal"
	"github.com/mentorai/mentorai/internal/auth"
	authdb "github.com/mentorai/mentorai/internal/auth/db"
	"github.com/mentorai/mentorai/internal/db"
	"github.com/mentorai/mentorai/internal/db/migrate"
	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/email/smtp"
	"github.com/mentorai/mentorai/internal/email/view"
	"github.com/mentorai/mentorai/internal/interview"
	interviewdb "github.com/mentorai/mentorai/internal/interview/db"
	"github.com/mentorai/mentorai/internal/krypto"
	"github.com/mentorai/mentorai/internal/room"
	"github.com/mentorai/mentorai/internal/web"
	"github.com/mentorai/mentorai/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	sqlDB, err := db.OpenSQLite(cfg.dbFile, true)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}
	defer sqlDB.Close()

	migrated, err := migrate.RunFS(ctx, sqlDB, migrations.FS, migrate.Metadata{
		AppVersion: internal.BuildRevision,
		Timestamp:  internal.BuildRevisionTime,
	})
	if err != nil {
		logger.Error("failed to run migrations", "error", err)
		return 1
	}

	for _, migration := range migrated {
		logger.Info("ran migration", "sequence", migration.Sequence, "filename", migration.Filename)
	}

	encryptor, err := krypto.NewEncryptor(cfg.encryptionKeys)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		return 1
	}

	var sender email.Sender = email.NewLogSender(logger)
	if cfg.email.sender == "smtp" {
		sender = smtp.NewSender(smtp.Settings{
			Host:     cfg.email.host,
			Port:     cfg.email.port,
			Username: cfg.email.username,
			Password: cfg.email.password,
			FromName: cfg.email.fromName,
		})
	}

	emailSvc := email.NewService(view.NewFSRenderer(assets.EmailFS), sender, cfg.email.from)

	sessions := auth.NewSessionTokens(cfg.jwtSigningKey)

	authSvc, err := auth.NewService(authdb.New(sqlDB), emailSvc, sessions, func(err error) {
		logger.Error("async failure in auth service", "error", err)
	}, auth.ServiceConfig{
		WorkerTimeout: cfg.workerTimeout,
		BaseURL:       cfg.baseURL,
	})
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	roomTokens, err := room.NewTokenMinter(cfg.room.apiKey, cfg.room.apiSecret)
	if err != nil {
		logger.Error("failed to create room token minter", "error", err)
		return 1
	}

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:           logger,
			AuthService:      authSvc,
			SessionTokens:    sessions,
			InterviewService: interview.NewService(interviewdb.New(sqlDB, encryptor)),
			RoomTokens:       roomTokens,
		}),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()

	// Let outstanding email workers finish before exiting.
	authSvc.Wait()

	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}
