package main

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

	"github.com/spf13/cobra"

	"github.com/alienxp03/arena/internal/storage"
	"github.com/alienxp03/arena/web/handlers"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port    int
		dbPath  string
		useMock bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(os.Stdout, a.debug, true)
			slog.SetDefault(a.logger)

			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("db") {
				a.cfg.Server.DB = dbPath
			}
			return a.serve(cmd.Context(), useMock)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8182, "Server port (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Session database path (default: in memory)")
	cmd.Flags().BoolVar(&useMock, "mock", false, "Use the offline mock provider for both sides")
	return cmd
}

func (a *app) serve(ctx context.Context, useMock bool) error {
	srv := a.cfg.Server

	a.logger.Info("Initializing storage", "path", srv.DB)
	store, err := storage.NewSQLiteStorage(srv.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	if err := store.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := a.registry(useMock)
	eng, err := a.cfg.NewEngine(registry, a.logger)
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Options{
		Engine:          eng,
		Registry:        registry,
		Storage:         store,
		Affirmative:     a.cfg.Participants.Affirmative,
		Negative:        a.cfg.Participants.Negative,
		Style:           a.cfg.Debate.Style,
		CustomStyles:    a.cfg.Styles,
		DebateTimeout:   srv.DebateTimeout,
		MaxUploadBytes:  int64(srv.MaxUploadMB) << 20,
		HealthCachePath: handlers.DefaultHealthCachePath(),
		Logger:          a.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go h.RunJanitor(ctx, srv.SessionTTL, 0)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", srv.Port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		a.logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	a.logger.Info("Starting arena web server",
		"url", fmt.Sprintf("http://localhost:%d", srv.Port),
		"affirmative", a.cfg.Participants.Affirmative,
		"negative", a.cfg.Participants.Negative,
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
