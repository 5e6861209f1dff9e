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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/mockinterview/internal/handler"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/metrics"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP interview API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default language for error messages (en, ru)")
	f.Int("max-sessions", 1000, "Maximum sessions held in memory (0 = unlimited)")
	f.Duration("session-idle-timeout", 2*time.Hour, "Drop sessions unused for this long (0 = never)")
	f.Duration("shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")
	addBankFlags(f)
	addLogFlags(f)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	b, err := loadBank(v)
	if err != nil {
		return err
	}
	weights, resources, err := loadTables(v)
	if err != nil {
		return err
	}

	lang := v.GetString("lang")
	catalog, err := appI18n.Load(lang)
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	m := metrics.New()
	h := handler.New(b, m, handler.Config{
		Weights:     weights,
		Resources:   resources,
		MaxSessions: v.GetInt("max-sessions"),
		IdleTimeout: v.GetDuration("session-idle-timeout"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(catalog.Middleware)
	r.Handle("/metrics", m.Handler())
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server",
			"addr", addr,
			"lang", catalog.Lang(),
			"questions", b.Len(),
			"max_sessions", v.GetInt("max-sessions"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if idle := v.GetDuration("session-idle-timeout"); idle > 0 {
		g.Go(func() error {
			h.RunSweeper(ctx, sweepInterval(idle))
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), v.GetDuration("shutdown-timeout"))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func sweepInterval(idle time.Duration) time.Duration {
	return min(max(idle/4, time.Second), 5*time.Minute)
}
