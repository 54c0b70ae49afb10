package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vet-clinic-records/internal/platform/metrics"
	"vet-clinic-records/internal/router"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el API HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	m := metrics.NewCollector()
	reg, err := metrics.NewRegistry(m)
	if err != nil {
		return errors.Annotate(err, "registering metrics")
	}

	db, err := openDB(ctx, m)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.InitSchema {
		if err := db.InitSchema(ctx); err != nil {
			return errors.Annotate(err, "creating tables")
		}
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: router.NewRouter(router.Options{
			DB:          db,
			Logger:      log,
			Metrics:     m,
			Registry:    reg,
			CORSOrigins: cfg.HTTP.CORSOrigins,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "driver": db.Dialect()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Annotate(err, "server error")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
