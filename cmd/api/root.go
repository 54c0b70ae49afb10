package main

import (
	"context"

	"vet-clinic-records/internal/adapters/storage/sqlstore"
	"vet-clinic-records/internal/config"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/metrics"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     config.Config
	log     logger.Logger
)

var rootCmd = &cobra.Command{
	Use:               "vetclinic",
	Short:             "API de historial clínico veterinario",
	PersistentPreRunE: bootstrap,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "archivo de configuración (yaml)")
	rootCmd.AddCommand(serveCmd, initDBCmd)
}

// bootstrap carga la config y arma el logger antes de cualquier subcomando.
func bootstrap(cmd *cobra.Command, _ []string) error {
	var err error
	if cfg, err = config.Load(cfgFile); err != nil {
		return errors.Annotate(err, "loading config")
	}

	log = logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
		Output: cmd.OutOrStdout(),
	})
	return nil
}

func openDB(ctx context.Context, m *metrics.Collector) (*sqlstore.DB, error) {
	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		Logger:          log,
		Metrics:         m,
	})
	if err != nil {
		return nil, errors.Annotate(err, "opening database")
	}
	return db, nil
}
