package main

import (
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Crea las tablas si no existen",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		db, err := openDB(ctx, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			return errors.Annotate(err, "creating tables")
		}
		log.Info("schema ready", map[string]any{"driver": cfg.Database.Driver})
		return nil
	},
}
