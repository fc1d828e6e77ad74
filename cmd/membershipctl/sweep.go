package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fithub/membership-service/internal/app/scheduler"
	"github.com/fithub/membership-service/internal/lib/sl"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire lapsed subscriptions once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := sl.New(cfg.Env, os.Stdout)
		app, err := scheduler.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return app.RunOnce(cmd.Context())
	},
}
