package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/osama-agency/telesklad/internal/app"
	"github.com/osama-agency/telesklad/internal/config"
)

var errNoDSN = errors.New("database DSN is not set, use --dsn or DATABASE_URI")

func newRunCmd(conf *config.Config, l *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process one batch of due notification jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if conf.DatabaseDSN == "" {
				return errNoDSN
			}
			c, err := app.Build(cmd.Context(), conf, l)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer c.Close()

			res, err := c.Runner.ProcessDueJobs(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d succeeded=%d failed=%d retried=%d\n",
				res.Processed, res.Succeeded, res.Failed, res.Retried)
			return nil
		},
	}
}
