package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/osama-agency/telesklad/internal/app"
	"github.com/osama-agency/telesklad/internal/config"
	"github.com/osama-agency/telesklad/internal/domain"
)

func newCancelCmd(conf *config.Config, l *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "cancel <type> <target-id>",
		Short:   "Cancel pending notification jobs of a type for a target",
		Example: "  jobctl cancel payment_reminder 42",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobType, targetID, err := parseCancelArgs(args)
			if err != nil {
				return err
			}
			if conf.DatabaseDSN == "" {
				return errNoDSN
			}

			c, err := app.Build(cmd.Context(), conf, l)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer c.Close()

			cancelled, err := c.Services.NotificationService.Cancel(cmd.Context(), jobType, targetID)
			if err != nil {
				return err //nolint:wrapcheck
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled=%d\n", cancelled)
			return nil
		},
	}
}

func parseCancelArgs(args []string) (domain.JobType, int64, error) {
	jobType := domain.JobType(args[0])
	if !jobType.IsValid() {
		return "", 0, fmt.Errorf("unknown job type %q", args[0])
	}
	targetID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || targetID <= 0 {
		return "", 0, fmt.Errorf("invalid target id %q", args[1])
	}
	return jobType, targetID, nil
}
