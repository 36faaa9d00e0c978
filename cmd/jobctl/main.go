// Команда jobctl обслуживает очередь уведомлений вне запущенного сервера.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/osama-agency/telesklad/internal/config"
	"github.com/osama-agency/telesklad/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	conf, err := config.LoadEnvConfig()
	if err != nil {
		conf = &config.Config{}
	}
	l := logger.New(os.Stderr)

	rootCmd := &cobra.Command{
		Use:          "jobctl",
		Short:        "Notification job queue maintenance",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return err
		},
	}
	rootCmd.PersistentFlags().StringVarP(&conf.DatabaseDSN, "dsn", "d", conf.DatabaseDSN, "Database DSN")
	rootCmd.PersistentFlags().StringVarP(&conf.MigrationsDir, "migrations", "m", conf.MigrationsDir,
		"Database migrations directory, empty to skip migrations")

	rootCmd.AddCommand(
		newRunCmd(conf, l),
		newCancelCmd(conf, l),
		newTokenCmd(conf),
	)
	return rootCmd
}
