package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/docker-network-attach/internal/app"
	"github.com/auto-dns/docker-network-attach/internal/config"
	"github.com/auto-dns/docker-network-attach/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

func newRootCmd(v *viper.Viper, newApp func(*config.Config) (application, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker-network-attach",
		Short: "Attach every container to a shared Docker network",
		Long: "Ensures a shared Docker network exists and connects every container to it, " +
			"registering <service>.<project>.svc.cluster.local aliases from Compose labels.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			if err := config.InitConfig(v, configFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmd.Context().Value(configKey).(*config.Config)

			application, err := newApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to create app: %w", err)
			}
			defer application.Close()

			// Register before the watcher starts so no signal is lost.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := application.Run(cmd.Context(), sigCh); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	cmd.PersistentFlags().String("network", "apps-internal", "name of the managed network")
	_ = v.BindPFlag("log.log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("app.network_name", cmd.PersistentFlags().Lookup("network"))

	return cmd
}

func newApplication(cfg *config.Config) (application, error) {
	logInstance := logger.SetupLogger(&cfg.Logging)
	return app.New(cfg, logInstance)
}

// Execute runs the root command.
func Execute() {
	rootCmd := newRootCmd(viper.New(), newApplication)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
