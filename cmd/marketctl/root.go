package main

import (
	"fmt"
	"os"

	"github.com/cuongbtq/solosphere-be/internal/config"
	"github.com/cuongbtq/solosphere-be/shared/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app is filled by the root command before any subcommand runs
type app struct {
	configPath string
	cfg        *config.Config
	logger     *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}

	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "Admin tooling for the SoloSphere marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg

			a.logger, err = logger.New(&logger.Config{
				Level:   cfg.Logging.Level,
				Format:  "console",
				Output:  "stderr",
				NoColor: cfg.Logging.NoColor,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "Path to configuration file")

	rootCmd.AddCommand(MigrateCmd(a))
	rootCmd.AddCommand(TokenCmd(a))
	rootCmd.AddCommand(ActivityCmd(a))

	return rootCmd
}
