package main

import (
	"os"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
	"github.com/spf13/cobra"
)

var (
	exit       = os.Exit
	configPath string
	debug      bool
)

// NewRootCmd creates the root 'formrelay' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          constants.ServiceName,
		Short:        constants.DescRoot,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to formrelay config (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug {
			logger.SetMode("debug")
		}
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSignCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func defaultConfigPath() string {
	if p := os.Getenv(constants.EnvConfigPath); p != "" {
		return p
	}
	return constants.ConfigFileName
}

// loadConfig loads the effective configuration or exits.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load config %s: %v", configPath, err)
		exit(1)
		return nil
	}
	if cfg.Log.Level == "debug" {
		logger.SetMode("debug")
	}
	return cfg
}
