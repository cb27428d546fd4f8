package main

import (
	"encoding/json"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdConfig,
		Short: constants.DescConfig,
	}
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd prints the effective config with secrets masked.
func newConfigValidateCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   constants.CmdValidate,
		Short: constants.DescConfigValidate,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			if cfg == nil {
				return
			}
			var out []byte
			var err error
			if asYAML {
				out, err = yaml.Marshal(cfg.Redacted())
			} else {
				out, err = json.MarshalIndent(cfg.Redacted(), "", "  ")
			}
			if err != nil {
				logger.Error("Failed to encode config: %v", err)
				exit(1)
				return
			}
			logger.User("%s", out)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML instead of JSON")
	return cmd
}
