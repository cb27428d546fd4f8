package main

import (
	"fmt"
	"io"
	"os"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/ingest"
	"github.com/awantoch/formrelay/logger"
	"github.com/spf13/cobra"
)

// newSignCmd creates the 'sign' subcommand, which prints the signature a
// payment processor would send for a body. Handy for replaying IPNs by hand.
func newSignCmd() *cobra.Command {
	var secret, file string
	cmd := &cobra.Command{
		Use:   constants.CmdSign,
		Short: constants.DescSign,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if secret == "" {
				cfg := loadConfig()
				if cfg == nil {
					return
				}
				secret = cfg.IPN.Secret
			}
			if secret == "" {
				logger.Error("no IPN secret: pass --secret or set %s", constants.EnvIPNSecret)
				exit(1)
				return
			}
			raw, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				logger.Error("Failed to read payload: %v", err)
				exit(1)
				return
			}
			canonical, err := ingest.ClassifyBody(raw).Canonical()
			if err != nil {
				logger.Error("Failed to canonicalize payload: %v", err)
				exit(1)
				return
			}
			logger.User("%s", ingest.Sign([]byte(secret), canonical))
		},
	}
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "IPN secret (defaults to the configured secret)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the payload from a file instead of stdin")
	return cmd
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}
