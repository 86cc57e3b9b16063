package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kombucha-eln/internal/config"
)

func newConfigSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config-sample",
		Short: "Print an annotated sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig())
			return err
		},
	}
}
