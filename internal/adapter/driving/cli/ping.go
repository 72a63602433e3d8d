package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the detection service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := a.console.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "%s at %s is up.\n", service, a.cfg.APIBase)
			return nil
		},
	}
}
