package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/fonts"
)

func newFontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the built-in fonts usable as embed:<name>",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range fonts.Names() {
				marker := " "
				if name == fonts.Default {
					marker = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s embed:%s\n", marker, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
