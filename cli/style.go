package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/folio/layout"
)

func newStyleCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "style [declarations]",
		Short: "Print the style pages are measured with",
		Example: `  folio style "font-size: 18px; line-height: 1.6; word-break: break-all"
  folio style --output yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := a.cfg.ResolveStyle()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if style, err = layout.ParseStyle(args[0], style); err != nil {
					return err
				}
				style.FontSize = a.cfg.FontRange.Clamp(style.FontSize)
			}

			w := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(style)
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(style); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output %q", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}
