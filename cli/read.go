package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/reader"
	"github.com/ByLCY/folio/source"
	"github.com/ByLCY/folio/tui"
)

func newReadCmd(a *app) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "read [source]",
		Short: "Read a text page by page in the terminal",
		Long: `Open the interactive reader. Turn pages with ←/→ or by dragging the mouse
horizontally, change the font size with +/-. The source defaults to the
"source" entry of the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := a.cfg.Source
			if len(args) == 1 {
				location = args[0]
			}
			if location == "" {
				return errors.New("no source given and none configured")
			}
			if location == source.Stdin {
				return errors.New("the reader needs the terminal for input; pass a file or URL instead of -")
			}
			if !stdoutIsTerminal() {
				return errors.New("the reader needs an interactive terminal")
			}

			opts, err := reader.OptionsFromConfig(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if style != "" {
				if opts.Style, err = layout.ParseStyle(style, opts.Style); err != nil {
					return err
				}
			}
			session, ts := tui.NewSession(opts)
			model := tui.NewModel(cmd.Context(), session, ts, tui.Options{
				Source: location,
				Loader: source.NewLoader(a.logger),
			})
			return tui.Run(model)
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "style declarations applied on top of the config")
	return cmd
}
