// Package cli wires folio's commands.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ByLCY/folio/config"
)

// app carries the state shared by every command once the root pre-run has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	cfg      *config.Config
	logger   zerolog.Logger
	closeLog func() error
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool { return isTerminal(os.Stdout) } //nolint:gochecknoglobals // test seam

// NewRootCmd creates the root Cobra command for the folio CLI.
func NewRootCmd(version string) *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:           "folio",
		Short:         "Paginate long text into screen-sized pages",
		Long:          "folio splits long text into pages that fit a viewport, measuring rendered height with a real layout engine.",
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	cmd.AddCommand(newPaginateCmd(a), newReadCmd(a), newStyleCmd(a), newFontsCmd())
	return cmd
}

const rootCmdExample = `  # Paginate a text file for the default 390x844 viewport
  folio paginate book.txt

  # Paginate a remote text as JSON with a larger font
  folio paginate https://example.com/sample.txt --format json --style "font-size: 20px"

  # Render a PDF, one page per screen
  folio paginate book.txt --format pdf --out book.pdf

  # Read in the terminal
  folio read book.txt`

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logger, closeFn, err := cfg.Logging.OpenLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeFn
	a.logger.Debug().Str("config", a.configPath).Msg("configuration loaded")
	return nil
}
