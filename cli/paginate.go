package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/paginate"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	termrenderer "github.com/ByLCY/folio/renderer/term"
	"github.com/ByLCY/folio/source"
	"github.com/ByLCY/folio/tui"
)

// Output formats and measurement backends.
const (
	formatText = "text"
	formatJSON = "json"
	formatPDF  = "pdf"

	backendCanvas   = "canvas"
	backendEstimate = "estimate"
	backendTerm     = "term"
)

var formatExt = map[string]string{
	formatText: ".txt",
	formatJSON: ".json",
	formatPDF:  ".pdf",
}

type paginateFlags struct {
	format   string
	backend  string
	style    string
	out      string
	debug    string
	fontDir  string
	capacity int
	width    float64
	jobs     int
	stats    bool
}

// paginated is the outcome for one source.
type paginated struct {
	doc   source.Document
	book  *layout.Book
	stats paginate.Stats
}

func newPaginateCmd(a *app) *cobra.Command {
	var f paginateFlags
	cmd := &cobra.Command{
		Use:   "paginate <source>...",
		Short: "Split text into pages that fit the viewport",
		Long: `Split each source (a file, an http(s) URL or "-" for stdin) into pages.
A page never exceeds the capacity unless a single character cannot fit, in
which case the page is cut at the next newline or after 50 characters.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaginate(cmd, a, &f, args)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", formatText, "output format: text, json or pdf")
	cmd.Flags().StringVarP(&f.backend, "backend", "b", backendCanvas, "measurement backend: canvas, estimate or term")
	cmd.Flags().StringVarP(&f.style, "style", "s", "", `style declarations, e.g. "font-size: 18px; line-height: 1.6"`)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (a directory when several sources are given)")
	cmd.Flags().StringVar(&f.debug, "debug", "", "write the laid out pages as JSON to this path")
	cmd.Flags().StringVar(&f.fontDir, "font-dir", "", "directory for resolving relative font paths")
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "page height in px (default viewport height minus chrome)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width in px (default from config)")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", runtime.NumCPU(), "sources paginated in parallel")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "print pagination statistics to stderr")
	return cmd
}

func runPaginate(cmd *cobra.Command, a *app, f *paginateFlags, args []string) error {
	ext, ok := formatExt[f.format]
	if !ok {
		return fmt.Errorf("unknown format %q", f.format)
	}
	ts, err := newTypesetter(f.backend, f.fontDir)
	if err != nil {
		return err
	}
	style, capacity, err := a.resolveLayout(cmd, f)
	if err != nil {
		return err
	}

	loader := source.NewLoader(a.logger)
	loader.Stdin = cmd.InOrStdin()

	results := make([]paginated, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(f.jobs, 1))
	for i, location := range args {
		g.Go(func() error {
			res, err := paginateSource(ctx, a, loader, ts, location, capacity, style)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if f.stats {
		printStats(cmd.ErrOrStderr(), results)
	}
	if f.debug != "" && len(results) == 1 {
		if err := layout.WriteDebugJSON(results[0].book, f.debug); err != nil {
			return fmt.Errorf("writing debug JSON: %w", err)
		}
	}

	r, err := newRenderer(f.format, ts, f.fontDir)
	if err != nil {
		return err
	}
	return writeOutputs(cmd, r, results, f.out, ext)
}

// resolveLayout layers the config, the terminal size (term backend only),
// --style, --width and --capacity.
func (a *app) resolveLayout(cmd *cobra.Command, f *paginateFlags) (layout.Style, int, error) {
	style, err := a.cfg.ResolveStyle()
	if err != nil {
		return style, 0, err
	}
	capacity := a.cfg.Capacity()

	if f.backend == backendTerm && !cmd.Flags().Changed("width") && !cmd.Flags().Changed("capacity") && stdoutIsTerminal() {
		if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			w, h := tui.ViewportFor(cols, rows)
			style.Width = w
			style.Padding = 0
			capacity = int(h - tui.Chrome)
		}
	}

	style, err = layout.ParseStyle(f.style, style)
	if err != nil {
		return style, 0, err
	}
	style.FontSize = a.cfg.FontRange.Clamp(style.FontSize)
	if f.width > 0 {
		style.Width = f.width
	}
	if f.capacity > 0 {
		capacity = f.capacity
	}
	return style, capacity, nil
}

func paginateSource(ctx context.Context, a *app, loader *source.Loader, ts layout.Typesetter, location string, capacity int, style layout.Style) (paginated, error) {
	doc, err := loader.Load(ctx, location)
	if err != nil {
		return paginated{}, err
	}

	measurer := layout.NewMeasurer(ts)
	oracle := paginate.NewCachedOracle(measurer)
	if a.cfg.CacheEntries > 0 {
		oracle.MaxEntries = a.cfg.CacheEntries
	}
	p := paginate.New(oracle)
	p.Logger = a.logger.With().Str("source", location).Logger()

	pages, stats, err := p.Pages(ctx, doc.Text, capacity, style)
	if err != nil {
		return paginated{}, err
	}
	if err := measurer.Err(); err != nil {
		return paginated{}, fmt.Errorf("measuring %s: %w", location, err)
	}

	book, err := layout.Compose(doc.Title, paginate.Texts(pages), capacity, style, ts)
	if err != nil {
		return paginated{}, fmt.Errorf("composing %s: %w", location, err)
	}
	for i, page := range pages {
		leaf := &book.Leaves[i]
		leaf.Start, leaf.End, leaf.Forced = page.Start, page.End, page.Forced
	}
	return paginated{doc: doc, book: book, stats: stats}, nil
}

func newTypesetter(backend, fontDir string) (layout.Typesetter, error) {
	switch backend {
	case backendCanvas:
		return canvasrenderer.NewRenderer(fontDir), nil
	case backendEstimate:
		return layout.EstimateTypesetter{}, nil
	case backendTerm:
		return termrenderer.Typesetter{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// jsonRenderer adapts layout.WriteJSON to the Renderer interface.
type jsonRenderer struct{}

func (jsonRenderer) Render(book *layout.Book) ([]byte, error) {
	var buf bytes.Buffer
	if err := layout.WriteJSON(&buf, book); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newRenderer(format string, ts layout.Typesetter, fontDir string) (renderer.Renderer, error) {
	switch format {
	case formatText:
		return termrenderer.NewRenderer(), nil
	case formatJSON:
		return jsonRenderer{}, nil
	case formatPDF:
		if r, ok := ts.(*canvasrenderer.Renderer); ok {
			return r, nil
		}
		return canvasrenderer.NewRenderer(fontDir), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeOutputs(cmd *cobra.Command, r renderer.Renderer, results []paginated, out, ext string) error {
	if out == "" && ext == formatExt[formatPDF] && stdoutIsTerminal() {
		return fmt.Errorf("refusing to write PDF to a terminal, use --out")
	}

	multi := len(results) > 1
	if multi && out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	names := outputNames(results)
	for i, res := range results {
		data, err := r.Render(res.book)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", res.doc.Location, err)
		}
		switch {
		case out == "":
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
		case multi:
			if err := os.WriteFile(filepath.Join(out, names[i]+ext), data, 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		default:
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
	}
	return nil
}

// outputNames 为每个来源取输出文件名：默认用标题，重名时追加序号 "-2"、"-3"……
func outputNames(results []paginated) []string {
	names := make([]string, len(results))
	used := make(map[string]bool, len(results))
	for i, res := range results {
		base := res.doc.Title
		if base == "" {
			base = fmt.Sprintf("source-%d", i+1)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func printStats(w io.Writer, results []paginated) {
	p := message.NewPrinter(language.English)
	for _, res := range results {
		name := res.doc.Location
		if res.doc.Title != "" {
			name = res.doc.Title
		}
		p.Fprintf(w, "%s: %d pages, %d forced, %d measurements, %d characters\n",
			name, res.stats.Pages, res.stats.Forced, res.stats.Measurements, len([]rune(res.doc.Text)))
	}
}
