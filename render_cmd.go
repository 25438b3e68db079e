package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rendercache/internal/markdown"
	"github.com/dgnsrekt/rendercache/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	style     string
	width     uint
	showStats bool

	renderCmd = &cobra.Command{
		Use:   "render FILE...",
		Short: "Render markdown files to the terminal",
		Long: paragraph(fmt.Sprintf("\n%s markdown files to the terminal. Files given more than once are served from the cache. Use - to read from stdin.",
			keyword("Render"))),
		Example: paragraph("rendercache render README.md\nrendercache render --stats a.md b.md a.md"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRender(cmd, args, os.Stdout)
		},
	}
)

// renderOptions resolves style and width the way a terminal viewer would:
// a plain style when stdout is not a terminal, and the terminal width capped
// at 120 columns when no width is configured.
func renderOptions(cmd *cobra.Command) (string, int) {
	s := viper.GetString("render.style")
	w := viper.GetUint("render.width")

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if !isTerminal && !cmd.Flags().Changed("style") {
		s = styles.NoTTYStyle
	}

	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && w == 0 {
			tw, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				w = uint(tw) //nolint:gosec
			}
			if w > 120 {
				w = 120
			}
		}
		if w == 0 {
			w = 80
		}
	}
	return expandStyle(s), int(w) //nolint:gosec
}

func expandStyle(s string) string {
	if s == styles.AutoStyle || styles.DefaultStyles[s] != nil {
		return s
	}
	return expandPath(s)
}

func executeRender(cmd *cobra.Command, args []string, w io.Writer) error {
	memo, err := newMemo()
	if err != nil {
		return err
	}
	entry, closer, err := newRenderer(memo)
	if err != nil {
		return err
	}
	defer closer() //nolint:errcheck

	s, wrap := renderOptions(cmd)
	terminal := render.Cache[markdown.Props](markdown.Terminal{}, nil)

	for _, arg := range args {
		src, err := readSource(arg)
		if err != nil {
			return err
		}

		out, err := entry.RenderToStaticMarkup(render.Elem[markdown.Props](terminal, markdown.Props{
			Source: src,
			Style:  s,
			Width:  wrap,
		}))
		if err != nil {
			return fmt.Errorf("unable to render %s: %w", arg, err)
		}
		if _, err := fmt.Fprint(w, out); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}

	stats := memo.Stats()
	log.Info("render finished", "files", len(args), "hits", stats.Hits, "misses", stats.Misses)
	if showStats {
		printStats(os.Stderr, stats)
	}
	return nil
}

// readSource reads a file argument, or stdin for "-".
func readSource(arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(expandPath(arg))
	if err != nil {
		return "", fmt.Errorf("unable to open file: %w", err)
	}
	return string(b), nil
}

func init() {
	renderCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	renderCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (0 detects the terminal width)")
	renderCmd.Flags().BoolVar(&showStats, "stats", false, "print cache statistics to stderr")

	_ = viper.BindPFlag("render.style", renderCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("render.width", renderCmd.Flags().Lookup("width"))
}
