package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rendercache/internal/cache"
	"github.com/dgnsrekt/rendercache/internal/replay"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	valueWidth uint
	quiet      bool

	replayCmd = &cobra.Command{
		Use:   "replay TRACE",
		Short: "Replay a cache trace",
		Long: paragraph(fmt.Sprintf("\n%s a trace of set, get and resize operations against a fresh cache and report hits, misses and evictions. Use - to read from stdin.",
			keyword("Replay"))),
		Example: paragraph("rendercache replay --capacity 1KiB trace.txt"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReplay(args[0], cmd.OutOrStdout())
		},
	}
)

func executeReplay(arg string, w io.Writer) error {
	var r io.Reader = os.Stdin
	if arg != "-" {
		f, err := os.Open(expandPath(arg))
		if err != nil {
			return fmt.Errorf("unable to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	ops, err := replay.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to parse %s: %w", arg, err)
	}

	capacity, err := cache.ParseCapacity(viper.Get("cache.capacity"))
	if err != nil {
		return err
	}

	report, err := replay.Run(ops, replay.Config{
		Capacity:          capacity,
		ReclaimOverwrites: viper.GetBool("cache.reclaim_overwrites"),
		Logger:            log.Default().WithPrefix("replay"),
	})
	if err != nil {
		return err
	}

	if !quiet {
		for _, res := range report.Results {
			fmt.Fprintln(w, formatResult(res, valueWidth))
		}
		fmt.Fprintln(w)
	}
	printStats(w, report.Stats)
	return nil
}

// formatResult renders one replayed operation and the evictions it caused.
func formatResult(res replay.Result, width uint) string {
	short := func(s string) string {
		s = strings.ReplaceAll(s, "\n", `\n`)
		if width == 0 {
			return s
		}
		return truncate.StringWithTail(s, width, "…")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%4d  ", res.Op.Line)
	switch {
	case res.Err != nil:
		fmt.Fprintf(&b, "%s  %s", missStyle.Render("error"), res.Err)
	case res.Op.Kind == replay.Get && res.Hit:
		fmt.Fprintf(&b, "%s  %s/%s = %s", hitStyle.Render("hit  "), res.Op.Owner, res.Op.Key, short(res.Value))
	case res.Op.Kind == replay.Get:
		fmt.Fprintf(&b, "%s  %s/%s", missStyle.Render("miss "), res.Op.Owner, res.Op.Key)
	case res.Op.Kind == replay.Set:
		fmt.Fprintf(&b, "set    %s/%s = %s", res.Op.Owner, res.Op.Key, short(res.Op.Value))
	default:
		fmt.Fprintf(&b, "%-6s %s", res.Op.Kind, cache.FormatCapacity(res.Op.Capacity))
	}

	for _, e := range res.Evicted {
		line := fmt.Sprintf("evicted #%d %s/%s = %s", e.Token, e.Owner, e.Key, short(e.Value))
		b.WriteByte('\n')
		b.WriteString(indent.String(evictStyle.Render(line), 6))
	}
	return b.String()
}

func init() {
	replayCmd.Flags().UintVar(&valueWidth, "value-width", 40, "truncate values to this many columns (0 disables)")
	replayCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print statistics")
	replayCmd.Flags().Bool("reclaim", false, "drop superseded entries on overwrite")

	_ = viper.BindPFlag("cache.reclaim_overwrites", replayCmd.Flags().Lookup("reclaim"))
}
