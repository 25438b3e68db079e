package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/rendercache/internal/cache"
	"github.com/dustin/go-humanize"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render

	hitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	evictStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"})
	labelStyle = lipgloss.NewStyle().Bold(true).Width(10)
)

// printStats writes a short summary of s to w.
func printStats(w io.Writer, s cache.Stats) {
	rows := [][2]string{
		{"size", fmt.Sprintf("%s / %s", humanize.IBytes(uint64(max(0, s.Size))), cache.FormatCapacity(s.Capacity))}, //nolint:gosec
		{"items", humanize.Comma(int64(s.Items))},
		{"owners", humanize.Comma(int64(s.Owners))},
		{"hits", hitStyle.Render(humanize.Comma(s.Hits))},
		{"misses", missStyle.Render(humanize.Comma(s.Misses))},
		{"evictions", humanize.Comma(s.Evictions)},
		{"hit rate", fmt.Sprintf("%.1f%%", s.HitRate*100)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteByte('\n')
	}
	_, _ = fmt.Fprint(w, b.String())
}
