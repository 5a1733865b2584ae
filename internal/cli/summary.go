package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/forPelevin/shortsclip/internal/pipeline"
	"github.com/forPelevin/shortsclip/internal/types"
)

const (
	colorAccent = lipgloss.Color("#3097C6")
	colorDim    = lipgloss.Color("#5C4F4B")
	colorOK     = lipgloss.Color("#A6A75D")
	colorErr    = lipgloss.Color("#AC3835")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	okStyle     = lipgloss.NewStyle().Foreground(colorOK)
	errStyle    = lipgloss.NewStyle().Foreground(colorErr)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderSummary(sum pipeline.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d clip(s) written", sum.ClipCount())))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("run dir:  " + sum.RunDir))
	b.WriteString("\n")
	if sum.ManifestPath != "" {
		b.WriteString(dimStyle.Render("manifest: " + sum.ManifestPath))
		b.WriteString("\n")
	}

	rows := make([][]string, 0, len(sum.Items))
	for _, it := range sum.Items {
		status := okStyle.Render("ok")
		switch {
		case it.Err != nil:
			status = errStyle.Render(types.FirstLine(it.Err))
		case len(it.Result.Failures) > 0:
			status = errStyle.Render(fmt.Sprintf("%d window(s) failed", len(it.Result.Failures)))
		}
		mode := "highlights"
		if it.Result.EvenSpaced {
			mode = "even"
		}
		rows = append(rows, []string{
			it.Result.SourceID,
			fmt.Sprintf("%.0fs", it.Result.Duration),
			mode,
			strconv.Itoa(len(it.Result.Clips)),
			status,
		})
	}
	b.WriteString(newTable([]string{"SOURCE", "DURATION", "MODE", "CLIPS", "STATUS"}, rows))
	return b.String()
}

func renderVideos(videos []types.Video) string {
	rows := make([][]string, 0, len(videos))
	for i, v := range videos {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			v.ID,
			truncateRunes(v.Title, 48),
			truncateRunes(v.Channel, 20),
			humanCount(v.Views),
			formatDuration(v.Duration),
		})
	}
	return newTable([]string{"#", "ID", "TITLE", "CHANNEL", "VIEWS", "LENGTH"}, rows)
}

func newTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func videoLabel(v types.Video) string {
	return fmt.Sprintf("%s  (%s, %s views, %s)", truncateRunes(v.Title, 60), v.Channel, humanCount(v.Views), formatDuration(v.Duration))
}

func humanCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	}
	return strconv.FormatInt(n, 10)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
