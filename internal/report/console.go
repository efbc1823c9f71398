// internal/report/console.go
// Package: report
package report

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mwiater/benchviolin/internal/bench"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	nameStyle   = cellStyle.Foreground(lipgloss.Color("205"))
)

// Console writes a table summarizing every case of s: relative speed (when
// the session is relative), time and throughput per unit, percentage error
// and, when recorded, counters per unit.
func Console(w io.Writer, s *bench.Session) error {
	_, err := fmt.Fprintln(w, titleStyle.Render(s.Title())+"\n"+ConsoleTable(s))
	return err
}

// ConsoleTable renders the table part of Console.
func ConsoleTable(s *bench.Session) string {
	cfg := s.Config()
	cases := s.Cases()
	ratios := s.Ratios()
	withCounters := slices.ContainsFunc(cases, func(c bench.Case) bool { return len(c.Counters) > 0 })

	var headers []string
	if cfg.Relative {
		headers = append(headers, "relative")
	}
	headers = append(headers, "ns/"+cfg.Unit, cfg.Unit+"/s", "err%")
	if withCounters {
		headers = append(headers, "ins/"+cfg.Unit, "bra-miss/"+cfg.Unit, "cache-miss/"+cfg.Unit)
	}
	headers = append(headers, "benchmark")
	nameCol := len(headers) - 1

	rows := make([][]string, 0, len(cases))
	for i, c := range cases {
		sum := c.Summary()
		var row []string
		if cfg.Relative {
			row = append(row, formatPercent(ratios[i]))
		}
		row = append(row,
			formatFloat(sum.Median*1e9),
			formatFloat(1/sum.Median),
			formatPercent(sum.PercentageError),
		)
		if withCounters {
			if ctr, ok := c.CounterSummary(); ok {
				row = append(row, formatFloat(ctr.Instructions), formatFloat(ctr.BranchMisses), formatFloat(ctr.CacheMisses))
			} else {
				row = append(row, "-", "-", "-")
			}
		}
		row = append(row, c.Name)
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == nameCol:
				return nameStyle
			default:
				return cellStyle.Align(lipgloss.Right)
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*v)
}
