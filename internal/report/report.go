// Package report renders the human-readable totals table shown after
// reconciliation, after each successful upload, and on shutdown.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/votebridge/votebridge/internal/vote"
)

const rule = "=================================================="

// Render writes the totals table for the roster to w: one row per
// candidate with count, percentage of the total, and a bar, followed by
// the total. Candidates appear in ascending ID order.
func Render(w io.Writer, roster *vote.Roster, t vote.Tally) {
	total := t.Total()

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CURRENT VOTE TOTALS")
	fmt.Fprintln(w, rule)
	for _, c := range roster.Candidates() {
		pct := 0.0
		if total > 0 {
			pct = float64(t[c.ID]) / float64(total) * 100
		}
		bar := ""
		if n := int(pct / 5); n > 0 {
			bar = " " + strings.Repeat("█", n)
		}
		fmt.Fprintf(w, "  %-15s | %4d votes | %5.1f%%%s\n", c.Name, t[c.ID], pct, bar)
	}
	fmt.Fprintf(w, "\n  %-15s | %4d votes\n", "TOTAL", total)
	fmt.Fprintln(w, rule)
}
