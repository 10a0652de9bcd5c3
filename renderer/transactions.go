package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/taxlot"
)

// TransactionsMarkdown renders the matched transactions, one table per
// instrument.
func TransactionsMarkdown(res *taxlot.Result) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Transactions\n\n")
	if len(res.Matches) == 0 {
		fmt.Fprint(&b, "No transactions.\n")
		return b.String()
	}
	for _, instrument := range res.Instruments() {
		fmt.Fprintf(&b, "## %s\n\n", instrument)
		if res.Gaps[instrument] {
			fmt.Fprint(&b, "⚠ the position goes negative, some acquisitions may be missing.\n\n")
		}
		fmt.Fprintln(&b, "| # | Date | Quantity | Proceeds | Comm/Fee | Basis | Rate | Matched | Years | Position |")
		fmt.Fprintln(&b, "|---:|:---|---:|---:|---:|---:|---:|---:|:---|---:|")
		for _, m := range res.Instrument(instrument) {
			rate := "n/a"
			if m.Converted() {
				rate = m.Rate.String()
			}
			matched := m.Matched.String()
			if m.FullyMatched {
				matched += " ✓"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				m.ID,
				m.Time.Format(time.DateOnly),
				m.Quantity,
				m.Proceeds,
				m.Commission,
				m.Basis,
				rate,
				matched,
				years(m.Years),
				m.Position,
			)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

// years formats a year allocation as "2023: 40, 2024: 60".
func years(y taxlot.YearAllocation) string {
	var parts []string
	for _, year := range y.Years() {
		if q := y[year]; !q.IsZero() {
			parts = append(parts, fmt.Sprintf("%d: %s", year, q))
		}
	}
	return orDash(strings.Join(parts, ", "))
}
