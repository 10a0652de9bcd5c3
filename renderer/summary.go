package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/taxlot"
)

// SummaryMarkdown renders summary rows as two markdown tables. The first one
// sums the matched share of both legs, acquisitions and disposals together,
// the second one the disposals only.
//
// Rows of instruments with an integrity gap are flagged with a '⚠' and rows
// missing some exchange rates report how many transactions were left out of
// the converted amounts.
func SummaryMarkdown(rows []taxlot.Row, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(rows) == 0 {
		fmt.Fprint(&b, "No realized trades.\n")
		return b.String()
	}
	home := rows[0].Home

	amountsTable(&b, rows, home, func(r taxlot.Row) taxlot.Amounts { return r.All })
	fmt.Fprint(&b, "\n## Disposals\n\n")
	amountsTable(&b, rows, home, func(r taxlot.Row) taxlot.Amounts { return r.Disposals })

	missing := 0
	for _, r := range rows {
		if r.Instrument != taxlot.AllInstruments {
			missing += r.MissingRates
		}
	}
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n%d transaction(s) without exchange rate are left out of the %s amounts.\n", missing, home)
		return missing > 0
	})
	return b.String()
}

// amountsTable writes one line per row with the amounts selected by pick.
func amountsTable(w io.Writer, rows []taxlot.Row, home string, pick func(taxlot.Row) taxlot.Amounts) {
	fmt.Fprintln(w, "| Instrument | Year | Currency | Sold | Proceeds | Comm/Fee | Basis | Proceeds "+home+" | Comm/Fee "+home+" | Basis "+home+" |")
	fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, r := range rows {
		name := r.Instrument
		if r.Suspect {
			name += " ⚠"
		}
		if r.Instrument == taxlot.AllInstruments || r.Year == 0 {
			name = "**" + name + "**"
		}
		a := pick(r)
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			name,
			r.YearLabel(),
			orDash(r.Currency),
			r.Quantity,
			amount(a.Proceeds),
			amount(a.Commission),
			amount(a.Basis),
			amount(a.ProceedsConverted),
			amount(a.CommissionConverted),
			amount(a.BasisConverted),
		)
	}
}
