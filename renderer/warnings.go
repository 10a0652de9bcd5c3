package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/taxlot"
)

// WarningsMarkdown renders the advisories of a matching run, or nothing if
// there are none.
func WarningsMarkdown(res *taxlot.Result) string {
	var b strings.Builder
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Warnings\n\n")
		for _, warning := range res.Warnings {
			fmt.Fprintf(w, "- %s\n", warning)
		}
		return len(res.Warnings) > 0
	})
	return b.String()
}

// ReportMarkdown renders a summary followed by the warnings.
func ReportMarkdown(res *taxlot.Result, rows []taxlot.Row, title string) string {
	report := SummaryMarkdown(rows, title)
	if w := WarningsMarkdown(res); w != "" {
		report += "\n" + w
	}
	return report
}
