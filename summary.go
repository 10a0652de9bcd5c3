package taxlot

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// GroupBy selects the granularity of a summary.
type GroupBy int

const (
	// ByInstrument produces one row per instrument, all years together.
	ByInstrument GroupBy = iota
	// ByInstrumentYear produces one row per instrument and realization year.
	ByInstrumentYear
	// Global produces one row per realization year and a grand total, all
	// instruments together.
	Global
)

func (g GroupBy) String() string {
	switch g {
	case ByInstrument:
		return "instrument"
	case ByInstrumentYear:
		return "year"
	case Global:
		return "global"
	default:
		return "unknown"
	}
}

// ParseGroupBy parses a string into a GroupBy.
func ParseGroupBy(s string) (GroupBy, error) {
	switch s {
	case "instrument":
		return ByInstrument, nil
	case "year":
		return ByInstrumentYear, nil
	case "global":
		return Global, nil
	default:
		return 0, fmt.Errorf("unknown grouping: %q", s)
	}
}

// AllInstruments is the instrument name of global rows.
const AllInstruments = "All"

// Amounts are sums of the matched share of transaction amounts.
type Amounts struct {
	Proceeds            decimal.Decimal `json:"proceeds"`
	ProceedsConverted   decimal.Decimal `json:"proceedsConverted"`
	Commission          decimal.Decimal `json:"commission"`
	CommissionConverted decimal.Decimal `json:"commissionConverted"`
	Basis               decimal.Decimal `json:"basis"`
	BasisConverted      decimal.Decimal `json:"basisConverted"`
}

// accumulate adds fraction of m's amounts. Converted amounts are only added when
// defined.
func (a *Amounts) accumulate(m Match, fraction decimal.Decimal) {
	a.Proceeds = a.Proceeds.Add(m.Proceeds.Decimal().Mul(fraction))
	a.Commission = a.Commission.Add(m.Commission.Decimal().Mul(fraction))
	a.Basis = a.Basis.Add(m.Basis.Decimal().Mul(fraction))
	if !m.Converted() {
		return
	}
	a.ProceedsConverted = a.ProceedsConverted.Add(m.ProceedsConverted.Decimal().Mul(fraction))
	a.CommissionConverted = a.CommissionConverted.Add(m.CommissionConverted.Decimal().Mul(fraction))
	a.BasisConverted = a.BasisConverted.Add(m.BasisConverted.Decimal().Mul(fraction))
}

func (a Amounts) add(b Amounts) Amounts {
	return Amounts{
		Proceeds:            a.Proceeds.Add(b.Proceeds),
		ProceedsConverted:   a.ProceedsConverted.Add(b.ProceedsConverted),
		Commission:          a.Commission.Add(b.Commission),
		CommissionConverted: a.CommissionConverted.Add(b.CommissionConverted),
		Basis:               a.Basis.Add(b.Basis),
		BasisConverted:      a.BasisConverted.Add(b.BasisConverted),
	}
}

// Row is a line of a realized-gain summary.
type Row struct {
	Instrument string `json:"instrument"`
	// Year of realization, 0 for all years.
	Year int `json:"year"`
	// Currency of the original amounts, empty when they mix currencies.
	Currency string `json:"currency"`
	// Home is the currency of converted amounts.
	Home string `json:"home"`
	// Quantity is the matched quantity of disposals.
	Quantity Quantity `json:"quantity"`
	// All sums both legs of every match, Disposals only the disposal legs.
	All       Amounts `json:"all"`
	Disposals Amounts `json:"disposals"`
	// Suspect is set when an integrity gap was detected.
	Suspect bool `json:"suspect"`
	// MissingRates counts contributing transactions without converted amounts.
	MissingRates int `json:"missingRates"`
}

// YearLabel returns the year or "Total".
func (r Row) YearLabel() string {
	if r.Year == 0 {
		return "Total"
	}
	return strconv.Itoa(r.Year)
}

// add returns the element-wise sum of r and o.
func (r Row) add(o Row) Row {
	if r.Currency != o.Currency {
		r.Currency = ""
	}
	r.Quantity = r.Quantity.Add(o.Quantity)
	r.All = r.All.add(o.All)
	r.Disposals = r.Disposals.add(o.Disposals)
	r.Suspect = r.Suspect || o.Suspect
	r.MissingRates += o.MissingRates
	return r
}

// Aggregate sums the matched share of the amounts of ms, the matches of one
// instrument. With year 0 the whole matched quantity counts, otherwise only
// the quantity allocated to that year.
func Aggregate(ms []Match, year int) Row {
	row := Row{Year: year}
	mixed := false
	for i, m := range ms {
		switch {
		case i == 0:
			row.Instrument, row.Currency = m.Instrument, m.Currency
		case m.Currency != row.Currency:
			mixed = true
		}

		matched := m.Matched
		if year != 0 {
			matched = m.Years[year]
		}
		if !matched.IsPositive() {
			continue
		}
		fraction := matched.Div(m.Quantity.Abs()).Decimal()
		if !m.Converted() {
			row.MissingRates++
		}
		row.All.accumulate(m, fraction)
		if m.IsSell() {
			row.Quantity = row.Quantity.Add(matched)
			row.Disposals.accumulate(m, fraction)
		}
	}
	if mixed {
		row.Currency = ""
	}
	return row
}

// Years returns the realization years present in res, in increasing order.
func Years(res *Result) []int {
	years := make(map[int]bool)
	for _, m := range res.Matches {
		for y, q := range m.Years {
			if q.IsPositive() {
				years[y] = true
			}
		}
	}
	return slices.Sorted(maps.Keys(years))
}

// instrumentYears returns the realization years of one instrument.
func instrumentYears(ms []Match) []int {
	return Years(&Result{Matches: ms})
}

// Summarize aggregates res with the given granularity.
func Summarize(res *Result, by GroupBy) []Row {
	var rows []Row
	switch by {
	case ByInstrument:
		for _, instrument := range res.Instruments() {
			rows = append(rows, instrumentRow(res, instrument, 0))
		}
	case ByInstrumentYear:
		for _, instrument := range res.Instruments() {
			for _, year := range instrumentYears(res.Instrument(instrument)) {
				rows = append(rows, instrumentRow(res, instrument, year))
			}
		}
	case Global:
		for _, year := range Years(res) {
			rows = append(rows, globalRow(res, year))
		}
		rows = append(rows, globalRow(res, 0))
	}
	return rows
}

// Export returns the rows of the exchange table: for each instrument one row
// per year followed by its total, and a grand total.
func Export(res *Result) []Row {
	var rows []Row
	for _, instrument := range res.Instruments() {
		for _, year := range instrumentYears(res.Instrument(instrument)) {
			rows = append(rows, instrumentRow(res, instrument, year))
		}
		rows = append(rows, instrumentRow(res, instrument, 0))
	}
	return append(rows, globalRow(res, 0))
}

// FilterYear keeps the rows of a single year.
func FilterYear(rows []Row, year int) []Row {
	var kept []Row
	for _, r := range rows {
		if r.Year == year {
			kept = append(kept, r)
		}
	}
	return kept
}

func instrumentRow(res *Result, instrument string, year int) Row {
	row := Aggregate(res.Instrument(instrument), year)
	row.Instrument = instrument
	row.Home = res.Home
	row.Suspect = res.Gaps[instrument]
	return row
}

func globalRow(res *Result, year int) Row {
	total := Row{Instrument: AllInstruments, Year: year, Home: res.Home}
	for i, instrument := range res.Instruments() {
		row := instrumentRow(res, instrument, year)
		if i == 0 {
			total.Currency = row.Currency
		}
		total = total.add(row)
	}
	total.Instrument, total.Year = AllInstruments, year
	return total
}
