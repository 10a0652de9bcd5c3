package taxlot

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/etnz/taxlot/date"
	"github.com/shopspring/decimal"
)

// YearAllocation splits a matched quantity by the calendar year of the trades
// that closed it.
type YearAllocation map[int]Quantity

// Total returns the sum of all years.
func (y YearAllocation) Total() Quantity {
	var total Quantity
	for _, q := range y {
		total = total.Add(q)
	}
	return total
}

// Years returns the allocated years in increasing order.
func (y YearAllocation) Years() []int { return slices.Sorted(maps.Keys(y)) }

// Match is a transaction annotated by the matching engine.
type Match struct {
	Transaction

	// Rate converts the transaction currency into the home currency. It was
	// published on RateDate (zero for the home currency itself).
	Rate     decimal.Decimal
	RateDate date.Date
	// RateErr is set when no rate applies, converted amounts are then zero.
	RateErr error

	ProceedsConverted   Money
	CommissionConverted Money
	BasisConverted      Money

	// Matched is the part of |Quantity| paired with opposite trades. It snaps
	// to |Quantity| once within 1e-9 of it, so the matched totals of the two
	// sides of a pair may differ by that tolerance.
	Matched      Quantity
	FullyMatched bool
	// Years apportions Matched by realization year, it sums to Matched.
	Years YearAllocation
	// Position is the instrument running position right after this trade.
	Position Quantity
}

// Converted reports whether the converted amounts are defined.
func (m Match) Converted() bool { return m.RateErr == nil }

// Open returns the quantity of the transaction that is still unmatched.
func (m Match) Open() Quantity { return m.Quantity.Abs().Sub(m.Matched) }

func (m Match) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", m.ID)
	w.Append("instrument", m.Instrument)
	w.Append("time", m.Time.Format(time.RFC3339))
	w.Append("currency", m.Currency)
	w.Append("quantity", m.Quantity)
	w.Append("proceeds", m.Proceeds.Decimal())
	w.Append("commission", m.Commission.Decimal())
	w.Append("basis", m.Basis.Decimal())
	if m.Converted() {
		w.Append("rate", m.Rate)
		w.Optional("rateDate", m.RateDate)
		w.Append("proceedsConverted", m.ProceedsConverted.Decimal())
		w.Append("commissionConverted", m.CommissionConverted.Decimal())
		w.Append("basisConverted", m.BasisConverted.Decimal())
	} else {
		w.Append("rateError", m.RateErr.Error())
	}
	w.Append("matched", m.Matched)
	w.Append("fullyMatched", m.FullyMatched)
	w.Append("years", m.Years)
	w.Append("position", m.Position)
	return w.MarshalJSON()
}

// Pair records that Quantity of the Open transaction was offset by the Close
// transaction, realized in Year.
type Pair struct {
	Instrument string   `json:"instrument"`
	Open       int      `json:"open"`
	Close      int      `json:"close"`
	Quantity   Quantity `json:"quantity"`
	Year       int      `json:"year"`
}

// Result is the outcome of a matching run.
type Result struct {
	// Version of the ledger the result was computed from.
	Version uint64
	// Home is the currency of converted amounts.
	Home string
	// Matches holds one entry per transaction, grouped by instrument in
	// alphabetical order, each group in chronological order.
	Matches []Match
	// Pairs lists every match in the order it was made.
	Pairs []Pair
	// Gaps marks instruments whose running position went negative.
	Gaps map[string]bool
	// Warnings collects rate errors and *GapWarning, processing went on.
	Warnings []error

	groups map[string][2]int // instrument to Matches[from:to]
}

// Instruments returns the instruments of the result in alphabetical order.
func (r *Result) Instruments() []string { return slices.Sorted(maps.Keys(r.groups)) }

// Instrument returns the matches of one instrument, chronologically.
func (r *Result) Instrument(name string) []Match {
	g, ok := r.groups[name]
	if !ok {
		return nil
	}
	return r.Matches[g[0]:g[1]]
}

// Match returns the match state of the transaction with the given id.
func (r *Result) Match(id int) (Match, bool) {
	i := slices.IndexFunc(r.Matches, func(m Match) bool { return m.ID == id })
	if i < 0 {
		return Match{}, false
	}
	return r.Matches[i], true
}

// Only returns the part of r about a single instrument.
func (r *Result) Only(instrument string) *Result {
	ms := slices.Clone(r.Instrument(instrument))
	sub := &Result{
		Version: r.Version,
		Home:    r.Home,
		Matches: ms,
		Gaps:    make(map[string]bool),
		groups:  make(map[string][2]int),
	}
	if len(ms) == 0 {
		return sub
	}
	sub.groups[instrument] = [2]int{0, len(ms)}
	for _, p := range r.Pairs {
		if p.Instrument == instrument {
			sub.Pairs = append(sub.Pairs, p)
		}
	}
	for _, m := range ms {
		if err := rateWarning(m); err != nil {
			sub.Warnings = append(sub.Warnings, err)
		}
	}
	if r.Gaps[instrument] {
		sub.Gaps[instrument] = true
		sub.Warnings = append(sub.Warnings, firstGap(ms))
	}
	return sub
}

// Process runs the FIFO matching engine over txs, converting amounts with
// rates. rates may be nil, then no amount is converted.
//
// Process does not modify txs: the result only depends on its inputs, running
// it twice gives identical results. Transactions are ordered by time, ties by
// id.
func Process(txs []Transaction, rates *RateIndex) (*Result, error) {
	for _, tx := range txs {
		if tx.Quantity.IsZero() {
			return nil, fmt.Errorf("%w: transaction #%d has a zero quantity", ErrInvalidTransaction, tx.ID)
		}
	}

	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		if c := strings.Compare(a.Instrument, b.Instrument); c != 0 {
			return c
		}
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return a.ID - b.ID
	})

	res := &Result{
		Matches: make([]Match, len(sorted)),
		Gaps:    make(map[string]bool),
		groups:  make(map[string][2]int),
	}
	if rates != nil {
		res.Home = rates.Home()
	}
	for i, tx := range sorted {
		res.Matches[i] = annotate(tx, rates, res.Home)
		if err := rateWarning(res.Matches[i]); err != nil {
			res.Warnings = append(res.Warnings, err)
		}
	}

	for from := 0; from < len(sorted); {
		instrument := sorted[from].Instrument
		to := from
		for to < len(sorted) && sorted[to].Instrument == instrument {
			to++
		}
		res.groups[instrument] = [2]int{from, to}
		group := res.Matches[from:to]
		res.Pairs = append(res.Pairs, match(group)...)
		if HasGap(sorted[from:to]) {
			res.Gaps[instrument] = true
			res.Warnings = append(res.Warnings, firstGap(group))
		}
		from = to
	}
	return res, nil
}

// rateWarning returns the warning for a transaction without rate, or nil.
func rateWarning(m Match) error {
	if m.RateErr == nil {
		return nil
	}
	return fmt.Errorf("transaction #%d %s: %w", m.ID, m.Instrument, m.RateErr)
}

// annotate creates the initial match state of tx, with converted amounts.
func annotate(tx Transaction, rates *RateIndex, home string) Match {
	m := Match{Transaction: tx, Years: make(YearAllocation)}
	if rates == nil {
		m.RateErr = fmt.Errorf("%w: no rate table", ErrRateUnavailable)
		return m
	}
	m.Rate, m.RateDate, m.RateErr = rates.Rate(tx.Currency, tx.Time)
	if m.RateErr != nil {
		return m
	}
	m.ProceedsConverted = tx.Proceeds.Convert(m.Rate, home)
	m.CommissionConverted = tx.Commission.Convert(m.Rate, home)
	m.BasisConverted = tx.Basis.Convert(m.Rate, home)
	return m
}

// match pairs the chronologically sorted transactions of a single instrument.
//
// Buys first close open shorts then open a long lot with the remainder, sells
// first close open longs then open a short lot. The year of the closing trade
// owns the matched quantity on both legs.
func match(group []Match) []Pair {
	var (
		longs, shorts lots
		position      Quantity
		pairs         []Pair
	)
	for i := range group {
		tx := &group[i]
		position = position.Add(tx.Quantity)
		tx.Position = position

		against, opens := &longs, &shorts
		if tx.IsBuy() {
			against, opens = &shorts, &longs
		}
		year := tx.Year()
		left := against.consume(tx.Quantity.Abs(), func(j int, matched Quantity) {
			allocate(&group[j], matched, year)
			allocate(tx, matched, year)
			pairs = append(pairs, Pair{
				Instrument: tx.Instrument,
				Open:       group[j].ID,
				Close:      tx.ID,
				Quantity:   matched,
				Year:       year,
			})
		})
		if !left.negligible() {
			opens.push(i, left)
		}
	}
	return pairs
}

// allocate adds quantity matched in year to m.
func allocate(m *Match, quantity Quantity, year int) {
	m.Matched = m.Matched.Add(quantity)
	m.Years[year] = m.Years[year].Add(quantity)
	if abs := m.Quantity.Abs(); m.Matched.Close(abs) {
		// absorb rounding residue so that the lot is exactly consumed.
		m.Years[year] = m.Years[year].Add(abs.Sub(m.Matched))
		m.Matched = abs
		m.FullyMatched = true
	}
}
