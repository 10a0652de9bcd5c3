package taxlot

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/etnz/taxlot/date"
	"github.com/shopspring/decimal"
)

// DefaultHomeCurrency is the currency reports are converted into.
const DefaultHomeCurrency = "PLN"

// RateRow is one line of a rate table: the value, in home currency, of one unit
// of each listed currency on a given day.
type RateRow struct {
	Date  date.Date
	Rates map[string]decimal.Decimal
}

// RateIndex resolves the exchange rate applicable to a transaction.
// It is immutable once built.
type RateIndex struct {
	home    string
	history map[string]*date.History[decimal.Decimal]
}

// NewRateIndex builds an index converting into home from rows. Rows for the
// same day and currency overwrite earlier ones.
func NewRateIndex(home string, rows []RateRow) (*RateIndex, error) {
	if err := ValidateCurrency(home); err != nil {
		return nil, fmt.Errorf("invalid home currency: %w", err)
	}
	idx := &RateIndex{
		home:    home,
		history: make(map[string]*date.History[decimal.Decimal]),
	}
	for _, row := range rows {
		if row.Date.IsZero() {
			return nil, fmt.Errorf("%w: row without date", ErrRateTable)
		}
		for cur, rate := range row.Rates {
			if !rate.IsPositive() {
				return nil, fmt.Errorf("%w: non positive %s rate on %v", ErrRateTable, cur, row.Date)
			}
			h, ok := idx.history[cur]
			if !ok {
				h = new(date.History[decimal.Decimal])
				idx.history[cur] = h
			}
			h.Append(row.Date, rate)
		}
	}
	return idx, nil
}

// Home returns the currency rates convert into.
func (idx *RateIndex) Home() string { return idx.home }

// Currencies returns the sorted list of currencies with at least one rate.
func (idx *RateIndex) Currencies() []string {
	return slices.Sorted(maps.Keys(idx.history))
}

// Rate returns the factor converting one unit of currency into the home
// currency for a transaction at 'on', and the day of the rate used.
//
// The rate used is the latest one published strictly before the trade day.
// The home currency always converts at 1 and the returned day is zero.
func (idx *RateIndex) Rate(currency string, on time.Time) (decimal.Decimal, date.Date, error) {
	if currency == idx.home {
		return decimal.NewFromInt(1), date.Date{}, nil
	}
	day := date.Of(on).Add(-1)
	h, ok := idx.history[currency]
	if !ok {
		return decimal.Zero, date.Date{}, fmt.Errorf("%w: no %s rates", ErrRateUnavailable, currency)
	}
	at, rate, ok := h.ValueAsOf(day)
	if !ok {
		return decimal.Zero, date.Date{}, fmt.Errorf("%w: no %s rate on or before %v", ErrRateUnavailable, currency, day)
	}
	return rate, at, nil
}
