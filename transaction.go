package taxlot

import (
	"fmt"
	"strings"
	"time"
)

// timeLayouts are the accepted trade date-time formats, tried in order.
var timeLayouts = []string{
	"2006-01-02, 15:04:05", // broker activity statements
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses a raw trade date-time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q", s)
}

// RawRecord is a trade as extracted from a broker document, all fields still
// in their textual form.
type RawRecord struct {
	Currency   string `json:"currency"`
	Symbol     string `json:"symbol"`
	DateTime   string `json:"dateTime"`
	Quantity   string `json:"quantity"`
	Proceeds   string `json:"proceeds"`
	Commission string `json:"commission"`
	Basis      string `json:"basis"`
}

// Skip reports whether r is not a trade line at all: a subtotal line, or a
// line with neither quantity nor basis.
func (r RawRecord) Skip() bool {
	if strings.TrimSpace(r.Quantity) != "" {
		return false
	}
	return strings.Contains(strings.ToLower(r.Symbol), "total") || !r.HasBasis()
}

// HasBasis reports whether r carries a cost basis. Statements leave it empty
// on lines that are not executions, those are valid but not imported.
func (r RawRecord) HasBasis() bool { return strings.TrimSpace(r.Basis) != "" }

// Transaction is a single trade of an instrument.
//
// Quantity is positive for an acquisition and negative for a disposal.
type Transaction struct {
	ID         int
	Instrument string
	Currency   string
	Time       time.Time
	Quantity   Quantity
	Proceeds   Money
	Commission Money
	Basis      Money
}

// IsBuy reports whether tx is an acquisition.
func (tx Transaction) IsBuy() bool { return tx.Quantity.IsPositive() }

// IsSell reports whether tx is a disposal.
func (tx Transaction) IsSell() bool { return tx.Quantity.IsNegative() }

// Year returns the calendar year of the trade.
func (tx Transaction) Year() int { return tx.Time.Year() }

// Validate checks the invariants of a single transaction.
func (tx Transaction) Validate() error {
	if tx.Instrument == "" {
		return fmt.Errorf("%w: empty instrument", ErrInvalidTransaction)
	}
	if tx.Time.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if tx.Quantity.IsZero() {
		return fmt.Errorf("%w: zero quantity", ErrInvalidTransaction)
	}
	if err := ValidateCurrency(tx.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}

func (tx Transaction) String() string {
	return fmt.Sprintf("#%d %s %s %s %s", tx.ID, tx.Time.Format(time.DateOnly), tx.Instrument, tx.Quantity, tx.Currency)
}

// parseRecord converts a raw record into a Transaction without id.
// instrument names are resolved through aliases.
func parseRecord(r RawRecord, aliases map[string]string) (Transaction, error) {
	var tx Transaction
	tx.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	tx.Instrument = canonical(r.Symbol, aliases)

	var err error
	if tx.Time, err = ParseTime(r.DateTime); err != nil {
		return tx, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if strings.TrimSpace(r.Quantity) == "" {
		return tx, fmt.Errorf("%w: missing quantity", ErrInvalidTransaction)
	}
	if tx.Quantity, err = ParseQuantity(r.Quantity); err != nil {
		return tx, fmt.Errorf("%w: quantity: %v", ErrInvalidTransaction, err)
	}
	if tx.Proceeds, err = ParseMoney(r.Proceeds, tx.Currency); err != nil {
		return tx, fmt.Errorf("%w: proceeds: %v", ErrInvalidTransaction, err)
	}
	if tx.Commission, err = ParseMoney(r.Commission, tx.Currency); err != nil {
		return tx, fmt.Errorf("%w: commission: %v", ErrInvalidTransaction, err)
	}
	if tx.Basis, err = ParseMoney(r.Basis, tx.Currency); err != nil {
		return tx, fmt.Errorf("%w: basis: %v", ErrInvalidTransaction, err)
	}
	return tx, tx.Validate()
}

// canonical returns the current ticker of symbol.
func canonical(symbol string, aliases map[string]string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	// follow chains of renames, bounded to avoid cycles.
	for range len(aliases) {
		next, ok := aliases[s]
		if !ok || next == s {
			break
		}
		s = next
	}
	return s
}

// DefaultAliases maps legacy tickers to their current symbol.
var DefaultAliases = map[string]string{
	"FB":   "META",
	"ANTM": "ELV",
	"SQ":   "XYZ",
}

// ParseAliases parses a comma separated list of OLD=NEW pairs.
func ParseAliases(s string) (map[string]string, error) {
	aliases := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, "=")
		from, to = strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid alias %q want OLD=NEW", pair)
		}
		aliases[from] = to
	}
	return aliases, nil
}
