package taxlot

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTransaction indicates a record with a zero or malformed quantity,
	// an unparseable date or an unknown currency. Such records never enter a Ledger.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrRateUnavailable indicates that no exchange rate exists on or before the
	// day preceding a transaction.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrTransactionNotFound indicates that no transaction has the given id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrRateTable indicates a structurally invalid rate table. It is fatal for a
	// whole recomputation.
	ErrRateTable = errors.New("invalid rate table")
)

// RecordError reports a raw record rejected at ingestion.
type RecordError struct {
	Index  int // position of the record in the ingested batch
	Symbol string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record #%d (%s): %v", e.Index, e.Symbol, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// GapWarning is an advisory raised when the running position of an instrument
// goes negative: disposals were recorded without enough prior acquisitions.
type GapWarning struct {
	Instrument string
	At         time.Time
	Position   Quantity
}

func (w *GapWarning) Error() string {
	return fmt.Sprintf("%s: running position %s on %s", w.Instrument, w.Position, w.At.Format(time.DateOnly))
}
