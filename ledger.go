package taxlot

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"slices"
	"sort"
	"sync"
)

// Ledger is the set of trades a report is computed from.
//
// In a Ledger transactions are always in chronological order, transactions
// at the same instant keep their insertion order (ids are increasing).
//
// A Ledger is safe for concurrent use. Any mutation invalidates results
// computed before it; Result.Version tells which state a result reflects.
type Ledger struct {
	mu           sync.RWMutex
	transactions []Transaction
	aliases      map[string]string
	nextID       int
	version      uint64
}

// NewLedger creates an empty ledger. Instruments are canonicalized with aliases
// (legacy ticker to current ticker), nil means no aliases.
func NewLedger(aliases map[string]string) *Ledger {
	if aliases == nil {
		aliases = make(map[string]string)
	}
	return &Ledger{
		transactions: make([]Transaction, 0),
		aliases:      aliases,
		nextID:       1,
	}
}

// RestoreLedger recreates a ledger from previously ingested transactions,
// keeping their ids.
func RestoreLedger(aliases map[string]string, txs []Transaction) (*Ledger, error) {
	l := NewLedger(aliases)
	seen := make(map[int]bool, len(txs))
	for _, tx := range txs {
		if seen[tx.ID] || tx.ID <= 0 {
			return nil, fmt.Errorf("cannot restore transaction %v: invalid or duplicated id", tx)
		}
		seen[tx.ID] = true
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("cannot restore transaction %v: %w", tx, err)
		}
		tx.Instrument = canonical(tx.Instrument, l.aliases)
		l.transactions = append(l.transactions, tx)
		l.nextID = max(l.nextID, tx.ID+1)
	}
	sort.Slice(l.transactions, func(i, j int) bool { return l.transactions[i].ID < l.transactions[j].ID })
	l.stableSort()
	return l, nil
}

// Add parses and appends raw records and returns the ids assigned to the
// accepted ones. Records that are not trades (see RawRecord.Skip) are ignored,
// then invalid records are rejected, the returned error joins a *RecordError
// for each. Valid records without basis are ignored last.
func (l *Ledger) Add(records ...RawRecord) ([]int, error) {
	var errs []error
	txs := make([]Transaction, 0, len(records))
	for i, r := range records {
		if r.Skip() {
			log.Printf("skip record #%d %q: not a trade", i, r.Symbol)
			continue
		}
		tx, err := parseRecord(r, l.aliases)
		if err != nil {
			errs = append(errs, &RecordError{Index: i, Symbol: r.Symbol, Err: err})
			continue
		}
		if !r.HasBasis() {
			log.Printf("skip record #%d %q: no basis", i, r.Symbol)
			continue
		}
		txs = append(txs, tx)
	}
	ids := l.append(txs...)
	return ids, errors.Join(errs...)
}

// Append appends already parsed transactions, ignoring their ID field, and
// returns the assigned ids. Nothing is appended if one is invalid.
func (l *Ledger) Append(txs ...Transaction) ([]int, error) {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return nil, &RecordError{Index: i, Symbol: txs[i].Instrument, Err: err}
		}
	}
	cp := slices.Clone(txs)
	for i := range cp {
		cp[i].Instrument = canonical(cp[i].Instrument, l.aliases)
	}
	return l.append(cp...), nil
}

func (l *Ledger) append(txs ...Transaction) []int {
	if len(txs) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]int, len(txs))
	for i := range txs {
		txs[i].ID = l.nextID
		l.nextID++
		ids[i] = txs[i].ID
		log.Printf("%s: append %v", txs[i].Time.Format("2006-01-02"), txs[i])
	}
	l.transactions = append(l.transactions, txs...)
	l.version++
	// The ledger is not sorted anymore.
	l.stableSort()
	return ids
}

// Remove deletes the transaction with the given id.
func (l *Ledger) Remove(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrTransactionNotFound, id)
	}
	log.Printf("remove %v", l.transactions[i])
	l.transactions = slices.Delete(l.transactions, i, i+1)
	l.version++
	return nil
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id int) (Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
	if i < 0 {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.transactions)
}

// Version returns a counter increased by every mutation.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Snapshot returns a copy of the transactions in chronological order and the
// version it was taken at.
func (l *Ledger) Snapshot() ([]Transaction, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.transactions), l.version
}

// Transactions returns an iterator over a snapshot of the transactions accepted
// by all filters, in chronological order.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	txs, _ := l.Snapshot()
	return func(yield func(int, Transaction) bool) {
	next:
		for i, tx := range txs {
			for _, filter := range filters {
				if !filter(tx) {
					continue next
				}
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// OfInstrument is a Transactions filter keeping the trades of instrument.
func OfInstrument(instrument string) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Instrument == instrument }
}

// Instruments returns the sorted list of instruments in the ledger.
func (l *Ledger) Instruments() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var list []string
	for _, tx := range l.transactions {
		list = append(list, tx.Instrument)
	}
	slices.Sort(list)
	return slices.Compact(list)
}

// Recompute runs the matching engine on a snapshot of the ledger.
func (l *Ledger) Recompute(rates *RateIndex) (*Result, error) {
	txs, version := l.Snapshot()
	res, err := Process(txs, rates)
	if err != nil {
		return nil, err
	}
	res.Version = version
	return res, nil
}

// stableSort sorts the ledger by transaction time. The sort is stable, meaning
// transactions at the same time maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Time.Before(l.transactions[j].Time)
	})
}
