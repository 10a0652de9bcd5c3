package taxlot

import (
	"slices"
)

// HasGap reports whether the running position of txs, an instrument's
// transactions, is ever negative. Transactions are walked by time, ties in
// the given order.
//
// A gap means disposals without enough prior acquisitions in the data set: a
// missing import or a genuine short position. It is a hint for review only.
func HasGap(txs []Transaction) bool {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Time.Compare(b.Time) })
	var position Quantity
	for _, tx := range sorted {
		position = position.Add(tx.Quantity)
		if position.IsNegative() {
			return true
		}
	}
	return false
}

// firstGap returns the warning for the first negative running position in
// group, or nil.
func firstGap(group []Match) error {
	for _, m := range group {
		if m.Position.IsNegative() {
			return &GapWarning{Instrument: m.Instrument, At: m.Time, Position: m.Position}
		}
	}
	return nil
}
