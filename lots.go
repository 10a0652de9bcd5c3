package taxlot

// lot is the unmatched remainder of a transaction, still available to offset
// later trades in the opposite direction.
type lot struct {
	index     int // index of the transaction in the instrument matches
	remaining Quantity
}

// lots is a FIFO queue of open lots, the oldest first.
type lots []lot

// push opens a new lot at the back of the queue.
func (l *lots) push(index int, remaining Quantity) {
	*l = append(*l, lot{index: index, remaining: remaining})
}

// consume offsets quantity against the oldest lots first. For each match it
// calls fn with the index of the lot's transaction and the matched quantity.
// Exhausted lots are removed, a partially consumed one stays at the front.
// It returns the quantity left once the queue is empty.
func (l *lots) consume(quantity Quantity, fn func(index int, matched Quantity)) Quantity {
	for !quantity.negligible() && len(*l) > 0 {
		head := &(*l)[0]
		matched := quantity.Min(head.remaining)
		fn(head.index, matched)
		head.remaining = head.remaining.Sub(matched)
		quantity = quantity.Sub(matched)
		if head.remaining.negligible() {
			*l = (*l)[1:]
		}
	}
	return quantity
}
