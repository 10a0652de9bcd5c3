package taxlot

import (
	"testing"
	"time"
)

// day returns noon of the given "2006-01-02" day, in UTC.
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("invalid test day %q: %v", s, err)
	}
	return d.Add(12 * time.Hour)
}

// trade builds a USD transaction with a proceeds and basis proportional to q.
func trade(t *testing.T, id int, instrument, on string, q float64) Transaction {
	t.Helper()
	return Transaction{
		ID:         id,
		Instrument: instrument,
		Currency:   "USD",
		Time:       day(t, on),
		Quantity:   Q(q),
		Proceeds:   M(-q*10, "USD"),
		Commission: M(-1.0, "USD"),
		Basis:      M(q*10, "USD"),
	}
}

// mustProcess runs the engine and fails the test on error.
func mustProcess(t *testing.T, txs []Transaction, rates *RateIndex) *Result {
	t.Helper()
	res, err := Process(txs, rates)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	return res
}

// mustMatch returns the match of transaction id.
func mustMatch(t *testing.T, res *Result, id int) Match {
	t.Helper()
	m, ok := res.Match(id)
	if !ok {
		t.Fatalf("transaction #%d not found in result", id)
	}
	return m
}

// checkYears compares a YearAllocation with the expected quantities.
func checkYears(t *testing.T, name string, got YearAllocation, want map[int]float64) {
	t.Helper()
	for y, q := range got {
		if q.IsZero() {
			continue
		}
		if _, ok := want[y]; !ok {
			t.Errorf("%s: unexpected allocation %s in %d", name, q, y)
		}
	}
	for y, q := range want {
		if !got[y].Equal(Q(q)) {
			t.Errorf("%s: allocation in %d got %s, want %v", name, y, got[y], q)
		}
	}
}
