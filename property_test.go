package taxlot

import (
	"testing"
	"time"

	"github.com/etnz/taxlot/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// tradeStream draws a random stream of trades over a few instruments and
// years, with fractional quantities and same-instant ties.
func tradeStream(t *rapid.T) []Transaction {
	n := rapid.IntRange(1, 40).Draw(t, "n")
	base := time.Date(2021, 1, 1, 9, 30, 0, 0, time.UTC)
	txs := make([]Transaction, n)
	for i := range txs {
		tenths := rapid.IntRange(1, 500).Draw(t, "tenths")
		if rapid.Bool().Draw(t, "sell") {
			tenths = -tenths
		}
		q := decimal.New(int64(tenths), -1)
		txs[i] = Transaction{
			ID:         i + 1,
			Instrument: rapid.SampledFrom([]string{"AAPL", "MSFT", "TSLA"}).Draw(t, "instrument"),
			Currency:   "USD",
			Time:       base.AddDate(0, 0, rapid.IntRange(0, 1200).Draw(t, "day")),
			Quantity:   Q(q),
			Proceeds:   M(q.Neg().Mul(decimal.NewFromInt(25)), "USD"),
			Commission: M(-1, "USD"),
			Basis:      M(q.Mul(decimal.NewFromInt(25)), "USD"),
		}
	}
	return txs
}

var resultOptions = cmp.Options{
	cmp.AllowUnexported(Result{}),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
	cmp.Comparer(func(a, b error) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Error() == b.Error()
	}),
}

func TestProperty_Idempotence(t *testing.T) {
	rates, err := NewRateIndex("PLN", []RateRow{
		{Date: mustDay("2021-06-01"), Rates: rate("USD", "3.8")},
		{Date: mustDay("2022-06-01"), Rates: rate("USD", "4.4")},
	})
	if err != nil {
		t.Fatal(err)
	}
	rapid.Check(t, func(t *rapid.T) {
		txs := tradeStream(t)
		first, err := Process(txs, rates)
		if err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
		second, err := Process(txs, rates)
		if err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
		if diff := cmp.Diff(first, second, resultOptions); diff != "" {
			t.Fatalf("Process() is not deterministic (-first +second):\n%s", diff)
		}
		if diff := cmp.Diff(Summarize(first, Global), Summarize(second, Global)); diff != "" {
			t.Fatalf("Summarize() is not deterministic (-first +second):\n%s", diff)
		}
	})
}

func TestProperty_Conservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		res, err := Process(tradeStream(t), nil)
		if err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
		for _, instrument := range res.Instruments() {
			var bought, sold, paired, openLong, openShort Quantity
			for _, m := range res.Instrument(instrument) {
				if m.IsBuy() {
					bought = bought.Add(m.Matched)
					openLong = openLong.Add(m.Open())
				} else {
					sold = sold.Add(m.Matched)
					openShort = openShort.Add(m.Open())
				}
			}
			for _, p := range res.Pairs {
				if p.Instrument == instrument {
					paired = paired.Add(p.Quantity)
				}
			}
			if !bought.Close(sold) || !bought.Close(paired) {
				t.Fatalf("%s: matched buys %s, matched sells %s, pairs %s", instrument, bought, sold, paired)
			}
			// Only one side may stay open.
			if openLong.IsPositive() && openShort.IsPositive() {
				t.Fatalf("%s: both sides open, long %s short %s", instrument, openLong, openShort)
			}
			ms := res.Instrument(instrument)
			position := ms[len(ms)-1].Position
			if !openLong.Sub(openShort).Close(position) {
				t.Fatalf("%s: open long %s - open short %s != position %s", instrument, openLong, openShort, position)
			}
		}
	})
}

func TestProperty_MatchBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		res, err := Process(tradeStream(t), nil)
		if err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
		for _, m := range res.Matches {
			abs := m.Quantity.Abs()
			if m.Matched.IsNegative() || m.Matched.GreaterThan(abs) {
				t.Fatalf("#%d: matched %s out of [0, %s]", m.ID, m.Matched, abs)
			}
			if m.FullyMatched != m.Matched.Equal(abs) {
				t.Fatalf("#%d: fully matched %v with matched %s of %s", m.ID, m.FullyMatched, m.Matched, abs)
			}
			if !m.Years.Total().Equal(m.Matched) {
				t.Fatalf("#%d: years sum %s, matched %s", m.ID, m.Years.Total(), m.Matched)
			}
			for _, y := range m.Years.Years() {
				if y < m.Year() {
					t.Fatalf("#%d of %d allocated to earlier year %d", m.ID, m.Year(), y)
				}
			}
		}
	})
}

func TestProperty_FIFOOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		res, err := Process(tradeStream(t), nil)
		if err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
		// position of each transaction in its instrument's chronology.
		rank := make(map[int]int)
		for _, instrument := range res.Instruments() {
			for i, m := range res.Instrument(instrument) {
				rank[m.ID] = i
			}
		}
		last := make(map[string]int) // instrument and side to last opened rank
		for _, p := range res.Pairs {
			open, _ := res.Match(p.Open)
			key := p.Instrument
			if open.IsBuy() {
				key += "/long"
			} else {
				key += "/short"
			}
			if prev, ok := last[key]; ok && rank[p.Open] < prev {
				t.Fatalf("%s: lot #%d matched after a younger lot", key, p.Open)
			}
			last[key] = rank[p.Open]
			if rank[p.Open] >= rank[p.Close] {
				t.Fatalf("pair %d->%d closes before it opens", p.Open, p.Close)
			}
		}
	})
}
