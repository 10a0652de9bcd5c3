package taxlot

import (
	"errors"
	"testing"
)

func TestProcess_PartialSell(t *testing.T) {
	res := mustProcess(t, []Transaction{
		trade(t, 1, "AAPL", "2023-03-01", 100),
		trade(t, 2, "AAPL", "2024-03-02", -60),
	}, nil)

	buy, sell := mustMatch(t, res, 1), mustMatch(t, res, 2)
	if !buy.Matched.Equal(Q(60)) {
		t.Errorf("buy matched got %s, want 60", buy.Matched)
	}
	if buy.FullyMatched {
		t.Error("buy should not be fully matched")
	}
	checkYears(t, "buy", buy.Years, map[int]float64{2024: 60})
	if !buy.Open().Equal(Q(40)) {
		t.Errorf("buy open got %s, want 40", buy.Open())
	}

	if !sell.Matched.Equal(Q(60)) || !sell.FullyMatched {
		t.Errorf("sell got matched %s fully %v, want 60 true", sell.Matched, sell.FullyMatched)
	}
	checkYears(t, "sell", sell.Years, map[int]float64{2024: 60})

	if len(res.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(res.Pairs))
	}
	want := Pair{Instrument: "AAPL", Open: 1, Close: 2, Quantity: Q(60), Year: 2024}
	if got := res.Pairs[0]; got.Open != want.Open || got.Close != want.Close || !got.Quantity.Equal(want.Quantity) || got.Year != want.Year {
		t.Errorf("pair got %+v, want %+v", got, want)
	}
}

func TestProcess_ShortCoveredAcrossYears(t *testing.T) {
	res := mustProcess(t, []Transaction{
		trade(t, 1, "TSLA", "2022-12-30", -50),
		trade(t, 2, "TSLA", "2023-01-03", 30),
		trade(t, 3, "TSLA", "2024-01-04", 30),
	}, nil)

	short := mustMatch(t, res, 1)
	if !short.FullyMatched || !short.Matched.Equal(Q(50)) {
		t.Errorf("short got matched %s fully %v, want 50 true", short.Matched, short.FullyMatched)
	}
	checkYears(t, "short", short.Years, map[int]float64{2023: 30, 2024: 20})

	first, second := mustMatch(t, res, 2), mustMatch(t, res, 3)
	if !first.FullyMatched {
		t.Error("first buy should be fully matched")
	}
	checkYears(t, "first buy", first.Years, map[int]float64{2023: 30})
	if !second.Matched.Equal(Q(20)) || second.FullyMatched {
		t.Errorf("second buy got matched %s fully %v, want 20 false", second.Matched, second.FullyMatched)
	}
	if !second.Position.Equal(Q(10)) {
		t.Errorf("position got %s, want 10", second.Position)
	}
}

func TestProcess_SellWithoutBuys(t *testing.T) {
	res := mustProcess(t, []Transaction{
		trade(t, 1, "NVDA", "2024-01-02", -10),
	}, nil)

	if !res.Gaps["NVDA"] {
		t.Error("NVDA should have an integrity gap")
	}
	var gap *GapWarning
	found := false
	for _, w := range res.Warnings {
		if errors.As(w, &gap) {
			found = true
			if gap.Instrument != "NVDA" || !gap.Position.Equal(Q(-10)) {
				t.Errorf("gap warning got %v, want NVDA at -10", gap)
			}
		}
	}
	if !found {
		t.Errorf("no gap warning in %v", res.Warnings)
	}
	if m := mustMatch(t, res, 1); !m.Matched.IsZero() {
		t.Errorf("lonely sell matched got %s, want 0", m.Matched)
	}
}

func TestProcess_MissingRate(t *testing.T) {
	rates, err := NewRateIndex("PLN", []RateRow{
		{Date: mustDay("2024-01-10"), Rates: rate("USD", "4.00")},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := mustProcess(t, []Transaction{
		trade(t, 1, "MSFT", "2024-01-05", 10),  // before any rate
		trade(t, 2, "MSFT", "2024-01-15", -10), // uses 2024-01-10
	}, rates)

	early := mustMatch(t, res, 1)
	if !errors.Is(early.RateErr, ErrRateUnavailable) {
		t.Errorf("early RateErr got %v, want ErrRateUnavailable", early.RateErr)
	}
	if early.Converted() {
		t.Error("early transaction should not be converted")
	}
	if !early.Matched.Equal(Q(10)) {
		t.Errorf("matching must not depend on rates: matched got %s, want 10", early.Matched)
	}

	late := mustMatch(t, res, 2)
	if late.RateErr != nil {
		t.Fatalf("late RateErr got %v, want nil", late.RateErr)
	}
	if got, want := late.ProceedsConverted, M(400.0, "PLN"); !got.Equal(want) {
		t.Errorf("late proceeds converted got %v, want %v", got, want)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrRateUnavailable) {
		t.Errorf("warnings got %v, want one rate warning", res.Warnings)
	}
}

func TestProcess_SellOpensShortRemainder(t *testing.T) {
	res := mustProcess(t, []Transaction{
		trade(t, 1, "AMD", "2024-02-01", 100),
		trade(t, 2, "AMD", "2024-02-02", -40),
		trade(t, 3, "AMD", "2024-02-03", -70),
	}, nil)

	buy := mustMatch(t, res, 1)
	if !buy.FullyMatched || !buy.Matched.Equal(Q(100)) {
		t.Errorf("buy got matched %s fully %v, want 100 true", buy.Matched, buy.FullyMatched)
	}
	first, second := mustMatch(t, res, 2), mustMatch(t, res, 3)
	if !first.FullyMatched || !first.Matched.Equal(Q(40)) {
		t.Errorf("first sell got matched %s fully %v, want 40 true", first.Matched, first.FullyMatched)
	}
	if second.FullyMatched || !second.Matched.Equal(Q(60)) {
		t.Errorf("second sell got matched %s fully %v, want 60 false", second.Matched, second.FullyMatched)
	}
	if !second.Open().Equal(Q(10)) {
		t.Errorf("short remainder got %s, want 10", second.Open())
	}
	if !res.Gaps["AMD"] {
		t.Error("AMD position goes to -10, a gap is expected")
	}
}

func TestProcess_FIFOOrder(t *testing.T) {
	// Out of order input, and two buys at the same instant: ids break the tie.
	res := mustProcess(t, []Transaction{
		trade(t, 4, "IBM", "2024-05-01", -15),
		trade(t, 2, "IBM", "2024-01-01", 10),
		trade(t, 1, "IBM", "2024-01-01", 10),
	}, nil)

	want := []struct{ open, close int }{{1, 4}, {2, 4}}
	if len(res.Pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(res.Pairs), len(want))
	}
	for i, w := range want {
		if p := res.Pairs[i]; p.Open != w.open || p.Close != w.close {
			t.Errorf("pair #%d got %d->%d, want %d->%d", i, p.Open, p.Close, w.open, w.close)
		}
	}
	if m := mustMatch(t, res, 2); !m.Matched.Equal(Q(5)) {
		t.Errorf("second buy matched got %s, want 5", m.Matched)
	}
}

func TestProcess_InstrumentsAreIndependent(t *testing.T) {
	res := mustProcess(t, []Transaction{
		trade(t, 1, "B", "2024-01-01", 10),
		trade(t, 2, "A", "2024-01-02", -10),
	}, nil)
	if got := res.Instruments(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Instruments() got %v, want [A B]", got)
	}
	if m := mustMatch(t, res, 1); !m.Matched.IsZero() {
		t.Errorf("B buy matched %s by another instrument", m.Matched)
	}
	if len(res.Instrument("C")) != 0 {
		t.Error("unknown instrument should have no matches")
	}
}

func TestProcess_RejectsZeroQuantity(t *testing.T) {
	_, err := Process([]Transaction{trade(t, 1, "X", "2024-01-01", 0)}, nil)
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("Process() got %v, want ErrInvalidTransaction", err)
	}
}

func TestProcess_FractionalResidue(t *testing.T) {
	// 0.1+0.2 sells close a 0.3 buy exactly.
	res := mustProcess(t, []Transaction{
		trade(t, 1, "BTC", "2024-01-01", 0.3),
		trade(t, 2, "BTC", "2024-01-02", -0.1),
		trade(t, 3, "BTC", "2025-01-02", -0.2),
	}, nil)
	buy := mustMatch(t, res, 1)
	if !buy.FullyMatched {
		t.Errorf("buy got matched %s, want fully matched", buy.Matched)
	}
	if !buy.Years.Total().Equal(buy.Matched) {
		t.Errorf("years sum %s, want %s", buy.Years.Total(), buy.Matched)
	}
	if len(res.Gaps) != 0 {
		t.Errorf("unexpected gaps %v", res.Gaps)
	}
}

func TestMatch_MarshalJSON(t *testing.T) {
	res := mustProcess(t, []Transaction{trade(t, 1, "AAPL", "2024-01-01", 1)}, nil)
	data, err := mustMatch(t, res, 1).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":1,"instrument":"AAPL","time":"2024-01-01T12:00:00Z","currency":"USD","quantity":"1","proceeds":"-10","commission":"-1","basis":"10","rateError":"exchange rate unavailable: no rate table","matched":"0","fullyMatched":false,"years":{},"position":"1"}`
	if string(data) != want {
		t.Errorf("MarshalJSON() got\n%s\nwant\n%s", data, want)
	}
}

func TestResult_Only(t *testing.T) {
	res := mustProcess(t, []Transaction{
		trade(t, 1, "A", "2024-01-01", 10),
		trade(t, 2, "B", "2024-01-02", -10),
		trade(t, 3, "A", "2024-01-03", -4),
	}, nil)

	only := res.Only("B")
	if len(only.Matches) != 1 || only.Matches[0].ID != 2 {
		t.Fatalf("Only(B) matches got %v", only.Matches)
	}
	if !only.Gaps["B"] || len(only.Pairs) != 0 {
		t.Errorf("Only(B) got gaps %v pairs %v", only.Gaps, only.Pairs)
	}
	// one missing rate and the gap.
	if len(only.Warnings) != 2 {
		t.Errorf("Only(B) warnings got %v, want 2", only.Warnings)
	}
	if a := res.Only("A"); len(a.Pairs) != 1 || len(a.Instrument("A")) != 2 {
		t.Errorf("Only(A) got %d pairs and %d matches", len(a.Pairs), len(a.Instrument("A")))
	}
	if none := res.Only("C"); len(none.Matches) != 0 || len(none.Instruments()) != 0 {
		t.Errorf("Only(C) got %v", none.Matches)
	}
}
