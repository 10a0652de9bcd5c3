package taxlot

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const statementHTML = `<html><body>
<div id="tblOpenPositions_U1Body"><table><tr><td>AAPL</td><td>1</td></tr></table></div>
<div id="tblTransactions_U1Body">
<table>
<thead><tr><th>Symbol</th><th>Date/Time</th><th>Quantity</th><th>T. Price</th><th>C. Price</th><th>Proceeds</th><th>Comm/Fee</th><th>Basis</th></tr></thead>
<tbody>
<tr><td colspan="8">Stocks</td></tr>
<tr><td colspan="8">USD</td></tr>
<tr><td>AAPL</td><td>2024-01-02, 10:00:00</td><td>10</td><td>150</td><td>151</td><td>-1,500.00</td><td>-1</td><td>1,501.00</td></tr>
<tr><td>Total AAPL</td><td></td><td></td><td></td><td></td><td>-1,500.00</td><td>-1</td><td>1,501.00</td></tr>
<tr><td>EUR</td></tr>
<tr><td><span>SAP</span></td><td>2024-01-03, 11:00:00</td><td>-5</td><td>140</td><td>139</td><td>700</td><td>-1</td><td>-600</td></tr>
</tbody>
</table>
</div>
</body></html>`

func TestDecodeRecordsHTML(t *testing.T) {
	got, err := DecodeRecordsHTML(strings.NewReader(statementHTML))
	if err != nil {
		t.Fatalf("DecodeRecordsHTML() failed: %v", err)
	}
	want := []RawRecord{
		{Currency: "USD", Symbol: "AAPL", DateTime: "2024-01-02, 10:00:00", Quantity: "10", Proceeds: "-1,500.00", Commission: "-1", Basis: "1,501.00"},
		{Currency: "USD", Symbol: "Total AAPL", Proceeds: "-1,500.00", Commission: "-1", Basis: "1,501.00"},
		{Currency: "EUR", Symbol: "SAP", DateTime: "2024-01-03, 11:00:00", Quantity: "-5", Proceeds: "700", Commission: "-1", Basis: "-600"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeRecordsHTML() mismatch (-want +got):\n%s", diff)
	}

	l := NewLedger(nil)
	ids, err := l.Add(got...)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Add() got %d ids, want 2 (total skipped)", len(ids))
	}
}

func TestDecodeRecordsHTML_NoTradesTable(t *testing.T) {
	for _, doc := range []string{
		`<html><body><p>nothing</p></body></html>`,
		`<div id="tblTransactions_U1Body"><p>empty</p></div>`,
	} {
		if _, err := DecodeRecordsHTML(strings.NewReader(doc)); !errors.Is(err, ErrNoTradesTable) {
			t.Errorf("DecodeRecordsHTML(%q) error got %v, want ErrNoTradesTable", doc, err)
		}
	}
}
