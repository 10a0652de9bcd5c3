package taxlot

import (
	"errors"
	"testing"
	"time"

	"github.com/etnz/taxlot/date"
	"github.com/shopspring/decimal"
)

func mustDay(s string) date.Date { return date.MustParse(s) }

// rate builds a Rates map for a single currency.
func rate(cur, value string) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{cur: decimal.RequireFromString(value)}
}

func TestRateIndex_Rate(t *testing.T) {
	idx, err := NewRateIndex("PLN", []RateRow{
		{Date: mustDay("2024-01-02"), Rates: rate("USD", "3.95")},
		{Date: mustDay("2024-01-05"), Rates: rate("USD", "4.01")},
		{Date: mustDay("2024-01-03"), Rates: rate("EUR", "4.35")},
	})
	if err != nil {
		t.Fatalf("NewRateIndex() failed: %v", err)
	}

	tests := []struct {
		currency string
		on       string
		want     string
		wantDay  string
		wantErr  error
	}{
		{"USD", "2024-01-03", "3.95", "2024-01-02", nil},
		{"USD", "2024-01-05", "3.95", "2024-01-02", nil}, // same day rate is not published yet
		{"USD", "2024-01-06", "4.01", "2024-01-05", nil},
		{"USD", "2024-03-01", "4.01", "2024-01-05", nil},
		{"USD", "2024-01-02", "", "", ErrRateUnavailable},
		{"EUR", "2024-01-04", "4.35", "2024-01-03", nil},
		{"GBP", "2024-01-04", "", "", ErrRateUnavailable},
		{"PLN", "1999-01-01", "1", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.currency+"@"+tt.on, func(t *testing.T) {
			on, _ := time.Parse(time.DateOnly, tt.on)
			got, at, err := idx.Rate(tt.currency, on.Add(15*time.Hour))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Rate() error got %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Rate() got %s, want %s", got, tt.want)
			}
			if at.String() != tt.wantDay {
				t.Errorf("Rate() day got %q, want %q", at, tt.wantDay)
			}
		})
	}
}

func TestNewRateIndex_Invalid(t *testing.T) {
	tests := []struct {
		name string
		home string
		rows []RateRow
	}{
		{"unknown home", "XXXX", nil},
		{"missing date", "PLN", []RateRow{{Rates: rate("USD", "4")}}},
		{"zero rate", "PLN", []RateRow{{Date: mustDay("2024-01-01"), Rates: rate("USD", "0")}}},
		{"negative rate", "PLN", []RateRow{{Date: mustDay("2024-01-01"), Rates: rate("USD", "-1")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRateIndex(tt.home, tt.rows); err == nil {
				t.Error("NewRateIndex() succeeded, want an error")
			}
		})
	}
}

func TestNewRateIndex_DuplicateDayOverwrites(t *testing.T) {
	idx, err := NewRateIndex("PLN", []RateRow{
		{Date: mustDay("2024-01-02"), Rates: rate("USD", "3.95")},
		{Date: mustDay("2024-01-02"), Rates: rate("USD", "3.99")},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := idx.Rate("USD", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(decimal.RequireFromString("3.99")) {
		t.Errorf("Rate() got %s, want 3.99", got)
	}
	if c := idx.Currencies(); len(c) != 1 || c[0] != "USD" {
		t.Errorf("Currencies() got %v, want [USD]", c)
	}
}
