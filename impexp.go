package taxlot

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/taxlot/date"
	"github.com/shopspring/decimal"
)

// this file contains functions to handle the import/export formats:
// raw trade records, rate tables and summary tables.

// recordField maps a normalized column name to its RawRecord field.
var recordField = map[string]func(*RawRecord) *string{
	"currency":   func(r *RawRecord) *string { return &r.Currency },
	"symbol":     func(r *RawRecord) *string { return &r.Symbol },
	"datetime":   func(r *RawRecord) *string { return &r.DateTime },
	"quantity":   func(r *RawRecord) *string { return &r.Quantity },
	"proceeds":   func(r *RawRecord) *string { return &r.Proceeds },
	"commission": func(r *RawRecord) *string { return &r.Commission },
	"basis":      func(r *RawRecord) *string { return &r.Basis },
}

// legacyColumns are alternative column names found in broker statements.
var legacyColumns = map[string]string{
	"waluty":  "currency",
	"stock":   "symbol",
	"date":    "datetime",
	"commfee": "commission",
	"fee":     "commission",
}

// requiredFields are the columns every trade table must have.
var requiredFields = []string{"currency", "symbol", "datetime", "quantity", "basis"}

// normalize lowercases a column name, strips everything but letters and digits
// and resolves legacy names.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if c, ok := legacyColumns[b.String()]; ok {
		return c
	}
	return b.String()
}

// DecodeRecordsCSV reads raw trade records from a CSV table with a header line.
//
// Recognized columns are Currency, Symbol (or Stock), Date/Time, Quantity,
// Proceeds, Comm/Fee (or Commission) and Basis, in any order. Other columns
// are ignored.
func DecodeRecordsCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read trades header: %w", err)
	}
	columns := make(map[int]func(*RawRecord) *string)
	found := make(map[string]bool)
	for i, h := range header {
		name := normalize(h)
		if field, ok := recordField[name]; ok {
			columns[i] = field
			found[name] = true
		}
	}
	for _, name := range requiredFields {
		if !found[name] {
			return nil, fmt.Errorf("trades table: missing column %q", name)
		}
	}

	var records []RawRecord
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trades table line %d: %w", line, err)
		}
		var rec RawRecord
		for i, cell := range cells {
			if field, ok := columns[i]; ok {
				*field(&rec) = strings.TrimSpace(cell)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// DefaultRecordsPath selects every element of a top level JSON array.
const DefaultRecordsPath = "$[*]"

// DecodeRecordsJSON reads raw trade records from a JSON document. path is a
// jsonpath expression selecting the record objects, see DefaultRecordsPath.
// Record properties use the same names as DecodeRecordsCSV columns, values may
// be strings or numbers.
func DecodeRecordsJSON(r io.Reader, path string) ([]RawRecord, error) {
	if path == "" {
		path = DefaultRecordsPath
	}
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse trades document: %w", err)
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select %q in trades document: %w", path, err)
	}
	// jsonpath returns a single object for non wildcard paths.
	items, ok := selected.([]any)
	if !ok {
		items = []any{selected}
	}

	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("trades document: item #%d is not an object", i)
		}
		var rec RawRecord
		for key, value := range obj {
			field, ok := recordField[normalize(key)]
			if !ok {
				continue
			}
			switch v := value.(type) {
			case string:
				*field(&rec) = strings.TrimSpace(v)
			case json.Number:
				*field(&rec) = v.String()
			case nil:
			default:
				return nil, fmt.Errorf("trades document: item #%d property %q has unsupported value %v", i, key, v)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// rateColumn is the header of the day column of a rate table.
const rateColumn = "data"

// DecodeRates reads a rate table.
//
// The table is a CSV (',' or ';' separated) with a day column "data" in the
// YYYYMMDD format and one column per currency named "<units> <code>", e.g.
// "1 USD" or "100 JPY", holding the home currency value of <units> units.
// Decimal commas are accepted. Unparseable cells are skipped.
//
// A table without day column or currency column fails with ErrRateTable.
func DecodeRates(r io.Reader) ([]RateRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read rate table: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(content))
	first, _, _ := bytes.Cut(content, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header: %v", ErrRateTable, err)
	}
	dayIndex := -1
	type column struct {
		currency string
		units    decimal.Decimal
	}
	columns := make(map[int]column)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, rateColumn) {
			dayIndex = i
			continue
		}
		fields := strings.Fields(h)
		if len(fields) != 2 {
			continue
		}
		units, err := decimal.NewFromString(fields[0])
		if err != nil || !units.IsPositive() {
			continue
		}
		code := strings.ToUpper(fields[1])
		if ValidateCurrency(code) != nil {
			continue
		}
		columns[i] = column{currency: code, units: units}
	}
	if dayIndex < 0 {
		return nil, fmt.Errorf("%w: missing %q column", ErrRateTable, rateColumn)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no currency column", ErrRateTable)
	}

	var rows []RateRow
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrRateTable, line, err)
		}
		if dayIndex >= len(cells) || strings.TrimSpace(cells[dayIndex]) == "" {
			continue
		}
		day, err := date.ParseCompact(strings.TrimSpace(cells[dayIndex]))
		if err != nil {
			// NBP archives end with footer lines.
			log.Printf("rate table line %d: skipped: %v", line, err)
			continue
		}
		row := RateRow{Date: day, Rates: make(map[string]decimal.Decimal)}
		for i, col := range columns {
			if i >= len(cells) {
				continue
			}
			rate, err := parseRate(cells[i])
			if err != nil {
				log.Printf("rate table line %d: %s skipped: %v", line, col.currency, err)
				continue
			}
			row.Rates[col.currency] = rate.Div(col.units)
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b RateRow) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	return rows, nil
}

// parseRate parses a rate cell, accepting a decimal comma.
func parseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid rate %q", s)
	}
	return d, nil
}

// exportHeader is the header line written by EncodeRowsCSV.
var exportHeader = []string{
	"Instrument", "Year", "Currency", "Quantity",
	"Proceeds", "Proceeds converted", "Comm/Fee", "Comm/Fee converted", "Basis", "Basis converted",
	"Disposal proceeds", "Disposal proceeds converted", "Disposal comm/fee", "Disposal comm/fee converted",
	"Disposal basis", "Disposal basis converted",
	"Suspect", "Missing rates",
}

// EncodeRowsCSV writes summary rows as a CSV table.
func EncodeRowsCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("cannot write export header: %w", err)
	}
	amounts := func(a Amounts) []string {
		return []string{
			a.Proceeds.StringFixed(2), a.ProceedsConverted.StringFixed(2),
			a.Commission.StringFixed(2), a.CommissionConverted.StringFixed(2),
			a.Basis.StringFixed(2), a.BasisConverted.StringFixed(2),
		}
	}
	for _, r := range rows {
		record := []string{r.Instrument, r.YearLabel(), r.Currency, r.Quantity.String()}
		record = append(record, amounts(r.All)...)
		record = append(record, amounts(r.Disposals)...)
		record = append(record, strconv.FormatBool(r.Suspect), strconv.Itoa(r.MissingRates))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write export row %s %s: %w", r.Instrument, r.YearLabel(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeMatchesJSONL writes one JSON object per matched transaction.
func EncodeMatchesJSONL(w io.Writer, res *Result) error {
	for _, m := range res.Matches {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("cannot marshal transaction #%d: %w", m.ID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write transactions: %w", err)
		}
	}
	return nil
}
