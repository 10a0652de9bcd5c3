package taxlot

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoTradesTable is returned by DecodeRecordsHTML for a document without
// trades section.
var ErrNoTradesTable = errors.New("trades table not found")

// statementSection matches the id of the trades section of a broker activity
// statement.
var statementSection = regexp.MustCompile(`^tblTransactions_.*Body$`)

// DecodeRecordsHTML reads raw trade records from a broker activity statement.
//
// Trades are the rows of the first table inside the div whose id matches
// "tblTransactions_*Body". A row with a single cell holding a currency code
// sets the currency of the following rows. Rows with at least 8 cells are
// records: symbol, date/time, quantity, two ignored prices, proceeds,
// commission and basis. Other rows are ignored.
func DecodeRecordsHTML(r io.Reader) ([]RawRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse statement: %w", err)
	}
	section := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && statementSection.MatchString(attr(n, "id"))
	})
	if section == nil {
		return nil, fmt.Errorf("%w: no tblTransactions section", ErrNoTradesTable)
	}
	table := find(section, func(n *html.Node) bool { return n.DataAtom == atom.Table })
	if table == nil {
		return nil, fmt.Errorf("%w: no table in the transactions section", ErrNoTradesTable)
	}

	var (
		records  []RawRecord
		currency string
	)
	each(table, atom.Tr, func(tr *html.Node) {
		var cells []string
		each(tr, atom.Td, func(td *html.Node) { cells = append(cells, textOf(td)) })
		switch {
		case len(cells) == 1:
			if code := cells[0]; len(code) == 3 && ValidateCurrency(code) == nil {
				currency = code
			}
		case len(cells) >= 8:
			records = append(records, RawRecord{
				Currency:   currency,
				Symbol:     cells[0],
				DateTime:   cells[1],
				Quantity:   cells[2],
				Proceeds:   cells[5],
				Commission: cells[6],
				Basis:      cells[7],
			})
		}
	})
	return records, nil
}

// find returns the first node under n, n included, accepted by match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// each calls fn on every element a under n in document order, without
// descending into them.
func each(n *html.Node, a atom.Atom, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			fn(c)
			continue
		}
		each(c, a, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf returns the trimmed text content of n.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
