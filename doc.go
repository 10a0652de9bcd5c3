// Package taxlot computes realized capital gains of securities trades
// with a FIFO (first in, first out) lot matching.
//
// The core functionalities include:
//   - Ledger: an ordered, append-only record of trades (buys and sells, long
//     and short) identified by a monotonic id.
//   - Rate Index: historical exchange rates to a home currency, looked up as
//     of the day before each trade.
//   - Matching: a stateless engine pairing disposals with the earliest open
//     lots per instrument and allocating matched quantities to the year of
//     the closing trade.
//   - Summaries: proportional aggregation of proceeds, commissions and cost
//     basis, per instrument, per year or globally.
//   - Import and Export: broker trade tables (CSV or JSON), rate tables and
//     summary tables.
//
// This package serves as the foundational logic for the `taxlot` command-line
// tool and its HTTP API.
package taxlot
