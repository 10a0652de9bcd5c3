// Package store persists ledger transactions in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/etnz/taxlot"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store provides data access methods for the trade table.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path, ":memory:" for a transient one, and
// migrates its schema to the latest version.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// each connection would get its own database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// migrate applies pending migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Printf("database schema at version %d", version)
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Save inserts transactions, which must have an id. Either all are saved or
// none.
func (s *Store) Save(ctx context.Context, txs ...taxlot.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO trade (id, instrument, currency, time, quantity, proceeds, commission, basis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if tx.ID <= 0 {
			return fmt.Errorf("cannot save transaction %v without id", tx)
		}
		_, err := stmt.ExecContext(ctx,
			tx.ID,
			tx.Instrument,
			tx.Currency,
			tx.Time.Format(time.RFC3339Nano),
			tx.Quantity.String(),
			tx.Proceeds.Decimal().String(),
			tx.Commission.Decimal().String(),
			tx.Basis.Decimal().String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %v: %w", tx, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the transaction with the given id.
func (s *Store) Delete(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trade WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", taxlot.ErrTransactionNotFound, id)
	}
	return nil
}

// Load returns all transactions in id order.
func (s *Store) Load(ctx context.Context) ([]taxlot.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, instrument, currency, time, quantity, proceeds, commission, basis
		FROM trade
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	var txs []taxlot.Transaction
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.instrument, &r.currency, &r.time, &r.quantity, &r.proceeds, &r.commission, &r.basis); err != nil {
			return nil, fmt.Errorf("failed to scan trade table results: %w", err)
		}
		tx, err := r.transaction()
		if err != nil {
			return nil, fmt.Errorf("invalid transaction %d in database: %w", r.id, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade table: %w", err)
	}
	return txs, nil
}

// row is the textual form of a stored transaction.
type row struct {
	id                                    int
	instrument, currency, time            string
	quantity, proceeds, commission, basis string
}

func (r row) transaction() (taxlot.Transaction, error) {
	tx := taxlot.Transaction{ID: r.id, Instrument: r.instrument, Currency: r.currency}
	var errs []error
	var err error
	tx.Time, err = time.Parse(time.RFC3339Nano, r.time)
	errs = append(errs, err)
	tx.Quantity, err = taxlot.ParseQuantity(r.quantity)
	errs = append(errs, err)
	tx.Proceeds, err = taxlot.ParseMoney(r.proceeds, r.currency)
	errs = append(errs, err)
	tx.Commission, err = taxlot.ParseMoney(r.commission, r.currency)
	errs = append(errs, err)
	tx.Basis, err = taxlot.ParseMoney(r.basis, r.currency)
	errs = append(errs, err)
	return tx, errors.Join(errs...)
}
