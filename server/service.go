package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/etnz/taxlot"
)

// Repository persists ledger mutations. *store.Store implements it.
type Repository interface {
	Save(ctx context.Context, txs ...taxlot.Transaction) error
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
}

// Service owns the ledger served by the API. Results are recomputed lazily,
// once per ledger version.
type Service struct {
	ledger *taxlot.Ledger
	rates  *taxlot.RateIndex
	repo   Repository // nil for an in-memory ledger

	mu     sync.Mutex
	result *taxlot.Result
}

// NewService creates a Service. rates and repo may be nil.
func NewService(ledger *taxlot.Ledger, rates *taxlot.RateIndex, repo Repository) *Service {
	return &Service{ledger: ledger, rates: rates, repo: repo}
}

// Import adds records to the ledger and persists them. Rejected records are
// reported in the joined error, accepted ones are kept anyway.
func (s *Service) Import(ctx context.Context, records []taxlot.RawRecord) ([]int, error) {
	ids, rejected := s.ledger.Add(records...)
	if err := s.persist(ctx, ids); err != nil {
		return nil, err
	}
	return ids, rejected
}

// persist saves the transactions identified by ids, or removes them from the
// ledger if that fails.
func (s *Service) persist(ctx context.Context, ids []int) error {
	if s.repo == nil || len(ids) == 0 {
		return nil
	}
	txs := make([]taxlot.Transaction, 0, len(ids))
	for _, id := range ids {
		if tx, ok := s.ledger.Get(id); ok {
			txs = append(txs, tx)
		}
	}
	if err := s.repo.Save(ctx, txs...); err != nil {
		for _, id := range ids {
			if rerr := s.ledger.Remove(id); rerr != nil {
				log.Printf("cannot roll back transaction %d: %v", id, rerr)
			}
		}
		return fmt.Errorf("cannot persist transactions: %w", err)
	}
	return nil
}

// Remove deletes a transaction from the ledger and the repository.
func (s *Service) Remove(ctx context.Context, id int) error {
	tx, ok := s.ledger.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", taxlot.ErrTransactionNotFound, id)
	}
	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, taxlot.ErrTransactionNotFound) {
			return fmt.Errorf("cannot delete transaction %v: %w", tx, err)
		}
	}
	return s.ledger.Remove(id)
}

// Result returns the matching result of the current ledger.
func (s *Service) Result() (*taxlot.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil && s.result.Version == s.ledger.Version() {
		return s.result, nil
	}
	res, err := s.ledger.Recompute(s.rates)
	if err != nil {
		return nil, err
	}
	s.result = res
	return res, nil
}

// CheckHealth checks that the repository is reachable.
func (s *Service) CheckHealth(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Ping(ctx)
}
