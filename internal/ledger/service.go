// Package ledger provides append and weekly aggregation over user transactions.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kobo-labs/budget-agent/internal/domain"
	apperrors "github.com/kobo-labs/budget-agent/internal/errors"
	"github.com/kobo-labs/budget-agent/pkg/metrics"
)

// Store abstracts ledger persistence.
type Store interface {
	Load(ctx context.Context, userID string) (*domain.UserLedger, error)
	Append(ctx context.Context, userID string, tx domain.Transaction) error
}

// ErrInvalidAmount rejects zero or negative amounts before any store access.
var ErrInvalidAmount = errors.New("transaction amount must be positive")

// summaryWindow is the trailing window aggregated by WeeklySummary. The lower
// bound is exclusive.
const summaryWindow = 7 * 24 * time.Hour

// Service implements the transaction ledger operations.
type Service struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// NewService constructs a Service on top of the given store.
func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{store: store, now: time.Now, log: log}
}

// Append records one transaction for the user. The stored amount keeps full
// precision.
func (s *Service) Append(ctx context.Context, userID string, kind domain.TransactionKind, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	tx := domain.Transaction{Kind: kind, Amount: amount, Date: s.now().UTC()}
	if err := s.store.Append(ctx, userID, tx); err != nil {
		s.log.Error("failed to append transaction", "user_id", userID, "kind", kind, "error", err)
		return apperrors.NewStoreError(err)
	}

	metrics.RecordTransaction(string(kind))

	return nil
}

// WeeklySummary sums the user's transactions newer than seven days per kind.
// An empty window yields domain.ErrNoRecentTransactions. The ledger is never
// mutated.
func (s *Service) WeeklySummary(ctx context.Context, userID string) (*domain.WeeklySummary, error) {
	userLedger, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	cutoff := s.now().UTC().Add(-summaryWindow)
	income, expense := decimal.Zero, decimal.Zero
	recent := false

	for _, tx := range userLedger.Transactions {
		if !tx.Date.After(cutoff) {
			continue
		}
		recent = true

		switch tx.Kind {
		case domain.KindIncome:
			income = income.Add(tx.Amount)
		case domain.KindExpense:
			expense = expense.Add(tx.Amount)
		}
	}

	if !recent {
		return nil, domain.ErrNoRecentTransactions
	}

	return &domain.WeeklySummary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}, nil
}
