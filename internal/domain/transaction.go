// Package domain holds the core value types of the budget agent.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes money coming in from money going out.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Transaction is one immutable ledger entry. Amount is always positive at
// creation; the kind carries the sign.
type Transaction struct {
	Kind   TransactionKind `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// UserLedger is the full ordered transaction history of one user.
// Insertion order is chronological order; entries are never re-sorted.
type UserLedger struct {
	Transactions []Transaction `json:"transactions"`
}

// WeeklySummary aggregates the trailing seven days of a ledger.
type WeeklySummary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// ErrNoRecentTransactions reports an empty trailing-7-day window. Callers
// must treat it as distinct from a zero-valued summary.
var ErrNoRecentTransactions = errors.New("no transactions in the trailing week")
