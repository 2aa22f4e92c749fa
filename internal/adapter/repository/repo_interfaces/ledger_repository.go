package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-service/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerRepository posts balance mutations together with their audit records.
// Every method is a single atomic unit: either the balance change(s) and the
// record append(s) all commit, or none of them do.
type LedgerRepository interface {
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, source domain.Account, destination domain.Account, amount decimal.Decimal) (decimal.Decimal, error)
	TransactionsForAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
}
