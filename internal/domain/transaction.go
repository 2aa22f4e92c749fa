package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeWithdraw     TransactionType = "withdraw"
	TransactionTypeTransferTo   TransactionType = "transfer_to"
	TransactionTypeTransferFrom TransactionType = "transfer_from"
)

// Transaction is one side of a balance-affecting operation. Records are
// append-only; nothing in the service updates or deletes them.
type Transaction struct {
	ID                        string
	AccountID                 string
	Type                      TransactionType
	Amount                    decimal.Decimal
	CounterpartyAccountNumber *string
	CreatedAt                 time.Time
}
