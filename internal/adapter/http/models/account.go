package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type TransactionView struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Account *string         `json:"account,omitempty"`
	Date    time.Time       `json:"date"`
}

type TransactionsResponse struct {
	Transactions []TransactionView `json:"transactions"`
}
