package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r DepositRequest) Validate() error {
	return joinErrors(validateAmount(r.Amount))
}

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r WithdrawRequest) Validate() error {
	return joinErrors(validateAmount(r.Amount))
}

type TransferRequest struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// Destination account presence is checked by the service, where the failure
// is reported as a validation error rather than an amount one.
func (r TransferRequest) Validate() error {
	return joinErrors(validateAmount(r.Amount))
}

type DepositResponse struct {
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Amount  decimal.Decimal `json:"amount"`
}

type WithdrawResponse struct {
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Amount  decimal.Decimal `json:"amount"`
}

type TransferCounterparty struct {
	Name    string `json:"name"`
	Account string `json:"account"`
}

type TransferResponse struct {
	Type    string               `json:"type"`
	Balance decimal.Decimal      `json:"balance"`
	Amount  decimal.Decimal      `json:"amount"`
	From    string               `json:"from"`
	To      TransferCounterparty `json:"to"`
}

// Amounts are positive values with at most two decimal places; anything finer
// is rejected rather than silently rounded.
func validateAmount(amount decimal.Decimal) []string {
	var errs []string
	if amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if !amount.Equal(amount.Truncate(2)) {
		errs = append(errs, "amount must have at most two decimal places")
	}
	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
