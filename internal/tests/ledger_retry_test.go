package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/ledger-service/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-service/internal/commons"
	"github.com/api-sage/ledger-service/internal/domain"
	"github.com/api-sage/ledger-service/internal/usecase/services"
	"github.com/shopspring/decimal"
)

// conflictingLedgerRepository fails the first N postings with a storage
// conflict, then applies them to a plain running balance.
type conflictingLedgerRepository struct {
	conflicts int
	calls     int
	balance   decimal.Decimal
}

func (r *conflictingLedgerRepository) post(amount decimal.Decimal) (decimal.Decimal, error) {
	r.calls++
	if r.conflicts > 0 {
		r.conflicts--
		return decimal.Zero, commons.ErrStorageConflict
	}
	r.balance = r.balance.Add(amount)
	return r.balance, nil
}

func (r *conflictingLedgerRepository) Deposit(_ context.Context, _ string, amount decimal.Decimal) (decimal.Decimal, error) {
	return r.post(amount)
}

func (r *conflictingLedgerRepository) Withdraw(_ context.Context, _ string, amount decimal.Decimal) (decimal.Decimal, error) {
	return r.post(amount.Neg())
}

func (r *conflictingLedgerRepository) Transfer(_ context.Context, _ domain.Account, _ domain.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	return r.post(amount.Neg())
}

func (r *conflictingLedgerRepository) TransactionsForAccount(_ context.Context, _ string) ([]domain.Transaction, error) {
	return nil, nil
}

func TestDepositRetriesTransientStorageConflicts(t *testing.T) {
	repo := &conflictingLedgerRepository{conflicts: 2, balance: amount(t, "100.00")}
	svc := services.NewLedgerService(memory.NewLedgerRepository(), repo, nil)

	response, err := svc.Deposit(context.Background(), "acct-1", models.DepositRequest{Amount: amount(t, "50.00")})
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if !response.Data.Balance.Equal(amount(t, "150.00")) {
		t.Fatalf("expected balance 150.00, got %s", response.Data.Balance)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 posting attempts, got %d", repo.calls)
	}
}

func TestDepositSurfacesExhaustedStorageConflicts(t *testing.T) {
	repo := &conflictingLedgerRepository{conflicts: 100}
	svc := services.NewLedgerService(memory.NewLedgerRepository(), repo, nil)

	response, err := svc.Deposit(context.Background(), "acct-1", models.DepositRequest{Amount: amount(t, "50.00")})
	if !errors.Is(err, commons.ErrStorageConflict) {
		t.Fatalf("expected ErrStorageConflict, got %v", err)
	}
	if response.Message != "operation temporarily unavailable" {
		t.Fatalf("expected message %q, got %q", "operation temporarily unavailable", response.Message)
	}
	if repo.calls != 4 {
		t.Fatalf("expected posting attempts to stop after 4, got %d", repo.calls)
	}
}
