package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/ledger-service/internal/commons"
	"github.com/api-sage/ledger-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository is an in-memory account store and transaction log. One
// mutex serializes every operation, so each posting is atomic: the balance
// change and its record append happen in the same critical section or not at
// all.
type LedgerRepository struct {
	mu           sync.Mutex
	accounts     map[string]*domain.Account
	byNumber     map[string]string
	transactions map[string][]domain.Transaction
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		accounts:     make(map[string]*domain.Account),
		byNumber:     make(map[string]string),
		transactions: make(map[string][]domain.Transaction),
	}
}

// AddAccount seeds an account and returns a copy of it.
func (r *LedgerRepository) AddAccount(accountNumber string, name string, balance decimal.Decimal) domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: accountNumber,
		Name:          name,
		Balance:       balance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.accounts[account.ID] = account
	r.byNumber[account.AccountNumber] = account.ID

	return *account
}

func (r *LedgerRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return *account, nil
}

func (r *LedgerRepository) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byNumber[accountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return *r.accounts[id], nil
}

func (r *LedgerRepository) Deposit(_ context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return decimal.Zero, commons.ErrRecordNotFound
	}

	account.Balance = account.Balance.Add(amount)
	account.UpdatedAt = time.Now().UTC()
	r.appendRecord(accountID, domain.TransactionTypeDeposit, amount, nil)

	return account.Balance, nil
}

func (r *LedgerRepository) Withdraw(_ context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return decimal.Zero, commons.ErrRecordNotFound
	}
	if account.Balance.LessThan(amount) {
		return decimal.Zero, commons.ErrInsufficientBalance
	}

	account.Balance = account.Balance.Sub(amount)
	account.UpdatedAt = time.Now().UTC()
	r.appendRecord(accountID, domain.TransactionTypeWithdraw, amount, nil)

	return account.Balance, nil
}

func (r *LedgerRepository) Transfer(_ context.Context, source domain.Account, destination domain.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.accounts[source.ID]
	if !ok {
		return decimal.Zero, commons.ErrRecordNotFound
	}
	to, ok := r.accounts[destination.ID]
	if !ok {
		return decimal.Zero, commons.ErrRecordNotFound
	}
	if from.Balance.LessThan(amount) {
		return decimal.Zero, commons.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	from.UpdatedAt = now
	to.UpdatedAt = now

	toNumber := to.AccountNumber
	fromNumber := from.AccountNumber
	r.appendRecord(from.ID, domain.TransactionTypeTransferTo, amount, &toNumber)
	r.appendRecord(to.ID, domain.TransactionTypeTransferFrom, amount, &fromNumber)

	return from.Balance, nil
}

func (r *LedgerRepository) TransactionsForAccount(_ context.Context, accountID string) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.transactions[accountID]
	out := make([]domain.Transaction, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// appendRecord must be called with the mutex held.
func (r *LedgerRepository) appendRecord(accountID string, txType domain.TransactionType, amount decimal.Decimal, counterpartyAccountNumber *string) {
	r.transactions[accountID] = append(r.transactions[accountID], domain.Transaction{
		ID:                        uuid.NewString(),
		AccountID:                 accountID,
		Type:                      txType,
		Amount:                    amount,
		CounterpartyAccountNumber: counterpartyAccountNumber,
		CreatedAt:                 time.Now().UTC(),
	})
}
