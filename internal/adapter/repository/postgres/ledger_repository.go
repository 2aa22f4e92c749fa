package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-service/internal/commons"
	"github.com/api-sage/ledger-service/internal/domain"
	"github.com/api-sage/ledger-service/internal/logger"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const debitAccountQuery = `
UPDATE accounts
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2::numeric
RETURNING balance`

const creditAccountQuery = `
UPDATE accounts
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1
RETURNING balance`

const insertTransactionQuery = `
INSERT INTO transactions (account_id, type, amount, counterparty_account_number)
VALUES ($1, $2, $3::numeric, $4)`

func (r *LedgerRepository) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger.Info("ledger repository deposit", logger.Fields{
		"accountId": accountID,
		"amount":    amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return decimal.Zero, fmt.Errorf("begin deposit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var newBalance decimal.Decimal
	newBalance, err = r.creditInTx(ctx, tx, accountID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	if err = r.appendRecord(ctx, tx, accountID, domain.TransactionTypeDeposit, amount, nil); err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit tx failed", err, nil)
		return decimal.Zero, postingError("commit deposit transaction", err)
	}

	logger.Info("ledger repository deposit success", logger.Fields{
		"accountId":  accountID,
		"newBalance": newBalance,
	})
	return newBalance, nil
}

func (r *LedgerRepository) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger.Info("ledger repository withdraw", logger.Fields{
		"accountId": accountID,
		"amount":    amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return decimal.Zero, fmt.Errorf("begin withdraw transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var newBalance decimal.Decimal
	newBalance, err = r.debitInTx(ctx, tx, accountID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	if err = r.appendRecord(ctx, tx, accountID, domain.TransactionTypeWithdraw, amount, nil); err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit tx failed", err, nil)
		return decimal.Zero, postingError("commit withdraw transaction", err)
	}

	logger.Info("ledger repository withdraw success", logger.Fields{
		"accountId":  accountID,
		"newBalance": newBalance,
	})
	return newBalance, nil
}

// Transfer debits the source and credits the destination inside one
// transaction, appending both audit records. Row updates run in ascending
// account id order so concurrent opposing transfers acquire their row locks
// in the same order.
func (r *LedgerRepository) Transfer(ctx context.Context, source domain.Account, destination domain.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	logger.Info("ledger repository transfer", logger.Fields{
		"sourceAccountId":      source.ID,
		"destinationAccountId": destination.ID,
		"amount":               amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return decimal.Zero, fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var newBalance decimal.Decimal
	if source.ID <= destination.ID {
		newBalance, err = r.debitInTx(ctx, tx, source.ID, amount)
		if err != nil {
			return decimal.Zero, err
		}
		if _, err = r.creditInTx(ctx, tx, destination.ID, amount); err != nil {
			return decimal.Zero, err
		}
	} else {
		if _, err = r.creditInTx(ctx, tx, destination.ID, amount); err != nil {
			return decimal.Zero, err
		}
		newBalance, err = r.debitInTx(ctx, tx, source.ID, amount)
		if err != nil {
			return decimal.Zero, err
		}
	}

	if err = r.appendRecord(ctx, tx, source.ID, domain.TransactionTypeTransferTo, amount, &destination.AccountNumber); err != nil {
		return decimal.Zero, err
	}
	if err = r.appendRecord(ctx, tx, destination.ID, domain.TransactionTypeTransferFrom, amount, &source.AccountNumber); err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit tx failed", err, nil)
		return decimal.Zero, postingError("commit transfer transaction", err)
	}

	logger.Info("ledger repository transfer success", logger.Fields{
		"sourceAccountId":      source.ID,
		"destinationAccountId": destination.ID,
		"newBalance":           newBalance,
	})
	return newBalance, nil
}

func (r *LedgerRepository) TransactionsForAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	const query = `
SELECT id, account_id, type, amount, counterparty_account_number, created_at
FROM transactions
WHERE account_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		logger.Error("ledger repository list transactions failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var record domain.Transaction
		var counterparty sql.NullString
		if err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.Type,
			&record.Amount,
			&counterparty,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if counterparty.Valid {
			value := counterparty.String
			record.CounterpartyAccountNumber = &value
		}
		transactions = append(transactions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

func (r *LedgerRepository) debitInTx(ctx context.Context, tx *sql.Tx, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRowContext(ctx, debitAccountQuery, accountID, amount).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, postingError("debit account", err)
	}

	// The conditional update matched nothing: either the account is gone or
	// the balance does not cover the amount.
	var exists bool
	if checkErr := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); checkErr != nil {
		return decimal.Zero, postingError("debit account existence check", checkErr)
	}
	if !exists {
		return decimal.Zero, commons.ErrRecordNotFound
	}
	return decimal.Zero, commons.ErrInsufficientBalance
}

func (r *LedgerRepository) creditInTx(ctx context.Context, tx *sql.Tx, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRowContext(ctx, creditAccountQuery, accountID, amount).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, commons.ErrRecordNotFound
	}
	return decimal.Zero, postingError("credit account", err)
}

func (r *LedgerRepository) appendRecord(ctx context.Context, tx *sql.Tx, accountID string, txType domain.TransactionType, amount decimal.Decimal, counterpartyAccountNumber *string) error {
	if _, err := tx.ExecContext(ctx, insertTransactionQuery, accountID, txType, amount, counterpartyAccountNumber); err != nil {
		return postingError("append transaction record", err)
	}
	return nil
}

func postingError(op string, err error) error {
	if isStorageConflict(err) {
		return fmt.Errorf("%s: %w", op, commons.ErrStorageConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
