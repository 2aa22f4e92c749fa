package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/ledger-service/internal/adapter/cache"
	"github.com/api-sage/ledger-service/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-service/internal/commons"
	"github.com/api-sage/ledger-service/internal/domain"
	"github.com/api-sage/ledger-service/internal/logger"
	"github.com/shopspring/decimal"
)

const maxConflictRetries = 3

// LedgerService validates and applies deposit, withdraw and transfer
// operations. Every mutation is delegated to the ledger repository as one
// atomic posting; storage conflicts are retried a bounded number of times
// before surfacing.
type LedgerService struct {
	accountRepo  repo_interfaces.AccountRepository
	ledgerRepo   repo_interfaces.LedgerRepository
	balanceCache *cache.BalanceCache
}

func NewLedgerService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	balanceCache *cache.BalanceCache,
) *LedgerService {
	return &LedgerService{
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		balanceCache: balanceCache,
	}
}

func (s *LedgerService) GetBalance(ctx context.Context, accountID string) (commons.Response[models.BalanceResponse], error) {
	logger.Info("ledger service get balance request", logger.Fields{
		"accountId": accountID,
	})

	if balance, ok := s.balanceCache.Get(ctx, accountID); ok {
		return commons.SuccessResponse("balance retrieved", models.BalanceResponse{Balance: balance}), nil
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.BalanceResponse]("account not found"), err
		}
		logger.Error("ledger service get balance failed", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.BalanceResponse]("failed to retrieve balance", "Unable to retrieve balance right now"), err
	}

	s.balanceCache.Set(ctx, accountID, account.Balance)

	return commons.SuccessResponse("balance retrieved", models.BalanceResponse{Balance: account.Balance}), nil
}

func (s *LedgerService) GetTransactions(ctx context.Context, accountID string) (commons.Response[models.TransactionsResponse], error) {
	logger.Info("ledger service get transactions request", logger.Fields{
		"accountId": accountID,
	})

	records, err := s.ledgerRepo.TransactionsForAccount(ctx, accountID)
	if err != nil {
		logger.Error("ledger service get transactions failed", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.TransactionsResponse]("failed to retrieve transactions", "Unable to retrieve transactions right now"), err
	}

	views := make([]models.TransactionView, 0, len(records))
	for _, record := range records {
		views = append(views, models.TransactionView{
			ID:      record.ID,
			Type:    string(record.Type),
			Amount:  record.Amount,
			Account: record.CounterpartyAccountNumber,
			Date:    record.CreatedAt,
		})
	}

	return commons.SuccessResponse("transactions retrieved", models.TransactionsResponse{Transactions: views}), nil
}

func (s *LedgerService) Deposit(ctx context.Context, accountID string, req models.DepositRequest) (commons.Response[models.DepositResponse], error) {
	logger.Info("ledger service deposit request", logger.Fields{
		"accountId": accountID,
		"payload":   logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.DepositResponse]("invalid amount", err.Error()), commons.ErrInvalidAmount
	}

	newBalance, err := s.postWithRetry(ctx, "deposit", func() (decimal.Decimal, error) {
		return s.ledgerRepo.Deposit(ctx, accountID, req.Amount)
	})
	if err != nil {
		return mutationError[models.DepositResponse](err, "deposit"), err
	}

	s.balanceCache.Set(ctx, accountID, newBalance)

	logger.Info("ledger service deposit success", logger.Fields{
		"accountId":  accountID,
		"newBalance": newBalance,
	})

	return commons.SuccessResponse("deposit successful", models.DepositResponse{
		Type:    string(domain.TransactionTypeDeposit),
		Balance: newBalance,
		Amount:  req.Amount,
	}), nil
}

func (s *LedgerService) Withdraw(ctx context.Context, accountID string, req models.WithdrawRequest) (commons.Response[models.WithdrawResponse], error) {
	logger.Info("ledger service withdraw request", logger.Fields{
		"accountId": accountID,
		"payload":   logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.WithdrawResponse]("invalid amount", err.Error()), commons.ErrInvalidAmount
	}

	newBalance, err := s.postWithRetry(ctx, "withdraw", func() (decimal.Decimal, error) {
		return s.ledgerRepo.Withdraw(ctx, accountID, req.Amount)
	})
	if err != nil {
		return mutationError[models.WithdrawResponse](err, "withdraw"), err
	}

	s.balanceCache.Set(ctx, accountID, newBalance)

	logger.Info("ledger service withdraw success", logger.Fields{
		"accountId":  accountID,
		"newBalance": newBalance,
	})

	return commons.SuccessResponse("withdrawal successful", models.WithdrawResponse{
		Type:    string(domain.TransactionTypeWithdraw),
		Balance: newBalance,
		Amount:  req.Amount,
	}), nil
}

func (s *LedgerService) Transfer(ctx context.Context, accountID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("ledger service transfer request", logger.Fields{
		"accountId": accountID,
		"payload":   logger.SanitizePayload(req),
	})

	destinationNumber := strings.TrimSpace(req.Account)
	if destinationNumber == "" {
		err := errors.New("account is required")
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("invalid amount", err.Error()), commons.ErrInvalidAmount
	}

	source, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("account not found"), err
		}
		logger.Error("ledger service transfer source lookup failed", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	destination, err := s.accountRepo.GetByAccountNumber(ctx, destinationNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("account not found"), err
		}
		logger.Error("ledger service transfer destination lookup failed", err, logger.Fields{
			"destinationAccountNumber": destinationNumber,
		})
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	if destination.ID == source.ID {
		err := fmt.Errorf("source and destination accounts cannot be the same")
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	newBalance, err := s.postWithRetry(ctx, "transfer", func() (decimal.Decimal, error) {
		return s.ledgerRepo.Transfer(ctx, source, destination, req.Amount)
	})
	if err != nil {
		return mutationError[models.TransferResponse](err, "transfer"), err
	}

	s.balanceCache.Set(ctx, source.ID, newBalance)
	s.balanceCache.Invalidate(ctx, destination.ID)

	logger.Info("ledger service transfer success", logger.Fields{
		"sourceAccountId":      source.ID,
		"destinationAccountId": destination.ID,
		"newBalance":           newBalance,
	})

	return commons.SuccessResponse("transfer successful", models.TransferResponse{
		Type:    "transfer",
		Balance: newBalance,
		Amount:  req.Amount,
		From:    source.AccountNumber,
		To: models.TransferCounterparty{
			Name:    destination.Name,
			Account: destination.AccountNumber,
		},
	}), nil
}

func (s *LedgerService) postWithRetry(ctx context.Context, operation string, post func() (decimal.Decimal, error)) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	var err error

	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		newBalance, err = post()
		if err == nil || !errors.Is(err, commons.ErrStorageConflict) {
			return newBalance, err
		}
		logger.Info("ledger service retrying after storage conflict", logger.Fields{
			"operation": operation,
			"attempt":   attempt + 1,
		})
	}

	logger.Error("ledger service storage conflict retries exhausted", err, logger.Fields{
		"operation": operation,
	})
	return decimal.Zero, err
}

func mutationError[T any](err error, operation string) commons.Response[T] {
	switch {
	case errors.Is(err, commons.ErrRecordNotFound):
		return commons.ErrorResponse[T]("account not found")
	case errors.Is(err, commons.ErrInsufficientBalance):
		return commons.ErrorResponse[T]("invalid amount", "amount exceeds available balance")
	case errors.Is(err, commons.ErrStorageConflict):
		return commons.ErrorResponse[T]("operation temporarily unavailable", "Please retry the "+operation)
	default:
		return commons.ErrorResponse[T]("failed to process "+operation, "Unable to process "+operation+" right now")
	}
}
