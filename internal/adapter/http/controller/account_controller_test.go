package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/ledger-service/internal/adapter/http/controller"
	"github.com/api-sage/ledger-service/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-service/internal/adapter/http/models"
	"github.com/api-sage/ledger-service/internal/adapter/http/router"
	"github.com/api-sage/ledger-service/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-service/internal/commons"
	"github.com/api-sage/ledger-service/internal/logger"
	"github.com/api-sage/ledger-service/internal/usecase/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *memory.LedgerRepository) {
	t.Helper()
	repo := memory.NewLedgerRepository()
	svc := services.NewLedgerService(repo, repo, nil)
	mux := router.New(controller.NewAccountController(svc), middleware.BearerAuth(testSecret))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, repo
}

func bearerToken(t *testing.T, accountID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func doRequest(t *testing.T, server *httptest.Server, method, path, auth, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestBalanceEndpoint(t *testing.T) {
	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("100.00"))

	resp := doRequest(t, server, http.MethodGet, "/accounts/balance", bearerToken(t, account.ID), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var payload commons.Response[models.BalanceResponse]
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success || payload.Data == nil {
		t.Fatalf("expected success payload, got %+v", payload)
	}
	if !payload.Data.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected balance 100.00, got %s", payload.Data.Balance)
	}
}

func TestBalanceEndpointRejectsMissingToken(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, server, http.MethodGet, "/accounts/balance", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.StatusCode)
	}
}

func TestDepositEndpoint(t *testing.T) {
	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("100.00"))

	resp := doRequest(t, server, http.MethodPost, "/accounts/deposit", bearerToken(t, account.ID), `{"amount":"50.00"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var payload commons.Response[models.DepositResponse]
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data == nil || payload.Data.Type != "deposit" {
		t.Fatalf("expected deposit payload, got %+v", payload)
	}
	if !payload.Data.Balance.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected balance 150.00, got %s", payload.Data.Balance)
	}
}

func TestWithdrawEndpointInsufficientBalance(t *testing.T) {
	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("10.00"))

	resp := doRequest(t, server, http.MethodPost, "/accounts/withdraw", bearerToken(t, account.ID), `{"amount":"60.00"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.StatusCode)
	}

	var payload commons.Response[models.WithdrawResponse]
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Success || payload.Message != "invalid amount" {
		t.Fatalf("expected invalid amount error payload, got %+v", payload)
	}
}

func TestTransferEndpointUnknownDestination(t *testing.T) {
	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("150.00"))

	resp := doRequest(t, server, http.MethodPost, "/accounts/transfer", bearerToken(t, account.ID), `{"account":"999","amount":"75.00"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}

	current, _ := repo.GetByID(t.Context(), account.ID)
	if !current.Balance.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected balance unchanged at 150.00, got %s", current.Balance)
	}
}

func TestTransferEndpoint(t *testing.T) {
	server, repo := newTestServer(t)
	source := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("150.00"))
	destination := repo.AddAccount("0000000002", "Grace", decimal.RequireFromString("0.00"))

	resp := doRequest(t, server, http.MethodPost, "/accounts/transfer", bearerToken(t, source.ID), `{"account":"0000000002","amount":"75.00"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var payload commons.Response[models.TransferResponse]
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data == nil || payload.Data.Type != "transfer" {
		t.Fatalf("expected transfer payload, got %+v", payload)
	}
	if payload.Data.From != source.AccountNumber {
		t.Fatalf("expected from %q, got %q", source.AccountNumber, payload.Data.From)
	}
	if payload.Data.To.Account != destination.AccountNumber || payload.Data.To.Name != "Grace" {
		t.Fatalf("unexpected counterparty: %+v", payload.Data.To)
	}

	updated, _ := repo.GetByID(t.Context(), destination.ID)
	if !updated.Balance.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("expected destination balance 75.00, got %s", updated.Balance)
	}
}

func TestTransferEndpointMissingAccount(t *testing.T) {
	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("100.00"))

	resp := doRequest(t, server, http.MethodPost, "/accounts/transfer", bearerToken(t, account.ID), `{"account":"   ","amount":"10.00"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}

	var payload commons.Response[models.TransferResponse]
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Success || payload.Message != "validation failed" {
		t.Fatalf("expected validation failure payload, got %+v", payload)
	}
}

// exhaustedLedgerService reports every mutation as a storage conflict that
// outlived its retries.
type exhaustedLedgerService struct{}

func (exhaustedLedgerService) GetBalance(context.Context, string) (commons.Response[models.BalanceResponse], error) {
	return commons.Response[models.BalanceResponse]{}, nil
}

func (exhaustedLedgerService) GetTransactions(context.Context, string) (commons.Response[models.TransactionsResponse], error) {
	return commons.Response[models.TransactionsResponse]{}, nil
}

func (exhaustedLedgerService) Deposit(context.Context, string, models.DepositRequest) (commons.Response[models.DepositResponse], error) {
	return commons.ErrorResponse[models.DepositResponse]("operation temporarily unavailable", "Please retry the deposit"), commons.ErrStorageConflict
}

func (exhaustedLedgerService) Withdraw(context.Context, string, models.WithdrawRequest) (commons.Response[models.WithdrawResponse], error) {
	return commons.ErrorResponse[models.WithdrawResponse]("operation temporarily unavailable", "Please retry the withdraw"), commons.ErrStorageConflict
}

func (exhaustedLedgerService) Transfer(context.Context, string, models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	return commons.ErrorResponse[models.TransferResponse]("operation temporarily unavailable", "Please retry the transfer"), commons.ErrStorageConflict
}

func TestDepositEndpointStorageConflictMapsToServiceUnavailable(t *testing.T) {
	mux := router.New(controller.NewAccountController(exhaustedLedgerService{}), middleware.BearerAuth(testSecret))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resp := doRequest(t, server, http.MethodPost, "/accounts/deposit", bearerToken(t, "acct-1"), `{"amount":"50.00"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.StatusCode)
	}
}

func TestRejectedRequestsAreStillLogged(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("100.00"))

	resp := doRequest(t, server, http.MethodGet, "/accounts/deposit", bearerToken(t, account.ID), "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", resp.StatusCode)
	}
	if !strings.Contains(buf.String(), "http request") {
		t.Fatal("expected the rejected request to be logged")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server, repo := newTestServer(t)
	account := repo.AddAccount("0000000001", "Ada", decimal.RequireFromString("100.00"))

	resp := doRequest(t, server, http.MethodPost, "/accounts/balance", bearerToken(t, account.ID), "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", resp.StatusCode)
	}
}
