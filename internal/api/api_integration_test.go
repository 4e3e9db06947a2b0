// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "qrispay-ledger/internal"
	"qrispay-ledger/internal/domain"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// TestMain boots the whole application once, on the in-memory driver, and
// serves it through httptest so every test exercises the real router,
// middlewares and error mapping.
func TestMain(m *testing.M) {
	os.Setenv("STORAGE_DRIVER", "memory")
	os.Unsetenv("KAFKA_BROKERS") // keep the publisher a no-op

	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	testServer = httptest.NewServer(testApp.HTTPHandler)
	defer testServer.Close()

	code := m.Run()

	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// makeRequest sends an HTTP request to the test server. The caller closes the
// response body.
func makeRequest(t *testing.T, method, path string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

// login provisions (or retrieves) an account through the session endpoint.
// Each test uses a distinct email, so the shared store needs no truncation.
func login(t *testing.T, name, email string) domain.Account {
	requestBody := fmt.Sprintf(`{"name": %q, "email": %q}`, name, email)
	resp, body := makeRequest(t, "POST", "/sessions", strings.NewReader(requestBody))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", body)

	var account domain.Account
	require.NoError(t, json.Unmarshal([]byte(body), &account))
	require.NotEmpty(t, account.ID)
	return account
}

// fundAccount credits the account through a confirmed top-up.
func fundAccount(t *testing.T, accountID string, amount int64) {
	requestBody := fmt.Sprintf(`{"amount": %d}`, amount)
	resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/topups", accountID), strings.NewReader(requestBody))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "top-up failed: %s", body)

	var topUp domain.TopUpTransaction
	require.NoError(t, json.Unmarshal([]byte(body), &topUp))

	respConfirm, bodyConfirm := makeRequest(t, "POST", fmt.Sprintf("/topups/%s/confirm", topUp.ID), nil)
	defer respConfirm.Body.Close()
	require.Equal(t, http.StatusOK, respConfirm.StatusCode, "confirm failed: %s", bodyConfirm)
}

// getBalance reads the account's current balance through the API.
func getBalance(t *testing.T, accountID string) int64 {
	resp, body := makeRequest(t, "GET", fmt.Sprintf("/accounts/%s", accountID), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var account domain.Account
	require.NoError(t, json.Unmarshal([]byte(body), &account))
	return account.Balance
}

func TestHealthCheck(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/health", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestSessionIntegration(t *testing.T) {
	t.Run("AutoProvisionsNewAccount", func(t *testing.T) {
		account := login(t, "Budi", "session_new@gmail.com")
		assert.Equal(t, "Budi", account.Name)
		assert.Equal(t, "session_new@gmail.com", account.Email)
		assert.Equal(t, int64(0), account.Balance)
	})

	t.Run("RepeatedLoginReturnsSameAccount", func(t *testing.T) {
		first := login(t, "Budi", "session_repeat@gmail.com")
		fundAccount(t, first.ID, 25000)

		second := login(t, "Budi", "session_repeat@gmail.com")
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(25000), second.Balance)
	})

	t.Run("MalformedEmailRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/sessions", strings.NewReader(`{"name": "Budi", "email": "not-an-email"}`))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid input")
	})

	t.Run("MissingNameRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/sessions", strings.NewReader(`{"email": "budi@gmail.com"}`))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Name is required")
	})
}

func TestTopUpIntegration(t *testing.T) {
	account := login(t, "Budi", "topup_user@gmail.com")

	t.Run("PendingTopUpDoesNotCredit", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/topups", account.ID), strings.NewReader(`{"amount": 50000}`))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var topUp domain.TopUpTransaction
		require.NoError(t, json.Unmarshal([]byte(body), &topUp))
		assert.Equal(t, domain.TransactionStatusPending, topUp.Status)
		assert.True(t, strings.HasPrefix(topUp.ReferenceNumber, "TU"))

		assert.Equal(t, int64(0), getBalance(t, account.ID))

		t.Run("ConfirmCreditsOnce", func(t *testing.T) {
			resp, body := makeRequest(t, "POST", fmt.Sprintf("/topups/%s/confirm", topUp.ID), nil)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			var confirmed domain.TopUpTransaction
			require.NoError(t, json.Unmarshal([]byte(body), &confirmed))
			assert.Equal(t, domain.TransactionStatusConfirmed, confirmed.Status)
			assert.Equal(t, int64(50000), getBalance(t, account.ID))

			// Settled transactions are final; the balance must not move again
			respAgain, bodyAgain := makeRequest(t, "POST", fmt.Sprintf("/topups/%s/confirm", topUp.ID), nil)
			defer respAgain.Body.Close()
			assert.Equal(t, http.StatusConflict, respAgain.StatusCode)
			assert.Contains(t, bodyAgain, "already settled")
			assert.Equal(t, int64(50000), getBalance(t, account.ID))
		})
	})

	t.Run("FailedTopUpNeverCredits", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/topups", account.ID), strings.NewReader(`{"amount": 10000}`))
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var topUp domain.TopUpTransaction
		require.NoError(t, json.Unmarshal([]byte(body), &topUp))

		respFail, _ := makeRequest(t, "POST", fmt.Sprintf("/topups/%s/fail", topUp.ID), nil)
		defer respFail.Body.Close()
		assert.Equal(t, http.StatusOK, respFail.StatusCode)
		assert.Equal(t, int64(50000), getBalance(t, account.ID))
	})

	t.Run("ZeroAmountRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/topups", account.ID), strings.NewReader(`{"amount": 0}`))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid input")
	})

	t.Run("UnknownAccountRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/accounts/no-such-account/topups", strings.NewReader(`{"amount": 10000}`))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "Resource not found")
	})

	t.Run("UnknownTransactionRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/topups/no-such-transaction/confirm", nil)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "Resource not found")
	})
}

func TestWithdrawalIntegration(t *testing.T) {
	account := login(t, "Budi", "withdrawal_user@gmail.com")
	fundAccount(t, account.ID, 50000)

	withdrawalBody := func(amount int64, eWallet, number string) string {
		return fmt.Sprintf(`{"amount": %d, "e_wallet": %q, "e_wallet_number": %q, "recipient_name": "Budi"}`, amount, eWallet, number)
	}

	t.Run("SuccessfulWithdrawalHoldsGrossAmount", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), strings.NewReader(withdrawalBody(20000, "dana", "0812345678")))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var withdrawal domain.WithdrawalTransaction
		require.NoError(t, json.Unmarshal([]byte(body), &withdrawal))
		assert.Equal(t, int64(20000), withdrawal.Amount)
		assert.Equal(t, int64(500), withdrawal.AdminFee) // 2.5% of 20000
		assert.Equal(t, int64(19500), withdrawal.NetAmount)
		assert.Equal(t, domain.TransactionStatusPending, withdrawal.Status)

		// The gross amount is held the moment the request is accepted
		assert.Equal(t, int64(30000), getBalance(t, account.ID))

		t.Run("ConfirmLeavesBalanceUntouched", func(t *testing.T) {
			resp, _ := makeRequest(t, "POST", fmt.Sprintf("/withdrawals/%s/confirm", withdrawal.ID), nil)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, int64(30000), getBalance(t, account.ID))
		})
	})

	t.Run("FailedWithdrawalReleasesHold", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), strings.NewReader(withdrawalBody(10000, "ovo", "0812345678")))
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var withdrawal domain.WithdrawalTransaction
		require.NoError(t, json.Unmarshal([]byte(body), &withdrawal))
		assert.Equal(t, int64(20000), getBalance(t, account.ID))

		respFail, _ := makeRequest(t, "POST", fmt.Sprintf("/withdrawals/%s/fail", withdrawal.ID), nil)
		defer respFail.Body.Close()
		assert.Equal(t, http.StatusOK, respFail.StatusCode)
		assert.Equal(t, int64(30000), getBalance(t, account.ID))
	})

	t.Run("BelowMinimumRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), strings.NewReader(withdrawalBody(9999, "dana", "0812345678")))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Minimum withdrawal")
	})

	t.Run("UnrecognizedDestinationRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), strings.NewReader(withdrawalBody(20000, "paypal", "0812345678")))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Unrecognized e-wallet")
	})

	t.Run("ShortDestinationNumberRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), strings.NewReader(withdrawalBody(20000, "dana", "08123")))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "at least 10 characters")
	})

	t.Run("InsufficientFundsRejected", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), strings.NewReader(withdrawalBody(100000, "dana", "0812345678")))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		assert.Contains(t, body, "Insufficient funds")
		assert.Equal(t, int64(30000), getBalance(t, account.ID))
	})
}

// TestHistoryAndBalanceConsistency replays both histories and checks that the
// credited top-ups minus the held withdrawals reproduce the live balance.
func TestHistoryAndBalanceConsistency(t *testing.T) {
	account := login(t, "Budi", "consistency_user@gmail.com")

	fundAccount(t, account.ID, 100000)
	fundAccount(t, account.ID, 25000)

	// One pending top-up that must not count towards the balance
	respPending, _ := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/topups", account.ID), strings.NewReader(`{"amount": 500000}`))
	respPending.Body.Close()

	resp, body := makeRequest(t, "POST", fmt.Sprintf("/accounts/%s/withdrawals", account.ID),
		strings.NewReader(`{"amount": 50000, "e_wallet": "gopay", "e_wallet_number": "0812345678", "recipient_name": "Budi"}`))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	respTopUps, bodyTopUps := makeRequest(t, "GET", fmt.Sprintf("/accounts/%s/topups", account.ID), nil)
	defer respTopUps.Body.Close()
	assert.Equal(t, http.StatusOK, respTopUps.StatusCode)

	var topUpList struct {
		Data  []domain.TopUpTransaction `json:"data"`
		Count int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyTopUps), &topUpList))
	assert.Equal(t, 3, topUpList.Count)

	respWithdrawals, bodyWithdrawals := makeRequest(t, "GET", fmt.Sprintf("/accounts/%s/withdrawals", account.ID), nil)
	defer respWithdrawals.Body.Close()
	assert.Equal(t, http.StatusOK, respWithdrawals.StatusCode)

	var withdrawalList struct {
		Data  []domain.WithdrawalTransaction `json:"data"`
		Count int                            `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyWithdrawals), &withdrawalList))
	assert.Equal(t, 1, withdrawalList.Count)

	var derived int64
	for _, topUp := range topUpList.Data {
		if topUp.Status == domain.TransactionStatusConfirmed {
			derived += topUp.Amount
		}
	}
	for _, withdrawal := range withdrawalList.Data {
		if withdrawal.Status != domain.TransactionStatusFailed {
			derived -= withdrawal.Amount
		}
	}

	assert.Equal(t, int64(75000), derived)
	assert.Equal(t, derived, getBalance(t, account.ID))
}

func TestEWalletCatalog(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/ewallets", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog struct {
		EWallets      []domain.EWallet `json:"ewallets"`
		PresetAmounts []int64          `json:"preset_amounts"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &catalog))
	assert.Len(t, catalog.EWallets, 5)
	assert.Contains(t, catalog.PresetAmounts, int64(10000))
	assert.Contains(t, catalog.PresetAmounts, int64(500000))
}
