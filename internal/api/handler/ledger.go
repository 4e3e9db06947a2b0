// internal/api/handler/ledger.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"qrispay-ledger/internal/api/types"
	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/service"
	"qrispay-ledger/internal/util"
	"qrispay-ledger/pkg/validation"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 15 * time.Second

// LedgerHandler handles HTTP requests against the transaction ledger.
type LedgerHandler struct {
	service  service.LedgerService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc service.LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service:  svc,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *LedgerHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = "Invalid input"
	case util.IsError(err, util.ErrInvalidDestination):
		statusCode = http.StatusBadRequest
		message = "Unrecognized e-wallet destination"
	case util.IsError(err, util.ErrInvalidDestinationNumber):
		statusCode = http.StatusBadRequest
		message = "E-wallet number must be at least 10 characters"
	case util.IsError(err, util.ErrBelowMinimum):
		statusCode = http.StatusBadRequest
		message = "Minimum withdrawal is Rp 10.000"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInvalidTransition):
		statusCode = http.StatusConflict
		message = "Transaction already settled"
	case util.IsError(err, util.ErrDuplicateAccount), util.IsError(err, util.ErrDuplicateID):
		statusCode = http.StatusConflict
		message = "Duplicate resource"
	case util.IsError(err, util.ErrStorageUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Storage temporarily unavailable"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// decodeAndValidate decodes the JSON body into req and runs struct validation.
func (h *LedgerHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Error:   "Invalid input",
			Details: validation.FormatValidationError(err),
		})
		return false
	}
	return true
}

// SessionRequest represents the authenticated identity handed over at login.
type SessionRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// CreateSession handles login with auto-provisioning.
// POST /sessions
func (h *LedgerHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.service.Login(r.Context(), service.Session{Name: req.Name, Email: req.Email})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, account)
}

// GetAccount returns a current account snapshot.
// GET /accounts/{accountID}
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, account)
}

// ListTopUps returns the account's top-up history in insertion order.
// GET /accounts/{accountID}/topups
func (h *LedgerHandler) ListTopUps(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	topUps, err := h.service.ListTopUps(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.ListResponse[domain.TopUpTransaction]{
		Data:  topUps,
		Count: len(topUps),
	})
}

// ListWithdrawals returns the account's withdrawal history in insertion order.
// GET /accounts/{accountID}/withdrawals
func (h *LedgerHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	withdrawals, err := h.service.ListWithdrawals(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.ListResponse[domain.WithdrawalTransaction]{
		Data:  withdrawals,
		Count: len(withdrawals),
	})
}

// TopUpRequest represents the request body for creating a top-up.
type TopUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// CreateTopUp handles the create top-up request.
// POST /accounts/{accountID}/topups
func (h *LedgerHandler) CreateTopUp(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var req TopUpRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	topUp, err := h.service.CreateTopUp(r.Context(), accountID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, topUp)
}

// ConfirmTopUp handles the confirm top-up request.
// POST /topups/{transactionID}/confirm
func (h *LedgerHandler) ConfirmTopUp(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	topUp, err := h.service.ConfirmTopUp(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, topUp)
}

// FailTopUp handles the fail top-up request.
// POST /topups/{transactionID}/fail
func (h *LedgerHandler) FailTopUp(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	topUp, err := h.service.FailTopUp(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, topUp)
}

// WithdrawalBody represents the request body for creating a withdrawal.
// Amount and destination fields are re-validated by the service in the
// contract's order; struct tags only reject clearly malformed input early.
type WithdrawalBody struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	EWallet       string `json:"e_wallet" validate:"required"`
	EWalletNumber string `json:"e_wallet_number" validate:"required"`
	RecipientName string `json:"recipient_name" validate:"required"`
}

// CreateWithdrawal handles the create withdrawal request.
// POST /accounts/{accountID}/withdrawals
func (h *LedgerHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var req WithdrawalBody
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	withdrawal, err := h.service.CreateWithdrawal(r.Context(), accountID, service.WithdrawalRequest{
		Amount:        req.Amount,
		EWallet:       req.EWallet,
		EWalletNumber: req.EWalletNumber,
		RecipientName: req.RecipientName,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, withdrawal)
}

// ConfirmWithdrawal handles the confirm withdrawal request.
// POST /withdrawals/{transactionID}/confirm
func (h *LedgerHandler) ConfirmWithdrawal(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	withdrawal, err := h.service.ConfirmWithdrawal(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, withdrawal)
}

// FailWithdrawal handles the fail withdrawal request.
// POST /withdrawals/{transactionID}/fail
func (h *LedgerHandler) FailWithdrawal(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	withdrawal, err := h.service.FailWithdrawal(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, withdrawal)
}

// GetEWallets returns the destination catalog and preset top-up amounts.
// GET /ewallets
func (h *LedgerHandler) GetEWallets(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ewallets":       domain.EWallets,
		"preset_amounts": domain.PresetTopUpAmounts,
	})
}
