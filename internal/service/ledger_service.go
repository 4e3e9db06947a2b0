// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/events"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"
	"qrispay-ledger/pkg/db"

	"github.com/shopspring/decimal"
)

// Session is the authenticated identity handed over by the login collaborator.
// The ledger trusts it and auto-provisions an account on first sighting; it is
// passed explicitly into calls instead of living in ambient state.
type Session struct {
	Name  string
	Email string
}

// WithdrawalRequest carries the caller-supplied fields of a withdrawal.
type WithdrawalRequest struct {
	Amount        int64
	EWallet       string
	EWalletNumber string
	RecipientName string
}

// LedgerService defines the interface for the transaction and balance ledger.
// It is the only component composing fee computation, balance checks and
// status transitions, and the only writer of account balances.
type LedgerService interface {
	Login(ctx context.Context, session Session) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListTopUps(ctx context.Context, accountID string) ([]domain.TopUpTransaction, error)
	ListWithdrawals(ctx context.Context, accountID string) ([]domain.WithdrawalTransaction, error)
	CreateTopUp(ctx context.Context, accountID string, amount int64) (*domain.TopUpTransaction, error)
	ConfirmTopUp(ctx context.Context, transactionID string) (*domain.TopUpTransaction, error)
	FailTopUp(ctx context.Context, transactionID string) (*domain.TopUpTransaction, error)
	CreateWithdrawal(ctx context.Context, accountID string, req WithdrawalRequest) (*domain.WithdrawalTransaction, error)
	ConfirmWithdrawal(ctx context.Context, transactionID string) (*domain.WithdrawalTransaction, error)
	FailWithdrawal(ctx context.Context, transactionID string) (*domain.WithdrawalTransaction, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbExecutor     repository.DBExecutor // For non-transactional reads
	accountRepo    repository.AccountRepository
	topUpRepo      repository.TopUpRepository
	withdrawalRepo repository.WithdrawalRepository
	feePercentage  decimal.Decimal // Admin fee percentage fixed at construction
	publisher      events.Publisher
	logger         *slog.Logger
	beginTx        db.BeginTxFunc
	commitTx       db.CommitTxFunc
	rollbackTx     db.RollbackTxFunc

	// Per-account mutexes serializing check-then-act sections. Different
	// accounts proceed concurrently; the map itself is guarded by mapMu.
	mapMu sync.Mutex
	muMap map[string]*sync.Mutex
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	topUpRepo repository.TopUpRepository,
	withdrawalRepo repository.WithdrawalRepository,
	feePercentage decimal.Decimal,
	publisher events.Publisher,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbExecutor:     dbExecutor,
		accountRepo:    accountRepo,
		topUpRepo:      topUpRepo,
		withdrawalRepo: withdrawalRepo,
		feePercentage:  feePercentage,
		publisher:      publisher,
		logger:         logger,
		beginTx:        beginTx,
		commitTx:       commitTx,
		rollbackTx:     rollbackTx,
		muMap:          make(map[string]*sync.Mutex),
	}
}

func (s *ledgerService) accountLock(accountID string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, exists := s.muMap[accountID]; !exists {
		s.muMap[accountID] = &sync.Mutex{}
	}
	return s.muMap[accountID]
}

// publish emits an event best-effort; a broker failure never fails the call.
func (s *ledgerService) publish(ctx context.Context, event any) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish transaction event", "error", err)
	}
}

// Login returns the account for the session's email, auto-provisioning it on
// first login. If a concurrent first login wins the unique-email race, the
// freshly created account is re-read instead of failing the session.
func (s *ledgerService) Login(ctx context.Context, session Session) (*domain.Account, error) {
	if session.Email == "" {
		return nil, util.ErrInvalidInput
	}

	account, err := s.accountRepo.GetAccountByEmail(ctx, s.dbExecutor, session.Email)
	if err == nil {
		return account, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("login: failed to look up account: %w", err)
	}

	account = domain.NewAccount(session.Name, session.Email)

	txController, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("login: transaction controller does not implement DBExecutor")
	}

	if err := s.accountRepo.CreateAccount(ctx, txExecutor, account); err != nil {
		if util.IsError(err, util.ErrDuplicateAccount) {
			// A concurrent first login won the unique-email race. The failed
			// transaction must release before the account can be re-read.
			s.rollbackTx(txController)
			return s.accountRepo.GetAccountByEmail(ctx, s.dbExecutor, session.Email)
		}
		return nil, fmt.Errorf("login: failed to create account: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("login: failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetAccount retrieves a current snapshot of an account.
func (s *ledgerService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// ListTopUps returns the account's top-ups in insertion order.
func (s *ledgerService) ListTopUps(ctx context.Context, accountID string) ([]domain.TopUpTransaction, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, fmt.Errorf("list top-ups: failed to get account %s: %w", accountID, err)
	}
	topUps, err := s.topUpRepo.ListTopUpsByUser(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("list top-ups: %w", err)
	}
	return topUps, nil
}

// ListWithdrawals returns the account's withdrawals in insertion order.
func (s *ledgerService) ListWithdrawals(ctx context.Context, accountID string) ([]domain.WithdrawalTransaction, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, fmt.Errorf("list withdrawals: failed to get account %s: %w", accountID, err)
	}
	withdrawals, err := s.withdrawalRepo.ListWithdrawalsByUser(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return withdrawals, nil
}

// CreateTopUp appends a pending top-up. Any positive amount is accepted; the
// preset amounts are a UI convenience, not a domain constraint. The account is
// not credited until the top-up is confirmed.
func (s *ledgerService) CreateTopUp(ctx context.Context, accountID string, amount int64) (*domain.TopUpTransaction, error) {
	if amount <= 0 {
		return nil, util.ErrInvalidInput
	}

	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, fmt.Errorf("create top-up: failed to get account %s: %w", accountID, err)
	}

	topUp := domain.NewTopUpTransaction(accountID, amount)
	if err := s.topUpRepo.CreateTopUp(ctx, s.dbExecutor, topUp); err != nil {
		return nil, fmt.Errorf("create top-up: failed to append transaction: %w", err)
	}

	return topUp, nil
}

// ConfirmTopUp transitions a pending top-up to confirmed and credits the
// owning account. The transition and the credit are one unit of work: if the
// credit fails the transition is rolled back. A top-up already confirmed is
// rejected with ErrInvalidTransition, never credited twice.
func (s *ledgerService) ConfirmTopUp(ctx context.Context, transactionID string) (*domain.TopUpTransaction, error) {
	topUp, err := s.topUpRepo.GetTopUpByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("confirm top-up: failed to get transaction %s: %w", transactionID, err)
	}

	lock := s.accountLock(topUp.UserID)
	lock.Lock()
	defer lock.Unlock()

	txController, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("confirm top-up: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("confirm top-up: transaction controller does not implement DBExecutor")
	}

	if err := s.topUpRepo.UpdateTopUpStatus(ctx, txExecutor, transactionID, domain.TransactionStatusConfirmed); err != nil {
		return nil, fmt.Errorf("confirm top-up: failed to transition %s: %w", transactionID, err)
	}

	// Credit strictly after the status transition, inside the same unit of work.
	account, err := s.accountRepo.GetAccountByID(ctx, txExecutor, topUp.UserID)
	if err != nil {
		return nil, fmt.Errorf("confirm top-up: failed to get account %s: %w", topUp.UserID, err)
	}
	if err := s.accountRepo.SetBalance(ctx, txExecutor, account.ID, account.Balance+topUp.Amount); err != nil {
		return nil, fmt.Errorf("confirm top-up: failed to credit account %s: %w", account.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("confirm top-up: failed to commit transaction: %w", err)
	}

	topUp.Status = domain.TransactionStatusConfirmed
	s.publish(ctx, events.TopUpSettled{
		TransactionID:   topUp.ID,
		UserID:          topUp.UserID,
		Amount:          topUp.Amount,
		ReferenceNumber: topUp.ReferenceNumber,
		Status:          topUp.Status,
		OccurredAt:      time.Now().UTC(),
	})
	return topUp, nil
}

// FailTopUp transitions a pending top-up to failed. No balance action.
func (s *ledgerService) FailTopUp(ctx context.Context, transactionID string) (*domain.TopUpTransaction, error) {
	topUp, err := s.topUpRepo.GetTopUpByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("fail top-up: failed to get transaction %s: %w", transactionID, err)
	}

	if err := s.topUpRepo.UpdateTopUpStatus(ctx, s.dbExecutor, transactionID, domain.TransactionStatusFailed); err != nil {
		return nil, fmt.Errorf("fail top-up: failed to transition %s: %w", transactionID, err)
	}

	topUp.Status = domain.TransactionStatusFailed
	s.publish(ctx, events.TopUpSettled{
		TransactionID:   topUp.ID,
		UserID:          topUp.UserID,
		Amount:          topUp.Amount,
		ReferenceNumber: topUp.ReferenceNumber,
		Status:          topUp.Status,
		OccurredAt:      time.Now().UTC(),
	})
	return topUp, nil
}

// CreateWithdrawal validates and appends a pending withdrawal, fixing the
// admin fee from the percentage in effect now. Funds are held at creation:
// the gross amount is debited in the same unit of work as the append, so two
// concurrent requests cannot both spend the same balance. Confirmation needs
// no further balance action; failing the withdrawal releases the hold.
func (s *ledgerService) CreateWithdrawal(ctx context.Context, accountID string, req WithdrawalRequest) (*domain.WithdrawalTransaction, error) {
	// Validation order is part of the contract: destination, destination
	// number, minimum amount, then balance.
	if req.EWallet == "" || !domain.IsRecognizedEWallet(req.EWallet) {
		return nil, util.ErrInvalidDestination
	}
	if len(req.EWalletNumber) < domain.MinEWalletNumberLength {
		return nil, util.ErrInvalidDestinationNumber
	}
	if req.Amount < domain.MinWithdrawalAmount {
		return nil, util.ErrBelowMinimum
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	txController, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create withdrawal: transaction controller does not implement DBExecutor")
	}

	account, err := s.accountRepo.GetAccountByID(ctx, txExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: failed to get account %s: %w", accountID, err)
	}
	if req.Amount > account.Balance {
		return nil, util.ErrInsufficientFunds
	}

	adminFee, _, err := domain.ComputeAdminFee(req.Amount, s.feePercentage)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: failed to compute fee: %w", err)
	}

	withdrawal := domain.NewWithdrawalTransaction(
		accountID, req.Amount, adminFee, req.EWallet, req.EWalletNumber, req.RecipientName)
	if err := s.withdrawalRepo.CreateWithdrawal(ctx, txExecutor, withdrawal); err != nil {
		return nil, fmt.Errorf("create withdrawal: failed to append transaction: %w", err)
	}

	// Hold the gross amount until the withdrawal settles.
	if err := s.accountRepo.SetBalance(ctx, txExecutor, account.ID, account.Balance-req.Amount); err != nil {
		return nil, fmt.Errorf("create withdrawal: failed to hold funds on account %s: %w", account.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create withdrawal: failed to commit transaction: %w", err)
	}

	return withdrawal, nil
}

// ConfirmWithdrawal transitions a pending withdrawal to confirmed. The funds
// were already held at creation, so no balance action is needed; the actual
// release to the external e-wallet happens out of band.
func (s *ledgerService) ConfirmWithdrawal(ctx context.Context, transactionID string) (*domain.WithdrawalTransaction, error) {
	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("confirm withdrawal: failed to get transaction %s: %w", transactionID, err)
	}

	if err := s.withdrawalRepo.UpdateWithdrawalStatus(ctx, s.dbExecutor, transactionID, domain.TransactionStatusConfirmed); err != nil {
		return nil, fmt.Errorf("confirm withdrawal: failed to transition %s: %w", transactionID, err)
	}

	withdrawal.Status = domain.TransactionStatusConfirmed
	s.publish(ctx, events.WithdrawalSettled{
		TransactionID: withdrawal.ID,
		UserID:        withdrawal.UserID,
		Amount:        withdrawal.Amount,
		AdminFee:      withdrawal.AdminFee,
		NetAmount:     withdrawal.NetAmount,
		EWallet:       withdrawal.EWallet,
		Status:        withdrawal.Status,
		OccurredAt:    time.Now().UTC(),
	})
	return withdrawal, nil
}

// FailWithdrawal transitions a pending withdrawal to failed and releases the
// held gross amount back to the account, as one unit of work.
func (s *ledgerService) FailWithdrawal(ctx context.Context, transactionID string) (*domain.WithdrawalTransaction, error) {
	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("fail withdrawal: failed to get transaction %s: %w", transactionID, err)
	}

	lock := s.accountLock(withdrawal.UserID)
	lock.Lock()
	defer lock.Unlock()

	txController, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail withdrawal: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("fail withdrawal: transaction controller does not implement DBExecutor")
	}

	if err := s.withdrawalRepo.UpdateWithdrawalStatus(ctx, txExecutor, transactionID, domain.TransactionStatusFailed); err != nil {
		return nil, fmt.Errorf("fail withdrawal: failed to transition %s: %w", transactionID, err)
	}

	account, err := s.accountRepo.GetAccountByID(ctx, txExecutor, withdrawal.UserID)
	if err != nil {
		return nil, fmt.Errorf("fail withdrawal: failed to get account %s: %w", withdrawal.UserID, err)
	}
	if err := s.accountRepo.SetBalance(ctx, txExecutor, account.ID, account.Balance+withdrawal.Amount); err != nil {
		return nil, fmt.Errorf("fail withdrawal: failed to release funds on account %s: %w", account.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("fail withdrawal: failed to commit transaction: %w", err)
	}

	withdrawal.Status = domain.TransactionStatusFailed
	s.publish(ctx, events.WithdrawalSettled{
		TransactionID: withdrawal.ID,
		UserID:        withdrawal.UserID,
		Amount:        withdrawal.Amount,
		AdminFee:      withdrawal.AdminFee,
		NetAmount:     withdrawal.NetAmount,
		EWallet:       withdrawal.EWallet,
		Status:        withdrawal.Status,
		OccurredAt:    time.Now().UTC(),
	})
	return withdrawal, nil
}
