package model

import "errors"

// Доменные ошибки ядра. Сервисы оборачивают их через fmt.Errorf("...: %w", err),
// HTTP-слой сопоставляет их со статусами ответов.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrDepositNotFound     = errors.New("deposit not found")

	ErrForbidden         = errors.New("resource does not belong to user")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountInactive   = errors.New("account is not active")
	ErrDepositNotActive  = errors.New("deposit is not active")
	ErrLoanNotActive     = errors.New("loan is not active")
	ErrLoanNotPending    = errors.New("loan is not pending")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrNonZeroBalance    = errors.New("account balance is not zero")
	ErrNotCancellable    = errors.New("transaction is not cancellable")
	ErrNotMatured        = errors.New("deposit has not matured")
	ErrNoAutoRenewal     = errors.New("auto renewal is disabled for deposit")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrNoMatchingAccount = errors.New("recipient has no active account in this currency")

	ErrNoAccounts             = errors.New("at least one account is required")
	ErrNonPositiveAmount      = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidDepositType     = errors.New("invalid deposit type")
	ErrInvalidCurrency        = errors.New("invalid currency")
	ErrInvalidTerm            = errors.New("invalid term")
	ErrInvalidRate            = errors.New("invalid interest rate")
)
