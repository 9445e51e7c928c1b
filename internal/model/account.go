package model

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking" // текущий счет
	AccountTypeSavings  AccountType = "savings"  // сберегательный счет
	AccountTypeDeposit  AccountType = "deposit"  // депозитный счет
	AccountTypeCredit   AccountType = "credit"   // кредитный счет
)

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBlocked AccountStatus = "blocked"
	AccountStatusClosed  AccountStatus = "closed"
)

type Account struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	UserID           uuid.UUID     `json:"user_id" db:"user_id"`
	Number           string        `json:"number" db:"number"`
	AccountType      AccountType   `json:"account_type" db:"account_type"`
	Currency         string        `json:"currency" db:"currency"`
	Balance          float64       `json:"balance" db:"balance"`
	AvailableBalance float64       `json:"available_balance" db:"available_balance"`
	Status           AccountStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// IsActive сообщает, допускает ли счет операции по балансу
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

type CreateAccountRequest struct {
	AccountType AccountType `json:"account_type" validate:"required,oneof=checking savings deposit credit"`
	Currency    string      `json:"currency" validate:"required,len=3"`
}

func (r *CreateAccountRequest) Validate() error {
	switch r.AccountType {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeDeposit, AccountTypeCredit:
	default:
		return ErrInvalidAccountType
	}
	if len(r.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

type TransferRequest struct {
	FromAccountID uuid.UUID `json:"from_account_id" validate:"required"`
	ToAccountID   uuid.UUID `json:"to_account_id" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Description   string    `json:"description"`
}

type TransferToPhoneRequest struct {
	FromAccountID uuid.UUID `json:"from_account_id" validate:"required"`
	Phone         string    `json:"phone" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Description   string    `json:"description"`
}

type TransferToAccountRequest struct {
	FromAccountID uuid.UUID `json:"from_account_id" validate:"required"`
	ToNumber      string    `json:"to_number" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Description   string    `json:"description"`
}
