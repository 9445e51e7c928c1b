package model

import (
	"time"

	"github.com/google/uuid"
)

type DepositType string

const (
	DepositTypeFixed    DepositType = "fixed"    // срочный вклад с ежемесячной капитализацией
	DepositTypeFlexible DepositType = "flexible" // гибкий вклад, простые проценты
	DepositTypeSavings  DepositType = "savings"  // накопительный вклад, простые проценты
)

type DepositStatus string

const (
	DepositStatusActive  DepositStatus = "active"
	DepositStatusClosed  DepositStatus = "closed"
	DepositStatusMatured DepositStatus = "matured"
)

type Deposit struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	UserID          uuid.UUID     `json:"user_id" db:"user_id"`
	AccountID       *uuid.UUID    `json:"account_id" db:"account_id"` // счет фондирования
	DepositType     DepositType   `json:"deposit_type" db:"deposit_type"`
	PrincipalAmount float64       `json:"principal_amount" db:"principal_amount"`
	InterestRate    float64       `json:"interest_rate" db:"interest_rate"` // годовая ставка, %
	TermMonths      int           `json:"term_months" db:"term_months"`
	CurrentBalance  float64       `json:"current_balance" db:"current_balance"`
	Status          DepositStatus `json:"status" db:"status"`
	IsAutoRenewal   bool          `json:"is_auto_renewal" db:"is_auto_renewal"`
	StartDate       time.Time     `json:"start_date" db:"start_date"`
	MaturityDate    time.Time     `json:"maturity_date" db:"maturity_date"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// InterestResult — результат расчета доходности вклада
type InterestResult struct {
	Principal      float64 `json:"principal"`
	InterestEarned float64 `json:"interest_earned"`
	FinalAmount    float64 `json:"final_amount"`
}

type OpenDepositRequest struct {
	AccountID       uuid.UUID   `json:"account_id" validate:"required"`
	DepositType     DepositType `json:"deposit_type" validate:"required,oneof=fixed flexible savings"`
	PrincipalAmount float64     `json:"principal_amount" validate:"required,gt=0"`
	InterestRate    float64     `json:"interest_rate" validate:"required,gt=0"`
	TermMonths      int         `json:"term_months" validate:"required,gte=1,lte=60"`
	IsAutoRenewal   bool        `json:"is_auto_renewal"`
}

func (r *OpenDepositRequest) Validate() error {
	switch r.DepositType {
	case DepositTypeFixed, DepositTypeFlexible, DepositTypeSavings:
	default:
		return ErrInvalidDepositType
	}
	if r.PrincipalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if r.InterestRate <= 0 {
		return ErrInvalidRate
	}
	if r.TermMonths < 1 || r.TermMonths > 60 {
		return ErrInvalidTerm
	}
	return nil
}

type DepositQuoteRequest struct {
	DepositType     DepositType `json:"deposit_type" validate:"required"`
	PrincipalAmount float64     `json:"principal_amount" validate:"required,gt=0"`
	InterestRate    float64     `json:"interest_rate" validate:"required,gt=0"`
	TermMonths      int         `json:"term_months" validate:"required,gt=0"`
}

type CloseDepositRequest struct {
	IsEarly bool `json:"is_early"`
}
