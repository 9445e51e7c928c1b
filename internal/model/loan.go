package model

import (
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusPaidOff   LoanStatus = "paid_off"
	LoanStatusDefaulted LoanStatus = "defaulted"
	LoanStatusRejected  LoanStatus = "rejected"
)

type Loan struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	AccountID        *uuid.UUID `json:"account_id" db:"account_id"` // привязывается при выдаче
	LoanType         string     `json:"loan_type" db:"loan_type"`
	PrincipalAmount  float64    `json:"principal_amount" db:"principal_amount"`
	InterestRate     float64    `json:"interest_rate" db:"interest_rate"` // годовая ставка, %
	TermMonths       int        `json:"term_months" db:"term_months"`
	MonthlyPayment   float64    `json:"monthly_payment" db:"monthly_payment"`
	RemainingBalance float64    `json:"remaining_balance" db:"remaining_balance"`
	Status           LoanStatus `json:"status" db:"status"`
	DisbursedAt      *time.Time `json:"disbursed_at" db:"disbursed_at"`
	MaturityDate     *time.Time `json:"maturity_date" db:"maturity_date"`
	NextPaymentDate  *time.Time `json:"next_payment_date" db:"next_payment_date"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type LoanPaymentStatus string

const (
	LoanPaymentStatusPending   LoanPaymentStatus = "pending"
	LoanPaymentStatusPaid      LoanPaymentStatus = "paid"
	LoanPaymentStatusOverdue   LoanPaymentStatus = "overdue"
	LoanPaymentStatusCancelled LoanPaymentStatus = "cancelled"
)

// LoanPayment — строка графика платежей, по одной на месяц срока
type LoanPayment struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	LoanID        uuid.UUID         `json:"loan_id" db:"loan_id"`
	PaymentNumber int               `json:"payment_number" db:"payment_number"`
	DueDate       time.Time         `json:"due_date" db:"due_date"`
	Principal     float64           `json:"principal" db:"principal"`
	Interest      float64           `json:"interest" db:"interest"`
	Amount        float64           `json:"amount" db:"amount"` // principal + interest
	Status        LoanPaymentStatus `json:"status" db:"status"`
	PaidAt        *time.Time        `json:"paid_at" db:"paid_at"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// AmortizationEntry — строка расчетного графика (до привязки к кредиту)
type AmortizationEntry struct {
	Month            int     `json:"month"`
	Payment          float64 `json:"payment"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// AmortizationResult — результат аннуитетного расчета
type AmortizationResult struct {
	MonthlyPayment float64             `json:"monthly_payment"`
	TotalPayment   float64             `json:"total_payment"`
	TotalInterest  float64             `json:"total_interest"`
	Schedule       []AmortizationEntry `json:"schedule"`
}

type CreateLoanRequest struct {
	LoanType        string  `json:"loan_type"`
	PrincipalAmount float64 `json:"principal_amount" validate:"required,gt=0"`
	InterestRate    float64 `json:"interest_rate" validate:"gte=0"` // 0 — ставка берется от ключевой
	TermMonths      int     `json:"term_months" validate:"required,gte=3,lte=120"`
}

func (r *CreateLoanRequest) Validate() error {
	if r.PrincipalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if r.TermMonths < 3 || r.TermMonths > 120 {
		return ErrInvalidTerm
	}
	if r.InterestRate < 0 {
		return ErrInvalidRate
	}
	return nil
}

type LoanQuoteRequest struct {
	PrincipalAmount float64 `json:"principal_amount" validate:"required,gt=0"`
	InterestRate    float64 `json:"interest_rate" validate:"gte=0"`
	TermMonths      int     `json:"term_months" validate:"required,gt=0"`
}

type ApproveLoanRequest struct {
	AccountID uuid.UUID `json:"account_id" validate:"required"`
}

type LoanPaymentRequest struct {
	LoanID    uuid.UUID `json:"loan_id" validate:"required"`
	AccountID uuid.UUID `json:"account_id" validate:"required"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
}
