package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "transfer"   // перевод между счетами
	TransactionTypePayment    TransactionType = "payment"    // платеж (в т.ч. по кредиту)
	TransactionTypeDeposit    TransactionType = "deposit"    // зачисление на счет
	TransactionTypeWithdrawal TransactionType = "withdrawal" // списание со счета
	TransactionTypeFee        TransactionType = "fee"        // комиссия
	TransactionTypeInterest   TransactionType = "interest"   // проценты
	TransactionTypeCashback   TransactionType = "cashback"   // кэшбэк
	TransactionTypeRefund     TransactionType = "refund"     // возврат
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Metadata — произвольные атрибуты транзакции (категория, идентификатор продукта и т.п.),
// хранится в колонке jsonb
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected metadata type %T", src)
	}
	return json.Unmarshal(b, m)
}

type Transaction struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	FromAccountID   *uuid.UUID        `json:"from_account_id" db:"from_account_id"`
	ToAccountID     *uuid.UUID        `json:"to_account_id" db:"to_account_id"`
	TransactionType TransactionType   `json:"transaction_type" db:"transaction_type"`
	Amount          float64           `json:"amount" db:"amount"`
	Currency        string            `json:"currency" db:"currency"`
	Fee             float64           `json:"fee" db:"fee"`
	Status          TransactionStatus `json:"status" db:"status"`
	Reference       string            `json:"reference" db:"reference"`
	Description     string            `json:"description" db:"description"`
	Metadata        Metadata          `json:"metadata" db:"metadata"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at" db:"completed_at"`
}

// CreateTransactionInput — входные данные процессора транзакций.
// Хотя бы один из счетов (FromAccountID/ToAccountID) обязателен.
type CreateTransactionInput struct {
	FromAccountID   *uuid.UUID
	ToAccountID     *uuid.UUID
	TransactionType TransactionType
	Amount          float64
	Currency        string
	Fee             float64
	Description     string
	Metadata        Metadata
}

func (in *CreateTransactionInput) Validate() error {
	if in.FromAccountID == nil && in.ToAccountID == nil {
		return ErrNoAccounts
	}
	if in.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	switch in.TransactionType {
	case TransactionTypeTransfer, TransactionTypePayment, TransactionTypeDeposit,
		TransactionTypeWithdrawal, TransactionTypeFee, TransactionTypeInterest,
		TransactionTypeCashback, TransactionTypeRefund:
	default:
		return ErrInvalidTransactionType
	}
	return nil
}
