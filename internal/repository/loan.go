package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
)

type LoanRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewLoanRepository(db *sql.DB, logger *logrus.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger}
}

const loanColumns = `id, user_id, account_id, loan_type, principal_amount, interest_rate, term_months, monthly_payment, remaining_balance, status, disbursed_at, maturity_date, next_payment_date, created_at, updated_at`

func scanLoan(row interface{ Scan(...interface{}) error }) (*model.Loan, error) {
	var loan model.Loan
	err := row.Scan(
		&loan.ID,
		&loan.UserID,
		&loan.AccountID,
		&loan.LoanType,
		&loan.PrincipalAmount,
		&loan.InterestRate,
		&loan.TermMonths,
		&loan.MonthlyPayment,
		&loan.RemainingBalance,
		&loan.Status,
		&loan.DisbursedAt,
		&loan.MaturityDate,
		&loan.NextPaymentDate,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *LoanRepository) Create(ctx context.Context, loan *model.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		loan.ID,
		loan.UserID,
		loan.AccountID,
		loan.LoanType,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TermMonths,
		loan.MonthlyPayment,
		loan.RemainingBalance,
		loan.Status,
		loan.DisbursedAt,
		loan.MaturityDate,
		loan.NextPaymentDate,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return model.ErrUserNotFound
			}
		}
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := scanLoan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	return loan, nil
}

func (r *LoanRepository) GetUserLoans(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read loans: %w", err)
	}

	return loans, nil
}

func (r *LoanRepository) GetActiveUserLoans(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1 AND status = $2`

	rows, err := r.db.QueryContext(ctx, query, userID, model.LoanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read loans: %w", err)
	}

	return loans, nil
}

// UpdateDisbursedTx фиксирует выдачу: привязка счета, даты, статус active —
// в одной единице работы с зачислением средств
func (r *LoanRepository) UpdateDisbursedTx(ctx context.Context, tx *sql.Tx, loan *model.Loan) error {
	query := `
		UPDATE loans
		SET account_id = $1,
		    status = $2,
		    disbursed_at = $3,
		    maturity_date = $4,
		    next_payment_date = $5,
		    updated_at = NOW()
		WHERE id = $6
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		loan.AccountID,
		loan.Status,
		loan.DisbursedAt,
		loan.MaturityDate,
		loan.NextPaymentDate,
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan on disbursement: %w", err)
	}

	return nil
}

func (r *LoanRepository) UpdateBalanceAndStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, remainingBalance float64, status model.LoanStatus, nextPaymentDate *time.Time) error {
	query := `
		UPDATE loans
		SET remaining_balance = $1,
		    status = $2,
		    next_payment_date = $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	_, err := tx.ExecContext(ctx, query, remainingBalance, status, nextPaymentDate, id)
	if err != nil {
		return fmt.Errorf("failed to update loan balance: %w", err)
	}

	return nil
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LoanStatus) error {
	query := `
		UPDATE loans
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	return nil
}

func (r *LoanRepository) CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *model.LoanPayment) error {
	query := `
		INSERT INTO loan_payments (id, loan_id, payment_number, due_date, principal, interest, amount, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		payment.ID,
		payment.LoanID,
		payment.PaymentNumber,
		payment.DueDate,
		payment.Principal,
		payment.Interest,
		payment.Amount,
		payment.Status,
		payment.PaidAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan payment: %w", err)
	}

	return nil
}

const loanPaymentColumns = `id, loan_id, payment_number, due_date, principal, interest, amount, status, paid_at, created_at, updated_at`

func scanLoanPayment(row interface{ Scan(...interface{}) error }) (*model.LoanPayment, error) {
	var p model.LoanPayment
	err := row.Scan(
		&p.ID,
		&p.LoanID,
		&p.PaymentNumber,
		&p.DueDate,
		&p.Principal,
		&p.Interest,
		&p.Amount,
		&p.Status,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LoanRepository) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]model.LoanPayment, error) {
	query := `
		SELECT ` + loanPaymentColumns + `
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY payment_number
	`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan schedule: %w", err)
	}
	defer rows.Close()

	var payments []model.LoanPayment
	for rows.Next() {
		p, err := scanLoanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read loan schedule: %w", err)
	}

	return payments, nil
}

// GetOldestUnpaidTx возвращает самую раннюю неоплаченную строку графика
// (pending или overdue) под блокировкой — платежи гасятся строго по порядку
func (r *LoanRepository) GetOldestUnpaidTx(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) (*model.LoanPayment, error) {
	query := `
		SELECT ` + loanPaymentColumns + `
		FROM loan_payments
		WHERE loan_id = $1 AND status IN ($2, $3)
		ORDER BY payment_number
		LIMIT 1
		FOR UPDATE
	`

	p, err := scanLoanPayment(tx.QueryRowContext(ctx, query, loanID, model.LoanPaymentStatusPending, model.LoanPaymentStatusOverdue))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}

	return p, nil
}

// GetNextPendingAfterTx возвращает следующую ожидающую строку после заданного номера
func (r *LoanRepository) GetNextPendingAfterTx(ctx context.Context, tx *sql.Tx, loanID uuid.UUID, afterNumber int) (*model.LoanPayment, error) {
	query := `
		SELECT ` + loanPaymentColumns + `
		FROM loan_payments
		WHERE loan_id = $1 AND status = $2 AND payment_number > $3
		ORDER BY payment_number
		LIMIT 1
	`

	p, err := scanLoanPayment(tx.QueryRowContext(ctx, query, loanID, model.LoanPaymentStatusPending, afterNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next pending payment: %w", err)
	}

	return p, nil
}

func (r *LoanRepository) GetDuePayments(ctx context.Context, before time.Time) ([]model.LoanPayment, error) {
	query := `
		SELECT ` + loanPaymentColumns + `
		FROM loan_payments
		WHERE status = $1 AND due_date <= $2
		ORDER BY due_date
	`

	rows, err := r.db.QueryContext(ctx, query, model.LoanPaymentStatusPending, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query due payments: %w", err)
	}
	defer rows.Close()

	var payments []model.LoanPayment
	for rows.Next() {
		p, err := scanLoanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read due payments: %w", err)
	}

	return payments, nil
}

func (r *LoanRepository) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, paymentID uuid.UUID, status model.LoanPaymentStatus, paidAt *time.Time) error {
	query := `
		UPDATE loan_payments
		SET status = $1,
		    paid_at = $2,
		    updated_at = NOW()
		WHERE id = $3
	`

	_, err := tx.ExecContext(ctx, query, status, paidAt, paymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}

// CancelPendingTx отменяет все оставшиеся ожидающие строки графика,
// используется при досрочном погашении
func (r *LoanRepository) CancelPendingTx(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) error {
	query := `
		UPDATE loan_payments
		SET status = $1,
		    updated_at = NOW()
		WHERE loan_id = $2 AND status = $3
	`

	_, err := tx.ExecContext(ctx, query, model.LoanPaymentStatusCancelled, loanID, model.LoanPaymentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to cancel pending payments: %w", err)
	}

	return nil
}

func (r *LoanRepository) CountOverdue(ctx context.Context, loanID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loan_payments WHERE loan_id = $1 AND status = $2`,
		loanID, model.LoanPaymentStatusOverdue).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue payments: %w", err)
	}
	return count, nil
}

func (r *LoanRepository) GetDB() *sql.DB {
	return r.db
}
