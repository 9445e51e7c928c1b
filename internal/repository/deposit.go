package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
)

type DepositRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewDepositRepository(db *sql.DB, logger *logrus.Logger) *DepositRepository {
	return &DepositRepository{db: db, logger: logger}
}

const depositColumns = `id, user_id, account_id, deposit_type, principal_amount, interest_rate, term_months, current_balance, status, is_auto_renewal, start_date, maturity_date, created_at, updated_at`

func scanDeposit(row interface{ Scan(...interface{}) error }) (*model.Deposit, error) {
	var d model.Deposit
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.AccountID,
		&d.DepositType,
		&d.PrincipalAmount,
		&d.InterestRate,
		&d.TermMonths,
		&d.CurrentBalance,
		&d.Status,
		&d.IsAutoRenewal,
		&d.StartDate,
		&d.MaturityDate,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepositRepository) CreateTx(ctx context.Context, tx *sql.Tx, deposit *model.Deposit) error {
	query := `
		INSERT INTO deposits (` + depositColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		deposit.ID,
		deposit.UserID,
		deposit.AccountID,
		deposit.DepositType,
		deposit.PrincipalAmount,
		deposit.InterestRate,
		deposit.TermMonths,
		deposit.CurrentBalance,
		deposit.Status,
		deposit.IsAutoRenewal,
		deposit.StartDate,
		deposit.MaturityDate,
		deposit.CreatedAt,
		deposit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}

	return nil
}

func (r *DepositRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1`

	d, err := scanDeposit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}

	return d, nil
}

// GetByIDForUpdate блокирует строку вклада до конца транзакции: начисление,
// закрытие и продление одного вклада сериализуются между собой
func (r *DepositRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1 FOR UPDATE`

	d, err := scanDeposit(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to lock deposit: %w", err)
	}

	return d, nil
}

func (r *DepositRepository) GetUserDeposits(ctx context.Context, userID uuid.UUID) ([]model.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user deposits: %w", err)
	}
	defer rows.Close()

	var deposits []model.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deposits: %w", err)
	}

	return deposits, nil
}

// GetMatured возвращает активные вклады с истекшим сроком — вход для свипа
func (r *DepositRepository) GetMatured(ctx context.Context, asOf time.Time) ([]model.Deposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM deposits
		WHERE status = $1 AND maturity_date <= $2
		ORDER BY maturity_date
	`

	rows, err := r.db.QueryContext(ctx, query, model.DepositStatusActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query matured deposits: %w", err)
	}
	defer rows.Close()

	var deposits []model.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matured deposits: %w", err)
	}

	return deposits, nil
}

func (r *DepositRepository) GetActiveByType(ctx context.Context, depositType model.DepositType) ([]model.Deposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM deposits
		WHERE status = $1 AND deposit_type = $2
	`

	rows, err := r.db.QueryContext(ctx, query, model.DepositStatusActive, depositType)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits by type: %w", err)
	}
	defer rows.Close()

	var deposits []model.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deposits: %w", err)
	}

	return deposits, nil
}

func (r *DepositRepository) UpdateBalanceTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, currentBalance float64) error {
	query := `
		UPDATE deposits
		SET current_balance = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := tx.ExecContext(ctx, query, currentBalance, id)
	if err != nil {
		return fmt.Errorf("failed to update deposit balance: %w", err)
	}

	return nil
}

func (r *DepositRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.DepositStatus) error {
	query := `
		UPDATE deposits
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update deposit status: %w", err)
	}

	return nil
}

// RenewTx перезапускает вклад: новый принципал и свежие даты в одной записи
func (r *DepositRepository) RenewTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, principal float64, startDate, maturityDate time.Time) error {
	query := `
		UPDATE deposits
		SET principal_amount = $1,
		    current_balance = $1,
		    start_date = $2,
		    maturity_date = $3,
		    updated_at = NOW()
		WHERE id = $4
	`

	_, err := tx.ExecContext(ctx, query, principal, startDate, maturityDate, id)
	if err != nil {
		return fmt.Errorf("failed to renew deposit: %w", err)
	}

	return nil
}

func (r *DepositRepository) GetDB() *sql.DB {
	return r.db
}
