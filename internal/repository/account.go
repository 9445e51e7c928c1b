package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
)

type AccountRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewAccountRepository(db *sql.DB, logger *logrus.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

const accountColumns = `id, user_id, number, account_type, currency, balance, available_balance, status, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Number,
		&account.AccountType,
		&account.Currency,
		&account.Balance,
		&account.AvailableBalance,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.UserID,
		account.Number,
		account.AccountType,
		account.Currency,
		account.Balance,
		account.AvailableBalance,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("account number collision: %w", err)
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetByIDForUpdate читает счет с эксклюзивной блокировкой строки
// в рамках переданной транзакции
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE number = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

// GetActiveByUserAndCurrency возвращает активный счет пользователя в заданной валюте,
// используется при переводе по номеру телефона
func (r *AccountRepository) GetActiveByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency string) (*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND currency = $2 AND status = $3
		ORDER BY created_at
		LIMIT 1
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, userID, currency, model.AccountStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNoMatchingAccount
		}
		return nil, fmt.Errorf("failed to get account by user and currency: %w", err)
	}

	return account, nil
}

// UpdateBalanceTx применяет дельту к balance и available_balance в рамках транзакции.
// Единственный путь записи баланса; вызывается только под блокировкой строки.
func (r *AccountRepository) UpdateBalanceTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, delta float64) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1,
		    available_balance = available_balance + $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := tx.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AccountStatus) error {
	query := `
		UPDATE accounts
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.AccountStatus) error {
	query := `
		UPDATE accounts
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	if _, err := tx.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetDB() *sql.DB {
	return r.db
}
