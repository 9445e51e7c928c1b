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

type TransactionRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewTransactionRepository(db *sql.DB, logger *logrus.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, logger: logger}
}

const transactionColumns = `id, from_account_id, to_account_id, transaction_type, amount, currency, fee, status, reference, description, metadata, created_at, completed_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID,
		&t.FromAccountID,
		&t.ToAccountID,
		&t.TransactionType,
		&t.Amount,
		&t.Currency,
		&t.Fee,
		&t.Status,
		&t.Reference,
		&t.Description,
		&t.Metadata,
		&t.CreatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) CreateTx(ctx context.Context, tx *sql.Tx, transaction *model.Transaction) error {
	r.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"type":           transaction.TransactionType,
		"amount":         transaction.Amount,
		"currency":       transaction.Currency,
		"reference":      transaction.Reference,
	}).Info("Создание новой транзакции")

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		transaction.ID,
		transaction.FromAccountID,
		transaction.ToAccountID,
		transaction.TransactionType,
		transaction.Amount,
		transaction.Currency,
		transaction.Fee,
		transaction.Status,
		transaction.Reference,
		transaction.Description,
		transaction.Metadata,
		transaction.CreatedAt,
		transaction.CompletedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("reference collision: %w", err)
			}
		}
		r.logger.WithError(err).Error("Ошибка при создании транзакции")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// UpdateStatusTx переводит транзакцию в терминальный статус внутри той же
// единицы работы, в которой двигались балансы
func (r *TransactionRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.TransactionStatus, completedAt *time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1,
		    completed_at = $2
		WHERE id = $3
	`

	result, err := tx.ExecContext(ctx, query, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// GetByIDForUpdate читает транзакцию с блокировкой строки — нужно для отмены,
// чтобы статус не поменялся под ногами
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	t, err := scanTransaction(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}

	return t, nil
}

// GetByAccountAndPeriod возвращает транзакции, где счет был любой из сторон
func (r *TransactionRepository) GetByAccountAndPeriod(
	ctx context.Context,
	accountID uuid.UUID,
	startDate, endDate time.Time,
) ([]model.Transaction, error) {
	// Включаем весь последний день периода
	endDate = endDate.Add(24 * time.Hour)

	r.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
	}).Debug("Запрос транзакций по счету за период")

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (from_account_id = $1 OR to_account_id = $1)
		  AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, startDate, endDate)
	if err != nil {
		r.logger.WithError(err).Error("Ошибка запроса транзакций")
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.logger.WithError(err).Error("Ошибка чтения строки транзакции")
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	r.logger.WithField("count", len(transactions)).Debug("Транзакции успешно получены")
	return transactions, nil
}

func (r *TransactionRepository) GetDB() *sql.DB {
	return r.db
}
