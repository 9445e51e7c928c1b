package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/repository"
)

// TransactionService — процессор транзакций: одно логическое движение денег
// выполняется как единая атомарная единица работы (0–2 изменения балансов
// плюс долговременная запись о транзакции)
type TransactionService struct {
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	userRepo        *repository.UserRepository
	ledger          *LedgerService
	events          *EventPublisher
	logger          *logrus.Logger
}

func NewTransactionService(
	accountRepo *repository.AccountRepository,
	transactionRepo *repository.TransactionRepository,
	userRepo *repository.UserRepository,
	ledger *LedgerService,
	events *EventPublisher,
	logger *logrus.Logger,
) *TransactionService {
	return &TransactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		ledger:          ledger,
		events:          events,
		logger:          logger,
	}
}

// generateReference формирует уникальный номер транзакции: миллисекундная
// метка времени плюс криптослучайный суффикс. Уникальность обеспечивается
// конструкцией, предварительная проверка в БД не нужна; уникальный индекс
// по reference остается последней линией обороны.
func generateReference() (string, error) {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate reference suffix: %w", err)
	}
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), hex.EncodeToString(suffix)), nil
}

// orderAccountIDs возвращает идентификаторы обеих сторон в каноническом
// порядке блокировки (по возрастанию UUID). Два встречных перевода между
// одной парой счетов берут блокировки в одном порядке и не взаимоблокируются.
func orderAccountIDs(from, to *uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	if from != nil {
		ids = append(ids, *from)
	}
	if to != nil && (from == nil || *to != *from) {
		ids = append(ids, *to)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// CreateTransaction проводит движение денег целиком: валидация счетов под
// блокировкой, вставка записи в статусе pending, дебет/кредит через Ledger,
// перевод в completed — все внутри одной транзакции БД
func (s *TransactionService) CreateTransaction(ctx context.Context, input model.CreateTransactionInput) (*model.Transaction, error) {
	db := s.transactionRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка начала транзакции")
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	transaction, err := s.CreateTransactionTx(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.WithError(err).Error("Ошибка подтверждения транзакции")
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.events.PublishTransactionCompleted(transaction)
	return transaction, nil
}

// CreateTransactionTx — та же логика внутри чужой единицы работы; через нее
// кредитные и депозитные операции проводят свои движения денег, так что весь
// денежный поток идет одним аудируемым путем
func (s *TransactionService) CreateTransactionTx(ctx context.Context, tx *sql.Tx, input model.CreateTransactionInput) (*model.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Блокируем обе стороны в каноническом порядке до любых изменений
	accounts := make(map[uuid.UUID]*model.Account)
	for _, id := range orderAccountIDs(input.FromAccountID, input.ToAccountID) {
		account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if !account.IsActive() {
			return nil, model.ErrAccountInactive
		}
		// Если валюта не задана явно, перенимаем ее у первой стороны
		if input.Currency == "" {
			input.Currency = account.Currency
		}
		if account.Currency != input.Currency {
			return nil, model.ErrCurrencyMismatch
		}
		accounts[id] = account
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	transaction := &model.Transaction{
		ID:              uuid.New(),
		FromAccountID:   input.FromAccountID,
		ToAccountID:     input.ToAccountID,
		TransactionType: input.TransactionType,
		Amount:          input.Amount,
		Currency:        input.Currency,
		Fee:             input.Fee,
		Status:          model.TransactionStatusPending,
		Reference:       reference,
		Description:     input.Description,
		Metadata:        input.Metadata,
		CreatedAt:       now,
	}

	if err := s.transactionRepo.CreateTx(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if input.FromAccountID != nil {
		if err := s.ledger.MutateBalanceTx(ctx, tx, *input.FromAccountID, input.Amount+input.Fee, DirectionDebit); err != nil {
			return nil, err
		}
	}

	if input.ToAccountID != nil {
		if err := s.ledger.MutateBalanceTx(ctx, tx, *input.ToAccountID, input.Amount, DirectionCredit); err != nil {
			return nil, err
		}
	}

	completedAt := time.Now()
	if err := s.transactionRepo.UpdateStatusTx(ctx, tx, transaction.ID, model.TransactionStatusCompleted, &completedAt); err != nil {
		return nil, err
	}

	transaction.Status = model.TransactionStatusCompleted
	transaction.CompletedAt = &completedAt

	s.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"reference":      transaction.Reference,
		"type":           transaction.TransactionType,
		"amount":         transaction.Amount,
	}).Info("Транзакция успешно проведена")

	return transaction, nil
}

// TransferToPhone переводит средства получателю по номеру телефона:
// телефон разрешается в пользователя, затем в его активный счет в валюте
// счета отправителя. Возвращает созданную транзакцию.
func (s *TransactionService) TransferToPhone(ctx context.Context, userID, fromAccountID uuid.UUID, phone string, amount float64, description string) (*model.Transaction, error) {
	if amount <= 0 {
		return nil, model.ErrNonPositiveAmount
	}

	fromAccount, err := s.accountRepo.GetByID(ctx, fromAccountID)
	if err != nil {
		return nil, err
	}
	if fromAccount.UserID != userID {
		s.logger.Warnf("Попытка перевода с чужого счета: пользователь %s, владелец %s", userID, fromAccount.UserID)
		return nil, model.ErrForbidden
	}

	recipient, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	toAccount, err := s.accountRepo.GetActiveByUserAndCurrency(ctx, recipient.ID, fromAccount.Currency)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Перевод по телефону %s: %.2f %s со счета %s на счет %s",
		phone, amount, fromAccount.Currency, fromAccountID, toAccount.ID)

	return s.CreateTransaction(ctx, model.CreateTransactionInput{
		FromAccountID:   &fromAccountID,
		ToAccountID:     &toAccount.ID,
		TransactionType: model.TransactionTypeTransfer,
		Amount:          amount,
		Currency:        fromAccount.Currency,
		Description:     description,
		Metadata:        model.Metadata{"recipient_phone": phone},
	})
}

// TransferToAccount переводит средства на счет по его номеру.
// Кроссвалютные переводы не поддерживаются.
func (s *TransactionService) TransferToAccount(ctx context.Context, fromAccountID uuid.UUID, toNumber string, amount float64, description string) (*model.Transaction, error) {
	if amount <= 0 {
		return nil, model.ErrNonPositiveAmount
	}

	fromAccount, err := s.accountRepo.GetByID(ctx, fromAccountID)
	if err != nil {
		return nil, err
	}

	toAccount, err := s.accountRepo.GetByNumber(ctx, toNumber)
	if err != nil {
		return nil, err
	}

	if fromAccount.Currency != toAccount.Currency {
		s.logger.Warnf("Попытка кроссвалютного перевода: %s -> %s", fromAccount.Currency, toAccount.Currency)
		return nil, model.ErrCurrencyMismatch
	}

	return s.CreateTransaction(ctx, model.CreateTransactionInput{
		FromAccountID:   &fromAccountID,
		ToAccountID:     &toAccount.ID,
		TransactionType: model.TransactionTypeTransfer,
		Amount:          amount,
		Currency:        fromAccount.Currency,
		Description:     description,
		Metadata:        model.Metadata{"recipient_number": toNumber},
	})
}

func (s *TransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

func (s *TransactionService) GetAccountHistory(ctx context.Context, accountID uuid.UUID, startDate, endDate time.Time) ([]model.Transaction, error) {
	return s.transactionRepo.GetByAccountAndPeriod(ctx, accountID, startDate, endDate)
}

// CancelTransaction отменяет транзакцию, оставшуюся в pending после аварийно
// прерванного процесса. Создание проходит синхронно от начала до конца, так
// что в нормальной работе pending снаружи не наблюдаем и отмена вернет ошибку.
func (s *TransactionService) CancelTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	db := s.transactionRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	transaction, err := s.transactionRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if transaction.Status != model.TransactionStatusPending {
		return nil, model.ErrNotCancellable
	}

	completedAt := time.Now()
	if err := s.transactionRepo.UpdateStatusTx(ctx, tx, id, model.TransactionStatusCancelled, &completedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	transaction.Status = model.TransactionStatusCancelled
	transaction.CompletedAt = &completedAt

	s.logger.Infof("Транзакция %s отменена", id)
	s.events.PublishTransactionCancelled(transaction)
	return transaction, nil
}
