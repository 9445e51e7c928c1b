package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/repository"
)

// BalanceDirection — направление движения средств по счету
type BalanceDirection string

const (
	DirectionDebit  BalanceDirection = "debit"
	DirectionCredit BalanceDirection = "credit"
)

// LedgerService владеет состоянием балансов: это единственный путь кода,
// которому разрешено изменять balance/available_balance
type LedgerService struct {
	accountRepo *repository.AccountRepository
	logger      *logrus.Logger
}

func NewLedgerService(accountRepo *repository.AccountRepository, logger *logrus.Logger) *LedgerService {
	return &LedgerService{accountRepo: accountRepo, logger: logger}
}

const accountNumberLength = 12

// generateAccountNumber выдает случайный номер счета из 12 цифр
func generateAccountNumber() (string, error) {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate account number: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	// Первая цифра не ноль
	if digits[0] == '0' {
		digits[0] = '1'
	}
	return string(digits), nil
}

func (s *LedgerService) CreateAccount(ctx context.Context, userID uuid.UUID, accountType model.AccountType, currency string) (*model.Account, error) {
	req := model.CreateAccountRequest{AccountType: accountType, Currency: currency}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.Infof("Создание нового счета типа %s (%s) для пользователя %s", accountType, currency, userID)

	// Номер счета уникален по конструкции, но на случай коллизии
	// проверяем существование и перегенерируем
	var number string
	for attempt := 0; attempt < 5; attempt++ {
		candidate, err := generateAccountNumber()
		if err != nil {
			return nil, err
		}
		exists, err := s.accountRepo.ExistsByNumber(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("ошибка проверки номера счета: %w", err)
		}
		if !exists {
			number = candidate
			break
		}
		s.logger.Warnf("Коллизия номера счета %s, повторная генерация", candidate)
	}
	if number == "" {
		return nil, fmt.Errorf("не удалось сгенерировать уникальный номер счета")
	}

	now := time.Now()
	account := &model.Account{
		ID:               uuid.New(),
		UserID:           userID,
		Number:           number,
		AccountType:      accountType,
		Currency:         currency,
		Balance:          0,
		AvailableBalance: 0,
		Status:           model.AccountStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		s.logger.WithError(err).Error("Ошибка при создании счета")
		return nil, fmt.Errorf("ошибка создания счета: %w", err)
	}

	s.logger.Infof("Успешно создан счет %s (№%s) для пользователя %s", account.ID, account.Number, userID)
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

func (s *LedgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (float64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (s *LedgerService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	accounts, err := s.accountRepo.GetUserAccounts(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при получении счетов пользователя")
		return nil, fmt.Errorf("ошибка получения счетов: %w", err)
	}
	return accounts, nil
}

// MutateBalanceTx двигает баланс счета внутри переданной единицы работы.
// Счет читается с блокировкой строки; при дебете проверяется достаточность
// доступного остатка. Любая ошибка откатывает всю объемлющую транзакцию.
func (s *LedgerService) MutateBalanceTx(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, amount float64, direction BalanceDirection) error {
	if amount <= 0 {
		return model.ErrNonPositiveAmount
	}

	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}

	if !account.IsActive() {
		return model.ErrAccountInactive
	}

	delta := amount
	if direction == DirectionDebit {
		if account.AvailableBalance < amount {
			s.logger.Warnf("Недостаточно средств на счете %s: доступно %.2f, требуется %.2f",
				accountID, account.AvailableBalance, amount)
			return model.ErrInsufficientFunds
		}
		delta = -amount
	}

	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, accountID, delta); err != nil {
		return fmt.Errorf("ошибка изменения баланса: %w", err)
	}

	return nil
}

// MutateBalance — самостоятельная версия для вызова вне чужой единицы работы
func (s *LedgerService) MutateBalance(ctx context.Context, accountID uuid.UUID, amount float64, direction BalanceDirection) error {
	db := s.accountRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := s.MutateBalanceTx(ctx, tx, accountID, amount, direction); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	return nil
}

func (s *LedgerService) BlockAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != model.AccountStatusActive {
		return model.ErrAccountInactive
	}

	s.logger.Infof("Блокировка счета %s", accountID)
	return s.accountRepo.UpdateStatus(ctx, accountID, model.AccountStatusBlocked)
}

func (s *LedgerService) UnblockAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != model.AccountStatusBlocked {
		return fmt.Errorf("счет %s не заблокирован", accountID)
	}

	s.logger.Infof("Разблокировка счета %s", accountID)
	return s.accountRepo.UpdateStatus(ctx, accountID, model.AccountStatusActive)
}

// CloseAccount закрывает счет; переход необратим и возможен только
// при нулевом балансе, который перечитывается под блокировкой
func (s *LedgerService) CloseAccount(ctx context.Context, accountID uuid.UUID) error {
	db := s.accountRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}

	if account.Status == model.AccountStatusClosed {
		return model.ErrAccountInactive
	}

	if account.Balance != 0 {
		s.logger.Warnf("Попытка закрытия счета %s с ненулевым балансом %.2f", accountID, account.Balance)
		return model.ErrNonZeroBalance
	}

	if err := s.accountRepo.UpdateStatusTx(ctx, tx, accountID, model.AccountStatusClosed); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.logger.Infof("Счет %s закрыт", accountID)
	return nil
}
