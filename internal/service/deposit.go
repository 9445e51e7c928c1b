package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/repository"
)

// CalculateSimpleInterest — простые проценты для гибких и накопительных
// вкладов: interest = P * rate * term / (12 * 100). Чистая функция.
func CalculateSimpleInterest(principal, annualRate float64, termMonths int) model.InterestResult {
	interest := principal * annualRate * float64(termMonths) / (12 * 100)
	return model.InterestResult{
		Principal:      principal,
		InterestEarned: round2(interest),
		FinalAmount:    round2(principal + interest),
	}
}

// CalculateCompoundInterest — сложные проценты с ежемесячной капитализацией
// для срочных вкладов: finalAmount = P * (1 + r/12/100)^term. Чистая функция.
func CalculateCompoundInterest(principal, annualRate float64, termMonths int) model.InterestResult {
	monthlyRate := annualRate / 12 / 100
	finalAmount := principal * math.Pow(1+monthlyRate, float64(termMonths))
	return model.InterestResult{
		Principal:      principal,
		InterestEarned: round2(finalAmount - principal),
		FinalAmount:    round2(finalAmount),
	}
}

// maturityAmount считает выплату при закрытии в срок по исходным условиям вклада
func maturityAmount(deposit *model.Deposit) float64 {
	if deposit.DepositType == model.DepositTypeFixed {
		return CalculateCompoundInterest(deposit.PrincipalAmount, deposit.InterestRate, deposit.TermMonths).FinalAmount
	}
	return CalculateSimpleInterest(deposit.PrincipalAmount, deposit.InterestRate, deposit.TermMonths).FinalAmount
}

type DepositService struct {
	depositRepo *repository.DepositRepository
	accountRepo *repository.AccountRepository
	processor   *TransactionService
	logger      *logrus.Logger
}

func NewDepositService(
	depositRepo *repository.DepositRepository,
	accountRepo *repository.AccountRepository,
	processor *TransactionService,
	logger *logrus.Logger,
) *DepositService {
	return &DepositService{
		depositRepo: depositRepo,
		accountRepo: accountRepo,
		processor:   processor,
		logger:      logger,
	}
}

// OpenDeposit открывает вклад: списание принципала со счета фондирования и
// запись о вкладе создаются в одной единице работы
func (s *DepositService) OpenDeposit(ctx context.Context, userID uuid.UUID, req model.OpenDepositRequest) (*model.Deposit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		s.logger.Warnf("Попытка открытия вклада с чужого счета: пользователь %s, владелец %s",
			userID, account.UserID)
		return nil, model.ErrForbidden
	}

	s.logger.Infof("Открытие вклада %s для пользователя %s: %.2f %s на %d мес. под %.2f%%",
		req.DepositType, userID, req.PrincipalAmount, account.Currency, req.TermMonths, req.InterestRate)

	db := s.depositRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	deposit := &model.Deposit{
		ID:              uuid.New(),
		UserID:          userID,
		AccountID:       &req.AccountID,
		DepositType:     req.DepositType,
		PrincipalAmount: req.PrincipalAmount,
		InterestRate:    req.InterestRate,
		TermMonths:      req.TermMonths,
		CurrentBalance:  req.PrincipalAmount,
		Status:          model.DepositStatusActive,
		IsAutoRenewal:   req.IsAutoRenewal,
		StartDate:       now,
		MaturityDate:    now.AddDate(0, req.TermMonths, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.processor.CreateTransactionTx(ctx, tx, model.CreateTransactionInput{
		FromAccountID:   &req.AccountID,
		TransactionType: model.TransactionTypeWithdrawal,
		Amount:          req.PrincipalAmount,
		Currency:        account.Currency,
		Description:     "deposit opening",
		Metadata:        model.Metadata{"deposit_id": deposit.ID.String()},
	}); err != nil {
		return nil, err
	}

	if err := s.depositRepo.CreateTx(ctx, tx, deposit); err != nil {
		s.logger.WithError(err).Error("Ошибка создания записи о вкладе")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.logger.Infof("Вклад %s открыт, дата погашения %s", deposit.ID,
		deposit.MaturityDate.Format("2006-01-02"))
	return deposit, nil
}

// AccrueInterest капитализирует месячные проценты по срочному вкладу.
// Гибкие и накопительные вклады не капитализируются до закрытия.
func (s *DepositService) AccrueInterest(ctx context.Context, depositID uuid.UUID) error {
	db := s.depositRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	deposit, err := s.depositRepo.GetByIDForUpdate(ctx, tx, depositID)
	if err != nil {
		return err
	}

	if deposit.Status != model.DepositStatusActive {
		return model.ErrDepositNotActive
	}
	if deposit.DepositType != model.DepositTypeFixed {
		return nil
	}

	monthlyRate := deposit.InterestRate / 12 / 100
	newBalance := deposit.CurrentBalance * (1 + monthlyRate)

	if err := s.depositRepo.UpdateBalanceTx(ctx, tx, depositID, newBalance); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.logger.Infof("Начислены проценты по вкладу %s: %.2f -> %.2f",
		depositID, deposit.CurrentBalance, newBalance)
	return nil
}

// AccrueAll начисляет месячные проценты по всем активным срочным вкладам,
// сбой по одному вкладу не блокирует остальные
func (s *DepositService) AccrueAll(ctx context.Context) error {
	deposits, err := s.depositRepo.GetActiveByType(ctx, model.DepositTypeFixed)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения срочных вкладов")
		return fmt.Errorf("ошибка получения вкладов: %w", err)
	}

	s.logger.Infof("Начисление процентов по %d срочным вкладам", len(deposits))
	for _, deposit := range deposits {
		if err := s.AccrueInterest(ctx, deposit.ID); err != nil {
			s.logger.WithError(err).Errorf("Ошибка начисления процентов по вкладу %s", deposit.ID)
			continue
		}
	}

	return nil
}

// payoutAmount определяет сумму возврата при закрытии вклада:
//   - досрочное закрытие срочного вклада теряет все начисленные проценты;
//   - досрочное закрытие гибкого/накопительного возвращает текущий остаток;
//   - закрытие в срок выплачивается по исходным условиям вклада.
func payoutAmount(deposit *model.Deposit, isEarly bool) float64 {
	if isEarly {
		if deposit.DepositType == model.DepositTypeFixed {
			return deposit.PrincipalAmount
		}
		return round2(deposit.CurrentBalance)
	}
	return maturityAmount(deposit)
}

// CloseDeposit закрывает вклад и возвращает средства на счет фондирования
// атомарно со сменой статуса
func (s *DepositService) CloseDeposit(ctx context.Context, depositID uuid.UUID, isEarly bool) (*model.Deposit, error) {
	db := s.depositRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	deposit, err := s.depositRepo.GetByIDForUpdate(ctx, tx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.Status != model.DepositStatusActive {
		return nil, model.ErrDepositNotActive
	}
	if deposit.AccountID == nil {
		return nil, model.ErrAccountNotFound
	}

	account, err := s.accountRepo.GetByID(ctx, *deposit.AccountID)
	if err != nil {
		return nil, err
	}

	payout := payoutAmount(deposit, isEarly)

	if _, err := s.processor.CreateTransactionTx(ctx, tx, model.CreateTransactionInput{
		ToAccountID:     deposit.AccountID,
		TransactionType: model.TransactionTypeDeposit,
		Amount:          payout,
		Currency:        account.Currency,
		Description:     "deposit closure",
		Metadata: model.Metadata{
			"deposit_id": deposit.ID.String(),
			"early":      fmt.Sprintf("%t", isEarly),
		},
	}); err != nil {
		return nil, err
	}

	if err := s.depositRepo.UpdateStatusTx(ctx, tx, depositID, model.DepositStatusClosed); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	deposit.Status = model.DepositStatusClosed
	s.logger.Infof("Вклад %s закрыт (%v), выплачено %.2f", depositID, isEarly, payout)
	return deposit, nil
}

// RenewDeposit продлевает вклад с автопролонгацией: итоговая сумма
// становится новым принципалом — проценты на проценты между циклами
func (s *DepositService) RenewDeposit(ctx context.Context, depositID uuid.UUID) (*model.Deposit, error) {
	db := s.depositRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	deposit, err := s.depositRepo.GetByIDForUpdate(ctx, tx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.Status != model.DepositStatusActive {
		return nil, model.ErrDepositNotActive
	}
	if !deposit.IsAutoRenewal {
		return nil, model.ErrNoAutoRenewal
	}
	if deposit.MaturityDate.After(time.Now()) {
		return nil, model.ErrNotMatured
	}

	newPrincipal := maturityAmount(deposit)
	now := time.Now()
	newMaturity := now.AddDate(0, deposit.TermMonths, 0)

	if err := s.depositRepo.RenewTx(ctx, tx, depositID, newPrincipal, now, newMaturity); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	deposit.PrincipalAmount = newPrincipal
	deposit.CurrentBalance = newPrincipal
	deposit.StartDate = now
	deposit.MaturityDate = newMaturity

	s.logger.Infof("Вклад %s продлен: новый принципал %.2f, погашение %s",
		depositID, newPrincipal, newMaturity.Format("2006-01-02"))
	return deposit, nil
}

// RunMaturitySweep — периодический проход по созревшим вкладам: каждый
// независимо продлевается или закрывается в срок; сбой по одному вкладу
// логируется и не останавливает обработку остальных
func (s *DepositService) RunMaturitySweep(ctx context.Context) error {
	matured, err := s.depositRepo.GetMatured(ctx, time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Ошибка выборки созревших вкладов")
		return fmt.Errorf("ошибка получения вкладов: %w", err)
	}

	s.logger.Infof("Найдено %d созревших вкладов", len(matured))
	for _, deposit := range matured {
		var err error
		if deposit.IsAutoRenewal {
			_, err = s.RenewDeposit(ctx, deposit.ID)
		} else {
			_, err = s.CloseDeposit(ctx, deposit.ID, false)
		}
		if err != nil {
			s.logger.WithError(err).Errorf("Ошибка обработки созревшего вклада %s", deposit.ID)
			continue
		}
	}

	return nil
}

func (s *DepositService) GetDepositByID(ctx context.Context, depositID uuid.UUID) (*model.Deposit, error) {
	return s.depositRepo.GetByID(ctx, depositID)
}

func (s *DepositService) GetUserDeposits(ctx context.Context, userID uuid.UUID) ([]model.Deposit, error) {
	deposits, err := s.depositRepo.GetUserDeposits(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения вкладов пользователя")
		return nil, fmt.Errorf("ошибка получения вкладов: %w", err)
	}
	return deposits, nil
}
