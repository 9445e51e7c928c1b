package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/repository"
)

// round2 округляет денежную величину до копеек. Применяется только на
// границе вывода: промежуточные вычисления идут без округления, чтобы
// погрешность не накапливалась.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// monthlyAnnuityPayment рассчитывает аннуитетный платеж.
// При нулевой ставке платеж вырождается в равные доли принципала.
func monthlyAnnuityPayment(principal, annualRate float64, termMonths int) float64 {
	monthlyRate := annualRate / 12 / 100
	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}
	pow := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * pow / (pow - 1)
}

// Amortize строит полный аннуитетный график: чистая функция без I/O,
// используется и для мгновенных расчетов, и для графика выдаваемого кредита.
// Последний платеж поглощает погрешность округления и обнуляет остаток точно.
func Amortize(principal, annualRate float64, termMonths int) model.AmortizationResult {
	payment := monthlyAnnuityPayment(principal, annualRate, termMonths)
	monthlyRate := annualRate / 12 / 100

	schedule := make([]model.AmortizationEntry, 0, termMonths)
	remaining := principal
	var totalInterest float64

	for month := 1; month <= termMonths; month++ {
		interest := remaining * monthlyRate
		principalPart := payment - interest
		if month == termMonths {
			// Корректировка последнего платежа: остаток списывается целиком
			principalPart = remaining
		}
		remaining -= principalPart
		totalInterest += interest

		schedule = append(schedule, model.AmortizationEntry{
			Month:            month,
			Payment:          round2(principalPart + interest),
			Principal:        round2(principalPart),
			Interest:         round2(interest),
			RemainingBalance: round2(remaining),
		})
	}

	return model.AmortizationResult{
		MonthlyPayment: round2(payment),
		TotalPayment:   round2(float64(termMonths-1)*payment + schedule[termMonths-1].Payment),
		TotalInterest:  round2(totalInterest),
		Schedule:       schedule,
	}
}

// Штраф за просроченный платеж по графику
const overduePenaltyRate = 0.1

// Кредит уходит в дефолт после стольких просроченных платежей
const defaultOverdueThreshold = 3

type LoanService struct {
	loanRepo    *repository.LoanRepository
	accountRepo *repository.AccountRepository
	processor   *TransactionService
	keyRate     *KeyRateClient
	margin      float64
	defaultRate float64
	logger      *logrus.Logger
}

func NewLoanService(
	loanRepo *repository.LoanRepository,
	accountRepo *repository.AccountRepository,
	processor *TransactionService,
	keyRate *KeyRateClient,
	margin float64,
	defaultRate float64,
	logger *logrus.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		processor:   processor,
		keyRate:     keyRate,
		margin:      margin,
		defaultRate: defaultRate,
		logger:      logger,
	}
}

// CreateLoanApplication регистрирует заявку на кредит в статусе pending.
// Если ставка не задана, она выводится из ключевой ставки плюс маржа.
func (s *LoanService) CreateLoanApplication(ctx context.Context, userID uuid.UUID, req model.CreateLoanRequest) (*model.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.Infof("Заявка на кредит для пользователя %s: сумма %.2f, срок %d мес.",
		userID, req.PrincipalAmount, req.TermMonths)

	interestRate := req.InterestRate
	if interestRate == 0 {
		rate, err := s.keyRate.GetKeyRate(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Не удалось получить ключевую ставку, используется значение по умолчанию")
			rate = s.defaultRate
		}
		interestRate = rate + s.margin
		s.logger.Infof("Рассчитанная ставка по кредиту: %.2f%% (ключевая: %.2f%%, маржа: %.2f%%)",
			interestRate, rate, s.margin)
	}

	monthlyPayment := round2(monthlyAnnuityPayment(req.PrincipalAmount, interestRate, req.TermMonths))

	now := time.Now()
	loan := &model.Loan{
		ID:               uuid.New(),
		UserID:           userID,
		LoanType:         req.LoanType,
		PrincipalAmount:  req.PrincipalAmount,
		InterestRate:     interestRate,
		TermMonths:       req.TermMonths,
		MonthlyPayment:   monthlyPayment,
		RemainingBalance: req.PrincipalAmount,
		Status:           model.LoanStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		s.logger.WithError(err).Error("Ошибка создания заявки на кредит")
		return nil, fmt.Errorf("ошибка создания кредита: %w", err)
	}

	return loan, nil
}

// QuoteLoan рассчитывает предварительный график платежей без создания заявки.
// Ставка резолвится так же, как при подаче заявки.
func (s *LoanService) QuoteLoan(ctx context.Context, req model.LoanQuoteRequest) (*model.AmortizationResult, error) {
	if req.PrincipalAmount <= 0 {
		return nil, model.ErrNonPositiveAmount
	}
	if req.TermMonths <= 0 {
		return nil, model.ErrInvalidTerm
	}

	interestRate := req.InterestRate
	if interestRate == 0 {
		rate, err := s.keyRate.GetKeyRate(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Не удалось получить ключевую ставку, используется значение по умолчанию")
			rate = s.defaultRate
		}
		interestRate = rate + s.margin
	}

	result := Amortize(req.PrincipalAmount, interestRate, req.TermMonths)
	return &result, nil
}

func (s *LoanService) RejectLoan(ctx context.Context, loanID uuid.UUID) error {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return err
	}
	if loan.Status != model.LoanStatusPending {
		return model.ErrLoanNotPending
	}

	s.logger.Infof("Отклонение заявки на кредит %s", loanID)
	return s.loanRepo.UpdateStatus(ctx, loanID, model.LoanStatusRejected)
}

// ApproveLoan выдает кредит: зачисление принципала, фиксация дат и
// сохранение полного графика платежей происходят в одной единице работы —
// кредит не может стать active без фактического движения денег
func (s *LoanService) ApproveLoan(ctx context.Context, loanID, accountID uuid.UUID) (*model.Loan, error) {
	db := s.loanRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanStatusPending {
		return nil, model.ErrLoanNotPending
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != loan.UserID {
		s.logger.Warnf("Попытка выдачи кредита %s на чужой счет %s", loanID, accountID)
		return nil, model.ErrForbidden
	}

	// Зачисление принципала через процессор транзакций
	_, err = s.processor.CreateTransactionTx(ctx, tx, model.CreateTransactionInput{
		ToAccountID:     &accountID,
		TransactionType: model.TransactionTypeDeposit,
		Amount:          loan.PrincipalAmount,
		Currency:        account.Currency,
		Description:     "loan disbursement",
		Metadata:        model.Metadata{"loan_id": loan.ID.String()},
	})
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка зачисления кредитных средств на счет %s", accountID)
		return nil, err
	}

	now := time.Now()
	maturity := now.AddDate(0, loan.TermMonths, 0)
	nextPayment := now.AddDate(0, 1, 0)

	loan.AccountID = &accountID
	loan.Status = model.LoanStatusActive
	loan.DisbursedAt = &now
	loan.MaturityDate = &maturity
	loan.NextPaymentDate = &nextPayment

	if err := s.loanRepo.UpdateDisbursedTx(ctx, tx, loan); err != nil {
		return nil, err
	}

	// Привязываем график из аннуитетного расчета
	result := Amortize(loan.PrincipalAmount, loan.InterestRate, loan.TermMonths)
	for _, entry := range result.Schedule {
		payment := &model.LoanPayment{
			ID:            uuid.New(),
			LoanID:        loan.ID,
			PaymentNumber: entry.Month,
			DueDate:       now.AddDate(0, entry.Month, 0),
			Principal:     entry.Principal,
			Interest:      entry.Interest,
			Amount:        entry.Payment,
			Status:        model.LoanPaymentStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.loanRepo.CreatePaymentTx(ctx, tx, payment); err != nil {
			s.logger.WithError(err).Errorf("Ошибка сохранения платежа №%d графика", entry.Month)
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.logger.Infof("Кредит %s выдан на счет %s, %d платежей в графике",
		loan.ID, accountID, len(result.Schedule))
	return loan, nil
}

// MakeLoanPayment проводит платеж по кредиту: списание со счета плательщика,
// отметка самой ранней неоплаченной строки графика и уменьшение остатка долга —
// одной атомарной единицей
func (s *LoanService) MakeLoanPayment(ctx context.Context, loanID, accountID uuid.UUID, amount float64) error {
	if amount <= 0 {
		return model.ErrNonPositiveAmount
	}

	db := s.loanRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return err
	}
	if loan.Status != model.LoanStatusActive {
		return model.ErrLoanNotActive
	}

	payment, err := s.loanRepo.GetOldestUnpaidTx(ctx, tx, loanID)
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("нет ожидающих платежей по кредиту %s", loanID)
	}

	// Просроченная строка собирается со штрафом, штраф идет комиссией транзакции
	var fee float64
	if payment.Status == model.LoanPaymentStatusOverdue {
		fee = round2(payment.Amount * overduePenaltyRate)
	}

	due := payment.Amount + fee
	if amount < due {
		s.logger.Warnf("Недостаточная сумма платежа по кредиту %s: внесено %.2f, требуется %.2f",
			loanID, amount, due)
		return fmt.Errorf("сумма платежа меньше требуемой %.2f", due)
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if _, err := s.processor.CreateTransactionTx(ctx, tx, model.CreateTransactionInput{
		FromAccountID:   &accountID,
		TransactionType: model.TransactionTypePayment,
		Amount:          payment.Amount,
		Currency:        account.Currency,
		Fee:             fee,
		Description:     "loan payment",
		Metadata: model.Metadata{
			"loan_id":    loan.ID.String(),
			"payment_id": payment.ID.String(),
		},
	}); err != nil {
		return err
	}

	now := time.Now()
	if err := s.loanRepo.UpdatePaymentStatusTx(ctx, tx, payment.ID, model.LoanPaymentStatusPaid, &now); err != nil {
		return err
	}

	remaining := loan.RemainingBalance - payment.Amount
	if remaining < 0 {
		remaining = 0
	}

	status := loan.Status
	var nextPaymentDate *time.Time
	if remaining == 0 {
		status = model.LoanStatusPaidOff
	} else {
		next, err := s.loanRepo.GetNextPendingAfterTx(ctx, tx, loanID, payment.PaymentNumber)
		if err != nil {
			return err
		}
		if next != nil {
			nextPaymentDate = &next.DueDate
		}
	}

	if err := s.loanRepo.UpdateBalanceAndStatusTx(ctx, tx, loanID, remaining, status, nextPaymentDate); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	if status == model.LoanStatusPaidOff {
		s.logger.Infof("Кредит %s полностью погашен", loanID)
	} else {
		s.logger.Infof("Платеж №%d по кредиту %s проведен, остаток %.2f",
			payment.PaymentNumber, loanID, remaining)
	}
	return nil
}

// EarlyRepayment гасит кредит досрочно: весь остаток списывается одним
// движением, оставшиеся строки графика отменяются
func (s *LoanService) EarlyRepayment(ctx context.Context, loanID, accountID uuid.UUID) error {
	db := s.loanRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return err
	}
	if loan.Status != model.LoanStatusActive {
		return model.ErrLoanNotActive
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if _, err := s.processor.CreateTransactionTx(ctx, tx, model.CreateTransactionInput{
		FromAccountID:   &accountID,
		TransactionType: model.TransactionTypePayment,
		Amount:          loan.RemainingBalance,
		Currency:        account.Currency,
		Description:     "loan early repayment",
		Metadata:        model.Metadata{"loan_id": loan.ID.String()},
	}); err != nil {
		return err
	}

	if err := s.loanRepo.CancelPendingTx(ctx, tx, loanID); err != nil {
		return err
	}

	if err := s.loanRepo.UpdateBalanceAndStatusTx(ctx, tx, loanID, 0, model.LoanStatusPaidOff, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	s.logger.Infof("Кредит %s погашен досрочно", loanID)
	return nil
}

// ProcessDuePayments — регулярная обработка наступивших платежей: при
// достаточном остатке платеж списывается автоматически, иначе строка
// помечается просроченной. Сбой по одному кредиту не останавливает остальные.
func (s *LoanService) ProcessDuePayments(ctx context.Context) error {
	duePayments, err := s.loanRepo.GetDuePayments(ctx, time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения наступивших платежей")
		return fmt.Errorf("ошибка получения платежей: %w", err)
	}

	s.logger.Infof("Найдено %d платежей для обработки", len(duePayments))
	for _, payment := range duePayments {
		if err := s.processDuePayment(ctx, payment); err != nil {
			s.logger.WithError(err).Errorf("Ошибка обработки платежа %s", payment.ID)
			continue
		}
	}

	return nil
}

func (s *LoanService) processDuePayment(ctx context.Context, payment model.LoanPayment) error {
	loan, err := s.loanRepo.GetByID(ctx, payment.LoanID)
	if err != nil {
		return err
	}
	if loan.Status != model.LoanStatusActive || loan.AccountID == nil {
		return nil
	}

	// Суммы хватает и на строку с просрочкой: списывается всегда ровно
	// строка графика плюс штраф, аргумент — лишь нижняя граница
	err = s.MakeLoanPayment(ctx, loan.ID, *loan.AccountID, round2(payment.Amount*(1+overduePenaltyRate)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrInsufficientFunds) {
		return err
	}

	// Средств нет — платеж уходит в просрочку
	s.logger.Warnf("Недостаточно средств для платежа %s по кредиту %s, платеж просрочен",
		payment.ID, loan.ID)

	db := s.loanRepo.GetDB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := s.loanRepo.UpdatePaymentStatusTx(ctx, tx, payment.ID, model.LoanPaymentStatusOverdue, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения операции: %w", err)
	}

	overdue, err := s.loanRepo.CountOverdue(ctx, loan.ID)
	if err != nil {
		return err
	}
	if overdue >= defaultOverdueThreshold {
		s.logger.Warnf("Кредит %s переведен в статус defaulted (%d просроченных платежей)", loan.ID, overdue)
		return s.loanRepo.UpdateStatus(ctx, loan.ID, model.LoanStatusDefaulted)
	}

	return nil
}

func (s *LoanService) GetLoanByID(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

func (s *LoanService) GetUserLoans(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	loans, err := s.loanRepo.GetUserLoans(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения кредитов пользователя")
		return nil, fmt.Errorf("ошибка получения кредитов: %w", err)
	}
	return loans, nil
}

// GetPaymentSchedule возвращает график платежей с проверкой владельца
func (s *LoanService) GetPaymentSchedule(ctx context.Context, loanID, userID uuid.UUID) ([]model.LoanPayment, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		s.logger.Warnf("Попытка получения графика чужого кредита: пользователь %s, владелец %s",
			userID, loan.UserID)
		return nil, model.ErrForbidden
	}

	return s.loanRepo.GetSchedule(ctx, loanID)
}
