package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/repository"
)

type AnalyticService struct {
	transactionRepo *repository.TransactionRepository
	loanRepo        *repository.LoanRepository
	accountRepo     *repository.AccountRepository
	logger          *logrus.Logger
}

func NewAnalyticService(
	transactionRepo *repository.TransactionRepository,
	loanRepo *repository.LoanRepository,
	accountRepo *repository.AccountRepository,
	logger *logrus.Logger,
) *AnalyticService {
	return &AnalyticService{
		transactionRepo: transactionRepo,
		loanRepo:        loanRepo,
		accountRepo:     accountRepo,
		logger:          logger,
	}
}

// GetFinancialStats возвращает статистику доходов/расходов пользователя
// за период. Переводы между собственными счетами не учитываются.
func (s *AnalyticService) GetFinancialStats(
	ctx context.Context,
	userID uuid.UUID,
	startDate, endDate time.Time,
) (*model.FinancialStats, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
	}).Debug("Расчет финансовой статистики")

	if startDate.After(endDate) {
		s.logger.Warn("Дата начала периода позже даты окончания")
		return nil, fmt.Errorf("дата начала не может быть позже даты окончания")
	}

	accounts, err := s.accountRepo.GetUserAccounts(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения счетов пользователя")
		return nil, fmt.Errorf("не удалось получить счета пользователя: %w", err)
	}

	own := make(map[uuid.UUID]bool, len(accounts))
	for _, account := range accounts {
		own[account.ID] = true
	}

	stats := &model.FinancialStats{
		ByType: make(map[model.TransactionType]model.TypeStats),
	}
	seen := make(map[uuid.UUID]bool)

	for _, account := range accounts {
		transactions, err := s.transactionRepo.GetByAccountAndPeriod(ctx, account.ID, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("не удалось получить транзакции: %w", err)
		}

		for _, t := range transactions {
			if t.Status != model.TransactionStatusCompleted || seen[t.ID] {
				continue
			}
			seen[t.ID] = true

			fromOwn := t.FromAccountID != nil && own[*t.FromAccountID]
			toOwn := t.ToAccountID != nil && own[*t.ToAccountID]
			if fromOwn && toOwn {
				// Перемещение между своими счетами — не доход и не расход
				continue
			}

			typeStats := stats.ByType[t.TransactionType]
			typeStats.Count++
			if toOwn {
				stats.TotalIncome += t.Amount
				typeStats.Income += t.Amount
			}
			if fromOwn {
				stats.TotalExpenses += t.Amount + t.Fee
				typeStats.Expenses += t.Amount + t.Fee
			}
			stats.ByType[t.TransactionType] = typeStats
		}
	}

	stats.TotalIncome = round2(stats.TotalIncome)
	stats.TotalExpenses = round2(stats.TotalExpenses)
	stats.NetFlow = round2(stats.TotalIncome - stats.TotalExpenses)

	return stats, nil
}

// GetLoanLoad возвращает кредитную нагрузку пользователя по активным кредитам
func (s *AnalyticService) GetLoanLoad(ctx context.Context, userID uuid.UUID) (*model.LoanLoad, error) {
	loans, err := s.loanRepo.GetActiveUserLoans(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения активных кредитов")
		return nil, fmt.Errorf("не удалось получить кредиты: %w", err)
	}

	load := &model.LoanLoad{ActiveLoans: len(loans)}
	for _, loan := range loans {
		load.TotalDebt += loan.RemainingBalance
		load.MonthlyPayments += loan.MonthlyPayment
	}
	load.TotalDebt = round2(load.TotalDebt)
	load.MonthlyPayments = round2(load.MonthlyPayments)

	return load, nil
}
