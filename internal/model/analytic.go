package model

import "time"

// AnalyticsRequest — запрос на получение статистики за период
type AnalyticsRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// FinancialStats — статистика по доходам/расходам пользователя
type FinancialStats struct {
	TotalIncome   float64                       `json:"total_income"`
	TotalExpenses float64                       `json:"total_expenses"`
	NetFlow       float64                       `json:"net_flow"`
	ByType        map[TransactionType]TypeStats `json:"by_type"`
}

// TypeStats — разбивка по типам транзакций
type TypeStats struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Count    int     `json:"count"`
}

// LoanLoad — кредитная нагрузка пользователя
type LoanLoad struct {
	ActiveLoans     int     `json:"active_loans"`
	TotalDebt       float64 `json:"total_debt"`
	MonthlyPayments float64 `json:"monthly_payments"`
}
