package service

import (
	"math"
	"testing"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
)

func TestCalculateSimpleInterest(t *testing.T) {
	tests := []struct {
		name         string
		principal    float64
		annualRate   float64
		termMonths   int
		wantInterest float64
		wantFinal    float64
	}{
		{"год под 10%", 100000, 10, 12, 10000, 110000},
		{"полгода под 8%", 50000, 8, 6, 2000, 52000},
		{"один месяц под 12%", 100000, 12, 1, 1000, 101000},
		{"нулевая ставка", 100000, 0, 12, 0, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSimpleInterest(tt.principal, tt.annualRate, tt.termMonths)
			if math.Abs(got.InterestEarned-tt.wantInterest) > 0.01 {
				t.Errorf("проценты: ожидалось %.2f, получено %.2f", tt.wantInterest, got.InterestEarned)
			}
			if math.Abs(got.FinalAmount-tt.wantFinal) > 0.01 {
				t.Errorf("итоговая сумма: ожидалось %.2f, получено %.2f", tt.wantFinal, got.FinalAmount)
			}
			if got.Principal != tt.principal {
				t.Errorf("принципал: ожидалось %.2f, получено %.2f", tt.principal, got.Principal)
			}
		})
	}
}

func TestCalculateCompoundInterest(t *testing.T) {
	// 100000 под 12% на год с ежемесячной капитализацией:
	// 100000 * 1.01^12 = 112682.50
	got := CalculateCompoundInterest(100000, 12, 12)
	if math.Abs(got.FinalAmount-112682.50) > 0.01 {
		t.Errorf("итоговая сумма: ожидалось 112682.50, получено %.2f", got.FinalAmount)
	}
	if math.Abs(got.InterestEarned-12682.50) > 0.01 {
		t.Errorf("проценты: ожидалось 12682.50, получено %.2f", got.InterestEarned)
	}

	// Капитализация всегда доходнее простых процентов при положительной ставке
	simple := CalculateSimpleInterest(100000, 12, 12)
	if got.FinalAmount <= simple.FinalAmount {
		t.Errorf("сложные проценты должны превышать простые: %.2f <= %.2f",
			got.FinalAmount, simple.FinalAmount)
	}
}

func TestCalculateCompoundInterestZeroRate(t *testing.T) {
	got := CalculateCompoundInterest(100000, 0, 12)
	if got.InterestEarned != 0 {
		t.Errorf("при нулевой ставке процентов нет, получено %.2f", got.InterestEarned)
	}
	if got.FinalAmount != 100000 {
		t.Errorf("итоговая сумма: ожидалось 100000, получено %.2f", got.FinalAmount)
	}
}

func TestPayoutAmount(t *testing.T) {
	fixed := &model.Deposit{
		DepositType:     model.DepositTypeFixed,
		PrincipalAmount: 100000,
		InterestRate:    12,
		TermMonths:      12,
		CurrentBalance:  105000,
	}
	savings := &model.Deposit{
		DepositType:     model.DepositTypeSavings,
		PrincipalAmount: 100000,
		InterestRate:    10,
		TermMonths:      12,
		CurrentBalance:  103000,
	}

	tests := []struct {
		name    string
		deposit *model.Deposit
		isEarly bool
		want    float64
	}{
		{"досрочное закрытие срочного — проценты сгорают", fixed, true, 100000},
		{"срочный в срок — капитализация от исходных условий", fixed, false, 112682.50},
		{"досрочное закрытие накопительного — текущий баланс", savings, true, 103000},
		{"накопительный в срок — простые проценты", savings, false, 110000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := payoutAmount(tt.deposit, tt.isEarly)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("ожидалось %.2f, получено %.2f", tt.want, got)
			}
		})
	}
}
