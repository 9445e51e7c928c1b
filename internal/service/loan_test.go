package service

import (
	"math"
	"testing"
)

func TestAmortize(t *testing.T) {
	result := Amortize(100000, 12, 12)

	if len(result.Schedule) != 12 {
		t.Fatalf("ожидалось 12 платежей, получено %d", len(result.Schedule))
	}

	// Аннуитет для 100000 под 12% на год
	if math.Abs(result.MonthlyPayment-8884.88) > 0.01 {
		t.Errorf("ежемесячный платеж: ожидалось 8884.88, получено %.2f", result.MonthlyPayment)
	}

	// Последний платеж обнуляет остаток точно
	last := result.Schedule[len(result.Schedule)-1]
	if last.RemainingBalance != 0 {
		t.Errorf("остаток после последнего платежа должен быть ровно 0, получено %v", last.RemainingBalance)
	}

	// Сумма долей принципала сходится к сумме кредита
	var totalPrincipal float64
	for _, entry := range result.Schedule {
		totalPrincipal += entry.Principal
	}
	if math.Abs(totalPrincipal-100000) > 0.02 {
		t.Errorf("сумма долей принципала: ожидалось ~100000, получено %.2f", totalPrincipal)
	}

	// Остаток строго убывает
	prev := math.Inf(1)
	for _, entry := range result.Schedule {
		if entry.RemainingBalance >= prev {
			t.Errorf("остаток должен убывать: месяц %d, %.2f -> %.2f",
				entry.Month, prev, entry.RemainingBalance)
		}
		prev = entry.RemainingBalance
	}

	if result.TotalInterest <= 0 {
		t.Errorf("переплата должна быть положительной, получено %.2f", result.TotalInterest)
	}
}

func TestAmortizeZeroRate(t *testing.T) {
	result := Amortize(12000, 0, 12)

	if result.MonthlyPayment != 1000 {
		t.Errorf("при нулевой ставке платеж равен P/n: ожидалось 1000, получено %.2f", result.MonthlyPayment)
	}
	if result.TotalInterest != 0 {
		t.Errorf("при нулевой ставке переплаты нет, получено %.2f", result.TotalInterest)
	}
	last := result.Schedule[len(result.Schedule)-1]
	if last.RemainingBalance != 0 {
		t.Errorf("остаток после последнего платежа должен быть ровно 0, получено %v", last.RemainingBalance)
	}
}

func TestAmortizeSingleMonth(t *testing.T) {
	result := Amortize(10000, 12, 1)

	if len(result.Schedule) != 1 {
		t.Fatalf("ожидался один платеж, получено %d", len(result.Schedule))
	}
	entry := result.Schedule[0]
	if entry.Principal != 10000 {
		t.Errorf("принципал единственного платежа: ожидалось 10000, получено %.2f", entry.Principal)
	}
	// Проценты за один месяц: 10000 * 1% = 100
	if math.Abs(entry.Interest-100) > 0.01 {
		t.Errorf("проценты за месяц: ожидалось 100, получено %.2f", entry.Interest)
	}
	if entry.RemainingBalance != 0 {
		t.Errorf("остаток должен быть ровно 0, получено %v", entry.RemainingBalance)
	}
}

func TestMonthlyAnnuityPayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		annualRate float64
		termMonths int
		want       float64
	}{
		{"год под 12%", 100000, 12, 12, 8884.88},
		{"нулевая ставка", 12000, 0, 12, 1000},
		{"полгода под 12%", 100000, 12, 6, 17254.84},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := round2(monthlyAnnuityPayment(tt.principal, tt.annualRate, tt.termMonths))
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("ожидалось %.2f, получено %.2f", tt.want, got)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.004, 1.00},
		{1.006, 1.01},
		{1.239, 1.24},
		{-2.678, -2.68},
		{8884.879, 8884.88},
		{0, 0},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v): ожидалось %v, получено %v", tt.in, tt.want, got)
		}
	}
}
