package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCreateAccountRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateAccountRequest
		wantErr error
	}{
		{"текущий счет", CreateAccountRequest{AccountType: AccountTypeChecking, Currency: "KZT"}, nil},
		{"кредитный счет", CreateAccountRequest{AccountType: AccountTypeCredit, Currency: "USD"}, nil},
		{"неизвестный тип", CreateAccountRequest{AccountType: "brokerage", Currency: "KZT"}, ErrInvalidAccountType},
		{"пустая валюта", CreateAccountRequest{AccountType: AccountTypeChecking, Currency: ""}, ErrInvalidCurrency},
		{"длинная валюта", CreateAccountRequest{AccountType: AccountTypeChecking, Currency: "TENGE"}, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ожидалась ошибка %v, получено %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateTransactionInputValidate(t *testing.T) {
	from := uuid.New()
	to := uuid.New()

	tests := []struct {
		name    string
		input   CreateTransactionInput
		wantErr error
	}{
		{
			"перевод между счетами",
			CreateTransactionInput{FromAccountID: &from, ToAccountID: &to, TransactionType: TransactionTypeTransfer, Amount: 100},
			nil,
		},
		{
			"зачисление без счета-источника",
			CreateTransactionInput{ToAccountID: &to, TransactionType: TransactionTypeDeposit, Amount: 100},
			nil,
		},
		{
			"списание без счета-получателя",
			CreateTransactionInput{FromAccountID: &from, TransactionType: TransactionTypeWithdrawal, Amount: 100},
			nil,
		},
		{
			"оба счета отсутствуют",
			CreateTransactionInput{TransactionType: TransactionTypeTransfer, Amount: 100},
			ErrNoAccounts,
		},
		{
			"нулевая сумма",
			CreateTransactionInput{FromAccountID: &from, ToAccountID: &to, TransactionType: TransactionTypeTransfer, Amount: 0},
			ErrNonPositiveAmount,
		},
		{
			"отрицательная сумма",
			CreateTransactionInput{FromAccountID: &from, ToAccountID: &to, TransactionType: TransactionTypeTransfer, Amount: -50},
			ErrNonPositiveAmount,
		},
		{
			"неизвестный тип",
			CreateTransactionInput{FromAccountID: &from, TransactionType: "lottery", Amount: 100},
			ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ожидалась ошибка %v, получено %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateLoanRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateLoanRequest
		wantErr error
	}{
		{"обычная заявка", CreateLoanRequest{PrincipalAmount: 100000, InterestRate: 12, TermMonths: 12}, nil},
		{"ставка от ключевой", CreateLoanRequest{PrincipalAmount: 100000, InterestRate: 0, TermMonths: 12}, nil},
		{"нулевая сумма", CreateLoanRequest{PrincipalAmount: 0, TermMonths: 12}, ErrNonPositiveAmount},
		{"срок меньше минимального", CreateLoanRequest{PrincipalAmount: 100000, TermMonths: 2}, ErrInvalidTerm},
		{"срок больше максимального", CreateLoanRequest{PrincipalAmount: 100000, TermMonths: 121}, ErrInvalidTerm},
		{"отрицательная ставка", CreateLoanRequest{PrincipalAmount: 100000, InterestRate: -1, TermMonths: 12}, ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ожидалась ошибка %v, получено %v", tt.wantErr, err)
			}
		})
	}
}

func TestOpenDepositRequestValidate(t *testing.T) {
	valid := OpenDepositRequest{
		AccountID:       uuid.New(),
		DepositType:     DepositTypeFixed,
		PrincipalAmount: 100000,
		InterestRate:    14,
		TermMonths:      12,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("корректный запрос не должен давать ошибку, получено %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(r *OpenDepositRequest)
		wantErr error
	}{
		{"неизвестный тип вклада", func(r *OpenDepositRequest) { r.DepositType = "pension" }, ErrInvalidDepositType},
		{"нулевая сумма", func(r *OpenDepositRequest) { r.PrincipalAmount = 0 }, ErrNonPositiveAmount},
		{"нулевая ставка", func(r *OpenDepositRequest) { r.InterestRate = 0 }, ErrInvalidRate},
		{"нулевой срок", func(r *OpenDepositRequest) { r.TermMonths = 0 }, ErrInvalidTerm},
		{"срок больше максимального", func(r *OpenDepositRequest) { r.TermMonths = 61 }, ErrInvalidTerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if err := req.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("ожидалась ошибка %v, получено %v", tt.wantErr, err)
			}
		})
	}
}

func TestMetadataValueScan(t *testing.T) {
	t.Run("nil остается nil", func(t *testing.T) {
		var m Metadata
		v, err := m.Value()
		if err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
		if v != nil {
			t.Errorf("ожидалось nil значение, получено %v", v)
		}

		var scanned Metadata
		if err := scanned.Scan(nil); err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
		if scanned != nil {
			t.Errorf("ожидалось nil, получено %v", scanned)
		}
	})

	t.Run("атрибуты переживают запись и чтение", func(t *testing.T) {
		m := Metadata{"loan_id": "abc", "category": "loan_disbursement"}
		v, err := m.Value()
		if err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}

		var scanned Metadata
		if err := scanned.Scan(v); err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
		if len(scanned) != 2 || scanned["loan_id"] != "abc" || scanned["category"] != "loan_disbursement" {
			t.Errorf("атрибуты искажены: %v", scanned)
		}
	})

	t.Run("неподдерживаемый тип", func(t *testing.T) {
		var m Metadata
		if err := m.Scan(42); err == nil {
			t.Error("ожидалась ошибка для нестрокового источника")
		}
	})
}
