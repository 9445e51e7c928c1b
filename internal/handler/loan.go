package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/service"
)

// LoanHandler обрабатывает запросы, связанные с кредитами
type LoanHandler struct {
	loan   *service.LoanService
	logger *logrus.Logger
}

func NewLoanHandler(loan *service.LoanService, logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{
		loan:   loan,
		logger: logger,
	}
}

func (h *LoanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/quote", h.QuoteLoan).Methods("POST")
	router.HandleFunc("", h.CreateLoan).Methods("POST")
	router.HandleFunc("", h.GetUserLoans).Methods("GET")
	router.HandleFunc("/pay", h.MakePayment).Methods("POST")
	router.HandleFunc("/{loanId}", h.GetLoan).Methods("GET")
	router.HandleFunc("/{loanId}/approve", h.ApproveLoan).Methods("POST")
	router.HandleFunc("/{loanId}/reject", h.RejectLoan).Methods("POST")
	router.HandleFunc("/{loanId}/schedule", h.GetSchedule).Methods("GET")
	router.HandleFunc("/{loanId}/early-repayment", h.EarlyRepayment).Methods("POST")
}

func loanIDFromPath(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	return uuid.Parse(vars["loanId"])
}

// QuoteLoan возвращает предварительный график платежей без создания заявки
func (h *LoanHandler) QuoteLoan(w http.ResponseWriter, r *http.Request) {
	var req model.LoanQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.loan.QuoteLoan(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateLoan регистрирует заявку на кредит
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать заявку на кредит")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	loan, err := h.loan.CreateLoanApplication(r.Context(), userID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать заявку на кредит")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

// GetUserLoans возвращает кредиты пользователя
func (h *LoanHandler) GetUserLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	loans, err := h.loan.GetUserLoans(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить кредиты пользователя")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loans)
}

// GetLoan возвращает кредит по идентификатору
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := loanIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор кредита", http.StatusBadRequest)
		return
	}

	loan, err := h.loan.GetLoanByID(r.Context(), loanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

// ApproveLoan одобряет заявку и выдает кредит на указанный счет
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := loanIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор кредита", http.StatusBadRequest)
		return
	}

	var req model.ApproveLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	loan, err := h.loan.ApproveLoan(r.Context(), loanID, req.AccountID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось одобрить кредит")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

// RejectLoan отклоняет заявку на кредит
func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := loanIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор кредита", http.StatusBadRequest)
		return
	}

	if err := h.loan.RejectLoan(r.Context(), loanID); err != nil {
		h.logger.WithError(err).Error("Не удалось отклонить заявку на кредит")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetSchedule возвращает график платежей по кредиту
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := loanIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор кредита", http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	schedule, err := h.loan.GetPaymentSchedule(r.Context(), loanID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// MakePayment вносит очередной платеж по кредиту
func (h *LoanHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req model.LoanPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.loan.MakeLoanPayment(r.Context(), req.LoanID, req.AccountID, req.Amount); err != nil {
		h.logger.WithError(err).Error("Не удалось внести платеж по кредиту")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// EarlyRepayment выполняет полное досрочное погашение кредита
func (h *LoanHandler) EarlyRepayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := loanIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор кредита", http.StatusBadRequest)
		return
	}

	var req model.ApproveLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.loan.EarlyRepayment(r.Context(), loanID, req.AccountID); err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить досрочное погашение")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
