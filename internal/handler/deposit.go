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

// DepositHandler обрабатывает запросы, связанные с вкладами
type DepositHandler struct {
	deposit *service.DepositService
	logger  *logrus.Logger
}

func NewDepositHandler(deposit *service.DepositService, logger *logrus.Logger) *DepositHandler {
	return &DepositHandler{
		deposit: deposit,
		logger:  logger,
	}
}

func (h *DepositHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/quote", h.QuoteDeposit).Methods("POST")
	router.HandleFunc("", h.OpenDeposit).Methods("POST")
	router.HandleFunc("", h.GetUserDeposits).Methods("GET")
	router.HandleFunc("/{depositId}", h.GetDeposit).Methods("GET")
	router.HandleFunc("/{depositId}/close", h.CloseDeposit).Methods("POST")
	router.HandleFunc("/{depositId}/renew", h.RenewDeposit).Methods("POST")
}

func depositIDFromPath(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	return uuid.Parse(vars["depositId"])
}

// QuoteDeposit рассчитывает доходность вклада без его открытия
func (h *DepositHandler) QuoteDeposit(w http.ResponseWriter, r *http.Request) {
	var req model.DepositQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if req.PrincipalAmount <= 0 {
		writeServiceError(w, model.ErrNonPositiveAmount)
		return
	}
	if req.TermMonths <= 0 {
		writeServiceError(w, model.ErrInvalidTerm)
		return
	}

	var result model.InterestResult
	switch req.DepositType {
	case model.DepositTypeFixed:
		result = service.CalculateCompoundInterest(req.PrincipalAmount, req.InterestRate, req.TermMonths)
	case model.DepositTypeFlexible, model.DepositTypeSavings:
		result = service.CalculateSimpleInterest(req.PrincipalAmount, req.InterestRate, req.TermMonths)
	default:
		writeServiceError(w, model.ErrInvalidDepositType)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// OpenDeposit открывает вклад, списывая сумму с указанного счета
func (h *DepositHandler) OpenDeposit(w http.ResponseWriter, r *http.Request) {
	var req model.OpenDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на открытие вклада")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	deposit, err := h.deposit.OpenDeposit(r.Context(), userID, req)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось открыть вклад")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deposit)
}

// GetUserDeposits возвращает вклады пользователя
func (h *DepositHandler) GetUserDeposits(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	deposits, err := h.deposit.GetUserDeposits(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить вклады пользователя")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deposits)
}

// GetDeposit возвращает вклад по идентификатору
func (h *DepositHandler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	depositID, err := depositIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор вклада", http.StatusBadRequest)
		return
	}

	deposit, err := h.deposit.GetDepositByID(r.Context(), depositID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deposit)
}

// CloseDeposit закрывает вклад и выплачивает средства на счет
func (h *DepositHandler) CloseDeposit(w http.ResponseWriter, r *http.Request) {
	depositID, err := depositIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор вклада", http.StatusBadRequest)
		return
	}

	var req model.CloseDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	deposit, err := h.deposit.CloseDeposit(r.Context(), depositID, req.IsEarly)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось закрыть вклад")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deposit)
}

// RenewDeposit продлевает вклад на новый срок с капитализацией процентов
func (h *DepositHandler) RenewDeposit(w http.ResponseWriter, r *http.Request) {
	depositID, err := depositIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор вклада", http.StatusBadRequest)
		return
	}

	deposit, err := h.deposit.RenewDeposit(r.Context(), depositID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось продлить вклад")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deposit)
}
