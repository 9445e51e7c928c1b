package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
	"github.com/pixel-yerzat/banking-superapp/internal/service"
)

// AccountHandler обрабатывает запросы, связанные со счетами
type AccountHandler struct {
	ledger      *service.LedgerService
	transaction *service.TransactionService
	logger      *logrus.Logger
}

func NewAccountHandler(ledger *service.LedgerService, transaction *service.TransactionService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{
		ledger:      ledger,
		transaction: transaction,
		logger:      logger,
	}
}

// RegisterRoutes регистрирует маршруты для работы со счетами
func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.CreateAccount).Methods("POST")
	router.HandleFunc("", h.GetUserAccounts).Methods("GET")
	router.HandleFunc("/{accountId}/balance", h.GetBalance).Methods("GET")
	router.HandleFunc("/{accountId}/history", h.GetHistory).Methods("GET")
	router.HandleFunc("/{accountId}/block", h.BlockAccount).Methods("POST")
	router.HandleFunc("/{accountId}/unblock", h.UnblockAccount).Methods("POST")
	router.HandleFunc("/{accountId}/close", h.CloseAccount).Methods("POST")
}

// CreateAccount обрабатывает запрос на создание нового счета
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на создание счета")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	account, err := h.ledger.CreateAccount(r.Context(), userID, req.AccountType, req.Currency)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось создать счет")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// GetUserAccounts возвращает счета пользователя
func (h *AccountHandler) GetUserAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	accounts, err := h.ledger.GetUserAccounts(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить счета пользователя")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) accountIDFromPath(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	return uuid.Parse(vars["accountId"])
}

// GetBalance возвращает текущий баланс счета
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// GetHistory возвращает транзакции по счету за период
func (h *AccountHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, -1, 0)
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		if startDate, err = time.Parse("2006-01-02", raw); err != nil {
			http.Error(w, "Неверный формат start_date", http.StatusBadRequest)
			return
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		if endDate, err = time.Parse("2006-01-02", raw); err != nil {
			http.Error(w, "Неверный формат end_date", http.StatusBadRequest)
			return
		}
	}

	transactions, err := h.transaction.GetAccountHistory(r.Context(), accountID, startDate, endDate)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось получить историю счета")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactions)
}

// BlockAccount блокирует счет
func (h *AccountHandler) BlockAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	if err := h.ledger.BlockAccount(r.Context(), accountID); err != nil {
		h.logger.WithError(err).Error("Не удалось заблокировать счет")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// UnblockAccount снимает блокировку со счета
func (h *AccountHandler) UnblockAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	if err := h.ledger.UnblockAccount(r.Context(), accountID); err != nil {
		h.logger.WithError(err).Error("Не удалось разблокировать счет")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// CloseAccount закрывает счет с нулевым балансом
func (h *AccountHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.accountIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор счета", http.StatusBadRequest)
		return
	}

	if err := h.ledger.CloseAccount(r.Context(), accountID); err != nil {
		h.logger.WithError(err).Error("Не удалось закрыть счет")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
