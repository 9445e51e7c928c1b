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

type TransactionHandler struct {
	transaction *service.TransactionService
	logger      *logrus.Logger
}

func NewTransactionHandler(transaction *service.TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{
		transaction: transaction,
		logger:      logger,
	}
}

func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transfer", h.Transfer).Methods("POST")
	router.HandleFunc("/transfer/phone", h.TransferToPhone).Methods("POST")
	router.HandleFunc("/transfer/account", h.TransferToAccount).Methods("POST")
	router.HandleFunc("/{transactionId}", h.GetTransaction).Methods("GET")
	router.HandleFunc("/{transactionId}/cancel", h.CancelTransaction).Methods("POST")
}

// Transfer выполняет перевод между счетами по их идентификаторам
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на перевод")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	transaction, err := h.transaction.CreateTransaction(r.Context(), model.CreateTransactionInput{
		FromAccountID:   &req.FromAccountID,
		ToAccountID:     &req.ToAccountID,
		TransactionType: model.TransactionTypeTransfer,
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить перевод средств")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

// TransferToPhone выполняет перевод по номеру телефона получателя
func (h *TransactionHandler) TransferToPhone(w http.ResponseWriter, r *http.Request) {
	var req model.TransferToPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на перевод по телефону")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	transaction, err := h.transaction.TransferToPhone(r.Context(), userID, req.FromAccountID, req.Phone, req.Amount, req.Description)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить перевод по телефону")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

// TransferToAccount выполняет перевод на счет по его номеру
func (h *TransactionHandler) TransferToAccount(w http.ResponseWriter, r *http.Request) {
	var req model.TransferToAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на перевод по номеру счета")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	transaction, err := h.transaction.TransferToAccount(r.Context(), req.FromAccountID, req.ToNumber, req.Amount, req.Description)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось выполнить перевод по номеру счета")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

func transactionIDFromPath(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	return uuid.Parse(vars["transactionId"])
}

// GetTransaction возвращает транзакцию по идентификатору
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := transactionIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор транзакции", http.StatusBadRequest)
		return
	}

	transaction, err := h.transaction.GetTransactionByID(r.Context(), transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// CancelTransaction отменяет транзакцию, зависшую в статусе pending
func (h *TransactionHandler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := transactionIDFromPath(r)
	if err != nil {
		http.Error(w, "Неверный идентификатор транзакции", http.StatusBadRequest)
		return
	}

	transaction, err := h.transaction.CancelTransaction(r.Context(), transactionID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось отменить транзакцию")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}
