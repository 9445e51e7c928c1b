package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// statusForError сопоставляет доменные ошибки ядра с HTTP статусами;
// все инфраструктурные ошибки отдаются как 500
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, model.ErrLoanNotFound),
		errors.Is(err, model.ErrDepositNotFound),
		errors.Is(err, model.ErrRecipientNotFound),
		errors.Is(err, model.ErrNoMatchingAccount):
		return http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInsufficientFunds),
		errors.Is(err, model.ErrAccountInactive),
		errors.Is(err, model.ErrDepositNotActive),
		errors.Is(err, model.ErrLoanNotActive),
		errors.Is(err, model.ErrLoanNotPending),
		errors.Is(err, model.ErrCurrencyMismatch),
		errors.Is(err, model.ErrNonZeroBalance),
		errors.Is(err, model.ErrNotCancellable),
		errors.Is(err, model.ErrNotMatured),
		errors.Is(err, model.ErrNoAutoRenewal):
		return http.StatusConflict
	case errors.Is(err, model.ErrNoAccounts),
		errors.Is(err, model.ErrNonPositiveAmount),
		errors.Is(err, model.ErrInvalidTransactionType),
		errors.Is(err, model.ErrInvalidAccountType),
		errors.Is(err, model.ErrInvalidDepositType),
		errors.Is(err, model.ErrInvalidCurrency),
		errors.Is(err, model.ErrInvalidTerm),
		errors.Is(err, model.ErrInvalidRate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
