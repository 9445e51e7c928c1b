package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/service"
)

// AnalyticHandler обрабатывает запросы аналитики по финансам пользователя
type AnalyticHandler struct {
	analytic *service.AnalyticService
	logger   *logrus.Logger
}

func NewAnalyticHandler(analytic *service.AnalyticService, logger *logrus.Logger) *AnalyticHandler {
	return &AnalyticHandler{
		analytic: analytic,
		logger:   logger,
	}
}

func (h *AnalyticHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/loan-load", h.GetLoanLoad).Methods("GET")
}

// GetStats возвращает статистику доходов и расходов за период
func (h *AnalyticHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, -1, 0)
	var err error
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

	stats, err := h.analytic.GetFinancialStats(r.Context(), userID, startDate, endDate)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось рассчитать финансовую статистику")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetLoanLoad возвращает кредитную нагрузку пользователя
func (h *AnalyticHandler) GetLoanLoad(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		http.Error(w, "Неавторизованный доступ", http.StatusUnauthorized)
		return
	}

	load, err := h.analytic.GetLoanLoad(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Не удалось рассчитать кредитную нагрузку")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, load)
}
