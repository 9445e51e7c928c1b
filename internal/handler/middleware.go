package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// IdentityMiddleware извлекает идентификатор пользователя из заголовка
// X-User-ID и кладет его в контекст запроса. Аутентификация и проверка
// токенов выполняются шлюзом перед этим сервисом; заголовок считается
// доверенным.
func IdentityMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				logger.Error("Отсутствует заголовок X-User-ID")
				http.Error(w, "Заголовок X-User-ID обязателен", http.StatusUnauthorized)
				return
			}

			if _, err := uuid.Parse(userID); err != nil {
				logger.WithError(err).Error("Неверный идентификатор пользователя")
				http.Error(w, "Неверный идентификатор пользователя", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFromRequest достает идентификатор пользователя, положенный middleware
func userIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value("userID").(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
