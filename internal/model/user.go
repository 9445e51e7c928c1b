package model

import (
	"time"

	"github.com/google/uuid"
)

// User — минимальный профиль владельца: аутентификация и управление
// учетными данными живут во внешнем сервисе, ядру нужны только
// идентификатор и телефон для переводов по номеру
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
