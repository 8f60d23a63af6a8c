package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminUser é o único usuário do painel administrativo
const AdminUser = "admin"

// Claims é o conteúdo da sessão administrativa assinada (HS256)
type Claims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Password string `json:"password"`
}

type AdminSession struct {
	Token     string
	User      string
	ExpiresAt time.Time
}

// UpdateMetricRequest é o corpo de PATCH /v1/admin/metrics.
// Value é mantido como float64 para detectar valores não inteiros.
type UpdateMetricRequest struct {
	Field string   `json:"field"`
	Value *float64 `json:"value"`
}

type StateMutationResponse struct {
	Success bool           `json:"success"`
	State   DashboardState `json:"state"`
}
