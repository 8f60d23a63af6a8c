package authenticating

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionTTL = 24 * time.Hour

type Authenticator interface {
	Login(password string) (*domain.AdminSession, error)
	ValidateSession(token string) (*domain.Claims, error)
	ValidateBasic(user, password string) (*domain.Claims, error)
	ValidateAPIKey(key string) error
	SessionTTL() time.Duration
}

type Service struct {
	cfg config.Auth
	// apiKey protege a API de agendamentos
	apiKey string
	now    func() time.Time
}

func NewService(cfg *config.Config) Authenticator {
	return &Service{
		cfg:    cfg.Auth,
		apiKey: cfg.Webhook.APIKey,
		now:    time.Now,
	}
}

func (s *Service) SessionTTL() time.Duration {
	if s.cfg.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return s.cfg.SessionTTL
}

// Login valida a senha do administrador e emite uma sessão assinada (HS256)
func (s *Service) Login(password string) (*domain.AdminSession, error) {
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.SessionTTL())
	token, err := s.generateToken(domain.AdminUser, expiresAt)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar sessão")
	}

	return &domain.AdminSession{
		Token:     token,
		User:      domain.AdminUser,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) checkPassword(password string) error {
	if password == "" {
		return NewAuthError(ErrMissingCredentials, apiErrors.ErrInvalidCredentials, "Senha obrigatória")
	}

	// O hash bcrypt tem precedência sobre a senha em texto
	if s.cfg.AdminPasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
			return NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Senha incorreta")
		}
		return nil
	}

	if s.cfg.AdminPassword == "" {
		return NewAuthError(ErrLoginDisabled, apiErrors.ErrInvalidCredentials, "Senha administrativa não configurada")
	}

	if subtle.ConstantTimeCompare([]byte(s.cfg.AdminPassword), []byte(password)) != 1 {
		return NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Senha incorreta")
	}

	return nil
}

func (s *Service) generateToken(user string, expiresAt time.Time) (string, error) {
	claims := domain.Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

func (s *Service) ValidateSession(tokenString string) (*domain.Claims, error) {
	if tokenString == "" {
		return nil, NewAuthError(ErrMissingCredentials, apiErrors.ErrInvalidToken, "")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid || claims.User != domain.AdminUser {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	return claims, nil
}

// ValidateBasic aceita "admin:<senha>" via Authorization: Basic
func (s *Service) ValidateBasic(user, password string) (*domain.Claims, error) {
	if user != domain.AdminUser {
		return nil, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Usuário inválido")
	}

	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	return &domain.Claims{User: domain.AdminUser}, nil
}

func (s *Service) ValidateAPIKey(key string) error {
	if s.apiKey == "" || key == "" || subtle.ConstantTimeCompare([]byte(s.apiKey), []byte(key)) != 1 {
		return NewAuthError(ErrInvalidAPIKey, apiErrors.ErrInvalidAPIKey, "")
	}
	return nil
}
