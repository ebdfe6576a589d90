package service

import (
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials возвращается при неверном пароле администратора.
var ErrInvalidCredentials = errors.New("неверный пароль")

// AuthService инкапсулирует вход администратора.
// Сервис обслуживает одного владельца, поэтому учётная запись одна:
// bcrypt-хэш пароля приходит из конфигурации.
type AuthService struct {
	passwordHash []byte
	tokens       *TokenManager
}

// AuthResult возвращает итог авторизации.
type AuthResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewAuthService создаёт сервис аутентификации. Пустой хэш допустим только
// в development: тогда действует пароль "admin".
func NewAuthService(passwordHash string, tokens *TokenManager) *AuthService {
	hash := []byte(passwordHash)
	if passwordHash == "" {
		generated, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("auth: не удалось захэшировать дефолтный пароль: %v", err)
		}
		hash = generated
	}

	return &AuthService{passwordHash: hash, tokens: tokens}
}

// Login проверяет пароль и выпускает access токен.
func (s *AuthService) Login(password string) (*AuthResult, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue()
	if err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: token, ExpiresAt: exp}, nil
}
