package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 管理后台口令校验，口令以 bcrypt 哈希形式配置
type AuthService struct {
	passwordHash []byte
}

func NewAuthService(passwordHash string) *AuthService {
	return &AuthService{passwordHash: []byte(strings.TrimSpace(passwordHash))}
}

// Enabled 是否配置了管理员口令
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// VerifyAdmin 校验管理员口令
func (s *AuthService) VerifyAdmin(password string) error {
	if !s.Enabled() {
		return ErrAdminDisabled
	}
	if password == "" {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// HashPassword 生成 bcrypt 哈希，用于生成 ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
