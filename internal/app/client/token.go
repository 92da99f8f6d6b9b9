package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource выдает токен для запросов к серверу. Токен запрашивается
// заново перед каждым проходом синхронизации и нигде не кешируется.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc адаптер функции к TokenSource
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken источник с фиксированным токеном
func StaticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrAuthUnavailable
		}
		return token, nil
	})
}

// FileTokenSource читает токен из файла при каждом обращении
type FileTokenSource struct {
	path string
	skew time.Duration
	now  func() time.Time
}

func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{
		path: path,
		skew: 30 * time.Second,
		now:  time.Now,
	}
}

// Token возвращает ErrAuthUnavailable, если файла нет, он пуст или JWT истек.
// Непрозрачные (не JWT) токены принимаются как есть.
func (s *FileTokenSource) Token(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrAuthUnavailable
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrAuthUnavailable
	}

	if exp, ok := TokenExpiry(token); ok && !exp.After(s.now().Add(s.skew)) {
		return "", fmt.Errorf("%w: срок действия истек %s", ErrAuthUnavailable, exp.Format(time.RFC3339))
	}

	return token, nil
}

// Save записывает токен с правами 0600
func (s *FileTokenSource) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("пустой токен")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	return nil
}

// Clear удаляет токен; отсутствие файла не ошибка
func (s *FileTokenSource) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

// TokenExpiry извлекает exp из JWT без проверки подписи.
// Подпись проверяет сервер; клиенту нужен только срок действия.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenSubject извлекает sub из JWT без проверки подписи
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
