// Package config содержит общие для клиента и сервера настройки окружения
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// LoadDotEnv загружает первый найденный .env файл из списка путей.
// Отсутствие файла не ошибка: значения берутся из окружения.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env", "../../.env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return p, fmt.Errorf("ошибка загрузки %s: %w", p, err)
		}
		return p, nil
	}

	return "", nil
}

// ValidEnv проверяет имя окружения
func ValidEnv(env string) bool {
	switch env {
	case EnvLocal, EnvDev, EnvProd:
		return true
	default:
		return false
	}
}
