package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthUnavailable нет действующего токена; синхронизация пропускается
	ErrAuthUnavailable = errors.New("токен авторизации недоступен")
	// ErrMalformedResponse сервер ответил 2xx, но тело не содержит ожидаемых данных
	ErrMalformedResponse = errors.New("некорректный ответ сервера")
	// ErrRecordNotFound запись с таким localId отсутствует
	ErrRecordNotFound = errors.New("запись не найдена")
	// ErrTenantMismatch sub токена не совпадает с хозяйством локальной базы
	ErrTenantMismatch = errors.New("токен выдан другому хозяйству")
)

// StorageError ошибка локального хранилища
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ошибка хранилища (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// HTTPError сервер вернул не-2xx статус
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: статус %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: статус %d", e.Method, e.Path, e.StatusCode)
}

// NetworkError запрос не дошел до сервера или ответ не был получен
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: сеть недоступна: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError сообщает, что ошибка вызвана отсутствием связи
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// StatusCode возвращает HTTP-статус из ошибки или 0
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
