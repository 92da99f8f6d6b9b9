package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"herdbook/internal/app/client/config"
	"herdbook/internal/domain/animal"
)

// RemoteAPI контракт сервера регистраций
type RemoteAPI interface {
	Ping(ctx context.Context) error
	Insert(ctx context.Context, token string, req animal.InsertRequest) (*int64, error)
	Update(ctx context.Context, token string, backendID int64, fields animal.Fields) error
	Delete(ctx context.Context, token string, req animal.DeleteRequest) error
	Export(ctx context.Context, token string, query ExportQuery) (*animal.ExportResponse, error)
}

// ExportQuery параметры выгрузки. Пустые границы означают полную выгрузку.
type ExportQuery struct {
	Start *time.Time
	End   *time.Time
}

// Full сообщает, что выгрузка не ограничена датами
func (q ExportQuery) Full() bool {
	return q.Start == nil && q.End == nil
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

// NewHTTPClient создает клиент API по адресу из конфигурации
func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}
	return newHTTPClient(scheme+cfg.ServerAddress, cfg.RequestTimeout, log)
}

func newHTTPClient(baseURL string, timeout time.Duration, log *slog.Logger) *httpClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "herdbook-client/1.0",
	}
}

// Ping проверяет доступность сервера. Любой HTTP-ответ означает, что сеть есть.
func (h *httpClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return &NetworkError{Method: http.MethodGet, Path: "/health", Err: err}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return nil
}

// Insert создает регистрацию. Если сервер ответил 2xx без id, возвращается
// ошибка ErrMalformedResponse: запись на сервере создана, но id неизвестен.
func (h *httpClient) Insert(ctx context.Context, token string, req animal.InsertRequest) (*int64, error) {
	body, err := h.do(ctx, token, http.MethodPost, "/register", req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	id, ok := parseID(resp.ID)
	if !ok {
		return nil, fmt.Errorf("%w: в ответе нет id", ErrMalformedResponse)
	}

	return &id, nil
}

// Update обновляет поля регистрации на сервере
func (h *httpClient) Update(ctx context.Context, token string, backendID int64, fields animal.Fields) error {
	_, err := h.do(ctx, token, http.MethodPut, "/register/"+strconv.FormatInt(backendID, 10), fields)
	return err
}

// Delete удаляет регистрацию по естественному ключу
func (h *httpClient) Delete(ctx context.Context, token string, req animal.DeleteRequest) error {
	_, err := h.do(ctx, token, http.MethodDelete, "/register", req)
	return err
}

// Export выгружает регистрации в JSON
func (h *httpClient) Export(ctx context.Context, token string, query ExportQuery) (*animal.ExportResponse, error) {
	params := url.Values{}
	params.Set("format", "json")
	if query.Start != nil {
		params.Set("start", query.Start.Format(animal.BornDateLayout))
	}
	if query.End != nil {
		params.Set("end", query.End.Format(animal.BornDateLayout))
	}

	body, err := h.do(ctx, token, http.MethodGet, "/export?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp animal.ExportResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("%w: в ответе нет items", ErrMalformedResponse)
	}

	return &resp, nil
}

func (h *httpClient) do(ctx context.Context, token, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
		"request_id", requestID,
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}

	return h.parseResponse(method, path, resp)
}

func (h *httpClient) parseResponse(method, path string, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("ошибка чтения ответа: %w", err)}
	}

	h.log.Debug("Получен ответ",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	return body, nil
}

// errorMessage достает текст ошибки из ответа huma (detail) или из поля error
func errorMessage(body []byte) string {
	var errResp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	switch {
	case errResp.Detail != "":
		return errResp.Detail
	case errResp.Error != "":
		return errResp.Error
	default:
		return errResp.Title
	}
}

// parseID принимает id как число или как строку с числом
func parseID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, n > 0
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
