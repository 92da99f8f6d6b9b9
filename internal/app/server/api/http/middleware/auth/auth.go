package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/exp/slog"
)

type Auth struct {
	secret []byte
	log    *slog.Logger
}

func New(secret string, log *slog.Logger) *Auth {
	return &Auth{
		secret: []byte(secret),
		log:    log.With("component", "auth_middleware"),
	}
}

type contextKey string

const (
	TenantIDKey   contextKey = "tenantID"
	tenantSlotKey contextKey = "tenantSlot"
)

type tenantSlot struct {
	id string
}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNoTenant     = errors.New("token has no subject")
)

// Middleware returns a huma middleware that accepts HS256 tokens and puts the tenant into the context
func (a *Auth) Middleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")

		tenantID, err := a.Validate(header)
		if err != nil {
			a.log.Warn("unauthorized request", "path", ctx.URL().Path, "error", err)
			if werr := huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized"); werr != nil {
				a.log.Error("failed to write error response", "error", werr)
			}
			return
		}

		if slot, ok := ctx.Context().Value(tenantSlotKey).(*tenantSlot); ok {
			slot.id = tenantID
		}

		newCtx := context.WithValue(ctx.Context(), TenantIDKey, tenantID)
		next(huma.WithContext(ctx, newCtx))
	}
}

// Validate parses the Authorization header value and returns the tenant id (token subject)
func (a *Auth) Validate(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrNoTenant
	}

	return sub, nil
}

func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}

// WithTenantID puts the tenant into ctx the same way the middleware does
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// TrackTenant lets a middleware that runs before auth learn the tenant after next returns
func TrackTenant(ctx context.Context) (context.Context, func() (string, bool)) {
	slot := &tenantSlot{}
	return context.WithValue(ctx, tenantSlotKey, slot), func() (string, bool) {
		return slot.id, slot.id != ""
	}
}
