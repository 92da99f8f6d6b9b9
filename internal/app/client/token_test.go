package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestFileTokenSource(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		content *string
		wantErr bool
		want    string
	}{
		{name: "missing file", content: nil, wantErr: true},
		{name: "empty file", content: strPtr("  \n"), wantErr: true},
		{name: "opaque token", content: strPtr("opaque-token\n"), want: "opaque-token"},
		{name: "valid jwt", content: strPtr(signedToken(t, "farm-1", now.Add(time.Hour))), want: signedToken(t, "farm-1", now.Add(time.Hour))},
		{name: "expired jwt", content: strPtr(signedToken(t, "farm-1", now.Add(-time.Minute))), wantErr: true},
		{name: "jwt within skew", content: strPtr(signedToken(t, "farm-1", now.Add(10*time.Second))), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0600))
			}
			src := NewFileTokenSource(path)
			src.now = func() time.Time { return now }

			token, err := src.Token(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAuthUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestFileTokenSource_RereadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	src := NewFileTokenSource(path)
	ctx := context.Background()

	_, err := src.Token(ctx)
	assert.ErrorIs(t, err, ErrAuthUnavailable)

	require.NoError(t, src.Save("first"))
	token, err := src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, src.Save("second"))
	token, err = src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, src.Clear())
	require.NoError(t, src.Clear())
	_, err = src.Token(ctx)
	assert.ErrorIs(t, err, ErrAuthUnavailable)

	assert.Error(t, src.Save("   "))
}

func TestTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, "farm-9", exp)

	got, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
	assert.Equal(t, "farm-9", TokenSubject(token))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
	assert.Empty(t, TokenSubject("not-a-jwt"))
}

func TestStaticToken(t *testing.T) {
	_, err := StaticToken("").Token(context.Background())
	assert.ErrorIs(t, err, ErrAuthUnavailable)

	token, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}
