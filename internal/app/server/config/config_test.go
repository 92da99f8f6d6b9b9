package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env: map[string]string{
				"DATABASE_URI": "postgres://localhost/herdbook",
				"JWT_SECRET":   "secret",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "local", cfg.Env)
				assert.Equal(t, ":8080", cfg.Server.RunAddress)
				assert.Equal(t, "migrations", cfg.DB.Migrations)
				assert.Equal(t, "secret", cfg.Auth.JWTSecret)
				assert.Equal(t, int32(10), cfg.DB.MaxConns)
			},
		},
		{
			name: "explicit values",
			env: map[string]string{
				"APP_ENV":         "prod",
				"RUN_ADDRESS":     ":9090",
				"DATABASE_URI":    "postgres://db/herdbook",
				"MIGRATIONS_PATH": "/srv/migrations",
				"LOG_LEVEL":       "warn",
				"DB_MAX_CONNS":    "25",
				"JWT_SECRET":      "s3",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "prod", cfg.Env)
				assert.Equal(t, ":9090", cfg.Server.RunAddress)
				assert.Equal(t, "/srv/migrations", cfg.DB.Migrations)
				assert.Equal(t, "warn", cfg.Logger.LogLevel)
				assert.Equal(t, int32(25), cfg.DB.MaxConns)
			},
		},
		{
			name: "zero pool size",
			env: map[string]string{
				"DATABASE_URI": "postgres://localhost/herdbook",
				"DB_MAX_CONNS": "0",
				"JWT_SECRET":   "secret",
			},
			wantErr: "DB_MAX_CONNS",
		},
		{
			name:    "missing database",
			env:     map[string]string{"JWT_SECRET": "secret"},
			wantErr: "DATABASE_URI",
		},
		{
			name:    "missing secret",
			env:     map[string]string{"DATABASE_URI": "postgres://localhost/herdbook"},
			wantErr: "JWT_SECRET",
		},
		{
			name: "unknown env",
			env: map[string]string{
				"APP_ENV":      "staging",
				"DATABASE_URI": "postgres://localhost/herdbook",
				"JWT_SECRET":   "secret",
			},
			wantErr: "staging",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for _, key := range []string{"APP_ENV", "RUN_ADDRESS", "DATABASE_URI", "MIGRATIONS_PATH", "LOG_LEVEL", "DB_MAX_CONNS", "JWT_SECRET"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
