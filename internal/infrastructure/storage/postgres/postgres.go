package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"herdbook/internal/app/server/config"
	"herdbook/internal/infrastructure/migration"
)

const connectTimeout = 10 * time.Second

type Storage struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// New applies pending migrations and opens the connection pool
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	log = log.With(slog.String("component", "postgres"))

	mg := migration.NewMigration(cfg, migration.DefaultEngine, log)
	if err := mg.Up(); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	poolCfg, err := poolConfig(cfg.DB)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database connected",
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.String("database", poolCfg.ConnConfig.Database),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)

	return &Storage{pool: pool, log: log}, nil
}

func poolConfig(db config.DB) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URI: %w", err)
	}
	if db.MaxConns > 0 {
		poolCfg.MaxConns = db.MaxConns
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout
	return poolCfg, nil
}

func (s *Storage) Close() error {
	stat := s.pool.Stat()
	s.log.Info("closing database pool", slog.Int("acquired", int(stat.AcquiredConns())), slog.Int("total", int(stat.TotalConns())))
	s.pool.Close()
	return nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks that the database answers
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
