package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PostgresClient struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresClient(ctx context.Context, connString string, logger *zap.Logger) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool, logger: logger}

	if err := client.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS companies (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			tax_id CHAR(14) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'active',
			chatbot_access BOOLEAN NOT NULL DEFAULT TRUE,
			api_token VARCHAR(64) NOT NULL,
			app_key VARCHAR(64) NOT NULL,
			app_secret VARCHAR(128) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("create companies table: %w", err)
	}

	// Allow-list entries; deleting a company cascades to its users
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(11),
			role VARCHAR(20) NOT NULL DEFAULT 'funcionario',
			activity VARCHAR(20) NOT NULL DEFAULT 'ativo',
			company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	if _, err := p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS users_phone_idx ON users (phone);"); err != nil {
		return fmt.Errorf("create users phone index: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			company_id BIGINT REFERENCES companies(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}

	var count int
	if err := p.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		// The platform admin is seeded by AuthUsecase.EnsureAdmin, which owns hashing.
		p.logger.Info("database initialized, accounts table empty")
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
