package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type DB struct {
	Pool *pgxpool.Pool
}

// Connect поднимает пул с повторными попытками: база может стартовать позже бота.
func Connect(ctx context.Context, url string, maxConns int32) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = 1
	poolCfg.HealthCheckPeriod = 30 * time.Second

	var pool *pgxpool.Pool
	connect := func() error {
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("database not reachable yet")
	}
	if err := backoff.RetryNotify(connect, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Migrate создаёт таблицы, если их ещё нет.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// withConn выдаёт соединение из пула и гарантированно возвращает его.
func (db *DB) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	video_id       VARCHAR(20) PRIMARY KEY,
	source_channel BIGINT NOT NULL,
	message_id     BIGINT NOT NULL,
	title          VARCHAR(255) NOT NULL DEFAULT '',
	thumbnail_id   VARCHAR(255),
	downloads      INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS videos_created_at_idx ON videos (created_at DESC);

CREATE TABLE IF NOT EXISTS users (
	user_id            BIGINT PRIMARY KEY,
	joined_at          DATE NOT NULL DEFAULT CURRENT_DATE,
	downloads_today    INTEGER NOT NULL DEFAULT 0,
	last_download_date DATE,
	total_downloads    INTEGER NOT NULL DEFAULT 0,
	is_premium         BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS join_requests (
	id           SERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL,
	channel_id   VARCHAR(100) NOT NULL,
	requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, channel_id)
);

CREATE TABLE IF NOT EXISTS stats (
	key   VARCHAR(50) PRIMARY KEY,
	value BIGINT NOT NULL DEFAULT 0
);
`
