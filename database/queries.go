package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	uniqueViolation   = "23505"
	maxVideoIDRetries = 5
)

// ============================================
// Videos
// ============================================

// SaveVideo сохраняет видео под новым случайным ID и возвращает его.
func (db *DB) SaveVideo(ctx context.Context, v NewVideo) (string, error) {
	query := `
		INSERT INTO videos (video_id, source_channel, message_id, title, thumbnail_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))`

	var id string
	err := db.withConn(ctx, func(conn *pgxpool.Conn) error {
		for attempt := 0; attempt < maxVideoIDRetries; attempt++ {
			var err error
			if id, err = NewVideoID(); err != nil {
				return fmt.Errorf("generate video id: %w", err)
			}
			_, err = conn.Exec(ctx, query, id, v.SourceChannel, v.MessageID, v.Title, v.ThumbnailID)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				log.Warn().Str("video_id", id).Msg("video id collision, regenerating")
				continue
			}
			return err
		}
		return fmt.Errorf("no free video id after %d attempts", maxVideoIDRetries)
	})
	if err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}

	db.bumpStat(ctx, StatVideos)
	return id, nil
}

func (db *DB) GetVideo(ctx context.Context, id string) (*Video, error) {
	query := `
		SELECT video_id, source_channel, message_id, title, thumbnail_id, downloads, created_at
		FROM videos
		WHERE video_id = $1`

	var v Video
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.SourceChannel, &v.MessageID, &v.Title, &v.ThumbnailID, &v.Downloads, &v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return &v, nil
}

// DeleteVideo удаляет видео насовсем. false: такого ID не было.
func (db *DB) DeleteVideo(ctx context.Context, id string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM videos WHERE video_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete video %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) IncrementDownloads(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE videos SET downloads = downloads + 1 WHERE video_id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment downloads %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	db.bumpStat(ctx, StatDownloads)
	return nil
}

func (db *DB) ListRecentVideos(ctx context.Context, limit int) ([]Video, error) {
	query := `
		SELECT video_id, source_channel, message_id, title, thumbnail_id, downloads, created_at
		FROM videos
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.SourceChannel, &v.MessageID, &v.Title, &v.ThumbnailID, &v.Downloads, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (db *DB) CountVideos(ctx context.Context) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n)
	return n, err
}

// ============================================
// Users
// ============================================

func (db *DB) GetOrCreateUser(ctx context.Context, id int64) (*User, error) {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, joined_at, downloads_today, last_download_date,
		          total_downloads, is_premium, (xmax = 0) AS inserted`

	var u User
	var inserted bool
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.JoinedAt, &u.DownloadsToday, &u.LastDownloadDate, &u.TotalDownloads, &u.IsPremium, &inserted,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create user %d: %w", id, err)
	}
	if inserted {
		db.bumpStat(ctx, StatUsers)
	}
	return &u, nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT user_id, joined_at, downloads_today, last_download_date, total_downloads, is_premium
		FROM users
		WHERE user_id = $1`

	var u User
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.JoinedAt, &u.DownloadsToday, &u.LastDownloadDate, &u.TotalDownloads, &u.IsPremium,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// TouchDaily создаёт пользователя при необходимости и обнуляет дневной счётчик,
// если сохранённая дата не совпадает с today. Всё одним выражением.
func (db *DB) TouchDaily(ctx context.Context, userID int64, today time.Time) (DailyUsage, error) {
	query := `
		INSERT INTO users (user_id, last_download_date)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			downloads_today = CASE
				WHEN users.last_download_date IS DISTINCT FROM EXCLUDED.last_download_date THEN 0
				ELSE users.downloads_today
			END,
			last_download_date = EXCLUDED.last_download_date
		RETURNING downloads_today, is_premium, (xmax = 0) AS inserted`

	var usage DailyUsage
	var inserted bool
	err := db.Pool.QueryRow(ctx, query, userID, today).Scan(&usage.Used, &usage.Premium, &inserted)
	if err != nil {
		return DailyUsage{}, fmt.Errorf("touch daily %d: %w", userID, err)
	}
	if inserted {
		db.bumpStat(ctx, StatUsers)
	}
	return usage, nil
}

// RecordDownload засчитывает скачивание. Если дата устарела, счётчик начинается с 1,
// так что параллельные вызовы не могут дважды сбросить день.
func (db *DB) RecordDownload(ctx context.Context, userID int64, today time.Time) error {
	query := `
		INSERT INTO users (user_id, downloads_today, total_downloads, last_download_date)
		VALUES ($1, 1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			downloads_today = CASE
				WHEN users.last_download_date = EXCLUDED.last_download_date THEN users.downloads_today + 1
				ELSE 1
			END,
			total_downloads = users.total_downloads + 1,
			last_download_date = EXCLUDED.last_download_date`

	if _, err := db.Pool.Exec(ctx, query, userID, today); err != nil {
		return fmt.Errorf("record download %d: %w", userID, err)
	}
	return nil
}

func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (db *DB) CountActiveUsers(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE last_download_date = $1`, today).Scan(&n)
	return n, err
}

// ============================================
// Join requests
// ============================================

func (db *DB) AddJoinRequest(ctx context.Context, userID int64, channel string) error {
	query := `
		INSERT INTO join_requests (user_id, channel_id) VALUES ($1, $2)
		ON CONFLICT (user_id, channel_id) DO NOTHING`

	if _, err := db.Pool.Exec(ctx, query, userID, channel); err != nil {
		return fmt.Errorf("add join request %d/%s: %w", userID, channel, err)
	}
	return nil
}

func (db *DB) HasJoinRequest(ctx context.Context, userID int64, channel string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM join_requests WHERE user_id = $1 AND channel_id = $2)`,
		userID, channel,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has join request %d/%s: %w", userID, channel, err)
	}
	return exists, nil
}

func (db *DB) RemoveJoinRequest(ctx context.Context, userID int64, channel string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM join_requests WHERE user_id = $1 AND channel_id = $2`, userID, channel)
	if err != nil {
		return fmt.Errorf("remove join request %d/%s: %w", userID, channel, err)
	}
	return nil
}

// ============================================
// Stats
// ============================================

func (db *DB) IncrementStat(ctx context.Context, key string, delta int64) error {
	query := `
		INSERT INTO stats (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = stats.value + EXCLUDED.value`

	_, err := db.Pool.Exec(ctx, query, key, delta)
	return err
}

func (db *DB) GetStats(ctx context.Context) (map[string]int64, error) {
	rows, err := db.Pool.Query(ctx, `SELECT key, value FROM stats`)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats[key] = value
	}
	return stats, rows.Err()
}

// bumpStat: счётчики для панели не критичны, ошибку только логируем.
func (db *DB) bumpStat(ctx context.Context, key string) {
	if err := db.IncrementStat(ctx, key, 1); err != nil {
		log.Error().Err(err).Str("stat", key).Msg("stats update failed")
	}
}
