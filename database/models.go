package database

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Ключи агрегированных счётчиков в таблице stats.
const (
	StatVideos    = "total_videos"
	StatDownloads = "total_downloads"
	StatUsers     = "total_users"
)

type Video struct {
	ID            string
	SourceChannel int64
	MessageID     int
	Title         string
	ThumbnailID   *string
	Downloads     int
	CreatedAt     time.Time
}

// NewVideo: данные для публикации, ID генерируется при сохранении.
type NewVideo struct {
	SourceChannel int64
	MessageID     int
	Title         string
	ThumbnailID   string
}

type User struct {
	ID               int64
	JoinedAt         time.Time
	DownloadsToday   int
	LastDownloadDate *time.Time
	TotalDownloads   int
	IsPremium        bool
}

// DailyUsage: состояние дневного счётчика после проверки даты.
type DailyUsage struct {
	Used    int
	Premium bool
}
