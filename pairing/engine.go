package pairing

import (
	"context"
	"fmt"

	"go_content_bot/database"
	"go_content_bot/metrics"
	"go_content_bot/tglog"

	"github.com/rs/zerolog/log"
)

type Catalog interface {
	SaveVideo(ctx context.Context, v database.NewVideo) (string, error)
}

// Publisher анонсирует сохранённое видео и возвращает число каналов, куда оно дошло.
type Publisher interface {
	Publish(ctx context.Context, videoID, title, thumbnailID string) int
}

type Engine struct {
	sourceChatID int64
	table        *Table
	catalog      Catalog
	publisher    Publisher
}

// NewEngine принимает посты только из sourceChatID; 0 означает любой канал.
func NewEngine(sourceChatID int64, table *Table, catalog Catalog, publisher Publisher) *Engine {
	return &Engine{sourceChatID: sourceChatID, table: table, catalog: catalog, publisher: publisher}
}

// HandlePost передаёт пост канала в таблицу связывания и публикует пару,
// если она собралась. Возвращается только ошибка сохранения.
func (e *Engine) HandlePost(ctx context.Context, p Post) error {
	if e.sourceChatID != 0 && p.ChatID != e.sourceChatID {
		return nil
	}

	ev := Classify(p)
	logger := log.With().
		Int64("chat_id", p.ChatID).
		Int("message_id", p.MessageID).
		Str("event", ev.Kind.String()).
		Str("key", ev.Key()).
		Logger()

	action := e.table.Apply(ev)
	switch action.Kind {
	case ActionStore:
		logger.Info().Msg("post stored, waiting for its pair")
		return nil
	case ActionIgnore:
		logger.Info().Str("reason", action.Reason).Msg("post ignored")
		return nil
	}

	d := action.Draft
	title := SanitizeTitle(d.Caption)
	id, err := e.catalog.SaveVideo(ctx, database.NewVideo{
		SourceChannel: d.ChatID,
		MessageID:     d.MessageID,
		Title:         title,
		ThumbnailID:   d.ThumbnailID,
	})
	if err != nil {
		return fmt.Errorf("pairing complete but not saved: %w", err)
	}
	metrics.PairingsCompleted.WithLabelValues(d.Method).Inc()
	logger.Info().Str("video_id", id).Int("content_message_id", d.MessageID).Str("method", d.Method).Msg("pair complete")

	reached := e.publisher.Publish(ctx, id, title, d.ThumbnailID)
	tglog.Send("🆕 <code>%s</code> %s, published to %d channel(s)", id, tglog.Escape(title), reached)
	return nil
}
