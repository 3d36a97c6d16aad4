// Package publish анонсирует новые видео в публичных каналах.
package publish

import (
	"context"
	"sync/atomic"

	"go_content_bot/config"
	"go_content_bot/messages"
	"go_content_bot/metrics"
	"go_content_bot/tglog"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const maxParallel = 4

// PhotoSender реализуется *tgclient.Client.
type PhotoSender interface {
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup models.ReplyMarkup) error
}

type Publisher struct {
	tg          PhotoSender
	targets     []config.TargetChannel
	botUsername string
}

func New(tg PhotoSender, targets []config.TargetChannel, botUsername string) *Publisher {
	return &Publisher{tg: tg, targets: targets, botUsername: botUsername}
}

// DeepLink: стартовая ссылка, запрашивающая видео videoID.
func DeepLink(botUsername, videoID string) string {
	return "https://t.me/" + botUsername + "?start=" + videoID
}

// Publish отправляет превью во все целевые каналы и возвращает число
// успешных отправок. Ошибка одного канала не останавливает остальные.
func (p *Publisher) Publish(ctx context.Context, videoID, title, thumbnailID string) int {
	caption := messages.FormatPreviewCaption(title)
	markup := messages.GetVideoButton(DeepLink(p.botUsername, videoID))

	var reached atomic.Int32
	var g errgroup.Group
	g.SetLimit(maxParallel)
	for _, target := range p.targets {
		target := target
		g.Go(func() error {
			err := p.tg.SendPhoto(ctx, target.ID, thumbnailID, caption, markup)
			if err != nil {
				metrics.Publishes.WithLabelValues("error").Inc()
				log.Error().Err(err).Str("video_id", videoID).Str("channel", target.Label).Msg("publish failed")
				tglog.Send("⚠️ Publish of <code>%s</code> to %s failed: %s", videoID, tglog.Escape(target.Label), tglog.Escape(err.Error()))
				return nil
			}
			metrics.Publishes.WithLabelValues("ok").Inc()
			reached.Add(1)
			log.Info().Str("video_id", videoID).Str("channel", target.Label).Msg("published")
			return nil
		})
	}
	_ = g.Wait()
	return int(reached.Load())
}
