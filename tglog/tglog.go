// Package tglog дублирует важные события в служебный Telegram-канал.
package tglog

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const sendTimeout = 5 * time.Second

// Sender: то, чем отправляем сообщение. Реализуется *tgclient.Client.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error
}

var (
	mu        sync.RWMutex
	sender    Sender
	channelID int64
	wg        sync.WaitGroup
)

// Init включает логирование в канал. chID == 0 отключает его.
func Init(s Sender, chID int64) {
	mu.Lock()
	defer mu.Unlock()
	if chID == 0 || s == nil {
		sender, channelID = nil, 0
		log.Info().Msg("LOG_CHANNEL_ID not set, channel logging disabled")
		return
	}
	sender, channelID = s, chID
	log.Info().Int64("channel_id", chID).Msg("channel logging enabled")
}

// Send отправляет HTML-сообщение в лог-канал, не блокируя вызывающего.
func Send(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	s, chID := sender, channelID
	if s == nil {
		return
	}

	text := fmt.Sprintf(format, args...)
	// Add под RLock: Flush не начнёт Wait, пока идёт регистрация отправки.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.Send(ctx, chID, text, nil); err != nil {
			log.Warn().Err(err).Msg("log channel send failed")
		}
	}()
}

// Flush отключает логгер и ждёт уже запущенных отправок. Вызывается при остановке.
func Flush() {
	mu.Lock()
	sender, channelID = nil, 0
	mu.Unlock()
	wg.Wait()
}

// Escape экранирует пользовательский текст для HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}
