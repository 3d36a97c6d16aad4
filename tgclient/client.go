// Package tgclient оборачивает клиент Telegram Bot API: таймаут на каждый
// вызов и единое логирование ошибок. Повторов нет, что показать пользователю,
// решает вызывающий код.
package tgclient

import (
	"context"
	"time"

	"go_content_bot/metrics"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// API: используемая часть *bot.Bot.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type Client struct {
	api     API
	timeout time.Duration
}

func New(api API, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{api: api, timeout: timeout}
}

func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := fn(ctx)
	if err != nil {
		metrics.TransportErrors.WithLabelValues(op).Inc()
	}
	return err
}

// Send отправляет HTML-сообщение; markup может быть nil.
func (c *Client) Send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	err := c.call(ctx, "send_message", func(ctx context.Context) error {
		_, err := c.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
		return err
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
	return err
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup models.ReplyMarkup) error {
	err := c.call(ctx, "send_photo", func(ctx context.Context) error {
		_, err := c.api.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       &models.InputFileString{Data: fileID},
			Caption:     caption,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
		return err
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send photo failed")
	}
	return err
}

// Forward пересылает сообщение из исходного канала пользователю.
func (c *Client) Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	err := c.call(ctx, "forward_message", func(ctx context.Context) error {
		_, err := c.api.ForwardMessage(ctx, &bot.ForwardMessageParams{
			ChatID:     toChatID,
			FromChatID: fromChatID,
			MessageID:  messageID,
		})
		return err
	})
	if err != nil {
		log.Error().Err(err).
			Int64("chat_id", toChatID).
			Int64("from_chat_id", fromChatID).
			Int("message_id", messageID).
			Msg("forward failed")
	}
	return err
}

func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string, markup models.ReplyMarkup) error {
	err := c.call(ctx, "edit_message", func(ctx context.Context) error {
		_, err := c.api.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
		return err
	})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("edit message failed")
	}
	return err
}

// Answer закрывает "часики" на inline-кнопке. text показывается всплывающим уведомлением.
func (c *Client) Answer(ctx context.Context, callbackID, text string) {
	err := c.call(ctx, "answer_callback", func(ctx context.Context) error {
		_, err := c.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		})
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("callback_id", callbackID).Msg("answer callback failed")
	}
}

// MemberStatus возвращает статус пользователя в чате (member, left, kicked, ...).
// chatID: int64 или "@username".
func (c *Client) MemberStatus(ctx context.Context, chatID any, userID int64) (string, error) {
	var status string
	err := c.call(ctx, "get_chat_member", func(ctx context.Context) error {
		m, err := c.api.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
		if err != nil {
			return err
		}
		status = string(m.Type)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Interface("chat", chatID).Int64("user_id", userID).Msg("membership lookup failed")
	}
	return status, err
}
