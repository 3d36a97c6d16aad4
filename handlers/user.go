package handlers

import (
	"context"
	"errors"

	"go_content_bot/database"
	"go_content_bot/delivery"
	"go_content_bot/messages"

	"github.com/go-telegram/bot/models"
)

func (h *Handler) onStart(ctx context.Context, msg *models.Message, param string) {
	userID := msg.From.ID
	if _, err := h.store.GetOrCreateUser(ctx, userID); err != nil {
		h.fail(ctx, msg.Chat.ID, err, "get or create user failed")
		return
	}

	res, err := h.delivery.Start(ctx, userID, param)
	if err != nil {
		h.fail(ctx, msg.Chat.ID, err, "start failed")
		return
	}
	h.reply(ctx, msg.Chat.ID, res)
}

// onJoinedButton: «✅ I've Joined» из меню: та же проверка, что и у inline-кнопки.
func (h *Handler) onJoinedButton(ctx context.Context, msg *models.Message) {
	res, err := h.delivery.Verify(ctx, msg.From.ID)
	if err != nil {
		h.fail(ctx, msg.Chat.ID, err, "verify failed")
		return
	}
	h.reply(ctx, msg.Chat.ID, res)
}

// onVerify правит сообщение с кнопками каналов по результату проверки.
func (h *Handler) onVerify(ctx context.Context, userID, chatID int64, messageID int) {
	if chatID == 0 {
		chatID = userID
	}
	res, err := h.delivery.Verify(ctx, userID)
	if err != nil {
		h.fail(ctx, chatID, err, "verify failed")
		return
	}

	if res.Outcome == delivery.Blocked {
		text := messages.FormatNotJoined()
		markup := messages.ChannelButtons(h.cfg.Required, res.NotJoined)
		if messageID == 0 || h.tg.Edit(ctx, chatID, messageID, text, markup) != nil {
			h.send(ctx, chatID, text, markup)
		}
		return
	}

	if messageID != 0 {
		_ = h.tg.Edit(ctx, chatID, messageID, messages.MsgSuccess, nil)
	}
	if res.Outcome == delivery.Verified {
		h.send(ctx, chatID, messages.MsgMainMenu, messages.MainMenu())
		return
	}
	h.reply(ctx, chatID, res)
}

// reply рендерит результат доставки.
func (h *Handler) reply(ctx context.Context, chatID int64, res delivery.Result) {
	switch res.Outcome {
	case delivery.Blocked:
		h.send(ctx, chatID, messages.MsgWelcome, messages.ChannelButtons(h.cfg.Required, res.NotJoined))
	case delivery.Verified:
		h.send(ctx, chatID, messages.MsgSuccess, messages.MainMenu())
	case delivery.Delivered:
		h.send(ctx, chatID, messages.FormatVideoSent(res.Remaining, h.cfg.DailyLimit, res.Unlimited), messages.MainMenu())
	case delivery.Denied:
		h.send(ctx, chatID, messages.FormatLimitReached(h.cfg.DailyLimit), messages.MainMenu())
	case delivery.NotFound:
		h.send(ctx, chatID, messages.MsgVideoNotFound, messages.MainMenu())
	}
}

func (h *Handler) userStats(ctx context.Context, userID int64) (messages.Stats, error) {
	user, err := h.store.GetOrCreateUser(ctx, userID)
	if err != nil {
		return messages.Stats{}, err
	}
	q, err := h.ledger.Check(ctx, userID, h.cfg.DailyLimit)
	if err != nil {
		return messages.Stats{}, err
	}
	return messages.Stats{
		Premium:        q.Unlimited,
		Remaining:      q.Remaining,
		Limit:          h.cfg.DailyLimit,
		TotalDownloads: user.TotalDownloads,
		JoinedAt:       user.JoinedAt,
	}, nil
}

func (h *Handler) onMyStats(ctx context.Context, msg *models.Message) {
	stats, err := h.userStats(ctx, msg.From.ID)
	if err != nil {
		h.fail(ctx, msg.Chat.ID, err, "user stats failed")
		return
	}
	h.send(ctx, msg.Chat.ID, messages.FormatMyStats(stats), messages.MainMenu())
}

func (h *Handler) onProfile(ctx context.Context, msg *models.Message) {
	stats, err := h.userStats(ctx, msg.From.ID)
	if err != nil {
		h.fail(ctx, msg.Chat.ID, err, "profile failed")
		return
	}
	h.send(ctx, msg.Chat.ID, messages.FormatProfile(msg.From.ID, msg.From.FirstName, stats), messages.MainMenu())
}

// downloadsToday: счётчик из записи актуален только для сегодняшней даты.
func (h *Handler) downloadsToday(u *database.User) int {
	if u.LastDownloadDate == nil || !u.LastDownloadDate.Equal(h.ledger.Today()) {
		return 0
	}
	return u.DownloadsToday
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
