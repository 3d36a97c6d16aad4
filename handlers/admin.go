package handlers

import (
	"context"
	"strconv"
	"strings"

	"go_content_bot/database"
	"go_content_bot/messages"
	"go_content_bot/tglog"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const recentVideos = 10

func (h *Handler) requireAdmin(ctx context.Context, msg *models.Message) bool {
	if h.cfg.IsAdmin(msg.From.ID) {
		return true
	}
	h.send(ctx, msg.Chat.ID, messages.MsgNoAccess, nil)
	return false
}

func (h *Handler) onPanel(ctx context.Context, msg *models.Message) {
	if !h.requireAdmin(ctx, msg) {
		return
	}
	h.send(ctx, msg.Chat.ID, messages.MsgAdminPanel, messages.AdminMenu())
}

func (h *Handler) onAdminButton(ctx context.Context, chatID int64, button string) {
	switch button {
	case messages.BtnPostStats:
		stats, err := h.store.GetStats(ctx)
		if err != nil {
			h.fail(ctx, chatID, err, "get stats failed")
			return
		}
		text := messages.FormatPostStats(stats[database.StatVideos], stats[database.StatDownloads], stats[database.StatUsers])
		h.send(ctx, chatID, text, messages.AdminMenu())

	case messages.BtnUsers:
		total, err := h.store.CountUsers(ctx)
		if err != nil {
			h.fail(ctx, chatID, err, "count users failed")
			return
		}
		active, err := h.store.CountActiveUsers(ctx, h.ledger.Today())
		if err != nil {
			h.fail(ctx, chatID, err, "count active users failed")
			return
		}
		h.send(ctx, chatID, messages.FormatUserStats(total, active), messages.AdminMenu())

	case messages.BtnVideos:
		h.onVideoList(ctx, chatID)

	case messages.BtnSettings:
		text := messages.FormatSettings(h.cfg.DailyLimit, h.cfg.SourceChannelID, len(h.cfg.TargetChannels), len(h.cfg.Required))
		h.send(ctx, chatID, text, messages.AdminMenu())

	case messages.BtnBackMain:
		h.send(ctx, chatID, messages.MsgMainMenu, messages.MainMenu())
	}
}

func (h *Handler) onVideoList(ctx context.Context, chatID int64) {
	videos, err := h.store.ListRecentVideos(ctx, recentVideos)
	if err != nil {
		h.fail(ctx, chatID, err, "list videos failed")
		return
	}
	if len(videos) == 0 {
		h.send(ctx, chatID, messages.MsgNoVideos, messages.AdminMenu())
		return
	}
	total, err := h.store.CountVideos(ctx)
	if err != nil {
		h.fail(ctx, chatID, err, "count videos failed")
		return
	}

	lines := make([]messages.VideoLine, 0, len(videos))
	for _, v := range videos {
		lines = append(lines, messages.VideoLine{ID: v.ID, Title: v.Title, Downloads: v.Downloads})
	}
	h.send(ctx, chatID, messages.FormatVideoList(lines, total), messages.VideoListButtons(lines))
}

func (h *Handler) onAdminCallback(ctx context.Context, chatID int64, messageID int, data string) {
	if data == messages.CbAdminBack {
		_ = h.tg.Edit(ctx, chatID, messageID, messages.MsgAdminPanel, nil)
		return
	}

	id := strings.TrimPrefix(data, messages.CbDeletePrefix)
	found, err := h.deleteVideo(ctx, id)
	if err != nil {
		h.fail(ctx, chatID, err, "delete video failed")
		return
	}
	_ = h.tg.Edit(ctx, chatID, messageID, messages.FormatDeleted(id, found), nil)
}

func (h *Handler) onDeleteText(ctx context.Context, chatID int64, id string) {
	found, err := h.deleteVideo(ctx, id)
	if err != nil {
		h.fail(ctx, chatID, err, "delete video failed")
		return
	}
	h.send(ctx, chatID, messages.FormatDeleted(id, found), messages.AdminMenu())
}

func (h *Handler) deleteVideo(ctx context.Context, id string) (bool, error) {
	found, err := h.store.DeleteVideo(ctx, id)
	if err != nil {
		return false, err
	}
	if found {
		log.Info().Str("video_id", id).Msg("video deleted by admin")
		tglog.Send("🗑️ Video <code>%s</code> deleted", tglog.Escape(id))
	}
	return found, nil
}

// onUserInfo: /user <id>: статистика конкретного пользователя.
func (h *Handler) onUserInfo(ctx context.Context, chatID int64, arg string) {
	userID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		h.send(ctx, chatID, messages.MsgUserUsage, nil)
		return
	}

	user, err := h.store.GetUser(ctx, userID)
	if isNotFound(err) {
		h.send(ctx, chatID, messages.MsgUserUnknown, nil)
		return
	}
	if err != nil {
		h.fail(ctx, chatID, err, "get user failed")
		return
	}

	stats := messages.Stats{
		Premium:        user.IsPremium || h.cfg.IsPremium(userID),
		Limit:          h.cfg.DailyLimit,
		TotalDownloads: user.TotalDownloads,
		JoinedAt:       user.JoinedAt,
	}
	h.send(ctx, chatID, messages.FormatUserInfo(userID, stats, h.downloadsToday(user)), nil)
}
