package handlers

import (
	"context"

	"go_content_bot/pairing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// OnChannelPost передаёт фото и видео из каналов в движок сопоставления.
func (h *Handler) OnChannelPost(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.ChannelPost
	if msg == nil {
		return
	}
	if err := h.posts.HandlePost(ctx, toPost(msg)); err != nil {
		log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Int("message_id", msg.ID).Msg("channel post handling failed")
	}
}

// OnJoinRequest запоминает заявку на вступление в обязательный канал.
func (h *Handler) OnJoinRequest(ctx context.Context, _ *bot.Bot, update *models.Update) {
	req := update.ChatJoinRequest
	if req == nil {
		return
	}
	ch, ok := h.cfg.RequiredFor(req.Chat.ID, req.Chat.Username)
	if !ok {
		return
	}
	// учёт заявок вторичен: ошибку только логируем
	if err := h.store.AddJoinRequest(ctx, req.From.ID, ch.Key); err != nil {
		log.Error().Err(err).Int64("user_id", req.From.ID).Str("channel", ch.Key).Msg("join request not recorded")
		return
	}
	log.Info().Int64("user_id", req.From.ID).Str("channel", ch.Key).Msg("join request recorded")
}

func toPost(msg *models.Message) pairing.Post {
	p := pairing.Post{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		GroupID:   msg.MediaGroupID,
		Caption:   msg.Caption,
	}
	p.Kind, p.FileID, p.ThumbID = media(msg)

	if r := msg.ReplyToMessage; r != nil {
		kind, fileID, _ := media(r)
		p.ReplyTo = &pairing.Antecedent{
			MessageID: r.ID,
			Kind:      kind,
			FileID:    fileID,
			Caption:   r.Caption,
		}
	}
	return p
}

// media: роль сообщения, file_id самого большого фото или видео и превью видео.
func media(msg *models.Message) (kind pairing.Kind, fileID, thumbID string) {
	switch {
	case len(msg.Photo) > 0:
		return pairing.KindPhoto, msg.Photo[len(msg.Photo)-1].FileID, ""
	case msg.Video != nil:
		if msg.Video.Thumbnail != nil {
			thumbID = msg.Video.Thumbnail.FileID
		}
		return pairing.KindVideo, msg.Video.FileID, thumbID
	}
	return pairing.KindOther, "", ""
}
