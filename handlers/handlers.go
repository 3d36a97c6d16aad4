package handlers

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"go_content_bot/config"
	"go_content_bot/database"
	"go_content_bot/delivery"
	"go_content_bot/messages"
	"go_content_bot/pairing"
	"go_content_bot/quota"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// Messenger: исходящие вызовы Telegram. Реализуется *tgclient.Client.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error
	Edit(ctx context.Context, chatID int64, messageID int, text string, markup models.ReplyMarkup) error
	Answer(ctx context.Context, callbackID, text string)
}

// Store: операции БД, которые нужны консолям.
type Store interface {
	GetOrCreateUser(ctx context.Context, id int64) (*database.User, error)
	GetUser(ctx context.Context, id int64) (*database.User, error)
	GetStats(ctx context.Context) (map[string]int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context, today time.Time) (int64, error)
	ListRecentVideos(ctx context.Context, limit int) ([]database.Video, error)
	CountVideos(ctx context.Context) (int64, error)
	DeleteVideo(ctx context.Context, id string) (bool, error)
	AddJoinRequest(ctx context.Context, userID int64, channel string) error
}

type Deliverer interface {
	Start(ctx context.Context, userID int64, param string) (delivery.Result, error)
	Verify(ctx context.Context, userID int64) (delivery.Result, error)
}

type Ledger interface {
	Check(ctx context.Context, userID int64, limit int) (quota.Quota, error)
	Today() time.Time
}

type PostHandler interface {
	HandlePost(ctx context.Context, p pairing.Post) error
}

type Handler struct {
	tg       Messenger
	cfg      *config.Config
	store    Store
	delivery Deliverer
	ledger   Ledger
	posts    PostHandler
}

func New(tg Messenger, cfg *config.Config, store Store, d Deliverer, ledger Ledger, posts PostHandler) *Handler {
	return &Handler{tg: tg, cfg: cfg, store: store, delivery: d, ledger: ledger, posts: posts}
}

// Recover не даёт панике в одном обработчике уронить процесс.
func Recover(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Int64("update_id", update.ID).Bytes("stack", debug.Stack()).Msg("handler panic")
			}
		}()
		next(ctx, b, update)
	}
}

// OnMessage разбирает личные текстовые сообщения: команды и кнопки меню.
func (h *Handler) OnMessage(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat.Type != "private" {
		return
	}
	text := strings.TrimSpace(msg.Text)
	command, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/start":
		h.onStart(ctx, msg, arg)
		return
	case "/help":
		h.send(ctx, msg.Chat.ID, messages.MsgHelp, messages.MainMenu())
		return
	case "/panel":
		h.onPanel(ctx, msg)
		return
	case "/user":
		if h.requireAdmin(ctx, msg) {
			h.onUserInfo(ctx, msg.Chat.ID, arg)
		}
		return
	}

	switch text {
	case messages.BtnMyStats:
		h.onMyStats(ctx, msg)
	case messages.BtnProfile:
		h.onProfile(ctx, msg)
	case messages.BtnHelp:
		h.send(ctx, msg.Chat.ID, messages.MsgHelp, messages.MainMenu())
	case messages.BtnIveJoined:
		h.onJoinedButton(ctx, msg)
	case messages.BtnPostStats, messages.BtnUsers, messages.BtnVideos, messages.BtnSettings, messages.BtnBackMain:
		if h.cfg.IsAdmin(msg.From.ID) {
			h.onAdminButton(ctx, msg.Chat.ID, text)
		}
	default:
		if id, ok := strings.CutPrefix(text, messages.DeletePrefix); ok && h.cfg.IsAdmin(msg.From.ID) {
			h.onDeleteText(ctx, msg.Chat.ID, strings.TrimSpace(id))
		}
	}
}

// OnCallback обрабатывает inline-кнопки.
func (h *Handler) OnCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	var chatID int64
	var messageID int
	if cb.Message.Message != nil {
		chatID, messageID = cb.Message.Message.Chat.ID, cb.Message.Message.ID
	}

	switch {
	case cb.Data == messages.CbVerify:
		h.tg.Answer(ctx, cb.ID, "")
		h.onVerify(ctx, cb.From.ID, chatID, messageID)

	case cb.Data == messages.CbAdminBack || strings.HasPrefix(cb.Data, messages.CbDeletePrefix):
		if !h.cfg.IsAdmin(cb.From.ID) {
			h.tg.Answer(ctx, cb.ID, messages.MsgNotAuthed)
			return
		}
		h.tg.Answer(ctx, cb.ID, "")
		h.onAdminCallback(ctx, chatID, messageID, cb.Data)

	default:
		h.tg.Answer(ctx, cb.ID, "")
	}
}

func (h *Handler) send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	// ошибка уже залогирована в tgclient
	_ = h.tg.Send(ctx, chatID, text, markup)
}

// fail: ошибка хранилища на основном пути: логируем и сообщаем пользователю.
func (h *Handler) fail(ctx context.Context, chatID int64, err error, what string) {
	log.Error().Err(err).Int64("chat_id", chatID).Msg(what)
	h.send(ctx, chatID, messages.MsgError, nil)
}
