// Package tgtest: Telegram API в памяти для тестов.
package tgtest

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var ErrFakeTransport = errors.New("fake transport failure")

// Fake запоминает все исходящие вызовы и падает на чатах из FailChats.
type Fake struct {
	mu sync.Mutex

	Sent      []bot.SendMessageParams
	Photos    []bot.SendPhotoParams
	Forwards  []bot.ForwardMessageParams
	Edits     []bot.EditMessageTextParams
	Answers   []bot.AnswerCallbackQueryParams
	FailChats map[int64]bool
	// FailForward ломает все вызовы ForwardMessage.
	FailForward bool
	// Members: чат (int64 или "@handle") -> пользователь -> статус. Нет записи: ошибка.
	Members map[any]map[int64]models.ChatMemberType
	nextID  int
}

func NewFake() *Fake {
	return &Fake{
		FailChats: make(map[int64]bool),
		Members:   make(map[any]map[int64]models.ChatMemberType),
	}
}

func (f *Fake) failFor(chatID any) bool {
	id, ok := chatID.(int64)
	return ok && f.FailChats[id]
}

func (f *Fake) message() *models.Message {
	f.nextID++
	return &models.Message{ID: f.nextID}
}

func (f *Fake) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor(p.ChatID) {
		return nil, ErrFakeTransport
	}
	f.Sent = append(f.Sent, *p)
	return f.message(), nil
}

func (f *Fake) SendPhoto(_ context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor(p.ChatID) {
		return nil, ErrFakeTransport
	}
	f.Photos = append(f.Photos, *p)
	return f.message(), nil
}

func (f *Fake) ForwardMessage(_ context.Context, p *bot.ForwardMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailForward || f.failFor(p.ChatID) {
		return nil, ErrFakeTransport
	}
	f.Forwards = append(f.Forwards, *p)
	return f.message(), nil
}

func (f *Fake) GetChatMember(_ context.Context, p *bot.GetChatMemberParams) (*models.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.Members[p.ChatID][p.UserID]
	if !ok {
		return nil, ErrFakeTransport
	}
	return &models.ChatMember{Type: status}, nil
}

func (f *Fake) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor(p.ChatID) {
		return nil, ErrFakeTransport
	}
	f.Edits = append(f.Edits, *p)
	return f.message(), nil
}

func (f *Fake) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, *p)
	return true, nil
}

// SetMember задаёт статус для GetChatMember.
func (f *Fake) SetMember(chatID any, userID int64, status models.ChatMemberType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Members[chatID] == nil {
		f.Members[chatID] = make(map[int64]models.ChatMemberType)
	}
	f.Members[chatID][userID] = status
}

// Копии под блокировкой для проверок в тестах.

func (f *Fake) SentMessages() []bot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.SendMessageParams(nil), f.Sent...)
}

func (f *Fake) SentPhotos() []bot.SendPhotoParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.SendPhotoParams(nil), f.Photos...)
}

func (f *Fake) Forwarded() []bot.ForwardMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.ForwardMessageParams(nil), f.Forwards...)
}

func (f *Fake) Edited() []bot.EditMessageTextParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.EditMessageTextParams(nil), f.Edits...)
}
