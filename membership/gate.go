// Package membership проверяет подписку пользователя на все обязательные каналы.
package membership

import (
	"context"

	"go_content_bot/config"

	"github.com/rs/zerolog/log"
)

// MemberLookup получает текущий статус пользователя в чате.
type MemberLookup interface {
	MemberStatus(ctx context.Context, chatID any, userID int64) (string, error)
}

// JoinRequests: сохранённые заявки на вступление в приватные каналы.
type JoinRequests interface {
	HasJoinRequest(ctx context.Context, userID int64, channel string) (bool, error)
	RemoveJoinRequest(ctx context.Context, userID int64, channel string) error
}

// Result перечисляет невыполненные каналы в порядке конфигурации.
type Result struct {
	OK        bool
	NotJoined []string
}

// Joined сообщает, выполнен ли канал key.
func (r Result) Joined(key string) bool {
	for _, k := range r.NotJoined {
		if k == key {
			return false
		}
	}
	return true
}

type Gate struct {
	channels []config.RequiredChannel
	members  MemberLookup
	requests JoinRequests
}

func NewGate(channels []config.RequiredChannel, members MemberLookup, requests JoinRequests) *Gate {
	return &Gate{channels: channels, members: members, requests: requests}
}

func (g *Gate) Channels() []config.RequiredChannel {
	return g.channels
}

// Check проверяет все обязательные каналы. Ошибки запроса и хранилища
// считаются «не подписан» и наружу не возвращаются.
func (g *Gate) Check(ctx context.Context, userID int64) Result {
	var notJoined []string
	for _, ch := range g.channels {
		if !g.satisfied(ctx, userID, ch) {
			notJoined = append(notJoined, ch.Key)
		}
	}
	return Result{OK: len(notJoined) == 0, NotJoined: notJoined}
}

func (g *Gate) satisfied(ctx context.Context, userID int64, ch config.RequiredChannel) bool {
	if g.isMember(ctx, userID, ch) {
		// заявки хранятся только для приватных каналов
		if ch.Private {
			if err := g.requests.RemoveJoinRequest(ctx, userID, ch.Key); err != nil {
				log.Error().Err(err).Int64("user_id", userID).Str("channel", ch.Key).Msg("stale join request cleanup failed")
			}
		}
		return true
	}

	if !ch.Private {
		return false
	}

	ok, err := g.requests.HasJoinRequest(ctx, userID, ch.Key)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Str("channel", ch.Key).Msg("join request lookup failed")
		return false
	}
	return ok
}

func (g *Gate) isMember(ctx context.Context, userID int64, ch config.RequiredChannel) bool {
	status, err := g.members.MemberStatus(ctx, ch.ChatID(), userID)
	if err != nil {
		return false
	}
	switch status {
	case "member", "administrator", "creator", "restricted":
		return true
	}
	return false
}
