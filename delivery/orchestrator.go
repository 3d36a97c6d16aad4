// Package delivery решает, что делать с запросом видео: попросить подписаться
// на каналы, отказать по лимиту или переслать исходное сообщение.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"go_content_bot/database"
	"go_content_bot/membership"
	"go_content_bot/metrics"
	"go_content_bot/quota"

	"github.com/rs/zerolog/log"
)

type Outcome int

const (
	// Blocked: не все каналы выполнены, запрос (если был) откладывается.
	Blocked Outcome = iota
	// Verified: проверка пройдена, выдавать нечего.
	Verified
	// Denied: дневной лимит исчерпан.
	Denied
	Delivered
	// NotFound: ID неизвестен или пересылка не удалась.
	NotFound
)

func (o Outcome) String() string {
	return [...]string{"blocked", "verified", "denied", "delivered", "not_found"}[o]
}

type Result struct {
	Outcome   Outcome
	NotJoined []string
	Remaining int
	Unlimited bool
	VideoID   string
}

type Gate interface {
	Check(ctx context.Context, userID int64) membership.Result
}

type Ledger interface {
	Check(ctx context.Context, userID int64, limit int) (quota.Quota, error)
	Consume(ctx context.Context, userID int64) error
}

type Catalog interface {
	GetVideo(ctx context.Context, id string) (*database.Video, error)
	IncrementDownloads(ctx context.Context, id string) error
}

// Forwarder реализуется *tgclient.Client.
type Forwarder interface {
	Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error
}

type Orchestrator struct {
	gate    Gate
	ledger  Ledger
	catalog Catalog
	tg      Forwarder
	pending *Pending
	limit   int
}

func New(gate Gate, ledger Ledger, catalog Catalog, tg Forwarder, pending *Pending, limit int) *Orchestrator {
	return &Orchestrator{gate: gate, ledger: ledger, catalog: catalog, tg: tg, pending: pending, limit: limit}
}

func (o *Orchestrator) Limit() int { return o.limit }

// Start обрабатывает /start с необязательным параметром deep-link. Параметр,
// не похожий на ID видео, считается обычным стартом.
func (o *Orchestrator) Start(ctx context.Context, userID int64, param string) (Result, error) {
	videoID := ""
	if database.IsVideoID(param) {
		videoID = param
	}

	gate := o.gate.Check(ctx, userID)
	if !gate.OK {
		if videoID != "" {
			o.pending.Put(userID, videoID)
		}
		return o.finish(userID, Result{Outcome: Blocked, NotJoined: gate.NotJoined, VideoID: videoID}), nil
	}
	// Новый запрос заменяет отложенный, пустой /start забирает отложенный.
	pendingID, hasPending := o.pending.Take(userID)
	if videoID == "" {
		if !hasPending {
			return o.finish(userID, Result{Outcome: Verified}), nil
		}
		videoID = pendingID
	}
	return o.deliver(ctx, userID, videoID)
}

// Verify повторно проверяет подписку по кнопке «Joined» и выдаёт отложенный
// запрос, если он есть. При неудачной проверке запрос остаётся.
func (o *Orchestrator) Verify(ctx context.Context, userID int64) (Result, error) {
	gate := o.gate.Check(ctx, userID)
	if !gate.OK {
		return o.finish(userID, Result{Outcome: Blocked, NotJoined: gate.NotJoined}), nil
	}
	videoID, ok := o.pending.Take(userID)
	if !ok {
		return o.finish(userID, Result{Outcome: Verified}), nil
	}
	return o.deliver(ctx, userID, videoID)
}

func (o *Orchestrator) deliver(ctx context.Context, userID int64, videoID string) (Result, error) {
	q, err := o.ledger.Check(ctx, userID, o.limit)
	if err != nil {
		return Result{}, fmt.Errorf("quota check: %w", err)
	}
	res := Result{VideoID: videoID, Remaining: q.Remaining, Unlimited: q.Unlimited}
	if !q.Allowed {
		res.Outcome = Denied
		return o.finish(userID, res), nil
	}

	video, err := o.catalog.GetVideo(ctx, videoID)
	if errors.Is(err, database.ErrNotFound) {
		res.Outcome = NotFound
		return o.finish(userID, res), nil
	}
	if err != nil {
		return Result{}, err
	}

	if err := o.tg.Forward(ctx, userID, video.SourceChannel, video.MessageID); err != nil {
		res.Outcome = NotFound
		return o.finish(userID, res), nil
	}

	// видео уже у пользователя: ошибки учёта только логируем
	if err := o.ledger.Consume(ctx, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Str("video_id", videoID).Msg("quota consume failed after delivery")
	}
	if err := o.catalog.IncrementDownloads(ctx, videoID); err != nil {
		log.Error().Err(err).Str("video_id", videoID).Msg("download counter update failed")
	}

	res.Outcome = Delivered
	if !res.Unlimited {
		res.Remaining = max(res.Remaining-1, 0)
	}
	return o.finish(userID, res), nil
}

func (o *Orchestrator) finish(userID int64, res Result) Result {
	metrics.Deliveries.WithLabelValues(res.Outcome.String()).Inc()
	log.Info().
		Int64("user_id", userID).
		Str("video_id", res.VideoID).
		Str("outcome", res.Outcome.String()).
		Int("remaining", res.Remaining).
		Msg("delivery request")
	return res
}
