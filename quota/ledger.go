// Package quota следит за дневным лимитом выдачи на пользователя.
//
// Граница дня: календарная дата в заданной таймзоне. Сброс устаревшего дня и
// инкремент выполняются одной операцией хранилища каждый, поэтому параллельные
// запросы одного пользователя не теряют обновления и не сбрасывают день дважды.
package quota

import (
	"context"
	"time"

	"go_content_bot/database"
)

// Store: хранилище для учёта лимита.
type Store interface {
	// TouchDaily создаёт аккаунт при необходимости и обнуляет счётчик с
	// устаревшей датой, возвращая текущее значение.
	TouchDaily(ctx context.Context, userID int64, today time.Time) (database.DailyUsage, error)
	// RecordDownload увеличивает дневной и общий счётчики.
	RecordDownload(ctx context.Context, userID int64, today time.Time) error
}

// Quota: результат проверки перед выдачей.
type Quota struct {
	Allowed   bool
	Remaining int
	Unlimited bool
}

type Ledger struct {
	store   Store
	premium map[int64]struct{}
	loc     *time.Location
	now     func() time.Time
}

func NewLedger(store Store, premium []int64, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	set := make(map[int64]struct{}, len(premium))
	for _, id := range premium {
		set[id] = struct{}{}
	}
	return &Ledger{store: store, premium: set, loc: loc, now: time.Now}
}

// WithClock подменяет источник времени для тестов.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Today: текущая дата в таймзоне лимита в виде полуночи UTC.
func (l *Ledger) Today() time.Time {
	y, m, d := l.now().In(l.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsPremium проверяет только список PREMIUM_USERS; флаг из БД учитывает Check.
func (l *Ledger) IsPremium(userID int64) bool {
	_, ok := l.premium[userID]
	return ok
}

// Check отвечает, можно ли выдать userID ещё одно видео сегодня. Ничего не списывает.
func (l *Ledger) Check(ctx context.Context, userID int64, limit int) (Quota, error) {
	usage, err := l.store.TouchDaily(ctx, userID, l.Today())
	if err != nil {
		return Quota{}, err
	}

	if usage.Premium || l.IsPremium(userID) {
		return Quota{Allowed: true, Remaining: limit, Unlimited: true}, nil
	}

	remaining := limit - usage.Used
	if remaining < 0 {
		remaining = 0
	}
	return Quota{Allowed: remaining > 0, Remaining: remaining}, nil
}

// Consume засчитывает одну выдачу.
func (l *Ledger) Consume(ctx context.Context, userID int64) error {
	return l.store.RecordDownload(ctx, userID, l.Today())
}
