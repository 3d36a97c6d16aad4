package delivery

import "sync"

// Pending хранит не больше одного запрошенного видео на пользователя, пока
// тот проходит проверку подписки.
type Pending struct {
	mu  sync.Mutex
	ids map[int64]string
}

func NewPending() *Pending {
	return &Pending{ids: make(map[int64]string)}
}

// Put заменяет прежний запрос пользователя.
func (p *Pending) Put(userID int64, videoID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[userID] = videoID
}

// Take возвращает запрос пользователя и удаляет его.
func (p *Pending) Take(userID int64) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.ids[userID]
	if ok {
		delete(p.ids, userID)
	}
	return id, ok
}

func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}
