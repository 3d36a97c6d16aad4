package pairing

import (
	"sync"
	"time"
)

const (
	completedTTL  = time.Hour
	pruneInterval = time.Minute
)

// Table: состояние связывания в памяти, открытые альбомы и одиночные посты.
// Все изменения идут под одной блокировкой, поэтому обнаружение готовой пары
// и удаление записи происходят вместе и срабатывают один раз на ключ.
//
// Незавершённые записи не удаляются. Завершённые ключи помнятся час, чтобы
// запоздавшие сообщения по ним игнорировались.
type Table struct {
	mu        sync.Mutex
	slots     map[string]Slot
	unpaired  map[string]Post
	completed map[string]time.Time
	lastPrune time.Time
	now       func() time.Time
}

func NewTable() *Table {
	return &Table{
		slots:     make(map[string]Slot),
		unpaired:  make(map[string]Post),
		completed: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Apply принимает решение по ev на текущем состоянии и сохраняет результат.
func (t *Table) Apply(ev Event) Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune()
	key := ev.Key()
	if _, done := t.completed[key]; done {
		return ignore("correlation key already completed")
	}

	switch ev.Kind {
	case BatchPhoto, BatchVideo:
		slot, action := MergeBatch(t.slots[key], ev)
		if action.Kind == ActionComplete {
			delete(t.slots, key)
			t.completed[key] = t.now()
		} else if action.Kind == ActionStore {
			t.slots[key] = slot
		}
		return action

	case ReplyPhoto, ReplyVideo:
		var stored *Post
		if p, ok := t.unpaired[key]; ok {
			stored = &p
		}
		action := ResolveReply(ev, stored)
		if action.Kind == ActionComplete {
			delete(t.unpaired, key)
			t.completed[key] = t.now()
		}
		return action

	case StandalonePhoto, StandaloneVideo:
		t.unpaired[key] = ev.Post
		return Action{Kind: ActionStore}
	}

	return ignore("unsupported message")
}

// Size возвращает число открытых альбомов и одиночных постов.
func (t *Table) Size() (slots, unpaired int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots), len(t.unpaired)
}

func (t *Table) prune() {
	now := t.now()
	if now.Sub(t.lastPrune) < pruneInterval {
		return
	}
	t.lastPrune = now
	for key, at := range t.completed {
		if now.Sub(at) > completedTTL {
			delete(t.completed, key)
		}
	}
}
