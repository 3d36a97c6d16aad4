package pairing

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTable_StandaloneThenReply(t *testing.T) {
	tbl := NewTable()

	if a := tbl.Apply(Classify(Post{ChatID: 1, MessageID: 10, Kind: KindVideo, FileID: "v", Caption: "Episode 5"})); a.Kind != ActionStore {
		t.Fatalf("standalone: %v", a.Kind)
	}
	if _, unpaired := tbl.Size(); unpaired != 1 {
		t.Fatalf("unpaired = %d", unpaired)
	}

	reply := Post{ChatID: 1, MessageID: 11, Kind: KindPhoto, FileID: "p", ReplyTo: &Antecedent{MessageID: 10}}
	a := tbl.Apply(Classify(reply))
	if a.Kind != ActionComplete {
		t.Fatalf("reply: %v (%s)", a.Kind, a.Reason)
	}
	if a.Draft.MessageID != 10 || a.Draft.ThumbnailID != "p" || a.Draft.Caption != "Episode 5" {
		t.Errorf("draft = %+v", a.Draft)
	}
	if _, unpaired := tbl.Size(); unpaired != 0 {
		t.Errorf("entry not removed after completion")
	}

	// повторный ответ на то же сообщение не публикуется
	reply.MessageID = 12
	if a := tbl.Apply(Classify(reply)); a.Kind != ActionIgnore {
		t.Errorf("repeat reply: %v; want ignore", a.Kind)
	}
}

func TestTable_BatchThirdMessageIgnored(t *testing.T) {
	tbl := NewTable()
	tbl.Apply(Classify(Post{ChatID: 1, MessageID: 1, Kind: KindPhoto, GroupID: "g", FileID: "p"}))
	if a := tbl.Apply(Classify(Post{ChatID: 1, MessageID: 2, Kind: KindVideo, GroupID: "g"})); a.Kind != ActionComplete {
		t.Fatalf("second: %v", a.Kind)
	}
	if a := tbl.Apply(Classify(Post{ChatID: 1, MessageID: 3, Kind: KindPhoto, GroupID: "g", FileID: "p2"})); a.Kind != ActionIgnore {
		t.Errorf("third: %v; want ignore", a.Kind)
	}
	if slots, _ := tbl.Size(); slots != 0 {
		t.Errorf("slots = %d", slots)
	}
}

func TestTable_ConcurrentBatches(t *testing.T) {
	const groups = 200
	tbl := NewTable()
	var completed atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < groups; i++ {
		gid := fmt.Sprintf("grp%d", i)
		for _, p := range []Post{
			{ChatID: 1, MessageID: 2 * i, Kind: KindPhoto, GroupID: gid, FileID: "p"},
			{ChatID: 1, MessageID: 2*i + 1, Kind: KindVideo, GroupID: gid},
		} {
			wg.Add(1)
			go func(p Post) {
				defer wg.Done()
				if tbl.Apply(Classify(p)).Kind == ActionComplete {
					completed.Add(1)
				}
			}(p)
		}
	}
	wg.Wait()

	if got := completed.Load(); got != groups {
		t.Errorf("completed %d pairs; want %d", got, groups)
	}
	if slots, _ := tbl.Size(); slots != 0 {
		t.Errorf("slots left: %d", slots)
	}
}

func TestTable_CompletedKeysExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := NewTable()
	tbl.now = func() time.Time { return now }

	tbl.Apply(Classify(Post{ChatID: 1, MessageID: 1, Kind: KindPhoto, GroupID: "g", FileID: "p"}))
	tbl.Apply(Classify(Post{ChatID: 1, MessageID: 2, Kind: KindVideo, GroupID: "g"}))

	now = now.Add(2 * time.Hour)
	if a := tbl.Apply(Classify(Post{ChatID: 1, MessageID: 3, Kind: KindPhoto, GroupID: "g", FileID: "p"})); a.Kind != ActionStore {
		t.Errorf("after expiry: %v; want store", a.Kind)
	}
}
