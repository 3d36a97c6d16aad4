package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"go_content_bot/config"
	"go_content_bot/database"
	"go_content_bot/delivery"
	"go_content_bot/pairing"
	"go_content_bot/quota"
	"go_content_bot/tgclient"
	"go_content_bot/tgclient/tgtest"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	adminID = int64(1)
	userID  = int64(2)
)

type fakeStore struct {
	users    map[int64]*database.User
	videos   []database.Video
	deleted  []string
	requests map[int64][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]*database.User{}, requests: map[int64][]string{}}
}

func (s *fakeStore) GetOrCreateUser(_ context.Context, id int64) (*database.User, error) {
	u, ok := s.users[id]
	if !ok {
		u = &database.User{ID: id, JoinedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
		s.users[id] = u
	}
	return u, nil
}

func (s *fakeStore) GetUser(_ context.Context, id int64) (*database.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) GetStats(context.Context) (map[string]int64, error) {
	return map[string]int64{database.StatVideos: 3, database.StatDownloads: 1200, database.StatUsers: 9}, nil
}

func (s *fakeStore) CountUsers(context.Context) (int64, error) { return int64(len(s.users)), nil }

func (s *fakeStore) CountActiveUsers(context.Context, time.Time) (int64, error) { return 0, nil }

func (s *fakeStore) ListRecentVideos(_ context.Context, limit int) ([]database.Video, error) {
	return s.videos[:min(limit, len(s.videos))], nil
}

func (s *fakeStore) CountVideos(context.Context) (int64, error) { return int64(len(s.videos)), nil }

func (s *fakeStore) DeleteVideo(_ context.Context, id string) (bool, error) {
	for i, v := range s.videos {
		if v.ID == id {
			s.videos = append(s.videos[:i], s.videos[i+1:]...)
			s.deleted = append(s.deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) AddJoinRequest(_ context.Context, userID int64, channel string) error {
	s.requests[userID] = append(s.requests[userID], channel)
	return nil
}

type fakeDeliverer struct {
	start, verify delivery.Result
	params        []string
}

func (d *fakeDeliverer) Start(_ context.Context, _ int64, param string) (delivery.Result, error) {
	d.params = append(d.params, param)
	return d.start, nil
}

func (d *fakeDeliverer) Verify(context.Context, int64) (delivery.Result, error) {
	return d.verify, nil
}

type fakeLedger struct{}

func (fakeLedger) Check(_ context.Context, _ int64, limit int) (quota.Quota, error) {
	return quota.Quota{Allowed: true, Remaining: limit - 1}, nil
}

func (fakeLedger) Today() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }

type fakePosts struct{ posts []pairing.Post }

func (f *fakePosts) HandlePost(_ context.Context, p pairing.Post) error {
	f.posts = append(f.posts, p)
	return nil
}

type env struct {
	h     *Handler
	tg    *tgtest.Fake
	store *fakeStore
	del   *fakeDeliverer
	posts *fakePosts
}

func newEnv() *env {
	cfg := &config.Config{
		AdminIDs:   []int64{adminID},
		DailyLimit: 3,
		Required: []config.RequiredChannel{
			{Key: "PublicChan", Name: "Public", Link: "https://t.me/PublicChan"},
			{Key: "-100777", Name: "Secret", Link: "https://t.me/+abc", Private: true},
		},
	}
	e := &env{tg: tgtest.NewFake(), store: newFakeStore(), del: &fakeDeliverer{}, posts: &fakePosts{}}
	e.h = New(tgclient.New(e.tg, time.Second), cfg, e.store, e.del, fakeLedger{}, e.posts)
	return e
}

func privateText(from int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   10,
		From: &models.User{ID: from, FirstName: "Ann"},
		Chat: models.Chat{ID: from, Type: "private"},
		Text: text,
	}}
}

func (e *env) lastText(t *testing.T) string {
	t.Helper()
	sent := e.tg.SentMessages()
	if len(sent) == 0 {
		t.Fatal("nothing sent")
	}
	return sent[len(sent)-1].Text
}

func TestStart_BlockedShowsChannels(t *testing.T) {
	e := newEnv()
	e.del.start = delivery.Result{Outcome: delivery.Blocked, NotJoined: []string{"-100777"}}

	e.h.OnMessage(context.Background(), nil, privateText(userID, "/start vid_abcd1234"))

	if len(e.del.params) != 1 || e.del.params[0] != "vid_abcd1234" {
		t.Errorf("start params = %v", e.del.params)
	}
	if _, ok := e.store.users[userID]; !ok {
		t.Errorf("user not created on start")
	}
	sent := e.tg.SentMessages()
	if len(sent) != 1 || !strings.Contains(sent[0].Text, "Welcome") {
		t.Fatalf("sent = %+v", sent)
	}
	kb := sent[0].ReplyMarkup.(*models.InlineKeyboardMarkup)
	if kb.InlineKeyboard[1][0].Text != "❌ 📩 Secret" || kb.InlineKeyboard[0][0].Text != "✅ 📢 Public" {
		t.Errorf("buttons = %+v", kb.InlineKeyboard)
	}
}

func TestStart_Outcomes(t *testing.T) {
	cases := map[string]struct {
		res  delivery.Result
		want string
	}{
		"delivered": {delivery.Result{Outcome: delivery.Delivered, Remaining: 2}, "Today's remaining: 2/3"},
		"unlimited": {delivery.Result{Outcome: delivery.Delivered, Unlimited: true, Remaining: 3}, "✅ Video sent!"},
		"denied":    {delivery.Result{Outcome: delivery.Denied}, "Daily Limit Reached"},
		"not found": {delivery.Result{Outcome: delivery.NotFound}, "Video Not Found"},
		"verified":  {delivery.Result{Outcome: delivery.Verified}, "Congratulations"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv()
			e.del.start = tc.res
			e.h.OnMessage(context.Background(), nil, privateText(userID, "/start"))
			if got := e.lastText(t); !strings.Contains(got, tc.want) {
				t.Errorf("text = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestVerifyCallback(t *testing.T) {
	cb := func() *models.Update {
		return &models.Update{CallbackQuery: &models.CallbackQuery{
			ID:   "cb1",
			From: models.User{ID: userID},
			Data: "verify",
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 55, Chat: models.Chat{ID: userID}},
			},
		}}
	}

	t.Run("still blocked", func(t *testing.T) {
		e := newEnv()
		e.del.verify = delivery.Result{Outcome: delivery.Blocked, NotJoined: []string{"PublicChan"}}
		e.h.OnCallback(context.Background(), nil, cb())

		edits := e.tg.Edited()
		if len(edits) != 1 || edits[0].MessageID != 55 || !strings.Contains(edits[0].Text, "Verification Failed") {
			t.Fatalf("edits = %+v", edits)
		}
		if len(e.tg.Answers) != 1 {
			t.Errorf("callback not answered")
		}
	})

	t.Run("delivers pending", func(t *testing.T) {
		e := newEnv()
		e.del.verify = delivery.Result{Outcome: delivery.Delivered, Remaining: 1}
		e.h.OnCallback(context.Background(), nil, cb())

		edits := e.tg.Edited()
		if len(edits) != 1 || !strings.Contains(edits[0].Text, "Congratulations") {
			t.Fatalf("edits = %+v", edits)
		}
		if got := e.lastText(t); !strings.Contains(got, "1/3") {
			t.Errorf("text = %q", got)
		}
	})
}

func TestPanel_AdminOnly(t *testing.T) {
	e := newEnv()
	e.h.OnMessage(context.Background(), nil, privateText(userID, "/panel"))
	if got := e.lastText(t); !strings.Contains(got, "don't have access") {
		t.Errorf("non-admin got %q", got)
	}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "/panel"))
	if got := e.lastText(t); !strings.Contains(got, "Admin Panel") {
		t.Errorf("admin got %q", got)
	}

	n := len(e.tg.SentMessages())
	e.h.OnMessage(context.Background(), nil, privateText(userID, "📤 Post Stats"))
	if len(e.tg.SentMessages()) != n {
		t.Errorf("non-admin button answered")
	}
}

func TestAdmin_PostStats(t *testing.T) {
	e := newEnv()
	e.h.OnMessage(context.Background(), nil, privateText(adminID, "📤 Post Stats"))
	got := e.lastText(t)
	for _, want := range []string{"Total Videos: 3", "Total Downloads: 1.2K", "Total Users: 9"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestAdmin_DeleteByText(t *testing.T) {
	e := newEnv()
	e.store.videos = []database.Video{{ID: "vid_aaaa0000", Title: "A"}}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "🗑️ Delete: vid_aaaa0000"))
	if len(e.store.deleted) != 1 || !strings.Contains(e.lastText(t), "deleted") {
		t.Errorf("deleted=%v text=%q", e.store.deleted, e.lastText(t))
	}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "🗑️ Delete: vid_aaaa0000"))
	if !strings.Contains(e.lastText(t), "not found") {
		t.Errorf("second delete: %q", e.lastText(t))
	}
}

func TestAdmin_DeleteCallbackRequiresAdmin(t *testing.T) {
	e := newEnv()
	e.store.videos = []database.Video{{ID: "vid_aaaa0000"}}

	e.h.OnCallback(context.Background(), nil, &models.Update{CallbackQuery: &models.CallbackQuery{
		ID: "cb", From: models.User{ID: userID}, Data: "del_vid_aaaa0000",
	}})

	if len(e.store.deleted) != 0 {
		t.Fatal("non-admin deleted a video")
	}
	if len(e.tg.Answers) != 1 || e.tg.Answers[0].Text != "❌ Not authorized" {
		t.Errorf("answers = %+v", e.tg.Answers)
	}
}

func TestAdmin_VideoList(t *testing.T) {
	e := newEnv()
	e.store.videos = []database.Video{{ID: "vid_a", Title: "First", Downloads: 4}, {ID: "vid_b", Title: "Second"}}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "🎬 Videos"))

	sent := e.tg.SentMessages()
	last := sent[len(sent)-1]
	kb := last.ReplyMarkup.(*models.InlineKeyboardMarkup)
	if len(kb.InlineKeyboard) != 3 || kb.InlineKeyboard[0][0].CallbackData != "del_vid_a" || kb.InlineKeyboard[2][0].CallbackData != "admin_back" {
		t.Errorf("keyboard = %+v", kb.InlineKeyboard)
	}
	if !strings.Contains(last.Text, "Total: 2 videos") {
		t.Errorf("text = %q", last.Text)
	}
}

func TestUserInfo(t *testing.T) {
	e := newEnv()
	today := fakeLedger{}.Today()
	e.store.users[7] = &database.User{ID: 7, DownloadsToday: 2, LastDownloadDate: &today, TotalDownloads: 40}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "/user 7"))
	if got := e.lastText(t); !strings.Contains(got, "Downloads Today: 2") || !strings.Contains(got, "Total Downloads: 40") {
		t.Errorf("text = %q", got)
	}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "/user 8"))
	if got := e.lastText(t); !strings.Contains(got, "User not found") {
		t.Errorf("unknown user: %q", got)
	}

	e.h.OnMessage(context.Background(), nil, privateText(adminID, "/user x"))
	if got := e.lastText(t); !strings.Contains(got, "Usage") {
		t.Errorf("bad arg: %q", got)
	}
}

func TestOnChannelPost_ReplyConversion(t *testing.T) {
	e := newEnv()
	update := &models.Update{ChannelPost: &models.Message{
		ID:      21,
		Chat:    models.Chat{ID: -100500},
		Caption: "Episode 5",
		Photo:   []models.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		ReplyToMessage: &models.Message{
			ID:    20,
			Chat:  models.Chat{ID: -100500},
			Video: &models.Video{FileID: "vid-file", Thumbnail: &models.PhotoSize{FileID: "thumb"}},
		},
	}}

	e.h.OnChannelPost(context.Background(), nil, update)

	if len(e.posts.posts) != 1 {
		t.Fatalf("posts = %d", len(e.posts.posts))
	}
	p := e.posts.posts[0]
	if p.Kind != pairing.KindPhoto || p.FileID != "large" || p.ChatID != -100500 || p.MessageID != 21 {
		t.Errorf("post = %+v", p)
	}
	want := pairing.Antecedent{MessageID: 20, Kind: pairing.KindVideo, FileID: "vid-file"}
	if p.ReplyTo == nil || *p.ReplyTo != want {
		t.Errorf("reply = %+v", p.ReplyTo)
	}
}

func TestOnChannelPost_VideoThumbnail(t *testing.T) {
	e := newEnv()
	e.h.OnChannelPost(context.Background(), nil, &models.Update{ChannelPost: &models.Message{
		ID:           5,
		MediaGroupID: "g1",
		Video:        &models.Video{FileID: "v", Thumbnail: &models.PhotoSize{FileID: "t"}},
	}})

	p := e.posts.posts[0]
	if p.Kind != pairing.KindVideo || p.ThumbID != "t" || p.GroupID != "g1" || p.ReplyTo != nil {
		t.Errorf("post = %+v", p)
	}
}

func TestOnJoinRequest(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	e.h.OnJoinRequest(ctx, nil, &models.Update{ChatJoinRequest: &models.ChatJoinRequest{
		Chat: models.Chat{ID: -100777}, From: models.User{ID: userID},
	}})
	e.h.OnJoinRequest(ctx, nil, &models.Update{ChatJoinRequest: &models.ChatJoinRequest{
		Chat: models.Chat{ID: -5, Username: "publicchan"}, From: models.User{ID: userID},
	}})
	e.h.OnJoinRequest(ctx, nil, &models.Update{ChatJoinRequest: &models.ChatJoinRequest{
		Chat: models.Chat{ID: -6}, From: models.User{ID: userID},
	}})

	got := e.store.requests[userID]
	if len(got) != 2 || got[0] != "-100777" || got[1] != "PublicChan" {
		t.Errorf("requests = %v", got)
	}
}

func TestRecover(t *testing.T) {
	wrapped := Recover(func(context.Context, *bot.Bot, *models.Update) { panic("boom") })
	wrapped(context.Background(), nil, &models.Update{ID: 1})
}

func TestMyStatsAndProfile(t *testing.T) {
	e := newEnv()
	e.store.users[userID] = &database.User{ID: userID, TotalDownloads: 12, JoinedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)}

	e.h.OnMessage(context.Background(), nil, privateText(userID, "📊 My Stats"))
	got := e.lastText(t)
	for _, want := range []string{"👤 Regular", "Today's Remaining: 2/3", "Total Downloads: 12", "2026-02-03"} {
		if !strings.Contains(got, want) {
			t.Errorf("my stats: missing %q in %q", want, got)
		}
	}

	e.h.OnMessage(context.Background(), nil, privateText(userID, "👤 Profile"))
	if got := e.lastText(t); !strings.Contains(got, "Name: Ann") || !strings.Contains(got, "Regular Member") {
		t.Errorf("profile = %q", got)
	}
}
