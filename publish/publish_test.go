package publish

import (
	"context"
	"testing"
	"time"

	"go_content_bot/config"
	"go_content_bot/tgclient"
	"go_content_bot/tgclient/tgtest"

	"github.com/go-telegram/bot/models"
)

func TestPublish_FanOut(t *testing.T) {
	fake := tgtest.NewFake()
	fake.FailChats[-2] = true
	client := tgclient.New(fake, time.Second)

	p := New(client, []config.TargetChannel{
		{ID: -1, Label: "one"},
		{ID: -2, Label: "broken"},
		{ID: -3, Label: "three"},
	}, "content_bot")

	if n := p.Publish(context.Background(), "vid_abc12345", "Tom & Jerry", "thumb-file"); n != 2 {
		t.Fatalf("reached %d channels; want 2", n)
	}

	photos := fake.SentPhotos()
	if len(photos) != 2 {
		t.Fatalf("sent %d photos", len(photos))
	}
	for _, ph := range photos {
		if ph.ChatID == int64(-2) {
			t.Errorf("failing channel recorded as sent")
		}
		if f, ok := ph.Photo.(*models.InputFileString); !ok || f.Data != "thumb-file" {
			t.Errorf("photo = %#v", ph.Photo)
		}
		if ph.Caption != "🎬 <b>Tom &amp; Jerry</b>\n\n📥 Tap the button below to get the video!" {
			t.Errorf("caption = %q", ph.Caption)
		}
		kb, ok := ph.ReplyMarkup.(*models.InlineKeyboardMarkup)
		if !ok || kb.InlineKeyboard[0][0].URL != "https://t.me/content_bot?start=vid_abc12345" {
			t.Errorf("markup = %#v", ph.ReplyMarkup)
		}
	}
}

func TestPublish_NoTargets(t *testing.T) {
	p := New(tgclient.New(tgtest.NewFake(), time.Second), nil, "b")
	if n := p.Publish(context.Background(), "vid_x", "t", "th"); n != 0 {
		t.Errorf("reached %d", n)
	}
}
