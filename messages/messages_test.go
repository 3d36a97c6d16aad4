package messages

import (
	"strings"
	"testing"
	"time"

	"go_content_bot/config"
)

func TestFormatVideoSent(t *testing.T) {
	if got := FormatVideoSent(5, 300, true); got != MsgVideoSent {
		t.Errorf("unlimited: %q", got)
	}
	if got := FormatVideoSent(2, 3, false); !strings.Contains(got, "2/3") {
		t.Errorf("limited: %q", got)
	}
}

func TestFormatPreviewCaption_Escapes(t *testing.T) {
	got := FormatPreviewCaption("Tom & <Jerry>")
	if !strings.Contains(got, "<b>Tom &amp; &lt;Jerry&gt;</b>") {
		t.Errorf("caption = %q", got)
	}
}

func TestFormatVideoList(t *testing.T) {
	got := FormatVideoList([]VideoLine{
		{ID: "vid_aaaa1111", Title: "An extremely long title that keeps going", Downloads: 7},
	}, 12)
	if !strings.Contains(got, "<code>vid_aaaa1111</code> - An extremely long title t... (7📥)") {
		t.Errorf("list = %q", got)
	}
	if !strings.Contains(got, "Total: 12 videos") {
		t.Errorf("total missing: %q", got)
	}
}

func TestFormatMyStats(t *testing.T) {
	joined := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := FormatMyStats(Stats{Remaining: 2, Limit: 3, TotalDownloads: 1500, JoinedAt: joined})
	for _, want := range []string{"👤 Regular", "2/3", "1.5K", "2026-03-01"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if got := FormatMyStats(Stats{Premium: true}); !strings.Contains(got, "Unlimited") || !strings.Contains(got, "Unknown") {
		t.Errorf("premium = %q", got)
	}
}

func TestChannelButtons(t *testing.T) {
	channels := []config.RequiredChannel{
		{Key: "pub", Name: "Public", Link: "https://t.me/pub"},
		{Key: "-100", Name: "Secret", Link: "https://t.me/+x", Private: true},
	}
	kb := ChannelButtons(channels, []string{"-100"})

	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d", len(kb.InlineKeyboard))
	}
	if got := kb.InlineKeyboard[0][0].Text; got != "✅ 📢 Public" {
		t.Errorf("row 0 = %q", got)
	}
	if got := kb.InlineKeyboard[1][0].Text; got != "❌ 📩 Secret" {
		t.Errorf("row 1 = %q", got)
	}
	if got := kb.InlineKeyboard[2][0].CallbackData; got != CbVerify {
		t.Errorf("verify button = %q", got)
	}
}

func TestFormatDeleted(t *testing.T) {
	if !strings.HasPrefix(FormatDeleted("vid_x", true), "✅") || !strings.HasPrefix(FormatDeleted("vid_x", false), "❌") {
		t.Error("deleted/not found texts swapped")
	}
}
