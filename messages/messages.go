// Package messages содержит тексты бота. Все тексты: HTML, пользовательские
// значения экранируются здесь же.
package messages

import (
	"fmt"
	"html"
	"strings"
	"time"

	"go_content_bot/sysutil"
)

const (
	MsgWelcome = `🎉 <b>Welcome to our Bot!</b>

To use this bot, you need to join our channels first.

Please join all the channels below and click "✅ Joined" to verify.`

	MsgSuccess = `✅ <b>Congratulations!</b>

You have joined all required channels.
Now you can use all features of this bot.`

	MsgNotJoined = `❌ <b>Verification Failed!</b>

You haven't joined all the required channels yet.
Please join all channels and try again.`

	MsgLimitReached = `⏳ <b>Daily Limit Reached!</b>

You have already downloaded %d videos today.
Please try again tomorrow.`

	MsgVideoNotFound = `❌ <b>Video Not Found!</b>

This video does not exist or has been deleted.`

	MsgVideoSent = `✅ Video sent!`

	MsgVideoSentRemaining = `✅ Video sent!

📊 Today's remaining: %d/%d`

	MsgHelp = `📚 <b>Bot Help</b>

This bot helps you get videos from our channels.

<b>How to use:</b>
1. Join all required channels
2. Click on video buttons in public channels
3. Get the video directly here!

<b>Commands:</b>
/start - Start the bot
/help - Show this help

📢 = Public channel (must join)
📩 = Private channel (request to join)`

	MsgMainMenu    = `Main menu:`
	MsgAdminPanel  = "⚙️ <b>Admin Panel</b>\n\nSelect an option:"
	MsgNoAccess    = `❌ You don't have access to admin panel.`
	MsgNotAuthed   = `❌ Not authorized`
	MsgNoVideos    = `No videos yet.`
	MsgError       = `❌ Something went wrong. Please try again later.`
	MsgUserUsage   = `Usage: /user &lt;user_id&gt;`
	MsgUserUnknown = `❌ User not found.`

	PreviewCaption = "🎬 <b>%s</b>\n\n📥 Tap the button below to get the video!"
)

func FormatLimitReached(limit int) string {
	return fmt.Sprintf(MsgLimitReached, limit)
}

// FormatVideoSent: для безлимитных пользователей остаток не показываем.
func FormatVideoSent(remaining, limit int, unlimited bool) string {
	if unlimited {
		return MsgVideoSent
	}
	return fmt.Sprintf(MsgVideoSentRemaining, remaining, limit)
}

func FormatNotJoined() string {
	return MsgNotJoined + "\n\n" + MsgWelcome
}

func FormatPreviewCaption(title string) string {
	return fmt.Sprintf(PreviewCaption, html.EscapeString(title))
}

func FormatPostStats(videos, downloads, users int64) string {
	return fmt.Sprintf(`📊 <b>Post Statistics</b>

🎬 Total Videos: %s
📥 Total Downloads: %s
👥 Total Users: %s`,
		sysutil.FormatNumber(videos), sysutil.FormatNumber(downloads), sysutil.FormatNumber(users))
}

func FormatUserStats(total, activeToday int64) string {
	return fmt.Sprintf(`👥 <b>User Statistics</b>

📊 Total Users: %s
🟢 Active Today: %s`, sysutil.FormatNumber(total), sysutil.FormatNumber(activeToday))
}

// VideoLine: строка списка видео в админке.
type VideoLine struct {
	ID        string
	Title     string
	Downloads int
}

const listTitleRunes = 25

func FormatVideoList(videos []VideoLine, total int64) string {
	var sb strings.Builder
	sb.WriteString("🎬 <b>Recent Videos:</b>\n\n")
	for _, v := range videos {
		title := []rune(v.Title)
		if len(title) > listTitleRunes {
			title = title[:listTitleRunes]
		}
		fmt.Fprintf(&sb, "• <code>%s</code> - %s... (%d📥)\n", v.ID, html.EscapeString(string(title)), v.Downloads)
	}
	fmt.Fprintf(&sb, "\n<i>Total: %d videos</i>\n\nClick to delete:", total)
	return sb.String()
}

func FormatSettings(limit int, sourceChannel int64, targets, required int) string {
	source := "Not set"
	if sourceChannel != 0 {
		source = fmt.Sprintf("%d", sourceChannel)
	}
	return fmt.Sprintf(`⚙️ <b>Settings</b>

📥 Daily Limit: %d
📺 Source Channel: <code>%s</code>
📢 Target Channels: %d
🔐 Required Channels: %d

<i>Edit the environment to change settings</i>`, limit, source, targets, required)
}

func FormatDeleted(videoID string, found bool) string {
	if found {
		return fmt.Sprintf("✅ Video <code>%s</code> deleted successfully!", html.EscapeString(videoID))
	}
	return fmt.Sprintf("❌ Video <code>%s</code> not found!", html.EscapeString(videoID))
}

// Stats: данные для «My Stats» и /user.
type Stats struct {
	Premium        bool
	Remaining      int
	Limit          int
	TotalDownloads int
	JoinedAt       time.Time
}

func (s Stats) status(long bool) string {
	switch {
	case s.Premium && long:
		return "⭐ Premium Member"
	case s.Premium:
		return "⭐ Premium"
	case long:
		return "👤 Regular Member"
	default:
		return "👤 Regular"
	}
}

func FormatMyStats(s Stats) string {
	remaining := "Unlimited"
	if !s.Premium {
		remaining = fmt.Sprintf("%d/%d", s.Remaining, s.Limit)
	}
	return fmt.Sprintf(`📊 <b>Your Statistics</b>

🏷️ Status: %s
📥 Today's Remaining: %s
📦 Total Downloads: %s
📅 Joined: %s`, s.status(false), remaining, sysutil.FormatNumber(int64(s.TotalDownloads)), formatDate(s.JoinedAt))
}

func FormatProfile(userID int64, firstName string, s Stats) string {
	return fmt.Sprintf(`👤 <b>Your Profile</b>

🆔 ID: <code>%d</code>
👤 Name: %s
🏷️ Status: %s
📅 Member Since: %s`, userID, html.EscapeString(firstName), s.status(true), formatDate(s.JoinedAt))
}

// FormatUserInfo: карточка пользователя для админа (/user <id>).
func FormatUserInfo(userID int64, s Stats, downloadsToday int) string {
	return fmt.Sprintf(`👤 <b>User</b> <code>%d</code>

🏷️ Status: %s
📥 Downloads Today: %d
📦 Total Downloads: %s
📅 Joined: %s`, userID, s.status(false), downloadsToday, sysutil.FormatNumber(int64(s.TotalDownloads)), formatDate(s.JoinedAt))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("2006-01-02")
}
