package messages

import (
	"go_content_bot/config"

	"github.com/go-telegram/bot/models"
)

// Кнопки reply-клавиатур. Обработчики сравнивают текст сообщения с ними.
const (
	BtnMyStats   = "📊 My Stats"
	BtnProfile   = "👤 Profile"
	BtnHelp      = "❓ Help"
	BtnIveJoined = "✅ I've Joined"

	BtnPostStats = "📤 Post Stats"
	BtnUsers     = "👥 Users"
	BtnVideos    = "🎬 Videos"
	BtnSettings  = "⚙️ Settings"
	BtnBackMain  = "🔙 Back to Main"

	DeletePrefix = "🗑️ Delete: "
)

// Данные callback-кнопок.
const (
	CbVerify       = "verify"
	CbAdminBack    = "admin_back"
	CbDeletePrefix = "del_"
)

func MainMenu() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: BtnMyStats}, {Text: BtnProfile}},
			{{Text: BtnHelp}, {Text: BtnIveJoined}},
		},
		ResizeKeyboard: true,
	}
}

func AdminMenu() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: BtnPostStats}, {Text: BtnUsers}},
			{{Text: BtnVideos}, {Text: BtnSettings}},
			{{Text: BtnBackMain}},
		},
		ResizeKeyboard: true,
	}
}

// ChannelButtons: по кнопке на обязательный канал и «✅ Joined» в конце.
// Каналы из notJoined помечаются ❌, остальные ✅.
func ChannelButtons(channels []config.RequiredChannel, notJoined []string) *models.InlineKeyboardMarkup {
	missing := make(map[string]bool, len(notJoined))
	for _, key := range notJoined {
		missing[key] = true
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		status := "✅"
		if missing[ch.Key] {
			status = "❌"
		}
		icon := "📢"
		if ch.Private {
			icon = "📩"
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: status + " " + icon + " " + ch.Name, URL: ch.Link},
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "✅ Joined", CallbackData: CbVerify}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func VideoListButtons(videos []VideoLine) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(videos)+1)
	for _, v := range videos {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "🗑️ " + v.ID, CallbackData: CbDeletePrefix + v.ID},
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "🔙 Back", CallbackData: CbAdminBack}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func GetVideoButton(link string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "📥 Get Video", URL: link},
		}},
	}
}
