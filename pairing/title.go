package pairing

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleRunes = 100
	DefaultTitle  = "Untitled Video"
)

var markupStripper = strings.NewReplacer("*", "", "_", "", "`", "", "[", "", "]", "")

// SanitizeTitle делает заголовок из подписи: первая строка, не больше
// 100 символов, без управляющих символов markdown.
func SanitizeTitle(caption string) string {
	line, _, _ := strings.Cut(caption, "\n")
	if utf8.RuneCountInString(line) > maxTitleRunes {
		line = string([]rune(line)[:maxTitleRunes])
	}
	title := strings.TrimSpace(markupStripper.Replace(line))
	if title == "" {
		return DefaultTitle
	}
	return title
}
