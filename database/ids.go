package database

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	videoIDPrefix   = "vid_"
	videoIDLen      = 8
	videoIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewVideoID возвращает случайный ID вида vid_xxxxxxxx.
func NewVideoID() (string, error) {
	buf := make([]byte, videoIDLen)
	alphabetLen := big.NewInt(int64(len(videoIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = videoIDAlphabet[n.Int64()]
	}
	return videoIDPrefix + string(buf), nil
}

// IsVideoID проверяет, похож ли параметр deep-link на ID видео.
// Содержимое после префикса не проверяется: битый ID даст ErrNotFound при поиске.
func IsVideoID(s string) bool {
	return len(s) > len(videoIDPrefix) && strings.HasPrefix(s, videoIDPrefix)
}
