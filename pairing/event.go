// Package pairing собирает фото и видео, опубликованные в исходном канале
// отдельными сообщениями, в одну публикацию.
//
// Поддерживаются два способа связи. Сообщения с общим media group id
// заполняют слоты по одному, пока не придут и фото, и видео. Ответ на более
// раннее сообщение сразу образует пару с ним; роль исходного сообщения берётся
// из его копии в ответе или из записи, сохранённой при одиночной публикации.
package pairing

import "fmt"

type Kind int

const (
	KindOther Kind = iota
	KindPhoto
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return "other"
	}
}

// Post: сообщение исходного канала, сведённое к тому, что нужно для пары.
type Post struct {
	ChatID    int64
	MessageID int
	GroupID   string
	Kind      Kind
	// FileID: самый большой размер фото или файл видео.
	FileID string
	// ThumbID: встроенное превью видео, если есть.
	ThumbID string
	Caption string
	ReplyTo *Antecedent
}

// Antecedent: сообщение, на которое ответили, в том виде, в каком оно пришло вместе с ответом.
type Antecedent struct {
	MessageID int
	Kind      Kind
	FileID    string
	Caption   string
}

type EventKind int

const (
	Unsupported EventKind = iota
	BatchPhoto
	BatchVideo
	ReplyPhoto
	ReplyVideo
	StandalonePhoto
	StandaloneVideo
)

func (k EventKind) String() string {
	return [...]string{
		"unsupported", "batch_photo", "batch_video", "reply_photo", "reply_video",
		"standalone_photo", "standalone_video",
	}[k]
}

type Event struct {
	Kind EventKind
	Post Post
}

// Classify определяет тип события. Media group id важнее ответа.
func Classify(p Post) Event {
	ev := Event{Post: p}
	if p.Kind != KindPhoto && p.Kind != KindVideo {
		return ev
	}
	photo := p.Kind == KindPhoto
	switch {
	case p.GroupID != "":
		ev.Kind = pick(photo, BatchPhoto, BatchVideo)
	case p.ReplyTo != nil:
		ev.Kind = pick(photo, ReplyPhoto, ReplyVideo)
	default:
		ev.Kind = pick(photo, StandalonePhoto, StandaloneVideo)
	}
	return ev
}

func pick(photo bool, a, b EventKind) EventKind {
	if photo {
		return a
	}
	return b
}

// Key: ключ связи. Для альбома это id группы, для ответа сообщение, на которое
// ответили, для одиночного поста само сообщение.
func (e Event) Key() string {
	switch e.Kind {
	case BatchPhoto, BatchVideo:
		return groupKey(e.Post.GroupID)
	case ReplyPhoto, ReplyVideo:
		return messageKey(e.Post.ChatID, e.Post.ReplyTo.MessageID)
	default:
		return messageKey(e.Post.ChatID, e.Post.MessageID)
	}
}

func groupKey(id string) string { return "g:" + id }

func messageKey(chatID int64, messageID int) string {
	return fmt.Sprintf("m:%d:%d", chatID, messageID)
}
