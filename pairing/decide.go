package pairing

type ActionKind int

const (
	ActionIgnore ActionKind = iota
	ActionStore
	ActionComplete
)

// Draft: готовая пара, которую можно сохранять и публиковать.
type Draft struct {
	ChatID      int64
	MessageID   int // это сообщение пересылается пользователям
	ThumbnailID string
	Caption     string
	Method      string // batch или reply
}

type Action struct {
	Kind   ActionKind
	Draft  Draft
	Reason string
}

func ignore(reason string) Action { return Action{Kind: ActionIgnore, Reason: reason} }

// Slot: частично заполненная пара из альбома.
type Slot struct {
	ChatID         int64
	PhotoID        string
	HasVideo       bool
	VideoMessageID int
	Caption        string
}

// MergeBatch заполняет слот из события. Остаётся первая непустая подпись.
// Пара готова, когда заполнены оба слота.
func MergeBatch(s Slot, ev Event) (Slot, Action) {
	p := ev.Post
	s.ChatID = p.ChatID
	switch ev.Kind {
	case BatchPhoto:
		s.PhotoID = p.FileID
	case BatchVideo:
		s.HasVideo = true
		s.VideoMessageID = p.MessageID
	default:
		return s, ignore("not a batch event")
	}
	if s.Caption == "" {
		s.Caption = p.Caption
	}

	if s.PhotoID == "" || !s.HasVideo {
		return s, Action{Kind: ActionStore}
	}
	return s, Action{Kind: ActionComplete, Draft: Draft{
		ChatID:      s.ChatID,
		MessageID:   s.VideoMessageID,
		ThumbnailID: s.PhotoID,
		Caption:     s.Caption,
		Method:      "batch",
	}}
}

// ResolveReply связывает ответ с сообщением, на которое он дан. stored:
// сохранённая одиночная запись этого сообщения или nil.
//
// Если видео отвечает на видео, контентом остаётся более раннее видео, а
// превью берётся из встроенной миниатюры более позднего.
func ResolveReply(ev Event, stored *Post) Action {
	p := ev.Post
	live := p.ReplyTo

	role := live.Kind
	fileID := live.FileID
	if role != KindPhoto && role != KindVideo && stored != nil {
		role = stored.Kind
		fileID = stored.FileID
	}

	caption := p.Caption
	if caption == "" {
		caption = live.Caption
	}
	if caption == "" && stored != nil {
		caption = stored.Caption
	}

	d := Draft{ChatID: p.ChatID, Caption: caption, Method: "reply"}
	switch {
	case ev.Kind == ReplyVideo && role == KindPhoto:
		d.ThumbnailID = fileID
		d.MessageID = p.MessageID
	case ev.Kind == ReplyVideo && role == KindVideo:
		if p.ThumbID == "" {
			return ignore("replying video has no thumbnail")
		}
		d.ThumbnailID = p.ThumbID
		d.MessageID = live.MessageID
	case ev.Kind == ReplyPhoto && role == KindVideo:
		d.ThumbnailID = p.FileID
		d.MessageID = live.MessageID
	case ev.Kind == ReplyPhoto || ev.Kind == ReplyVideo:
		return ignore("replied-to message is not the missing half of a pair")
	default:
		return ignore("not a reply event")
	}

	if d.ThumbnailID == "" {
		return ignore("thumbnail file is missing")
	}
	return Action{Kind: ActionComplete, Draft: d}
}
