package message

import (
	"log/slog"
	"time"
)

type Kind string

const (
	KindLog    Kind = "log"
	KindSystem Kind = "system"
	KindError  Kind = "error"
	// KindSheet は、保存したシート1件の概要行です。
	KindSheet Kind = "sheet"
	// KindBatchDone は、1回の生成依頼の処理が終わったことを示します。
	KindBatchDone Kind = "batch_done"
)

type Message struct {
	Text  string
	At    time.Time
	Kind  Kind
	Level slog.Level // KindLog のときだけ意味を持つ
}

func New(kind Kind, text string) *Message {
	return &Message{Text: text, At: time.Now(), Kind: kind}
}

