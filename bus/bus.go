package bus

import (
	"github.com/sat8bit/charagen/message"
)

// Bus は、ログ・進捗・保存結果のメッセージを表示側へ配る責務を持つ
type Bus interface {
	Broadcast(m *message.Message) error
	Subscribe() <-chan *message.Message
	Close()
}
