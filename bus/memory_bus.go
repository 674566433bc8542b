package bus

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sat8bit/charagen/message"
)

// ErrClosed は、閉じたバスに送信しようとしたことを示します。
var ErrClosed = errors.New("bus is closed")

// DefaultBuffer は、購読者ごとのチャネルバッファの大きさです。
const DefaultBuffer = 64

// MemoryBus は bus.Bus のインメモリ実装です。
// 受信が追いつかない購読者へのメッセージは捨て、その数を Dropped で数えます。
type MemoryBus struct {
	subscribers []chan *message.Message
	buffer      int
	mu          sync.RWMutex
	isClosed    bool
	dropped     atomic.Int64
}

// NewMemoryBus は新しい MemoryBus を生成します。buffer が0以下なら DefaultBuffer を使います。
func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &MemoryBus{buffer: buffer}
}

// Broadcast は、すべての購読者にメッセージを配ります。ブロックしません。
func (b *MemoryBus) Broadcast(m *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed {
		return ErrClosed
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- m:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe は新しい購読者を追加します。閉じたバスでは閉じたチャネルを返します。
func (b *MemoryBus) Subscribe() <-chan *message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *message.Message, b.buffer)
	if b.isClosed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Close はバスを閉じ、すべての購読者チャネルを閉じます。2回目以降は何もしません。
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed {
		return
	}
	b.isClosed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

// Dropped は、これまでに捨てたメッセージの数です。
func (b *MemoryBus) Dropped() int64 {
	return b.dropped.Load()
}

var _ Bus = (*MemoryBus)(nil)
