package renderer

import (
	"sync"

	"github.com/sat8bit/charagen/bus"
)

// Renderer は、バスに流れるメッセージを表示するコンポーネントが満たすべきインターフェースです。
type Renderer interface {
	// Render は、バスを購読して表示を始めます。バスが閉じられると wg を完了させます。
	Render(bus bus.Bus, wg *sync.WaitGroup) error
}
