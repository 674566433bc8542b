package supervisor

import (
	"context"
	"sync"

	"github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/message"
)

// Supervisor は、生成依頼の完了数を監視し、上限に達したら停止信号を送ります。
type Supervisor struct {
	maxRuns    int
	runCount   int
	bus        bus.Bus
	cancelFunc context.CancelFunc
	mu         sync.Mutex
	done       chan struct{}
}

// NewSupervisor は、新しい Supervisor を生成します。maxRuns が0以下なら上限なしです。
func NewSupervisor(maxRuns int, bus bus.Bus, cancelFunc context.CancelFunc) *Supervisor {
	return &Supervisor{
		maxRuns:    maxRuns,
		bus:        bus,
		cancelFunc: cancelFunc,
		done:       make(chan struct{}),
	}
}

// Start は、監視を開始します。
func (s *Supervisor) Start() {
	ch := s.bus.Subscribe()

	go func() {
		defer close(s.done)
		for msg := range ch {
			if msg.Kind != message.KindBatchDone {
				continue
			}

			s.mu.Lock()
			s.runCount++
			reached := s.maxRuns > 0 && s.runCount >= s.maxRuns
			s.mu.Unlock()

			if reached {
				s.cancelFunc()
				return
			}
		}
	}()
}

// Done は、監視が終わると閉じられます。
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

func (s *Supervisor) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCount
}

func (s *Supervisor) MaxRuns() int {
	return s.maxRuns
}
