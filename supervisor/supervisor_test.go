package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupervisor_CancelsAtLimit(t *testing.T) {
	b := bus.NewMemoryBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSupervisor(2, b, cancel)
	s.Start()

	require.NoError(t, b.Broadcast(message.New(message.KindSystem, "生成中...")))
	require.NoError(t, b.Broadcast(message.New(message.KindBatchDone, "1")))
	require.NoError(t, b.Broadcast(message.New(message.KindLog, "x")))
	require.NoError(t, b.Broadcast(message.New(message.KindBatchDone, "2")))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled")
	}
	assert.Equal(t, 2, s.Runs())
}

func TestSupervisor_Unlimited(t *testing.T) {
	b := bus.NewMemoryBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSupervisor(0, b, cancel)
	s.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Broadcast(message.New(message.KindBatchDone, "done")))
	}
	b.Close()
	<-s.Done()

	assert.NoError(t, ctx.Err())
	assert.Equal(t, 5, s.Runs())
}
