package renderer

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleRenderer(t *testing.T) {
	var out bytes.Buffer
	b := bus.NewMemoryBus(16)
	var wg sync.WaitGroup

	require.NoError(t, NewConsoleRenderer(&out).Render(b, &wg))

	require.NoError(t, b.Broadcast(message.New(message.KindSystem, "生成中...")))
	require.NoError(t, b.Broadcast(&message.Message{Kind: message.KindLog, Level: slog.LevelWarn, Text: "candidate rejected ordinal=2"}))
	require.NoError(t, b.Broadcast(message.New(message.KindSheet, "01_a.yaml  a（?歳）")))
	require.NoError(t, b.Broadcast(message.New(message.KindBatchDone, "1人のキャラクターを生成しました")))
	require.NoError(t, b.Broadcast(message.New(message.KindError, "timeout")))
	b.Close()
	wg.Wait()

	want := "生成中...\n" +
		"[WARN] candidate rejected ordinal=2\n" +
		"  01_a.yaml  a（?歳）\n" +
		"\n1人のキャラクターを生成しました\n" +
		"エラー: timeout\n"
	assert.Equal(t, want, out.String())
}
