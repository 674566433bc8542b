package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sat8bit/charagen/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testSheets(t *testing.T) []*persona.CharacterSheet {
	t.Helper()
	pool, err := persona.NewPool()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(pool.GetAll()), 2)
	return pool.GetAll()[:2]
}

func TestSafeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"高校の同級生を3人", "高校の同級生を3人"},
		{"fantasy party of 4, please!", "fantasy_party_of_4"},
		{"  spaced  ", "spaced"},
		{"!!!", "batch"},
		{"", "batch"},
		{"あいうえおかきくけこさしすせそたちつてとなにぬねの", "あいうえおかきくけこさしすせそたちつてと"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeLabel(tt.in), "in=%q", tt.in)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "01_佐倉エマ.yaml", FileName(1, "佐倉エマ"))
	assert.Equal(t, "12_OBrien-2.yaml", FileName(12, "O'Brien-2"))
	assert.Equal(t, "03_char_3.yaml", FileName(3, "・・・"))
}

func TestEntry_Summary(t *testing.T) {
	age := 17
	e := Entry{Name: "佐倉エマ", Age: &age, Occupation: "高校の図書委員"}
	assert.Equal(t, "01_佐倉エマ.yaml  佐倉エマ（17歳）高校の図書委員", e.Summary("01_佐倉エマ.yaml"))

	e = Entry{Name: "ミナ"}
	assert.Equal(t, "x  ミナ（?歳）", e.Summary("x"))
}

func TestDirStore_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	s := NewDirStore(root, discard)
	sheets := testSheets(t)

	b, err := s.SaveBatch(context.Background(), "テスト用 2人", sheets)
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, filepath.Join(root, "テスト用_2人"), b.Location)
	require.Len(t, b.Entries, 2)
	assert.Equal(t, FileName(1, sheets[0].Name), filepath.Base(b.Entries[0].Ref))
	assert.Equal(t, FileName(2, sheets[1].Name), filepath.Base(b.Entries[1].Ref))

	for i, e := range b.Entries {
		got, err := s.Load(context.Background(), e.Ref)
		require.NoError(t, err)
		assert.Equal(t, sheets[i], got)
	}
}

func TestDirStore_LoadErrors(t *testing.T) {
	root := t.TempDir()
	s := NewDirStore(root, discard)

	_, err := s.Load(context.Background(), filepath.Join(root, "missing.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)

	bad := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: x\ntone:\n  rule: \"\"\npersonality: []\n"), 0644))
	_, err = s.Load(context.Background(), bad)
	var se *persona.SchemaError
	assert.True(t, errors.As(err, &se))
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	s, err := NewSQLiteStore(":memory:", discard)
	require.NoError(t, err)
	defer s.Close()

	sheets := testSheets(t)
	b, err := s.SaveBatch(context.Background(), "first", sheets)
	require.NoError(t, err)
	require.Len(t, b.Entries, 2)
	assert.Equal(t, b.ID+"/1", b.Entries[0].Ref)

	got, err := s.Load(context.Background(), b.Entries[1].Ref)
	require.NoError(t, err)
	assert.Equal(t, sheets[1], got)

	_, err = s.SaveBatch(context.Background(), "second", sheets[:1])
	require.NoError(t, err)

	batches, err := s.Batches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "second", batches[0].Label)
	assert.Equal(t, "first", batches[1].Label)
}

func TestSQLiteStore_LoadErrors(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "sheets.db"), discard)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(context.Background(), "nope")
	assert.Error(t, err)

	_, err = s.Load(context.Background(), "abc/x")
	assert.Error(t, err)

	_, err = s.Load(context.Background(), "abc/1")
	assert.ErrorIs(t, err, ErrNotFound)
}
