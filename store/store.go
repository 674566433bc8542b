// Package store は、生成したキャラクターシートの保存先です。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sat8bit/charagen/persona"
)

// ErrNotFound は、参照先のシートが存在しないことを示します。
var ErrNotFound = errors.New("sheet not found")

// Store は、1回の生成で得られたシート群をまとめて保存します。
type Store interface {
	SaveBatch(ctx context.Context, label string, sheets []*persona.CharacterSheet) (*Batch, error)
	Load(ctx context.Context, ref string) (*persona.CharacterSheet, error)
}

// Batch は、保存した1回分のシート群です。
type Batch struct {
	ID        string
	Label     string
	Location  string
	CreatedAt time.Time
	Entries   []Entry
}

// Entry は、保存した1件のシートの参照と概要です。
type Entry struct {
	Ref        string
	Name       string
	Age        *int
	Occupation string
}

// Summary は、一覧表示用の1行です。例: 01_佐倉エマ.yaml  佐倉エマ（17歳）高校の図書委員
func (e Entry) Summary(display string) string {
	age := "?"
	if e.Age != nil {
		age = fmt.Sprint(*e.Age)
	}
	return fmt.Sprintf("%s  %s（%s歳）%s", display, e.Name, age, e.Occupation)
}

func entryFor(ref string, s *persona.CharacterSheet) Entry {
	return Entry{Ref: ref, Name: s.Name, Age: s.Age, Occupation: s.Occupation}
}

const labelRunes = 20

// SafeLabel は、依頼文の先頭20文字からディレクトリ名を作ります。
// 英数字・かな漢字・アンダースコア・空白だけを残し、空白はアンダースコアにします。
func SafeLabel(label string) string {
	r := []rune(label)
	if len(r) > labelRunes {
		r = r[:labelRunes]
	}
	var b strings.Builder
	for _, c := range r {
		if isAlnum(c) || c == '_' || c == ' ' {
			b.WriteRune(c)
		}
	}
	s := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if s == "" {
		return "batch"
	}
	return s
}

// SafeName は、キャラクター名からファイル名に使える部分だけを残します。
// 何も残らなければ char_{ordinal} です。
func SafeName(name string, ordinal int) string {
	var b strings.Builder
	for _, c := range name {
		if isAlnum(c) || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("char_%d", ordinal)
	}
	return b.String()
}

// FileName は、保存順の2桁連番を付けたファイル名です。
func FileName(ordinal int, name string) string {
	return fmt.Sprintf("%02d_%s.yaml", ordinal, SafeName(name, ordinal))
}

func isAlnum(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}
