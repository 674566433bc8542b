// Package adapter は、用途別にキャラクター定義を拡張します。
//
// アダプターは基本の Character を値で受け取り、用途を自分のものに設定したコピーを保持します。
// 呼び出し側の Character が書き換えられることはなく、用途が食い違った状態も存在しません。
package adapter

import (
	"github.com/sat8bit/charagen/persona"
	"github.com/sat8bit/charagen/prompt"
)

// Renderer は、用途別のシステムプロンプトを返すものです。
type Renderer interface {
	Base() persona.Character
	SystemPrompt() string
}

func compileBase(c persona.Character) string {
	return prompt.CompileCharacter(&c)
}

// Generic は、用途固有の拡張を持たないキャラクターです。
// generic と test_player はこれで描画します。
type Generic struct {
	base persona.Character
}

// NewGeneric は、用途が generic でも test_player でもなければ generic に設定します。
func NewGeneric(base persona.Character) *Generic {
	purpose := base.Purpose
	if purpose != persona.PurposeTestPlayer {
		purpose = persona.PurposeGeneric
	}
	return &Generic{base: base.WithPurpose(purpose)}
}

func (g *Generic) Base() persona.Character { return g.base.Clone() }

func (g *Generic) SystemPrompt() string {
	return compileBase(g.base)
}

var (
	_ Renderer = (*Generic)(nil)
	_ Renderer = (*Galge)(nil)
	_ Renderer = (*Social)(nil)
	_ Renderer = (*TRPG)(nil)
)
