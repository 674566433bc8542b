package adapter

import (
	"errors"
	"fmt"
	"os"

	"github.com/sat8bit/charagen/persona"
	"gopkg.in/yaml.v3"
)

// document は、用途別の設定を含むキャラクター定義ファイルの形です。
//
//	character: {purpose, identity, personality, context, behavior}
//	galge: {...}   # または social / trpg のどれか1つ
type document struct {
	Character persona.Mapping `yaml:"character"`
	Galge     *GalgeOptions   `yaml:"galge"`
	Social    *SocialOptions  `yaml:"social"`
	TRPG      *TRPGOptions    `yaml:"trpg"`
}

// LoadFile は、ファイルからキャラクター定義を読み込みます。
func LoadFile(path string) (Renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read character file %s: %w", path, err)
	}
	return Load(data)
}

// Load は、キャラクター定義を検証し、用途に合ったアダプターを返します。
// 用途別のセクションがあればそれに従い、なければ character.purpose に従います。
func Load(data []byte) (Renderer, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character document: %w", err)
	}
	if doc.Character == nil {
		return nil, errors.New("character document has no 'character' section")
	}

	c, err := persona.NewCharacter(doc.Character)
	if err != nil {
		return nil, err
	}

	sections := 0
	for _, present := range []bool{doc.Galge != nil, doc.Social != nil, doc.TRPG != nil} {
		if present {
			sections++
		}
	}
	if sections > 1 {
		return nil, errors.New("character document may contain only one of galge, social, trpg")
	}

	switch {
	case doc.Galge != nil:
		return renderer[*Galge](NewGalge(*c, *doc.Galge))
	case doc.Social != nil:
		return renderer[*Social](NewSocial(*c, *doc.Social))
	case doc.TRPG != nil:
		return renderer[*TRPG](NewTRPG(*c, *doc.TRPG))
	}

	switch c.Purpose {
	case persona.PurposeGalge:
		return renderer[*Galge](NewGalge(*c, GalgeOptions{}))
	case persona.PurposeSocial:
		return renderer[*Social](NewSocial(*c, SocialOptions{}))
	case persona.PurposeTRPG:
		return renderer[*TRPG](NewTRPG(*c, TRPGOptions{}))
	default:
		return NewGeneric(*c), nil
	}
}

// renderer は、失敗時に nil ポインタを抱えたインターフェースを返さないようにします。
func renderer[T Renderer](r T, err error) (Renderer, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}
