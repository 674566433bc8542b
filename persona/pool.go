package persona

import (
	"fmt"
	"math/rand"

	"github.com/sat8bit/charagen/configs"
	"gopkg.in/yaml.v3"
)

// NewPool は、埋め込まれたサンプルシートからプールを作ります。
func NewPool() (*Pool, error) {
	return LoadPool(configs.Personas)
}

// LoadPool は、`sheets:` にシートを並べたYAMLからプールを作ります。
// どれか1つでも検証に失敗した場合はエラーを返します。
func LoadPool(data []byte) (*Pool, error) {
	var p Pool
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sheets: %w", err)
	}
	return &p, nil
}

type Pool struct {
	// Sheets は、読み込まれた CharacterSheet のスライスです。
	Sheets []*CharacterSheet `yaml:"sheets"`
}

func (p *Pool) GetAll() []*CharacterSheet {
	if p == nil {
		return nil
	}
	return p.Sheets
}

func (p *Pool) GetByName(name string) (*CharacterSheet, error) {
	for _, s := range p.Sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet with name '%s' not found", name)
}

func (p *Pool) GetRandomN(n int) ([]*CharacterSheet, error) {
	if p == nil || len(p.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets available")
	}
	if n <= 0 || n > len(p.Sheets) {
		n = len(p.Sheets)
	}

	// 重複しないようにシャッフルした添字の先頭 n 件を使う
	selected := make([]*CharacterSheet, 0, n)
	for _, i := range rand.Perm(len(p.Sheets))[:n] {
		selected = append(selected, p.Sheets[i])
	}
	return selected, nil
}
