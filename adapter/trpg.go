package adapter

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/sat8bit/charagen/persona"
)

// Stat は能力値です。
type Stat struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
	Max   *int   `yaml:"max_value"`
}

// Skill はスキル・特技です。
type Skill struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
}

// TRPGOptions は、TRPGキャラクター固有の設定です。
type TRPGOptions struct {
	Class     string         `yaml:"character_class"`
	Race      string         `yaml:"race"`
	Alignment string         `yaml:"alignment"`
	Level     int            `yaml:"level"`
	Stats     []Stat         `yaml:"stats"`
	Skills    []Skill        `yaml:"skills"`
	Equipment []string       `yaml:"equipment"`
	Extra     map[string]any `yaml:"extra"`
}

type TRPG struct {
	base      persona.Character
	class     string
	race      string
	alignment string
	level     int
	stats     []Stat
	skills    []Skill
	equipment []string
	extra     map[string]any
}

// NewTRPG は、base を用途 trpg に設定したコピーで包みます。
// レベルとスキルレベルは未指定なら 1 です。
func NewTRPG(base persona.Character, opts TRPGOptions) (*TRPG, error) {
	var errs []error

	level := opts.Level
	if level == 0 {
		level = 1
	}
	if level < 1 {
		errs = append(errs, fmt.Errorf("level: must be at least 1, got %d", opts.Level))
	}

	stats := append([]Stat(nil), opts.Stats...)
	for i, s := range stats {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("stats[%d].name: is required", i))
		}
		if s.Max != nil && s.Value > *s.Max {
			errs = append(errs, fmt.Errorf("stats[%d]: value %d exceeds max %d", i, s.Value, *s.Max))
		}
	}

	skills := append([]Skill(nil), opts.Skills...)
	for i := range skills {
		if strings.TrimSpace(skills[i].Name) == "" {
			errs = append(errs, fmt.Errorf("skills[%d].name: is required", i))
		}
		if skills[i].Level == 0 {
			skills[i].Level = 1
		}
		if skills[i].Level < 1 {
			errs = append(errs, fmt.Errorf("skills[%d].level: must be at least 1", i))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("adapter.NewTRPG: %w", errors.Join(errs...))
	}

	return &TRPG{
		base:      base.WithPurpose(persona.PurposeTRPG),
		class:     opts.Class,
		race:      opts.Race,
		alignment: opts.Alignment,
		level:     level,
		stats:     stats,
		skills:    skills,
		equipment: append([]string(nil), opts.Equipment...),
		extra:     maps.Clone(opts.Extra),
	}, nil
}

func (t *TRPG) Base() persona.Character { return t.base.Clone() }
func (t *TRPG) Level() int              { return t.level }
func (t *TRPG) Stats() []Stat           { return append([]Stat(nil), t.stats...) }
func (t *TRPG) Skills() []Skill         { return append([]Skill(nil), t.skills...) }
func (t *TRPG) Equipment() []string     { return append([]string(nil), t.equipment...) }
func (t *TRPG) Extra() map[string]any   { return maps.Clone(t.extra) }

// SystemPrompt は、基本プロンプトにクラス・種族・属性・スキルを付け加えます。
func (t *TRPG) SystemPrompt() string {
	lines := []string{compileBase(t.base)}
	if t.class != "" {
		lines = append(lines, "クラス: "+t.class)
	}
	if t.race != "" {
		lines = append(lines, "種族: "+t.race)
	}
	if t.alignment != "" {
		lines = append(lines, "属性: "+t.alignment)
	}
	if len(t.skills) > 0 {
		names := make([]string, 0, len(t.skills))
		for _, s := range t.skills {
			names = append(names, s.Name)
		}
		lines = append(lines, "スキル: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}
