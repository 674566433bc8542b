package adapter

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/sat8bit/charagen/persona"
)

// ErrAffectionOutOfRange は、好感度が 0〜100 の範囲外であることを示します。
var ErrAffectionOutOfRange = errors.New("affection level must be between 0 and 100")

const (
	MinAffection = 0
	MaxAffection = 100
)

// Stage は、好感度から決まる関係の段階です。
type Stage string

const (
	StageStranger      Stage = "stranger"
	StageAcquaintance  Stage = "acquaintance"
	StageFriend        Stage = "friend"
	StageCloseFriend   Stage = "close_friend"
	StageSpecial       Stage = "special"
	StageRouteComplete Stage = "route_complete"
)

var stageLabels = map[Stage]string{
	StageStranger:      "他人",
	StageAcquaintance:  "知人",
	StageFriend:        "友人",
	StageCloseFriend:   "親友",
	StageSpecial:       "特別",
	StageRouteComplete: "攻略完了",
}

// Label は、プロンプトに出力する表示名です。
func (s Stage) Label() string {
	return stageLabels[s]
}

// Threshold は、好感度の下限と到達する段階の組です。
type Threshold struct {
	Min   int
	Stage Stage
}

// 降順に並べておき、先頭から最初に条件を満たしたものを採用する
var affectionTable = []Threshold{
	{Min: 100, Stage: StageRouteComplete},
	{Min: 80, Stage: StageSpecial},
	{Min: 60, Stage: StageCloseFriend},
	{Min: 40, Stage: StageFriend},
	{Min: 20, Stage: StageAcquaintance},
	{Min: 0, Stage: StageStranger},
}

// Thresholds は、段階の表を降順で返します。
func Thresholds() []Threshold {
	return append([]Threshold(nil), affectionTable...)
}

// Affection は、0〜100 の好感度です。範囲外の値は構築時に拒否します。
type Affection struct {
	level int
}

func NewAffection(level int) (Affection, error) {
	if level < MinAffection || level > MaxAffection {
		return Affection{}, fmt.Errorf("%w: got %d", ErrAffectionOutOfRange, level)
	}
	return Affection{level: level}, nil
}

func (a Affection) Level() int {
	return a.level
}

// Add は、delta を加えた新しい好感度を返します。レシーバは変わりません。
func (a Affection) Add(delta int) (Affection, error) {
	return NewAffection(a.level + delta)
}

// Stage は、好感度以下で最も高い閾値の段階を返します。
func (a Affection) Stage() Stage {
	for _, t := range affectionTable {
		if a.level >= t.Min {
			return t.Stage
		}
	}
	return StageStranger
}

// RouteFlag は、攻略ルートのフラグです。
type RouteFlag struct {
	Name        string `yaml:"flag_name"`
	Description string `yaml:"description"`
	Triggered   bool   `yaml:"is_triggered"`
}

// GalgeOptions は、ギャルゲーヒロイン固有の設定です。
type GalgeOptions struct {
	// Archetype は、ヒロイン類型（幼馴染・委員長・ツンデレなど）です。
	Archetype   string         `yaml:"archetype"`
	Affection   int            `yaml:"affection"`
	RouteFlags  []RouteFlag    `yaml:"route_flags"`
	EventScenes []string       `yaml:"event_scenes"`
	VoiceTone   string         `yaml:"voice_tone"`
	ThemeColor  string         `yaml:"theme_color"`
	Extra       map[string]any `yaml:"extra"`
}

// Galge は、ギャルゲーヒロイン用のアダプターです。
type Galge struct {
	base        persona.Character
	archetype   string
	affection   Affection
	routeFlags  []RouteFlag
	eventScenes []string
	voiceTone   string
	themeColor  string
	extra       map[string]any
}

// NewGalge は、base を用途 galge に設定したコピーで包みます。base 自体は変更しません。
func NewGalge(base persona.Character, opts GalgeOptions) (*Galge, error) {
	affection, err := NewAffection(opts.Affection)
	if err != nil {
		return nil, fmt.Errorf("adapter.NewGalge: %w", err)
	}
	for i, f := range opts.RouteFlags {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("adapter.NewGalge: route_flags[%d]: flag_name is required", i)
		}
	}
	return &Galge{
		base:        base.WithPurpose(persona.PurposeGalge),
		archetype:   opts.Archetype,
		affection:   affection,
		routeFlags:  append([]RouteFlag(nil), opts.RouteFlags...),
		eventScenes: append([]string(nil), opts.EventScenes...),
		voiceTone:   opts.VoiceTone,
		themeColor:  opts.ThemeColor,
		extra:       maps.Clone(opts.Extra),
	}, nil
}

func (g *Galge) Base() persona.Character { return g.base.Clone() }
func (g *Galge) Affection() Affection    { return g.affection }
func (g *Galge) Archetype() string       { return g.archetype }
func (g *Galge) EventScenes() []string   { return append([]string(nil), g.eventScenes...) }
func (g *Galge) VoiceTone() string       { return g.voiceTone }
func (g *Galge) ThemeColor() string      { return g.themeColor }
func (g *Galge) Extra() map[string]any   { return maps.Clone(g.extra) }

func (g *Galge) RouteFlags() []RouteFlag {
	return append([]RouteFlag(nil), g.routeFlags...)
}

// WithAffection は、好感度だけを差し替えた新しい Galge を返します。
func (g *Galge) WithAffection(level int) (*Galge, error) {
	a, err := NewAffection(level)
	if err != nil {
		return nil, err
	}
	cp := *g
	cp.affection = a
	return &cp, nil
}

// SystemPrompt は、基本プロンプトにヒロイン類型と現在の関係性を付け加えます。
func (g *Galge) SystemPrompt() string {
	lines := []string{compileBase(g.base)}
	if g.archetype != "" {
		lines = append(lines, "ヒロイン類型: "+g.archetype)
	}
	lines = append(lines, fmt.Sprintf("現在の関係性: %s（好感度%d）", g.affection.Stage().Label(), g.affection.Level()))
	return strings.Join(lines, "\n")
}
