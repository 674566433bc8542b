package persona

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToneExample は、会話例の1往復です。
type ToneExample struct {
	User string
	Char string
}

// Tone は、口調のルールと会話例です。
type Tone struct {
	Rule     string
	Examples []ToneExample
}

// Reaction は「〜のとき: 〜する」の1行です。並び順に意味があるためスライスで保持します。
type Reaction struct {
	Trigger  string
	Response string
}

// SheetContext は、シートの背景情報です。
type SheetContext struct {
	Backstory        string
	CurrentSituation string
}

// CharacterSheet は、YAMLと1対1で対応するフラットなキャラクター定義です。
// NewSheet を通してのみ構築され、tone.rule と personality が空でないことが保証されます。
type CharacterSheet struct {
	Name        string
	Age         *int
	Occupation  string
	Tone        Tone
	Personality []string
	Reactions   []Reaction
	Forbidden   []string
	Context     SheetContext
}

// Mapping は、シートを入力と同じ形のマッピングに戻します。
// 空のフィールドは出力しません。戻り値を NewSheet に渡すと同じシートになります。
func (s *CharacterSheet) Mapping() Mapping {
	m := Mapping{{Key: "name", Value: s.Name}}
	if s.Age != nil {
		m = append(m, Entry{Key: "age", Value: *s.Age})
	}
	if s.Occupation != "" {
		m = append(m, Entry{Key: "occupation", Value: s.Occupation})
	}

	tone := Mapping{{Key: "rule", Value: s.Tone.Rule}}
	if len(s.Tone.Examples) > 0 {
		examples := make([]any, 0, len(s.Tone.Examples))
		for _, ex := range s.Tone.Examples {
			examples = append(examples, Mapping{{Key: "user", Value: ex.User}, {Key: "char", Value: ex.Char}})
		}
		tone = append(tone, Entry{Key: "examples", Value: examples})
	}
	m = append(m, Entry{Key: "tone", Value: tone})

	m = append(m, Entry{Key: "personality", Value: stringsToAny(s.Personality)})

	if len(s.Reactions) > 0 {
		reactions := make(Mapping, 0, len(s.Reactions))
		for _, r := range s.Reactions {
			reactions = append(reactions, Entry{Key: r.Trigger, Value: r.Response})
		}
		m = append(m, Entry{Key: "reactions", Value: reactions})
	}
	if len(s.Forbidden) > 0 {
		m = append(m, Entry{Key: "forbidden", Value: stringsToAny(s.Forbidden)})
	}

	var ctx Mapping
	if s.Context.Backstory != "" {
		ctx = append(ctx, Entry{Key: "backstory", Value: s.Context.Backstory})
	}
	if s.Context.CurrentSituation != "" {
		ctx = append(ctx, Entry{Key: "current_situation", Value: s.Context.CurrentSituation})
	}
	if len(ctx) > 0 {
		m = append(m, Entry{Key: "context", Value: ctx})
	}
	return m
}

// MarshalYAML は、キー順を保ったままシートをYAMLにします。
func (s *CharacterSheet) MarshalYAML() (interface{}, error) {
	return s.Mapping().node(), nil
}

// UnmarshalYAML は、YAMLノードを検証してシートを構築します。
func (s *CharacterSheet) UnmarshalYAML(value *yaml.Node) error {
	m, err := mappingFromNode(value)
	if err != nil {
		return err
	}
	sheet, err := NewSheet(m)
	if err != nil {
		return err
	}
	*s = *sheet
	return nil
}

func (s *CharacterSheet) String() string {
	if s.Age != nil {
		return fmt.Sprintf("%s（%d歳）%s", s.Name, *s.Age, s.Occupation)
	}
	return fmt.Sprintf("%s %s", s.Name, s.Occupation)
}

func stringsToAny(s []string) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
