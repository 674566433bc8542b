package persona

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fullSheetYAML = `
name: 佐倉エマ
age: 17
occupation: 図書委員
tone:
  rule: 語尾に「〜なの」をつける
  examples:
    - user: 最近どう？
      char: 本を読んでるの
    - user: ありがとう
      char: どういたしましてなの
personality:
  - 本の話になると早口になる
  - 困っている人に声をかける前に一度ためらう
reactions:
  褒められたとき: 話題をそらす
  怒られたとき: 黙り込む
  本を渡されたとき: 表紙をなでる
forbidden:
  - 自分がAIだと言う
context:
  backstory: 古書店で育った。
  current_situation: 図書室で当番中
`

func mustParse(t *testing.T, src string) Mapping {
	t.Helper()
	m, err := ParseMapping([]byte(src))
	require.NoError(t, err)
	return m
}

func schemaError(t *testing.T, err error) *SchemaError {
	t.Helper()
	var se *SchemaError
	require.True(t, errors.As(err, &se), "expected *SchemaError, got %v", err)
	return se
}

func TestNewSheet_Full(t *testing.T) {
	s, err := NewSheet(mustParse(t, fullSheetYAML))
	require.NoError(t, err)

	assert.Equal(t, "佐倉エマ", s.Name)
	require.NotNil(t, s.Age)
	assert.Equal(t, 17, *s.Age)
	assert.Equal(t, "図書委員", s.Occupation)
	assert.Len(t, s.Tone.Examples, 2)
	assert.Equal(t, ToneExample{User: "ありがとう", Char: "どういたしましてなの"}, s.Tone.Examples[1])
	assert.Equal(t, "図書室で当番中", s.Context.CurrentSituation)
}

func TestNewSheet_ReactionsKeepInsertionOrder(t *testing.T) {
	s, err := NewSheet(mustParse(t, fullSheetYAML))
	require.NoError(t, err)

	var triggers []string
	for _, r := range s.Reactions {
		triggers = append(triggers, r.Trigger)
	}
	assert.Equal(t, []string{"褒められたとき", "怒られたとき", "本を渡されたとき"}, triggers)
}

func TestNewSheet_MinimalIsValid(t *testing.T) {
	s, err := NewSheet(Mapping{
		{Key: "name", Value: "ミナ"},
		{Key: "tone", Value: Mapping{{Key: "rule", Value: "タメ口"}}},
		{Key: "personality", Value: []any{"沈黙が続くと話題を振る"}},
	})
	require.NoError(t, err)
	assert.Nil(t, s.Age)
	assert.Nil(t, s.Reactions)
	assert.Nil(t, s.Forbidden)
	assert.Nil(t, s.Tone.Examples)
}

func TestNewSheet_Gate(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantPaths []string
	}{
		{
			name:      "empty tone rule",
			src:       "name: a\ntone:\n  rule: ''\npersonality: [x]\n",
			wantPaths: []string{"tone.rule"},
		},
		{
			name:      "whitespace tone rule",
			src:       "name: a\ntone:\n  rule: '   '\npersonality: [x]\n",
			wantPaths: []string{"tone.rule"},
		},
		{
			name:      "missing tone",
			src:       "name: a\npersonality: [x]\n",
			wantPaths: []string{"tone.rule"},
		},
		{
			name:      "empty personality",
			src:       "name: a\ntone:\n  rule: r\npersonality: []\n",
			wantPaths: []string{"personality"},
		},
		{
			name:      "both missing",
			src:       "name: a\n",
			wantPaths: []string{"tone.rule", "personality"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSheet(mustParse(t, tt.src))
			require.Error(t, err)
			assert.Nil(t, s)

			se := schemaError(t, err)
			assert.Equal(t, "a", se.Name)
			for _, p := range tt.wantPaths {
				assert.True(t, se.Has(p), "missing error for %s in %v", p, se.Fields)
			}
			assert.Len(t, se.Fields, len(tt.wantPaths))
		})
	}
}

func TestNewSheet_ReportsEveryField(t *testing.T) {
	src := `
name: 123
age: twenty
tone:
  rule: r
  examples:
    - user: hi
personality:
  - ok
  - 3
reactions: [not, a, mapping]
context: oops
`
	_, err := NewSheet(mustParse(t, src))
	se := schemaError(t, err)

	for _, p := range []string{
		"name",
		"age",
		"tone.examples[0].char",
		"personality[1]",
		"reactions",
		"context",
	} {
		assert.True(t, se.Has(p), "missing error for %s in %v", p, se.Fields)
	}
	assert.Contains(t, se.Report(), "tone.examples[0].char: is required")
}

func TestNewSheet_AgeCoercion(t *testing.T) {
	tests := []struct {
		name    string
		age     any
		want    int
		wantErr bool
	}{
		{name: "int", age: 20, want: 20},
		{name: "numeric string", age: " 31 ", want: 31},
		{name: "integral float", age: 40.0, want: 40},
		{name: "fraction", age: 40.5, wantErr: true},
		{name: "negative", age: -1, wantErr: true},
		{name: "bool", age: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSheet(Mapping{
				{Key: "name", Value: "a"},
				{Key: "age", Value: tt.age},
				{Key: "tone", Value: Mapping{{Key: "rule", Value: "r"}}},
				{Key: "personality", Value: []any{"p"}},
			})
			if tt.wantErr {
				se := schemaError(t, err)
				assert.True(t, se.Has("age"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *s.Age)
		})
	}
}

func TestNewSheet_AcceptsPlainGoMaps(t *testing.T) {
	s, err := NewSheet(FromMap(map[string]any{
		"name":        "a",
		"tone":        map[string]any{"rule": "r"},
		"personality": []string{"p"},
		"context":     map[string]any{"backstory": "b"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "b", s.Context.Backstory)
}

func TestCharacterSheet_RoundTrip(t *testing.T) {
	original, err := NewSheet(mustParse(t, fullSheetYAML))
	require.NoError(t, err)

	again, err := NewSheet(original.Mapping())
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestCharacterSheet_YAMLRoundTrip(t *testing.T) {
	original, err := NewSheet(mustParse(t, fullSheetYAML))
	require.NoError(t, err)

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	var decoded CharacterSheet
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *original, decoded)

	keys := mustParse(t, string(data)).Keys()
	assert.Equal(t, []string{"name", "age", "occupation", "tone", "personality", "reactions", "forbidden", "context"}, keys)
}

func TestCharacterSheet_UnmarshalRejectsInvalid(t *testing.T) {
	var s CharacterSheet
	err := yaml.Unmarshal([]byte("name: a\npersonality: [x]\n"), &s)
	se := schemaError(t, err)
	assert.True(t, se.Has("tone.rule"))
}

func TestParseMapping_NotMapping(t *testing.T) {
	for _, src := range []string{"", "just a sentence", "- a\n- b\n"} {
		_, err := ParseMapping([]byte(src))
		assert.ErrorIs(t, err, ErrNotMapping, "src=%q", src)
	}
}

func TestParseMapping_MergeKeys(t *testing.T) {
	m := mustParse(t, `
base: &base
  rule: shared
tone:
  <<: *base
  examples: []
`)
	tone, _ := m.Get("tone")
	rule, ok := tone.(Mapping).Get("rule")
	require.True(t, ok)
	assert.Equal(t, "shared", rule)
}
