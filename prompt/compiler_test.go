package prompt

import (
	"strings"
	"testing"

	"github.com/sat8bit/charagen/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheet(t *testing.T, src string) *persona.CharacterSheet {
	t.Helper()
	m, err := persona.ParseMapping([]byte(src))
	require.NoError(t, err)
	s, err := persona.NewSheet(m)
	require.NoError(t, err)
	return s
}

const fullSheet = `
name: 佐倉エマ
age: 17
occupation: 図書委員
tone:
  rule: 語尾に「〜なの」をつける
  examples:
    - user: 最近どう？
      char: 本を読んでるの
personality:
  - 本の話になると早口になる
reactions:
  褒められたとき: 話題をそらす
  怒られたとき: 黙り込む
forbidden:
  - 自分がAIだと言う
context:
  backstory: 古書店で育った。
  current_situation: 図書室で当番中
`

func TestCompile_Full(t *testing.T) {
	want := `あなたは図書委員の佐倉エマ（17歳）です。佐倉エマとして返答してください。
「演じる」のではなく、あなた自身が佐倉エマです。

【口調】
語尾に「〜なの」をつける

【性格・振る舞い】
- 本の話になると早口になる

【反応パターン】
- 褒められたとき: 話題をそらす
- 怒られたとき: 黙り込む

【このトーンで返してください】
User: 「最近どう？」
佐倉エマ: 「本を読んでるの」

【背景】
古書店で育った。
現在の状況: 図書室で当番中

【禁止事項】
- 自分がAIだと言う`

	assert.Equal(t, want, Compile(sheet(t, fullSheet)))
}

func TestCompile_Deterministic(t *testing.T) {
	s := sheet(t, fullSheet)
	first := Compile(s)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Compile(s))
	}
	assert.Equal(t, first, Compile(sheet(t, fullSheet)))
}

func TestCompile_BlockOrder(t *testing.T) {
	out := Compile(sheet(t, fullSheet))

	order := []string{
		"あなたは",
		HeaderTone,
		HeaderPersonality,
		HeaderReactions,
		HeaderExamples,
		HeaderBackground,
		HeaderProhibitions,
	}
	last := -1
	for _, h := range order {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, "%s not found", h)
		assert.Greater(t, idx, last, "%s out of order", h)
		last = idx
	}

	blocks := strings.Split(out, "\n\n")
	assert.True(t, strings.HasPrefix(blocks[len(blocks)-1], HeaderProhibitions))
}

func TestCompile_Minimal(t *testing.T) {
	out := Compile(sheet(t, "name: ミナ\ntone:\n  rule: タメ口\npersonality: [すぐ話題を振る]\n"))

	want := `あなたはミナです。ミナとして返答してください。
「演じる」のではなく、あなた自身がミナです。

【口調】
タメ口

【性格・振る舞い】
- すぐ話題を振る`
	assert.Equal(t, want, out)
}

// 任意フィールドのあらゆる組み合わせで、空のブロックの見出しが出ず、
// 空行が連続しないことを確認する。
func TestCompile_OmitsEmptyBlocks(t *testing.T) {
	type optional struct {
		key    string
		value  any
		header string
	}
	opts := []optional{
		{key: "age", value: 30},
		{key: "occupation", value: "店主"},
		{key: "reactions", value: persona.Mapping{{Key: "t", Value: "r"}}, header: HeaderReactions},
		{key: "forbidden", value: []any{"f"}, header: HeaderProhibitions},
		{key: "context", value: persona.Mapping{{Key: "backstory", Value: "b"}}, header: HeaderBackground},
		{key: "examples", value: []any{persona.Mapping{{Key: "user", Value: "u"}, {Key: "char", Value: "c"}}}, header: HeaderExamples},
	}

	for mask := 0; mask < 1<<len(opts); mask++ {
		tone := persona.Mapping{{Key: "rule", Value: "r"}}
		m := persona.Mapping{
			{Key: "name", Value: "n"},
			{Key: "personality", Value: []any{"p"}},
		}
		var present, absent []string
		for i, o := range opts {
			on := mask&(1<<i) != 0
			if on {
				if o.key == "examples" {
					tone = append(tone, persona.Entry{Key: o.key, Value: o.value})
				} else {
					m = append(m, persona.Entry{Key: o.key, Value: o.value})
				}
			}
			if o.header == "" {
				continue
			}
			if on {
				present = append(present, o.header)
			} else {
				absent = append(absent, o.header)
			}
		}
		m = append(m, persona.Entry{Key: "tone", Value: tone})

		s, err := persona.NewSheet(m)
		require.NoError(t, err)
		out := Compile(s)

		assert.NotContains(t, out, "\n\n\n", "mask=%b", mask)
		assert.False(t, strings.HasSuffix(out, "\n"), "mask=%b", mask)
		assert.Contains(t, out, HeaderTone)
		for _, h := range present {
			assert.Contains(t, out, h, "mask=%b", mask)
		}
		for _, h := range absent {
			assert.NotContains(t, out, h, "mask=%b", mask)
		}
	}
}

func TestCompile_CollapsesBlankLinesInFreeText(t *testing.T) {
	s := sheet(t, "name: n\ntone:\n  rule: r\npersonality: [p]\ncontext:\n  backstory: \"一行目\\n\\n\\n二行目\\n\"\n")
	out := Compile(s)
	assert.Contains(t, out, "一行目\n二行目")
	assert.NotContains(t, out, "\n\n\n")

	// 空白だけの行が連続していても1行に詰める
	s = sheet(t, "name: n\ntone:\n  rule: r\npersonality: [p]\ncontext:\n  backstory: \"a\\n \\n \\n \\n \\nb\"\n")
	out = Compile(s)
	assert.Contains(t, out, "【背景】\na\nb")
	assertNoDoubleBlank(t, out)
}

func assertNoDoubleBlank(t *testing.T, out string) {
	t.Helper()
	lines := strings.Split(out, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i-1]) == "" && strings.TrimSpace(lines[i]) == "" {
			t.Fatalf("consecutive blank lines at %d: %q", i, out)
		}
	}
}

func TestCompileCharacter(t *testing.T) {
	m, err := persona.ParseMapping([]byte(`
identity:
  name: 早瀬ユイ
  age_range: 10代後半
  gender: female
  occupation: マネージャー
  appearance:
    hair: ポニーテール
personality:
  traits: [記録を自分のことのように喜ぶ]
  values: [努力, 約束]
  tone_style: energetic
  emotion:
    anger_threshold: high
  mbti: ESFP
context:
  backstory: 怪我で選手を諦めた。
  relationships:
    - target: 主人公
      relation: 幼馴染
behavior:
  catchphrases: [ファイト！]
  reactions:
    - trigger: 記録が伸びたとき
      response: 跳び上がって喜ぶ
      example: やったじゃん！
  forbidden_topics: [怪我の詳細]
  notes: 主人公には少しだけ甘える。
`))
	require.NoError(t, err)
	c, err := persona.NewCharacter(m)
	require.NoError(t, err)

	out := CompileCharacter(c)
	assert.Equal(t, out, CompileCharacter(c))

	assert.True(t, strings.HasPrefix(out, "あなたはマネージャーの早瀬ユイ（10代後半）です。"))
	assert.Contains(t, out, "性別: 女性")
	assert.Contains(t, out, "外見: 髪はポニーテール")
	assert.Contains(t, out, "話し方: 元気で勢いのある話し方")
	assert.Contains(t, out, "価値観: 努力、約束")
	assert.Contains(t, out, "怒りやすさ: 高／共感力: 中／情緒の安定: 中")
	assert.Contains(t, out, "- 記録が伸びたとき: 跳び上がって喜ぶ")
	assert.Contains(t, out, "口癖: 「ファイト！」")
	assert.Contains(t, out, "（記録が伸びたとき）早瀬ユイ: 「やったじゃん！」")
	assert.Contains(t, out, "関係: 主人公（幼馴染）")

	order := []string{HeaderTone, HeaderPersonality, HeaderReactions, HeaderExamples, HeaderBackground, HeaderNotes, HeaderProhibitions}
	last := -1
	for _, h := range order {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, "%s not found", h)
		assert.Greater(t, idx, last, "%s out of order", h)
		last = idx
	}
	assert.True(t, strings.HasSuffix(out, "- 怪我の詳細の話題には触れない"))
}

func TestCompileCharacter_IdentityOnly(t *testing.T) {
	c := &persona.Character{
		Identity: persona.Identity{Name: "名無し", Gender: persona.GenderUnspecified},
		Personality: persona.Personality{
			ToneStyle: persona.ToneNeutral,
			Emotion: persona.EmotionalTendency{
				AngerThreshold:     persona.LevelMedium,
				EmpathyLevel:       persona.LevelMedium,
				EmotionalStability: persona.LevelMedium,
			},
		},
	}
	out := CompileCharacter(c)
	assert.Equal(t, "あなたは名無しです。名無しとして返答してください。\n「演じる」のではなく、あなた自身が名無しです。", out)
}

func TestStats(t *testing.T) {
	chars, tokens := Stats("あいうえおか")
	assert.Equal(t, 6, chars)
	assert.Equal(t, 3, tokens)
}
