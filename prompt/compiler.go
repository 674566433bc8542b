// Package prompt は、キャラクター定義からシステムプロンプトを組み立てます。
//
// ブロックの順序はブレにくさを優先して固定しています:
//
//  1. アイデンティティ宣言
//  2. 口調（冒頭に置いて最も強く効かせる）
//  3. 性格・振る舞い（形容詞ではなく行動で書く）
//  4. 反応パターン
//  5. 会話例（few-shot。末尾寄りに置く）
//  6. 背景・状況
//  7. 禁止事項（冒頭に置くと防御的な人格になるので最後）
//
// 同じ入力からは常にバイト単位で同じ出力が得られます。
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sat8bit/charagen/persona"
)

const (
	HeaderTone         = "【口調】"
	HeaderPersonality  = "【性格・振る舞い】"
	HeaderReactions    = "【反応パターン】"
	HeaderExamples     = "【このトーンで返してください】"
	HeaderBackground   = "【背景】"
	HeaderNotes        = "【補足】"
	HeaderProhibitions = "【禁止事項】"
)

// Compile は、検証済みの CharacterSheet をシステムプロンプトにします。
func Compile(s *persona.CharacterSheet) string {
	name := clean(s.Name)

	identity := &section{lines: identityLines(name, s.Age, "", s.Occupation)}

	tone := &section{header: HeaderTone}
	tone.add(s.Tone.Rule)

	personality := &section{header: HeaderPersonality}
	personality.bullets(s.Personality)

	reactions := &section{header: HeaderReactions}
	for _, r := range s.Reactions {
		reactions.add(reactionLine(r.Trigger, r.Response))
	}

	examples := &section{header: HeaderExamples}
	for _, ex := range s.Tone.Examples {
		examples.add(fmt.Sprintf("User: 「%s」", clean(ex.User)))
		examples.add(fmt.Sprintf("%s: 「%s」", name, clean(ex.Char)))
	}

	background := &section{header: HeaderBackground}
	background.add(s.Context.Backstory)
	if cs := clean(s.Context.CurrentSituation); cs != "" {
		background.add("現在の状況: " + cs)
	}

	prohibitions := &section{header: HeaderProhibitions}
	prohibitions.bullets(s.Forbidden)

	return render([]*section{identity, tone, personality, reactions, examples, background, prohibitions})
}

// CompileCharacter は、4層の Character を同じ順序の方針でシステムプロンプトにします。
// 自由記述の補足は背景の後、禁止事項の前に入ります。禁止事項は常に最後です。
func CompileCharacter(c *persona.Character) string {
	id, p, ctx, b := c.Identity, c.Personality, c.Context, c.Behavior
	name := clean(id.Name)

	identity := &section{lines: identityLines(name, id.Age, id.AgeRange, id.Occupation)}
	if g := id.Gender.Label(); g != "" {
		identity.add("性別: " + g)
	}
	if n := clean(id.Nationality); n != "" {
		identity.add("国籍: " + n)
	}
	if ap := appearanceLine(id.Appearance); ap != "" {
		identity.add("外見: " + ap)
	}

	tone := &section{header: HeaderTone}
	if l := p.ToneStyle.Label(); l != "" {
		tone.add("話し方: " + l)
	}
	tone.add(p.ToneDescription)
	tone.bullets(b.SpeechPatterns)

	personality := &section{header: HeaderPersonality}
	personality.bullets(p.Traits)
	if vs := joinClean(p.Values); vs != "" {
		personality.add("価値観: " + vs)
	}
	if ts := clean(p.ThinkingStyle); ts != "" {
		personality.add("考え方: " + ts)
	}
	if mood := clean(p.Emotion.BaseMood); mood != "" {
		personality.add("感情の基調: " + mood)
	}
	if e := p.Emotion; e.AngerThreshold != persona.LevelMedium ||
		e.EmpathyLevel != persona.LevelMedium ||
		e.EmotionalStability != persona.LevelMedium {
		personality.add(fmt.Sprintf("怒りやすさ: %s／共感力: %s／情緒の安定: %s",
			e.AngerThreshold.Label(), e.EmpathyLevel.Label(), e.EmotionalStability.Label()))
	}
	if p.MBTI != "" {
		personality.add("MBTI: " + p.MBTI)
	}
	if ft := joinClean(b.FavoriteTopics); ft != "" {
		personality.add("好きな話題: " + ft)
	}

	reactions := &section{header: HeaderReactions}
	for _, r := range b.Reactions {
		reactions.add(reactionLine(r.Trigger, r.Response))
	}

	examples := &section{header: HeaderExamples}
	if len(b.Catchphrases) > 0 {
		var quoted []string
		for _, cp := range b.Catchphrases {
			if cp = clean(cp); cp != "" {
				quoted = append(quoted, "「"+cp+"」")
			}
		}
		if len(quoted) > 0 {
			examples.add("口癖: " + strings.Join(quoted, ""))
		}
	}
	for _, r := range b.Reactions {
		if ex := clean(r.Example); ex != "" {
			examples.add(fmt.Sprintf("（%s）%s: 「%s」", clean(r.Trigger), name, ex))
		}
	}

	background := &section{header: HeaderBackground}
	background.add(ctx.Backstory)
	if cs := clean(ctx.CurrentSituation); cs != "" {
		background.add("現在の状況: " + cs)
	}
	if ws := clean(ctx.WorldSetting); ws != "" {
		background.add("世界観: " + ws)
	}
	if g := joinClean(ctx.Goals); g != "" {
		background.add("目標: " + g)
	}
	if f := joinClean(ctx.Fears); f != "" {
		background.add("恐れていること: " + f)
	}
	if s := joinClean(ctx.Secrets); s != "" {
		background.add("秘密（自分からは明かさない）: " + s)
	}
	for _, r := range ctx.Relationships {
		line := fmt.Sprintf("%s（%s）", clean(r.Target), clean(r.Relation))
		if d := clean(r.Description); d != "" {
			line += ": " + d
		}
		background.add("関係: " + line)
	}

	notes := &section{header: HeaderNotes}
	notes.add(b.Notes)

	prohibitions := &section{header: HeaderProhibitions}
	for _, topic := range b.ForbiddenTopics {
		if topic = clean(topic); topic != "" {
			prohibitions.add(fmt.Sprintf("- %sの話題には触れない", topic))
		}
	}

	return render([]*section{identity, tone, personality, reactions, examples, background, notes, prohibitions})
}

func identityLines(name string, age *int, ageRange, occupation string) []string {
	occ := ""
	if o := clean(occupation); o != "" {
		occ = o + "の"
	}
	detail := ""
	if age != nil {
		detail = fmt.Sprintf("（%d歳）", *age)
	} else if r := clean(ageRange); r != "" {
		detail = "（" + r + "）"
	}
	return []string{
		fmt.Sprintf("あなたは%s%s%sです。%sとして返答してください。", occ, name, detail, name),
		fmt.Sprintf("「演じる」のではなく、あなた自身が%sです。", name),
	}
}

func reactionLine(trigger, response string) string {
	trigger, response = clean(trigger), clean(response)
	if trigger == "" || response == "" {
		return ""
	}
	return fmt.Sprintf("- %s: %s", trigger, response)
}

func appearanceLine(a persona.Appearance) string {
	var parts []string
	for _, kv := range [][2]string{
		{"身長", a.Height},
		{"体格", a.Build},
		{"髪", a.Hair},
		{"目", a.Eyes},
		{"服装", a.Clothing},
	} {
		if v := clean(kv[1]); v != "" {
			parts = append(parts, kv[0]+"は"+v)
		}
	}
	if f := joinClean(a.Features); f != "" {
		parts = append(parts, "特徴は"+f)
	}
	return strings.Join(parts, "、")
}

func joinClean(items []string) string {
	var out []string
	for _, item := range items {
		if item = clean(item); item != "" {
			out = append(out, item)
		}
	}
	return strings.Join(out, "、")
}

// Stats は、生成したプロンプトの文字数と、日本語前提の概算トークン数を返します。
func Stats(text string) (chars, tokens int) {
	chars = utf8.RuneCountInString(text)
	return chars, chars / 2
}
