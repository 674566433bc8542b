package persona

import (
	"regexp"
	"strings"
)

// NewSheet は、型なしのマッピングを検証して CharacterSheet を構築します。
// 失敗した場合は、問題のあるフィールドをすべて含む *SchemaError を返します。
// 部分的に構築されたシートを返すことはありません。
func NewSheet(m Mapping) (*CharacterSheet, error) {
	d := &decoder{}
	s := &CharacterSheet{}

	s.Name = d.required(m, "", "name")
	ageRaw, _ := m.Get("age")
	s.Age = d.optInt("age", ageRaw)
	if s.Age != nil && *s.Age < 0 {
		d.fail("age", "must not be negative")
	}
	s.Occupation = d.field(m, "", "occupation")

	toneRaw, _ := m.Get("tone")
	tone := d.mapping("tone", toneRaw)
	s.Tone.Rule = d.field(tone, "tone", "rule")
	examplesRaw, _ := tone.Get("examples")
	for i, item := range d.list("tone.examples", examplesRaw) {
		path := at("tone.examples", i)
		ex := d.mapping(path, item)
		if ex == nil {
			if item == nil {
				d.fail(path, "must be a mapping, got null")
			}
			continue
		}
		s.Tone.Examples = append(s.Tone.Examples, ToneExample{
			User: d.required(ex, path, "user"),
			Char: d.required(ex, path, "char"),
		})
	}

	s.Personality = d.stringList(m, "", "personality")

	reactionsRaw, _ := m.Get("reactions")
	for _, e := range d.mapping("reactions", reactionsRaw) {
		path := join("reactions", e.Key)
		response := d.str(path, e.Value)
		if strings.TrimSpace(e.Key) == "" {
			d.fail(path, "trigger must not be empty")
			continue
		}
		s.Reactions = append(s.Reactions, Reaction{Trigger: e.Key, Response: response})
	}

	s.Forbidden = d.stringList(m, "", "forbidden")

	ctxRaw, _ := m.Get("context")
	ctx := d.mapping("context", ctxRaw)
	s.Context.Backstory = d.field(ctx, "context", "backstory")
	s.Context.CurrentSituation = d.field(ctx, "context", "current_situation")

	// 必須の中身: 口調ルールと性格がないシートはブレるので受け付けない
	if !d.has("tone") && !d.has("tone.rule") && strings.TrimSpace(s.Tone.Rule) == "" {
		d.fail("tone.rule", "must not be empty")
	}
	if !d.has("personality") && len(s.Personality) == 0 {
		d.fail("personality", "must contain at least one entry")
	}

	if err := d.err(s.Name); err != nil {
		return nil, err
	}
	return s, nil
}

// has は、パスに対するエラーが既に記録されているかを返します。
func (d *decoder) has(path string) bool {
	for _, e := range d.errs {
		if e.Path == path {
			return true
		}
	}
	return false
}

var mbtiPattern = regexp.MustCompile(`^[EI][SN][TF][JP]$`)

// NewCharacter は、型なしのマッピングを検証して4層の Character を構築します。
// 期待するキーは purpose, identity, personality, context, behavior です。
func NewCharacter(m Mapping) (*Character, error) {
	d := &decoder{}
	c := &Character{}

	c.Purpose = enum(d, m, "", "purpose", purposes, PurposeGeneric)

	idRaw, ok := m.Get("identity")
	if !ok || idRaw == nil {
		d.fail("identity", "is required")
	}
	c.Identity = decodeIdentity(d, d.mapping("identity", idRaw))

	pRaw, _ := m.Get("personality")
	c.Personality = decodePersonality(d, d.mapping("personality", pRaw))

	ctxRaw, _ := m.Get("context")
	c.Context = decodeContext(d, d.mapping("context", ctxRaw))

	bRaw, _ := m.Get("behavior")
	c.Behavior = decodeBehavior(d, d.mapping("behavior", bRaw))

	if err := d.err(c.Identity.Name); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeIdentity(d *decoder, m Mapping) Identity {
	const base = "identity"
	id := Identity{}
	if m == nil {
		return id
	}
	id.Name = d.required(m, base, "name")
	ageRaw, _ := m.Get("age")
	id.Age = d.optInt(join(base, "age"), ageRaw)
	if id.Age != nil && *id.Age < 0 {
		d.fail(join(base, "age"), "must not be negative")
	}
	id.AgeRange = d.field(m, base, "age_range")
	id.Gender = enum(d, m, base, "gender", genders, GenderUnspecified)
	id.Occupation = d.field(m, base, "occupation")
	id.Nationality = d.field(m, base, "nationality")

	apRaw, _ := m.Get("appearance")
	ap := d.mapping(join(base, "appearance"), apRaw)
	apBase := join(base, "appearance")
	id.Appearance = Appearance{
		Height:   d.field(ap, apBase, "height"),
		Build:    d.field(ap, apBase, "build"),
		Hair:     d.field(ap, apBase, "hair"),
		Eyes:     d.field(ap, apBase, "eyes"),
		Clothing: d.field(ap, apBase, "clothing"),
		Features: d.stringList(ap, apBase, "features"),
	}
	id.Extra = d.extra(m, base)
	return id
}

func decodePersonality(d *decoder, m Mapping) Personality {
	const base = "personality"
	p := Personality{
		ToneStyle: ToneNeutral,
		Emotion: EmotionalTendency{
			AngerThreshold:     LevelMedium,
			EmpathyLevel:       LevelMedium,
			EmotionalStability: LevelMedium,
		},
	}
	if m == nil {
		return p
	}
	p.Traits = d.stringList(m, base, "traits")
	p.Values = d.stringList(m, base, "values")
	p.ToneStyle = enum(d, m, base, "tone_style", toneStyleOrder, ToneNeutral)
	p.ToneDescription = d.field(m, base, "tone_description")
	p.ThinkingStyle = d.field(m, base, "thinking_style")

	emRaw, _ := m.Get("emotion")
	emBase := join(base, "emotion")
	em := d.mapping(emBase, emRaw)
	levels := []Level{LevelLow, LevelMedium, LevelHigh}
	p.Emotion = EmotionalTendency{
		BaseMood:           d.field(em, emBase, "base_mood"),
		AngerThreshold:     enum(d, em, emBase, "anger_threshold", levels, LevelMedium),
		EmpathyLevel:       enum(d, em, emBase, "empathy_level", levels, LevelMedium),
		EmotionalStability: enum(d, em, emBase, "emotional_stability", levels, LevelMedium),
	}

	mbti := strings.ToUpper(strings.TrimSpace(d.field(m, base, "mbti")))
	if mbti != "" && !mbtiPattern.MatchString(mbti) {
		d.fail(join(base, "mbti"), "%q is not an MBTI type", mbti)
	}
	p.MBTI = mbti
	p.Extra = d.extra(m, base)
	return p
}

func decodeContext(d *decoder, m Mapping) Context {
	const base = "context"
	c := Context{}
	if m == nil {
		return c
	}
	c.Backstory = d.field(m, base, "backstory")
	c.CurrentSituation = d.field(m, base, "current_situation")
	c.Goals = d.stringList(m, base, "goals")
	c.Fears = d.stringList(m, base, "fears")
	c.Secrets = d.stringList(m, base, "secrets")
	c.WorldSetting = d.field(m, base, "world_setting")

	relRaw, _ := m.Get("relationships")
	relBase := join(base, "relationships")
	for i, item := range d.list(relBase, relRaw) {
		path := at(relBase, i)
		rm := d.mapping(path, item)
		if rm == nil {
			continue
		}
		c.Relationships = append(c.Relationships, Relationship{
			Target:      d.required(rm, path, "target"),
			Relation:    d.required(rm, path, "relation"),
			Description: d.field(rm, path, "description"),
		})
	}
	c.Extra = d.extra(m, base)
	return c
}

func decodeBehavior(d *decoder, m Mapping) BehaviorPattern {
	const base = "behavior"
	b := BehaviorPattern{}
	if m == nil {
		return b
	}
	b.Catchphrases = d.stringList(m, base, "catchphrases")
	b.SpeechPatterns = d.stringList(m, base, "speech_patterns")
	b.ForbiddenTopics = d.stringList(m, base, "forbidden_topics")
	b.FavoriteTopics = d.stringList(m, base, "favorite_topics")
	b.Notes = d.field(m, base, "notes")

	reRaw, _ := m.Get("reactions")
	reBase := join(base, "reactions")
	for i, item := range d.list(reBase, reRaw) {
		path := at(reBase, i)
		rm := d.mapping(path, item)
		if rm == nil {
			continue
		}
		b.Reactions = append(b.Reactions, ReactionPattern{
			Trigger:  d.required(rm, path, "trigger"),
			Response: d.required(rm, path, "response"),
			Example:  d.field(rm, path, "example"),
		})
	}
	b.Extra = d.extra(m, base)
	return b
}
