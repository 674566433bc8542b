package persona

// Extra は、各レイヤーに付けられる自由記述の拡張フィールドです。
// スキーマの逃げ道として意図的に検証しません。プロンプトにも出力されません。
type Extra map[string]any

// Appearance は、外見の構造化された記述です。すべて任意。
type Appearance struct {
	Height   string   `yaml:"height,omitempty"`
	Build    string   `yaml:"build,omitempty"`
	Hair     string   `yaml:"hair,omitempty"`
	Eyes     string   `yaml:"eyes,omitempty"`
	Clothing string   `yaml:"clothing,omitempty"`
	Features []string `yaml:"features,omitempty"`
}

func (a Appearance) IsZero() bool {
	return a.Height == "" && a.Build == "" && a.Hair == "" && a.Eyes == "" &&
		a.Clothing == "" && len(a.Features) == 0
}

// Identity は「誰であるか」のレイヤーです。
type Identity struct {
	Name        string
	Age         *int
	AgeRange    string
	Gender      Gender
	Appearance  Appearance
	Occupation  string
	Nationality string
	Extra       Extra
}

// EmotionalTendency は、感情の基調と3つのスライダーです。
type EmotionalTendency struct {
	BaseMood           string
	AngerThreshold     Level
	EmpathyLevel       Level
	EmotionalStability Level
}

// Personality は「どう考え、どう話すか」のレイヤーです。
type Personality struct {
	Traits          []string
	Values          []string
	ToneStyle       ToneStyle
	ToneDescription string
	ThinkingStyle   string
	Emotion         EmotionalTendency
	MBTI            string
	Extra           Extra
}

// Relationship は、他者との関係です。
type Relationship struct {
	Target      string
	Relation    string
	Description string
}

// Context は「どんな状況にいるか」のレイヤーです。
type Context struct {
	Backstory        string
	CurrentSituation string
	Goals            []string
	Fears            []string
	Secrets          []string
	Relationships    []Relationship
	WorldSetting     string
	Extra            Extra
}

// ReactionPattern は、特定の状況での反応です。
type ReactionPattern struct {
	Trigger  string
	Response string
	Example  string
}

// BehaviorPattern は「どう振る舞うか」のレイヤーです。
type BehaviorPattern struct {
	Catchphrases    []string
	SpeechPatterns  []string
	Reactions       []ReactionPattern
	ForbiddenTopics []string
	FavoriteTopics  []string
	// Notes は、そのままプロンプトに挿入される補足です。
	Notes string
	Extra Extra
}

// Character は、4つのレイヤーを束ねたキャラクター定義です。
// 構築後は不変として扱い、変更が必要なら新しい値を作ります。
type Character struct {
	Purpose     Purpose
	Identity    Identity
	Personality Personality
	Context     Context
	Behavior    BehaviorPattern
}

// WithPurpose は、用途を差し替えたディープコピーを返します。レシーバは変更しません。
func (c Character) WithPurpose(p Purpose) Character {
	cp := c.Clone()
	cp.Purpose = p
	return cp
}

// Clone は、スライスとマップを複製したコピーを返します。
func (c Character) Clone() Character {
	cp := c
	if c.Identity.Age != nil {
		age := *c.Identity.Age
		cp.Identity.Age = &age
	}
	cp.Identity.Appearance.Features = cloneStrings(c.Identity.Appearance.Features)
	cp.Identity.Extra = cloneExtra(c.Identity.Extra)

	cp.Personality.Traits = cloneStrings(c.Personality.Traits)
	cp.Personality.Values = cloneStrings(c.Personality.Values)
	cp.Personality.Extra = cloneExtra(c.Personality.Extra)

	cp.Context.Goals = cloneStrings(c.Context.Goals)
	cp.Context.Fears = cloneStrings(c.Context.Fears)
	cp.Context.Secrets = cloneStrings(c.Context.Secrets)
	if c.Context.Relationships != nil {
		cp.Context.Relationships = append([]Relationship(nil), c.Context.Relationships...)
	}
	cp.Context.Extra = cloneExtra(c.Context.Extra)

	cp.Behavior.Catchphrases = cloneStrings(c.Behavior.Catchphrases)
	cp.Behavior.SpeechPatterns = cloneStrings(c.Behavior.SpeechPatterns)
	if c.Behavior.Reactions != nil {
		cp.Behavior.Reactions = append([]ReactionPattern(nil), c.Behavior.Reactions...)
	}
	cp.Behavior.ForbiddenTopics = cloneStrings(c.Behavior.ForbiddenTopics)
	cp.Behavior.FavoriteTopics = cloneStrings(c.Behavior.FavoriteTopics)
	cp.Behavior.Extra = cloneExtra(c.Behavior.Extra)
	return cp
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// cloneExtra はトップレベルのみ複製します。値そのものは共有されます。
func cloneExtra(e Extra) Extra {
	if e == nil {
		return nil
	}
	cp := make(Extra, len(e))
	for k, v := range e {
		cp[k] = v
	}
	return cp
}
