package persona

import "fmt"

// Purpose は、キャラクターの用途を表す型です。
type Purpose string

const (
	PurposeTRPG       Purpose = "trpg"
	PurposeSocial     Purpose = "social"
	PurposeGalge      Purpose = "galge"
	PurposeTestPlayer Purpose = "test_player"
	PurposeGeneric    Purpose = "generic"
)

var purposes = []Purpose{PurposeTRPG, PurposeSocial, PurposeGalge, PurposeTestPlayer, PurposeGeneric}

func (p Purpose) Valid() bool {
	for _, v := range purposes {
		if p == v {
			return true
		}
	}
	return false
}

// Gender は、性別タグです。
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderNonbinary   Gender = "nonbinary"
	GenderUnspecified Gender = "unspecified"
)

var genders = []Gender{GenderMale, GenderFemale, GenderNonbinary, GenderUnspecified}

func (g Gender) Valid() bool {
	for _, v := range genders {
		if g == v {
			return true
		}
	}
	return false
}

// Label は、プロンプトに埋め込む表示名を返します。
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "男性"
	case GenderFemale:
		return "女性"
	case GenderNonbinary:
		return "ノンバイナリー"
	default:
		return ""
	}
}

// ToneStyle は、話し方の大まかな分類です。
type ToneStyle string

const (
	ToneNeutral   ToneStyle = "neutral"
	ToneCasual    ToneStyle = "casual"
	TonePolite    ToneStyle = "polite"
	ToneFormal    ToneStyle = "formal"
	ToneFriendly  ToneStyle = "friendly"
	ToneCool      ToneStyle = "cool"
	ToneRough     ToneStyle = "rough"
	ToneEnergetic ToneStyle = "energetic"
	ToneCalm      ToneStyle = "calm"
)

var toneStyleOrder = []ToneStyle{
	ToneNeutral, ToneCasual, TonePolite, ToneFormal, ToneFriendly,
	ToneCool, ToneRough, ToneEnergetic, ToneCalm,
}

var toneStyles = map[ToneStyle]string{
	ToneNeutral:   "",
	ToneCasual:    "くだけた話し方",
	TonePolite:    "丁寧語",
	ToneFormal:    "改まった敬語",
	ToneFriendly:  "人懐っこい話し方",
	ToneCool:      "クールで淡々とした話し方",
	ToneRough:     "ぶっきらぼうな話し方",
	ToneEnergetic: "元気で勢いのある話し方",
	ToneCalm:      "落ち着いた穏やかな話し方",
}

func (t ToneStyle) Valid() bool {
	_, ok := toneStyles[t]
	return ok
}

// Label は、プロンプトに埋め込む表示名を返します。neutral は空文字です。
func (t ToneStyle) Label() string {
	return toneStyles[t]
}

// Level は、感情傾向のスライダー値（低・中・高）です。
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

func (l Level) Label() string {
	switch l {
	case LevelLow:
		return "低"
	case LevelHigh:
		return "高"
	default:
		return "中"
	}
}

// choices は、列挙値をエラーメッセージ用に整形します。
func choices[T ~string](vs []T) string {
	s := ""
	for i, v := range vs {
		if i > 0 {
			s += ", "
		}
		s += string(v)
	}
	return fmt.Sprintf("(valid: %s)", s)
}
