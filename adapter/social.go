package adapter

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/sat8bit/charagen/persona"
	"gopkg.in/yaml.v3"
)

// Platform は、SNSの種類です。
type Platform string

const (
	PlatformX         Platform = "X"
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformYouTube   Platform = "YouTube"
	PlatformThreads   Platform = "Threads"
)

var platforms = []Platform{PlatformX, PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformThreads}

// ParsePlatform は、大文字小文字を区別せずにプラットフォームを解釈します。空なら X です。
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlatformX, nil
	}
	if strings.EqualFold(s, "twitter") {
		return PlatformX, nil
	}
	for _, p := range platforms {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// PostingStyle は、投稿スタイルの定義です。
type PostingStyle struct {
	Frequency       string   `yaml:"frequency"`
	AvgLength       string   `yaml:"avg_length"` // short / medium / long
	UseEmoji        bool     `yaml:"use_emoji"`
	UseHashtags     bool     `yaml:"use_hashtags"`
	MediaPreference []string `yaml:"media_preference"`
}

func DefaultPostingStyle() PostingStyle {
	return PostingStyle{
		Frequency:   "daily",
		AvgLength:   "medium",
		UseEmoji:    true,
		UseHashtags: true,
	}
}

// UnmarshalYAML は、書かれていない項目を既定値のまま残します。
func (p *PostingStyle) UnmarshalYAML(value *yaml.Node) error {
	type raw PostingStyle
	r := raw(DefaultPostingStyle())
	if err := value.Decode(&r); err != nil {
		return err
	}
	*p = PostingStyle(r)
	return nil
}

// Monetization は、収益化のプロフィールです。
type Monetization struct {
	ProductCategories []string `yaml:"product_categories"`
	AffiliateTone     string   `yaml:"affiliate_tone"` // natural / aggressive / subtle
	CTAStyle          string   `yaml:"cta_style"`
}

func (m *Monetization) clone() Monetization {
	cp := *m
	cp.ProductCategories = append([]string(nil), m.ProductCategories...)
	return cp
}

// SocialOptions は、SNS疑似人格アカウント固有の設定です。
type SocialOptions struct {
	Platform     string        `yaml:"platform"`
	Niche        []string      `yaml:"niche"`
	PostingStyle *PostingStyle `yaml:"posting_style"`
	Monetization *Monetization `yaml:"monetization"`
	// PublicBackstory は、フォロワー向けに公開するプロフィール設定です。
	PublicBackstory string         `yaml:"persona_backstory"`
	Extra           map[string]any `yaml:"extra"`
}

// Social は、SNS疑似人格アカウント用のアダプターです。
type Social struct {
	base            persona.Character
	platform        Platform
	niche           []string
	style           PostingStyle
	monetization    *Monetization
	publicBackstory string
	extra           map[string]any
}

// NewSocial は、base を用途 social に設定したコピーで包みます。
func NewSocial(base persona.Character, opts SocialOptions) (*Social, error) {
	var errs []error

	platform, err := ParsePlatform(opts.Platform)
	if err != nil {
		errs = append(errs, err)
	}

	style := DefaultPostingStyle()
	if opts.PostingStyle != nil {
		style = *opts.PostingStyle
	}
	switch style.AvgLength {
	case "short", "medium", "long":
	default:
		errs = append(errs, fmt.Errorf("posting_style.avg_length: unknown value %q (valid: short, medium, long)", style.AvgLength))
	}

	var monetization *Monetization
	if opts.Monetization != nil {
		m := opts.Monetization.clone()
		if m.AffiliateTone == "" {
			m.AffiliateTone = "natural"
		}
		switch m.AffiliateTone {
		case "natural", "aggressive", "subtle":
		default:
			errs = append(errs, fmt.Errorf("monetization.affiliate_tone: unknown value %q (valid: natural, aggressive, subtle)", m.AffiliateTone))
		}
		monetization = &m
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("adapter.NewSocial: %w", errors.Join(errs...))
	}

	return &Social{
		base:            base.WithPurpose(persona.PurposeSocial),
		platform:        platform,
		niche:           append([]string(nil), opts.Niche...),
		style:           style,
		monetization:    monetization,
		publicBackstory: opts.PublicBackstory,
		extra:           maps.Clone(opts.Extra),
	}, nil
}

func (s *Social) Base() persona.Character    { return s.base.Clone() }
func (s *Social) Platform() Platform         { return s.platform }
func (s *Social) Niche() []string            { return append([]string(nil), s.niche...) }
func (s *Social) PostingStyle() PostingStyle { return s.style }
func (s *Social) PublicBackstory() string    { return s.publicBackstory }
func (s *Social) Extra() map[string]any      { return maps.Clone(s.extra) }

// Monetization は、設定がなければ nil、あればコピーを返します。
func (s *Social) Monetization() *Monetization {
	if s.monetization == nil {
		return nil
	}
	m := s.monetization.clone()
	return &m
}

// SystemPrompt は、基本プロンプトをそのまま返します。
func (s *Social) SystemPrompt() string {
	return compileBase(s.base)
}

// PostPrompt は、投稿生成用のプロンプトを返します。topic が空でなければテーマとして添えます。
func (s *Social) PostPrompt(topic string) string {
	lines := []string{compileBase(s.base)}
	lines = append(lines, fmt.Sprintf("\nあなたは%sで活動するアカウントです。", s.platform))
	if len(s.niche) > 0 {
		lines = append(lines, "専門ジャンル: "+strings.Join(s.niche, ", "))
	}
	if s.style.UseEmoji {
		lines = append(lines, "絵文字を適度に使ってください。")
	}
	if s.style.UseHashtags {
		lines = append(lines, "関連するハッシュタグを添えてください。")
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		lines = append(lines, "\n今回のテーマ: "+topic)
	}
	return strings.Join(lines, "\n")
}
