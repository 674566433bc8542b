package topic

import "strings"

// Topic は、SNS投稿のテーマとして使う「話題」です。出所（RSSなど）に依存しません。
type Topic struct {
	Title     string
	Summary   string
	SourceURL string
}

// Theme は、投稿プロンプトの「今回のテーマ」に入れる1行です。
func (t *Topic) Theme() string {
	title := strings.TrimSpace(t.Title)
	summary := strings.TrimSpace(t.Summary)
	switch {
	case title == "":
		return summary
	case summary == "":
		return title
	default:
		return title + "（" + summary + "）"
	}
}
