package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/sat8bit/charagen/topic"
)

// SummaryRunes は、要約を切り詰める文字数です。
const SummaryRunes = 120

// RSSFetcher は topic.Fetcher のRSS実装です。
type RSSFetcher struct {
	url    string
	limit  int
	client *http.Client
}

// NewRSSFetcher は新しい RSSFetcher を生成します。
// limit は取得する記事の上限数です。0以下の場合は無制限。client が nil なら http.DefaultClient を使います。
func NewRSSFetcher(url string, limit int, client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		url:    url,
		limit:  limit,
		client: client,
	}
}

// Fetch は、フィードを取得し、新しい順の話題に変換します。
func (f *RSSFetcher) Fetch(ctx context.Context) ([]*topic.Topic, error) {
	fp := gofeed.NewParser()
	if f.client != nil {
		fp.Client = f.client
	}
	feed, err := fp.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed from %s: %w", f.url, err)
	}

	// 日付のない記事は元の並びのまま後ろに回す
	sort.SliceStable(feed.Items, func(i, j int) bool {
		it, jt := feed.Items[i].PublishedParsed, feed.Items[j].PublishedParsed
		switch {
		case it == nil:
			return false
		case jt == nil:
			return true
		default:
			return it.After(*jt)
		}
	})

	var topics []*topic.Topic
	for _, item := range feed.Items {
		if f.limit > 0 && len(topics) >= f.limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		topics = append(topics, &topic.Topic{
			Title:     title,
			Summary:   truncateString(strings.TrimSpace(stripHTML(item.Description)), SummaryRunes),
			SourceURL: item.Link,
		})
	}

	return topics, nil
}

var htmlRegex = regexp.MustCompile("<[^>]*>")

func stripHTML(s string) string {
	return htmlRegex.ReplaceAllString(s, "")
}

// truncateString は文字列をrune単位で指定された長さに切り詰めます。
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}

var _ topic.Fetcher = (*RSSFetcher)(nil)
