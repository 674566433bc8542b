package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>test</title>
  <item>
    <title>古いニュース</title>
    <link>https://example.com/old</link>
    <description>old</description>
    <pubDate>Mon, 01 Jan 2024 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title>日付なし</title>
    <link>https://example.com/nodate</link>
  </item>
  <item>
    <title>新しいニュース</title>
    <link>https://example.com/new</link>
    <description>&lt;p&gt;春の&lt;b&gt;新作&lt;/b&gt;が登場&lt;/p&gt;</description>
    <pubDate>Wed, 01 May 2024 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title>  </title>
    <description>タイトルなし</description>
  </item>
</channel>
</rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetcher_Fetch(t *testing.T) {
	srv := feedServer(t)

	topics, err := NewRSSFetcher(srv.URL, 0, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 3)

	assert.Equal(t, "新しいニュース", topics[0].Title)
	assert.Equal(t, "春の新作が登場", topics[0].Summary)
	assert.Equal(t, "https://example.com/new", topics[0].SourceURL)
	assert.Equal(t, "古いニュース", topics[1].Title)
	assert.Equal(t, "日付なし", topics[2].Title)
}

func TestRSSFetcher_Limit(t *testing.T) {
	srv := feedServer(t)

	topics, err := NewRSSFetcher(srv.URL, 1, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "新しいニュース（春の新作が登場）", topics[0].Theme())
}

func TestRSSFetcher_Error(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewRSSFetcher(srv.URL, 0, nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "あいう", truncateString("あいうえお", 3))
	assert.Equal(t, "ab", truncateString("ab", 3))
	assert.Equal(t, strings.Repeat("x", SummaryRunes), truncateString(strings.Repeat("x", 500), SummaryRunes))
}
