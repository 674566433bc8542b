package prompt

import (
	"regexp"
	"strings"
)

// section は、見出しと本文行からなる1ブロックです。
// 見出しが空のブロックは本文のみを出力します。
type section struct {
	header string
	lines  []string
}

func (s *section) add(line string) {
	line = clean(line)
	if line == "" {
		return
	}
	s.lines = append(s.lines, line)
}

func (s *section) bullets(items []string) {
	for _, item := range items {
		if item = clean(item); item != "" {
			s.lines = append(s.lines, "- "+item)
		}
	}
}

var blankRun = regexp.MustCompile(`\n(?:[ \t\r]*\n)+`)

// clean は、前後の空白を落とし、自由記述中の空行を詰めます。
// ブロック間の区切り以外に空行が現れないようにするためです。
func clean(s string) string {
	s = strings.TrimSpace(s)
	return blankRun.ReplaceAllString(s, "\n")
}

// render は、中身のあるブロックだけを空行1つで区切って連結します。
// 並び順は呼び出し側が決め、内容によって入れ替えることはありません。
func render(sections []*section) string {
	var blocks []string
	for _, s := range sections {
		if len(s.lines) == 0 {
			continue
		}
		body := strings.Join(s.lines, "\n")
		if s.header != "" {
			body = s.header + "\n" + body
		}
		blocks = append(blocks, body)
	}
	return strings.Join(blocks, "\n\n")
}
