package batch

import (
	"fmt"
	"strings"
)

// ExtractionError は、生成結果から候補となるマッピングが1つも取り出せなかったことを示します。
type ExtractionError struct {
	Segments int
}

func (e *ExtractionError) Error() string {
	if e.Segments == 0 {
		return "no character blocks found in generated text"
	}
	return fmt.Sprintf("none of %d segments is a character mapping with a name", e.Segments)
}

// AllCandidatesInvalidError は、候補はあったがすべて検証に落ちたことを示します。
type AllCandidatesInvalidError struct {
	Rejections []Rejection
}

func (e *AllCandidatesInvalidError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d candidates failed validation", len(e.Rejections))
	for _, r := range e.Rejections {
		fmt.Fprintf(&b, "\n  - %s", r)
	}
	return b.String()
}
