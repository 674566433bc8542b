package persona

import (
	"fmt"
	"strings"
)

// FieldError は、1つのフィールドの検証エラーです。
type FieldError struct {
	Path    string
	Message string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// SchemaError は、構造・意味の検証に失敗したすべてのフィールドを保持します。
// 最初の1件ではなく、見つかった問題をすべて列挙します。
type SchemaError struct {
	// Name は、読み取れた場合のキャラクター名です。
	Name   string
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Name != "" {
		fmt.Fprintf(&b, "persona %q is invalid: ", e.Name)
	} else {
		b.WriteString("persona is invalid: ")
	}
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

// Report は、人が読むための複数行の表示を返します。
func (e *SchemaError) Report() string {
	var b strings.Builder
	if e.Name != "" {
		fmt.Fprintf(&b, "[%s]\n", e.Name)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Has は、指定パスのエラーが含まれているかを返します。
func (e *SchemaError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}
