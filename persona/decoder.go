package persona

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// decoder は、型の強制変換を行いながらエラーを溜めていきます。
// 最初のエラーで止まらず、すべてのフィールドを検査します。
type decoder struct {
	errs []FieldError
}

func (d *decoder) fail(path, format string, args ...any) {
	d.errs = append(d.errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) err(name string) error {
	if len(d.errs) == 0 {
		return nil
	}
	return &SchemaError{Name: name, Fields: d.errs}
}

func join(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func at(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}

func typeName(v any) string {
	switch v.(type) {
	case Mapping, map[string]any:
		return "mapping"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func (d *decoder) mapping(path string, v any) Mapping {
	switch t := v.(type) {
	case nil:
		return nil
	case Mapping:
		return t
	case map[string]any:
		return FromMap(t)
	}
	d.fail(path, "must be a mapping, got %s", typeName(v))
	return nil
}

func (d *decoder) str(path string, v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	d.fail(path, "must be a string, got %s", typeName(v))
	return ""
}

// required は、キーが存在し空白以外の文字を含む文字列であることを検査します。
func (d *decoder) required(m Mapping, base, key string) string {
	path := join(base, key)
	v, ok := m.Get(key)
	if !ok || v == nil {
		d.fail(path, "is required")
		return ""
	}
	before := len(d.errs)
	s := d.str(path, v)
	if len(d.errs) == before && strings.TrimSpace(s) == "" {
		d.fail(path, "must not be empty")
	}
	return s
}

func (d *decoder) field(m Mapping, base, key string) string {
	v, _ := m.Get(key)
	return d.str(join(base, key), v)
}

func (d *decoder) optInt(path string, v any) *int {
	var n int
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		n = t
	case int64:
		n = int(t)
	case uint64:
		if t > math.MaxInt64 {
			d.fail(path, "is out of range")
			return nil
		}
		n = int(t)
	case float64:
		if t != math.Trunc(t) {
			d.fail(path, "must be an integer, got %v", t)
			return nil
		}
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			d.fail(path, "must be an integer, got %q", t)
			return nil
		}
		n = parsed
	default:
		d.fail(path, "must be an integer, got %s", typeName(v))
		return nil
	}
	return &n
}

func (d *decoder) list(path string, v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		return stringsToAny(t)
	}
	d.fail(path, "must be a list, got %s", typeName(v))
	return nil
}

// stringList は、文字列のリストを読み込みます。空のリストは nil になります。
func (d *decoder) stringList(m Mapping, base, key string) []string {
	path := join(base, key)
	v, _ := m.Get(key)
	items := d.list(path, v)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			d.fail(at(path, i), "must be a string, got %s", typeName(item))
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (d *decoder) extra(m Mapping, base string) Extra {
	v, ok := m.Get("extra")
	if !ok || v == nil {
		return nil
	}
	em := d.mapping(join(base, "extra"), v)
	if len(em) == 0 {
		return nil
	}
	out := make(Extra, len(em))
	for _, e := range em {
		out[e.Key] = plain(e.Value)
	}
	return out
}

// plain は、Mapping を含む値を通常のGoの値に戻します。
func plain(v any) any {
	switch t := v.(type) {
	case Mapping:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// enum は、列挙値を大文字小文字を区別せずに読み込みます。未指定なら def を返します。
func enum[T ~string](d *decoder, m Mapping, base, key string, all []T, def T) T {
	path := join(base, key)
	v, _ := m.Get(key)
	s := strings.ToLower(strings.TrimSpace(d.str(path, v)))
	if s == "" {
		return def
	}
	for _, c := range all {
		if string(c) == s {
			return c
		}
	}
	d.fail(path, "unknown value %q %s", s, choices(all))
	return def
}
