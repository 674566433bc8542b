package persona

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping は、入力がマッピングとして解釈できなかったことを示します。
var ErrNotMapping = errors.New("document is not a mapping")

// Entry は、Mapping の1要素です。
type Entry struct {
	Key   string
	Value any
}

// Mapping は、キーの挿入順を保持する型なしのキー・バリューです。
// 値は string, int, float64, bool, nil, []any, Mapping のいずれかです。
type Mapping []Entry

// Get は、最初に見つかったキーの値を返します。
func (m Mapping) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys は、キーを挿入順で返します。
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}
	return keys
}

// FromMap は、Goのマップを Mapping に変換します。
// マップには順序がないため、キーは辞書順に並べます。
func FromMap(src map[string]any) Mapping {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := make(Mapping, 0, len(keys))
	for _, k := range keys {
		m = append(m, Entry{Key: k, Value: normalizeValue(src[k])})
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case []string:
		return stringsToAny(t)
	default:
		return v
	}
}

// ParseMapping は、YAMLテキストを Mapping として読み込みます。
// ドキュメントがマッピングでない場合は ErrNotMapping を返します。
func ParseMapping(data []byte) (Mapping, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return mappingFromNode(&root)
}

func mappingFromNode(n *yaml.Node) (Mapping, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, ErrNotMapping
		}
		n = n.Content[0]
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	v, err := valueFromNode(n)
	if err != nil {
		return nil, err
	}
	return v.(Mapping), nil
}

func valueFromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return valueFromNode(n.Content[0])
	case yaml.AliasNode:
		return valueFromNode(n.Alias)
	case yaml.MappingNode:
		m := make(Mapping, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			v, err := valueFromNode(vn)
			if err != nil {
				return nil, err
			}
			if k.ShortTag() == "!!merge" {
				if merged, ok := v.(Mapping); ok {
					for _, e := range merged {
						if _, exists := m.Get(e.Key); !exists {
							m = append(m, e)
						}
					}
					continue
				}
			}
			m = append(m, Entry{Key: k.Value, Value: v})
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := valueFromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

// node は、Mapping を順序付きのYAMLノードに変換します。
func (m Mapping) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			valueNode(e.Value),
		)
	}
	return n
}

// MarshalYAML は、キー順を保ったまま出力します。
func (m Mapping) MarshalYAML() (interface{}, error) {
	return m.node(), nil
}

// UnmarshalYAML は、マッピングのノードをキー順を保ったまま読み込みます。
func (m *Mapping) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := mappingFromNode(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func valueNode(v any) *yaml.Node {
	switch t := v.(type) {
	case Mapping:
		return t.node()
	case map[string]any:
		return FromMap(t).node()
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n.Content = append(n.Content, valueNode(e))
		}
		return n
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
	}
	return &n
}
