package codec

import (
	"fmt"
	"time"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/record"
	"gopkg.in/yaml.v3"
)

// YAML encodes a record as a YAML mapping holding its fields and _tag.
// Decoding misses on malformed YAML, non-mapping documents and documents
// whose _tag names another record.
func YAML() record.CodecDef {
	return record.CodecDef{
		To: func(v *goadt.Value) (string, error) {
			b, err := yaml.Marshal(toYAML(v.Map()))
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		From: func(text string, cx record.CodecContext) (goadt.Fields, bool) {
			var raw any
			if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
				return nil, false
			}
			m, ok := fromYAML(raw).(map[string]any)
			if !ok {
				return nil, false
			}
			if tag, has := m[goadt.TagField]; has && tag != cx.Name {
				return nil, false
			}
			delete(m, goadt.TagField)
			return m, true
		},
	}
}

// toYAML renders times as RFC3339 text so they decode back through
// schema.Time.
func toYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = toYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = toYAML(t[i])
		}
		return out
	case time.Time:
		return formatRFC3339Canonical(t)
	}
	return v
}

// fromYAML turns every mapping into a string-keyed map. Non-string keys are
// stringified so that validation reports them as unknown keys.
func fromYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = fromYAML(vv)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = fromYAML(vv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = fromYAML(t[i])
		}
		return t
	}
	return v
}
