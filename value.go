package goadt

import (
	"maps"
	"reflect"
	"sort"

	json "github.com/goccy/go-json"
)

// TagField is the wire name of the discriminant carried by every record value.
const TagField = "_tag"

// EnvelopeField is the reserved key of the identity envelope. It never
// appears on the wire and is stripped from constructor input.
const EnvelopeField = "_"

// Fields holds named field values. It is an alias so that plain
// map[string]any literals can be passed anywhere Fields is expected.
type Fields = map[string]any

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks a key as explicitly not provided. Constructors treat it
// like an absent key so that defaults still apply; nil means null.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Value is an immutable record instance: the record's validated fields, its
// tag and the identity token of the record definition that created it.
type Value struct {
	tag    string
	fields Fields
	symbol *Symbol
}

// NewValue stamps validated fields with the tag and identity of sym. The
// fields map is copied; the tag and envelope keys are dropped from it.
func NewValue(sym *Symbol, fields Fields) *Value {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if k == TagField || k == EnvelopeField {
			continue
		}
		out[k] = v
	}
	return &Value{tag: sym.Name(), fields: out, symbol: sym}
}

// Tag returns the record name.
func (v *Value) Tag() string { return v.tag }

// Symbol returns the identity token of the record definition.
func (v *Value) Symbol() *Symbol { return v.symbol }

// Get returns the field value for key, or nil when absent.
func (v *Value) Get(key string) any { return v.fields[key] }

// Lookup returns the field value for key and whether it is present. The tag
// is reachable under TagField.
func (v *Value) Lookup(key string) (any, bool) {
	if key == TagField {
		return v.tag, true
	}
	val, ok := v.fields[key]
	return val, ok
}

// Keys returns the field names in ascending order, excluding the tag.
func (v *Value) Keys() []string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the field values, excluding the tag.
func (v *Value) Fields() Fields { return maps.Clone(v.fields) }

// Map returns the wire view of the value: its fields plus TagField. The
// identity envelope is never included.
func (v *Value) Map() map[string]any {
	if v == nil {
		return nil
	}
	out := make(map[string]any, len(v.fields)+1)
	maps.Copy(out, v.fields)
	out[TagField] = v.tag
	return out
}

// Equal reports whether o was created by the same record definition and
// carries deeply equal fields.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.symbol == o.symbol && reflect.DeepEqual(v.fields, o.fields)
}

// MarshalJSON encodes the wire view returned by Map.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	b, err := json.Marshal(v.fields)
	if err != nil {
		return v.tag + "{?}"
	}
	return v.tag + string(b)
}
