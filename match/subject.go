package match

import (
	"reflect"
	"strings"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/schema"
)

// Discriminants lists the property names probed, in order, to find the tag
// of a subject that has no Tag method.
var Discriminants = []string{goadt.TagField, "__typename", "type", "kind"}

// Discriminant returns the tag of subject. Values with a Tag() string method
// answer directly; maps and structs are probed for the first Discriminants
// property holding a string. Struct fields match by json name, then by Go
// field name, case-insensitively as a last resort.
func Discriminant(subject any) (string, bool) {
	_, tag, ok := discriminant(subject)
	return tag, ok
}

func discriminant(subject any) (key, tag string, ok bool) {
	if isNil(subject) {
		return "", "", false
	}
	if t, ok := subject.(interface{ Tag() string }); ok {
		return goadt.TagField, t.Tag(), true
	}
	for _, k := range Discriminants {
		if v, found := lookup(subject, k); found {
			if s, isStr := v.(string); isStr {
				return k, s, true
			}
		}
	}
	return "", "", false
}

// Matches reports whether subject carries every key of pattern with an equal
// value. Nested maps in pattern match as subsets; numbers compare by value.
// The subject's discriminant key is ignored.
func Matches(subject any, pattern goadt.Fields) bool {
	key, _, _ := discriminant(subject)
	return matches(subject, pattern, key)
}

func matches(subject any, pattern map[string]any, skip string) bool {
	for k, want := range pattern {
		if k == skip {
			continue
		}
		got, ok := lookup(subject, k)
		if !ok {
			return false
		}
		if sub, isMap := want.(map[string]any); isMap {
			if !matches(got, sub, "") {
				return false
			}
			continue
		}
		if !schema.Equal(got, want) {
			return false
		}
	}
	return true
}

// lookup reads key from a *goadt.Value, a string-keyed map or a struct.
func lookup(subject any, key string) (any, bool) {
	if isNil(subject) {
		return nil, false
	}
	switch s := subject.(type) {
	case interface{ Lookup(string) (any, bool) }:
		return s.Lookup(key)
	case map[string]any:
		v, ok := s[key]
		return v, ok
	}
	rv := reflect.ValueOf(subject)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		return structField(rv, key)
	}
	return nil, false
}

func structField(rv reflect.Value, key string) (any, bool) {
	t := rv.Type()
	byName, byFold := -1, -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" {
			if name == key && name != "-" {
				return rv.Field(i).Interface(), true
			}
			continue
		}
		switch {
		case f.Name == key && byName < 0:
			byName = i
		case strings.EqualFold(f.Name, key) && byFold < 0:
			byFold = i
		}
	}
	if byName < 0 {
		byName = byFold
	}
	if byName >= 0 {
		return rv.Field(byName).Interface(), true
	}
	return nil, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
