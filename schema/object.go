package schema

import (
	"context"
	"maps"
	"sort"
	"strings"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/i18n"
	js "github.com/reoring/goadt/jsonschema"
)

// Fields maps field names to their specifications.
type Fields map[string]Field

// Shape returns a copy of f.
func (f Fields) Shape() Fields { return maps.Clone(f) }

// Shaper describes the fields of an object: Fields itself or a built *Object.
type Shaper interface {
	Shape() Fields
}

// Object is a strict object schema over map[string]any values, optionally
// carrying a literal tag field. Objects are immutable; projections such as
// WithTag and Omit return new objects.
type Object struct {
	fields   Fields
	keys     []string
	tagField string
	tag      string
}

var _ Schema = (*Object)(nil)

// NewObject builds an untagged object schema.
func NewObject(fields Fields) *Object {
	o := &Object{fields: maps.Clone(fields)}
	if o.fields == nil {
		o.fields = Fields{}
	}
	o.sortKeys()
	return o
}

// Tagged builds an object schema whose tagField must hold the literal tag.
func Tagged(fields Fields, tagField, tag string) *Object {
	return NewObject(fields).WithTag(tagField, tag)
}

func (o *Object) sortKeys() {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o.keys = keys
}

// WithTag returns a copy whose tagField is the literal tag. A previous tag
// field is replaced.
func (o *Object) WithTag(tagField, tag string) *Object {
	fields := maps.Clone(o.fields)
	if o.tagField != "" {
		delete(fields, o.tagField)
	}
	fields[tagField] = Literal(tag)
	out := &Object{fields: fields, tagField: tagField, tag: tag}
	out.sortKeys()
	return out
}

// Omit returns a copy without the named fields. Omitting the tag field
// drops the tag.
func (o *Object) Omit(names ...string) *Object {
	fields := maps.Clone(o.fields)
	out := &Object{fields: fields, tagField: o.tagField, tag: o.tag}
	for _, n := range names {
		delete(fields, n)
		if n == o.tagField {
			out.tagField, out.tag = "", ""
		}
	}
	out.sortKeys()
	return out
}

// Tag returns the literal tag and the name of the field holding it.
func (o *Object) Tag() (tagField, tag string) { return o.tagField, o.tag }

// Keys returns all field names in ascending order, including the tag field.
func (o *Object) Keys() []string { return append([]string(nil), o.keys...) }

// Field returns the named field specification.
func (o *Object) Field(name string) (Field, bool) {
	f, ok := o.fields[name]
	return f, ok
}

// Shape returns a copy of the field specifications.
func (o *Object) Shape() Fields { return maps.Clone(o.fields) }

// IsEmpty reports whether the object declares no field besides its tag.
func (o *Object) IsEmpty() bool {
	for _, k := range o.keys {
		if k != o.tagField {
			return false
		}
	}
	return true
}

// Required returns, in ascending order, the fields that input must provide:
// neither optional nor defaulted, and not the tag.
func (o *Object) Required() []string {
	var out []string
	for _, k := range o.keys {
		f := o.fields[k]
		if k == o.tagField || f.IsOptional() || f.HasDefault() {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Defaults returns a provider per field that declares a default.
func (o *Object) Defaults() map[string]DefaultProvider {
	out := map[string]DefaultProvider{}
	for _, k := range o.keys {
		f := o.fields[k]
		if !f.HasDefault() {
			continue
		}
		out[k] = func(ctx context.Context) (any, error) {
			v, _, err := f.DefaultValue(ctx)
			return v, err
		}
	}
	return out
}

// Parse validates v and returns the parsed fields. Missing fields take their
// default, optional fields may be absent, and goadt.Undefined counts as
// absent. Unknown keys are rejected. Issues are collected across all fields
// unless goadt.WithFailFast is set on ctx.
func (o *Object) Parse(ctx context.Context, v any) (map[string]any, error) {
	src, ok := asMap(v)
	if !ok {
		return nil, typeIssue("object", v)
	}
	failFast := goadt.IsFailFast(ctx)
	out := make(map[string]any, len(o.keys))
	var iss goadt.Issues
	for _, k := range o.keys {
		f := o.fields[k]
		val, present := src[k]
		if present && goadt.IsUndefined(val) {
			present = false
		}
		if present {
			parsed, err := f.Parse(ctx, val)
			if err != nil {
				iss = goadt.AppendIssues(iss, issuesFromErr(err).Rebase(pointer(k))...)
				if failFast {
					return nil, iss
				}
				continue
			}
			out[k] = parsed
			continue
		}
		if dv, has, err := f.DefaultValue(ctx); has {
			if err != nil {
				iss = goadt.AppendIssues(iss, issuesFromErr(err).Rebase(pointer(k))...)
				if failFast {
					return nil, iss
				}
				continue
			}
			out[k] = dv
			continue
		}
		if f.IsOptional() {
			continue
		}
		iss = goadt.AppendIssues(iss, goadt.Issue{
			Path:    pointer(k),
			Code:    goadt.CodeRequired,
			Message: i18n.T(goadt.CodeRequired, nil),
			Hint:    "required property missing",
		})
		if failFast {
			return nil, iss
		}
	}
	var unknown []string
	for k, val := range src {
		if _, known := o.fields[k]; !known && !goadt.IsUndefined(val) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		iss = goadt.AppendIssues(iss, goadt.Issue{
			Path:    pointer(k),
			Code:    goadt.CodeUnknownKey,
			Message: i18n.T(goadt.CodeUnknownKey, nil),
		})
		if failFast {
			break
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// Validate reports whether v parses, discarding the result.
func (o *Object) Validate(ctx context.Context, v any) error {
	_, err := o.Parse(ctx, v)
	return err
}

// JSONSchema projects the object. The tag becomes the title.
func (o *Object) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{
		Type:                 "object",
		Title:                o.tag,
		Properties:           make(map[string]*js.Schema, len(o.keys)),
		Required:             []string{},
		AdditionalProperties: false,
	}
	for _, k := range o.keys {
		f := o.fields[k]
		fs, err := f.JSONSchema()
		if err != nil {
			return nil, err
		}
		s.Properties[k] = fs
		if k == o.tagField || (!f.IsOptional() && !f.HasDefault()) {
			s.Required = append(s.Required, k)
		}
	}
	return s, nil
}

// asMap accepts map[string]any and anything exposing a Map view, such as
// *goadt.Value.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case interface{ Map() map[string]any }:
		out := m.Map()
		return out, out != nil
	}
	return nil, false
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func pointer(key string) string { return "/" + pointerEscaper.Replace(key) }
