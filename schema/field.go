package schema

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/i18n"
	js "github.com/reoring/goadt/jsonschema"
)

// Field is the specification of one object field. Constructors like String
// or Number create it; modifiers return an adjusted copy so a Field value can
// be shared between objects.
type Field struct {
	kind       string
	parse      func(context.Context, any) (any, error)
	def        func() any
	jsonSchema func() (*js.Schema, error)
	optional   bool
	nullable   bool
}

// DefaultProvider produces the default value of a field.
type DefaultProvider func(ctx context.Context) (any, error)

// Kind returns the base type name of the field ("string", "number", ...).
func (f Field) Kind() string { return f.kind }

// IsOptional reports whether input may omit the field.
func (f Field) IsOptional() bool { return f.optional }

// HasDefault reports whether a default value is applied when the field is missing.
func (f Field) HasDefault() bool { return f.def != nil }

// DefaultValue produces the field default parsed through the field, so
// transforms and constraints apply to it. ok is false when no default is set.
func (f Field) DefaultValue(ctx context.Context) (v any, ok bool, err error) {
	if f.def == nil {
		return nil, false, nil
	}
	v, err = f.Parse(ctx, f.def())
	return v, true, err
}

// Parse validates v against the field and returns the parsed value.
func (f Field) Parse(ctx context.Context, v any) (any, error) {
	if v == nil && f.nullable {
		return nil, nil
	}
	if f.parse == nil {
		return v, nil
	}
	return f.parse(ctx, v)
}

// JSONSchema projects the field into JSON Schema.
func (f Field) JSONSchema() (*js.Schema, error) {
	if f.jsonSchema == nil {
		return &js.Schema{}, nil
	}
	return f.jsonSchema()
}

// Optional lets input omit the field.
func (f Field) Optional() Field {
	f.optional = true
	return f
}

// Nullable accepts null (nil) in addition to the field's type.
func (f Field) Nullable() Field {
	f.nullable = true
	return f
}

// Default sets a static default used when input omits the field.
func (f Field) Default(v any) Field {
	return f.DefaultFunc(func() any { return v }).withJSONDefault(v)
}

// DefaultFunc sets a dynamic default evaluated every time the field is missing.
func (f Field) DefaultFunc(fn func() any) Field {
	f.def = fn
	return f
}

func (f Field) withJSONDefault(v any) Field {
	prev := f.jsonSchema
	f.jsonSchema = func() (*js.Schema, error) {
		s, err := callJSON(prev)
		if err != nil {
			return nil, err
		}
		s.Default = v
		return s, nil
	}
	return f
}

// Min sets an inclusive numeric minimum. Non-numeric values are left to the
// type check.
func (f Field) Min(n float64) Field {
	return f.check(func(v any) *goadt.Issue {
		if x, ok := toFloat(v); ok && x < n {
			return &goadt.Issue{Code: goadt.CodeTooSmall, Params: map[string]any{"min": n, "got": x}}
		}
		return nil
	}, func(s *js.Schema) { s.Minimum = &n })
}

// Max sets an inclusive numeric maximum.
func (f Field) Max(n float64) Field {
	return f.check(func(v any) *goadt.Issue {
		if x, ok := toFloat(v); ok && x > n {
			return &goadt.Issue{Code: goadt.CodeTooBig, Params: map[string]any{"max": n, "got": x}}
		}
		return nil
	}, func(s *js.Schema) { s.Maximum = &n })
}

// Pattern requires string values to match re.
func (f Field) Pattern(re *regexp.Regexp) Field {
	return f.check(func(v any) *goadt.Issue {
		if s, ok := v.(string); ok && !re.MatchString(s) {
			return &goadt.Issue{Code: goadt.CodePattern, Hint: re.String(), Params: map[string]any{"pattern": re.String()}}
		}
		return nil
	}, func(s *js.Schema) { s.Pattern = re.String() })
}

// NonEmpty rejects empty strings and empty arrays.
func (f Field) NonEmpty() Field {
	return f.check(func(v any) *goadt.Issue {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
			if rv.Len() == 0 {
				return &goadt.Issue{Code: goadt.CodeTooShort, Params: map[string]any{"min": 1}}
			}
		}
		return nil
	}, func(s *js.Schema) {
		one := 1
		s.MinLength = &one
	})
}

// Refine adds a custom rule run after the type check. A returned error is
// reported as a "custom" issue carrying the rule name.
func (f Field) Refine(name string, fn func(any) error) Field {
	return f.check(func(v any) *goadt.Issue {
		if err := fn(v); err != nil {
			return &goadt.Issue{Code: goadt.CodeCustom, Message: err.Error(), Rule: name, Cause: err}
		}
		return nil
	}, nil)
}

// Transform maps the parsed value. It runs on every parse, including the
// re-validation done by record updates, so fn should be idempotent.
func (f Field) Transform(fn func(any) any) Field {
	prev := f.parse
	f.parse = func(ctx context.Context, v any) (any, error) {
		out, err := callParse(ctx, prev, v)
		if err != nil {
			return nil, err
		}
		return fn(out), nil
	}
	return f
}

// check chains a post-parse rule and an optional JSON Schema annotation.
func (f Field) check(rule func(any) *goadt.Issue, annotate func(*js.Schema)) Field {
	prev := f.parse
	f.parse = func(ctx context.Context, v any) (any, error) {
		out, err := callParse(ctx, prev, v)
		if err != nil {
			return nil, err
		}
		if it := rule(out); it != nil {
			it.Path = "/"
			if it.Message == "" {
				it.Message = i18n.T(it.Code, nil)
			}
			return nil, goadt.Issues{*it}
		}
		return out, nil
	}
	if annotate != nil {
		prevJSON := f.jsonSchema
		f.jsonSchema = func() (*js.Schema, error) {
			s, err := callJSON(prevJSON)
			if err != nil {
				return nil, err
			}
			annotate(s)
			return s, nil
		}
	}
	return f
}

func callParse(ctx context.Context, fn func(context.Context, any) (any, error), v any) (any, error) {
	if fn == nil {
		return v, nil
	}
	return fn(ctx, v)
}

func callJSON(fn func() (*js.Schema, error)) (*js.Schema, error) {
	if fn == nil {
		return &js.Schema{}, nil
	}
	s, err := fn()
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &js.Schema{}
	}
	return s, nil
}

func typeIssue(expected string, got any) goadt.Issues {
	return goadt.Issues{{
		Path:    "/",
		Code:    goadt.CodeInvalidType,
		Message: i18n.T(goadt.CodeInvalidType, map[string]string{"expected": expected}),
		Hint:    "expected " + expected,
		Params:  map[string]any{"expected": expected, "got": fmt.Sprintf("%T", got)},
	}}
}
