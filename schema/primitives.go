package schema

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/i18n"
	js "github.com/reoring/goadt/jsonschema"
)

// String accepts Go strings.
func String() Field {
	return Field{
		kind: "string",
		parse: func(_ context.Context, v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, typeIssue("string", v)
			}
			return s, nil
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string"}, nil },
	}
}

// Number accepts any Go numeric kind and json.Number, normalized to float64.
func Number() Field {
	return Field{
		kind: "number",
		parse: func(_ context.Context, v any) (any, error) {
			f, ok := toFloat(v)
			if !ok {
				return nil, typeIssue("number", v)
			}
			return f, nil
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "number"}, nil },
	}
}

// Int accepts integral numbers, normalized to int64. Integer kinds convert
// exactly; floats with a fractional part are rejected with CodeNotInteger and
// values outside the int64 range with CodeTooBig or CodeTooSmall.
func Int() Field {
	return Field{
		kind: "integer",
		parse: func(_ context.Context, v any) (any, error) {
			i, st := toInt(v)
			switch st {
			case intOK:
				return i, nil
			case intNaN:
				return nil, typeIssue("integer", v)
			case intFraction:
				return nil, intIssue(goadt.CodeNotInteger, v)
			case intOverflow:
				return nil, intIssue(goadt.CodeTooBig, v)
			default:
				return nil, intIssue(goadt.CodeTooSmall, v)
			}
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil },
	}
}

func intIssue(code string, got any) goadt.Issues {
	return goadt.Issues{{
		Path:    "/",
		Code:    code,
		Message: i18n.T(code, nil),
		Params:  map[string]any{"got": got},
	}}
}

// Bool accepts Go booleans.
func Bool() Field {
	return Field{
		kind: "boolean",
		parse: func(_ context.Context, v any) (any, error) {
			b, ok := v.(bool)
			if !ok {
				return nil, typeIssue("boolean", v)
			}
			return b, nil
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil },
	}
}

// Literal accepts exactly lit. Numbers compare by value.
func Literal(lit any) Field {
	return Field{
		kind: "literal",
		parse: func(_ context.Context, v any) (any, error) {
			if !Equal(v, lit) {
				return nil, goadt.Issues{{
					Path:    "/",
					Code:    goadt.CodeInvalidLiteral,
					Message: i18n.T(goadt.CodeInvalidLiteral, map[string]string{"expected": fmt.Sprint(lit)}),
					Params:  map[string]any{"expected": lit, "got": v},
				}}
			}
			return lit, nil
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Const: lit}, nil },
	}
}

// Enum accepts one of the given strings.
func Enum(values ...string) Field {
	allowed := make(map[string]struct{}, len(values))
	enum := make([]any, 0, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
		enum = append(enum, v)
	}
	return Field{
		kind: "enum",
		parse: func(_ context.Context, v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, typeIssue("string", v)
			}
			if _, ok := allowed[s]; !ok {
				return nil, goadt.Issues{{
					Path:    "/",
					Code:    goadt.CodeInvalidEnum,
					Message: i18n.T(goadt.CodeInvalidEnum, nil),
					Params:  map[string]any{"allowed": values, "got": s},
				}}
			}
			return s, nil
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string", Enum: enum}, nil },
	}
}

// Any accepts every value unchanged.
func Any() Field {
	return Field{kind: "any"}
}

// Time accepts time.Time or an RFC3339 string and yields a UTC time.Time.
func Time() Field {
	return Field{
		kind: "time",
		parse: func(_ context.Context, v any) (any, error) {
			switch t := v.(type) {
			case time.Time:
				return t.UTC().Round(0), nil
			case string:
				parsed, err := parseRFC3339(t)
				if err != nil {
					return nil, goadt.Issues{{
						Path:    "/",
						Code:    goadt.CodeInvalidFormat,
						Message: i18n.T(goadt.CodeInvalidFormat, map[string]string{"format": "date-time"}),
						Hint:    "RFC3339",
						Cause:   err,
					}}
				}
				return parsed.UTC(), nil
			default:
				return nil, typeIssue("date-time", v)
			}
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string", Format: "date-time"}, nil },
	}
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// Array accepts slices whose elements all satisfy elem. The result is []any.
func Array(elem Field) Field {
	return Field{
		kind: "array",
		parse: func(ctx context.Context, v any) (any, error) {
			rv := reflect.ValueOf(v)
			if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
				return nil, typeIssue("array", v)
			}
			out := make([]any, rv.Len())
			var iss goadt.Issues
			for i := range out {
				pv, err := elem.Parse(ctx, rv.Index(i).Interface())
				if err != nil {
					iss = goadt.AppendIssues(iss, issuesFromErr(err).Rebase("/"+strconv.Itoa(i))...)
					if goadt.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				out[i] = pv
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		jsonSchema: func() (*js.Schema, error) {
			items, err := elem.JSONSchema()
			if err != nil {
				return nil, err
			}
			return &js.Schema{Type: "array", Items: items}, nil
		},
	}
}

// Nested accepts an object matching fields. The result is map[string]any.
func Nested(fields Fields) Field {
	obj := NewObject(fields)
	return Field{
		kind: "object",
		parse: func(ctx context.Context, v any) (any, error) {
			return obj.Parse(ctx, v)
		},
		jsonSchema: obj.JSONSchema,
	}
}

type intStatus int

const (
	intOK intStatus = iota
	intNaN
	intFraction
	intOverflow
	intUnderflow
)

// toInt narrows Go numeric kinds and json.Number to int64. Integers never
// pass through float64.
func toInt(v any) (int64, intStatus) {
	switch n := v.(type) {
	case int64:
		return n, intOK
	case int:
		return int64(n), intOK
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, intOK
		}
		f, err := n.Float64()
		if err != nil {
			if strings.HasPrefix(string(n), "-") {
				return 0, intUnderflow
			}
			return 0, intOverflow
		}
		return floatToInt(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), intOK
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, intOverflow
		}
		return int64(u), intOK
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float())
	}
	return 0, intNaN
}

// 2^63 is exactly representable; int64 covers [-2^63, 2^63).
const twoPow63 = float64(1 << 63)

func floatToInt(f float64) (int64, intStatus) {
	switch {
	case math.IsNaN(f) || (f != math.Trunc(f) && !math.IsInf(f, 0)):
		return 0, intFraction
	case f >= twoPow63:
		return 0, intOverflow
	case f < -twoPow63:
		return 0, intUnderflow
	}
	return int64(f), intOK
}

// toFloat widens Go numeric kinds and json.Number to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Equal compares two values structurally. Numbers of different Go kinds
// compare by value; maps and slices compare element-wise.
func Equal(a, b any) bool {
	if ia, st := toInt(a); st == intOK {
		if ib, st := toInt(b); st == intOK {
			return ia == ib
		}
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, va := range x {
			vb, ok := y[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}

func issuesFromErr(err error) goadt.Issues {
	if iss, ok := goadt.AsIssues(err); ok {
		return iss
	}
	return goadt.Issues{{Path: "/", Code: goadt.CodeParseError, Message: err.Error(), Cause: err}}
}
