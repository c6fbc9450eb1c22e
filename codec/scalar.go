package codec

import (
	"fmt"
	"time"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/record"
)

// Identity maps the text verbatim to and from the string field named field.
// It suits single-field records such as identifiers or URLs.
func Identity(field string) record.CodecDef {
	return record.CodecDef{
		To: func(v *goadt.Value) (string, error) {
			s, ok := v.Get(field).(string)
			if !ok {
				return "", fmt.Errorf("codec: field %q of %s is not a string", field, v.Tag())
			}
			return s, nil
		},
		From: func(text string, _ record.CodecContext) (goadt.Fields, bool) {
			return goadt.Fields{field: text}, true
		},
	}
}

// RFC3339 maps an RFC3339 timestamp to and from the time field named field.
// Encoding normalizes to UTC.
func RFC3339(field string) record.CodecDef {
	return record.CodecDef{
		To: func(v *goadt.Value) (string, error) {
			t, ok := v.Get(field).(time.Time)
			if !ok {
				return "", fmt.Errorf("codec: field %q of %s is not a time.Time", field, v.Tag())
			}
			return formatRFC3339Canonical(t), nil
		},
		From: func(text string, _ record.CodecContext) (goadt.Fields, bool) {
			t, err := parseRFC3339(text)
			if err != nil {
				return nil, false
			}
			return goadt.Fields{field: t}, true
		},
	}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
