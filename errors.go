package goadt

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes reported by schema validation.
const (
	CodeInvalidType          = "invalid_type"
	CodeInvalidLiteral       = "invalid_literal"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidFormat        = "invalid_format"
	CodeNotInteger           = "not_integer"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeTooShort             = "too_short"
	CodePattern              = "pattern"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeParseError           = "parse_error"
	CodeCustom               = "custom"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "got":0}).
	Params map[string]any
	// Rule optionally records the rule name that produced this issue.
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Rebase prefixes every issue path with base, which must be a JSON Pointer.
func (iss Issues) Rebase(base string) Issues {
	if base == "" || base == "/" {
		return iss
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		switch p := it.Path; {
		case p == "" || p == "/":
			it.Path = base
		case p[0] == '/':
			it.Path = base + p
		default:
			it.Path = base + "/" + p
		}
		out = append(out, it)
	}
	return out
}

// User mistakes: misuse of the builder or match API.
var (
	ErrUserMistake            = errors.New("goadt: user mistake")
	ErrNoRecords              = errors.New("goadt: no records defined")
	ErrDuplicateRecord        = errors.New("goadt: duplicate record")
	ErrCodecWithoutSchema     = errors.New("goadt: codec defined without schema")
	ErrDuplicateCodec         = errors.New("goadt: duplicate codec")
	ErrUnknownCodec           = errors.New("goadt: unknown codec")
	ErrDefaultsWithoutSchema  = errors.New("goadt: defaults defined without schema")
	ErrDuplicateDefaults      = errors.New("goadt: defaults already defined")
	ErrSchemaRedefined        = errors.New("goadt: schema already defined")
	ErrForeignValue           = errors.New("goadt: value belongs to another record")
	ErrDuplicateTagMatcher    = errors.New("goadt: tag already matched")
	ErrUnreachableDataMatcher = errors.New("goadt: unreachable data matcher")
	ErrUnknownTag             = errors.New("goadt: unknown tag")
	ErrNotExhaustive          = errors.New("goadt: match not exhaustive")
	ErrExhausted              = errors.New("goadt: match already exhaustive")
)

// Runtime failures that are not user mistakes.
var (
	ErrDecode  = errors.New("goadt: decode failed")
	ErrEncode  = errors.New("goadt: no encoder")
	ErrNoMatch = errors.New("goadt: no matcher matched")
)

// UserMistake reports programmer misuse detected while building records,
// ADTs or match chains. errors.Is matches both ErrUserMistake and Kind.
type UserMistake struct {
	Kind    error
	Message string
}

// NewUserMistake builds a UserMistake of the given kind. The message is
// normalized to end with a period.
func NewUserMistake(kind error, format string, args ...any) *UserMistake {
	return &UserMistake{Kind: kind, Message: ensurePeriod(fmt.Sprintf(format, args...))}
}

func (e *UserMistake) Error() string { return "goadt user mistake: " + e.Message }

func (e *UserMistake) Is(target error) bool { return target == ErrUserMistake }

func (e *UserMistake) Unwrap() error { return e.Kind }

// DecodeError is returned by the OrError decode forms when no value could be
// decoded. Cause holds validation Issues when the decoded fields were rejected.
type DecodeError struct {
	Input  string
	Target string // record name; empty for ADT-level decoding
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("Failed to decode value `%s` into any of the records for this ADT.", e.Input)
	}
	return fmt.Sprintf("Failed to decode value `%s` into a %s.", e.Input, e.Target)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Cause }

// EncodeError is returned when an ADT has no member for the value's tag.
type EncodeError struct {
	Value any
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("Failed to find an encoder for data: %q", fmt.Sprint(e.Value))
}

func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

// MatchError signals that an exhaustive match found no handler. It can only
// happen when the runtime data disagrees with the declared tag set.
type MatchError struct {
	Subject any
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("No matcher matched on the given data. This should be impossible. "+
		"Is the runtime data different from the declared tags? Please report a bug. The given data was:\n%v", e.Subject)
}

func (e *MatchError) Is(target error) bool { return target == ErrNoMatch }

func ensurePeriod(s string) string {
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}

// Code wraps s in backticks for use in error messages.
func Code(s string) string { return "`" + s + "`" }
