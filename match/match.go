package match

import (
	"strings"

	goadt "github.com/reoring/goadt"
)

// TagSet is the closed set of tags a match must cover. record.Controller
// and data.Controller implement it.
type TagSet interface {
	Tags() []string
}

type tagList []string

func (t tagList) Tags() []string { return append([]string(nil), t...) }

// Tags builds an ad hoc TagSet.
func Tags(tags ...string) TagSet { return tagList(tags) }

type matcher[R, S any] struct {
	tag     string
	pattern goadt.Fields // nil for tag matchers
	handler func(S) R
}

// session is the state of one match invocation. Registration mistakes are
// kept and reported when the match runs.
type session[R, S any] struct {
	tags       []string
	open       bool
	known      map[string]struct{}
	subject    S
	tag        string
	tagged     bool
	matchers   []matcher[R, S]
	tagMatched map[string]struct{}
	err        error
}

func newSession[R, S any](tags TagSet, subject S, tag string, tagged bool) *session[R, S] {
	s := &session[R, S]{
		subject:    subject,
		tag:        tag,
		tagged:     tagged,
		known:      map[string]struct{}{},
		tagMatched: map[string]struct{}{},
	}
	if tags == nil {
		s.open = true
	} else {
		s.tags = tags.Tags()
	}
	for _, t := range s.tags {
		s.known[t] = struct{}{}
	}
	return s
}

func (s *session[R, S]) fail(kind error, format string, args ...any) {
	if s.err == nil {
		s.err = goadt.NewUserMistake(kind, format, args...)
	}
}

func (s *session[R, S]) add(m matcher[R, S]) {
	if s.err != nil {
		return
	}
	if _, ok := s.known[m.tag]; !ok && !s.open {
		s.fail(goadt.ErrUnknownTag, "%s is not one of the tags %s", goadt.Code(m.tag), codeList(s.tags))
		return
	}
	if _, done := s.tagMatched[m.tag]; done {
		if m.pattern == nil {
			s.fail(goadt.ErrDuplicateTagMatcher, "%s has already been matched on", goadt.Code(m.tag))
			return
		}
		s.fail(goadt.ErrUnreachableDataMatcher,
			"Cannot define this data matcher:\n%v\nfor %s because it will never match because it comes after matching on %s generally",
			m.pattern, goadt.Code(m.tag), goadt.Code(m.tag))
		return
	}
	s.matchers = append(s.matchers, m)
	if m.pattern == nil {
		s.tagMatched[m.tag] = struct{}{}
	}
}

func (s *session[R, S]) missing() []string {
	var out []string
	for _, t := range s.tags {
		if _, ok := s.tagMatched[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// run invokes the first matcher whose tag equals the subject's tag and whose
// pattern, if any, the subject satisfies.
func (s *session[R, S]) run() (R, bool) {
	var zero R
	if !s.tagged {
		return zero, false
	}
	for _, m := range s.matchers {
		if m.tag != s.tag {
			continue
		}
		if m.pattern != nil && !Matches(s.subject, m.pattern) {
			continue
		}
		return m.handler(s.subject), true
	}
	return zero, false
}

func (s *session[R, S]) done() (R, error) {
	var zero R
	if s.err != nil {
		return zero, s.err
	}
	if miss := s.missing(); len(miss) > 0 {
		return zero, goadt.NewUserMistake(goadt.ErrNotExhaustive,
			"The match is not exhaustive, no tag matcher for %s. Use Else to handle the rest", codeList(miss))
	}
	if r, ok := s.run(); ok {
		return r, nil
	}
	return zero, &goadt.MatchError{Subject: s.subject}
}

func (s *session[R, S]) orElse(fn func(S) R) (R, error) {
	var zero R
	if s.err != nil {
		return zero, s.err
	}
	if !s.open && len(s.missing()) == 0 {
		return zero, goadt.NewUserMistake(goadt.ErrExhausted, "Every tag is already matched, use Done instead of Else")
	}
	if r, ok := s.run(); ok {
		return r, nil
	}
	return fn(s.subject), nil
}

func codeList(tags []string) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = goadt.Code(t)
	}
	return strings.Join(parts, ", ")
}

// On starts a match on a tagged subject: a *goadt.Value, or any map or
// struct with a discriminant property (see Discriminants). tags is the set
// the match must cover before Done is allowed; a nil tags disables the tag
// checks.
func On[R, S any](tags TagSet, subject S) *Open[R, S] {
	tag, ok := Discriminant(subject)
	return &Open[R, S]{s: newSession[R](tags, subject, tag, ok)}
}

// Open is a match without matchers.
type Open[R, S any] struct{ s *session[R, S] }

// When handles every subject tagged tag.
func (o *Open[R, S]) When(tag string, handler func(S) R) *Chain[R, S] {
	o.s.add(matcher[R, S]{tag: tag, handler: handler})
	return &Chain[R, S]{s: o.s}
}

// WhenData handles subjects tagged tag that also match pattern.
func (o *Open[R, S]) WhenData(tag string, pattern goadt.Fields, handler func(S) R) *Chain[R, S] {
	o.s.add(dataMatcher(tag, pattern, handler))
	return &Chain[R, S]{s: o.s}
}

// Chain is a match with at least one matcher.
type Chain[R, S any] struct{ s *session[R, S] }

// When handles every subject tagged tag. A tag can be tag-matched once.
func (c *Chain[R, S]) When(tag string, handler func(S) R) *Chain[R, S] {
	c.s.add(matcher[R, S]{tag: tag, handler: handler})
	return c
}

// WhenData handles subjects tagged tag that also match pattern. It must come
// before the tag matcher of the same tag.
func (c *Chain[R, S]) WhenData(tag string, pattern goadt.Fields, handler func(S) R) *Chain[R, S] {
	c.s.add(dataMatcher(tag, pattern, handler))
	return c
}

// Done runs an exhaustive match. It fails with ErrNotExhaustive when a tag
// has no tag matcher.
func (c *Chain[R, S]) Done() (R, error) { return c.s.done() }

// MustDone is like Done but panics on error.
func (c *Chain[R, S]) MustDone() R {
	r, err := c.s.done()
	if err != nil {
		panic(err)
	}
	return r
}

// Else runs the match and returns v when no matcher applies.
func (c *Chain[R, S]) Else(v R) (R, error) {
	return c.s.orElse(func(S) R { return v })
}

// ElseFunc runs the match and returns fn(subject) when no matcher applies.
func (c *Chain[R, S]) ElseFunc(fn func(S) R) (R, error) { return c.s.orElse(fn) }

func dataMatcher[R, S any](tag string, pattern goadt.Fields, handler func(S) R) matcher[R, S] {
	if pattern == nil {
		pattern = goadt.Fields{}
	}
	return matcher[R, S]{tag: tag, pattern: pattern, handler: handler}
}

// OnTag starts a match on a bare tag.
func OnTag[R any](tags TagSet, tag string) *TagOpen[R] {
	return &TagOpen[R]{s: newSession[R](tags, tag, tag, true)}
}

// TagOpen is a bare-tag match without matchers.
type TagOpen[R any] struct{ s *session[R, string] }

func (o *TagOpen[R]) When(tag string, handler func() R) *TagChain[R] {
	o.s.add(tagMatcher(tag, handler))
	return &TagChain[R]{s: o.s}
}

// TagChain is a bare-tag match with at least one matcher.
type TagChain[R any] struct{ s *session[R, string] }

func (c *TagChain[R]) When(tag string, handler func() R) *TagChain[R] {
	c.s.add(tagMatcher(tag, handler))
	return c
}

func (c *TagChain[R]) Done() (R, error) { return c.s.done() }

func (c *TagChain[R]) MustDone() R {
	r, err := c.s.done()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *TagChain[R]) Else(v R) (R, error) {
	return c.s.orElse(func(string) R { return v })
}

// ElseFunc runs the match and returns fn(tag) when no matcher applies.
func (c *TagChain[R]) ElseFunc(fn func(tag string) R) (R, error) { return c.s.orElse(fn) }

func tagMatcher[R any](tag string, handler func() R) matcher[R, string] {
	return matcher[R, string]{tag: tag, handler: func(string) R { return handler() }}
}
