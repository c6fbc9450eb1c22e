package data

import (
	"maps"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/record"
	"github.com/reoring/goadt/schema"
)

// Builder accumulates the members of an ADT. Like record builders it keeps
// the first mistake and reports it from Done.
type Builder struct {
	name       string
	extensions map[string]any
	members    []member
	seen       map[string]struct{}
	err        error
}

// member is either a built controller or an inline definition built at Done.
type member struct {
	name   string
	ctrl   *record.Controller
	define func(*record.Initial) record.Stage
}

// New starts an ADT named name.
func New(name string) *Builder {
	return &Builder{name: name, extensions: map[string]any{}, seen: map[string]struct{}{}}
}

func (b *Builder) fail(kind error, format string, args ...any) {
	if b.err == nil {
		b.err = goadt.NewUserMistake(kind, format, args...)
	}
}

func (b *Builder) add(m member) {
	if b.err != nil {
		return
	}
	if _, dup := b.seen[m.name]; dup {
		b.fail(goadt.ErrDuplicateRecord, "Record %s is already a member of ADT %s", goadt.Code(m.name), goadt.Code(b.name))
		return
	}
	b.seen[m.name] = struct{}{}
	b.members = append(b.members, m)
}

// Extend merges props into the ADT extension bag. Inline members see the
// bag as their base extensions.
func (b *Builder) Extend(props map[string]any) *Builder {
	if b.err == nil {
		maps.Copy(b.extensions, props)
	}
	return b
}

// Record adds an inline member. define receives a fresh record builder and
// returns the stage to complete; a nil define yields a field-less record.
func (b *Builder) Record(name string, define func(*record.Initial) record.Stage) *Builder {
	if define == nil {
		define = func(r *record.Initial) record.Stage { return r }
	}
	b.add(member{name: name, define: define})
	return b
}

// Use adds already built records as members. The controllers are kept as
// they are, so Member returns the very same controller.
func (b *Builder) Use(ctrls ...*record.Controller) *Builder {
	for _, c := range ctrls {
		if c == nil {
			b.fail(goadt.ErrUserMistake, "ADT %s was given a nil record controller", goadt.Code(b.name))
			return b
		}
		b.add(member{name: c.Name(), ctrl: c})
	}
	return b
}

// Done builds the inline members in declaration order and returns the ADT.
func (b *Builder) Done() (*Controller, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.members) == 0 {
		return nil, goadt.NewUserMistake(goadt.ErrNoRecords,
			"No records defined for ADT %s but %s was called. You can only call %s after your ADT has at least one record defined (via %s or %s)",
			goadt.Code(b.name), goadt.Code(".Done()"), goadt.Code(".Done()"), goadt.Code(".Record()"), goadt.Code(".Use()"))
	}
	ctrls := make([]*record.Controller, 0, len(b.members))
	for _, m := range b.members {
		if m.ctrl != nil {
			ctrls = append(ctrls, m.ctrl)
			continue
		}
		stage := m.define(record.New(m.name, record.WithExtensions(b.extensions)))
		if stage == nil {
			return nil, goadt.NewUserMistake(goadt.ErrUserMistake, "The definition of record %s in ADT %s returned no builder", goadt.Code(m.name), goadt.Code(b.name))
		}
		c, err := stage.Done()
		if err != nil {
			return nil, err
		}
		ctrls = append(ctrls, c)
	}
	return newController(b.name, ctrls, b.extensions), nil
}

// MustDone is like Done but panics on error.
func (b *Builder) MustDone() *Controller {
	c, err := b.Done()
	if err != nil {
		panic(err)
	}
	return c
}

// Variant is one member of an ADT declared with Of. A nil Fields declares a
// field-less record.
type Variant struct {
	Name   string
	Fields schema.Shaper
}

// Of is the shorthand for an ADT whose members are plain records. Members
// keep the order of variants.
func Of(name string, variants ...Variant) (*Controller, error) {
	b := New(name)
	for _, v := range variants {
		if v.Fields == nil {
			b.Record(v.Name, nil)
			continue
		}
		b.Record(v.Name, func(r *record.Initial) record.Stage { return r.Schema(v.Fields) })
	}
	return b.Done()
}

// MustOf is like Of but panics on error.
func MustOf(name string, variants ...Variant) *Controller {
	c, err := Of(name, variants...)
	if err != nil {
		panic(err)
	}
	return c
}
