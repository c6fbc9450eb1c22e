package schema

import (
	"context"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/i18n"
	js "github.com/reoring/goadt/jsonschema"
)

// Union is a discriminated union of tagged objects. The discriminator value
// selects the member whose tag equals it.
type Union struct {
	discriminator string
	members       []*Object
	byTag         map[string]*Object
}

var _ Schema = (*Union)(nil)

// NewUnion builds a union over members keyed by their tags. Members are kept
// in the given order; a later member with an already used tag is ignored.
func NewUnion(discriminator string, members ...*Object) *Union {
	u := &Union{discriminator: discriminator, byTag: make(map[string]*Object, len(members))}
	for _, m := range members {
		if _, dup := u.byTag[m.tag]; dup {
			continue
		}
		u.byTag[m.tag] = m
		u.members = append(u.members, m)
	}
	return u
}

// Discriminator returns the name of the selecting field.
func (u *Union) Discriminator() string { return u.discriminator }

// Members returns the member objects in declaration order.
func (u *Union) Members() []*Object { return append([]*Object(nil), u.members...) }

// Member returns the member tagged tag.
func (u *Union) Member(tag string) (*Object, bool) {
	m, ok := u.byTag[tag]
	return m, ok
}

func (u *Union) Parse(ctx context.Context, v any) (map[string]any, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, typeIssue("object", v)
	}
	tag, _ := m[u.discriminator].(string)
	if tag == "" {
		return nil, goadt.Issues{{Path: pointer(u.discriminator), Code: goadt.CodeDiscriminatorMissing, Message: i18n.T(goadt.CodeDiscriminatorMissing, nil), Hint: "discriminator missing"}}
	}
	s, ok := u.byTag[tag]
	if !ok {
		return nil, goadt.Issues{{Path: pointer(u.discriminator), Code: goadt.CodeDiscriminatorUnknown, Message: i18n.T(goadt.CodeDiscriminatorUnknown, nil), Hint: "unknown variant: '" + tag + "'"}}
	}
	return s.Parse(ctx, m)
}

func (u *Union) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Discriminator: &js.Discriminator{PropertyName: u.discriminator}}
	for _, m := range u.members {
		s, err := m.JSONSchema()
		if err != nil {
			return nil, err
		}
		out.OneOf = append(out.OneOf, s)
	}
	return out, nil
}
