package data

import (
	"context"
	"errors"
	"maps"
	"slices"

	goadt "github.com/reoring/goadt"
	js "github.com/reoring/goadt/jsonschema"
	"github.com/reoring/goadt/record"
	"github.com/reoring/goadt/schema"
)

// Controller is a built ADT. It is immutable and safe for concurrent use.
type Controller struct {
	name       string
	members    []*record.Controller
	byName     map[string]*record.Controller
	schema     schema.Schema
	codecs     []string
	extensions map[string]any
}

func newController(name string, members []*record.Controller, ext map[string]any) *Controller {
	c := &Controller{
		name:       name,
		members:    members,
		byName:     make(map[string]*record.Controller, len(members)),
		extensions: maps.Clone(ext),
	}
	objs := make([]*schema.Object, 0, len(members))
	for _, m := range members {
		c.byName[m.Name()] = m
		objs = append(objs, m.Schema())
	}
	if len(objs) == 1 {
		c.schema = objs[0]
	} else {
		c.schema = schema.NewUnion(goadt.TagField, objs...)
	}
	// A codec is common when every member defines it; order follows the
	// first member.
	for _, codec := range members[0].Codecs() {
		if !slices.ContainsFunc(members, func(m *record.Controller) bool { return !m.HasCodec(codec) }) {
			c.codecs = append(c.codecs, codec)
		}
	}
	return c
}

func (c *Controller) Name() string { return c.name }

// Schema returns the member schema when there is one member, otherwise a
// *schema.Union discriminated by the tag field.
func (c *Controller) Schema() schema.Schema { return c.schema }

// JSONSchema projects Schema.
func (c *Controller) JSONSchema() (*js.Schema, error) { return c.schema.JSONSchema() }

// Member returns the controller of the member named name.
func (c *Controller) Member(name string) (*record.Controller, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// MustMember is like Member but panics when name is not a member.
func (c *Controller) MustMember(name string) *record.Controller {
	m, ok := c.byName[name]
	if !ok {
		panic(goadt.NewUserMistake(goadt.ErrUnknownTag, "ADT %s has no record %s", goadt.Code(c.name), goadt.Code(name)))
	}
	return m
}

// Members returns the member controllers in declaration order.
func (c *Controller) Members() []*record.Controller { return slices.Clone(c.members) }

// Tags returns the member names in declaration order.
func (c *Controller) Tags() []string {
	out := make([]string, len(c.members))
	for i, m := range c.members {
		out[i] = m.Name()
	}
	return out
}

// Codecs returns the codecs shared by all members, json excluded.
func (c *Controller) Codecs() []string { return slices.Clone(c.codecs) }

// HasCodec reports whether the ADT-level From and To accept codec.
func (c *Controller) HasCodec(codec string) bool {
	return codec == record.JSON || slices.Contains(c.codecs, codec)
}

// Ext returns the ADT extension stored under key, or nil.
func (c *Controller) Ext(key string) any { return c.extensions[key] }

// Extensions returns a copy of the ADT extension bag.
func (c *Controller) Extensions() map[string]any { return maps.Clone(c.extensions) }

// IsAny reports whether x is a value of any member. It never panics.
func (c *Controller) IsAny(x any) bool {
	for _, m := range c.members {
		if m.IsAny(x) {
			return true
		}
	}
	return false
}

// From returns the ADT-level decoder of codec. Members are tried in
// declaration order and the first decoded value wins.
func (c *Controller) From(codec string) record.Decoder {
	if !c.HasCodec(codec) {
		return record.MissingDecoder(c.name, codec)
	}
	return record.NewDecoder("", func(ctx context.Context, text string) (*goadt.Value, error) {
		var causes []error
		for _, m := range c.members {
			v, err := m.From(codec).DecodeOrError(ctx, text)
			if err == nil {
				return v, nil
			}
			var de *goadt.DecodeError
			if errors.As(err, &de) && de.Cause != nil {
				causes = append(causes, de.Cause)
			}
		}
		return nil, errors.Join(causes...)
	})
}

// To returns the ADT-level encoder of codec. It delegates to the member
// whose name equals the value's tag.
func (c *Controller) To(codec string) record.Encoder {
	if !c.HasCodec(codec) {
		return record.MissingEncoder(c.name, codec)
	}
	return record.NewEncoder(func(v *goadt.Value) (string, error) {
		m, ok := c.byName[v.Tag()]
		if !ok {
			return "", &goadt.EncodeError{Value: v}
		}
		return m.To(codec).Encode(v)
	})
}
