// Package data composes records into algebraic data types: tagged unions
// with a union schema, per-member access and ADT-level codecs.
//
//	shape := data.New("Shape").
//		Record("Circle", func(r *record.Initial) record.Stage {
//			return r.Schema(schema.Fields{"radius": schema.Number()})
//		}).
//		Use(square).
//		MustDone()
//
//	c := shape.MustMember("Circle").MustCreate(ctx, goadt.Fields{"radius": 1})
//	text, err := shape.To(record.JSON).Encode(c)
//	v, ok := shape.From(record.JSON).Decode(ctx, text)
//
// ADT-level From and To exist for json and for every codec that all members
// define. From tries members in declaration order and returns the first hit.
package data
