// Package goadt provides algebraic data types for Go: tagged records with
// runtime validation, identity-based predicates, pluggable string codecs and
// exhaustiveness-checked pattern matching.
//
// Design policy:
//   - Keep shared value and error types in the root package; put builders under
//     record/ and data/, the matcher under match/, the validator under schema/.
//   - Every build-time misuse is a *UserMistake; validation failures are Issues.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	circle := record.New("Circle").
//		Schema(schema.Fields{"radius": schema.Number()}).
//		MustDone()
//	square := record.MustOf("Square", schema.Fields{"size": schema.Number()})
//	shape := data.New("Shape").Use(circle, square).MustDone()
//
//	c := shape.MustMember("Circle").MustCreate(ctx, goadt.Fields{"radius": 10})
//	area, err := match.On[float64](shape, c).
//		When("Circle", func(v *goadt.Value) float64 { return v.Get("radius").(float64) }).
//		When("Square", func(v *goadt.Value) float64 { return v.Get("size").(float64) }).
//		Done()
package goadt
