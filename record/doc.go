// Package record defines records: named product types with validated fields,
// an identity token, and pluggable string codecs.
//
// A record is built in stages; each stage type only offers the calls valid
// at that point:
//
//	user := record.New("User").
//		Schema(schema.Fields{
//			"name": schema.String(),
//			"role": schema.Enum("admin", "user"),
//		}).
//		Defaults(func(goadt.Fields) goadt.Fields { return goadt.Fields{"role": "user"} }).
//		MustDone()
//
//	u, err := user.Create(ctx, goadt.Fields{"name": "ann"})
//	text, err := user.To(record.JSON).Encode(u)
//	back, ok := user.From(record.JSON).Decode(ctx, text)
package record
