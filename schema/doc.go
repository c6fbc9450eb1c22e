// Package schema is the structural validator behind records and ADTs.
//
// Field constructors describe a single value and modifiers refine it:
//
//	fields := schema.Fields{
//		"name":  schema.String().NonEmpty(),
//		"age":   schema.Int().Min(0),
//		"email": schema.String().Pattern(emailRE).Optional(),
//		"role":  schema.Enum("admin", "user").Default("user"),
//	}
//	obj := schema.Tagged(fields, "_tag", "User")
//	out, err := obj.Parse(ctx, map[string]any{"_tag": "User", "name": "a", "age": 3})
//
// Objects are strict: unknown keys are reported as issues. Validation
// failures are returned as goadt.Issues with JSON Pointer paths.
package schema
