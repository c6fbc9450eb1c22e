package schema

import (
	"context"

	js "github.com/reoring/goadt/jsonschema"
)

// Schema validates structural values into parsed field maps. *Object and
// *Union implement it.
type Schema interface {
	Parse(ctx context.Context, v any) (map[string]any, error)
	JSONSchema() (*js.Schema, error)
}
