package goadt

import "github.com/google/uuid"

// Symbol is the identity token minted once per record definition. Two
// symbols are equal only when they are the same pointer, so separately defined
// records never share identity even when name and fields are identical.
type Symbol struct {
	name string
	id   uuid.UUID
}

// NewSymbol mints a fresh identity token for the named record.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name, id: uuid.New()}
}

// Name returns the record name the symbol was minted for.
func (s *Symbol) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// ID returns the random id carried by the symbol. It is informational only;
// identity is decided by pointer equality.
func (s *Symbol) ID() uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	return s.id
}

func (s *Symbol) String() string {
	if s == nil {
		return "Symbol(<nil>)"
	}
	return "Symbol(" + s.name + "#" + s.id.String() + ")"
}
