// Package discovery defines the boundary through which test suites are
// declared to the engine. A Driver yields an ordered sequence of scope and
// leaf declarations; the registry walks that sequence exactly once per
// suite instance and the yielded order becomes the sibling registration
// order.
package discovery

import "github.com/testforge/spectree/types"

// Kind distinguishes scope declarations from leaf declarations.
type Kind string

const (
	KindScope Kind = "scope"
	KindLeaf  Kind = "leaf"
)

// Decl is a single declaration yielded by a Driver.
type Decl struct {
	Kind     Kind
	Name     string         // the scope's or leaf's own name, not the full name
	Tags     []string       // raw tag names; leaves only
	Fn       types.TestFunc // leaf body; leaves only
	Location string         // opaque source location; leaves only
	Children Driver         // nested declarations; scopes only
}

// Driver supplies the ordered declarations of one scope. The engine calls
// Declarations once per suite instance lifetime; drivers need not be safe
// for concurrent use.
type Driver interface {
	Declarations() ([]Decl, error)
}

// Decls wraps a fixed declaration list as a Driver.
func Decls(decls ...Decl) Driver {
	return sliceDriver(decls)
}

type sliceDriver []Decl

func (d sliceDriver) Declarations() ([]Decl, error) {
	return d, nil
}
