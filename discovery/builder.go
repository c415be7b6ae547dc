package discovery

import "github.com/testforge/spectree/types"

// Builder is a programmatic Driver. Declarations are recorded in call
// order, which the engine preserves as sibling registration order, so a
// suite reads top to bottom the way it was written.
//
//	b := discovery.NewBuilder()
//	b.Scope("A Stack", func(s *discovery.Builder) {
//		s.Scope("(when empty)", func(s *discovery.Builder) {
//			s.Test("must report size 0", sizeZero)
//		})
//		s.Test("must pop in LIFO order", lifo, "Slow")
//	})
type Builder struct {
	decls []Decl
}

// NewBuilder creates an empty suite builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Scope declares a nested scope. The define callback runs immediately
// against a child builder; whatever it declares becomes the scope's
// children.
func (b *Builder) Scope(name string, define func(*Builder)) {
	child := NewBuilder()
	if define != nil {
		define(child)
	}
	b.decls = append(b.decls, Decl{
		Kind:     KindScope,
		Name:     name,
		Children: child,
	})
}

// Test declares a leaf test with optional raw tags.
func (b *Builder) Test(name string, fn types.TestFunc, tags ...string) {
	b.decls = append(b.decls, Decl{
		Kind: KindLeaf,
		Name: name,
		Fn:   fn,
		Tags: tags,
	})
}

// Ignore declares a leaf test carrying the reserved ignore tag. The test
// is enumerated and reported as ignored; its body is never invoked.
func (b *Builder) Ignore(name string, fn types.TestFunc, tags ...string) {
	b.Test(name, fn, append(tags, types.TagIgnore)...)
}

// Declarations implements the Driver interface.
func (b *Builder) Declarations() ([]Decl, error) {
	return b.decls, nil
}
