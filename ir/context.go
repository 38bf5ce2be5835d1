package ir

import (
	"github.com/arc-language/core-builder/types"
)

// Context is the explicit owner of types and constants for one building
// session. Independent contexts never share state.
type Context struct {
	*types.Context
}

// NewContext creates a fresh context
func NewContext() *Context {
	return &Context{Context: types.NewContext()}
}

// Types returns the underlying type context
func (c *Context) Types() *types.Context { return c.Context }

// NewModule creates an empty module in this context
func (c *Context) NewModule(name string) *Module {
	return &Module{
		Name:    name,
		ctx:     c,
		arena:   newArena(),
		symbols: make(map[string]Value),
	}
}
