package session

import (
	"sort"

	"github.com/arc-language/core-builder/ir"
)

// Symbol represents a named value in the symbol table
type Symbol struct {
	Name    string
	Value   ir.Value
	IsConst bool
}

// Scope represents a lexical scope with symbol table
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope creates a new scope
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Parent returns the enclosing scope
func (s *Scope) Parent() (*Scope, bool) { return s.parent, s.parent != nil }

// Define adds a symbol to the current scope
func (s *Scope) Define(name string, value ir.Value) {
	s.symbols[name] = &Symbol{Name: name, Value: value}
}

// DefineConst adds a constant symbol to the current scope
func (s *Scope) DefineConst(name string, value ir.Value) {
	s.symbols[name] = &Symbol{Name: name, Value: value, IsConst: true}
}

// Lookup searches for a live symbol in the current scope and parent scopes.
// Symbols whose value was deleted are skipped.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok && sym.Value != nil && sym.Value.IsLive() {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal searches only the current scope (not parents)
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// IsDefined checks if a symbol exists in current scope
func (s *Scope) IsDefined(name string) bool {
	_, ok := s.symbols[name]
	return ok
}

// Names returns the names defined directly in this scope, sorted
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.symbols))
	for n := range s.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
