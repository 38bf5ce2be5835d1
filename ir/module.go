package ir

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/arc-language/core-builder/types"
)

// Linkage controls symbol visibility outside the module
type Linkage int

const (
	ExternalLinkage Linkage = iota
	InternalLinkage
	PrivateLinkage
)

func (l Linkage) String() string {
	switch l {
	case InternalLinkage:
		return "internal"
	case PrivateLinkage:
		return "private"
	}
	return "external"
}

// Module is the unit of IR construction. It owns functions, globals and the
// arena every entity handle is allocated from.
type Module struct {
	Name string

	ctx       *Context
	arena     *arena
	functions []*Function
	globals   []*GlobalVariable
	symbols   map[string]Value
}

// Context returns the context the module was created in
func (m *Module) Context() *Context { return m.ctx }

// CreateFunction adds a function with the given signature. The function is
// a declaration until a block is created in it.
func (m *Module) CreateFunction(name string, sig *types.FunctionType) (*Function, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signature for @%s", ErrInvalidOperand, name)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: functions must be named", ErrInvalidOperand)
	}
	if _, exists := m.symbols[name]; exists {
		return nil, fmt.Errorf("%w: @%s", ErrDuplicateSymbol, name)
	}

	fn := &Function{
		name:   name,
		sig:    sig,
		typ:    &types.PointerType{ElementType: sig},
		module: m,
	}
	fn.attach(m.arena)

	fn.args = make([]*Argument, len(sig.ParamTypes))
	for i, pt := range sig.ParamTypes {
		arg := &Argument{typ: pt, parent: fn, index: i}
		arg.attach(m.arena)
		fn.args[i] = arg
	}

	m.functions = append(m.functions, fn)
	m.symbols[name] = fn
	return fn, nil
}

// Function looks up a live function by name
func (m *Module) Function(name string) (*Function, bool) {
	fn, ok := m.symbols[name].(*Function)
	return fn, ok
}

// Functions returns the module's functions in creation order
func (m *Module) Functions() []*Function {
	return append([]*Function(nil), m.functions...)
}

// CreateGlobal adds a global variable. init may be nil for an external declaration.
func (m *Module) CreateGlobal(name string, typ types.Type, init *Constant, isConstant bool) (*GlobalVariable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: globals must be named", ErrInvalidOperand)
	}
	if _, exists := m.symbols[name]; exists {
		return nil, fmt.Errorf("%w: @%s", ErrDuplicateSymbol, name)
	}
	if !types.IsFirstClass(typ) {
		return nil, fmt.Errorf("%w: global @%s of type %v", ErrInvalidOperand, name, typ)
	}
	if init != nil && !init.typ.Equal(typ) {
		return nil, fmt.Errorf("%w: initializer of @%s is %s, want %s", ErrInvalidOperand, name, init.typ, typ)
	}

	g := &GlobalVariable{
		name:       name,
		valueType:  typ,
		typ:        &types.PointerType{ElementType: typ},
		init:       init,
		isConstant: isConstant,
		module:     m,
	}
	g.attach(m.arena)
	m.globals = append(m.globals, g)
	m.symbols[name] = g
	return g, nil
}

// Global looks up a global variable by name
func (m *Module) Global(name string) (*GlobalVariable, bool) {
	g, ok := m.symbols[name].(*GlobalVariable)
	return g, ok
}

// Globals returns the module's globals in creation order
func (m *Module) Globals() []*GlobalVariable {
	return append([]*GlobalVariable(nil), m.globals...)
}

// NewBlock creates a detached block that can later be appended to a function
func (m *Module) NewBlock(name string) *BasicBlock {
	bb := &BasicBlock{name: name, module: m}
	bb.attach(m.arena)
	return bb
}

// LiveEntities returns how many arena slots are in use
func (m *Module) LiveEntities() int { return m.arena.liveCount() }

// Fingerprint returns a BLAKE3 digest of the module's printed form
func (m *Module) Fingerprint() string {
	sum := blake3.Sum256([]byte(m.String()))
	return hex.EncodeToString(sum[:])
}

func (m *Module) removeFunction(fn *Function) {
	for i, f := range m.functions {
		if f == fn {
			m.functions = append(m.functions[:i], m.functions[i+1:]...)
			break
		}
	}
	if cur, ok := m.symbols[fn.name]; ok && cur == Value(fn) {
		delete(m.symbols, fn.name)
	}
}

// GlobalVariable is a module-level variable; its value is a pointer to the storage
type GlobalVariable struct {
	entity
	name       string
	valueType  types.Type
	typ        *types.PointerType
	init       *Constant
	isConstant bool
	linkage    Linkage
	module     *Module
}

func (g *GlobalVariable) Type() types.Type { return g.typ }
func (g *GlobalVariable) Kind() ValueKind  { return GlobalVariableValue }
func (g *GlobalVariable) Name() string     { return g.name }
func (g *GlobalVariable) isValue()         {}

// ValueType returns the type of the stored value
func (g *GlobalVariable) ValueType() types.Type { return g.valueType }

// Initializer returns the initial value, if any
func (g *GlobalVariable) Initializer() (*Constant, bool) { return g.init, g.init != nil }

// IsConstant reports whether the global is immutable
func (g *GlobalVariable) IsConstant() bool { return g.isConstant }

// Linkage returns the global's linkage
func (g *GlobalVariable) Linkage() Linkage { return g.linkage }

// SetLinkage changes the global's linkage
func (g *GlobalVariable) SetLinkage(l Linkage) { g.linkage = l }
