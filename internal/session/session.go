// Package session holds the state of one module-building session: the
// context, builder, module and diagnostics, plus type names and scopes.
package session

import (
	"fmt"
	"strings"

	"github.com/arc-language/core-builder/builder"
	"github.com/arc-language/core-builder/diagnostics"
	"github.com/arc-language/core-builder/internal/logging"
	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

// Session holds the state while a module is built
type Session struct {
	Ctx         *ir.Context
	Builder     *builder.Builder
	Module      *ir.Module
	Diagnostics *diagnostics.DiagnosticEngine
	Logger      *logging.Logger

	// Current building position
	currentFunction *ir.Function
	currentBlock    *ir.BasicBlock

	// Symbol tables
	globalScope  *Scope
	currentScope *Scope

	// Type names
	namedTypes map[string]types.Type
}

// New creates a session building the module moduleName. A nil logger discards output.
func New(moduleName string, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	ctx := ir.NewContext()
	logger = logger.With("session", ctx.ID, "module", moduleName)

	s := &Session{
		Ctx:         ctx,
		Builder:     builder.New(ctx, builder.WithLogger(logger)),
		Module:      ctx.NewModule(moduleName),
		Diagnostics: diagnostics.NewDiagnosticEngine(),
		Logger:      logger,
		globalScope: NewScope(nil),
		namedTypes:  make(map[string]types.Type),
	}
	s.currentScope = s.globalScope
	s.registerBuiltinTypes()

	logger.Debug("Created session for module '%s'", moduleName)
	return s
}

// registerBuiltinTypes registers primitive and alias type names
func (s *Session) registerBuiltinTypes() {
	c := s.Ctx
	for name, t := range map[string]types.Type{
		// IR spellings
		"i1": c.I1, "i8": c.I8, "i16": c.I16, "i32": c.I32, "i64": c.I64, "i128": c.I128,
		"half": c.F16, "float": c.F32, "double": c.F64, "fp128": c.F128,
		"void": c.Void,

		// Sized aliases; integers carry no signedness
		"u8": c.I8, "u16": c.I16, "u32": c.I32, "u64": c.I64,
		"f16": c.F16, "f32": c.F32, "f64": c.F64, "f128": c.F128,
		"int8": c.I8, "int16": c.I16, "int32": c.I32, "int64": c.I64,
		"uint8": c.I8, "uint16": c.I16, "uint32": c.I32, "uint64": c.I64,
		"float32": c.F32, "float64": c.F64,

		// Defaults
		"int":  c.I64,
		"uint": c.I64,
		"byte": c.I8,
		"bool": c.I1,
		"rune": c.I32,
	} {
		s.namedTypes[name] = t
	}
}

// GetType resolves a type name. A trailing '*' makes a pointer to the named type.
func (s *Session) GetType(name string) (types.Type, bool) {
	name = strings.TrimSpace(name)
	if base, ok := strings.CutSuffix(name, "*"); ok {
		elem, found := s.GetType(base)
		if !found {
			return nil, false
		}
		pt, err := s.Ctx.Pointer(elem, 0)
		if err != nil {
			return nil, false
		}
		return pt, true
	}
	if t, ok := s.namedTypes[name]; ok {
		return t, true
	}
	if st, ok := s.Ctx.LookupStruct(name); ok {
		return st, true
	}
	return nil, false
}

// RegisterType registers a named type
func (s *Session) RegisterType(name string, typ types.Type) {
	s.namedTypes[name] = typ
}

// DeclareStruct creates a named struct with the given fields and registers its name
func (s *Session) DeclareStruct(name string, fields []types.Type, packed bool) (*types.StructType, error) {
	st, err := s.Ctx.NewStruct(name, fields, packed)
	if err != nil {
		return nil, err
	}
	s.RegisterType(name, st)
	return st, nil
}

// DeclareFunction adds a function to the module and defines it in the global scope
func (s *Session) DeclareFunction(name string, ret types.Type, params []types.Type, variadic bool) (*ir.Function, error) {
	sig, err := s.Ctx.Function(ret, params, variadic)
	if err != nil {
		return nil, err
	}
	fn, err := s.Module.CreateFunction(name, sig)
	if err != nil {
		return nil, err
	}
	s.globalScope.DefineConst(name, fn)
	s.Logger.Debug("Declared function @%s: %s", name, sig)
	return fn, nil
}

// DeclareGlobal adds a global variable and defines it in the global scope
func (s *Session) DeclareGlobal(name string, init *ir.Constant, isConstant bool, linkage ir.Linkage) (*ir.GlobalVariable, error) {
	if init == nil {
		return nil, fmt.Errorf("%w: global @%s needs an initializer", ir.ErrInvalidOperand, name)
	}
	g, err := s.Module.CreateGlobal(name, init.Type(), init, isConstant)
	if err != nil {
		return nil, err
	}
	g.SetLinkage(linkage)
	if isConstant {
		s.globalScope.DefineConst(name, g)
	} else {
		s.globalScope.Define(name, g)
	}
	return g, nil
}

// Scope returns the innermost scope
func (s *Session) Scope() *Scope { return s.currentScope }

// PushScope creates a new nested scope
func (s *Session) PushScope() {
	s.currentScope = NewScope(s.currentScope)
}

// PopScope returns to the parent scope
func (s *Session) PopScope() {
	if s.currentScope.parent != nil {
		s.currentScope = s.currentScope.parent
	}
}

// EnterFunction sets up the session for building the body of fn
func (s *Session) EnterFunction(fn *ir.Function) error {
	if err := ir.CheckLive(fn); err != nil {
		return err
	}
	if s.currentFunction != nil {
		return fmt.Errorf("already building @%s", s.currentFunction.Name())
	}
	s.currentFunction = fn
	s.currentBlock = nil
	s.PushScope()

	// Add named parameters to scope
	for _, arg := range fn.Params() {
		if arg.Name() != "" {
			s.currentScope.Define(arg.Name(), arg)
		}
	}
	s.Logger.Debug("Entering function @%s", fn.Name())
	return nil
}

// ExitFunction cleans up after building a function
func (s *Session) ExitFunction() {
	if s.currentFunction != nil {
		s.Logger.Debug("Leaving function @%s", s.currentFunction.Name())
	}
	s.currentFunction = nil
	s.currentBlock = nil
	s.Builder.ClearInsertionPosition()
	s.PopScope()
}

// CurrentFunction returns the function being built
func (s *Session) CurrentFunction() (*ir.Function, bool) {
	return s.currentFunction, s.currentFunction != nil
}

// CurrentBlock returns the block instructions are being added to
func (s *Session) CurrentBlock() (*ir.BasicBlock, bool) {
	return s.currentBlock, s.currentBlock != nil
}

// CreateBlock appends a block to the current function
func (s *Session) CreateBlock(name string) (*ir.BasicBlock, error) {
	if s.currentFunction == nil {
		return nil, fmt.Errorf("cannot create block %q outside a function", name)
	}
	return s.currentFunction.CreateBlock(name)
}

// SetInsertBlock sets the current basic block for instruction insertion
func (s *Session) SetInsertBlock(block *ir.BasicBlock) error {
	if err := s.Builder.PositionAtEnd(block); err != nil {
		return err
	}
	s.currentBlock = block
	return nil
}

// Close releases the builder. The module stays usable for printing and verification.
func (s *Session) Close() {
	s.Builder.Dispose()
	s.currentFunction = nil
	s.currentBlock = nil
}
