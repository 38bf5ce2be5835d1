// Package ir provides the value model and the control-flow graph: modules,
// functions, basic blocks, instructions and constants.
package ir

import (
	"errors"
	"fmt"

	"github.com/arc-language/core-builder/types"
)

var (
	// ErrStaleHandle is returned when an entity is used after its owner was deleted
	ErrStaleHandle = errors.New("stale handle")
	// ErrBlockAlreadyAttached is returned when appending a block that already has a parent
	ErrBlockAlreadyAttached = errors.New("block already attached")
	// ErrIndexOutOfRange is returned by bounds-checked accessors
	ErrIndexOutOfRange = types.ErrIndexOutOfRange
	// ErrInvalidOperand is returned when an operand does not fit an instruction's shape
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrDuplicateSymbol is returned when a module symbol name is reused
	ErrDuplicateSymbol = errors.New("duplicate symbol")
)

// ValueKind tags the variants of Value
type ValueKind int

const (
	ArgumentValue ValueKind = iota
	InstructionValue
	ConstantValue
	GlobalVariableValue
	FunctionValue
	BasicBlockValue
)

func (k ValueKind) String() string {
	switch k {
	case ArgumentValue:
		return "argument"
	case InstructionValue:
		return "instruction"
	case ConstantValue:
		return "constant"
	case GlobalVariableValue:
		return "global"
	case FunctionValue:
		return "function"
	case BasicBlockValue:
		return "block"
	}
	return fmt.Sprintf("value(%d)", int(k))
}

// Value is anything that can appear as an instruction operand. Every value
// has exactly one type, fixed at construction.
type Value interface {
	Type() types.Type
	Kind() ValueKind
	Name() string
	IsLive() bool
	isValue()
}

// CheckLive returns ErrStaleHandle if v refers to a deleted entity
func CheckLive(v Value) error {
	if isNil(v) {
		return fmt.Errorf("%w: nil value", ErrInvalidOperand)
	}
	if !v.IsLive() {
		return fmt.Errorf("%w: %s %q", ErrStaleHandle, v.Kind(), v.Name())
	}
	return nil
}

// isNil also catches typed nil pointers held in a non-nil interface
func isNil(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *BasicBlock:
		return x == nil
	case *Instruction:
		return x == nil
	case *Function:
		return x == nil
	case *Argument:
		return x == nil
	case *Constant:
		return x == nil
	case *GlobalVariable:
		return x == nil
	}
	return false
}

// IsConstant reports whether v is a compile-time constant
func IsConstant(v Value) bool {
	_, ok := v.(*Constant)
	return ok
}

// IsNull reports whether v is a null constant
func IsNull(v Value) bool {
	c, ok := v.(*Constant)
	return ok && c.IsNull()
}

// IsUndef reports whether v is an undef constant
func IsUndef(v Value) bool {
	c, ok := v.(*Constant)
	return ok && c.IsUndef()
}

// IsPoison reports whether v is a poison constant
func IsPoison(v Value) bool {
	c, ok := v.(*Constant)
	return ok && c.IsPoison()
}

// Argument is a formal parameter of a function
type Argument struct {
	entity
	name   string
	typ    types.Type
	parent *Function
	index  int
}

func (a *Argument) Type() types.Type { return a.typ }
func (a *Argument) Kind() ValueKind  { return ArgumentValue }
func (a *Argument) Name() string     { return a.name }
func (a *Argument) isValue()         {}

// SetName renames the argument
func (a *Argument) SetName(name string) { a.name = name }

// Parent returns the owning function
func (a *Argument) Parent() *Function { return a.parent }

// Index returns the position of the argument in the signature
func (a *Argument) Index() int { return a.index }
