package ir

import (
	"fmt"
	"iter"

	"github.com/arc-language/core-builder/types"
)

// Function owns an ordered list of basic blocks. A function without blocks
// is a declaration.
type Function struct {
	entity
	name        string
	sig         *types.FunctionType
	typ         *types.PointerType
	module      *Module
	args        []*Argument
	first, last *BasicBlock
	numBlocks   int
	personality *Function
	linkage     Linkage
}

func (f *Function) Type() types.Type { return f.typ }
func (f *Function) Kind() ValueKind  { return FunctionValue }
func (f *Function) Name() string     { return f.name }
func (f *Function) isValue()         {}

// Signature returns the function type
func (f *Function) Signature() *types.FunctionType { return f.sig }

// ReturnType returns the declared return type
func (f *Function) ReturnType() types.Type { return f.sig.ReturnType }

// Module returns the owning module
func (f *Function) Module() *Module { return f.module }

// NumParams returns the number of formal parameters
func (f *Function) NumParams() int { return len(f.args) }

// Param returns parameter i
func (f *Function) Param(i int) (*Argument, error) {
	if i < 0 || i >= len(f.args) {
		return nil, fmt.Errorf("%w: parameter %d of @%s (has %d)", ErrIndexOutOfRange, i, f.name, len(f.args))
	}
	return f.args[i], nil
}

// Params returns all parameters in order
func (f *Function) Params() []*Argument {
	return append([]*Argument(nil), f.args...)
}

// Linkage returns the function's linkage
func (f *Function) Linkage() Linkage { return f.linkage }

// SetLinkage changes the function's linkage
func (f *Function) SetLinkage(l Linkage) { f.linkage = l }

// Personality returns the exception personality function, if one is set
func (f *Function) Personality() (*Function, bool) {
	return f.personality, f.personality != nil
}

// SetPersonality sets (or with nil clears) the personality function
func (f *Function) SetPersonality(p *Function) error {
	if p != nil {
		if err := CheckLive(p); err != nil {
			return err
		}
	}
	f.personality = p
	return nil
}

// IsDeclaration reports whether the function has no body
func (f *Function) IsDeclaration() bool { return f.numBlocks == 0 }

// NumBlocks returns the number of blocks
func (f *Function) NumBlocks() int { return f.numBlocks }

// EntryBlock returns the first block, if the function has a body
func (f *Function) EntryBlock() (*BasicBlock, bool) {
	return f.first, f.first != nil
}

// LastBlock returns the final block, if any
func (f *Function) LastBlock() (*BasicBlock, bool) {
	return f.last, f.last != nil
}

// Blocks iterates the function's blocks in order. Blocks appended after
// the iteration started are visited once the traversal reaches them.
func (f *Function) Blocks() iter.Seq[*BasicBlock] {
	return func(yield func(*BasicBlock) bool) {
		for bb := f.first; bb != nil; bb = bb.next {
			if !yield(bb) {
				return
			}
		}
	}
}

// CreateBlock appends a new empty block
func (f *Function) CreateBlock(name string) (*BasicBlock, error) {
	if err := CheckLive(f); err != nil {
		return nil, err
	}
	bb := f.module.NewBlock(name)
	f.link(bb)
	return bb, nil
}

// AppendBlock attaches a detached block to the end of the function
func (f *Function) AppendBlock(bb *BasicBlock) error {
	if err := CheckLive(f); err != nil {
		return err
	}
	if err := CheckLive(bb); err != nil {
		return err
	}
	if bb.parent != nil {
		return fmt.Errorf("%w: block %q belongs to @%s", ErrBlockAlreadyAttached, bb.name, bb.parent.name)
	}
	if bb.module != f.module {
		return fmt.Errorf("%w: block %q was created in module %q", ErrInvalidOperand, bb.name, bb.module.Name)
	}
	f.link(bb)
	return nil
}

func (f *Function) link(bb *BasicBlock) {
	bb.parent = f
	bb.prev = f.last
	bb.next = nil
	if f.last != nil {
		f.last.next = bb
	} else {
		f.first = bb
	}
	f.last = bb
	f.numBlocks++
}

// Delete removes the function from its module and invalidates every handle
// derived from it: arguments, blocks and instructions.
func (f *Function) Delete() error {
	if err := CheckLive(f); err != nil {
		return err
	}
	for bb := f.first; bb != nil; {
		next := bb.next
		for inst := bb.first; inst != nil; {
			n := inst.next
			inst.detach()
			inst = n
		}
		bb.detach()
		bb = next
	}
	for _, arg := range f.args {
		arg.detach()
	}
	f.module.removeFunction(f)
	f.detach()
	return nil
}
