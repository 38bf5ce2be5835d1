package ir

import (
	"fmt"
	"iter"

	"github.com/arc-language/core-builder/types"
)

// BasicBlock is an ordered list of instructions ending in at most one
// terminator. A block belongs to at most one function.
type BasicBlock struct {
	entity
	name        string
	parent      *Function
	module      *Module
	prev, next  *BasicBlock
	first, last *Instruction
	count       int
}

func (b *BasicBlock) Type() types.Type { return b.module.ctx.Label }
func (b *BasicBlock) Kind() ValueKind  { return BasicBlockValue }
func (b *BasicBlock) Name() string     { return b.name }
func (b *BasicBlock) isValue()         {}

// SetName renames the block
func (b *BasicBlock) SetName(name string) { b.name = name }

// Parent returns the owning function, or false for a detached block
func (b *BasicBlock) Parent() (*Function, bool) {
	return b.parent, b.parent != nil
}

// Module returns the module the block was created in
func (b *BasicBlock) Module() *Module { return b.module }

// Len returns the number of instructions
func (b *BasicBlock) Len() int { return b.count }

// Next returns the following block in the function
func (b *BasicBlock) Next() (*BasicBlock, bool) { return b.next, b.next != nil }

// Prev returns the preceding block in the function
func (b *BasicBlock) Prev() (*BasicBlock, bool) { return b.prev, b.prev != nil }

// First returns the first instruction
func (b *BasicBlock) First() (*Instruction, bool) { return b.first, b.first != nil }

// Last returns the last instruction
func (b *BasicBlock) Last() (*Instruction, bool) { return b.last, b.last != nil }

// Instructions iterates the block's instructions in order. Insertions ahead
// of the traversal point are observed; the sequence may be restarted.
func (b *BasicBlock) Instructions() iter.Seq[*Instruction] {
	return func(yield func(*Instruction) bool) {
		for inst := b.first; inst != nil; inst = inst.next {
			if !yield(inst) {
				return
			}
		}
	}
}

// Terminator returns the last instruction if it is a terminator
func (b *BasicBlock) Terminator() (*Instruction, bool) {
	if b.last != nil && b.last.op.IsTerminator() {
		return b.last, true
	}
	return nil, false
}

// IsTerminated reports whether the block ends in a terminator
func (b *BasicBlock) IsTerminated() bool {
	_, ok := b.Terminator()
	return ok
}

// Successors returns the distinct blocks the terminator may transfer control to
func (b *BasicBlock) Successors() []*BasicBlock {
	term, ok := b.Terminator()
	if !ok {
		return nil
	}
	return term.Successors()
}

// Predecessors returns the distinct blocks of the same function whose
// terminators target b, in function order.
func (b *BasicBlock) Predecessors() []*BasicBlock {
	if b.parent == nil {
		return nil
	}
	var preds []*BasicBlock
	for bb := b.parent.first; bb != nil; bb = bb.next {
		for _, s := range bb.Successors() {
			if s == b {
				preds = append(preds, bb)
				break
			}
		}
	}
	return preds
}

// Insert places inst into bb before the instruction before, or at the end
// when before is nil. It is the hook the instruction builder emits through.
func Insert(bb *BasicBlock, inst *Instruction, before *Instruction) error {
	if bb == nil || inst == nil {
		return fmt.Errorf("%w: nil block or instruction", ErrInvalidOperand)
	}
	if err := CheckLive(bb); err != nil {
		return err
	}
	if inst.parent != nil {
		return fmt.Errorf("%w: instruction is already in block %q", ErrInvalidOperand, inst.parent.name)
	}
	if before != nil {
		if err := CheckLive(before); err != nil {
			return err
		}
		if before.parent != bb {
			return fmt.Errorf("%w: insertion point is not in block %q", ErrInvalidOperand, bb.name)
		}
	}

	inst.attach(bb.module.arena)
	inst.parent = bb
	if before == nil {
		inst.prev = bb.last
		inst.next = nil
		if bb.last != nil {
			bb.last.next = inst
		} else {
			bb.first = inst
		}
		bb.last = inst
	} else {
		inst.next = before
		inst.prev = before.prev
		if before.prev != nil {
			before.prev.next = inst
		} else {
			bb.first = inst
		}
		before.prev = inst
	}
	bb.count++
	return nil
}

func (b *BasicBlock) unlink(inst *Instruction) {
	if inst.prev != nil {
		inst.prev.next = inst.next
	} else {
		b.first = inst.next
	}
	if inst.next != nil {
		inst.next.prev = inst.prev
	} else {
		b.last = inst.prev
	}
	inst.prev, inst.next, inst.parent = nil, nil, nil
	b.count--
}
