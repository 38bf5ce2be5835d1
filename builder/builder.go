// Package builder provides the instruction builder: a cursor into a basic
// block that emits typed instructions at the current insertion point.
//
// A Builder starts unpositioned. Every Create* call validates its operands,
// inserts the new instruction at the cursor and leaves the cursor after it.
// A failed call leaves both the builder and the IR unchanged. Structural
// rules that span more than one instruction, such as a second terminator in
// a block, are left to the verifier.
package builder

import (
	"errors"
	"fmt"

	"github.com/arc-language/core-builder/internal/logging"
	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

var (
	// ErrBuilderNotPositioned is returned by Create* calls on an unpositioned builder
	ErrBuilderNotPositioned = errors.New("builder is not positioned")
	// ErrBuilderDisposed is returned by every call after Dispose
	ErrBuilderDisposed = errors.New("builder is disposed")
	// ErrInvalidPosition is returned when a cursor target is not in the expected block
	ErrInvalidPosition = errors.New("invalid insertion position")
	// ErrInvalidOperand is returned when operands do not fit an instruction's shape
	ErrInvalidOperand = ir.ErrInvalidOperand
)

// Builder emits instructions into basic blocks
type Builder struct {
	ctx      *ir.Context
	block    *ir.BasicBlock
	before   *ir.Instruction
	disposed bool
	logger   *logging.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger makes the builder log every emitted instruction at debug level
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an unpositioned builder for ctx
func New(ctx *ir.Context, opts ...Option) *Builder {
	b := &Builder{ctx: ctx, logger: logging.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Context returns the context constants and types are created in
func (b *Builder) Context() *ir.Context { return b.ctx }

// Dispose releases the builder. Every later call fails with ErrBuilderDisposed.
func (b *Builder) Dispose() {
	b.block, b.before = nil, nil
	b.disposed = true
}

// IsDisposed reports whether Dispose has been called
func (b *Builder) IsDisposed() bool { return b.disposed }

// PositionAtEnd moves the cursor to the end of bb
func (b *Builder) PositionAtEnd(bb *ir.BasicBlock) error {
	if b.disposed {
		return ErrBuilderDisposed
	}
	if err := ir.CheckLive(bb); err != nil {
		return err
	}
	b.block, b.before = bb, nil
	return nil
}

// PositionBefore moves the cursor so the next instruction lands before inst
func (b *Builder) PositionBefore(inst *ir.Instruction) error {
	if b.disposed {
		return ErrBuilderDisposed
	}
	if err := ir.CheckLive(inst); err != nil {
		return err
	}
	bb, ok := inst.Parent()
	if !ok {
		return fmt.Errorf("%w: instruction is not in a block", ErrInvalidPosition)
	}
	b.block, b.before = bb, inst
	return nil
}

// Position moves the cursor into bb right after the instruction after, or
// to the start of bb when after is nil. after must belong to bb.
func (b *Builder) Position(bb *ir.BasicBlock, after *ir.Instruction) error {
	if b.disposed {
		return ErrBuilderDisposed
	}
	if err := ir.CheckLive(bb); err != nil {
		return err
	}
	if after == nil {
		first, _ := bb.First()
		b.block, b.before = bb, first
		return nil
	}
	if err := ir.CheckLive(after); err != nil {
		return err
	}
	if parent, _ := after.Parent(); parent != bb {
		return fmt.Errorf("%w: instruction is not in block %q", ErrInvalidPosition, bb.Name())
	}
	next, _ := after.Next()
	b.block, b.before = bb, next
	return nil
}

// ClearInsertionPosition returns the builder to the unpositioned state
func (b *Builder) ClearInsertionPosition() {
	b.block, b.before = nil, nil
}

// InsertBlock returns the block the cursor is in
func (b *Builder) InsertBlock() (*ir.BasicBlock, bool) {
	return b.block, b.block != nil
}

// InsertPoint returns the instruction the cursor sits before; false means
// the cursor is at the end of the block
func (b *Builder) InsertPoint() (*ir.Instruction, bool) {
	return b.before, b.before != nil
}

// IsPositioned reports whether Create* calls can succeed
func (b *Builder) IsPositioned() bool { return !b.disposed && b.block != nil }

// ready checks that the cursor still addresses a live insertion point
func (b *Builder) ready() error {
	if b.disposed {
		return ErrBuilderDisposed
	}
	if b.block == nil {
		return ErrBuilderNotPositioned
	}
	if err := ir.CheckLive(b.block); err != nil {
		return err
	}
	if b.before != nil {
		if !b.before.IsLive() {
			return fmt.Errorf("%w: insertion point was erased", ErrInvalidPosition)
		}
		if parent, _ := b.before.Parent(); parent != b.block {
			return fmt.Errorf("%w: insertion point left block %q", ErrInvalidPosition, b.block.Name())
		}
	}
	return nil
}

// live checks every operand for staleness
func live(vs ...ir.Value) error {
	for _, v := range vs {
		if err := ir.CheckLive(v); err != nil {
			return err
		}
	}
	return nil
}

// insert places a fully validated instruction at the cursor
func (b *Builder) insert(inst *ir.Instruction, name string) (*ir.Instruction, error) {
	inst.SetName(name)
	if err := ir.Insert(b.block, inst, b.before); err != nil {
		return nil, err
	}
	b.logger.Debug("emit %s in %q", inst.Opcode(), b.block.Name())
	return inst, nil
}

// ConstInt returns an integer constant of type t
func (b *Builder) ConstInt(t *types.IntType, v int64) *ir.Constant {
	return b.ctx.ConstIntSigned(t, v)
}

// ConstFloat returns a floating point constant of type t
func (b *Builder) ConstFloat(t *types.FloatType, v float64) *ir.Constant {
	return b.ctx.ConstFloat(t, v)
}

// ConstNull returns the zero value of t
func (b *Builder) ConstNull(t types.Type) *ir.Constant {
	return b.ctx.Null(t)
}

// True returns the i1 constant 1
func (b *Builder) True() *ir.Constant { return b.ctx.ConstBool(true) }

// False returns the i1 constant 0
func (b *Builder) False() *ir.Constant { return b.ctx.ConstBool(false) }
