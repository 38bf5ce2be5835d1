package builder

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

func (b *Builder) binary(op ir.Opcode, x, y ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(x, y); err != nil {
		return nil, err
	}

	t := x.Type()
	if !t.Equal(y.Type()) {
		return nil, fmt.Errorf("%w: %s operands differ: %s and %s", ErrInvalidOperand, op, t, y.Type())
	}
	switch op {
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpFRem:
		if !types.IsFPOrFPVector(t) {
			return nil, fmt.Errorf("%w: %s needs floating point operands, got %s", ErrInvalidOperand, op, t)
		}
	default:
		if !types.IsIntOrIntVector(t) {
			return nil, fmt.Errorf("%w: %s needs integer operands, got %s", ErrInvalidOperand, op, t)
		}
	}
	return b.insert(ir.NewInstruction(op, t, x, y), name)
}

func (b *Builder) wrapping(op ir.Opcode, x, y ir.Value, wrap ir.WrapSemantics, name string) (*ir.Instruction, error) {
	if wrap < ir.WrapUnspecified || wrap > ir.NoUnsignedWrap {
		return nil, fmt.Errorf("%w: unknown wrap semantics %d", ErrInvalidOperand, int(wrap))
	}
	inst, err := b.binary(op, x, y, name)
	if err != nil {
		return nil, err
	}
	inst.SetWrap(wrap)
	return inst, nil
}

func (b *Builder) exact(op ir.Opcode, x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	inst, err := b.binary(op, x, y, name)
	if err != nil {
		return nil, err
	}
	inst.SetExact(exact)
	return inst, nil
}

// CreateAdd emits integer addition with the given overflow semantics
func (b *Builder) CreateAdd(x, y ir.Value, wrap ir.WrapSemantics, name string) (*ir.Instruction, error) {
	return b.wrapping(ir.OpAdd, x, y, wrap, name)
}

// CreateSub emits integer subtraction
func (b *Builder) CreateSub(x, y ir.Value, wrap ir.WrapSemantics, name string) (*ir.Instruction, error) {
	return b.wrapping(ir.OpSub, x, y, wrap, name)
}

// CreateMul emits integer multiplication
func (b *Builder) CreateMul(x, y ir.Value, wrap ir.WrapSemantics, name string) (*ir.Instruction, error) {
	return b.wrapping(ir.OpMul, x, y, wrap, name)
}

// CreateShl emits a left shift
func (b *Builder) CreateShl(x, y ir.Value, wrap ir.WrapSemantics, name string) (*ir.Instruction, error) {
	return b.wrapping(ir.OpShl, x, y, wrap, name)
}

// CreateUDiv emits unsigned division. An exact division of operands that
// leave a remainder yields poison.
func (b *Builder) CreateUDiv(x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	return b.exact(ir.OpUDiv, x, y, exact, name)
}

// CreateSDiv emits signed division
func (b *Builder) CreateSDiv(x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	return b.exact(ir.OpSDiv, x, y, exact, name)
}

// CreateURem emits unsigned remainder
func (b *Builder) CreateURem(x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	return b.exact(ir.OpURem, x, y, exact, name)
}

// CreateSRem emits signed remainder
func (b *Builder) CreateSRem(x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	return b.exact(ir.OpSRem, x, y, exact, name)
}

// CreateLShr emits a logical right shift
func (b *Builder) CreateLShr(x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	return b.exact(ir.OpLShr, x, y, exact, name)
}

// CreateAShr emits an arithmetic right shift
func (b *Builder) CreateAShr(x, y ir.Value, exact bool, name string) (*ir.Instruction, error) {
	return b.exact(ir.OpAShr, x, y, exact, name)
}

func (b *Builder) CreateAnd(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpAnd, x, y, name)
}

func (b *Builder) CreateOr(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpOr, x, y, name)
}

func (b *Builder) CreateXor(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpXor, x, y, name)
}

func (b *Builder) CreateFAdd(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpFAdd, x, y, name)
}

func (b *Builder) CreateFSub(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpFSub, x, y, name)
}

func (b *Builder) CreateFMul(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpFMul, x, y, name)
}

func (b *Builder) CreateFDiv(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpFDiv, x, y, name)
}

func (b *Builder) CreateFRem(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.binary(ir.OpFRem, x, y, name)
}

// CreateNeg emits 0 - x
func (b *Builder) CreateNeg(x ir.Value, wrap ir.WrapSemantics, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(x); err != nil {
		return nil, err
	}
	return b.CreateSub(b.ctx.Null(x.Type()), x, wrap, name)
}

// CreateNot emits x ^ -1
func (b *Builder) CreateNot(x ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(x); err != nil {
		return nil, err
	}
	ones, err := b.ctx.AllOnes(x.Type())
	if err != nil {
		return nil, err
	}
	return b.CreateXor(x, ones, name)
}

// CreateFNeg emits floating point negation
func (b *Builder) CreateFNeg(x ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(x); err != nil {
		return nil, err
	}
	if !types.IsFPOrFPVector(x.Type()) {
		return nil, fmt.Errorf("%w: fneg needs a floating point operand, got %s", ErrInvalidOperand, x.Type())
	}
	return b.insert(ir.NewInstruction(ir.OpFNeg, x.Type(), x), name)
}

// boolOf returns i1 for scalars and <N x i1> for N-lane vectors
func (b *Builder) boolOf(t types.Type) types.Type {
	if n := types.VectorLen(t); n > 0 {
		return &types.VectorType{ElementType: b.ctx.I1, Length: n}
	}
	return b.ctx.I1
}

// CreateICmp emits an integer or pointer comparison
func (b *Builder) CreateICmp(pred ir.Predicate, x, y ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if !pred.IsIntPredicate() {
		return nil, fmt.Errorf("%w: %s is not an integer predicate", ErrInvalidOperand, pred)
	}
	if err := live(x, y); err != nil {
		return nil, err
	}
	t := x.Type()
	if !t.Equal(y.Type()) {
		return nil, fmt.Errorf("%w: icmp operands differ: %s and %s", ErrInvalidOperand, t, y.Type())
	}
	if !types.IsIntOrIntVector(t) && !types.IsPtrOrPtrVector(t) {
		return nil, fmt.Errorf("%w: icmp needs integer or pointer operands, got %s", ErrInvalidOperand, t)
	}
	inst := ir.NewInstruction(ir.OpICmp, b.boolOf(t), x, y)
	inst.SetPredicate(pred)
	return b.insert(inst, name)
}

// CreateFCmp emits a floating point comparison
func (b *Builder) CreateFCmp(pred ir.Predicate, x, y ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if !pred.IsFloatPredicate() {
		return nil, fmt.Errorf("%w: %s is not a floating point predicate", ErrInvalidOperand, pred)
	}
	if err := live(x, y); err != nil {
		return nil, err
	}
	t := x.Type()
	if !t.Equal(y.Type()) {
		return nil, fmt.Errorf("%w: fcmp operands differ: %s and %s", ErrInvalidOperand, t, y.Type())
	}
	if !types.IsFPOrFPVector(t) {
		return nil, fmt.Errorf("%w: fcmp needs floating point operands, got %s", ErrInvalidOperand, t)
	}
	inst := ir.NewInstruction(ir.OpFCmp, b.boolOf(t), x, y)
	inst.SetPredicate(pred)
	return b.insert(inst, name)
}

func (b *Builder) CreateICmpEQ(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpEQ, x, y, name)
}

func (b *Builder) CreateICmpNE(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpNE, x, y, name)
}

func (b *Builder) CreateICmpSLT(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpSLT, x, y, name)
}

func (b *Builder) CreateICmpSLE(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpSLE, x, y, name)
}

func (b *Builder) CreateICmpSGT(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpSGT, x, y, name)
}

func (b *Builder) CreateICmpSGE(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpSGE, x, y, name)
}

func (b *Builder) CreateICmpULT(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpULT, x, y, name)
}

func (b *Builder) CreateICmpULE(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpULE, x, y, name)
}

func (b *Builder) CreateICmpUGT(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpUGT, x, y, name)
}

func (b *Builder) CreateICmpUGE(x, y ir.Value, name string) (*ir.Instruction, error) {
	return b.CreateICmp(ir.ICmpUGE, x, y, name)
}
