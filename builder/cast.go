package builder

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

type castRule struct {
	src, dst func(types.Type) bool
	// order compares scalar widths: -1 narrowing, +1 widening, 0 unchecked
	order int
}

var castRules = map[ir.Opcode]castRule{
	ir.OpTrunc:    {types.IsIntOrIntVector, types.IsIntOrIntVector, -1},
	ir.OpZExt:     {types.IsIntOrIntVector, types.IsIntOrIntVector, +1},
	ir.OpSExt:     {types.IsIntOrIntVector, types.IsIntOrIntVector, +1},
	ir.OpFPTrunc:  {types.IsFPOrFPVector, types.IsFPOrFPVector, -1},
	ir.OpFPExt:    {types.IsFPOrFPVector, types.IsFPOrFPVector, +1},
	ir.OpFPToUI:   {types.IsFPOrFPVector, types.IsIntOrIntVector, 0},
	ir.OpFPToSI:   {types.IsFPOrFPVector, types.IsIntOrIntVector, 0},
	ir.OpUIToFP:   {types.IsIntOrIntVector, types.IsFPOrFPVector, 0},
	ir.OpSIToFP:   {types.IsIntOrIntVector, types.IsFPOrFPVector, 0},
	ir.OpPtrToInt: {types.IsPtrOrPtrVector, types.IsIntOrIntVector, 0},
	ir.OpIntToPtr: {types.IsIntOrIntVector, types.IsPtrOrPtrVector, 0},
}

func (b *Builder) cast(op ir.Opcode, v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(v); err != nil {
		return nil, err
	}
	if dst == nil {
		return nil, fmt.Errorf("%w: %s to a nil type", ErrInvalidOperand, op)
	}
	if err := checkCast(op, v.Type(), dst); err != nil {
		return nil, err
	}
	return b.insert(ir.NewInstruction(op, dst, v), name)
}

func checkCast(op ir.Opcode, src, dst types.Type) error {
	lanes := func() error {
		if types.VectorLen(src) != types.VectorLen(dst) {
			return fmt.Errorf("%w: %s between %s and %s changes the lane count", ErrInvalidOperand, op, src, dst)
		}
		return nil
	}

	// non-pointer bitcasts only need equal total size, so lanes may change
	if op == ir.OpBitCast {
		if types.IsPtrOrPtrVector(src) || types.IsPtrOrPtrVector(dst) {
			sp, ok1 := types.ScalarType(src).(*types.PointerType)
			dp, ok2 := types.ScalarType(dst).(*types.PointerType)
			if !ok1 || !ok2 {
				return fmt.Errorf("%w: bitcast between pointer and non-pointer %s to %s", ErrInvalidOperand, src, dst)
			}
			if err := lanes(); err != nil {
				return err
			}
			if sp.AddressSpace != dp.AddressSpace {
				return fmt.Errorf("%w: bitcast cannot change address space %d to %d", ErrInvalidOperand, sp.AddressSpace, dp.AddressSpace)
			}
			return nil
		}
		ss, ds := types.PrimitiveSizeInBits(src), types.PrimitiveSizeInBits(dst)
		if ss == 0 || ss != ds {
			return fmt.Errorf("%w: bitcast from %s to %s needs equal sized primitive types", ErrInvalidOperand, src, dst)
		}
		return nil
	}

	rule, ok := castRules[op]
	if !ok {
		return fmt.Errorf("%w: %s is not a cast", ErrInvalidOperand, op)
	}
	if !rule.src(src) || !rule.dst(dst) {
		return fmt.Errorf("%w: invalid %s from %s to %s", ErrInvalidOperand, op, src, dst)
	}
	if err := lanes(); err != nil {
		return err
	}
	sw, dw := types.ScalarBitWidth(src), types.ScalarBitWidth(dst)
	switch {
	case rule.order < 0 && sw <= dw:
		return fmt.Errorf("%w: %s needs a wider source, %s is not wider than %s", ErrInvalidOperand, op, src, dst)
	case rule.order > 0 && sw >= dw:
		return fmt.Errorf("%w: %s needs a narrower source, %s is not narrower than %s", ErrInvalidOperand, op, src, dst)
	}
	return nil
}

func (b *Builder) CreateTrunc(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpTrunc, v, dst, name)
}

func (b *Builder) CreateZExt(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpZExt, v, dst, name)
}

func (b *Builder) CreateSExt(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpSExt, v, dst, name)
}

func (b *Builder) CreateFPTrunc(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpFPTrunc, v, dst, name)
}

func (b *Builder) CreateFPExt(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpFPExt, v, dst, name)
}

func (b *Builder) CreateFPToUI(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpFPToUI, v, dst, name)
}

func (b *Builder) CreateFPToSI(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpFPToSI, v, dst, name)
}

func (b *Builder) CreateUIToFP(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpUIToFP, v, dst, name)
}

func (b *Builder) CreateSIToFP(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpSIToFP, v, dst, name)
}

func (b *Builder) CreatePtrToInt(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpPtrToInt, v, dst, name)
}

func (b *Builder) CreateIntToPtr(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpIntToPtr, v, dst, name)
}

// CreateBitCast reinterprets the bits of v as dst. Pointers may only be
// cast to pointers in the same address space.
func (b *Builder) CreateBitCast(v ir.Value, dst types.Type, name string) (*ir.Instruction, error) {
	return b.cast(ir.OpBitCast, v, dst, name)
}

// CreateIntCast converts an integer to dst by truncation or extension.
// When the widths already match v is returned unchanged and nothing is emitted.
func (b *Builder) CreateIntCast(v ir.Value, dst types.Type, signed bool, name string) (ir.Value, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(v); err != nil {
		return nil, err
	}
	if !types.IsIntOrIntVector(v.Type()) || !types.IsIntOrIntVector(dst) {
		return nil, fmt.Errorf("%w: intcast needs integer types, got %s to %v", ErrInvalidOperand, v.Type(), dst)
	}
	sw, dw := types.ScalarBitWidth(v.Type()), types.ScalarBitWidth(dst)
	if sw == dw {
		if types.VectorLen(v.Type()) != types.VectorLen(dst) {
			return nil, fmt.Errorf("%w: intcast from %s to %s changes the lane count", ErrInvalidOperand, v.Type(), dst)
		}
		return v, nil
	}

	op := ir.OpZExt
	switch {
	case sw > dw:
		op = ir.OpTrunc
	case signed:
		op = ir.OpSExt
	}
	inst, err := b.cast(op, v, dst, name)
	if err != nil {
		return nil, err
	}
	return inst, nil
}
