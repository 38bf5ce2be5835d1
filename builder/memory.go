package builder

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

func sized(t types.Type) error {
	if !types.IsFirstClass(t) {
		return fmt.Errorf("%w: %v has no size", ErrInvalidOperand, t)
	}
	if st, ok := t.(*types.StructType); ok && st.IsOpaque() {
		return fmt.Errorf("%w: opaque struct %s has no size", ErrInvalidOperand, st)
	}
	return nil
}

// CreateAlloca reserves stack space for one value of type t
func (b *Builder) CreateAlloca(t types.Type, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := sized(t); err != nil {
		return nil, err
	}
	inst := ir.NewInstruction(ir.OpAlloca, &types.PointerType{ElementType: t})
	inst.SetElementType(t)
	return b.insert(inst, name)
}

// CreateArrayAlloca reserves stack space for count values of type t
func (b *Builder) CreateArrayAlloca(t types.Type, count ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := sized(t); err != nil {
		return nil, err
	}
	if err := live(count); err != nil {
		return nil, err
	}
	if !types.IsInteger(count.Type()) {
		return nil, fmt.Errorf("%w: alloca count must be an integer, got %s", ErrInvalidOperand, count.Type())
	}
	inst := ir.NewInstruction(ir.OpAlloca, &types.PointerType{ElementType: t}, count)
	inst.SetElementType(t)
	return b.insert(inst, name)
}

func pointee(op string, ptr ir.Value) (*types.PointerType, error) {
	pt, ok := ptr.Type().(*types.PointerType)
	if !ok {
		return nil, fmt.Errorf("%w: %s needs a pointer operand, got %s", ErrInvalidOperand, op, ptr.Type())
	}
	return pt, nil
}

// CreateLoad reads a value of type t through ptr
func (b *Builder) CreateLoad(t types.Type, ptr ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(ptr); err != nil {
		return nil, err
	}
	pt, err := pointee("load", ptr)
	if err != nil {
		return nil, err
	}
	if err := sized(t); err != nil {
		return nil, err
	}
	if !pt.ElementType.Equal(t) {
		return nil, fmt.Errorf("%w: load of %s through %s", ErrInvalidOperand, t, pt)
	}
	inst := ir.NewInstruction(ir.OpLoad, t, ptr)
	inst.SetElementType(t)
	return b.insert(inst, name)
}

// CreateStore writes v through ptr
func (b *Builder) CreateStore(v, ptr ir.Value) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(v, ptr); err != nil {
		return nil, err
	}
	pt, err := pointee("store", ptr)
	if err != nil {
		return nil, err
	}
	if !pt.ElementType.Equal(v.Type()) {
		return nil, fmt.Errorf("%w: store of %s through %s", ErrInvalidOperand, v.Type(), pt)
	}
	return b.insert(ir.NewInstruction(ir.OpStore, b.ctx.Void, v, ptr), "")
}

// gepResultType walks the indices from the pointer's element type. The
// first index steps over the pointer; struct indices must be constant i32.
func gepResultType(elem types.Type, indices []ir.Value) (types.Type, error) {
	cur := elem
	for n, idx := range indices {
		if !types.IsInteger(idx.Type()) {
			return nil, fmt.Errorf("%w: gep index %d must be an integer, got %s", ErrInvalidOperand, n, idx.Type())
		}
		if n == 0 {
			continue
		}
		switch t := cur.(type) {
		case *types.StructType:
			c, ok := idx.(*ir.Constant)
			if !ok || c.ConstantKind() != ir.ConstInt || types.ScalarBitWidth(c.Type()) != 32 {
				return nil, fmt.Errorf("%w: struct index %d must be a constant i32", ErrInvalidOperand, n)
			}
			field, err := t.Field(int(c.ZExtValue()))
			if err != nil {
				return nil, err
			}
			cur = field
		case *types.ArrayType:
			cur = t.ElementType
		case *types.VectorType:
			cur = t.ElementType
		default:
			return nil, fmt.Errorf("%w: gep index %d steps into non-aggregate %s", ErrInvalidOperand, n, cur)
		}
	}
	return cur, nil
}

func (b *Builder) gep(op ir.Opcode, elem types.Type, ptr ir.Value, indices []ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(ptr); err != nil {
		return nil, err
	}
	if err := live(indices...); err != nil {
		return nil, err
	}
	pt, err := pointee(op.String(), ptr)
	if err != nil {
		return nil, err
	}
	if elem == nil || !pt.ElementType.Equal(elem) {
		return nil, fmt.Errorf("%w: %s over %v through %s", ErrInvalidOperand, op, elem, pt)
	}
	result, err := gepResultType(elem, indices)
	if err != nil {
		return nil, err
	}

	operands := append([]ir.Value{ptr}, indices...)
	inst := ir.NewInstruction(op, &types.PointerType{ElementType: result, AddressSpace: pt.AddressSpace}, operands...)
	inst.SetElementType(elem)
	return b.insert(inst, name)
}

// CreateGEP computes the address of an element of the aggregate elem that
// ptr points to
func (b *Builder) CreateGEP(elem types.Type, ptr ir.Value, indices []ir.Value, name string) (*ir.Instruction, error) {
	return b.gep(ir.OpGetElementPtr, elem, ptr, indices, name)
}

// CreateInBoundsGEP is CreateGEP whose result is poison when the address
// leaves the allocated object
func (b *Builder) CreateInBoundsGEP(elem types.Type, ptr ir.Value, indices []ir.Value, name string) (*ir.Instruction, error) {
	return b.gep(ir.OpInBoundsGetElementPtr, elem, ptr, indices, name)
}

// CreateStructGEP returns the address of field idx of the struct ptr points to
func (b *Builder) CreateStructGEP(st *types.StructType, ptr ir.Value, idx int, name string) (*ir.Instruction, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: nil struct type", ErrInvalidOperand)
	}
	if _, err := st.Field(idx); err != nil {
		return nil, err
	}
	indices := []ir.Value{
		b.ctx.ConstInt(b.ctx.I32, 0, false),
		b.ctx.ConstInt(b.ctx.I32, uint64(idx), false),
	}
	return b.gep(ir.OpInBoundsGetElementPtr, st, ptr, indices, name)
}
