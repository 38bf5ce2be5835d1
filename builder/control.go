package builder

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

// CreateRet returns v from the current function
func (b *Builder) CreateRet(v ir.Value) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(v); err != nil {
		return nil, err
	}
	if !types.IsFirstClass(v.Type()) {
		return nil, fmt.Errorf("%w: cannot return a value of type %s", ErrInvalidOperand, v.Type())
	}
	return b.insert(ir.NewInstruction(ir.OpRet, b.ctx.Void, v), "")
}

// CreateRetVoid returns from a void function
func (b *Builder) CreateRetVoid() (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.insert(ir.NewInstruction(ir.OpRet, b.ctx.Void), "")
}

// CreateBr jumps unconditionally to dest
func (b *Builder) CreateBr(dest *ir.BasicBlock) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(dest); err != nil {
		return nil, err
	}
	return b.insert(ir.NewInstruction(ir.OpBr, b.ctx.Void, dest), "")
}

// CreateCondBr jumps to then when cond is true and to els otherwise
func (b *Builder) CreateCondBr(cond ir.Value, then, els *ir.BasicBlock) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(cond, then, els); err != nil {
		return nil, err
	}
	if !cond.Type().Equal(b.ctx.I1) {
		return nil, fmt.Errorf("%w: branch condition must be i1, got %s", ErrInvalidOperand, cond.Type())
	}
	return b.insert(ir.NewInstruction(ir.OpBr, b.ctx.Void, cond, then, els), "")
}

// CreateSwitch emits a multi-way branch on an integer. expectedCases only
// sizes the case list; AddCase may grow it past that.
func (b *Builder) CreateSwitch(cond ir.Value, def *ir.BasicBlock, expectedCases int) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(cond, def); err != nil {
		return nil, err
	}
	if !types.IsInteger(cond.Type()) {
		return nil, fmt.Errorf("%w: switch condition must be an integer, got %s", ErrInvalidOperand, cond.Type())
	}
	inst := ir.NewInstruction(ir.OpSwitch, b.ctx.Void, cond, def)
	inst.ReserveOperands(2 * expectedCases)
	return b.insert(inst, "")
}

// CreateIndirectBr jumps to the block address addr. expectedDests only
// sizes the destination list; AddDestination may grow it past that.
func (b *Builder) CreateIndirectBr(addr ir.Value, expectedDests int) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(addr); err != nil {
		return nil, err
	}
	if !types.IsPointer(addr.Type()) {
		return nil, fmt.Errorf("%w: indirectbr address must be a pointer, got %s", ErrInvalidOperand, addr.Type())
	}
	inst := ir.NewInstruction(ir.OpIndirectBr, b.ctx.Void, addr)
	inst.ReserveOperands(expectedDests)
	return b.insert(inst, "")
}

// CreateUnreachable marks the end of a block control never reaches
func (b *Builder) CreateUnreachable() (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.insert(ir.NewInstruction(ir.OpUnreachable, b.ctx.Void), "")
}

// CreatePhi emits an empty phi of type t; incoming pairs are added with
// AddIncoming. expectedIncoming only sizes the list.
func (b *Builder) CreatePhi(t types.Type, expectedIncoming int, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if !types.IsFirstClass(t) {
		return nil, fmt.Errorf("%w: phi of type %v", ErrInvalidOperand, t)
	}
	inst := ir.NewInstruction(ir.OpPhi, t)
	inst.ReserveOperands(expectedIncoming)
	return b.insert(inst, name)
}

// CreateSelect picks t or f based on cond. A vector condition selects lane-wise.
func (b *Builder) CreateSelect(cond, t, f ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(cond, t, f); err != nil {
		return nil, err
	}
	if !t.Type().Equal(f.Type()) {
		return nil, fmt.Errorf("%w: select arms differ: %s and %s", ErrInvalidOperand, t.Type(), f.Type())
	}
	ct := cond.Type()
	if !types.ScalarType(ct).Equal(b.ctx.I1) {
		return nil, fmt.Errorf("%w: select condition must be i1, got %s", ErrInvalidOperand, ct)
	}
	if n := types.VectorLen(ct); n > 0 && n != types.VectorLen(t.Type()) {
		return nil, fmt.Errorf("%w: select condition %s does not match %s", ErrInvalidOperand, ct, t.Type())
	}
	return b.insert(ir.NewInstruction(ir.OpSelect, t.Type(), cond, t, f), name)
}

// CreateCall calls callee, a function or a pointer to a function. Argument
// count and types must match the signature; a variadic signature accepts
// extra first class arguments.
func (b *Builder) CreateCall(callee ir.Value, args []ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(callee); err != nil {
		return nil, err
	}
	if err := live(args...); err != nil {
		return nil, err
	}

	pt, ok := callee.Type().(*types.PointerType)
	var sig *types.FunctionType
	if ok {
		sig, ok = pt.ElementType.(*types.FunctionType)
	}
	if !ok {
		return nil, fmt.Errorf("%w: callee of type %s is not a function", ErrInvalidOperand, callee.Type())
	}

	fixed := len(sig.ParamTypes)
	if len(args) < fixed || (len(args) > fixed && !sig.Variadic) {
		return nil, fmt.Errorf("%w: call to %s with %d arguments", ErrInvalidOperand, sig, len(args))
	}
	for i, a := range args {
		if i < fixed {
			if !a.Type().Equal(sig.ParamTypes[i]) {
				return nil, fmt.Errorf("%w: argument %d is %s, want %s", ErrInvalidOperand, i, a.Type(), sig.ParamTypes[i])
			}
		} else if !types.IsFirstClass(a.Type()) {
			return nil, fmt.Errorf("%w: variadic argument %d of type %s", ErrInvalidOperand, i, a.Type())
		}
	}

	inst := ir.NewInstruction(ir.OpCall, sig.ReturnType, append([]ir.Value{callee}, args...)...)
	inst.SetElementType(sig)
	return b.insert(inst, name)
}
