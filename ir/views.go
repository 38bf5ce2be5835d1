package ir

import "github.com/arc-language/core-builder/types"

// BinaryOp is a view over a two-operand arithmetic or logic instruction
type BinaryOp struct{ inst *Instruction }

// AsBinary returns a binary-operator view
func (i *Instruction) AsBinary() (BinaryOp, bool) {
	return BinaryOp{i}, i.op.IsBinaryOp()
}

func (b BinaryOp) Instruction() *Instruction { return b.inst }
func (b BinaryOp) LHS() Value                { return b.inst.operands[0] }
func (b BinaryOp) RHS() Value                { return b.inst.operands[1] }
func (b BinaryOp) Wrap() WrapSemantics       { return b.inst.wrap }
func (b BinaryOp) Exact() bool               { return b.inst.exact }

// CastOp is a view over a conversion instruction
type CastOp struct{ inst *Instruction }

// AsCast returns a cast view
func (i *Instruction) AsCast() (CastOp, bool) {
	return CastOp{i}, i.op.IsCast()
}

func (c CastOp) Instruction() *Instruction { return c.inst }
func (c CastOp) Source() Value             { return c.inst.operands[0] }
func (c CastOp) SourceType() types.Type    { return c.inst.operands[0].Type() }
func (c CastOp) DestType() types.Type      { return c.inst.typ }

// CompareOp is a view over icmp and fcmp
type CompareOp struct{ inst *Instruction }

// AsCompare returns a comparison view
func (i *Instruction) AsCompare() (CompareOp, bool) {
	return CompareOp{i}, i.op == OpICmp || i.op == OpFCmp
}

func (c CompareOp) Instruction() *Instruction { return c.inst }
func (c CompareOp) Predicate() Predicate      { return c.inst.pred }
func (c CompareOp) LHS() Value                { return c.inst.operands[0] }
func (c CompareOp) RHS() Value                { return c.inst.operands[1] }

// BranchOp is a view over br
type BranchOp struct{ inst *Instruction }

// AsBranch returns a branch view
func (i *Instruction) AsBranch() (BranchOp, bool) {
	return BranchOp{i}, i.op == OpBr
}

func (b BranchOp) Instruction() *Instruction { return b.inst }

// IsConditional reports whether the branch has a condition
func (b BranchOp) IsConditional() bool { return len(b.inst.operands) == 3 }

// Condition returns the branch condition of a conditional branch
func (b BranchOp) Condition() (Value, bool) {
	if !b.IsConditional() {
		return nil, false
	}
	return b.inst.operands[0], true
}

// Targets returns the destination blocks in operand order
func (b BranchOp) Targets() []*BasicBlock {
	if !b.IsConditional() {
		return []*BasicBlock{b.inst.operands[0].(*BasicBlock)}
	}
	return []*BasicBlock{b.inst.operands[1].(*BasicBlock), b.inst.operands[2].(*BasicBlock)}
}

// SwitchOp is a view over switch
type SwitchOp struct{ inst *Instruction }

// AsSwitch returns a switch view
func (i *Instruction) AsSwitch() (SwitchOp, bool) {
	return SwitchOp{i}, i.op == OpSwitch
}

func (s SwitchOp) Instruction() *Instruction { return s.inst }
func (s SwitchOp) Condition() Value          { return s.inst.operands[0] }
func (s SwitchOp) Default() *BasicBlock      { return s.inst.operands[1].(*BasicBlock) }
func (s SwitchOp) NumCases() int             { return (len(s.inst.operands) - 2) / 2 }

// Case returns case n
func (s SwitchOp) Case(n int) (*Constant, *BasicBlock, error) {
	if n < 0 || n >= s.NumCases() {
		return nil, nil, ErrIndexOutOfRange
	}
	base := 2 + 2*n
	return s.inst.operands[base].(*Constant), s.inst.operands[base+1].(*BasicBlock), nil
}

// IndirectBrOp is a view over indirectbr
type IndirectBrOp struct{ inst *Instruction }

// AsIndirectBr returns an indirect branch view
func (i *Instruction) AsIndirectBr() (IndirectBrOp, bool) {
	return IndirectBrOp{i}, i.op == OpIndirectBr
}

func (b IndirectBrOp) Instruction() *Instruction { return b.inst }
func (b IndirectBrOp) Address() Value            { return b.inst.operands[0] }
func (b IndirectBrOp) NumDestinations() int      { return len(b.inst.operands) - 1 }

// Destination returns possible target n
func (b IndirectBrOp) Destination(n int) (*BasicBlock, error) {
	if n < 0 || n >= b.NumDestinations() {
		return nil, ErrIndexOutOfRange
	}
	return b.inst.operands[n+1].(*BasicBlock), nil
}

// PhiOp is a view over phi
type PhiOp struct{ inst *Instruction }

// AsPhi returns a phi view
func (i *Instruction) AsPhi() (PhiOp, bool) {
	return PhiOp{i}, i.op == OpPhi
}

func (p PhiOp) Instruction() *Instruction { return p.inst }
func (p PhiOp) NumIncoming() int          { return len(p.inst.incoming) }

// Incoming returns incoming pair n
func (p PhiOp) Incoming(n int) (Value, *BasicBlock, error) {
	if n < 0 || n >= len(p.inst.incoming) {
		return nil, nil, ErrIndexOutOfRange
	}
	return p.inst.operands[n], p.inst.incoming[n], nil
}

// IncomingFor returns the value flowing in from block from
func (p PhiOp) IncomingFor(from *BasicBlock) (Value, bool) {
	for n, bb := range p.inst.incoming {
		if bb == from {
			return p.inst.operands[n], true
		}
	}
	return nil, false
}

// GEPOp is a view over both getelementptr forms
type GEPOp struct{ inst *Instruction }

// AsGEP returns an address computation view
func (i *Instruction) AsGEP() (GEPOp, bool) {
	return GEPOp{i}, i.op.IsGEP()
}

func (g GEPOp) Instruction() *Instruction     { return g.inst }
func (g GEPOp) InBounds() bool                { return g.inst.op == OpInBoundsGetElementPtr }
func (g GEPOp) SourceElementType() types.Type { return g.inst.elemType }
func (g GEPOp) Pointer() Value                { return g.inst.operands[0] }
func (g GEPOp) Indices() []Value              { return append([]Value(nil), g.inst.operands[1:]...) }

// CallOp is a view over call
type CallOp struct{ inst *Instruction }

// AsCall returns a call view
func (i *Instruction) AsCall() (CallOp, bool) {
	return CallOp{i}, i.op == OpCall
}

func (c CallOp) Instruction() *Instruction { return c.inst }
func (c CallOp) Callee() Value             { return c.inst.operands[0] }
func (c CallOp) Args() []Value             { return append([]Value(nil), c.inst.operands[1:]...) }
func (c CallOp) NumArgs() int              { return len(c.inst.operands) - 1 }

// CalledFunction returns the callee when it is a direct function reference
func (c CallOp) CalledFunction() (*Function, bool) {
	fn, ok := c.inst.operands[0].(*Function)
	return fn, ok
}

// Signature returns the callee's function type
func (c CallOp) Signature() *types.FunctionType {
	return c.inst.elemType.(*types.FunctionType)
}

// MemoryOp is a view over load and store
type MemoryOp struct{ inst *Instruction }

// AsMemory returns a load/store view
func (i *Instruction) AsMemory() (MemoryOp, bool) {
	return MemoryOp{i}, i.op == OpLoad || i.op == OpStore
}

func (m MemoryOp) Instruction() *Instruction { return m.inst }
func (m MemoryOp) IsStore() bool             { return m.inst.op == OpStore }
func (m MemoryOp) Align() uint32             { return m.inst.align }
func (m MemoryOp) Volatile() bool            { return m.inst.volatile }

// Pointer returns the address operand
func (m MemoryOp) Pointer() Value {
	if m.IsStore() {
		return m.inst.operands[1]
	}
	return m.inst.operands[0]
}

// StoredValue returns the value written by a store
func (m MemoryOp) StoredValue() (Value, bool) {
	if !m.IsStore() {
		return nil, false
	}
	return m.inst.operands[0], true
}
