package ir

import (
	"fmt"

	"github.com/arc-language/core-builder/types"
)

// Instruction is a single tagged IR instruction: an opcode, an operand list
// and the attributes relevant to that opcode. Opcode specific accessors are
// available through the As* views.
//
// Operand layout by opcode:
//
//	br          [dest] or [cond, then, else]
//	switch      [cond, default, caseValue0, caseDest0, ...]
//	indirectbr  [address, dest0, dest1, ...]
//	call        [callee, arg0, arg1, ...]
//	phi         [value0, value1, ...] with parallel incoming blocks
//	store       [value, pointer]
//	gep         [pointer, index0, index1, ...]
type Instruction struct {
	entity
	name       string
	op         Opcode
	typ        types.Type
	operands   []Value
	parent     *BasicBlock
	prev, next *Instruction

	wrap     WrapSemantics
	exact    bool
	pred     Predicate
	indices  []uint32
	elemType types.Type
	incoming []*BasicBlock
	align    uint32
	volatile bool
	tail     bool
}

// NewInstruction creates an instruction that is not yet in any block
func NewInstruction(op Opcode, typ types.Type, operands ...Value) *Instruction {
	return &Instruction{
		op:       op,
		typ:      typ,
		operands: append([]Value(nil), operands...),
	}
}

func (i *Instruction) Type() types.Type { return i.typ }
func (i *Instruction) Kind() ValueKind  { return InstructionValue }
func (i *Instruction) Name() string     { return i.name }
func (i *Instruction) isValue()         {}

// SetName renames the instruction. Instructions of void type stay unnamed.
func (i *Instruction) SetName(name string) {
	if i.typ != nil && i.typ.Kind() == types.VoidKind {
		return
	}
	i.name = name
}

// Opcode returns the operation tag
func (i *Instruction) Opcode() Opcode { return i.op }

// IsTerminator reports whether the instruction ends a block
func (i *Instruction) IsTerminator() bool { return i.op.IsTerminator() }

// Parent returns the containing block
func (i *Instruction) Parent() (*BasicBlock, bool) { return i.parent, i.parent != nil }

// Function returns the function containing the instruction's block
func (i *Instruction) Function() (*Function, bool) {
	if i.parent == nil || i.parent.parent == nil {
		return nil, false
	}
	return i.parent.parent, true
}

// Next returns the following instruction in the block
func (i *Instruction) Next() (*Instruction, bool) { return i.next, i.next != nil }

// Prev returns the preceding instruction in the block
func (i *Instruction) Prev() (*Instruction, bool) { return i.prev, i.prev != nil }

// NumOperands returns the operand count
func (i *Instruction) NumOperands() int { return len(i.operands) }

// Operand returns operand n
func (i *Instruction) Operand(n int) (Value, error) {
	if n < 0 || n >= len(i.operands) {
		return nil, fmt.Errorf("%w: operand %d of %s (has %d)", ErrIndexOutOfRange, n, i.op, len(i.operands))
	}
	return i.operands[n], nil
}

// Operands returns a copy of the operand list
func (i *Instruction) Operands() []Value {
	return append([]Value(nil), i.operands...)
}

// maxReservedOperands caps a single ReserveOperands call
const maxReservedOperands = 1024

// ReserveOperands grows operand capacity for n more operands. It is a hint
// only; operands may still be added past it.
func (i *Instruction) ReserveOperands(n int) {
	if n <= 0 {
		return
	}
	n = min(n, maxReservedOperands)
	grown := make([]Value, len(i.operands), len(i.operands)+n)
	copy(grown, i.operands)
	i.operands = grown
}

// Wrap returns the overflow semantics of add, sub, mul and shl
func (i *Instruction) Wrap() WrapSemantics { return i.wrap }

// SetWrap sets the overflow semantics
func (i *Instruction) SetWrap(w WrapSemantics) { i.wrap = w }

// IsExact reports the exact flag of divisions, remainders and right shifts
func (i *Instruction) IsExact() bool { return i.exact }

// SetExact sets the exact flag
func (i *Instruction) SetExact(exact bool) { i.exact = exact }

// Predicate returns the comparison predicate of icmp and fcmp
func (i *Instruction) Predicate() Predicate { return i.pred }

// SetPredicate sets the comparison predicate
func (i *Instruction) SetPredicate(p Predicate) { i.pred = p }

// Indices returns the constant indices of extractvalue and insertvalue
func (i *Instruction) Indices() []uint32 { return append([]uint32(nil), i.indices...) }

// SetIndices sets the constant aggregate indices
func (i *Instruction) SetIndices(idx []uint32) { i.indices = append([]uint32(nil), idx...) }

// ElementType returns the allocated type of alloca, the loaded type of load
// and the source element type of getelementptr
func (i *Instruction) ElementType() types.Type { return i.elemType }

// SetElementType sets the element type
func (i *Instruction) SetElementType(t types.Type) { i.elemType = t }

// Align returns the alignment of alloca, load and store (0 means unspecified)
func (i *Instruction) Align() uint32 { return i.align }

// SetAlign sets the alignment
func (i *Instruction) SetAlign(a uint32) { i.align = a }

// IsVolatile reports whether a load or store is volatile
func (i *Instruction) IsVolatile() bool { return i.volatile }

// SetVolatile marks a load or store volatile
func (i *Instruction) SetVolatile(v bool) { i.volatile = v }

// IsTailCall reports the tail marker of a call
func (i *Instruction) IsTailCall() bool { return i.tail }

// SetTailCall sets the tail marker of a call
func (i *Instruction) SetTailCall(t bool) { i.tail = t }

// AddIncoming adds a (value, predecessor) pair to a phi
func (i *Instruction) AddIncoming(v Value, from *BasicBlock) error {
	if i.op != OpPhi {
		return fmt.Errorf("%w: AddIncoming on %s", ErrInvalidOperand, i.op)
	}
	if err := CheckLive(v); err != nil {
		return err
	}
	if err := CheckLive(from); err != nil {
		return err
	}
	if !v.Type().Equal(i.typ) {
		return fmt.Errorf("%w: phi of %s given incoming %s", ErrInvalidOperand, i.typ, v.Type())
	}
	i.operands = append(i.operands, v)
	i.incoming = append(i.incoming, from)
	return nil
}

// AddCase adds a case to a switch
func (i *Instruction) AddCase(value *Constant, dest *BasicBlock) error {
	if i.op != OpSwitch {
		return fmt.Errorf("%w: AddCase on %s", ErrInvalidOperand, i.op)
	}
	if value == nil || value.kind != ConstInt {
		return fmt.Errorf("%w: switch case must be an integer constant", ErrInvalidOperand)
	}
	if !value.typ.Equal(i.operands[0].Type()) {
		return fmt.Errorf("%w: case of type %s on switch over %s", ErrInvalidOperand, value.typ, i.operands[0].Type())
	}
	if err := CheckLive(dest); err != nil {
		return err
	}
	i.operands = append(i.operands, value, dest)
	return nil
}

// AddDestination adds a possible target to an indirectbr
func (i *Instruction) AddDestination(dest *BasicBlock) error {
	if i.op != OpIndirectBr {
		return fmt.Errorf("%w: AddDestination on %s", ErrInvalidOperand, i.op)
	}
	if err := CheckLive(dest); err != nil {
		return err
	}
	i.operands = append(i.operands, dest)
	return nil
}

// Successors returns the distinct blocks a terminator may branch to, in operand order
func (i *Instruction) Successors() []*BasicBlock {
	var out []*BasicBlock
	add := func(v Value) {
		bb, ok := v.(*BasicBlock)
		if !ok {
			return
		}
		for _, s := range out {
			if s == bb {
				return
			}
		}
		out = append(out, bb)
	}
	switch i.op {
	case OpBr:
		if len(i.operands) == 1 {
			add(i.operands[0])
		} else {
			add(i.operands[1])
			add(i.operands[2])
		}
	case OpSwitch:
		add(i.operands[1])
		for n := 3; n < len(i.operands); n += 2 {
			add(i.operands[n])
		}
	case OpIndirectBr:
		for _, v := range i.operands[1:] {
			add(v)
		}
	}
	return out
}

// EraseFromParent unlinks the instruction and invalidates its handle.
// Remaining uses become stale operands that the verifier reports.
func (i *Instruction) EraseFromParent() error {
	if err := CheckLive(i); err != nil {
		return err
	}
	if i.parent == nil {
		return fmt.Errorf("%w: instruction is not in a block", ErrInvalidOperand)
	}
	i.parent.unlink(i)
	i.detach()
	return nil
}
