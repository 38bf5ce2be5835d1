package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-builder/types"
)

type fixture struct {
	ctx *Context
	mod *Module
	fn  *Function
}

func newFixture(t *testing.T, params ...types.Type) *fixture {
	t.Helper()
	ctx := NewContext()
	mod := ctx.NewModule("test")
	sig, err := ctx.Function(ctx.I32, params, false)
	require.NoError(t, err)
	fn, err := mod.CreateFunction("f", sig)
	require.NoError(t, err)
	return &fixture{ctx: ctx, mod: mod, fn: fn}
}

func (f *fixture) block(t *testing.T, name string) *BasicBlock {
	t.Helper()
	bb, err := f.fn.CreateBlock(name)
	require.NoError(t, err)
	return bb
}

func (f *fixture) emit(t *testing.T, bb *BasicBlock, inst *Instruction) *Instruction {
	t.Helper()
	require.NoError(t, Insert(bb, inst, nil))
	return inst
}

func (f *fixture) br(t *testing.T, from, to *BasicBlock) *Instruction {
	t.Helper()
	return f.emit(t, from, NewInstruction(OpBr, f.ctx.Void, to))
}

func (f *fixture) ret(t *testing.T, bb *BasicBlock, v int) *Instruction {
	t.Helper()
	return f.emit(t, bb, NewInstruction(OpRet, f.ctx.Void, f.ctx.ConstInt(f.ctx.I32, uint64(v), false)))
}

func TestModuleSymbols(t *testing.T) {
	f := newFixture(t)

	_, err := f.mod.CreateFunction("f", f.fn.Signature())
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
	_, err = f.mod.CreateFunction("", f.fn.Signature())
	assert.ErrorIs(t, err, ErrInvalidOperand)
	_, err = f.mod.CreateFunction("g", nil)
	assert.ErrorIs(t, err, ErrInvalidOperand)

	g, err := f.mod.CreateGlobal("counter", f.ctx.I64, f.ctx.ConstInt(f.ctx.I64, 0, false), false)
	require.NoError(t, err)
	assert.Equal(t, "i64*", g.Type().String())
	assert.Same(t, f.ctx.I64, g.ValueType())
	_, err = f.mod.CreateGlobal("counter", f.ctx.I64, nil, false)
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
	_, err = f.mod.CreateGlobal("f", f.ctx.I64, nil, false)
	assert.ErrorIs(t, err, ErrDuplicateSymbol, "functions and globals share one namespace")
	_, err = f.mod.CreateGlobal("bad", f.ctx.I64, f.ctx.ConstInt(f.ctx.I32, 0, false), false)
	assert.ErrorIs(t, err, ErrInvalidOperand)
	_, err = f.mod.CreateGlobal("void", f.ctx.Void, nil, false)
	assert.ErrorIs(t, err, ErrInvalidOperand)

	got, ok := f.mod.Global("counter")
	require.True(t, ok)
	assert.Same(t, g, got)
	_, ok = f.mod.Function("counter")
	assert.False(t, ok)
	assert.Len(t, f.mod.Globals(), 1)
	assert.Same(t, f.ctx, f.mod.Context())
}

func TestFunctionParams(t *testing.T) {
	f := newFixture(t, NewContext().I32)
	assert.Equal(t, 1, f.fn.NumParams())

	arg, err := f.fn.Param(0)
	require.NoError(t, err)
	assert.Equal(t, 0, arg.Index())
	assert.Same(t, f.fn, arg.Parent())
	assert.True(t, arg.IsLive())
	arg.SetName("x")
	assert.Equal(t, "x", f.fn.Params()[0].Name())

	_, err = f.fn.Param(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = f.fn.Param(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDeclarationBecomesDefinition(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.fn.IsDeclaration())
	_, ok := f.fn.EntryBlock()
	assert.False(t, ok)

	entry := f.block(t, "entry")
	assert.False(t, f.fn.IsDeclaration())
	got, ok := f.fn.EntryBlock()
	require.True(t, ok)
	assert.Same(t, entry, got)
}

func TestBlockOrderAndAppend(t *testing.T) {
	f := newFixture(t)
	a := f.block(t, "a")
	b := f.block(t, "b")

	detached := f.mod.NewBlock("c")
	_, attached := detached.Parent()
	assert.False(t, attached)
	require.NoError(t, f.fn.AppendBlock(detached))
	assert.ErrorIs(t, f.fn.AppendBlock(detached), ErrBlockAlreadyAttached)

	var names []string
	for bb := range f.fn.Blocks() {
		names = append(names, bb.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 3, f.fn.NumBlocks())

	next, ok := a.Next()
	require.True(t, ok)
	assert.Same(t, b, next)
	prev, ok := detached.Prev()
	require.True(t, ok)
	assert.Same(t, b, prev)
	last, _ := f.fn.LastBlock()
	assert.Same(t, detached, last)

	other := NewContext().NewModule("other")
	foreign := other.NewBlock("x")
	assert.ErrorIs(t, f.fn.AppendBlock(foreign), ErrInvalidOperand)
}

func TestBlocksIterationSeesAppendedBlocks(t *testing.T) {
	f := newFixture(t)
	f.block(t, "first")

	var seen []string
	for bb := range f.fn.Blocks() {
		seen = append(seen, bb.Name())
		if bb.Name() == "first" {
			f.block(t, "added")
		}
	}
	assert.Equal(t, []string{"first", "added"}, seen)
}

func TestInsertPositions(t *testing.T) {
	f := newFixture(t)
	bb := f.block(t, "entry")
	one := f.ctx.ConstInt(f.ctx.I32, 1, false)

	a := f.emit(t, bb, NewInstruction(OpAdd, f.ctx.I32, one, one))
	c := f.emit(t, bb, NewInstruction(OpMul, f.ctx.I32, one, one))
	b := NewInstruction(OpSub, f.ctx.I32, one, one)
	require.NoError(t, Insert(bb, b, c))
	head := NewInstruction(OpXor, f.ctx.I32, one, one)
	require.NoError(t, Insert(bb, head, a))

	var ops []Opcode
	for inst := range bb.Instructions() {
		ops = append(ops, inst.Opcode())
	}
	assert.Equal(t, []Opcode{OpXor, OpAdd, OpSub, OpMul}, ops)
	assert.Equal(t, 4, bb.Len())
	first, _ := bb.First()
	assert.Same(t, head, first)
	lastInst, _ := bb.Last()
	assert.Same(t, c, lastInst)

	assert.ErrorIs(t, Insert(bb, a, nil), ErrInvalidOperand, "already placed")
	otherBB := f.block(t, "other")
	assert.ErrorIs(t, Insert(otherBB, NewInstruction(OpAdd, f.ctx.I32, one, one), c), ErrInvalidOperand)
	assert.ErrorIs(t, Insert(nil, b, nil), ErrInvalidOperand)

	fn, ok := a.Function()
	require.True(t, ok)
	assert.Same(t, f.fn, fn)
}

func TestTerminatorsAndEdges(t *testing.T) {
	f := newFixture(t, NewContext().I1)
	entry := f.block(t, "entry")
	left := f.block(t, "left")
	right := f.block(t, "right")
	join := f.block(t, "join")

	cond, _ := f.fn.Param(0)
	f.emit(t, entry, NewInstruction(OpBr, f.ctx.Void, cond, left, right))
	f.br(t, left, join)
	f.br(t, right, join)
	assert.False(t, join.IsTerminated())
	f.ret(t, join, 0)
	assert.True(t, join.IsTerminated())

	assert.Equal(t, []*BasicBlock{left, right}, entry.Successors())
	assert.Equal(t, []*BasicBlock{left, right}, join.Predecessors())
	assert.Empty(t, entry.Predecessors())
	assert.Empty(t, join.Successors())

	term, ok := entry.Terminator()
	require.True(t, ok)
	br, ok := term.AsBranch()
	require.True(t, ok)
	assert.True(t, br.IsConditional())
	c, ok := br.Condition()
	require.True(t, ok)
	assert.Equal(t, Value(cond), c)
}

func TestReserveOperandsIsCapped(t *testing.T) {
	ctx := NewContext()
	phi := NewInstruction(OpPhi, ctx.I32)
	phi.ReserveOperands(1 << 30)
	assert.Zero(t, phi.NumOperands())
	assert.LessOrEqual(t, cap(phi.operands), maxReservedOperands)

	phi.ReserveOperands(-1)
	assert.LessOrEqual(t, cap(phi.operands), maxReservedOperands)
}

func TestSwitchAndIndirectBr(t *testing.T) {
	f := newFixture(t, NewContext().I8)
	entry := f.block(t, "entry")
	a := f.block(t, "a")
	def := f.block(t, "def")
	x, _ := f.fn.Param(0)

	sw := f.emit(t, entry, NewInstruction(OpSwitch, f.ctx.Void, x, def))
	sw.ReserveOperands(2)
	require.NoError(t, sw.AddCase(f.ctx.ConstInt(f.ctx.I8, 1, false), a))
	require.NoError(t, sw.AddCase(f.ctx.ConstInt(f.ctx.I8, 2, false), a))
	require.NoError(t, sw.AddCase(f.ctx.ConstInt(f.ctx.I8, 3, false), def), "cases may exceed the reserved capacity")
	assert.ErrorIs(t, sw.AddCase(f.ctx.ConstInt(f.ctx.I32, 4, false), a), ErrInvalidOperand)
	assert.ErrorIs(t, sw.AddCase(f.ctx.Undef(f.ctx.I8), a), ErrInvalidOperand)

	view, ok := sw.AsSwitch()
	require.True(t, ok)
	assert.Equal(t, 3, view.NumCases())
	v, dest, err := view.Case(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.ZExtValue())
	assert.Same(t, a, dest)
	_, _, err = view.Case(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, []*BasicBlock{def, a}, sw.Successors())

	assert.ErrorIs(t, sw.AddDestination(a), ErrInvalidOperand)
	assert.ErrorIs(t, sw.AddIncoming(x, a), ErrInvalidOperand)

	ib := NewInstruction(OpIndirectBr, f.ctx.Void, f.ctx.Null(&types.PointerType{ElementType: f.ctx.I8}))
	require.NoError(t, ib.AddDestination(a))
	require.NoError(t, ib.AddDestination(def))
	ibView, ok := ib.AsIndirectBr()
	require.True(t, ok)
	assert.Equal(t, 2, ibView.NumDestinations())
	d, err := ibView.Destination(1)
	require.NoError(t, err)
	assert.Same(t, def, d)
}

func TestPhiIncoming(t *testing.T) {
	f := newFixture(t)
	entry := f.block(t, "entry")
	loop := f.block(t, "loop")

	phi := f.emit(t, loop, NewInstruction(OpPhi, f.ctx.I32))
	require.NoError(t, phi.AddIncoming(f.ctx.ConstInt(f.ctx.I32, 0, false), entry))
	require.NoError(t, phi.AddIncoming(phi, loop))
	assert.ErrorIs(t, phi.AddIncoming(f.ctx.ConstInt(f.ctx.I64, 0, false), entry), ErrInvalidOperand)

	view, ok := phi.AsPhi()
	require.True(t, ok)
	assert.Equal(t, 2, view.NumIncoming())
	v, ok := view.IncomingFor(loop)
	require.True(t, ok)
	assert.Equal(t, Value(phi), v)
	_, _, err := view.Incoming(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestOperandAccess(t *testing.T) {
	f := newFixture(t)
	one := f.ctx.ConstInt(f.ctx.I32, 1, false)
	inst := NewInstruction(OpAdd, f.ctx.I32, one, one)

	assert.Equal(t, 2, inst.NumOperands())
	op, err := inst.Operand(1)
	require.NoError(t, err)
	assert.Equal(t, Value(one), op)
	_, err = inst.Operand(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	ops := inst.Operands()
	ops[0] = nil
	first, _ := inst.Operand(0)
	assert.NotNil(t, first, "Operands returns a copy")

	inst.SetWrap(NoSignedWrap)
	bin, ok := inst.AsBinary()
	require.True(t, ok)
	assert.Equal(t, NoSignedWrap, bin.Wrap())
	_, ok = inst.AsCast()
	assert.False(t, ok)

	store := NewInstruction(OpStore, f.ctx.Void, one, f.ctx.Null(&types.PointerType{ElementType: f.ctx.I32}))
	store.SetName("ignored")
	assert.Empty(t, store.Name(), "void instructions stay unnamed")
}

func TestEraseMakesHandleStale(t *testing.T) {
	f := newFixture(t)
	bb := f.block(t, "entry")
	one := f.ctx.ConstInt(f.ctx.I32, 1, false)
	a := f.emit(t, bb, NewInstruction(OpAdd, f.ctx.I32, one, one))
	use := f.emit(t, bb, NewInstruction(OpAdd, f.ctx.I32, a, one))
	before := f.mod.LiveEntities()

	handle := a.Handle()
	require.NoError(t, a.EraseFromParent())
	assert.False(t, a.IsLive())
	assert.Equal(t, 1, bb.Len())
	assert.Equal(t, before-1, f.mod.LiveEntities())
	assert.ErrorIs(t, CheckLive(a), ErrStaleHandle)
	assert.ErrorIs(t, a.EraseFromParent(), ErrStaleHandle)

	// The slot is reused with a new generation
	reused := f.emit(t, bb, NewInstruction(OpMul, f.ctx.I32, one, one))
	assert.Equal(t, handle.Index, reused.Handle().Index)
	assert.NotEqual(t, handle.Generation, reused.Handle().Generation)
	assert.False(t, a.IsLive(), "the stale handle does not alias the new entity")

	op, _ := use.Operand(0)
	assert.False(t, op.IsLive())

	detached := NewInstruction(OpAdd, f.ctx.I32, one, one)
	assert.False(t, detached.IsLive(), "instructions are live once inserted")
}

func TestFunctionDeleteInvalidatesEverything(t *testing.T) {
	f := newFixture(t, NewContext().I32)
	bb := f.block(t, "entry")
	inst := f.ret(t, bb, 0)
	arg, _ := f.fn.Param(0)

	require.NoError(t, f.fn.Delete())
	for _, v := range []Value{f.fn, bb, inst, arg} {
		assert.False(t, v.IsLive(), "%s", v.Kind())
	}
	_, ok := f.mod.Function("f")
	assert.False(t, ok)
	assert.Empty(t, f.mod.Functions())
	assert.Zero(t, f.mod.LiveEntities())

	_, err := f.fn.CreateBlock("again")
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.ErrorIs(t, Insert(bb, NewInstruction(OpUnreachable, f.ctx.Void), nil), ErrStaleHandle)
	assert.ErrorIs(t, f.fn.Delete(), ErrStaleHandle)

	// The name can be reused
	_, err = f.mod.CreateFunction("f", f.fn.Signature())
	assert.NoError(t, err)
}

func TestPersonality(t *testing.T) {
	f := newFixture(t)
	p, err := f.mod.CreateFunction("personality", f.fn.Signature())
	require.NoError(t, err)

	require.NoError(t, f.fn.SetPersonality(p))
	got, ok := f.fn.Personality()
	require.True(t, ok)
	assert.Same(t, p, got)

	require.NoError(t, f.fn.SetPersonality(nil))
	_, ok = f.fn.Personality()
	assert.False(t, ok)

	require.NoError(t, p.Delete())
	assert.ErrorIs(t, f.fn.SetPersonality(p), ErrStaleHandle)
}

func TestValueKinds(t *testing.T) {
	f := newFixture(t, NewContext().I32)
	bb := f.block(t, "entry")
	arg, _ := f.fn.Param(0)

	assert.Equal(t, "argument", arg.Kind().String())
	assert.Equal(t, "block", bb.Kind().String())
	assert.Equal(t, "function", f.fn.Kind().String())
	assert.Equal(t, "label", bb.Type().String())
	assert.Equal(t, "i32 ()*", f.fn.Type().String())
	assert.Equal(t, "value(99)", ValueKind(99).String())
	assert.ErrorIs(t, CheckLive(nil), ErrInvalidOperand)
}

func TestCheckLiveTypedNil(t *testing.T) {
	for _, v := range []Value{
		(*BasicBlock)(nil),
		(*Instruction)(nil),
		(*Function)(nil),
		(*Argument)(nil),
		(*Constant)(nil),
		(*GlobalVariable)(nil),
	} {
		assert.ErrorIs(t, CheckLive(v), ErrInvalidOperand, "%T", v)
	}

	f := newFixture(t, NewContext().I32)
	assert.ErrorIs(t, f.fn.AppendBlock(nil), ErrInvalidOperand)
	assert.Zero(t, f.fn.NumBlocks())
}

func TestOpcodeClassification(t *testing.T) {
	assert.True(t, OpSwitch.IsTerminator())
	assert.False(t, OpPhi.IsTerminator())
	assert.True(t, OpXor.IsBinaryOp())
	assert.False(t, OpFNeg.IsBinaryOp())
	assert.True(t, OpBitCast.IsCast())
	assert.True(t, OpInBoundsGetElementPtr.IsGEP())
	assert.True(t, OpShl.HasWrapFlags())
	assert.False(t, OpLShr.HasWrapFlags())
	assert.True(t, OpSRem.HasExactFlag())
	assert.False(t, OpAdd.HasExactFlag())

	assert.True(t, ICmpSLT.IsIntPredicate())
	assert.True(t, ICmpSLT.IsSigned())
	assert.False(t, ICmpULT.IsSigned())
	assert.True(t, FCmpUNO.IsFloatPredicate())
	assert.False(t, FCmpUNO.IsIntPredicate())
	assert.Equal(t, "sge", ICmpSGE.String())
	assert.Equal(t, "one", FCmpONE.String())
	assert.Equal(t, "op(999)", Opcode(999).String())
}
