package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
	"github.com/arc-language/core-builder/verifier"
)

func TestCasts(t *testing.T) {
	f := newFixture(t)
	c := f.ctx
	b := f.b

	i8ptr, _ := c.Pointer(c.I8, 0)
	far, _ := c.Pointer(c.I32, 1)
	v4i32, _ := c.Vector(c.I32, 4)
	v4i64, _ := c.Vector(c.I64, 4)
	v2i64, _ := c.Vector(c.I64, 2)
	v2f64, _ := c.Vector(c.F64, 2)
	v2i32, _ := c.Vector(c.I32, 2)
	v4i16, _ := c.Vector(c.I16, 4)
	v2ptr, _ := c.Vector(i8ptr, 2)
	v4ptr, _ := c.Vector(i8ptr, 4)

	wide := b.ConstInt(c.I64, 7)
	single := b.ConstFloat(c.F32, 1.5)
	farPtr := c.NullPointer(far)
	lanes := c.Undef(v4i32)

	tests := []struct {
		name   string
		create func(ir.Value, types.Type, string) (*ir.Instruction, error)
		v      ir.Value
		dst    types.Type
		ok     bool
	}{
		{"trunc", b.CreateTrunc, wide, c.I32, true},
		{"trunc to wider", b.CreateTrunc, f.a, c.I64, false},
		{"trunc same width", b.CreateTrunc, f.a, c.I32, false},
		{"trunc float", b.CreateTrunc, f.x, c.I32, false},
		{"zext", b.CreateZExt, f.a, c.I64, true},
		{"zext to narrower", b.CreateZExt, wide, c.I32, false},
		{"zext same width", b.CreateZExt, f.a, c.I32, false},
		{"sext", b.CreateSExt, f.a, c.I64, true},
		{"sext vector", b.CreateSExt, lanes, v4i64, true},
		{"sext lane count", b.CreateSExt, lanes, v2i64, false},
		{"sext to float", b.CreateSExt, f.a, c.F64, false},
		{"fptrunc", b.CreateFPTrunc, f.x, c.F32, true},
		{"fptrunc to wider", b.CreateFPTrunc, single, c.F64, false},
		{"fpext", b.CreateFPExt, single, c.F64, true},
		{"fpext to narrower", b.CreateFPExt, f.x, c.F32, false},
		{"fptosi", b.CreateFPToSI, f.x, c.I32, true},
		{"fptosi from int", b.CreateFPToSI, f.a, c.I32, false},
		{"fptoui", b.CreateFPToUI, single, c.I8, true},
		{"sitofp", b.CreateSIToFP, f.a, c.F64, true},
		{"uitofp", b.CreateUIToFP, wide, c.F32, true},
		{"uitofp to int", b.CreateUIToFP, wide, c.I32, false},
		{"ptrtoint", b.CreatePtrToInt, f.p, c.I64, true},
		{"ptrtoint from int", b.CreatePtrToInt, f.a, c.I64, false},
		{"inttoptr", b.CreateIntToPtr, wide, i8ptr, true},
		{"inttoptr to int", b.CreateIntToPtr, wide, c.I32, false},
		{"bitcast int to float", b.CreateBitCast, f.a, c.F32, true},
		{"bitcast vector lanes", b.CreateBitCast, c.Undef(v2f64), v4i32, true},
		{"bitcast vector to scalar", b.CreateBitCast, c.Undef(v2i32), c.I64, true},
		{"bitcast vector to narrower lanes", b.CreateBitCast, c.Undef(v2i32), v4i16, true},
		{"bitcast vector size", b.CreateBitCast, c.Undef(v2i32), v4i32, false},
		{"bitcast pointer vector lanes", b.CreateBitCast, c.Undef(v2ptr), v4ptr, false},
		{"zext vector lanes", b.CreateZExt, c.Undef(v4i16), v2i64, false},
		{"bitcast width", b.CreateBitCast, f.a, c.F64, false},
		{"bitcast pointer", b.CreateBitCast, f.p, i8ptr, true},
		{"bitcast address space", b.CreateBitCast, farPtr, i8ptr, false},
		{"bitcast pointer to int", b.CreateBitCast, f.p, c.I64, false},
		{"nil destination", b.CreateZExt, f.a, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.entry.Len()
			inst, err := tt.create(tt.v, tt.dst, "cast")
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidOperand)
				assert.Nil(t, inst)
				assert.Equal(t, before, f.entry.Len())
				return
			}
			require.NoError(t, err)
			assert.True(t, inst.Type().Equal(tt.dst))
			view, ok := inst.AsCast()
			require.True(t, ok)
			assert.Same(t, tt.v, view.Source())
			assert.True(t, view.DestType().Equal(tt.dst))
		})
	}
}

func TestFPToSIFunction(t *testing.T) {
	ctx := ir.NewContext()
	sig, _ := ctx.Function(ctx.I64, []types.Type{ctx.F32}, false)
	fn, err := ctx.NewModule("m").CreateFunction("f", sig)
	require.NoError(t, err)
	entry, _ := fn.CreateBlock("entry")
	x, _ := fn.Param(0)
	x.SetName("x")

	b := New(ctx)
	require.NoError(t, b.PositionAtEnd(entry))
	y, err := b.CreateFPToSI(x, ctx.I64, "y")
	require.NoError(t, err)
	ret, err := b.CreateRet(y)
	require.NoError(t, err)

	assert.Equal(t, `define i64 @f(float %x) {
entry:
  %y = fptosi float %x to i64
  ret i64 %y
}
`, fn.String())
	term, ok := entry.Terminator()
	require.True(t, ok)
	assert.Same(t, ret, term)
	assert.True(t, verifier.VerifyFunction(fn).OK())
}

func TestIntCast(t *testing.T) {
	f := newFixture(t)

	same, err := f.b.CreateIntCast(f.a, f.ctx.I32, true, "same")
	require.NoError(t, err)
	assert.Same(t, f.a, same, "equal widths emit nothing")
	assert.Zero(t, f.entry.Len())

	narrow, err := f.b.CreateIntCast(f.a, f.ctx.I8, true, "narrow")
	require.NoError(t, err)
	assert.Equal(t, ir.OpTrunc, narrow.(*ir.Instruction).Opcode())

	signed, err := f.b.CreateIntCast(f.a, f.ctx.I64, true, "s")
	require.NoError(t, err)
	assert.Equal(t, ir.OpSExt, signed.(*ir.Instruction).Opcode())

	unsigned, err := f.b.CreateIntCast(f.a, f.ctx.I64, false, "u")
	require.NoError(t, err)
	assert.Equal(t, ir.OpZExt, unsigned.(*ir.Instruction).Opcode())

	_, err = f.b.CreateIntCast(f.x, f.ctx.I64, true, "")
	assert.ErrorIs(t, err, ErrInvalidOperand)

	v4, _ := f.ctx.Vector(f.ctx.I32, 4)
	_, err = f.b.CreateIntCast(f.a, v4, true, "")
	assert.ErrorIs(t, err, ErrInvalidOperand, "lane counts must match")
	assert.Equal(t, 3, f.entry.Len())
}
