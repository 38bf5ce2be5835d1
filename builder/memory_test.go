package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

func TestAlloca(t *testing.T) {
	f := newFixture(t)

	slot, err := f.b.CreateAlloca(f.ctx.I32, "slot")
	require.NoError(t, err)
	assert.Equal(t, "i32*", slot.Type().String())
	assert.Same(t, f.ctx.I32, slot.ElementType())
	assert.Equal(t, "%slot = alloca i32", slot.String())

	many, err := f.b.CreateArrayAlloca(f.ctx.F64, f.a, "many")
	require.NoError(t, err)
	assert.Equal(t, "%many = alloca double, i32 %a", many.String())

	_, err = f.b.CreateArrayAlloca(f.ctx.F64, f.x, "")
	assert.ErrorIs(t, err, ErrInvalidOperand, "count must be an integer")

	opaque, _ := f.ctx.NamedStruct("Opaque")
	fn, _ := f.ctx.Function(f.ctx.Void, nil, false)
	for _, bad := range []types.Type{f.ctx.Void, f.ctx.Label, opaque, fn, nil} {
		_, err = f.b.CreateAlloca(bad, "")
		assert.ErrorIs(t, err, ErrInvalidOperand, "%v", bad)
	}
	assert.Equal(t, 2, f.entry.Len())
}

func TestLoadAndStore(t *testing.T) {
	f := newFixture(t)

	ld, err := f.b.CreateLoad(f.ctx.I32, f.p, "ld")
	require.NoError(t, err)
	assert.Same(t, f.ctx.I32, ld.Type())
	mem, ok := ld.AsMemory()
	require.True(t, ok)
	assert.False(t, mem.IsStore())
	assert.Same(t, f.p, mem.Pointer())

	_, err = f.b.CreateLoad(f.ctx.F64, f.p, "")
	assert.ErrorIs(t, err, ErrInvalidOperand, "load type must match the pointee")
	_, err = f.b.CreateLoad(f.ctx.I32, f.a, "")
	assert.ErrorIs(t, err, ErrInvalidOperand, "load needs a pointer")

	st, err := f.b.CreateStore(ld, f.p)
	require.NoError(t, err)
	assert.Equal(t, "store i32 %ld, i32* %p", st.String())
	assert.Empty(t, st.Name())
	mem, _ = st.AsMemory()
	assert.True(t, mem.IsStore())
	stored, ok := mem.StoredValue()
	require.True(t, ok)
	assert.Same(t, ld, stored)

	_, err = f.b.CreateStore(f.x, f.p)
	assert.ErrorIs(t, err, ErrInvalidOperand, "stored value must match the pointee")
	_, err = f.b.CreateStore(f.a, f.bv)
	assert.ErrorIs(t, err, ErrInvalidOperand)
}

func TestGEP(t *testing.T) {
	f := newFixture(t)
	c := f.ctx
	pair, _ := c.NewStruct("Pair", []types.Type{c.I32, c.F64}, false)
	arr, _ := c.Array(c.I32, 4)

	obj, err := f.b.CreateAlloca(pair, "obj")
	require.NoError(t, err)
	buf, err := f.b.CreateAlloca(arr, "buf")
	require.NoError(t, err)

	zero64 := f.b.ConstInt(c.I64, 0)
	one32 := f.i32(1)

	field, err := f.b.CreateGEP(pair, obj, []ir.Value{zero64, one32}, "field")
	require.NoError(t, err)
	assert.Equal(t, "double*", field.Type().String())
	assert.Equal(t, "%field = getelementptr %Pair, %Pair* %obj, i64 0, i32 1", field.String())
	gep, ok := field.AsGEP()
	require.True(t, ok)
	assert.False(t, gep.InBounds())
	assert.Same(t, pair, gep.SourceElementType())
	assert.Len(t, gep.Indices(), 2)

	in, err := f.b.CreateInBoundsGEP(pair, obj, []ir.Value{zero64, one32}, "in")
	require.NoError(t, err)
	assert.Equal(t, ir.OpInBoundsGetElementPtr, in.Opcode())
	assert.NotEqual(t, field.Opcode(), in.Opcode())
	assert.True(t, in.Type().Equal(field.Type()), "both forms compute the same result type")
	assert.Equal(t, "%in = getelementptr inbounds %Pair, %Pair* %obj, i64 0, i32 1", in.String())
	gep, _ = in.AsGEP()
	assert.True(t, gep.InBounds())

	plainStep, err := f.b.CreateGEP(arr, buf, []ir.Value{zero64, f.a}, "p")
	require.NoError(t, err)
	inStep, err := f.b.CreateInBoundsGEP(arr, buf, []ir.Value{zero64, f.a}, "q")
	require.NoError(t, err)
	assert.True(t, inStep.Type().Equal(plainStep.Type()))

	elem, err := f.b.CreateGEP(arr, buf, []ir.Value{zero64, f.a}, "elem")
	require.NoError(t, err, "array indices may be dynamic")
	assert.Equal(t, "i32*", elem.Type().String())

	step, err := f.b.CreateGEP(c.I32, f.p, []ir.Value{f.a}, "step")
	require.NoError(t, err)
	assert.Equal(t, "i32*", step.Type().String())

	errs := []struct {
		name    string
		elem    types.Type
		ptr     ir.Value
		indices []ir.Value
	}{
		{"dynamic struct index", pair, obj, []ir.Value{zero64, f.a}},
		{"i64 struct index", pair, obj, []ir.Value{zero64, zero64}},
		{"float index", arr, buf, []ir.Value{zero64, f.x}},
		{"element mismatch", arr, obj, []ir.Value{zero64}},
		{"not a pointer", c.I32, f.a, []ir.Value{zero64}},
		{"into a scalar", c.I32, f.p, []ir.Value{zero64, zero64}},
	}
	for _, tt := range errs {
		_, err := f.b.CreateGEP(tt.elem, tt.ptr, tt.indices, "")
		assert.ErrorIs(t, err, ErrInvalidOperand, tt.name)
	}

	_, err = f.b.CreateGEP(pair, obj, []ir.Value{zero64, f.i32(2)}, "")
	assert.ErrorIs(t, err, ir.ErrIndexOutOfRange)
}

func TestStructGEP(t *testing.T) {
	f := newFixture(t)
	c := f.ctx
	point, _ := c.NewStruct("Point", []types.Type{c.I32, c.I32}, false)
	far, _ := c.Pointer(point, 2)

	obj, err := f.b.CreateAlloca(point, "obj")
	require.NoError(t, err)
	y, err := f.b.CreateStructGEP(point, obj, 1, "y")
	require.NoError(t, err)
	assert.Equal(t, "%y = getelementptr inbounds %Point, %Point* %obj, i32 0, i32 1", y.String())

	yFar, err := f.b.CreateStructGEP(point, c.NullPointer(far), 0, "x.far")
	require.NoError(t, err)
	assert.Equal(t, "i32 addrspace(2)*", yFar.Type().String(), "address space carries through")

	_, err = f.b.CreateStructGEP(point, obj, 2, "")
	assert.ErrorIs(t, err, ir.ErrIndexOutOfRange)
	_, err = f.b.CreateStructGEP(nil, obj, 0, "")
	assert.ErrorIs(t, err, ErrInvalidOperand)
}
