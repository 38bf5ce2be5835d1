package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/core-builder/builder"
	"github.com/arc-language/core-builder/internal/logging"
	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

func TestGetType(t *testing.T) {
	s := New("types", nil)

	tests := []struct {
		name string
		want string
	}{
		{"i32", "i32"},
		{"int", "i64"},
		{"u8", "i8"},
		{"byte", "i8"},
		{"bool", "i1"},
		{"rune", "i32"},
		{"float64", "double"},
		{"f16", "half"},
		{"void", "void"},
		{"i8*", "i8*"},
		{" int32** ", "i32**"},
	}
	for _, tt := range tests {
		got, ok := s.GetType(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, got.String(), tt.name)
	}

	_, ok := s.GetType("string")
	assert.False(t, ok)
	_, ok = s.GetType("nope*")
	assert.False(t, ok)
	_, ok = s.GetType("void*")
	assert.False(t, ok, "void has no pointer type")

	i32, _ := s.GetType("i32")
	assert.Same(t, s.Ctx.I32, i32)
}

func TestDeclareStruct(t *testing.T) {
	s := New("structs", nil)

	pt, err := s.DeclareStruct("Point", []types.Type{s.Ctx.I32, s.Ctx.I32}, false)
	require.NoError(t, err)
	got, ok := s.GetType("Point")
	require.True(t, ok)
	assert.Same(t, pt, got)

	ptr, ok := s.GetType("Point*")
	require.True(t, ok)
	assert.Equal(t, "%Point*", ptr.String())

	_, err = s.DeclareStruct("Point", nil, false)
	assert.ErrorIs(t, err, types.ErrInvalidTypeConstruction)

	s.Ctx.NamedStruct("Handle")
	_, ok = s.GetType("Handle")
	assert.True(t, ok, "structs named through the context resolve too")
}

func TestDeclareFunctionAndGlobal(t *testing.T) {
	s := New("decls", nil)

	fn, err := s.DeclareFunction("add", s.Ctx.I32, []types.Type{s.Ctx.I32, s.Ctx.I32}, false)
	require.NoError(t, err)
	sym, ok := s.Scope().Lookup("add")
	require.True(t, ok)
	assert.True(t, sym.IsConst)
	assert.Same(t, fn, sym.Value)

	_, err = s.DeclareFunction("add", s.Ctx.Void, nil, false)
	assert.ErrorIs(t, err, ir.ErrDuplicateSymbol)
	_, err = s.DeclareFunction("bad", s.Ctx.Label, nil, false)
	assert.ErrorIs(t, err, types.ErrInvalidTypeConstruction)

	g, err := s.DeclareGlobal("counter", s.Ctx.ConstInt(s.Ctx.I64, 0, false), false, ir.InternalLinkage)
	require.NoError(t, err)
	assert.Equal(t, ir.InternalLinkage, g.Linkage())
	sym, ok = s.Scope().Lookup("counter")
	require.True(t, ok)
	assert.False(t, sym.IsConst)

	msg, err := s.DeclareGlobal("msg", s.Ctx.ConstString("hi", true), true, ir.PrivateLinkage)
	require.NoError(t, err)
	assert.Equal(t, "[3 x i8]", msg.ValueType().String())
	sym, _ = s.Scope().Lookup("msg")
	assert.True(t, sym.IsConst)

	_, err = s.DeclareGlobal("empty", nil, false, ir.ExternalLinkage)
	assert.ErrorIs(t, err, ir.ErrInvalidOperand)
}

func TestScopes(t *testing.T) {
	s := New("scopes", nil)
	one := s.Ctx.ConstInt(s.Ctx.I32, 1, false)
	two := s.Ctx.ConstInt(s.Ctx.I32, 2, false)

	s.Scope().Define("x", one)
	s.PushScope()
	inner := s.Scope()
	parent, ok := inner.Parent()
	require.True(t, ok)
	assert.False(t, inner.IsDefined("x"))

	sym, ok := inner.Lookup("x")
	require.True(t, ok)
	assert.Same(t, one, sym.Value)
	_, ok = inner.LookupLocal("x")
	assert.False(t, ok)

	inner.DefineConst("x", two)
	sym, _ = inner.Lookup("x")
	assert.Same(t, two, sym.Value, "inner definitions shadow outer ones")
	inner.Define("a", one)
	assert.Equal(t, []string{"a", "x"}, inner.Names())

	s.PopScope()
	assert.Same(t, parent, s.Scope())
	s.PopScope()
	assert.Same(t, parent, s.Scope(), "the global scope is never popped")

	s.Scope().Define("nothing", nil)
	_, ok = s.Scope().Lookup("nothing")
	assert.False(t, ok)
}

func TestLookupSkipsDeletedValues(t *testing.T) {
	s := New("deleted", nil)
	fn, err := s.DeclareFunction("gone", s.Ctx.Void, nil, false)
	require.NoError(t, err)
	require.NoError(t, fn.Delete())

	_, ok := s.Scope().Lookup("gone")
	assert.False(t, ok)
	assert.True(t, s.Scope().IsDefined("gone"))
}

func TestFunctionLifecycle(t *testing.T) {
	s := New("life", nil)
	fn, err := s.DeclareFunction("id", s.Ctx.I32, []types.Type{s.Ctx.I32}, false)
	require.NoError(t, err)
	arg, _ := fn.Param(0)
	arg.SetName("v")

	_, err = s.CreateBlock("early")
	assert.Error(t, err, "blocks need a current function")

	require.NoError(t, s.EnterFunction(fn))
	assert.Error(t, s.EnterFunction(fn), "functions do not nest")
	current, ok := s.CurrentFunction()
	require.True(t, ok)
	assert.Same(t, fn, current)

	sym, ok := s.Scope().Lookup("v")
	require.True(t, ok)
	assert.Same(t, arg, sym.Value)

	entry, err := s.CreateBlock("entry")
	require.NoError(t, err)
	require.NoError(t, s.SetInsertBlock(entry))
	bb, ok := s.CurrentBlock()
	require.True(t, ok)
	assert.Same(t, entry, bb)

	_, err = s.Builder.CreateRet(arg)
	require.NoError(t, err)

	s.ExitFunction()
	_, ok = s.CurrentFunction()
	assert.False(t, ok)
	assert.False(t, s.Builder.IsPositioned())
	_, ok = s.Scope().Lookup("v")
	assert.False(t, ok, "parameters leave scope with their function")
	assert.True(t, s.Verify())
}

func TestEnterDeletedFunction(t *testing.T) {
	s := New("stale", nil)
	fn, _ := s.DeclareFunction("f", s.Ctx.Void, nil, false)
	require.NoError(t, fn.Delete())
	assert.ErrorIs(t, s.EnterFunction(fn), ir.ErrStaleHandle)
}

func TestVerifyRecordsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("", &buf, logging.LevelDebug, logging.FormatText)
	s := New("broken", logger)

	fn, err := s.DeclareFunction("f", s.Ctx.I32, nil, false)
	require.NoError(t, err)
	require.NoError(t, s.EnterFunction(fn))
	entry, _ := s.CreateBlock("entry")
	require.NoError(t, s.SetInsertBlock(entry))
	_, err = s.Builder.CreateRetVoid()
	require.NoError(t, err)
	s.ExitFunction()

	assert.False(t, s.Verify())
	assert.Equal(t, 1, s.Diagnostics.ErrorCount())
	assert.True(t, s.Logger.HasErrors())
	assert.Contains(t, buf.String(), "function returning i32 has ret void")
}

func TestWriteIRAndFingerprint(t *testing.T) {
	s := New("out", nil)
	_, err := s.DeclareFunction("ext", s.Ctx.Void, nil, false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.ll")
	require.NoError(t, s.WriteIR(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Module.String(), string(data))
	assert.Contains(t, string(data), "declare void @ext()")

	assert.Len(t, s.Fingerprint(), 64)
	assert.Equal(t, s.Module.Fingerprint(), s.Fingerprint())

	err = s.WriteIR(filepath.Join(t.TempDir(), "missing", "out.ll"))
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	s := New("closed", nil)
	s.Close()
	assert.True(t, s.Builder.IsDisposed())
	_, err := s.Builder.CreateRetVoid()
	assert.ErrorIs(t, err, builder.ErrBuilderDisposed)
	assert.Contains(t, s.Module.String(), "; ModuleID = 'closed'")
}
