package samples

import (
	"fmt"

	"github.com/arc-language/core-builder/internal/session"
	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

func init() {
	register(Sample{Name: "simple_return", Description: "i32 @main() returning a constant", Build: buildSimpleReturn})
	register(Sample{Name: "add", Description: "nsw addition of two parameters", Build: buildAdd})
	register(Sample{Name: "float_to_int", Description: "i64 @f(float %x) converting with fptosi", Build: buildFloatToInt})
	register(Sample{Name: "max", Description: "if/else diamond merged by a phi", Build: buildMax})
	register(Sample{Name: "sum_loop", Description: "counted loop carried in phis", Build: buildSumLoop})
	register(Sample{Name: "fibonacci", Description: "iterative fibonacci over stack slots", Build: buildFibonacci})
	register(Sample{Name: "classify", Description: "switch growing past its case hint", Build: buildClassify})
	register(Sample{Name: "point", Description: "named struct access, a private string and a variadic call", Build: buildPoint})
	register(Sample{Name: "dispatch", Description: "indirectbr over block addresses", Build: buildDispatch})
	register(Sample{Name: "lanes", Description: "vector element insert, shift and extract", Build: buildLanes})
	register(Sample{Name: "pair", Description: "aggregate built with insertvalue", Build: buildPair})
}

// define declares a function, names its parameters and positions the
// session at the end of a fresh entry block
func define(s *session.Session, name string, ret types.Type, params []types.Type, names ...string) (*ir.Function, error) {
	fn, err := s.DeclareFunction(name, ret, params, false)
	if err != nil {
		return nil, err
	}
	for i, arg := range fn.Params() {
		if i < len(names) {
			arg.SetName(names[i])
		}
	}
	if err := s.EnterFunction(fn); err != nil {
		return nil, err
	}
	entry, err := s.CreateBlock("entry")
	if err != nil {
		return nil, err
	}
	return fn, s.SetInsertBlock(entry)
}

// param resolves a parameter through the session scopes
func param(s *session.Session, name string) (ir.Value, error) {
	sym, ok := s.Scope().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("undefined name %q", name)
	}
	return sym.Value, nil
}

func params(s *session.Session, names ...string) ([]ir.Value, error) {
	out := make([]ir.Value, len(names))
	for i, n := range names {
		v, err := param(s, n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func blocks(s *session.Session, names ...string) ([]*ir.BasicBlock, error) {
	out := make([]*ir.BasicBlock, len(names))
	for i, n := range names {
		bb, err := s.CreateBlock(n)
		if err != nil {
			return nil, err
		}
		out[i] = bb
	}
	return out, nil
}

func buildSimpleReturn(s *session.Session) error {
	defer s.ExitFunction()
	if _, err := define(s, "main", s.Ctx.I32, nil); err != nil {
		return err
	}
	_, err := s.Builder.CreateRet(s.Builder.ConstInt(s.Ctx.I32, 42))
	return err
}

func buildAdd(s *session.Session) error {
	defer s.ExitFunction()
	i32 := s.Ctx.I32
	if _, err := define(s, "add", i32, []types.Type{i32, i32}, "a", "b"); err != nil {
		return err
	}
	args, err := params(s, "a", "b")
	if err != nil {
		return err
	}
	sum, err := s.Builder.CreateAdd(args[0], args[1], ir.NoSignedWrap, "sum")
	if err != nil {
		return err
	}
	_, err = s.Builder.CreateRet(sum)
	return err
}

func buildFloatToInt(s *session.Session) error {
	defer s.ExitFunction()
	if _, err := define(s, "f", s.Ctx.I64, []types.Type{s.Ctx.F32}, "x"); err != nil {
		return err
	}
	x, err := param(s, "x")
	if err != nil {
		return err
	}
	y, err := s.Builder.CreateFPToSI(x, s.Ctx.I64, "y")
	if err != nil {
		return err
	}
	_, err = s.Builder.CreateRet(y)
	return err
}

func buildMax(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i32 := s.Ctx.I32
	if _, err := define(s, "max", i32, []types.Type{i32, i32}, "a", "b"); err != nil {
		return err
	}
	args, err := params(s, "a", "b")
	if err != nil {
		return err
	}
	bbs, err := blocks(s, "if.then", "if.else", "if.end")
	if err != nil {
		return err
	}
	thenBlock, elseBlock, mergeBlock := bbs[0], bbs[1], bbs[2]

	cmp, err := b.CreateICmpSGT(args[0], args[1], "cmp")
	if err != nil {
		return err
	}
	if _, err := b.CreateCondBr(cmp, thenBlock, elseBlock); err != nil {
		return err
	}
	for _, bb := range []*ir.BasicBlock{thenBlock, elseBlock} {
		if err := s.SetInsertBlock(bb); err != nil {
			return err
		}
		if _, err := b.CreateBr(mergeBlock); err != nil {
			return err
		}
	}

	if err := s.SetInsertBlock(mergeBlock); err != nil {
		return err
	}
	phi, err := b.CreatePhi(i32, 2, "result")
	if err != nil {
		return err
	}
	if err := phi.AddIncoming(args[0], thenBlock); err != nil {
		return err
	}
	if err := phi.AddIncoming(args[1], elseBlock); err != nil {
		return err
	}
	_, err = b.CreateRet(phi)
	return err
}

func buildSumLoop(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i32 := s.Ctx.I32
	if _, err := define(s, "sum", i32, []types.Type{i32}, "n"); err != nil {
		return err
	}
	n, err := param(s, "n")
	if err != nil {
		return err
	}
	entry, _ := s.CurrentBlock()
	bbs, err := blocks(s, "loop", "exit")
	if err != nil {
		return err
	}
	loop, exit := bbs[0], bbs[1]

	if _, err := b.CreateBr(loop); err != nil {
		return err
	}

	if err := s.SetInsertBlock(loop); err != nil {
		return err
	}
	i, err := b.CreatePhi(i32, 2, "i")
	if err != nil {
		return err
	}
	acc, err := b.CreatePhi(i32, 2, "acc")
	if err != nil {
		return err
	}
	accNext, err := b.CreateAdd(acc, i, ir.WrapUnspecified, "acc.next")
	if err != nil {
		return err
	}
	iNext, err := b.CreateAdd(i, b.ConstInt(i32, 1), ir.NoUnsignedWrap, "i.next")
	if err != nil {
		return err
	}
	done, err := b.CreateICmpSGE(iNext, n, "done")
	if err != nil {
		return err
	}
	if _, err := b.CreateCondBr(done, exit, loop); err != nil {
		return err
	}

	zero := b.ConstInt(i32, 0)
	for _, in := range []struct {
		phi  *ir.Instruction
		next ir.Value
	}{{i, iNext}, {acc, accNext}} {
		if err := in.phi.AddIncoming(zero, entry); err != nil {
			return err
		}
		if err := in.phi.AddIncoming(in.next, loop); err != nil {
			return err
		}
	}

	if err := s.SetInsertBlock(exit); err != nil {
		return err
	}
	_, err = b.CreateRet(accNext)
	return err
}

func buildFibonacci(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i64 := s.Ctx.I64
	if _, err := define(s, "fib", i64, []types.Type{i64}, "n"); err != nil {
		return err
	}
	n, err := param(s, "n")
	if err != nil {
		return err
	}
	bbs, err := blocks(s, "cond", "body", "done")
	if err != nil {
		return err
	}
	cond, body, done := bbs[0], bbs[1], bbs[2]

	slots := make(map[string]ir.Value)
	for _, name := range []string{"a", "b", "i"} {
		slot, err := b.CreateAlloca(i64, name)
		if err != nil {
			return err
		}
		slots[name] = slot
		s.Scope().Define(name, slot)
	}
	for _, init := range []struct {
		slot string
		v    int64
	}{{"a", 0}, {"b", 1}, {"i", 0}} {
		if _, err := b.CreateStore(b.ConstInt(i64, init.v), slots[init.slot]); err != nil {
			return err
		}
	}
	if _, err := b.CreateBr(cond); err != nil {
		return err
	}

	if err := s.SetInsertBlock(cond); err != nil {
		return err
	}
	iv, err := b.CreateLoad(i64, slots["i"], "iv")
	if err != nil {
		return err
	}
	more, err := b.CreateICmpSLT(iv, n, "more")
	if err != nil {
		return err
	}
	if _, err := b.CreateCondBr(more, body, done); err != nil {
		return err
	}

	if err := s.SetInsertBlock(body); err != nil {
		return err
	}
	av, err := b.CreateLoad(i64, slots["a"], "av")
	if err != nil {
		return err
	}
	bv, err := b.CreateLoad(i64, slots["b"], "bv")
	if err != nil {
		return err
	}
	next, err := b.CreateAdd(av, bv, ir.WrapUnspecified, "next")
	if err != nil {
		return err
	}
	if _, err := b.CreateStore(bv, slots["a"]); err != nil {
		return err
	}
	if _, err := b.CreateStore(next, slots["b"]); err != nil {
		return err
	}
	inc, err := b.CreateAdd(iv, b.ConstInt(i64, 1), ir.NoSignedWrap, "inc")
	if err != nil {
		return err
	}
	if _, err := b.CreateStore(inc, slots["i"]); err != nil {
		return err
	}
	if _, err := b.CreateBr(cond); err != nil {
		return err
	}

	if err := s.SetInsertBlock(done); err != nil {
		return err
	}
	result, err := b.CreateLoad(i64, slots["a"], "result")
	if err != nil {
		return err
	}
	_, err = b.CreateRet(result)
	return err
}

func buildClassify(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i8, i32 := s.Ctx.I8, s.Ctx.I32
	if _, err := define(s, "classify", i32, []types.Type{i8}, "c"); err != nil {
		return err
	}
	c, err := param(s, "c")
	if err != nil {
		return err
	}
	bbs, err := blocks(s, "digit", "space", "other")
	if err != nil {
		return err
	}
	digit, space, other := bbs[0], bbs[1], bbs[2]

	sw, err := b.CreateSwitch(c, other, 2)
	if err != nil {
		return err
	}
	for _, cs := range []struct {
		ch   byte
		dest *ir.BasicBlock
	}{{'0', digit}, {'1', digit}, {' ', space}} {
		if err := sw.AddCase(b.ConstInt(i8, int64(cs.ch)), cs.dest); err != nil {
			return err
		}
	}

	for code, bb := range []*ir.BasicBlock{other, digit, space} {
		if err := s.SetInsertBlock(bb); err != nil {
			return err
		}
		if _, err := b.CreateRet(b.ConstInt(i32, int64(code))); err != nil {
			return err
		}
	}
	return nil
}

func buildPoint(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i32, i64 := s.Ctx.I32, s.Ctx.I64

	point, err := s.DeclareStruct("Point", []types.Type{i32, i32}, false)
	if err != nil {
		return err
	}
	format, err := s.DeclareGlobal("fmt", s.Ctx.ConstString("%d\n", true), true, ir.PrivateLinkage)
	if err != nil {
		return err
	}
	bytePtr, _ := s.GetType("i8*")
	printf, err := s.DeclareFunction("printf", i32, []types.Type{bytePtr}, true)
	if err != nil {
		return err
	}

	pointPtr, ok := s.GetType("Point*")
	if !ok {
		return fmt.Errorf("type Point* is not registered")
	}
	if _, err := define(s, "point_sum", i32, []types.Type{pointPtr}, "p"); err != nil {
		return err
	}
	p, err := param(s, "p")
	if err != nil {
		return err
	}

	var fields [2]ir.Value
	for idx, name := range []string{"x", "y"} {
		addr, err := b.CreateStructGEP(point, p, idx, name+".addr")
		if err != nil {
			return err
		}
		fields[idx], err = b.CreateLoad(i32, addr, name)
		if err != nil {
			return err
		}
	}
	sum, err := b.CreateAdd(fields[0], fields[1], ir.WrapUnspecified, "sum")
	if err != nil {
		return err
	}
	zero := b.ConstInt(i64, 0)
	fmtPtr, err := b.CreateInBoundsGEP(format.ValueType(), format, []ir.Value{zero, zero}, "fmt.ptr")
	if err != nil {
		return err
	}
	if _, err := b.CreateCall(printf, []ir.Value{fmtPtr, sum}, ""); err != nil {
		return err
	}
	_, err = b.CreateRet(sum)
	return err
}

func buildDispatch(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i32 := s.Ctx.I32
	fn, err := define(s, "dispatch", i32, []types.Type{s.Ctx.I1}, "first")
	if err != nil {
		return err
	}
	first, err := param(s, "first")
	if err != nil {
		return err
	}
	bbs, err := blocks(s, "one", "two")
	if err != nil {
		return err
	}

	addrs := make([]ir.Value, len(bbs))
	for i, bb := range bbs {
		addr, err := s.Ctx.BlockAddress(fn, bb)
		if err != nil {
			return err
		}
		addrs[i] = addr
	}
	target, err := b.CreateSelect(first, addrs[0], addrs[1], "target")
	if err != nil {
		return err
	}
	ib, err := b.CreateIndirectBr(target, 1)
	if err != nil {
		return err
	}
	for i, bb := range bbs {
		if err := ib.AddDestination(bb); err != nil {
			return err
		}
		if err := s.SetInsertBlock(bb); err != nil {
			return err
		}
		if _, err := b.CreateRet(b.ConstInt(i32, int64(i+1))); err != nil {
			return err
		}
	}
	return nil
}

func buildLanes(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i32 := s.Ctx.I32
	vec, err := s.Ctx.Vector(i32, 4)
	if err != nil {
		return err
	}
	if _, err := define(s, "lanes", i32, []types.Type{vec, i32}, "v", "x"); err != nil {
		return err
	}
	args, err := params(s, "v", "x")
	if err != nil {
		return err
	}

	w, err := b.CreateInsertElement(args[0], args[1], b.ConstInt(i32, 0), "w")
	if err != nil {
		return err
	}
	one := b.ConstInt(i32, 1)
	ones, err := s.Ctx.ConstVector(vec, []*ir.Constant{one, one, one, one})
	if err != nil {
		return err
	}
	doubled, err := b.CreateShl(w, ones, ir.WrapUnspecified, "doubled")
	if err != nil {
		return err
	}
	lane, err := b.CreateExtractElement(doubled, b.ConstInt(i32, 3), "lane")
	if err != nil {
		return err
	}
	_, err = b.CreateRet(lane)
	return err
}

func buildPair(s *session.Session) error {
	defer s.ExitFunction()
	b := s.Builder
	i32, i64 := s.Ctx.I32, s.Ctx.I64
	pair, err := s.Ctx.Struct([]types.Type{i64, s.Ctx.I1}, false)
	if err != nil {
		return err
	}
	if _, err := define(s, "pair", pair, []types.Type{i32}, "x"); err != nil {
		return err
	}
	x, err := param(s, "x")
	if err != nil {
		return err
	}

	wide, err := b.CreateSExt(x, i64, "wide")
	if err != nil {
		return err
	}
	neg, err := b.CreateICmpSLT(x, b.ConstInt(i32, 0), "neg")
	if err != nil {
		return err
	}
	p0, err := b.CreateInsertValue(s.Ctx.Undef(pair), wide, []uint32{0}, "p0")
	if err != nil {
		return err
	}
	p1, err := b.CreateInsertValue(p0, neg, []uint32{1}, "p1")
	if err != nil {
		return err
	}
	_, err = b.CreateRet(p1)
	return err
}
