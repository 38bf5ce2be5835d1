package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arc-language/core-builder/types"
)

// slotTracker assigns printable identifiers to the local values of one
// function: explicit names are uniqued, unnamed values are numbered.
type slotTracker struct {
	names map[Value]string
	used  map[string]int
	next  int
}

func newSlotTracker() *slotTracker {
	return &slotTracker{names: make(map[Value]string), used: make(map[string]int)}
}

func (st *slotTracker) assign(v Value) {
	if n := v.Name(); n != "" {
		st.names[v] = st.unique(n)
		return
	}
	st.names[v] = strconv.Itoa(st.next)
	st.next++
}

func (st *slotTracker) unique(name string) string {
	if _, taken := st.used[name]; !taken {
		st.used[name] = 0
		return name
	}
	for {
		st.used[name]++
		candidate := name + strconv.Itoa(st.used[name])
		if _, taken := st.used[candidate]; !taken {
			st.used[candidate] = 0
			return candidate
		}
	}
}

func (st *slotTracker) addBlock(bb *BasicBlock) {
	st.assign(bb)
	for inst := bb.first; inst != nil; inst = inst.next {
		if inst.typ != nil && inst.typ.Kind() != types.VoidKind {
			st.assign(inst)
		}
	}
}

func trackFunction(fn *Function) *slotTracker {
	st := newSlotTracker()
	for _, a := range fn.args {
		st.assign(a)
	}
	for bb := fn.first; bb != nil; bb = bb.next {
		st.addBlock(bb)
	}
	return st
}

type printer struct {
	slots *slotTracker
}

func printerFor(inst *Instruction) *printer {
	switch {
	case inst.parent != nil && inst.parent.parent != nil:
		return &printer{slots: trackFunction(inst.parent.parent)}
	case inst.parent != nil:
		st := newSlotTracker()
		st.addBlock(inst.parent)
		return &printer{slots: st}
	}
	st := newSlotTracker()
	if inst.typ != nil && inst.typ.Kind() != types.VoidKind {
		st.assign(inst)
	}
	return &printer{slots: st}
}

func isIdentChar(r rune) bool {
	return r == '-' || r == '$' || r == '.' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// quoteName returns name as is when it is a plain identifier or a slot number
func quoteName(name string) string {
	if name == "" {
		return `""`
	}
	if _, err := strconv.Atoi(name); err == nil {
		return name
	}
	plain := name[0] < '0' || name[0] > '9'
	for _, r := range name {
		if !isIdentChar(r) {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return `"` + escapeBytes([]byte(name)) + `"`
}

func escapeBytes(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 0x20 && b < 0x7f && b != '"' && b != '\\' {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "\\%02X", b)
		}
	}
	return sb.String()
}

func formatFloat(f float64) string {
	if !math.IsInf(f, 0) && !math.IsNaN(f) {
		s := fmt.Sprintf("%e", f)
		if back, err := strconv.ParseFloat(s, 64); err == nil && back == f {
			return s
		}
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(f))
}

func (p *printer) value(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<null operand>"
	case *Constant:
		return p.constant(x)
	case *Function:
		return "@" + quoteName(x.name)
	case *GlobalVariable:
		return "@" + quoteName(x.name)
	}
	if s, ok := p.slots.names[v]; ok {
		return "%" + quoteName(s)
	}
	return "%<badref>"
}

func (p *printer) typed(v Value) string {
	if v == nil || v.Type() == nil {
		return "<null operand>"
	}
	return v.Type().String() + " " + p.value(v)
}

func (p *printer) typedList(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = p.typed(v)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) constant(c *Constant) string {
	switch c.kind {
	case ConstInt:
		w := c.typ.(*types.IntType).BitWidth
		if w == 1 {
			if c.bits.Sign() == 0 {
				return "false"
			}
			return "true"
		}
		return signedOf(c.bits, w).String()
	case ConstFloat:
		return formatFloat(c.fval)
	case ConstNull:
		switch t := c.typ.(type) {
		case *types.IntType:
			if t.BitWidth == 1 {
				return "false"
			}
			return "0"
		case *types.FloatType:
			return formatFloat(0)
		case *types.PointerType:
			return "null"
		}
		return "zeroinitializer"
	case ConstUndef:
		return "undef"
	case ConstPoison:
		return "poison"
	case ConstAggregate:
		return p.aggregate(c)
	case ConstBlockAddress:
		bb := "%<badref>"
		if c.fn.IsLive() {
			if s, ok := trackFunction(c.fn).names[c.block]; ok {
				bb = "%" + quoteName(s)
			}
		}
		return fmt.Sprintf("blockaddress(@%s, %s)", quoteName(c.fn.name), bb)
	}
	return "<unknown constant>"
}

func (p *printer) aggregate(c *Constant) string {
	elems := make([]Value, len(c.elems))
	for i, e := range c.elems {
		elems[i] = e
	}
	switch t := c.typ.(type) {
	case *types.ArrayType:
		if it, ok := t.ElementType.(*types.IntType); ok && it.BitWidth == 8 {
			data := make([]byte, len(c.elems))
			for i, e := range c.elems {
				data[i] = byte(e.ZExtValue())
			}
			return `c"` + escapeBytes(data) + `"`
		}
		return "[" + p.typedList(elems) + "]"
	case *types.VectorType:
		return "<" + p.typedList(elems) + ">"
	case *types.StructType:
		if len(elems) == 0 {
			return "{}"
		}
		body := "{ " + p.typedList(elems) + " }"
		if t.Packed {
			return "<" + body + ">"
		}
		return body
	}
	return "<bad aggregate>"
}

func (p *printer) instruction(i *Instruction) string {
	var sb strings.Builder
	if i.typ != nil && i.typ.Kind() != types.VoidKind {
		sb.WriteString(p.value(i))
		sb.WriteString(" = ")
	}
	ops := i.operands
	switch {
	case i.op.IsBinaryOp():
		sb.WriteString(i.op.String())
		if i.op.HasWrapFlags() && i.wrap != WrapUnspecified {
			sb.WriteString(" " + i.wrap.String())
		}
		// LLVM has no exact remainder, so the flag is kept but not printed
		if i.op.HasExactFlag() && i.exact && i.op != OpURem && i.op != OpSRem {
			sb.WriteString(" exact")
		}
		fmt.Fprintf(&sb, " %s %s, %s", i.typ, p.value(ops[0]), p.value(ops[1]))
	case i.op == OpFNeg:
		sb.WriteString("fneg " + p.typed(ops[0]))
	case i.op.IsCast():
		fmt.Fprintf(&sb, "%s %s to %s", i.op, p.typed(ops[0]), i.typ)
	case i.op == OpICmp || i.op == OpFCmp:
		fmt.Fprintf(&sb, "%s %s %s, %s", i.op, i.pred, p.typed(ops[0]), p.value(ops[1]))
	case i.op == OpRet:
		if len(ops) == 0 {
			sb.WriteString("ret void")
		} else {
			sb.WriteString("ret " + p.typed(ops[0]))
		}
	case i.op == OpBr:
		sb.WriteString("br " + p.typedList(ops))
	case i.op == OpSwitch:
		fmt.Fprintf(&sb, "switch %s, %s [\n", p.typed(ops[0]), p.typed(ops[1]))
		for n := 2; n+1 < len(ops); n += 2 {
			fmt.Fprintf(&sb, "    %s, %s\n", p.typed(ops[n]), p.typed(ops[n+1]))
		}
		sb.WriteString("  ]")
	case i.op == OpIndirectBr:
		fmt.Fprintf(&sb, "indirectbr %s, [%s]", p.typed(ops[0]), p.typedList(ops[1:]))
	case i.op == OpUnreachable:
		sb.WriteString("unreachable")
	case i.op == OpAlloca:
		sb.WriteString("alloca " + i.elemType.String())
		if len(ops) > 0 {
			sb.WriteString(", " + p.typed(ops[0]))
		}
		p.writeAlign(&sb, i)
	case i.op == OpLoad:
		sb.WriteString("load ")
		if i.volatile {
			sb.WriteString("volatile ")
		}
		fmt.Fprintf(&sb, "%s, %s", i.typ, p.typed(ops[0]))
		p.writeAlign(&sb, i)
	case i.op == OpStore:
		sb.WriteString("store ")
		if i.volatile {
			sb.WriteString("volatile ")
		}
		sb.WriteString(p.typedList(ops))
		p.writeAlign(&sb, i)
	case i.op.IsGEP():
		fmt.Fprintf(&sb, "%s %s, %s", i.op, i.elemType, p.typedList(ops))
	case i.op == OpPhi:
		fmt.Fprintf(&sb, "phi %s ", i.typ)
		parts := make([]string, len(i.incoming))
		for n, bb := range i.incoming {
			parts[n] = fmt.Sprintf("[ %s, %s ]", p.value(ops[n]), p.value(bb))
		}
		sb.WriteString(strings.Join(parts, ", "))
	case i.op == OpSelect:
		sb.WriteString("select " + p.typedList(ops))
	case i.op == OpCall:
		if i.tail {
			sb.WriteString("tail ")
		}
		sig, _ := i.elemType.(*types.FunctionType)
		callType := i.typ.String()
		if sig != nil && sig.Variadic {
			callType = sig.String()
		}
		fmt.Fprintf(&sb, "call %s %s(%s)", callType, p.value(ops[0]), p.typedList(ops[1:]))
	case i.op == OpExtractValue:
		sb.WriteString("extractvalue " + p.typed(ops[0]) + p.indexList(i.indices))
	case i.op == OpInsertValue:
		sb.WriteString("insertvalue " + p.typedList(ops) + p.indexList(i.indices))
	case i.op == OpExtractElement:
		sb.WriteString("extractelement " + p.typedList(ops))
	case i.op == OpInsertElement:
		sb.WriteString("insertelement " + p.typedList(ops))
	default:
		sb.WriteString(i.op.String() + " " + p.typedList(ops))
	}
	return sb.String()
}

func (p *printer) writeAlign(sb *strings.Builder, i *Instruction) {
	if i.align != 0 {
		fmt.Fprintf(sb, ", align %d", i.align)
	}
}

func (p *printer) indexList(idx []uint32) string {
	var sb strings.Builder
	for _, n := range idx {
		fmt.Fprintf(&sb, ", %d", n)
	}
	return sb.String()
}

func (p *printer) block(sb *strings.Builder, bb *BasicBlock) {
	label := "<badref>"
	if s, ok := p.slots.names[bb]; ok {
		label = quoteName(s)
	}
	sb.WriteString(label + ":\n")
	for inst := bb.first; inst != nil; inst = inst.next {
		sb.WriteString("  " + p.instruction(inst) + "\n")
	}
}

func writeFunction(sb *strings.Builder, fn *Function) {
	p := &printer{slots: trackFunction(fn)}

	head := "define"
	if fn.IsDeclaration() {
		head = "declare"
	}
	if fn.linkage != ExternalLinkage {
		head += " " + fn.linkage.String()
	}

	params := make([]string, 0, len(fn.args)+1)
	for _, a := range fn.args {
		if fn.IsDeclaration() {
			params = append(params, a.typ.String())
		} else {
			params = append(params, p.typed(a))
		}
	}
	if fn.sig.Variadic {
		params = append(params, "...")
	}
	fmt.Fprintf(sb, "%s %s @%s(%s)", head, fn.sig.ReturnType, quoteName(fn.name), strings.Join(params, ", "))
	if fn.personality != nil {
		fmt.Fprintf(sb, " personality %s", p.typed(fn.personality))
	}
	if fn.IsDeclaration() {
		sb.WriteString("\n")
		return
	}

	sb.WriteString(" {\n")
	for bb := fn.first; bb != nil; bb = bb.next {
		if bb != fn.first {
			sb.WriteString("\n")
		}
		p.block(sb, bb)
	}
	sb.WriteString("}\n")
}

func writeGlobal(sb *strings.Builder, g *GlobalVariable) {
	p := &printer{slots: newSlotTracker()}
	kind := "global"
	if g.isConstant {
		kind = "constant"
	}
	fmt.Fprintf(sb, "@%s = ", quoteName(g.name))
	switch {
	case g.init == nil:
		fmt.Fprintf(sb, "external %s %s\n", kind, g.valueType)
		return
	case g.linkage != ExternalLinkage:
		sb.WriteString(g.linkage.String() + " ")
	}
	fmt.Fprintf(sb, "%s %s %s\n", kind, g.valueType, p.constant(g.init))
}

// String renders the instruction as it appears inside its function
func (i *Instruction) String() string {
	return printerFor(i).instruction(i)
}

// String renders the block's label and instructions
func (b *BasicBlock) String() string {
	var p *printer
	if b.parent != nil {
		p = &printer{slots: trackFunction(b.parent)}
	} else {
		st := newSlotTracker()
		st.addBlock(b)
		p = &printer{slots: st}
	}
	var sb strings.Builder
	p.block(&sb, b)
	return sb.String()
}

// String renders the function definition or declaration
func (f *Function) String() string {
	var sb strings.Builder
	writeFunction(&sb, f)
	return sb.String()
}

// String renders a constant with its type
func (c *Constant) String() string {
	p := &printer{slots: newSlotTracker()}
	return p.typed(c)
}

// String renders the whole module
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.Name)

	if structs := m.ctx.NamedStructs(); len(structs) > 0 {
		sb.WriteString("\n")
		for _, st := range structs {
			fmt.Fprintf(&sb, "%%%s = type %s\n", quoteName(st.Name), st.BodyString())
		}
	}
	if len(m.globals) > 0 {
		sb.WriteString("\n")
		for _, g := range m.globals {
			writeGlobal(&sb, g)
		}
	}
	for _, fn := range m.functions {
		sb.WriteString("\n")
		writeFunction(&sb, fn)
	}
	return sb.String()
}
