// Package verifier checks the structural well-formedness of completed
// functions: terminator placement, phi shape, operand liveness and
// ownership, and SSA dominance. It reports problems as diagnostics and
// never panics on malformed IR.
package verifier

import (
	"errors"
	"fmt"

	"github.com/arc-language/core-builder/diagnostics"
	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

// ErrInvalidIR is wrapped by Result.Err when verification failed
var ErrInvalidIR = errors.New("invalid IR")

// Result is the outcome of a verification run
type Result struct {
	engine *diagnostics.DiagnosticEngine
}

// OK reports whether no errors were found. Warnings do not fail verification.
func (r *Result) OK() bool { return !r.engine.HasErrors() }

// Diagnostics returns every finding in report order
func (r *Result) Diagnostics() []diagnostics.Diagnostic { return r.engine.Diagnostics() }

// Errors returns the error findings
func (r *Result) Errors() []diagnostics.Diagnostic { return r.filter(diagnostics.SeverityError) }

// Warnings returns the warning findings
func (r *Result) Warnings() []diagnostics.Diagnostic { return r.filter(diagnostics.SeverityWarning) }

func (r *Result) filter(s diagnostics.Severity) []diagnostics.Diagnostic {
	var out []diagnostics.Diagnostic
	for _, d := range r.engine.Diagnostics() {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Err returns nil on success, otherwise an error describing the first problem
func (r *Result) Err() error {
	errs := r.Errors()
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%w: %s", ErrInvalidIR, errs[0])
	}
	return fmt.Errorf("%w: %s (and %d more)", ErrInvalidIR, errs[0], len(errs)-1)
}

// ReportTo copies the findings into e
func (r *Result) ReportTo(e *diagnostics.DiagnosticEngine) { e.Merge(r.engine) }

// VerifyModule verifies every function of m
func VerifyModule(m *ir.Module) *Result {
	res := &Result{engine: diagnostics.NewDiagnosticEngine()}
	for _, fn := range m.Functions() {
		(&checker{fn: fn, diag: res.engine}).run()
	}
	for _, g := range m.Globals() {
		if init, ok := g.Initializer(); ok && !init.IsLive() {
			res.engine.ErrorAt(diagnostics.At(g.Name()), "initializer refers to a deleted block")
		}
	}
	return res
}

// VerifyFunction verifies a single function
func VerifyFunction(fn *ir.Function) *Result {
	res := &Result{engine: diagnostics.NewDiagnosticEngine()}
	(&checker{fn: fn, diag: res.engine}).run()
	return res
}

type checker struct {
	fn     *ir.Function
	diag   *diagnostics.DiagnosticEngine
	dom    *DomTree
	labels map[*ir.BasicBlock]string
	pos    map[*ir.Instruction]int
}

func (c *checker) run() {
	if c.fn == nil {
		c.diag.Error("nil function")
		return
	}
	if !c.fn.IsLive() {
		c.diag.ErrorAt(diagnostics.At(c.fn.Name()), "function was deleted")
		return
	}
	if p, ok := c.fn.Personality(); ok && !p.IsLive() {
		c.diag.ErrorAt(diagnostics.At(c.fn.Name()), "personality function was deleted")
	}
	if c.fn.IsDeclaration() {
		return
	}

	c.labels = make(map[*ir.BasicBlock]string)
	c.pos = make(map[*ir.Instruction]int)
	n := 0
	for bb := range c.fn.Blocks() {
		label := bb.Name()
		if label == "" {
			label = fmt.Sprintf("<block %d>", n)
		}
		c.labels[bb] = label
		i := 0
		for inst := range bb.Instructions() {
			c.pos[inst] = i
			i++
		}
		n++
	}
	c.dom = Dominators(c.fn)

	entry, _ := c.fn.EntryBlock()
	if preds := entry.Predecessors(); len(preds) > 0 {
		c.diag.ErrorAt(c.block(entry), "entry block has %d predecessor(s)", len(preds))
	}
	for bb := range c.fn.Blocks() {
		c.checkBlock(bb)
	}
}

func (c *checker) block(bb *ir.BasicBlock) diagnostics.Location {
	return diagnostics.InBlock(c.fn.Name(), c.labels[bb])
}

func (c *checker) at(inst *ir.Instruction) diagnostics.Location {
	bb, _ := inst.Parent()
	return diagnostics.AtInstruction(c.fn.Name(), c.labels[bb], c.pos[inst])
}

func (c *checker) checkBlock(bb *ir.BasicBlock) {
	if bb.Len() == 0 {
		c.diag.ErrorAt(c.block(bb), "block is empty")
		return
	}
	if !c.dom.Reachable(bb) {
		c.diag.WarningAt(c.block(bb), "block is unreachable from the entry block")
	}

	last, _ := bb.Last()
	if !last.IsTerminator() {
		c.diag.ErrorAt(c.at(last), "block does not end in a terminator")
	}
	seenNonPhi := false
	for inst := range bb.Instructions() {
		if inst.IsTerminator() && inst != last {
			c.diag.ErrorAt(c.at(inst), "terminator %s is followed by further instructions", inst.Opcode())
		}
		if inst.Opcode() == ir.OpPhi {
			if seenNonPhi {
				c.diag.ErrorAt(c.at(inst), "phi is not grouped at the top of the block")
			}
		} else {
			seenNonPhi = true
		}
		c.checkInstruction(bb, inst)
	}
}

func (c *checker) checkInstruction(bb *ir.BasicBlock, inst *ir.Instruction) {
	if !inst.IsLive() {
		c.diag.ErrorAt(c.at(inst), "instruction was erased but is still linked")
		return
	}
	ok := true
	for n, v := range inst.Operands() {
		if !c.checkOperand(inst, n, v) {
			ok = false
		}
	}
	if phi, isPhi := inst.AsPhi(); isPhi {
		for n := 0; n < phi.NumIncoming(); n++ {
			_, from, _ := phi.Incoming(n)
			if !c.checkOperand(inst, n, from) {
				ok = false
			}
		}
	}
	if !ok {
		return
	}

	switch inst.Opcode() {
	case ir.OpRet:
		c.checkRet(inst)
	case ir.OpSwitch:
		c.checkSwitch(inst)
	case ir.OpPhi:
		c.checkPhi(bb, inst)
	}
	c.checkDominance(bb, inst)
}

// checkOperand reports stale operands and values owned by another function
func (c *checker) checkOperand(inst *ir.Instruction, n int, v ir.Value) bool {
	if v == nil {
		c.diag.ErrorAt(c.at(inst), "operand %d is missing", n)
		return false
	}
	if !v.IsLive() {
		c.diag.ErrorAt(c.at(inst), "operand %d refers to a deleted %s", n, v.Kind())
		return false
	}
	var owner *ir.Function
	switch x := v.(type) {
	case *ir.Argument:
		owner = x.Parent()
	case *ir.Instruction:
		fn, ok := x.Function()
		if !ok {
			c.diag.ErrorAt(c.at(inst), "operand %d is an instruction that is not in a function", n)
			return false
		}
		owner = fn
	case *ir.BasicBlock:
		fn, ok := x.Parent()
		if !ok {
			c.diag.ErrorAt(c.at(inst), "operand %d is a detached block", n)
			return false
		}
		owner = fn
	default:
		return true
	}
	if owner != c.fn {
		c.diag.ErrorAt(c.at(inst), "operand %d belongs to @%s", n, owner.Name())
		return false
	}
	return true
}

func (c *checker) checkRet(inst *ir.Instruction) {
	want := c.fn.ReturnType()
	if want.Kind() == types.VoidKind {
		if inst.NumOperands() != 0 {
			c.diag.ErrorAt(c.at(inst), "void function returns a value")
		}
		return
	}
	if inst.NumOperands() == 0 {
		c.diag.ErrorAt(c.at(inst), "function returning %s has ret void", want)
		return
	}
	v, _ := inst.Operand(0)
	if !v.Type().Equal(want) {
		c.diag.ErrorAt(c.at(inst), "returns %s from a function returning %s", v.Type(), want)
	}
}

func (c *checker) checkSwitch(inst *ir.Instruction) {
	sw, _ := inst.AsSwitch()
	cond := sw.Condition().Type()
	seen := make(map[string]bool)
	for n := 0; n < sw.NumCases(); n++ {
		val, _, _ := sw.Case(n)
		if !val.Type().Equal(cond) {
			c.diag.ErrorAt(c.at(inst), "case %d has type %s, switch is over %s", n, val.Type(), cond)
			continue
		}
		bits, _ := val.Bits()
		key := bits.String()
		if seen[key] {
			c.diag.ErrorAt(c.at(inst), "duplicate case value %s", key)
		}
		seen[key] = true
	}
}

func (c *checker) checkPhi(bb *ir.BasicBlock, inst *ir.Instruction) {
	phi, _ := inst.AsPhi()
	if phi.NumIncoming() == 0 {
		c.diag.ErrorAt(c.at(inst), "phi has no incoming values")
		return
	}
	preds := bb.Predecessors()
	isPred := make(map[*ir.BasicBlock]bool, len(preds))
	for _, p := range preds {
		isPred[p] = true
	}
	covered := make(map[*ir.BasicBlock]ir.Value)
	for n := 0; n < phi.NumIncoming(); n++ {
		v, from, _ := phi.Incoming(n)
		if !isPred[from] {
			c.diag.ErrorAt(c.at(inst), "incoming block %%%s is not a predecessor", c.labels[from])
			continue
		}
		if prev, dup := covered[from]; dup && prev != v {
			c.diag.ErrorAt(c.at(inst), "conflicting values for predecessor %%%s", c.labels[from])
		}
		covered[from] = v
	}
	for _, p := range preds {
		if _, ok := covered[p]; !ok {
			c.diag.ErrorAt(c.at(inst), "no incoming value for predecessor %%%s", c.labels[p])
		}
	}
}

// checkDominance requires every instruction operand to be defined on all
// paths to its use. Phi operands are checked at the end of their incoming block.
func (c *checker) checkDominance(bb *ir.BasicBlock, inst *ir.Instruction) {
	if !c.dom.Reachable(bb) {
		return
	}
	phi, isPhi := inst.AsPhi()
	for n, v := range inst.Operands() {
		def, ok := v.(*ir.Instruction)
		if !ok {
			continue
		}
		defBlock, _ := def.Parent()

		if isPhi {
			_, from, _ := phi.Incoming(n)
			if !c.dom.Dominates(defBlock, from) {
				c.diag.ErrorAt(c.at(inst), "incoming value from %%%s is not defined on that path", c.labels[from])
			}
			continue
		}
		switch {
		case def == inst:
			c.diag.ErrorAt(c.at(inst), "instruction uses its own result")
		case defBlock == bb:
			if c.pos[def] > c.pos[inst] {
				c.diag.ErrorAt(c.at(inst), "operand %d is used before it is defined", n)
			}
		case !c.dom.Dominates(defBlock, bb):
			c.diag.ErrorAt(c.at(inst), "operand %d does not dominate its use", n)
		}
	}
}
