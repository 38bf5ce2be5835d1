package verifier

import "github.com/arc-language/core-builder/ir"

// DomTree is the dominator tree of the blocks reachable from a function's
// entry block, computed with the Cooper-Harvey-Kennedy iterative algorithm.
type DomTree struct {
	order []*ir.BasicBlock // reverse postorder, entry first
	index map[*ir.BasicBlock]int
	idom  []int
}

// Dominators computes the dominator tree of fn. A declaration yields an
// empty tree.
func Dominators(fn *ir.Function) *DomTree {
	d := &DomTree{index: make(map[*ir.BasicBlock]int)}
	entry, ok := fn.EntryBlock()
	if !ok {
		return d
	}

	var post []*ir.BasicBlock
	seen := map[*ir.BasicBlock]bool{}
	var walk func(bb *ir.BasicBlock)
	walk = func(bb *ir.BasicBlock) {
		seen[bb] = true
		for _, s := range bb.Successors() {
			if parent, _ := s.Parent(); parent == fn && !seen[s] {
				walk(s)
			}
		}
		post = append(post, bb)
	}
	walk(entry)

	d.order = make([]*ir.BasicBlock, len(post))
	for i, bb := range post {
		n := len(post) - 1 - i
		d.order[n] = bb
		d.index[bb] = n
	}

	preds := make([][]int, len(d.order))
	for n, bb := range d.order {
		for _, s := range bb.Successors() {
			if m, ok := d.index[s]; ok {
				preds[m] = append(preds[m], n)
			}
		}
	}

	d.idom = make([]int, len(d.order))
	for i := range d.idom {
		d.idom[i] = -1
	}
	d.idom[0] = 0

	for changed := true; changed; {
		changed = false
		for n := 1; n < len(d.order); n++ {
			next := -1
			for _, p := range preds[n] {
				if d.idom[p] == -1 {
					continue
				}
				if next == -1 {
					next = p
				} else {
					next = d.intersect(p, next)
				}
			}
			if next != -1 && d.idom[n] != next {
				d.idom[n] = next
				changed = true
			}
		}
	}
	return d
}

func (d *DomTree) intersect(a, b int) int {
	for a != b {
		for a > b {
			a = d.idom[a]
		}
		for b > a {
			b = d.idom[b]
		}
	}
	return a
}

// ReversePostorder returns the reachable blocks, entry first
func (d *DomTree) ReversePostorder() []*ir.BasicBlock {
	return append([]*ir.BasicBlock(nil), d.order...)
}

// Reachable reports whether bb can be reached from the entry block
func (d *DomTree) Reachable(bb *ir.BasicBlock) bool {
	_, ok := d.index[bb]
	return ok
}

// IDom returns the immediate dominator of bb. The entry block and
// unreachable blocks have none.
func (d *DomTree) IDom(bb *ir.BasicBlock) (*ir.BasicBlock, bool) {
	n, ok := d.index[bb]
	if !ok || n == 0 {
		return nil, false
	}
	return d.order[d.idom[n]], true
}

// Dominates reports whether every path from the entry to b passes through a.
// Every block dominates an unreachable block; an unreachable block dominates
// only itself and other unreachable blocks.
func (d *DomTree) Dominates(a, b *ir.BasicBlock) bool {
	nb, ok := d.index[b]
	if !ok {
		return true
	}
	na, ok := d.index[a]
	if !ok {
		return false
	}
	for {
		if nb == na {
			return true
		}
		if nb == 0 {
			return false
		}
		nb = d.idom[nb]
	}
}
