package transform

import "github.com/mirkit/mirkit/mir"

// NopElimination compacts nop statements out of every block. Nops are
// what deletion leaves behind so that statement indices stay stable
// for location-based analyses; once no such analysis is pending they
// are dead weight. The pass must therefore run after all
// location-sensitive passes, never between them.
type NopElimination struct{}

func (NopElimination) Name() string { return "nopelim" }

func (NopElimination) Run(body *mir.Body) bool {
	changed := false
	for _, blk := range body.Blocks {
		i := 0
		for j := range blk.Stmts {
			if blk.Stmts[j].Kind == mir.StmtNop {
				continue
			}
			blk.Stmts[i] = blk.Stmts[j]
			i++
		}
		if i != len(blk.Stmts) {
			clear(blk.Stmts[i:])
			blk.Stmts = blk.Stmts[:i]
			changed = true
		}
	}
	return changed
}
