// Package defuse computes, for every local of a body, the ordered
// list of its definition and use sites.
//
// The analysis is a pure function of the current IR. Any mutation of
// the body invalidates it wholesale; callers must re-run Analyze
// rather than patch results incrementally.
package defuse

import (
	"github.com/mirkit/mirkit/internal/indexes"
	"github.com/mirkit/mirkit/mir"
)

// Context classifies how a reference accesses its local.
type Context uint8

const (
	// ContextDef is an explicit definition: the local is stored to as
	// a bare assignment or call destination.
	ContextDef Context = iota
	// ContextUse is a read of the local, including reads of a
	// projected place's base and of projection index locals.
	ContextUse
	// ContextDrop is the implicit definition performed by scope-exit
	// cleanup. Drop definitions are excluded from eligibility
	// counting by optimization passes.
	ContextDrop
	// ContextStorage is a storage marker reference; it is neither a
	// definition nor a use.
	ContextStorage
)

func (ctx Context) String() string {
	switch ctx {
	case ContextDef:
		return "def"
	case ContextUse:
		return "use"
	case ContextDrop:
		return "drop"
	case ContextStorage:
		return "storage"
	default:
		return "Context(?)"
	}
}

// An Access is one recorded reference to a local.
type Access struct {
	Context  Context
	Location mir.Location
}

// Info holds all recorded accesses of one local, in block order and
// statement order within each block.
type Info struct {
	accesses []Access
}

// DefsAndUses returns every recorded access, including storage
// markers and drop definitions.
func (info *Info) DefsAndUses() []Access { return info.accesses }

func (info *Info) count(ctxs ...Context) int {
	n := 0
	for _, acc := range info.accesses {
		for _, ctx := range ctxs {
			if acc.Context == ctx {
				n++
			}
		}
	}
	return n
}

// DefCount counts all definitions, drop definitions included.
func (info *Info) DefCount() int { return info.count(ContextDef, ContextDrop) }

// DefCountExcludingDrop counts explicit definitions only.
func (info *Info) DefCountExcludingDrop() int { return info.count(ContextDef) }

func (info *Info) UseCount() int { return info.count(ContextUse) }

// DefsExcludingDrop returns the explicit definitions in order.
func (info *Info) DefsExcludingDrop() []Access {
	var defs []Access
	for _, acc := range info.accesses {
		if acc.Context == ContextDef {
			defs = append(defs, acc)
		}
	}
	return defs
}

// Analysis is the def-use index for one body. The zero value is ready
// for use; Analyze populates it and may be called repeatedly.
type Analysis struct {
	infos []Info
}

// Analyze recomputes the index from the current state of body,
// discarding any previous results.
func (a *Analysis) Analyze(body *mir.Body) {
	for i := range a.infos {
		a.infos[i].accesses = a.infos[i].accesses[:0]
	}
	a.infos = indexes.GrowTo(a.infos, len(body.Locals)-1)

	for blk := range body.Blocks {
		n := len(body.Blocks[blk].Stmts)
		for idx := 0; idx <= n; idx++ {
			loc := mir.Location{Block: blk, Statement: idx}
			if stmt := body.StmtAt(loc); stmt != nil {
				switch stmt.Kind {
				case mir.StmtStorageLive, mir.StmtStorageDead:
					a.record(stmt.Local, ContextStorage, loc)
					continue
				case mir.StmtNop:
					continue
				}
			}
			body.EachPlace(loc, func(pl *mir.Place, ctx mir.PlaceContext) {
				a.recordPlace(pl, ctx, loc)
			})
		}
	}
}

func (a *Analysis) recordPlace(pl *mir.Place, ctx mir.PlaceContext, loc mir.Location) {
	base := ContextUse
	if _, bare := pl.AsLocal(); bare {
		switch ctx {
		case mir.PlaceStore, mir.PlaceCallDest:
			base = ContextDef
		case mir.PlaceDrop:
			base = ContextDrop
		}
	}
	a.record(pl.Local, base, loc)
	for _, proj := range pl.Projection {
		if proj.Kind == mir.ProjIndex {
			a.record(proj.Index, ContextUse, loc)
		}
	}
}

func (a *Analysis) record(l mir.Local, ctx Context, loc mir.Location) {
	a.infos = indexes.GrowTo(a.infos, l)
	a.infos[l].accesses = append(a.infos[l].accesses, Access{Context: ctx, Location: loc})
}

// LocalInfo returns the recorded accesses of l. The result is a view
// into the analysis and is invalidated by the next Analyze.
func (a *Analysis) LocalInfo(l mir.Local) *Info {
	a.infos = indexes.GrowTo(a.infos, l)
	return &a.infos[l]
}

// ReplaceAllDefsAndUsesWith rewrites every recorded reference to from
// so that it refers to to instead: place bases, projection indices and
// storage markers alike. The analysis itself is stale afterwards and
// must be recomputed before further queries.
func (a *Analysis) ReplaceAllDefsAndUsesWith(from mir.Local, body *mir.Body, to mir.Local) {
	for _, acc := range a.LocalInfo(from).DefsAndUses() {
		if stmt := body.StmtAt(acc.Location); stmt != nil {
			switch stmt.Kind {
			case mir.StmtStorageLive, mir.StmtStorageDead:
				if stmt.Local == from {
					stmt.Local = to
				}
				continue
			case mir.StmtNop:
				continue
			}
		}
		body.EachPlace(acc.Location, func(pl *mir.Place, ctx mir.PlaceContext) {
			if pl.Local == from {
				pl.Local = to
			}
			for i := range pl.Projection {
				if pl.Projection[i].Kind == mir.ProjIndex && pl.Projection[i].Index == from {
					pl.Projection[i].Index = to
				}
			}
		})
	}
}
