package transform

// Trivial copy and constant propagation.
//
// The pass looks for assignments of the form
//
//	DEST = SRC
//	...
//	USE(DEST)
//
// where DEST and SRC are both bare locals, and rewrites them to
//
//	nop
//	...
//	USE(SRC)
//
// The assignment must be the only definition of DEST and the only use
// of SRC. When SRC is a constant instead of a local, uses of DEST are
// replaced by the constant directly; no conditions on intervening code
// apply, because a constant cannot be invalidated by mutation.
//
// The restrictions are conservative on purpose. Whenever a
// precondition cannot be proven from def/use counts alone, the pass
// declines to rewrite: a missed opportunity is harmless, a wrong
// rewrite miscompiles silently.

import (
	"github.com/mirkit/mirkit/mir"
	"github.com/mirkit/mirkit/mir/defuse"
)

// CopyPropagation eliminates single-def single-use copies and
// propagates constants through single-def locals.
type CopyPropagation struct{}

func (CopyPropagation) Name() string { return "copyprop" }

// Run iterates to a fixed point: after every rewrite the def-use
// index is recomputed from scratch and the scan over locals restarts,
// because a mutation invalidates all recorded locations. Each rewrite
// strictly reduces the number of non-nop assignments whose source is
// a bare local or constant, so the loop terminates.
func (CopyPropagation) Run(body *mir.Body) bool {
	any := false
	var du defuse.Analysis
	for {
		du.Analyze(body)

		if eliminateSelfAssignments(body, &du) {
			any = true
			du.Analyze(body)
		}

		changed := false
		for dest := mir.Local(0); int(dest) < len(body.Locals); dest++ {
			debugf("considering destination local %s", dest)

			act, loc, ok := classify(body, &du, dest)
			if !ok {
				continue
			}
			changed = act.perform(body, &du, dest, loc)
			any = any || changed
			// The rewrite invalidated the index; restart the scan.
			break
		}
		if !changed {
			break
		}
	}
	return any
}

// eliminateSelfAssignments replaces every statement of the form
// "L = Copy(L)" or "L = Move(L)" with a nop. Left alone, such a
// statement would classify as a valid single-def source and send the
// driver into a rewrite cycle.
func eliminateSelfAssignments(body *mir.Body, du *defuse.Analysis) bool {
	changed := false
	for dest := mir.Local(0); int(dest) < len(body.Locals); dest++ {
		for _, def := range du.LocalInfo(dest).DefsExcludingDrop() {
			stmt := body.StmtAt(def.Location)
			if stmt == nil || stmt.Kind != mir.StmtAssign {
				continue
			}
			if l, ok := stmt.Place.AsLocal(); !ok || l != dest {
				continue
			}
			use, ok := stmt.Rvalue.(*mir.Use)
			if !ok || use.X.Kind == mir.OperandConst {
				continue
			}
			if src, ok := use.X.Place.AsLocal(); !ok || src != dest {
				continue
			}
			debugf("deleting self-assignment of %s", dest)
			body.MakeNop(def.Location)
			changed = true
		}
	}
	return changed
}

// An action is the decision of the eligibility classifier: either
// propagate a copy from a source local, or propagate a constant. It
// is consumed immediately by perform.
type action struct {
	src      mir.Local
	constant mir.Const
	isConst  bool
}

// classify decides whether dest admits a safe rewrite and returns the
// action and the location of dest's sole definition. It reads the
// current index snapshot and has no side effects.
func classify(body *mir.Body, du *defuse.Analysis, dest mir.Local) (action, mir.Location, bool) {
	info := du.LocalInfo(dest)

	// The destination must have exactly one explicit definition and
	// at least one use.
	switch n := info.DefCountExcludingDrop(); {
	case n == 0:
		debugf("  cannot propagate %s: undefined", dest)
		return action{}, mir.Location{}, false
	case n > 1:
		debugf("  cannot propagate %s: defined %d times", dest, info.DefCount())
		return action{}, mir.Location{}, false
	}
	if info.UseCount() == 0 {
		debugf("  cannot propagate %s: unused", dest)
		return action{}, mir.Location{}, false
	}
	// Arguments may be read before any definition this pass can see;
	// redefining their meaning is unsafe.
	if body.LocalKind(dest) == mir.LocalArg {
		debugf("  cannot propagate %s: argument", dest)
		return action{}, mir.Location{}, false
	}

	loc := info.DefsExcludingDrop()[0].Location
	stmt := body.StmtAt(loc)
	if stmt == nil {
		debugf("  cannot propagate %s: defined in terminator", dest)
		return action{}, mir.Location{}, false
	}
	if stmt.Kind != mir.StmtAssign {
		return action{}, mir.Location{}, false
	}
	if l, ok := stmt.Place.AsLocal(); !ok || l != dest {
		debugf("  cannot propagate %s: definition is not a bare assignment", dest)
		return action{}, mir.Location{}, false
	}
	use, ok := stmt.Rvalue.(*mir.Use)
	if !ok {
		debugf("  cannot propagate %s: source is not a plain use", dest)
		return action{}, mir.Location{}, false
	}

	switch use.X.Kind {
	case mir.OperandCopy, mir.OperandMove:
		act, ok := localCopyAction(body, du, use.X.Place)
		return act, loc, ok
	case mir.OperandConst:
		// Constants are always safe to propagate; no intervening
		// mutation can invalidate them.
		return action{constant: use.X.Const, isConst: true}, loc, true
	default:
		return action{}, mir.Location{}, false
	}
}

func localCopyAction(body *mir.Body, du *defuse.Analysis, srcPlace mir.Place) (action, bool) {
	src, ok := srcPlace.AsLocal()
	if !ok {
		debugf("  cannot propagate: source is not a bare local")
		return action{}, false
	}

	// The assignment being eliminated must be the only use of the
	// source.
	info := du.LocalInfo(src)
	if n := info.UseCount(); n != 1 {
		debugf("  cannot propagate: %d uses of source %s", n, src)
		return action{}, false
	}

	// The source must not change between the assignment and the uses
	// of the destination. Proven conservatively: a non-argument
	// source must have exactly one explicit definition, an argument
	// source none at all (its definition is implicit at function
	// entry). This prevents
	//
	//	DEST = SRC
	//	SRC = X
	//	USE(DEST)
	//
	// from being rewritten to
	//
	//	SRC = X
	//	USE(SRC)
	defs := info.DefCountExcludingDrop()
	isArg := body.LocalKind(src) == mir.LocalArg
	switch {
	case defs > 1:
		debugf("  cannot propagate: %d defs of source %s", defs, src)
		return action{}, false
	case isArg && defs != 0:
		// An argument is implicitly defined at function entry; an
		// explicit definition on top of that is a second mutation.
		debugf("  cannot propagate: argument source %s is reassigned", src)
		return action{}, false
	case !isArg && defs == 0:
		debugf("  cannot propagate: no defs of source %s", src)
		return action{}, false
	}

	return action{src: src}, true
}

// perform executes the rewrite for dest, whose sole definition is the
// assignment at loc. It reports whether the body changed.
func (a action) perform(body *mir.Body, du *defuse.Analysis, dest mir.Local, loc mir.Location) bool {
	if !a.isConst {
		debugf("  replacing all uses of %s with %s (local)", dest, a.src)

		// The two locals are merged by the substitution below, which
		// makes their individual lifetime tracking meaningless.
		// Delete all storage markers rather than leave mismatched
		// begin/end pairs behind.
		nopStorageMarkers(body, du, dest)
		nopStorageMarkers(body, du, a.src)

		du.ReplaceAllDefsAndUsesWith(dest, body, a.src)

		debugf("  deleting assignment")
		body.MakeNop(loc)
		return true
	}

	debugf("  replacing all uses of %s with %s", dest, a.constant)
	info := du.LocalInfo(dest)
	nopStorageMarkers(body, du, dest)

	v := constSubstVisitor{dest: dest, constant: a.constant}
	for _, acc := range info.DefsAndUses() {
		v.visit(body, acc.Location)
	}

	// Zap the assignment only if every use was replaced. Uses of the
	// destination as an addressable lvalue, e.g. inside a projection,
	// cannot take a constant and keep the destination live.
	useCount := info.UseCount()
	switch {
	case v.replaced == useCount:
		debugf("  %d of %d use(s) replaced; deleting assignment", v.replaced, useCount)
		body.MakeNop(loc)
		return true
	case v.replaced == 0:
		debugf("  no uses replaced")
		return false
	default:
		debugf("  %d of %d use(s) replaced; keeping assignment", v.replaced, useCount)
		return true
	}
}

func nopStorageMarkers(body *mir.Body, du *defuse.Analysis, l mir.Local) {
	for _, acc := range du.LocalInfo(l).DefsAndUses() {
		if acc.Context == defuse.ContextStorage {
			body.MakeNop(acc.Location)
		}
	}
}

// constSubstVisitor rewrites every top-level Copy or Move of dest
// with the constant, counting successes. Operands embedded inside
// projections are never rewritten: a constant cannot stand where an
// addressable lvalue is structurally required. The visitor serves one
// destination local and is discarded afterwards.
type constSubstVisitor struct {
	dest     mir.Local
	constant mir.Const
	replaced int
}

func (v *constSubstVisitor) visit(body *mir.Body, loc mir.Location) {
	body.EachOperand(loc, func(op *mir.Operand) {
		if op.Kind != mir.OperandCopy && op.Kind != mir.OperandMove {
			return
		}
		if l, ok := op.Place.AsLocal(); !ok || l != v.dest {
			return
		}
		*op = mir.Constant(v.constant)
		v.replaced++
	})
}
