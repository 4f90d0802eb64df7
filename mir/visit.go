package mir

// This file provides the generic traversal over the operand and place
// slots of a single statement or terminator. Analyses and rewriting
// visitors specialize it by supplying a callback; they never need to
// know the shape of individual statement or terminator kinds.

// PlaceContext describes how a place slot is being accessed.
type PlaceContext uint8

const (
	// PlaceStore is the destination of an assignment.
	PlaceStore PlaceContext = iota
	// PlaceLoad is a place read by a Copy or Move operand.
	PlaceLoad
	// PlaceRef is a place whose address or metadata is taken; the
	// place is required to be addressable.
	PlaceRef
	// PlaceDrop is the subject of a drop terminator.
	PlaceDrop
	// PlaceCallDest is the result destination of a call terminator.
	PlaceCallDest
)

func (ctx PlaceContext) String() string {
	switch ctx {
	case PlaceStore:
		return "store"
	case PlaceLoad:
		return "load"
	case PlaceRef:
		return "ref"
	case PlaceDrop:
		return "drop"
	case PlaceCallDest:
		return "call-dest"
	default:
		return "PlaceContext(?)"
	}
}

// EachOperand calls f for every mutable operand slot of the statement
// or terminator at loc. Places that are not read through an operand
// (assignment destinations, Ref and Len bases, drop subjects, call
// destinations) are not operands and are not visited.
func (b *Body) EachOperand(loc Location, f func(op *Operand)) {
	var buf [8]*Operand
	for _, op := range b.operandsAt(loc, buf[:0]) {
		f(op)
	}
}

func (b *Body) operandsAt(loc Location, buf []*Operand) []*Operand {
	if stmt := b.StmtAt(loc); stmt != nil {
		if stmt.Kind == StmtAssign {
			return stmt.Rvalue.operands(buf)
		}
		return buf
	}
	return b.Blocks[loc.Block].Term.operands(buf)
}

// EachPlace calls f for every mutable place slot of the statement or
// terminator at loc, together with its access context. Storage markers
// reference a bare local rather than a place and are not visited.
func (b *Body) EachPlace(loc Location, f func(pl *Place, ctx PlaceContext)) {
	if stmt := b.StmtAt(loc); stmt != nil {
		if stmt.Kind != StmtAssign {
			return
		}
		f(&stmt.Place, PlaceStore)
		switch rv := stmt.Rvalue.(type) {
		case *Ref:
			f(&rv.X, PlaceRef)
		case *Len:
			f(&rv.X, PlaceRef)
		default:
			eachOperandPlace(rv.operands(nil), f)
		}
		return
	}
	switch term := b.Blocks[loc.Block].Term.(type) {
	case *Drop:
		f(&term.Place, PlaceDrop)
	case *Call:
		eachOperandPlace(term.operands(nil), f)
		f(&term.Dest, PlaceCallDest)
	default:
		eachOperandPlace(term.operands(nil), f)
	}
}

func eachOperandPlace(ops []*Operand, f func(pl *Place, ctx PlaceContext)) {
	for _, op := range ops {
		if op.Kind == OperandConst {
			continue
		}
		f(&op.Place, PlaceLoad)
	}
}
