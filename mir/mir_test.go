package mir

import "testing"

func testBody() *Body {
	return &Body{
		Name: "t",
		Locals: []LocalDecl{
			{Kind: LocalReturn},
			{Kind: LocalArg},
			{Kind: LocalTemp},
		},
		Blocks: []*BasicBlock{
			{
				Stmts: []Statement{
					{Kind: StmtStorageLive, Local: 2},
					{Kind: StmtAssign, Place: PlaceFor(2), Rvalue: &Use{X: Copy(PlaceFor(1))}},
					{Kind: StmtAssign, Place: PlaceFor(0), Rvalue: &BinaryOp{Op: Add, X: Copy(PlaceFor(2)), Y: Constant(IntConst(1))}},
					{Kind: StmtStorageDead, Local: 2},
				},
				Term: &SwitchInt{Discr: Move(PlaceFor(0)), Values: []int64{0}, Targets: []int{1, 2}},
			},
			{Term: &Drop{Place: PlaceFor(2), Target: 2}},
			{Term: &Return{}},
		},
	}
}

func TestStmtAt(t *testing.T) {
	body := testBody()
	if stmt := body.StmtAt(Location{Block: 0, Statement: 1}); stmt == nil || stmt.Kind != StmtAssign {
		t.Errorf("StmtAt(bb0[1]) = %v", stmt)
	}
	if stmt := body.StmtAt(Location{Block: 0, Statement: 4}); stmt != nil {
		t.Errorf("StmtAt at terminator = %v, want nil", stmt)
	}
	if loc := body.TermLocation(0); loc != (Location{Block: 0, Statement: 4}) {
		t.Errorf("TermLocation(0) = %s", loc)
	}
}

func TestMakeNop(t *testing.T) {
	body := testBody()
	n := len(body.Blocks[0].Stmts)
	body.MakeNop(Location{Block: 0, Statement: 1})
	if len(body.Blocks[0].Stmts) != n {
		t.Error("MakeNop changed the statement count")
	}
	stmt := body.Blocks[0].Stmts[1]
	if stmt.Kind != StmtNop || stmt.Rvalue != nil {
		t.Errorf("statement not degraded: %s", &stmt)
	}
	// Later statements keep their locations.
	if stmt := body.StmtAt(Location{Block: 0, Statement: 2}); stmt.Kind != StmtAssign {
		t.Errorf("neighboring statement shifted: %s", stmt)
	}

	defer func() {
		if recover() == nil {
			t.Error("MakeNop on a terminator did not panic")
		}
	}()
	body.MakeNop(body.TermLocation(0))
}

func TestEachOperand(t *testing.T) {
	body := testBody()
	counts := map[Location]int{
		{Block: 0, Statement: 0}: 0, // storage marker
		{Block: 0, Statement: 1}: 1, // use
		{Block: 0, Statement: 2}: 2, // binary op
		{Block: 0, Statement: 4}: 1, // switchInt discriminant
		{Block: 1, Statement: 0}: 0, // drop
	}
	for loc, want := range counts {
		got := 0
		body.EachOperand(loc, func(*Operand) { got++ })
		if got != want {
			t.Errorf("EachOperand(%s) visited %d operands, want %d", loc, got, want)
		}
	}

	// Slots are mutable through the callback.
	body.EachOperand(Location{Block: 0, Statement: 1}, func(op *Operand) {
		*op = Constant(IntConst(9))
	})
	if got := body.Blocks[0].Stmts[1].String(); got != "_2 = const 9" {
		t.Errorf("operand rewrite not visible: %s", got)
	}
}

func TestEachOperandCall(t *testing.T) {
	body := &Body{
		Locals: []LocalDecl{{Kind: LocalReturn}, {Kind: LocalTemp}},
		Blocks: []*BasicBlock{
			{
				Term: &Call{
					Func:   Constant(StringConst("f")),
					Args:   []Operand{Copy(PlaceFor(1)), Constant(IntConst(2))},
					Dest:   PlaceFor(0),
					Target: 1,
				},
			},
			{Term: &Return{}},
		},
	}
	got := 0
	body.EachOperand(body.TermLocation(0), func(*Operand) { got++ })
	if got != 3 {
		t.Errorf("call visited %d operands, want 3 (callee plus args)", got)
	}
}

func TestEachPlace(t *testing.T) {
	body := testBody()

	type visit struct {
		local Local
		ctx   PlaceContext
	}
	collect := func(loc Location) []visit {
		var got []visit
		body.EachPlace(loc, func(pl *Place, ctx PlaceContext) {
			got = append(got, visit{pl.Local, ctx})
		})
		return got
	}

	// Assignment: destination first, then operand places. Constants
	// have no place and are skipped.
	got := collect(Location{Block: 0, Statement: 2})
	want := []visit{{0, PlaceStore}, {2, PlaceLoad}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("assignment places = %v, want %v", got, want)
	}

	// Storage markers reference a local, not a place.
	if got := collect(Location{Block: 0, Statement: 0}); len(got) != 0 {
		t.Errorf("storage marker places = %v, want none", got)
	}

	if got := collect(Location{Block: 1, Statement: 0}); len(got) != 1 || got[0] != (visit{2, PlaceDrop}) {
		t.Errorf("drop places = %v", got)
	}
}

func TestEachPlaceRef(t *testing.T) {
	body := &Body{
		Locals: []LocalDecl{{Kind: LocalReturn}, {Kind: LocalTemp}},
		Blocks: []*BasicBlock{
			{
				Stmts: []Statement{
					{Kind: StmtAssign, Place: PlaceFor(0), Rvalue: &Ref{X: PlaceFor(1)}},
				},
				Term: &Return{},
			},
		},
	}
	var ctxs []PlaceContext
	body.EachPlace(Location{Block: 0, Statement: 0}, func(pl *Place, ctx PlaceContext) {
		ctxs = append(ctxs, ctx)
	})
	if len(ctxs) != 2 || ctxs[0] != PlaceStore || ctxs[1] != PlaceRef {
		t.Errorf("ref contexts = %v", ctxs)
	}

	// The referenced place must never surface as an operand.
	n := 0
	body.EachOperand(Location{Block: 0, Statement: 0}, func(*Operand) { n++ })
	if n != 0 {
		t.Errorf("ref has %d operands, want 0", n)
	}
}

func TestSuccessors(t *testing.T) {
	body := testBody()
	sw := body.Blocks[0].Term.Successors()
	if len(sw) != 2 || sw[0] != 1 || sw[1] != 2 {
		t.Errorf("switchInt successors = %v", sw)
	}
	if got := body.Blocks[1].Term.Successors(); len(got) != 1 || got[0] != 2 {
		t.Errorf("drop successors = %v", got)
	}
	if got := body.Blocks[2].Term.Successors(); len(got) != 0 {
		t.Errorf("return successors = %v", got)
	}
}

func TestPlaceString(t *testing.T) {
	pl := Place{
		Local: 1,
		Projection: []Projection{
			{Kind: ProjDeref},
			{Kind: ProjField, Field: 2},
			{Kind: ProjIndex, Index: 3},
		},
	}
	if got := pl.String(); got != "(*_1).2[_3]" {
		t.Errorf("Place.String() = %q", got)
	}
	if _, ok := pl.AsLocal(); ok {
		t.Error("projected place reported as bare local")
	}
	if l, ok := PlaceFor(4).AsLocal(); !ok || l != 4 {
		t.Error("bare place not reported as local")
	}
}
