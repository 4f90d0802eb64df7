// Package mir defines a mid-level intermediate representation for one
// function body: a control-flow graph of basic blocks over a finite,
// ordered set of abstract locals.
//
// The representation is deliberately small. Statements are mutable
// structs that optimization passes rewrite in place; deleting a
// statement degrades it to a no-op instead of removing the slot, so
// that locations recorded by analyses stay valid across deletions.
package mir

import "fmt"

// A Local names one storage slot of a function body. Locals are dense
// indices into Body.Locals. By convention _0 is the return slot,
// followed by the arguments in declaration order.
type Local int

func (l Local) String() string { return fmt.Sprintf("_%d", int(l)) }

// ReturnLocal is the local holding the function's return value.
const ReturnLocal Local = 0

type LocalKind uint8

const (
	LocalTemp LocalKind = iota
	LocalArg
	LocalReturn
)

func (k LocalKind) String() string {
	switch k {
	case LocalTemp:
		return "temp"
	case LocalArg:
		return "arg"
	case LocalReturn:
		return "return"
	default:
		return fmt.Sprintf("LocalKind(%d)", k)
	}
}

// A LocalDecl describes one local. Name, if set, is the source-level
// variable name and is informational only.
type LocalDecl struct {
	Kind LocalKind
	Name string
}

// SourceKind describes what kind of body this is. Bodies in
// constant-evaluation contexts must not be optimized, because later
// stages may need to evaluate them exactly as written.
type SourceKind uint8

const (
	SourceFn SourceKind = iota
	SourceConstFn
	SourceConst
	SourceStatic
	SourcePromoted
)

// ConstContext reports whether the body may be subject to
// compile-time evaluation.
func (k SourceKind) ConstContext() bool { return k != SourceFn }

func (k SourceKind) String() string {
	switch k {
	case SourceFn:
		return "fn"
	case SourceConstFn:
		return "const fn"
	case SourceConst:
		return "const"
	case SourceStatic:
		return "static"
	case SourcePromoted:
		return "promoted"
	default:
		return fmt.Sprintf("SourceKind(%d)", k)
	}
}

// A Body is the IR of a single function body. All data is owned by the
// body and scoped to one compilation; nothing is shared across bodies.
type Body struct {
	Name   string
	Source SourceKind
	Locals []LocalDecl
	Blocks []*BasicBlock
}

func (b *Body) LocalKind(l Local) LocalKind { return b.Locals[l].Kind }

// StmtAt returns the statement at loc, or nil if loc denotes the
// block's terminator.
func (b *Body) StmtAt(loc Location) *Statement {
	stmts := b.Blocks[loc.Block].Stmts
	if loc.Statement >= len(stmts) {
		return nil
	}
	return &stmts[loc.Statement]
}

// MakeNop degrades the statement at loc to a no-op in place. Statement
// indices never shift; loc must not denote a terminator.
func (b *Body) MakeNop(loc Location) {
	stmt := b.StmtAt(loc)
	if stmt == nil {
		panic(fmt.Sprintf("cannot nop terminator of %s", loc))
	}
	*stmt = Statement{Kind: StmtNop}
}

// A BasicBlock is a straight-line sequence of statements ending in
// exactly one terminator.
type BasicBlock struct {
	Stmts []Statement
	Term  Terminator
}

// A Location identifies one statement or terminator: Statement is the
// index into the block's statement list, with len(Stmts) denoting the
// terminator. Locations order statements within a block; no order
// across blocks is implied.
type Location struct {
	Block     int
	Statement int
}

func (loc Location) String() string {
	return fmt.Sprintf("bb%d[%d]", loc.Block, loc.Statement)
}

// TermLocation returns the location of block's terminator.
func (b *Body) TermLocation(block int) Location {
	return Location{Block: block, Statement: len(b.Blocks[block].Stmts)}
}

type StmtKind uint8

const (
	StmtNop StmtKind = iota
	StmtAssign
	StmtStorageLive
	StmtStorageDead
)

// A Statement is one non-terminator instruction. The meaning of the
// fields depends on Kind: Assign uses Place and Rvalue, the storage
// markers use Local, Nop uses nothing.
type Statement struct {
	Kind   StmtKind
	Place  Place
	Rvalue Rvalue
	Local  Local
}

// A Place is an addressable location: a local, possibly refined by a
// chain of projections. Passes in this module treat projections as
// opaque; a projected place is simply "not a bare local".
type Place struct {
	Local      Local
	Projection []Projection
}

// AsLocal reports whether the place is a bare, unprojected local.
func (p Place) AsLocal() (Local, bool) {
	if len(p.Projection) != 0 {
		return 0, false
	}
	return p.Local, true
}

// PlaceFor returns the bare place for l.
func PlaceFor(l Local) Place { return Place{Local: l} }

type ProjKind uint8

const (
	ProjDeref ProjKind = iota
	ProjField
	ProjIndex
)

// A Projection is one step of a place's access path. Field carries the
// field number for ProjField; Index carries the local whose value
// indexes the base for ProjIndex. An index local is a use of that
// local.
type Projection struct {
	Kind  ProjKind
	Field int
	Index Local
}

type OperandKind uint8

const (
	OperandCopy OperandKind = iota
	OperandMove
	OperandConst
)

// An Operand is a value read: a copying or moving read of a place, or
// a literal constant. Copy and Move are equivalent for def/use
// accounting but are preserved verbatim by rewrites.
type Operand struct {
	Kind  OperandKind
	Place Place
	Const Const
}

func Copy(p Place) Operand     { return Operand{Kind: OperandCopy, Place: p} }
func Move(p Place) Operand     { return Operand{Kind: OperandMove, Place: p} }
func Constant(c Const) Operand { return Operand{Kind: OperandConst, Const: c} }

type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstString
)

// A Const is a literal value. Consts are comparable; two consts are
// the same value iff the structs are equal.
type Const struct {
	Kind ConstKind
	Int  int64
	Bool bool
	Str  string
}

func IntConst(v int64) Const    { return Const{Kind: ConstInt, Int: v} }
func BoolConst(v bool) Const    { return Const{Kind: ConstBool, Bool: v} }
func StringConst(s string) Const { return Const{Kind: ConstString, Str: s} }

// An Rvalue computes the value assigned by an assignment statement.
// The interface is sealed; only types in this package implement it.
type Rvalue interface {
	String() string
	// operands returns the mutable operand slots of the rvalue.
	operands(buf []*Operand) []*Operand
}

// Use yields its operand unchanged. It is the only rvalue shape that
// copy propagation recognizes as a candidate source.
type Use struct {
	X Operand
}

type UnOp uint8

const (
	Neg UnOp = iota
	Not
)

type UnaryOp struct {
	Op UnOp
	X  Operand
}

type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Eq
	Lt
	Le
	Ne
	Ge
	Gt
)

type BinaryOp struct {
	Op   BinOp
	X, Y Operand
}

// Ref takes the address of a place. The place is used as an
// addressable lvalue, not read as an operand, so constant substitution
// never applies to it.
type Ref struct {
	X Place
}

// Len reads the length of the aggregate at a place.
type Len struct {
	X Place
}

func (u *Use) operands(buf []*Operand) []*Operand      { return append(buf, &u.X) }
func (u *UnaryOp) operands(buf []*Operand) []*Operand  { return append(buf, &u.X) }
func (b *BinaryOp) operands(buf []*Operand) []*Operand { return append(buf, &b.X, &b.Y) }
func (r *Ref) operands(buf []*Operand) []*Operand      { return buf }
func (l *Len) operands(buf []*Operand) []*Operand      { return buf }

// A Terminator ends a basic block. The interface is sealed.
type Terminator interface {
	String() string
	// Successors returns the indices of all successor blocks.
	Successors() []int
	operands(buf []*Operand) []*Operand
}

type Goto struct {
	Target int
}

type Return struct{}

type Unreachable struct{}

// SwitchInt branches on an integer operand. Targets holds one block
// per value plus a final otherwise block, so len(Targets) ==
// len(Values)+1.
type SwitchInt struct {
	Discr   Operand
	Values  []int64
	Targets []int
}

// Drop runs the scope-exit cleanup for a place and continues at
// Target. Dropping a local counts as an implicit definition of it.
type Drop struct {
	Place  Place
	Target int
}

// Call invokes Func with Args, stores the result into Dest and
// continues at Target. Dest is a definition located in a terminator.
type Call struct {
	Func   Operand
	Args   []Operand
	Dest   Place
	Target int
}

func (g *Goto) Successors() []int        { return []int{g.Target} }
func (r *Return) Successors() []int      { return nil }
func (u *Unreachable) Successors() []int { return nil }
func (s *SwitchInt) Successors() []int   { return s.Targets }
func (d *Drop) Successors() []int        { return []int{d.Target} }
func (c *Call) Successors() []int        { return []int{c.Target} }

func (g *Goto) operands(buf []*Operand) []*Operand        { return buf }
func (r *Return) operands(buf []*Operand) []*Operand      { return buf }
func (u *Unreachable) operands(buf []*Operand) []*Operand { return buf }
func (s *SwitchInt) operands(buf []*Operand) []*Operand   { return append(buf, &s.Discr) }
func (d *Drop) operands(buf []*Operand) []*Operand        { return buf }
func (c *Call) operands(buf []*Operand) []*Operand {
	buf = append(buf, &c.Func)
	for i := range c.Args {
		buf = append(buf, &c.Args[i])
	}
	return buf
}
