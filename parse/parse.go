// Package parse reads the textual form of mir bodies, as printed by
// mir.Body.String. Parsing and printing round-trip.
//
// The format mirrors the IR one to one. A body is a header, a list of
// local declarations and a list of basic blocks:
//
//	fn example {
//	    let _0: return
//	    let _1: arg "x"
//	    let _2: temp
//
//	    bb0: {
//	        StorageLive(_2)
//	        _2 = Copy(_1)
//	        _0 = Add(Copy(_2), const 1)
//	        StorageDead(_2)
//	        return
//	    }
//	}
//
// The header keyword is "fn", "const fn", "const", "static" or
// "promoted" and determines the body's source kind. Comments run from
// "//" to end of line.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mirkit/mirkit/mir"
)

// Parse parses all bodies in src. filename is used in error messages
// only.
func Parse(filename string, src []byte) ([]*mir.Body, error) {
	p := &parser{filename: filename, items: lex(string(src))}
	var bodies []*mir.Body
	for p.peek().typ != itemEOF {
		body, err := p.body()
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	if it := p.peek(); it.typ == itemError {
		return nil, p.errf(it, "%s", it.val)
	}
	return bodies, nil
}

// MustParse parses a single body and panics on failure. Intended for
// tests and tools with fixed input.
func MustParse(src string) *mir.Body {
	bodies, err := Parse("<input>", []byte(src))
	if err != nil {
		panic(err)
	}
	if len(bodies) != 1 {
		panic(fmt.Sprintf("expected 1 body, got %d", len(bodies)))
	}
	return bodies[0]
}

type parser struct {
	filename string
	items    []item
	pos      int

	// number of locals of the body currently being parsed, for
	// validating references.
	numLocals int
}

func (p *parser) next() item {
	it := p.items[p.pos]
	if it.typ != itemEOF && it.typ != itemError {
		p.pos++
	}
	return it
}

func (p *parser) peek() item { return p.items[p.pos] }

func (p *parser) accept(typ itemType) (item, bool) {
	if p.peek().typ == typ {
		return p.next(), true
	}
	return item{}, false
}

func (p *parser) expect(typ itemType) (item, error) {
	it := p.next()
	if it.typ != typ {
		return item{}, p.unexpected(it, typ.String())
	}
	return it, nil
}

func (p *parser) errf(it item, f string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", p.filename, it.line, it.col, fmt.Sprintf(f, args...))
}

func (p *parser) unexpected(it item, valid string) error {
	if it.typ == itemError {
		return p.errf(it, "%s", it.val)
	}
	got := it.typ.String()
	switch it.typ {
	case itemIdent, itemLocal, itemInt:
		got = it.val
	}
	return p.errf(it, "expected %s, found %s", valid, got)
}

func (p *parser) ident(valid string) (item, error) {
	it := p.next()
	if it.typ != itemIdent {
		return item{}, p.unexpected(it, valid)
	}
	return it, nil
}

func (p *parser) body() (*mir.Body, error) {
	body := &mir.Body{}

	kw, err := p.ident("body header")
	if err != nil {
		return nil, err
	}
	name, err := p.ident("body name")
	if err != nil {
		return nil, err
	}
	switch kw.val {
	case "fn":
		body.Source = mir.SourceFn
	case "static":
		body.Source = mir.SourceStatic
	case "promoted":
		body.Source = mir.SourcePromoted
	case "const":
		body.Source = mir.SourceConst
		if name.val == "fn" && p.peek().typ == itemIdent {
			body.Source = mir.SourceConstFn
			name = p.next()
		}
	default:
		return nil, p.errf(kw, "expected fn, const, static or promoted, found %s", kw.val)
	}
	body.Name = name.val

	if _, err := p.expect(itemLeftBrace); err != nil {
		return nil, err
	}

	for {
		it := p.peek()
		if it.typ != itemIdent || it.val != "let" {
			break
		}
		p.next()
		if err := p.localDecl(body); err != nil {
			return nil, err
		}
	}
	p.numLocals = len(body.Locals)

	var targets []targetRef
	for {
		it := p.peek()
		if it.typ == itemRightBrace {
			p.next()
			break
		}
		if err := p.block(body, &targets); err != nil {
			return nil, err
		}
	}

	for _, ref := range targets {
		if ref.n >= len(body.Blocks) {
			return nil, p.errf(ref.it, "no block bb%d", ref.n)
		}
	}
	return body, nil
}

func (p *parser) localDecl(body *mir.Body) error {
	it, err := p.expect(itemLocal)
	if err != nil {
		return err
	}
	n, _ := strconv.Atoi(it.val[1:])
	if n != len(body.Locals) {
		return p.errf(it, "expected declaration of _%d, found %s", len(body.Locals), it.val)
	}
	if _, err := p.expect(itemColon); err != nil {
		return err
	}
	kindIt, err := p.ident("local kind")
	if err != nil {
		return err
	}
	var decl mir.LocalDecl
	switch kindIt.val {
	case "return":
		decl.Kind = mir.LocalReturn
	case "arg":
		decl.Kind = mir.LocalArg
	case "temp":
		decl.Kind = mir.LocalTemp
	default:
		return p.errf(kindIt, "expected return, arg or temp, found %s", kindIt.val)
	}
	if s, ok := p.accept(itemString); ok {
		name, err := strconv.Unquote(s.val)
		if err != nil {
			return p.errf(s, "invalid string literal %s", s.val)
		}
		decl.Name = name
	}
	body.Locals = append(body.Locals, decl)
	return nil
}

// targetRef is a forward reference to a block, checked once the whole
// body has been parsed.
type targetRef struct {
	n  int
	it item
}

func (p *parser) target(targets *[]targetRef) (int, error) {
	it, err := p.ident("block label")
	if err != nil {
		return 0, err
	}
	num, ok := strings.CutPrefix(it.val, "bb")
	if !ok {
		return 0, p.errf(it, "expected block label, found %s", it.val)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, p.errf(it, "expected block label, found %s", it.val)
	}
	*targets = append(*targets, targetRef{n: n, it: it})
	return n, nil
}

func (p *parser) block(body *mir.Body, targets *[]targetRef) error {
	label, err := p.ident("block label")
	if err != nil {
		return err
	}
	if want := fmt.Sprintf("bb%d", len(body.Blocks)); label.val != want {
		return p.errf(label, "expected %s, found %s", want, label.val)
	}
	if _, err := p.expect(itemColon); err != nil {
		return err
	}
	if _, err := p.expect(itemLeftBrace); err != nil {
		return err
	}

	blk := &mir.BasicBlock{}
	for {
		it := p.peek()
		if it.typ == itemRightBrace {
			if blk.Term == nil {
				return p.errf(it, "block bb%d has no terminator", len(body.Blocks))
			}
			p.next()
			body.Blocks = append(body.Blocks, blk)
			return nil
		}
		if blk.Term != nil {
			return p.errf(it, "statement after terminator")
		}
		if err := p.blockItem(blk, targets); err != nil {
			return err
		}
	}
}

func (p *parser) blockItem(blk *mir.BasicBlock, targets *[]targetRef) error {
	it := p.peek()
	if it.typ == itemIdent {
		switch it.val {
		case "nop":
			p.next()
			blk.Stmts = append(blk.Stmts, mir.Statement{Kind: mir.StmtNop})
			return nil
		case "StorageLive", "StorageDead":
			p.next()
			kind := mir.StmtStorageLive
			if it.val == "StorageDead" {
				kind = mir.StmtStorageDead
			}
			if _, err := p.expect(itemLeftParen); err != nil {
				return err
			}
			l, err := p.local()
			if err != nil {
				return err
			}
			if _, err := p.expect(itemRightParen); err != nil {
				return err
			}
			blk.Stmts = append(blk.Stmts, mir.Statement{Kind: kind, Local: l})
			return nil
		case "goto":
			p.next()
			if _, err := p.expect(itemArrow); err != nil {
				return err
			}
			t, err := p.target(targets)
			if err != nil {
				return err
			}
			blk.Term = &mir.Goto{Target: t}
			return nil
		case "return":
			p.next()
			blk.Term = &mir.Return{}
			return nil
		case "unreachable":
			p.next()
			blk.Term = &mir.Unreachable{}
			return nil
		case "switchInt":
			p.next()
			term, err := p.switchInt(targets)
			if err != nil {
				return err
			}
			blk.Term = term
			return nil
		case "drop":
			p.next()
			if _, err := p.expect(itemLeftParen); err != nil {
				return err
			}
			pl, err := p.place()
			if err != nil {
				return err
			}
			if _, err := p.expect(itemRightParen); err != nil {
				return err
			}
			if _, err := p.expect(itemArrow); err != nil {
				return err
			}
			t, err := p.target(targets)
			if err != nil {
				return err
			}
			blk.Term = &mir.Drop{Place: pl, Target: t}
			return nil
		default:
			return p.unexpected(p.next(), "statement or terminator")
		}
	}

	pl, err := p.place()
	if err != nil {
		return err
	}
	if _, err := p.expect(itemEq); err != nil {
		return err
	}
	if next := p.peek(); next.typ == itemIdent && next.val == "call" {
		p.next()
		term, err := p.call(pl, targets)
		if err != nil {
			return err
		}
		blk.Term = term
		return nil
	}
	rv, err := p.rvalue()
	if err != nil {
		return err
	}
	blk.Stmts = append(blk.Stmts, mir.Statement{Kind: mir.StmtAssign, Place: pl, Rvalue: rv})
	return nil
}

func (p *parser) switchInt(targets *[]targetRef) (*mir.SwitchInt, error) {
	if _, err := p.expect(itemLeftParen); err != nil {
		return nil, err
	}
	discr, err := p.operand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemRightParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(itemArrow); err != nil {
		return nil, err
	}
	if _, err := p.expect(itemLeftBracket); err != nil {
		return nil, err
	}
	term := &mir.SwitchInt{Discr: discr}
	for {
		it := p.next()
		switch {
		case it.typ == itemIdent && it.val == "otherwise":
			if _, err := p.expect(itemColon); err != nil {
				return nil, err
			}
			t, err := p.target(targets)
			if err != nil {
				return nil, err
			}
			term.Targets = append(term.Targets, t)
			if _, err := p.expect(itemRightBracket); err != nil {
				return nil, err
			}
			return term, nil
		case it.typ == itemInt:
			v, err := strconv.ParseInt(it.val, 10, 64)
			if err != nil {
				return nil, p.errf(it, "invalid integer %s", it.val)
			}
			if _, err := p.expect(itemColon); err != nil {
				return nil, err
			}
			t, err := p.target(targets)
			if err != nil {
				return nil, err
			}
			term.Values = append(term.Values, v)
			term.Targets = append(term.Targets, t)
			if _, err := p.expect(itemComma); err != nil {
				return nil, err
			}
		default:
			return nil, p.unexpected(it, "switch value or otherwise")
		}
	}
}

func (p *parser) call(dest mir.Place, targets *[]targetRef) (*mir.Call, error) {
	fn, err := p.operand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemLeftParen); err != nil {
		return nil, err
	}
	term := &mir.Call{Func: fn, Dest: dest}
	for {
		if _, ok := p.accept(itemRightParen); ok {
			break
		}
		if len(term.Args) > 0 {
			if _, err := p.expect(itemComma); err != nil {
				return nil, err
			}
		}
		arg, err := p.operand()
		if err != nil {
			return nil, err
		}
		term.Args = append(term.Args, arg)
	}
	if _, err := p.expect(itemArrow); err != nil {
		return nil, err
	}
	t, err := p.target(targets)
	if err != nil {
		return nil, err
	}
	term.Target = t
	return term, nil
}

var binOps = map[string]mir.BinOp{
	"Add":    mir.Add,
	"Sub":    mir.Sub,
	"Mul":    mir.Mul,
	"Div":    mir.Div,
	"Rem":    mir.Rem,
	"BitAnd": mir.BitAnd,
	"BitOr":  mir.BitOr,
	"BitXor": mir.BitXor,
	"Shl":    mir.Shl,
	"Shr":    mir.Shr,
	"Eq":     mir.Eq,
	"Lt":     mir.Lt,
	"Le":     mir.Le,
	"Ne":     mir.Ne,
	"Ge":     mir.Ge,
	"Gt":     mir.Gt,
}

var unOps = map[string]mir.UnOp{
	"Neg": mir.Neg,
	"Not": mir.Not,
}

func (p *parser) rvalue() (mir.Rvalue, error) {
	it := p.peek()
	if it.typ == itemAmp {
		p.next()
		pl, err := p.place()
		if err != nil {
			return nil, err
		}
		return &mir.Ref{X: pl}, nil
	}
	if it.typ != itemIdent {
		return nil, p.unexpected(p.next(), "rvalue")
	}
	switch {
	case it.val == "Copy" || it.val == "Move" || it.val == "const":
		op, err := p.operand()
		if err != nil {
			return nil, err
		}
		return &mir.Use{X: op}, nil
	case it.val == "Len":
		p.next()
		if _, err := p.expect(itemLeftParen); err != nil {
			return nil, err
		}
		pl, err := p.place()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemRightParen); err != nil {
			return nil, err
		}
		return &mir.Len{X: pl}, nil
	default:
		if op, ok := unOps[it.val]; ok {
			p.next()
			if _, err := p.expect(itemLeftParen); err != nil {
				return nil, err
			}
			x, err := p.operand()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(itemRightParen); err != nil {
				return nil, err
			}
			return &mir.UnaryOp{Op: op, X: x}, nil
		}
		if op, ok := binOps[it.val]; ok {
			p.next()
			if _, err := p.expect(itemLeftParen); err != nil {
				return nil, err
			}
			x, err := p.operand()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(itemComma); err != nil {
				return nil, err
			}
			y, err := p.operand()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(itemRightParen); err != nil {
				return nil, err
			}
			return &mir.BinaryOp{Op: op, X: x, Y: y}, nil
		}
		return nil, p.unexpected(p.next(), "rvalue")
	}
}

func (p *parser) operand() (mir.Operand, error) {
	it, err := p.ident("operand")
	if err != nil {
		return mir.Operand{}, err
	}
	switch it.val {
	case "Copy", "Move":
		if _, err := p.expect(itemLeftParen); err != nil {
			return mir.Operand{}, err
		}
		pl, err := p.place()
		if err != nil {
			return mir.Operand{}, err
		}
		if _, err := p.expect(itemRightParen); err != nil {
			return mir.Operand{}, err
		}
		if it.val == "Copy" {
			return mir.Copy(pl), nil
		}
		return mir.Move(pl), nil
	case "const":
		c, err := p.constant()
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.Constant(c), nil
	default:
		return mir.Operand{}, p.unexpected(it, "operand")
	}
}

func (p *parser) constant() (mir.Const, error) {
	it := p.next()
	switch it.typ {
	case itemInt:
		v, err := strconv.ParseInt(it.val, 10, 64)
		if err != nil {
			return mir.Const{}, p.errf(it, "invalid integer %s", it.val)
		}
		return mir.IntConst(v), nil
	case itemString:
		s, err := strconv.Unquote(it.val)
		if err != nil {
			return mir.Const{}, p.errf(it, "invalid string literal %s", it.val)
		}
		return mir.StringConst(s), nil
	case itemIdent:
		switch it.val {
		case "true":
			return mir.BoolConst(true), nil
		case "false":
			return mir.BoolConst(false), nil
		}
	}
	return mir.Const{}, p.unexpected(it, "literal")
}

func (p *parser) place() (mir.Place, error) {
	var pl mir.Place
	if _, ok := p.accept(itemLeftParen); ok {
		if _, err := p.expect(itemStar); err != nil {
			return mir.Place{}, err
		}
		inner, err := p.place()
		if err != nil {
			return mir.Place{}, err
		}
		if _, err := p.expect(itemRightParen); err != nil {
			return mir.Place{}, err
		}
		pl = inner
		pl.Projection = append(pl.Projection, mir.Projection{Kind: mir.ProjDeref})
	} else {
		l, err := p.local()
		if err != nil {
			return mir.Place{}, err
		}
		pl = mir.PlaceFor(l)
	}
	for {
		if _, ok := p.accept(itemDot); ok {
			it, err := p.expect(itemInt)
			if err != nil {
				return mir.Place{}, err
			}
			f, err := strconv.Atoi(it.val)
			if err != nil || f < 0 {
				return mir.Place{}, p.errf(it, "invalid field %s", it.val)
			}
			pl.Projection = append(pl.Projection, mir.Projection{Kind: mir.ProjField, Field: f})
			continue
		}
		if _, ok := p.accept(itemLeftBracket); ok {
			l, err := p.local()
			if err != nil {
				return mir.Place{}, err
			}
			if _, err := p.expect(itemRightBracket); err != nil {
				return mir.Place{}, err
			}
			pl.Projection = append(pl.Projection, mir.Projection{Kind: mir.ProjIndex, Index: l})
			continue
		}
		return pl, nil
	}
}

func (p *parser) local() (mir.Local, error) {
	it, err := p.expect(itemLocal)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(it.val[1:])
	if err != nil {
		return 0, p.errf(it, "invalid local %s", it.val)
	}
	if n >= p.numLocals {
		return 0, p.errf(it, "undeclared local %s", it.val)
	}
	return mir.Local(n), nil
}
