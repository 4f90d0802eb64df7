package mir

import (
	"fmt"
	"strconv"
	"strings"
)

// The textual form produced here is the same one package parse
// accepts; Body.String round-trips.

func (c Const) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("const %d", c.Int)
	case ConstBool:
		return fmt.Sprintf("const %t", c.Bool)
	case ConstString:
		return "const " + strconv.Quote(c.Str)
	default:
		return fmt.Sprintf("const <kind %d>", c.Kind)
	}
}

func (p Place) String() string {
	s := p.Local.String()
	for _, proj := range p.Projection {
		switch proj.Kind {
		case ProjDeref:
			s = "(*" + s + ")"
		case ProjField:
			s = fmt.Sprintf("%s.%d", s, proj.Field)
		case ProjIndex:
			s = fmt.Sprintf("%s[%s]", s, proj.Index)
		}
	}
	return s
}

func (op Operand) String() string {
	switch op.Kind {
	case OperandCopy:
		return fmt.Sprintf("Copy(%s)", op.Place)
	case OperandMove:
		return fmt.Sprintf("Move(%s)", op.Place)
	case OperandConst:
		return op.Const.String()
	default:
		return fmt.Sprintf("Operand(kind %d)", op.Kind)
	}
}

var unOpNames = [...]string{
	Neg: "Neg",
	Not: "Not",
}

var binOpNames = [...]string{
	Add:    "Add",
	Sub:    "Sub",
	Mul:    "Mul",
	Div:    "Div",
	Rem:    "Rem",
	BitAnd: "BitAnd",
	BitOr:  "BitOr",
	BitXor: "BitXor",
	Shl:    "Shl",
	Shr:    "Shr",
	Eq:     "Eq",
	Lt:     "Lt",
	Le:     "Le",
	Ne:     "Ne",
	Ge:     "Ge",
	Gt:     "Gt",
}

func (op UnOp) String() string  { return unOpNames[op] }
func (op BinOp) String() string { return binOpNames[op] }

func (u *Use) String() string     { return u.X.String() }
func (u *UnaryOp) String() string { return fmt.Sprintf("%s(%s)", u.Op, u.X) }
func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s(%s, %s)", b.Op, b.X, b.Y)
}
func (r *Ref) String() string { return "&" + r.X.String() }
func (l *Len) String() string { return fmt.Sprintf("Len(%s)", l.X) }

func (s *Statement) String() string {
	switch s.Kind {
	case StmtNop:
		return "nop"
	case StmtAssign:
		return fmt.Sprintf("%s = %s", s.Place, s.Rvalue)
	case StmtStorageLive:
		return fmt.Sprintf("StorageLive(%s)", s.Local)
	case StmtStorageDead:
		return fmt.Sprintf("StorageDead(%s)", s.Local)
	default:
		return fmt.Sprintf("Statement(kind %d)", s.Kind)
	}
}

func (g *Goto) String() string        { return fmt.Sprintf("goto -> bb%d", g.Target) }
func (r *Return) String() string      { return "return" }
func (u *Unreachable) String() string { return "unreachable" }

func (s *SwitchInt) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "switchInt(%s) -> [", s.Discr)
	for i, v := range s.Values {
		fmt.Fprintf(&sb, "%d: bb%d, ", v, s.Targets[i])
	}
	fmt.Fprintf(&sb, "otherwise: bb%d]", s.Targets[len(s.Targets)-1])
	return sb.String()
}

func (d *Drop) String() string {
	return fmt.Sprintf("drop(%s) -> bb%d", d.Place, d.Target)
}

func (c *Call) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = call %s(", c.Dest, c.Func)
	for i, arg := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	fmt.Fprintf(&sb, ") -> bb%d", c.Target)
	return sb.String()
}

func (b *Body) String() string {
	var sb strings.Builder
	if b.Source != SourceFn {
		sb.WriteString(b.Source.String())
		sb.WriteByte(' ')
	} else {
		sb.WriteString("fn ")
	}
	sb.WriteString(b.Name)
	sb.WriteString(" {\n")
	for l, decl := range b.Locals {
		fmt.Fprintf(&sb, "    let %s: %s", Local(l), decl.Kind)
		if decl.Name != "" {
			fmt.Fprintf(&sb, " %s", strconv.Quote(decl.Name))
		}
		sb.WriteByte('\n')
	}
	for i, blk := range b.Blocks {
		fmt.Fprintf(&sb, "\n    bb%d: {\n", i)
		for j := range blk.Stmts {
			fmt.Fprintf(&sb, "        %s\n", &blk.Stmts[j])
		}
		fmt.Fprintf(&sb, "        %s\n", blk.Term)
		sb.WriteString("    }\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
