package ir

import (
	"fmt"
	"strings"
)

// Printer renders a Function as textual IR: a strings.Builder written one
// logical line at a time.
type Printer struct {
	output strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

// Print renders every function in prog, in declaration order.
func Print(prog *Program) string {
	p := NewPrinter()
	for i, fn := range prog.Functions {
		if i > 0 {
			p.output.WriteString("\n")
		}
		p.printFunction(fn)
	}
	return p.output.String()
}

// PrintFunction renders a single function's CFG.
func PrintFunction(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) printFunction(fn *Function) {
	p.output.WriteString(fmt.Sprintf("function %s:\n", fn.Name))
	for _, b := range fn.Blocks {
		p.printBlock(b)
	}
}

func (p *Printer) printBlock(b *BasicBlock) {
	preds := labelsOf(b.Predecessors)
	p.output.WriteString(fmt.Sprintf("; pred: [%s]\n", strings.Join(preds, ", ")))
	if b.Role != "" {
		p.output.WriteString(fmt.Sprintf("%s: ; [%s]\n", b.Label, b.Role))
	} else {
		p.output.WriteString(fmt.Sprintf("%s:\n", b.Label))
	}

	phis := b.Phis()
	for _, ph := range phis {
		p.output.WriteString("    " + renderPhi(ph) + "\n")
	}
	if len(phis) > 0 {
		p.output.WriteString("\n")
	}

	for _, inst := range b.Instructions {
		p.output.WriteString("    " + renderInstruction(inst) + "\n")
	}
	if b.Terminator != nil {
		p.output.WriteString("    " + renderInstruction(b.Terminator) + "\n")
	}

	succs := labelsOf(b.Successors)
	p.output.WriteString(fmt.Sprintf("; succ: [%s]\n", strings.Join(succs, ", ")))
}

func labelsOf(blocks []*BasicBlock) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Label
	}
	return out
}

func renderPhi(ph *PhiInst) string {
	var s strings.Builder
	s.WriteString(renderOperand(ph.Res) + " = ϕ(")
	for i, lbl := range ph.Inputs.Labels() {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(lbl + ": " + renderOperand(ph.Inputs.Values()[i]))
	}
	s.WriteString(")")
	return s.String()
}

func renderInstruction(inst Instruction) string {
	switch i := inst.(type) {
	case *AssignInst:
		return renderOperand(i.Res) + " = " + renderOperation(i.RHS)
	case *CmpInst:
		return fmt.Sprintf("cmp(%s, %s)\n    if CF == 1 then jmp %s else jmp %s",
			renderOperand(i.Left), renderOperand(i.Right), i.Then.Label, i.Else.Label)
	case *UncondJumpInst:
		return "jmp " + i.Target.Label
	case *ReturnInst:
		if i.Value == nil {
			return "return"
		}
		return "return(" + renderOperand(i.Value) + ")"
	case *ArrayInitInst:
		dims := make([]string, len(i.Dims))
		for j, d := range i.Dims {
			dims[j] = fmt.Sprintf("[%d]", d)
		}
		return renderOperand(i.Res) + " = array_init(" + strings.Join(dims, "") + ")"
	case *StoreInst:
		return "Store(" + renderOperand(i.Addr) + ", " + renderOperand(i.Value) + ")"
	case *GetArgumentInst:
		return fmt.Sprintf("%s = getarg(%d)", renderOperand(i.Res), i.Index)
	default:
		panic(fmt.Sprintf("ir: unknown instruction kind %T in printer", inst))
	}
}

func renderOperation(op Operation) string {
	switch o := op.(type) {
	case *BinaryOp:
		return renderOperand(o.Left) + " " + string(o.Op) + " " + renderOperand(o.Right)
	case *UnaryOp:
		return string(o.Op) + renderOperand(o.Operand)
	case *LoadOp:
		return "Load(" + renderOperand(o.Address) + ")"
	case *CallOp:
		args := make([]string, len(o.Args))
		for i, a := range o.Args {
			args[i] = renderOperand(a)
		}
		return o.Function + "(" + strings.Join(args, ", ") + ")"
	case *CopyOp:
		return renderOperand(o.Value)
	default:
		panic(fmt.Sprintf("ir: unknown operation kind %T in printer", op))
	}
}

// renderOperand renders a constant as a decimal integer, a plain SSA
// variable as name_vN, and an address-typed SSA variable with its
// base-pointer annotation: "(B_vK<~)name_vN" when the base is a different
// variable, "(<~)name_vN" when the value is itself the base.
func renderOperand(v *Value) string {
	if v == nil {
		return "<none>"
	}
	if v.IsConst {
		return fmt.Sprintf("%d", v.ConstVal)
	}
	name := v.String()
	if v.Base == nil {
		return name
	}
	if v.Base == v {
		return "(<~)" + name
	}
	return "(" + v.Base.String() + "<~)" + name
}
