package fixture

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"

	"midend/internal/ast"
)

var fixtureParser = participle.MustBuild[Program](
	participle.Lexer(fixtureLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// Parse lowers fixture source text directly to a validated internal/ast
// tree: every Ident is resolved to a scalar or array Type using the
// parameter/let-declaration types visible in its function, satisfying the
// every-expression-typed contract the mid-end places on its input. This
// package plays the role a semantic analyzer plays in front of a real
// mid-end.
func Parse(source string) (*ast.Program, error) {
	gp, err := fixtureParser.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("fixture: parse error: %w", err)
	}
	prog := &ast.Program{}
	for _, gf := range gp.Functions {
		fn, err := buildFunction(gf)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

// scope resolves a name to its declared type within one function. Flat and
// function-wide (no block shadowing) since the fixture language never
// tests shadowing; good enough for exercising the mid-end.
type scope map[string]ast.Type

func buildFunction(gf *Function) (*ast.Function, error) {
	fn := &ast.Function{Name: gf.Name}
	sc := scope{}

	for _, p := range gf.Params {
		t, err := buildType(p.Type)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, ast.Param{Name: p.Name, Type: t})
		sc[p.Name] = t
	}
	if gf.Return != nil {
		t, err := buildType(*gf.Return)
		if err != nil {
			return nil, err
		}
		fn.ReturnType = &t
	}

	body, err := buildBlock(gf.Body, sc)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func buildType(t TypeRef) (ast.Type, error) {
	dims := make([]int, len(t.Dims))
	for i, d := range t.Dims {
		n, err := strconv.Atoi(d)
		if err != nil {
			return ast.Type{}, fmt.Errorf("fixture: bad array dimension %q: %w", d, err)
		}
		dims[i] = n
	}
	return ast.Type{Dims: dims}, nil
}

func buildBlock(b *Block, sc scope) ([]ast.Stmt, error) {
	if b == nil {
		return nil, nil
	}
	var out []ast.Stmt
	for _, s := range b.Stmts {
		stmt, err := buildStmt(s, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func buildStmt(s *Stmt, sc scope) (ast.Stmt, error) {
	switch {
	case s.Let != nil:
		return buildLet(s.Let, sc)
	case s.Assign != nil:
		return buildAssign(s.Assign, sc)
	case s.If != nil:
		return buildIf(s.If, sc)
	case s.For != nil:
		return buildFor(s.For, sc)
	case s.Break != nil:
		return &ast.Break{}, nil
	case s.Continue != nil:
		return &ast.Continue{}, nil
	case s.Return != nil:
		if s.Return.Value == nil {
			return &ast.Return{}, nil
		}
		v, err := buildExpr(s.Return.Value, sc)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: v}, nil
	case s.ExprStmt != nil:
		args, err := buildExprList(s.ExprStmt.Value.Args, sc)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: &ast.CallExpr{Function: s.ExprStmt.Value.Function, Args: args}}, nil
	default:
		return nil, fmt.Errorf("fixture: empty statement node")
	}
}

func buildLet(l *LetStmt, sc scope) (ast.Stmt, error) {
	if len(l.Dims) > 0 {
		if !l.Empty {
			return nil, fmt.Errorf("fixture: array %q must be declared with the empty initializer {}", l.Name)
		}
		dims := make([]int, len(l.Dims))
		for i, d := range l.Dims {
			n, err := strconv.Atoi(d)
			if err != nil {
				return nil, fmt.Errorf("fixture: bad array dimension %q: %w", d, err)
			}
			dims[i] = n
		}
		sc[l.Name] = ast.Type{Dims: dims}
		return &ast.ArrayDecl{Name: l.Name, Dims: dims}, nil
	}
	if l.Empty {
		return nil, fmt.Errorf("fixture: scalar %q cannot take the array initializer {}", l.Name)
	}
	v, err := buildExpr(l.Value, sc)
	if err != nil {
		return nil, err
	}
	sc[l.Name] = ast.Type{}
	return &ast.Assignment{Name: l.Name, Rhs: v}, nil
}

func buildAssign(a *AssignStmt, sc scope) (ast.Stmt, error) {
	v, err := buildExpr(a.Value, sc)
	if err != nil {
		return nil, err
	}
	if len(a.Indices) == 0 {
		return &ast.Assignment{Name: a.Name, Rhs: v}, nil
	}
	t, ok := sc[a.Name]
	if !ok || !t.IsArray() {
		return nil, fmt.Errorf("fixture: %q indexed but not a declared array", a.Name)
	}
	indices, err := buildExprList(a.Indices, sc)
	if err != nil {
		return nil, err
	}
	return &ast.IndexAssignment{Name: a.Name, Dims: t.Dims, Indices: indices, Rhs: v}, nil
}

func buildIf(i *IfStmt, sc scope) (ast.Stmt, error) {
	cond, err := buildExpr(&i.Cond, sc)
	if err != nil {
		return nil, err
	}
	then, err := buildBlock(i.Then, sc)
	if err != nil {
		return nil, err
	}
	var els []ast.Stmt
	if i.Else != nil {
		els, err = buildBlock(i.Else, sc)
		if err != nil {
			return nil, err
		}
	}
	return &ast.Condition{Cond: cond, Then: then, Else: els}, nil
}

func buildFor(f *ForStmt, sc scope) (ast.Stmt, error) {
	if f.Cond == nil {
		if f.Init != nil || f.Update != nil {
			return nil, fmt.Errorf("fixture: for loop with an init or update requires a condition")
		}
		body, err := buildBlock(f.Body, sc)
		if err != nil {
			return nil, err
		}
		return &ast.UnconditionalLoop{Body: body}, nil
	}

	var init ast.Stmt
	if f.Init != nil {
		switch {
		case f.Init.Let != nil:
			v, err := buildExpr(f.Init.Let.Value, sc)
			if err != nil {
				return nil, err
			}
			sc[f.Init.Let.Name] = ast.Type{}
			init = &ast.Assignment{Name: f.Init.Let.Name, Rhs: v}
		case f.Init.Assign != nil:
			v, err := buildExpr(f.Init.Assign.Value, sc)
			if err != nil {
				return nil, err
			}
			init = &ast.Assignment{Name: f.Init.Assign.Name, Rhs: v}
		}
	}
	cond, err := buildExpr(f.Cond, sc)
	if err != nil {
		return nil, err
	}
	var update ast.Stmt
	if f.Update != nil {
		v, err := buildExpr(f.Update.Value, sc)
		if err != nil {
			return nil, err
		}
		update = &ast.Assignment{Name: f.Update.Name, Rhs: v}
	}
	body, err := buildBlock(f.Body, sc)
	if err != nil {
		return nil, err
	}
	return &ast.ForLoop{Init: init, Cond: cond, Update: update, Body: body}, nil
}

func buildExprList(exprs []*Expr, sc scope) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(exprs))
	for i, e := range exprs {
		v, err := buildExpr(e, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// buildExpr folds the precedence-level parse tree into a left-associative
// ast.BinaryExpr chain, typing every node along the way.
func buildExpr(e *Expr, sc scope) (ast.Expr, error) {
	return buildOr(e.Or, sc)
}

func buildOr(o *OrExpr, sc scope) (ast.Expr, error) {
	left, err := buildAnd(o.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range o.Rest {
		right, err := buildAnd(r, sc)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func buildAnd(a *AndExpr, sc scope) (ast.Expr, error) {
	left, err := buildEq(a.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Rest {
		right, err := buildEq(r, sc)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func buildEq(e *EqExpr, sc scope) (ast.Expr, error) {
	left, err := buildRel(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		right, err := buildRel(op.Right, sc)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func buildRel(r *RelExpr, sc scope) (ast.Expr, error) {
	left, err := buildAdd(r.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, op := range r.Ops {
		right, err := buildAdd(op.Right, sc)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func buildAdd(a *AddExpr, sc scope) (ast.Expr, error) {
	left, err := buildMul(a.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Ops {
		right, err := buildMul(op.Right, sc)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func buildMul(m *MulExpr, sc scope) (ast.Expr, error) {
	left, err := buildUnary(m.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, op := range m.Ops {
		right, err := buildUnary(op.Right, sc)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Op, Left: left, Right: right}
	}
	return left, nil
}

func buildUnary(u *UnaryExpr, sc scope) (ast.Expr, error) {
	if u.Op != "" {
		inner, err := buildUnary(u.Inner, sc)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: u.Op, Operand: inner}, nil
	}
	return buildPostfix(u.Atom, sc)
}

func buildPostfix(p *PostfixExpr, sc scope) (ast.Expr, error) {
	base, err := buildPrimary(p.Primary, sc)
	if err != nil {
		return nil, err
	}
	if len(p.Indices) == 0 {
		return base, nil
	}
	ident, ok := base.(*ast.Ident)
	if !ok || !ident.Type.IsArray() {
		return nil, fmt.Errorf("fixture: indexing expression requires a declared array identifier")
	}
	indices, err := buildExprList(p.Indices, sc)
	if err != nil {
		return nil, err
	}
	return &ast.IndexExpr{Base: ident, Indices: indices}, nil
}

func buildPrimary(p *Primary, sc scope) (ast.Expr, error) {
	switch {
	case p.Call != nil:
		args, err := buildExprList(p.Call.Args, sc)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Function: p.Call.Function, Args: args}, nil
	case p.Number != nil:
		n, err := strconv.ParseInt(*p.Number, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fixture: bad integer literal %q: %w", *p.Number, err)
		}
		return &ast.IntLit{Value: n}, nil
	case p.Ident != nil:
		t := sc[*p.Ident]
		return &ast.Ident{Name: *p.Ident, Type: t}, nil
	case p.Parens != nil:
		return buildExpr(p.Parens, sc)
	default:
		return nil, fmt.Errorf("fixture: empty primary expression node")
	}
}
