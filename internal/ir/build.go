package ir

import (
	"corec/internal/engines"
	"corec/internal/typedtree"
)

// builder threads per-function state through the typed-tree walk, mirroring
// the teacher's Compiler/Scope split (compregister.Compiler): one instance
// per function, a parent-linked name->local table for nested blocks.
type builder struct {
	engines *engines.Engines
	fn      *Function
	block   BlockID
	scope   *varScope
}

type varScope struct {
	parent *varScope
	regs   map[string]Reg
	locals map[string]int
}

func newVarScope(parent *varScope) *varScope {
	return &varScope{parent: parent, regs: make(map[string]Reg), locals: make(map[string]int)}
}

func (s *varScope) lookup(name string) (Reg, int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if r, ok := cur.regs[name]; ok {
			return r, cur.locals[name], true
		}
	}
	return 0, 0, false
}

// BuildProgram lowers every elaborated function body to IR, one Function per
// typedtree.Decl.
func BuildProgram(e *engines.Engines, prog *typedtree.Program) *Program {
	out := &Program{}
	for _, fd := range prog.Functions {
		out.Functions = append(out.Functions, buildFunction(e, fd))
	}
	return out
}

func buildFunction(e *engines.Engines, fd typedtree.Decl) *Function {
	fn := NewFunction(fd.ID)
	b := &builder{engines: e, fn: fn, block: fn.Entry, scope: newVarScope(nil)}

	dd := e.Decls.Get(fd.ID)
	for _, p := range dd.Params {
		r := fn.FreshReg()
		local := fn.AddLocal(p.Name, p.Type)
		fn.Params = append(fn.Params, r)
		b.scope.regs[p.Name] = r
		b.scope.locals[p.Name] = local
		fn.Emit(b.block, Instr{Op: OpStore, Local: local, Lhs: RegValue(r)})
	}

	for _, stmt := range fd.Body {
		b.buildStmt(stmt)
	}
	if fd.Tail != nil {
		v := b.buildExpr(fd.Tail)
		fn.Emit(b.block, Instr{Op: OpReturn, Lhs: v})
	} else {
		fn.Emit(b.block, Instr{Op: OpReturn})
	}
	return fn
}

func (b *builder) buildStmt(s typedtree.Stmt) {
	switch s.Kind {
	case typedtree.StmtLet:
		local := b.fn.AddLocal(s.Name, s.Type)
		r := b.fn.FreshReg()
		b.scope.regs[s.Name] = r
		b.scope.locals[s.Name] = local
		if s.Init != nil {
			v := b.buildExpr(s.Init)
			b.fn.Emit(b.block, Instr{Op: OpStore, Local: local, Lhs: v, Type: s.Type})
		}
	case typedtree.StmtExpr:
		b.buildExpr(s.Expr)
	case typedtree.StmtReturn:
		var v Value
		if s.Expr != nil {
			v = b.buildExpr(s.Expr)
		}
		b.fn.Emit(b.block, Instr{Op: OpReturn, Lhs: v})
	case typedtree.StmtWhile:
		b.buildWhile(s)
	}
}

func (b *builder) buildWhile(s typedtree.Stmt) {
	condBlock := b.fn.NewBlock()
	bodyBlock := b.fn.NewBlock()
	afterBlock := b.fn.NewBlock()

	b.fn.Emit(b.block, Instr{Op: OpJump, Target: condBlock})
	b.block = condBlock
	cond := b.buildExpr(s.Cond)
	b.fn.Emit(b.block, Instr{Op: OpJumpIfNotZero, Lhs: cond, TrueTarget: bodyBlock, FalseTarget: afterBlock})

	b.block = bodyBlock
	inner := newVarScope(b.scope)
	savedScope := b.scope
	b.scope = inner
	for _, stmt := range s.Body {
		b.buildStmt(stmt)
	}
	b.scope = savedScope
	b.fn.Emit(b.block, Instr{Op: OpJump, Target: condBlock})

	b.block = afterBlock
}

func (b *builder) buildExpr(e *typedtree.Expr) Value {
	if e == nil {
		return Value{}
	}
	switch e.Kind {
	case typedtree.ExprLiteral:
		if n, ok := e.LitValue.(int64); ok {
			return ConstValue(n)
		}
		if n, ok := e.LitValue.(int); ok {
			return ConstValue(int64(n))
		}
		if bl, ok := e.LitValue.(bool); ok {
			if bl {
				return ConstValue(1)
			}
			return ConstValue(0)
		}
		r := b.fn.FreshReg()
		b.fn.Emit(b.block, Instr{Op: OpMoveImmediate, Dst: r, Type: e.Type})
		return RegValue(r)

	case typedtree.ExprVariable:
		if r, _, ok := b.scope.lookup(e.VarName); ok {
			return RegValue(r)
		}
		// Elaboration (C6) already rejected undeclared variables; reaching
		// here means the variable was bound only as a parameter/local stack
		// slot without a live register (should not happen in practice).
		return Value{}

	case typedtree.ExprBinary:
		lhs := b.buildExpr(e.Left)
		rhs := b.buildExpr(e.Right)
		dst := b.fn.FreshReg()
		b.fn.Emit(b.block, Instr{Op: OpBinary, Bin: convertOp(e.Op), Dst: dst, Lhs: lhs, Rhs: rhs, Type: e.Type})
		return RegValue(dst)

	case typedtree.ExprUnary:
		operand := b.buildExpr(e.Right)
		dst := b.fn.FreshReg()
		b.fn.Emit(b.block, Instr{Op: OpUnary, Dst: dst, Lhs: operand, Type: e.Type})
		return RegValue(dst)

	case typedtree.ExprIf:
		return b.buildIf(e)

	case typedtree.ExprBlock:
		savedScope := b.scope
		b.scope = newVarScope(b.scope)
		for _, stmt := range e.Stmts {
			b.buildStmt(stmt)
		}
		var v Value
		if e.Tail != nil {
			v = b.buildExpr(e.Tail)
		}
		b.scope = savedScope
		return v

	case typedtree.ExprCall:
		var args []Value
		for _, a := range e.Args {
			args = append(args, b.buildExpr(a))
		}
		dst := b.fn.FreshReg()
		b.fn.Emit(b.block, Instr{Op: OpCall, Dst: dst, Callee: e.Fn, HasCallee: e.HasFn, Args: args, Results: []Reg{dst}, Type: e.Type})
		return RegValue(dst)

	case typedtree.ExprMethodCall:
		recv := b.buildExpr(e.Receiver)
		args := append([]Value{recv}, buildArgs(b, e.Args)...)
		dst := b.fn.FreshReg()
		b.fn.Emit(b.block, Instr{Op: OpCall, Dst: dst, Callee: e.Fn, HasCallee: e.HasFn, Args: args, Results: []Reg{dst}, Type: e.Type})
		return RegValue(dst)

	case typedtree.ExprFieldAccess:
		obj := b.buildExpr(e.Object)
		dst := b.fn.FreshReg()
		b.fn.Emit(b.block, Instr{Op: OpLoad, Dst: dst, Lhs: obj, Local: e.FieldIdx, Type: e.Type})
		return RegValue(dst)

	case typedtree.ExprStructInit:
		dst := b.fn.FreshReg()
		for _, fi := range e.FieldInits {
			v := b.buildExpr(fi.Value)
			b.fn.Emit(b.block, Instr{Op: OpStore, Dst: dst, Lhs: v})
		}
		return RegValue(dst)

	case typedtree.ExprEnumInit:
		dst := b.fn.FreshReg()
		if e.Payload != nil {
			v := b.buildExpr(e.Payload)
			b.fn.Emit(b.block, Instr{Op: OpStore, Dst: dst, Lhs: v, Local: e.VariantIdx})
		}
		return RegValue(dst)

	case typedtree.ExprTuple, typedtree.ExprArray:
		dst := b.fn.FreshReg()
		for i, el := range e.Elements {
			v := b.buildExpr(el)
			b.fn.Emit(b.block, Instr{Op: OpStore, Dst: dst, Lhs: v, Local: i})
		}
		return RegValue(dst)

	default:
		return Value{}
	}
}

func buildArgs(b *builder, exprs []*typedtree.Expr) []Value {
	var out []Value
	for _, e := range exprs {
		out = append(out, b.buildExpr(e))
	}
	return out
}

func (b *builder) buildIf(e *typedtree.Expr) Value {
	cond := b.buildExpr(e.Cond)
	thenBlock := b.fn.NewBlock()
	elseBlock := b.fn.NewBlock()
	afterBlock := b.fn.NewBlock()
	b.fn.Emit(b.block, Instr{Op: OpJumpIfNotZero, Lhs: cond, TrueTarget: thenBlock, FalseTarget: elseBlock})

	result := b.fn.FreshReg()

	b.block = thenBlock
	thenVal := b.buildExpr(e.Then)
	if thenVal.IsReg || thenVal.IsConst {
		b.fn.Emit(b.block, Instr{Op: OpMove, Dst: result, Lhs: thenVal})
	}
	b.fn.Emit(b.block, Instr{Op: OpJump, Target: afterBlock})

	b.block = elseBlock
	if e.Else != nil {
		elseVal := b.buildExpr(e.Else)
		if elseVal.IsReg || elseVal.IsConst {
			b.fn.Emit(b.block, Instr{Op: OpMove, Dst: result, Lhs: elseVal})
		}
	}
	b.fn.Emit(b.block, Instr{Op: OpJump, Target: afterBlock})

	b.block = afterBlock
	return RegValue(result)
}

func convertOp(op typedtree.Operator) BinOp {
	switch op {
	case "+":
		return BinAdd
	case "-":
		return BinSub
	case "*":
		return BinMul
	case "/":
		return BinDiv
	case "%":
		return BinMod
	case "&":
		return BinAnd
	case "|":
		return BinOr
	case "^":
		return BinXor
	case "<<":
		return BinShl
	case ">>":
		return BinShr
	case "==":
		return BinEq
	case ">":
		return BinGt
	case "<":
		return BinLt
	default:
		return BinAdd
	}
}
