package typecheck

import (
	"corec/internal/attr"
	"corec/internal/decl"
	"corec/internal/derive"
	"corec/internal/diag"
	"corec/internal/parsetree"
	"corec/internal/span"
	"corec/internal/typedtree"
	"corec/internal/types"
)

// localScope is a parent-linked chain of local variable types, mirroring the
// teacher's compregister.Scope (name -> register) but mapping names to
// resolved types instead of registers, since C6 elaborates to a typed tree,
// not bytecode.
type localScope struct {
	parent *localScope
	vars   map[string]types.ID
}

func newLocalScope(parent *localScope) *localScope {
	return &localScope{parent: parent, vars: make(map[string]types.ID)}
}

func (s *localScope) declare(name string, t types.ID) { s.vars[name] = t }

func (s *localScope) lookup(name string) (types.ID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return 0, false
}

// ElaborateProgram lowers an entire untyped Program to the typed tree,
// registering every declaration in ctx.Module first (so function bodies can
// refer to any sibling declaration) and then elaborating function bodies.
func ElaborateProgram(ctx *Context, prog *parsetree.Program) *typedtree.Program {
	out := &typedtree.Program{}

	// Pass 1: register struct/enum/trait shapes, in declaration order. Field
	// types are resolved as each struct/enum is registered, so a field can
	// name only a type declared before it; impls and functions (pass 2) see
	// every shape.
	var derivable []*parsetree.Decl
	for i := range prog.Decls {
		d := &prog.Decls[i]
		switch d.Kind {
		case parsetree.DeclStruct:
			out.Decls = append(out.Decls, ctx.registerStruct(d))
			derivable = append(derivable, d)
		case parsetree.DeclEnum:
			out.Decls = append(out.Decls, ctx.registerEnum(d))
			derivable = append(derivable, d)
		case parsetree.DeclTrait:
			out.Decls = append(out.Decls, ctx.registerTrait(d))
		}
	}

	// Pass 1.5: auto-derive (spec §4.4). Every struct/enum carrying a
	// `derive(...)` attribute gets an eligibility check against each named
	// trait, and a generated impl registered exactly as a hand-written one
	// would be, so later passes never need to know it was synthesized.
	for _, d := range derivable {
		ctx.deriveDecl(d, out)
	}

	// Pass 2: register impls and free functions (methods need struct/enum
	// ids from pass 1; trait bodies need trait ids).
	for i := range prog.Decls {
		d := &prog.Decls[i]
		switch d.Kind {
		case parsetree.DeclImpl:
			id := ctx.registerImpl(d)
			out.Decls = append(out.Decls, id)
		case parsetree.DeclFunction:
			id := ctx.registerFunction(d.Function, false)
			out.Decls = append(out.Decls, id)
		}
	}

	// Pass 3: elaborate bodies now that every signature is known.
	for _, id := range out.Decls {
		dd := ctx.Engines.Decls.Get(id)
		if dd.Kind == decl.KindFunction && dd.Body != nil {
			fd := dd.Body.(*parsetree.FunctionDecl)
			body, tail := ctx.elaborateFunctionBody(id, fd)
			out.Functions = append(out.Functions, typedtree.Decl{ID: id, Body: body, Tail: tail})
		}
		if dd.Kind == decl.KindImpl {
			for _, mID := range dd.Methods {
				md := ctx.Engines.Decls.Get(mID)
				fd, ok := md.Body.(*parsetree.FunctionDecl)
				if !ok {
					// A derived method has no parse-tree body: deriveDecl has
					// already appended its typed body to out.Functions.
					continue
				}
				body, tail := ctx.elaborateFunctionBody(mID, fd)
				out.Functions = append(out.Functions, typedtree.Decl{ID: mID, Body: body, Tail: tail})
			}
		}
	}
	return out
}

func (ctx *Context) resolveTypeExpr(te *parsetree.TypeExpr) types.ID {
	if te == nil {
		return ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindUnknown})
	}
	if te.HasCount {
		var elem types.ID
		if len(te.Args) > 0 {
			elem = ctx.resolveTypeExpr(te.Args[0])
		} else {
			elem = ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindUnknown})
		}
		return ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindArray, Elem: elem, Count: te.ArrayCount})
	}
	if len(te.Path) == 1 {
		if id, ok := builtinType(ctx, te.Path[0]); ok {
			return id
		}
	}
	var args []types.ID
	for _, a := range te.Args {
		args = append(args, ctx.resolveTypeExpr(a))
	}
	raw := ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindCustom, Path: te.Path, TypeArgs: args})
	resolved, err := ctx.Engines.Types.Resolve(raw, ctx.Module, false, 0)
	if err != nil {
		ctx.push(diag.Errorf(diag.CodeUnresolvedName, span.Dummy(), "%v", err))
		return ctx.errorRecovery()
	}
	return resolved
}

func builtinType(ctx *Context, name string) (types.ID, bool) {
	e := ctx.Engines.Types
	switch name {
	case "u8":
		return e.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 8}), true
	case "u16":
		return e.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 16}), true
	case "u32":
		return e.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 32}), true
	case "u64":
		return e.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 64}), true
	case "u256":
		return e.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 256}), true
	case "bool":
		return e.Insert(types.Descriptor{Kind: types.KindBoolean}), true
	case "b256":
		return e.Insert(types.Descriptor{Kind: types.KindB256}), true
	case "str":
		return e.Insert(types.Descriptor{Kind: types.KindStringSlice}), true
	case "Self":
		if ctx.HasSelf {
			return ctx.Self, true
		}
		return e.Insert(types.Descriptor{Kind: types.KindSelfType}), true
	}
	return 0, false
}

func (ctx *Context) registerStruct(d *parsetree.Decl) decl.ID {
	ctx.ValidateAttributes(decl.KindStruct, d.Attributes)
	dd := decl.Decl{Kind: decl.KindStruct, Name: d.Name, Span: d.Span, TypeParams: ctx.convertTypeParams(d.TypeParams)}
	if d.Public {
		dd.Visibility = decl.VisibilityPublic
	}
	for _, f := range d.Fields {
		dd.Fields = append(dd.Fields, decl.Field{Name: f.Name, Type: ctx.resolveTypeExpr(f.Type), Span: f.Span})
	}
	id := ctx.Engines.Decls.Insert(dd)
	ctx.Module.DeclareType(d.Name, id)
	return id
}

func (ctx *Context) registerEnum(d *parsetree.Decl) decl.ID {
	ctx.ValidateAttributes(decl.KindEnum, d.Attributes)
	dd := decl.Decl{Kind: decl.KindEnum, Name: d.Name, Span: d.Span, TypeParams: ctx.convertTypeParams(d.TypeParams)}
	if d.Public {
		dd.Visibility = decl.VisibilityPublic
	}
	for _, f := range d.Fields {
		var ty types.ID
		if f.Type != nil {
			ty = ctx.resolveTypeExpr(f.Type)
		}
		dd.Fields = append(dd.Fields, decl.Field{Name: f.Name, Type: ty, Span: f.Span})
	}
	id := ctx.Engines.Decls.Insert(dd)
	ctx.Module.DeclareType(d.Name, id)
	return id
}

func (ctx *Context) registerTrait(d *parsetree.Decl) decl.ID {
	ctx.ValidateAttributes(decl.KindTrait, d.Attributes)
	dd := decl.Decl{Kind: decl.KindTrait, Name: d.Name, Span: d.Span, TypeParams: ctx.convertTypeParams(d.TypeParams)}
	if d.Public {
		dd.Visibility = decl.VisibilityPublic
	}
	for _, m := range d.RequiredMethods {
		sig := decl.FunctionSig{Name: m.Name, Return: ctx.resolveTypeExpr(m.Return)}
		for _, p := range m.Params {
			sig.Params = append(sig.Params, ctx.resolveTypeExpr(p.Type))
		}
		dd.TraitMethods = append(dd.TraitMethods, sig)
	}
	id := ctx.Engines.Decls.Insert(dd)
	ctx.Module.DeclareType(d.Name, id)
	return id
}

// deriveDecl runs spec §4.4 for one struct/enum declaration: resolve each
// trait named by its `derive(...)` attribute against ctx.Module, check
// eligibility, and register the generated impl/method/body on success. An
// unresolved trait name or a failed eligibility check becomes a diagnostic,
// never a panic (spec §7); derive is silently a no-op for a declaration with
// no `derive` attribute at all.
func (ctx *Context) deriveDecl(d *parsetree.Decl, out *typedtree.Program) {
	targetID, ok := ctx.Module.Types[d.Name]
	if !ok {
		return
	}
	for _, traitName := range attr.DeriveTraits(d.Attributes) {
		traitID, ok := ctx.Module.Types[traitName]
		if !ok {
			ctx.push(diag.Errorf(diag.CodeUnresolvedName, d.Span,
				"cannot derive `%s`: no such trait in scope", traitName))
			continue
		}
		kind, ok := deriveKindFor(traitName)
		if !ok {
			ctx.push(diag.Errorf(diag.CodeUnresolvedName, d.Span,
				"`%s` is not a derivable trait", traitName))
			continue
		}
		if eligible, reason := derive.Eligible(ctx.Engines, decl.ID(targetID), decl.ID(traitID)); !eligible {
			ctx.push(diag.Errorf(diag.CodeUnsatisfiedBound, d.Span,
				"cannot derive `%s` for `%s`: %s", traitName, d.Name, reason))
			continue
		}
		result := derive.Generate(ctx.Engines, ctx.Module, derive.Request{
			Target: decl.ID(targetID), Trait: decl.ID(traitID), Kind: kind,
		})
		// The trait resolved in ctx.Module, as registerImpl marks it.
		result.Impl.InCurrentMod = true
		implID := ctx.Engines.Decls.Insert(result.Impl)
		methodID := ctx.Engines.Decls.Insert(result.Method)
		implDecl := ctx.Engines.Decls.Get(implID)
		implDecl.Methods = append(implDecl.Methods, methodID)
		ctx.Module.RegisterImpl(result.Impl.ForType, implID)
		out.Decls = append(out.Decls, implID)
		out.Functions = append(out.Functions, typedtree.Decl{ID: methodID, Body: result.Body.Body, Tail: result.Body.Tail})
	}
}

// deriveKindFor maps a `derive`d trait name to the Encode/Decode obligation
// it generates; any other trait name is simply not derivable by this engine.
func deriveKindFor(traitName string) (derive.Kind, bool) {
	switch traitName {
	case "Encode":
		return derive.Encode, true
	case "Decode":
		return derive.Decode, true
	default:
		return 0, false
	}
}

func (ctx *Context) registerFunction(f *parsetree.FunctionDecl, method bool) decl.ID {
	ctx.ValidateAttributes(decl.KindFunction, f.Attributes)
	dd := decl.Decl{
		Kind:       decl.KindFunction,
		Name:       f.Name,
		Span:       f.Span,
		TypeParams: ctx.convertTypeParams(f.TypeParams),
		Return:     ctx.resolveTypeExpr(f.Return),
		Purity:     attrPurity(f.Attributes),
		Body:       f,
		IsMain:     f.Name == "main",
	}
	if f.Public {
		dd.Visibility = decl.VisibilityPublic
	}
	for _, p := range f.Params {
		dd.Params = append(dd.Params, decl.Param{Name: p.Name, Type: ctx.resolveTypeExpr(p.Type)})
	}
	id := ctx.Engines.Decls.Insert(dd)
	if !method {
		ctx.Module.DeclareValue(f.Name, id)
	}
	return id
}

func (ctx *Context) registerImpl(d *parsetree.Decl) decl.ID {
	ctx.ValidateAttributes(decl.KindImpl, d.Attributes)
	forType := ctx.resolveTypeExpr(d.ForType)
	dd := decl.Decl{Kind: decl.KindImpl, Span: d.Span, ForType: forType, TypeParams: ctx.convertTypeParams(d.TypeParams)}
	if len(d.TraitPath) > 0 {
		traitID, ok := ctx.Module.ResolveTypePath(d.TraitPath)
		if ok {
			dd.Trait = traitID
			dd.HasTrait = true
			dd.InCurrentMod = true
		}
	}
	for i := range d.Methods {
		mID := ctx.registerFunction(&d.Methods[i], true)
		dd.Methods = append(dd.Methods, mID)
	}
	id := ctx.Engines.Decls.Insert(dd)
	ctx.Module.RegisterImpl(forType, id)
	return id
}

func (ctx *Context) convertTypeParams(ps []parsetree.TypeParamDecl) []decl.TypeParam {
	var out []decl.TypeParam
	for _, p := range ps {
		tp := decl.TypeParam{Name: p.Name}
		for _, b := range p.Bounds {
			if id, ok := ctx.Module.ResolveTypePath(b.Path); ok {
				tp.Bounds = append(tp.Bounds, id)
			}
		}
		out = append(out, tp)
	}
	return out
}

func attrPurity(attrs []parsetree.Attribute) decl.Purity {
	return attr.PurityFromStorage(attrs)
}

func (ctx *Context) elaborateFunctionBody(id decl.ID, f *parsetree.FunctionDecl) ([]typedtree.Stmt, *typedtree.Expr) {
	fd := ctx.Engines.Decls.Get(id)
	fctx := ctx.WithPurity(fd.Purity)
	var numerics []types.ID
	fctx.numerics = &numerics
	scope := newLocalScope(nil)
	for _, p := range fd.Params {
		scope.declare(p.Name, p.Type)
	}
	var body []typedtree.Stmt
	for _, s := range f.Body {
		body = append(body, fctx.elaborateStmt(&s, scope))
	}
	var tail *typedtree.Expr
	if f.TailExpr != nil {
		tail = fctx.elaborateExpr(f.TailExpr, scope)
	}
	ctx.Engines.Types.DefaultNumerics(numerics)
	return body, tail
}

func (ctx *Context) elaborateStmt(s *parsetree.Stmt, scope *localScope) typedtree.Stmt {
	switch s.Kind {
	case parsetree.StmtLet:
		var declared types.ID
		if s.Type != nil {
			declared = ctx.resolveTypeExpr(s.Type)
		} else {
			declared = ctx.Engines.Types.NewInferenceVar()
		}
		var init *typedtree.Expr
		if s.Init != nil {
			init = ctx.WithExpect(declared).elaborateExpr(s.Init, scope)
			ctx.Engines.Types.Unify(declared, init.Type)
		}
		scope.declare(s.Name, declared)
		return typedtree.Stmt{Kind: typedtree.StmtLet, Span: s.Span, Name: s.Name, Type: declared, Init: init}
	case parsetree.StmtExpr:
		return typedtree.Stmt{Kind: typedtree.StmtExpr, Span: s.Span, Expr: ctx.elaborateExpr(s.Expr, scope)}
	case parsetree.StmtReturn:
		var e *typedtree.Expr
		if s.Expr != nil {
			e = ctx.elaborateExpr(s.Expr, scope)
		}
		return typedtree.Stmt{Kind: typedtree.StmtReturn, Span: s.Span, Expr: e}
	case parsetree.StmtWhile:
		cond := ctx.elaborateExpr(s.Cond, scope)
		inner := newLocalScope(scope)
		var body []typedtree.Stmt
		for _, bs := range s.Body {
			body = append(body, ctx.elaborateStmt(&bs, inner))
		}
		return typedtree.Stmt{Kind: typedtree.StmtWhile, Span: s.Span, Cond: cond, Body: body}
	case parsetree.StmtUse:
		return typedtree.Stmt{Kind: typedtree.StmtSideEffect, Span: s.Span, ImportPath: s.ImportPath}
	default:
		return typedtree.Stmt{Kind: typedtree.StmtSideEffect, Span: s.Span}
	}
}

func (ctx *Context) elaborateExpr(e *parsetree.Expr, scope *localScope) *typedtree.Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case parsetree.ExprLiteral:
		ty, numeric := ctx.literalType(e.LitValue)
		if numeric {
			ctx.trackNumeric(ty)
		}
		return &typedtree.Expr{Kind: typedtree.ExprLiteral, Type: ty, Span: e.Span, LitValue: e.LitValue}

	case parsetree.ExprVariable:
		ty, ok := scope.lookup(e.Name)
		if !ok {
			ctx.push(diag.Errorf(diag.CodeUnresolvedName, e.Span, "undeclared variable `%s`", e.Name))
			ty = ctx.errorRecovery()
		}
		return &typedtree.Expr{Kind: typedtree.ExprVariable, Type: ty, Span: e.Span, VarName: e.Name}

	case parsetree.ExprBinary:
		l := ctx.elaborateExpr(e.Left, scope)
		r := ctx.elaborateExpr(e.Right, scope)
		ctx.Engines.Types.Unify(l.Type, r.Type)
		resultTy := l.Type
		if isComparison(e.Op) {
			resultTy = ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindBoolean})
		}
		return &typedtree.Expr{Kind: typedtree.ExprBinary, Type: resultTy, Span: e.Span, Op: typedtree.Operator(e.Op), Left: l, Right: r}

	case parsetree.ExprUnary:
		operand := ctx.elaborateExpr(e.Right, scope)
		return &typedtree.Expr{Kind: typedtree.ExprUnary, Type: operand.Type, Span: e.Span, Op: typedtree.Operator(e.Op), Right: operand}

	case parsetree.ExprIf:
		cond := ctx.elaborateExpr(e.Cond, scope)
		then := ctx.elaborateExpr(e.Then, scope)
		var els *typedtree.Expr
		ty := then.Type
		if e.Else != nil {
			els = ctx.elaborateExpr(e.Else, scope)
			ctx.Engines.Types.Unify(then.Type, els.Type)
		}
		return &typedtree.Expr{Kind: typedtree.ExprIf, Type: ty, Span: e.Span, Cond: cond, Then: then, Else: els}

	case parsetree.ExprBlock:
		inner := newLocalScope(scope)
		var stmts []typedtree.Stmt
		for _, s := range e.Stmts {
			stmts = append(stmts, ctx.elaborateStmt(&s, inner))
		}
		var tail *typedtree.Expr
		ty := ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindTuple})
		if e.Tail != nil {
			tail = ctx.elaborateExpr(e.Tail, inner)
			ty = tail.Type
		}
		return &typedtree.Expr{Kind: typedtree.ExprBlock, Type: ty, Span: e.Span, Stmts: stmts, Tail: tail}

	case parsetree.ExprCall:
		callee := e.Callee
		var args []*typedtree.Expr
		var argTypes []types.ID
		for _, a := range e.Args {
			ta := ctx.elaborateExpr(a, scope)
			args = append(args, ta)
			argTypes = append(argTypes, ta.Type)
		}
		if callee.Kind == parsetree.ExprVariable {
			if fnID, ok := ctx.Module.Values[callee.Name]; ok {
				fd := ctx.Engines.Decls.Get(fnID)
				return &typedtree.Expr{Kind: typedtree.ExprCall, Type: fd.Return, Span: e.Span, Fn: fnID, HasFn: true, Args: args}
			}
		}
		ctx.push(diag.Errorf(diag.CodeUnresolvedName, e.Span, "undeclared function `%s`", callee.Name))
		return &typedtree.Expr{Kind: typedtree.ExprCall, Type: ctx.errorRecovery(), Span: e.Span, Args: args}

	case parsetree.ExprMethodCall:
		recv := ctx.elaborateExpr(e.Callee, scope)
		var args []*typedtree.Expr
		var argTypes []types.ID
		for _, a := range e.Args {
			ta := ctx.elaborateExpr(a, scope)
			args = append(args, ta)
			argTypes = append(argTypes, ta.Type)
		}
		q := MethodQuery{Receiver: recv.Type, MethodName: e.Name, ArgTypes: argTypes, QualTrait: e.QualTrait, Span: e.Span}
		if ctx.HasExpect {
			q.HasExpected = true
			q.ExpectedReturn = ctx.Expect
		}
		methodID, ok := ctx.ResolveMethod(q)
		if !ok {
			return &typedtree.Expr{Kind: typedtree.ExprMethodCall, Type: ctx.errorRecovery(), Span: e.Span, Receiver: recv, MethodName: e.Name, Args: args}
		}
		fd := ctx.Engines.Decls.Get(methodID)
		return &typedtree.Expr{Kind: typedtree.ExprMethodCall, Type: fd.Return, Span: e.Span, Receiver: recv, MethodName: e.Name, Fn: methodID, HasFn: true, Args: args}

	case parsetree.ExprFieldAccess:
		obj := ctx.elaborateExpr(e.Object, scope)
		objDecl := ctx.Engines.Types.Get(obj.Type)
		var fieldTy types.ID
		idx := -1
		if objDecl.Kind == types.KindStruct {
			sd := ctx.Engines.Decls.Get(objDecl.Decl)
			for i, f := range sd.Fields {
				if f.Name == e.Name {
					fieldTy = f.Type
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			ctx.push(diag.Errorf(diag.CodeUnresolvedName, e.Span, "no field `%s`", e.Name))
			fieldTy = ctx.errorRecovery()
		}
		return &typedtree.Expr{Kind: typedtree.ExprFieldAccess, Type: fieldTy, Span: e.Span, Object: obj, FieldName: e.Name, FieldIdx: idx}

	case parsetree.ExprStructInit:
		declID, ok := ctx.Module.ResolveTypePath(e.Path)
		if !ok {
			ctx.push(diag.Errorf(diag.CodeUnresolvedName, e.Span, "unknown struct `%v`", e.Path))
			return &typedtree.Expr{Kind: typedtree.ExprStructInit, Type: ctx.errorRecovery(), Span: e.Span}
		}
		structTy := ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindStruct, Decl: declID})
		var inits []typedtree.FieldInit
		for _, fi := range e.FieldInits {
			inits = append(inits, typedtree.FieldInit{Name: fi.Name, Value: ctx.elaborateExpr(fi.Value, scope)})
		}
		return &typedtree.Expr{Kind: typedtree.ExprStructInit, Type: structTy, Span: e.Span, StructDecl: declID, FieldInits: inits}

	case parsetree.ExprEnumInit:
		declID, ok := ctx.Module.ResolveTypePath(e.Path)
		if !ok {
			ctx.push(diag.Errorf(diag.CodeUnresolvedName, e.Span, "unknown enum `%v`", e.Path))
			return &typedtree.Expr{Kind: typedtree.ExprEnumInit, Type: ctx.errorRecovery(), Span: e.Span}
		}
		enumTy := ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindEnum, Decl: declID})
		ed := ctx.Engines.Decls.Get(declID)
		idx := -1
		for i, v := range ed.Fields {
			if v.Name == e.VariantName {
				idx = i
				break
			}
		}
		var payload *typedtree.Expr
		if e.Payload != nil {
			payload = ctx.elaborateExpr(e.Payload, scope)
		}
		return &typedtree.Expr{Kind: typedtree.ExprEnumInit, Type: enumTy, Span: e.Span, EnumDecl: declID, VariantIdx: idx, Payload: payload}

	case parsetree.ExprTuple, parsetree.ExprArray:
		var elems []*typedtree.Expr
		var elemTypes []types.ID
		for _, el := range e.Elements {
			te := ctx.elaborateExpr(el, scope)
			elems = append(elems, te)
			elemTypes = append(elemTypes, te.Type)
		}
		kind := typedtree.ExprTuple
		var ty types.ID
		if e.Kind == parsetree.ExprTuple {
			ty = ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindTuple, Elems: elemTypes})
		} else {
			kind = typedtree.ExprArray
			elemTy := ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindUnknown})
			if len(elemTypes) > 0 {
				elemTy = elemTypes[0]
			}
			ty = ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindArray, Elem: elemTy, Count: len(elemTypes)})
		}
		return &typedtree.Expr{Kind: kind, Type: ty, Span: e.Span, Elements: elems}

	default:
		return &typedtree.Expr{Kind: typedtree.ExprErrorRecovery, Type: ctx.errorRecovery(), Span: e.Span}
	}
}

// literalType returns the literal's type id and whether it is an
// undetermined numeric literal still eligible for end-of-body defaulting
// (spec §4.1: integer literals stay KindUnknown until defaulted to u64 or
// unified against an explicit annotation).
func (ctx *Context) literalType(v interface{}) (types.ID, bool) {
	switch v.(type) {
	case bool:
		return ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindBoolean}), false
	case string:
		return ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindStringSlice}), false
	default:
		return ctx.Engines.Types.NewInferenceVar(), true
	}
}

func isComparison(op parsetree.Operator) bool {
	switch op {
	case parsetree.OpEq, parsetree.OpGt, parsetree.OpLt:
		return true
	default:
		return false
	}
}
