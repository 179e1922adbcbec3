// Package typecheck implements type-check & elaboration (C6): lowering the
// untyped parse tree to the typed tree using the type engine (C3),
// declaration engine (C4) and namespace tree (C5). Grounded on the teacher's
// internal/compiler.StmtCompiler top-down statement/expression switch,
// generalized from "compile directly to bytecode" to "elaborate to a typed
// tree", since this pipeline defers code generation to C9.
package typecheck

import (
	"corec/internal/attr"
	"corec/internal/decl"
	"corec/internal/diag"
	"corec/internal/engines"
	"corec/internal/namespace"
	"corec/internal/parsetree"
	"corec/internal/types"
)

// Context is the TypeCheckContext of spec §4.2: state threaded through the
// top-down traversal.
type Context struct {
	Engines *engines.Engines
	Module  *namespace.Module
	Self    types.ID // current self-type, for methods/trait impls; 0 if none
	HasSelf bool
	Expect  types.ID // type annotation: expected type of current expression
	HasExpect bool
	Help    string
	Purity  decl.Purity

	// numerics accumulates every inference-variable id allocated for an
	// integer literal within the function body currently being elaborated,
	// so DefaultNumerics can run once the body is complete (spec §4.1).
	numerics *[]types.ID
}

// trackNumeric records an inference variable for end-of-body defaulting.
func (ctx *Context) trackNumeric(id types.ID) {
	if ctx.numerics != nil {
		*ctx.numerics = append(*ctx.numerics, id)
	}
}

func NewContext(e *engines.Engines, mod *namespace.Module) *Context {
	return &Context{Engines: e, Module: mod}
}

// WithExpect returns a copy of ctx with the expected-type annotation set,
// used when descending into a subexpression whose type is constrained by its
// surrounding context (e.g. a call argument).
func (ctx *Context) WithExpect(t types.ID) *Context {
	cp := *ctx
	cp.Expect = t
	cp.HasExpect = true
	return &cp
}

func (ctx *Context) WithSelf(t types.ID) *Context {
	cp := *ctx
	cp.Self = t
	cp.HasSelf = true
	return &cp
}

func (ctx *Context) WithPurity(p decl.Purity) *Context {
	cp := *ctx
	cp.Purity = p
	return &cp
}

func (ctx *Context) errorRecovery() types.ID {
	return ctx.Engines.Types.NewErrorRecovery()
}

func (ctx *Context) push(d diag.Diagnostic) {
	ctx.Engines.Sink.Push(d)
}

// ValidateAttributes runs the attribute grammar (spec §6) over a
// declaration's attributes and is called once per declaration kind during
// elaboration.
func (ctx *Context) ValidateAttributes(target decl.Kind, attrs []parsetree.Attribute) {
	attr.Validate(ctx.Engines.Sink, target, attrs)
}
