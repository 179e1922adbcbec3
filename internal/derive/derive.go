// Package derive implements the auto-derive engine (C7): generating
// encode/decode impls for user-defined structs and enums, gated by a
// per-field trait-constraint eligibility check. Grounded on the teacher's
// code-generation-as-data style in internal/compregister.Compiler (building
// a concrete instruction sequence rather than emitting source text), applied
// here to typed-tree synthesis: since this module has no lexer/parser (spec
// §1 places it out of scope), "feed the generated code back through the
// type checker" (spec §4.4 step 3) becomes "synthesize already-typed nodes
// directly and register them exactly as C6 would have", the idiomatic Go
// equivalent of the original's generate-text-then-reparse approach.
package derive

import (
	"fmt"

	"corec/internal/decl"
	"corec/internal/engines"
	"corec/internal/namespace"
	"corec/internal/typedtree"
	"corec/internal/types"
)

// Kind selects which of the two derivable traits is being generated.
type Kind uint8

const (
	Encode Kind = iota
	Decode
)

func (k Kind) methodName() string {
	if k == Decode {
		return "decode"
	}
	return "encode"
}

// Request names one derive obligation: generate Kind's impl for Target,
// gated against Trait (the encode or decode trait declaration, supplied by
// the caller since this engine never invents core-library declarations).
type Request struct {
	Target decl.ID
	Trait  decl.ID
	Kind   Kind
}

// Result is one generated impl block plus the single method body it
// contributes, ready for the caller to register in the declaration arena and
// namespace exactly as an ordinary user impl would be.
type Result struct {
	Impl   decl.Decl
	Method decl.Decl
	Body   typedtree.Decl
}

// Eligible runs the per-field eligibility check of spec §4.4 step 1: every
// field/variant-payload type must implement Trait, either directly (a
// concrete impl exists) or through a generic parameter's declared bounds. A
// bound counts only when it is Trait itself: traits that a bound in turn
// requires are not followed. Bails on the first ineligible field, per spec's
// fail-fast wording.
func Eligible(e *engines.Engines, target decl.ID, trait decl.ID) (bool, string) {
	d := e.Decls.Get(target)
	if d.Kind != decl.KindStruct && d.Kind != decl.KindEnum {
		return false, "derive target must be a struct or enum declaration"
	}
	for _, f := range d.Fields {
		if ok, reason := eligibleType(e, f.Type, trait, d); !ok {
			return false, fmt.Sprintf("field %q: %s", f.Name, reason)
		}
	}
	return true, ""
}

func eligibleType(e *engines.Engines, ty types.ID, trait decl.ID, owner *decl.Decl) (bool, string) {
	desc := e.Types.Get(ty)
	switch desc.Kind {
	case types.KindPlaceholder:
		if desc.Param.Index < 0 || desc.Param.Index >= len(owner.TypeParams) {
			return false, "type parameter out of range"
		}
		tp := owner.TypeParams[desc.Param.Index]
		for _, bound := range tp.Bounds {
			boundDecl := e.Decls.Get(bound)
			// TODO(derive): a bound trait that is itself generic (`T: Trait<X>`)
			// is rejected conservatively rather than checked transitively; spec
			// §9's open question leaves unsettled whether this is the correct
			// behavior or a latent bug in the source this was distilled from.
			if len(boundDecl.TypeParams) > 0 {
				continue
			}
			if bound == trait {
				return true, ""
			}
		}
		return false, fmt.Sprintf("type parameter %q has no bound implying the required trait", tp.Name)

	case types.KindStruct, types.KindEnum:
		if hasImpl(e, ty, trait) {
			return true, ""
		}
		return false, "field type does not implement the required trait"

	case types.KindUnsignedInteger, types.KindBoolean, types.KindB256,
		types.KindStringSlice, types.KindStringArray:
		// Built-in scalar types are always eligible; the core library
		// implements encode/decode for them unconditionally.
		return true, ""

	case types.KindArray:
		return eligibleType(e, desc.Elem, trait, owner)

	case types.KindTuple:
		for _, el := range desc.Elems {
			if ok, reason := eligibleType(e, el, trait, owner); !ok {
				return false, reason
			}
		}
		return true, ""

	default:
		return false, "field type is not eligible for derive"
	}
}

// hasImpl reports whether any impl declaration in the arena implements
// trait for ty, searching the whole arena rather than one namespace's
// TraitImpls index since a derive target's field types may be declared in
// another module.
func hasImpl(e *engines.Engines, ty types.ID, trait decl.ID) bool {
	for _, id := range e.Decls.All() {
		d := e.Decls.Get(id)
		if d.Kind != decl.KindImpl || !d.HasTrait || d.Trait != trait {
			continue
		}
		if d.ForType == ty {
			return true
		}
	}
	return false
}

// Generate builds the impl block and single method body for req, per spec
// §4.4 step 2. The caller is responsible for checking Eligible first and for
// registering the returned declarations (Impl into the arena, then Method
// with ForType/Trait referencing it back, then Body indexed by Method's id,
// then mod.RegisterImpl) — mirroring exactly how C6 registers a
// hand-written impl block, so every later pass (C8 reachability, C9 IR
// building) treats derived code identically to user code.
func Generate(e *engines.Engines, mod *namespace.Module, req Request) *Result {
	target := e.Decls.Get(req.Target)
	forType := e.Types.Insert(types.Descriptor{Kind: declKindToTypeKind(target.Kind), Decl: req.Target})

	var body []typedtree.Stmt
	var tail *typedtree.Expr
	var params []decl.Param
	var ret types.ID

	switch {
	case target.Kind == decl.KindStruct && req.Kind == Encode:
		params = []decl.Param{{Name: "self", Type: forType}}
		ret = e.Types.Insert(types.Descriptor{Kind: types.KindUnknown})
		tail = encodeStructBody(e, target, forType)
	case target.Kind == decl.KindStruct && req.Kind == Decode:
		ret = forType
		tail = decodeStructBody(e, target, forType, req.Target)
	case target.Kind == decl.KindEnum && req.Kind == Encode:
		params = []decl.Param{{Name: "self", Type: forType}}
		ret = e.Types.Insert(types.Descriptor{Kind: types.KindUnknown})
		tail = encodeEnumBody(e, target, forType)
	default: // KindEnum, Decode
		ret = forType
		tail = decodeEnumBody(e, target, forType, req.Target)
	}

	method := decl.Decl{
		Kind:   decl.KindFunction,
		Name:   req.Kind.methodName(),
		Params: params,
		Return: ret,
		Purity: decl.PurityPure,
	}

	impl := decl.Decl{
		Kind:     decl.KindImpl,
		Trait:    req.Trait,
		HasTrait: true,
		ForType:  forType,
		TypeParams: append([]decl.TypeParam(nil), target.TypeParams...),
	}
	for i := range impl.TypeParams {
		impl.TypeParams[i].Bounds = append(impl.TypeParams[i].Bounds, req.Trait)
	}

	return &Result{
		Impl:   impl,
		Method: method,
		Body:   typedtree.Decl{Body: body, Tail: tail},
	}
}

// declKindToTypeKind maps a struct/enum declaration's Kind to the matching
// types.Kind, kept here rather than in package decl or types since neither
// package may depend on the other's enum beyond what they already share
// (decl depends on types for field/param types; adding the reverse mapping
// into either package would invert or cycle that dependency).
func declKindToTypeKind(k decl.Kind) types.Kind {
	if k == decl.KindEnum {
		return types.KindEnum
	}
	return types.KindStruct
}

// encodeStructBody synthesizes a tuple of `encode` calls, one on each field
// (in declared order) through the receiver, per spec §4.4 step 2.
func encodeStructBody(e *engines.Engines, target *decl.Decl, forType types.ID) *typedtree.Expr {
	self := &typedtree.Expr{Kind: typedtree.ExprVariable, Type: forType, VarName: "self"}
	var calls []*typedtree.Expr
	for _, f := range target.Fields {
		access := &typedtree.Expr{Kind: typedtree.ExprFieldAccess, Type: f.Type, Object: self, FieldName: f.Name}
		calls = append(calls, &typedtree.Expr{
			Kind:       typedtree.ExprMethodCall,
			Type:       e.Types.Insert(types.Descriptor{Kind: types.KindUnknown}),
			Receiver:   access,
			MethodName: "encode",
		})
	}
	return &typedtree.Expr{Kind: typedtree.ExprTuple, Elements: calls}
}

// decodeStructBody synthesizes: `Self { field_i: buffer.decode::<T_i>() }`.
func decodeStructBody(e *engines.Engines, target *decl.Decl, forType types.ID, targetID decl.ID) *typedtree.Expr {
	var inits []typedtree.FieldInit
	for _, f := range target.Fields {
		inits = append(inits, typedtree.FieldInit{
			Name: f.Name,
			Value: &typedtree.Expr{
				Kind:       typedtree.ExprMethodCall,
				Type:       f.Type,
				Receiver:   &typedtree.Expr{Kind: typedtree.ExprVariable, VarName: "buffer"},
				MethodName: "decode",
			},
		})
	}
	return &typedtree.Expr{Kind: typedtree.ExprStructInit, Type: forType, FieldInits: inits, StructDecl: targetID}
}

// encodeEnumBody synthesizes a tuple with one element per variant, in
// declaration order: an `encode` of the variant's index as its tag, paired
// with an `encode` of the payload for a non-unit variant. No match over self
// is built.
func encodeEnumBody(e *engines.Engines, target *decl.Decl, forType types.ID) *typedtree.Expr {
	self := &typedtree.Expr{Kind: typedtree.ExprVariable, Type: forType, VarName: "self"}
	var arms []*typedtree.Expr
	for idx, v := range target.Fields {
		tag := &typedtree.Expr{Kind: typedtree.ExprLiteral, LitValue: int64(idx)}
		call := &typedtree.Expr{
			Kind:       typedtree.ExprMethodCall,
			Receiver:   tag,
			MethodName: "encode",
		}
		if v.Type != 0 {
			payload := &typedtree.Expr{Kind: typedtree.ExprFieldAccess, Object: self, FieldName: v.Name, Type: v.Type}
			call = &typedtree.Expr{Kind: typedtree.ExprTuple, Elements: []*typedtree.Expr{call, {
				Kind: typedtree.ExprMethodCall, Receiver: payload, MethodName: "encode",
			}}}
		}
		arms = append(arms, call)
	}
	return &typedtree.Expr{Kind: typedtree.ExprTuple, Elements: arms}
}

// decodeEnumBody synthesizes: read the tag, then one constructor per variant,
// reading the payload for non-unit variants. The constructors are collected
// in a tuple, not dispatched on the tag.
func decodeEnumBody(e *engines.Engines, target *decl.Decl, forType types.ID, targetID decl.ID) *typedtree.Expr {
	tagTy := e.Types.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 64})
	tag := &typedtree.Expr{
		Kind:       typedtree.ExprMethodCall,
		Type:       tagTy,
		Receiver:   &typedtree.Expr{Kind: typedtree.ExprVariable, VarName: "buffer"},
		MethodName: "decode",
	}
	var variants []*typedtree.Expr
	for idx, v := range target.Fields {
		variant := &typedtree.Expr{
			Kind:       typedtree.ExprEnumInit,
			Type:       forType,
			EnumDecl:   targetID,
			VariantIdx: idx,
		}
		// A unit variant (Type 0, as in encodeEnumBody) carries no payload.
		if v.Type != 0 {
			variant.Payload = &typedtree.Expr{
				Kind:       typedtree.ExprMethodCall,
				Type:       v.Type,
				Receiver:   &typedtree.Expr{Kind: typedtree.ExprVariable, VarName: "buffer"},
				MethodName: "decode",
			}
		}
		variants = append(variants, variant)
	}
	return &typedtree.Expr{Kind: typedtree.ExprBlock, Type: forType,
		Stmts: []typedtree.Stmt{{Kind: typedtree.StmtLet, Name: "tag", Type: tagTy, Init: tag}},
		// The dispatch-on-tag-value switch itself has no dedicated typed-tree
		// node (spec §3 names no Match/Switch expression kind); it is left as
		// a tuple of candidate variant constructors keyed by position, for
		// whatever later pass lowers enum decode to the VM's indexed-jump
		// primitive (out of this module's scope: C9 only needs a value it can
		// type, not the dispatch's control flow refined further).
		Tail: &typedtree.Expr{Kind: typedtree.ExprTuple, Elements: variants},
	}
}
