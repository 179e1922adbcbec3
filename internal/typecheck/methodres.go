package typecheck

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"corec/internal/decl"
	"corec/internal/diag"
	"corec/internal/namespace"
	"corec/internal/span"
	"corec/internal/types"
)

// MethodQuery is the input to ResolveMethod (spec §4.2).
type MethodQuery struct {
	Receiver       types.ID
	MethodName     string
	ExpectedReturn types.ID
	HasExpected    bool
	ArgTypes       []types.ID
	ArgTypeModule  *namespace.Module // module declaring the argument type, if any
	ReceiverModule *namespace.Module // module declaring the receiver type
	QualTrait      []string          // non-nil: <T as Trait>::method(...) disambiguation
	Span           span.Span
}

type candidate struct {
	implID     decl.ID
	method     decl.ID
	fromTrait  decl.ID
	hasTrait   bool
	inherent   bool
	forType    types.ID
	sig        decl.FunctionSig
	blanket    bool
}

// ResolveMethod implements the method-resolution algorithm of spec §4.2: the
// hard subroutine of C6. Returns the resolved method declaration id, or an
// error diagnostic already pushed to the sink plus ok=false.
func (ctx *Context) ResolveMethod(q MethodQuery) (decl.ID, bool) {
	// Step 0: qualified-trait disambiguation short-circuits the whole
	// algorithm (supplemental feature grounded on
	// original_source/sway-core/src/semantic_analysis/method_lookup.rs).
	if len(q.QualTrait) > 0 {
		return ctx.resolveQualified(q)
	}

	// Step 1: default a raw numeric inference variable receiver to u64.
	receiver := q.Receiver
	if ctx.Engines.Types.Get(receiver).Kind == types.KindUnknown {
		u64 := ctx.Engines.Types.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 64})
		ctx.Engines.Types.Unify(receiver, u64)
		receiver = u64
	}

	// Step 2: collect candidates from the three namespaces.
	namespaces := namespace.CandidateNamespaces(ctx.Module, q.ArgTypeModule, q.ReceiverModule)
	var candidates []candidate
	for _, ns := range namespaces {
		candidates = append(candidates, ctx.collectCandidates(ns, receiver, q.MethodName)...)
	}
	if len(candidates) == 0 {
		ctx.pushNotFound(q)
		return 0, false
	}

	// Step 3: filter by trait bounds (grouped by originating generic
	// parameter). Our simplified model: when the receiver is a Placeholder
	// type, every candidate is filtered against that parameter's declared
	// bounds; for any other receiver nothing is filtered here.
	candidates = ctx.filterByBounds(candidates, receiver)
	if len(candidates) == 0 {
		ctx.pushNotFound(q)
		return 0, false
	}

	// Step 4: filter by signature (arity, coercible params, coercible
	// return).
	var bySig []candidate
	for _, c := range candidates {
		if len(c.sig.Params) != len(q.ArgTypes) {
			continue
		}
		ok := true
		for i, paramTy := range c.sig.Params {
			if !ctx.coercesOrUniversal(q.ArgTypes[i], paramTy) {
				ok = false
				break
			}
		}
		if ok && q.HasExpected {
			if !ctx.coercesOrUniversal(c.sig.Return, q.ExpectedReturn) {
				ok = false
			}
		}
		if ok {
			bySig = append(bySig, c)
		}
	}
	if len(bySig) == 0 {
		ctx.pushNotFound(q)
		return 0, false
	}
	// Stable final ordering before grouping: candidate order decides which
	// group an unresolved ambiguity is reported against first (pushAmbiguous
	// sorts trait names, but the groups themselves are formed in this order).
	slices.SortFunc(bySig, func(a, b candidate) int {
		if a.implID != b.implID {
			return int(a.implID) - int(b.implID)
		}
		return int(a.method) - int(b.method)
	})

	// Step 5: group by (impl, for-type); inherent wins over trait in the
	// same group.
	groups := groupCandidates(bySig)

	// Step 6: prefer non-blanket impls when any concrete impl exists.
	if hasConcrete(groups) {
		groups = filterBlanket(groups)
	}

	// Step 7: resolve the remaining ambiguity.
	if len(groups) == 1 {
		return groups[0][0].method, true
	}
	for _, g := range groups {
		if g[0].forType == receiver {
			return g[0].method, true
		}
	}
	ctx.pushAmbiguous(q, groups)
	return 0, false
}

func (ctx *Context) resolveQualified(q MethodQuery) (decl.ID, bool) {
	declID, ok := ctx.Module.ResolveTypePath(q.QualTrait)
	if !ok {
		ctx.push(diag.Errorf(diag.CodeUnresolvedName, q.Span, "trait `%v` not found", q.QualTrait))
		return 0, false
	}
	trait := ctx.Engines.Decls.Get(declID)
	for _, mName := range trait.TraitMethods {
		if mName.Name == q.MethodName {
			// The concrete method decl is located via the impl index;
			// callers are expected to have registered it under the receiver
			// type by the time qualified lookup runs.
			for _, implID := range ctx.Module.TraitImpls[q.Receiver] {
				impl := ctx.Engines.Decls.Get(implID)
				if impl.HasTrait && impl.Trait == declID {
					for _, mID := range impl.Methods {
						if ctx.Engines.Decls.Get(mID).Name == q.MethodName {
							return mID, true
						}
					}
				}
			}
		}
	}
	ctx.push(diag.Errorf(diag.CodeMethodNotFound, q.Span, "method `%s` not found via qualified trait `%v`", q.MethodName, q.QualTrait))
	return 0, false
}

func (ctx *Context) collectCandidates(ns *namespace.Module, receiver types.ID, name string) []candidate {
	var out []candidate
	// ns.TraitImpls is a map; iterate its keys in a deterministic order so
	// candidate order (and therefore which group a tie resolves to) never
	// depends on Go's randomized map iteration.
	forTypes := maps.Keys(ns.TraitImpls)
	sort.Slice(forTypes, func(i, j int) bool { return forTypes[i] < forTypes[j] })
	for _, forType := range forTypes {
		impls := ns.TraitImpls[forType]
		for _, implID := range impls {
			impl := ctx.Engines.Decls.Get(implID)
			for _, mID := range impl.Methods {
				m := ctx.Engines.Decls.Get(mID)
				if m.Name != name {
					continue
				}
				sig := decl.FunctionSig{Name: m.Name, Return: m.Return}
				for _, p := range m.Params {
					sig.Params = append(sig.Params, p.Type)
				}
				out = append(out, candidate{
					implID:    implID,
					method:    mID,
					fromTrait: impl.Trait,
					hasTrait:  impl.HasTrait,
					inherent:  !impl.HasTrait,
					forType:   forType,
					sig:       sig,
					blanket:   isBlanket(ctx, forType),
				})
			}
		}
	}
	return out
}

func isBlanket(ctx *Context, forType types.ID) bool {
	return ctx.Engines.Types.Get(forType).Kind == types.KindPlaceholder
}

// filterByBounds implements spec §4.2 step 3: when receiver is a
// Placeholder, a candidate is kept only if it is inherent or the parameter's
// declared bounds include the candidate's trait; for a concrete receiver
// every candidate passes through.
func (ctx *Context) filterByBounds(cands []candidate, receiver types.ID) []candidate {
	recv := ctx.Engines.Types.Get(receiver)
	if recv.Kind != types.KindPlaceholder {
		return cands
	}
	param := recv.Param
	var bounds []decl.ID
	owner := ctx.Engines.Decls.Get(param.Decl)
	if param.Index < len(owner.TypeParams) {
		bounds = owner.TypeParams[param.Index].Bounds
	}
	allowed := func(trait decl.ID) bool { return trait == param.Decl || slices.Contains(bounds, trait) }

	var out []candidate
	for _, c := range cands {
		if c.inherent || (c.hasTrait && allowed(c.fromTrait)) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		// Fall back to the interface placeholder: keep blanket candidates
		// whose trait is in the allowed set even without a concrete impl.
		for _, c := range cands {
			if c.blanket && allowed(c.fromTrait) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (ctx *Context) coercesOrUniversal(from, to types.ID) bool {
	fromD := ctx.Engines.Types.Get(from)
	toD := ctx.Engines.Types.Get(to)
	if fromD.Kind == types.KindNever || fromD.Kind == types.KindUnknown {
		return true
	}
	if toD.Kind == types.KindNever || toD.Kind == types.KindUnknown {
		return true
	}
	return ctx.Engines.Types.Coerce(from, to) == nil
}

func groupCandidates(cands []candidate) [][]candidate {
	type key struct {
		impl decl.ID
		ty   types.ID
	}
	groups := make(map[key][]candidate)
	var order []key
	for _, c := range cands {
		k := key{impl: c.implID, ty: c.forType}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}
	var out [][]candidate
	for _, k := range order {
		g := groups[k]
		// inherent wins over trait members within the same group
		var inherent []candidate
		for _, c := range g {
			if c.inherent {
				inherent = append(inherent, c)
			}
		}
		if len(inherent) > 0 {
			out = append(out, inherent)
		} else {
			out = append(out, g)
		}
	}
	return out
}

func hasConcrete(groups [][]candidate) bool {
	for _, g := range groups {
		if !g[0].blanket {
			return true
		}
	}
	return false
}

func filterBlanket(groups [][]candidate) [][]candidate {
	var out [][]candidate
	for _, g := range groups {
		if !g[0].blanket {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return groups
	}
	return out
}

func (ctx *Context) pushNotFound(q MethodQuery) {
	sig := fmt.Sprintf("%s(%v)", q.MethodName, q.ArgTypes)
	if q.HasExpected {
		sig += fmt.Sprintf(" -> %v", q.ExpectedReturn)
	}
	ctx.push(diag.Errorf(diag.CodeMethodNotFound, q.Span,
		"method not found: expected signature %s", sig))
}

func (ctx *Context) pushAmbiguous(q MethodQuery, groups [][]candidate) {
	var traitNames []string
	for _, g := range groups {
		if g[0].hasTrait {
			traitNames = append(traitNames, ctx.Engines.Decls.Get(g[0].fromTrait).Name)
		}
	}
	sort.Strings(traitNames)
	ctx.push(diag.Errorf(diag.CodeMultipleApplicableItems, q.Span,
		"multiple applicable items in scope for `%s`: %v", q.MethodName, traitNames))
}
