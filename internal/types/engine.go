package types

import (
	"fmt"

	"github.com/google/uuid"
)

// PathResolver is the contract the namespace/scope tree (C5) must satisfy for
// Engine.Resolve to turn a Custom{path} reference into a declaration. Kept
// as a narrow interface here rather than importing the namespace package, so
// the type engine has no dependency on C5 (only C5 depends on C3).
type PathResolver interface {
	ResolveTypePath(path []string) (DeclID, bool)
}

// Error is the type engine's error kind, matching the "type" error category
// of spec §7 (unification, arity, coercion).
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func errUnresolvedName(path []string) error {
	return &Error{Kind: "UnresolvedName", Message: fmt.Sprintf("cannot resolve type path %v", path)}
}

func errArityMismatch(path []string, want, got int) error {
	return &Error{Kind: "GenericArityMismatch", Message: fmt.Sprintf("%v expects %d type argument(s), got %d", path, want, got)}
}

// Engine is the append-only arena described in spec §3/§5: a shared handle
// (part of the Engines bundle, spec §9) passed by reference to every phase
// that needs type ids.
type Engine struct {
	arena []Descriptor
	// intern maps a structural key to the first id that produced it. Per
	// spec §4.1, UnknownGeneric/Placeholder/ErrorRecovery are never interned
	// this way: every insert of one of those allocates a fresh id.
	intern map[string]ID
	// bindings holds inference-variable substitutions discovered by unify,
	// keyed by the id of a KindUnknown descriptor. Path-compressed so lookups
	// stay effectively O(1) despite being a union-find-like structure.
	bindings map[ID]ID
	// collectingOnly disables numeric defaulting (spec §4.1).
	collectingOnly bool
}

func NewEngine() *Engine {
	e := &Engine{intern: make(map[string]ID), bindings: make(map[ID]ID)}
	return e
}

func (e *Engine) SetCollectingOnly(v bool) { e.collectingOnly = v }

// Insert returns an id for d, interning structural descriptors so identical
// shapes share an id; non-structural kinds (UnknownGeneric, Placeholder,
// ErrorRecovery) always get a fresh id since each occurrence is logically
// distinct (a new inference failure, a new placeholder occurrence, ...).
func (e *Engine) Insert(d Descriptor) ID {
	if !structural(d.Kind) {
		return e.push(d)
	}
	key := structuralKey(d)
	if id, ok := e.intern[key]; ok {
		return id
	}
	id := e.push(d)
	e.intern[key] = id
	return id
}

func (e *Engine) push(d Descriptor) ID {
	id := ID(len(e.arena))
	e.arena = append(e.arena, d)
	return id
}

// Get is O(1): a direct arena index.
func (e *Engine) Get(id ID) Descriptor {
	return e.arena[id]
}

// NewInferenceVar allocates a fresh KindUnknown id, the placeholder used
// while elaboration is still determining a concrete type.
func (e *Engine) NewInferenceVar() ID {
	return e.push(Descriptor{Kind: KindUnknown})
}

// NewErrorRecovery allocates an ErrorRecovery placeholder tagged with a
// fresh error id (spec §3), so distinct failures never compare equal.
func (e *Engine) NewErrorRecovery() ID {
	return e.push(Descriptor{Kind: KindErrorRecovery, ErrorID: uuid.New()})
}

// find follows the bindings chain for an inference variable, compressing the
// path as it goes.
func (e *Engine) find(id ID) ID {
	root := id
	for {
		next, ok := e.bindings[root]
		if !ok {
			break
		}
		root = next
	}
	for id != root {
		next := e.bindings[id]
		e.bindings[id] = root
		id = next
	}
	return root
}

// chase resolves Unknown bindings and Alias chains (spec §3 invariant:
// "Alias chains terminate"), returning the final concrete id.
func (e *Engine) chase(id ID) ID {
	for {
		if e.Get(id).Kind == KindUnknown {
			r := e.find(id)
			if r == id {
				return id
			}
			id = r
			continue
		}
		if e.Get(id).Kind == KindAlias {
			id = e.Get(id).Target
			continue
		}
		return id
	}
}

// Resolve chases Alias chains and substitutes Custom references against the
// scope provided by resolver. enforceGenerics requires Custom type-argument
// arity to match the resolved declaration's parameter count exactly; the
// caller (C6) knows that count and passes it via wantArity (a Custom with
// enforceGenerics=false, e.g. while still collecting candidate types, skips
// the check).
func (e *Engine) Resolve(id ID, resolver PathResolver, enforceGenerics bool, wantArity int) (ID, error) {
	id = e.chase(id)
	d := e.Get(id)
	if d.Kind != KindCustom {
		return id, nil
	}
	declID, ok := resolver.ResolveTypePath(d.Path)
	if !ok {
		return id, errUnresolvedName(d.Path)
	}
	if enforceGenerics && len(d.TypeArgs) != wantArity {
		return id, errArityMismatch(d.Path, wantArity, len(d.TypeArgs))
	}
	// Custom{path} backed by a struct/enum decl resolves to Struct/Enum.
	return e.Insert(Descriptor{Kind: KindStruct, Decl: declID}), nil
}

// Unify updates inference variables so that a and b refer to compatible
// types, propagating ErrorRecovery as an absorbing element (any unification
// with it silently succeeds, spec §4.1).
func (e *Engine) Unify(a, b ID) error {
	a, b = e.chase(a), e.chase(b)
	if a == b {
		return nil
	}
	da, db := e.Get(a), e.Get(b)
	if da.Kind == KindErrorRecovery || db.Kind == KindErrorRecovery {
		return nil
	}
	if da.Kind == KindUnknown {
		e.bindings[a] = b
		return nil
	}
	if db.Kind == KindUnknown {
		e.bindings[b] = a
		return nil
	}
	if structurallyEqual(da, db) {
		return nil
	}
	return &Error{Kind: "UnificationFailure", Message: fmt.Sprintf("cannot unify %s with %s", describe(da), describe(db))}
}

// Coerce additionally permits integer widening u8->u16->u32->u64 (u256 is
// deliberately excluded: the VM's wide-arithmetic boundary in spec §4.5.1
// treats u256 as a distinct, pointer-only type, never an implicit widening
// target) and Never->T, with ErrorRecovery absorbing as in Unify.
func (e *Engine) Coerce(from, to ID) error {
	from, to = e.chase(from), e.chase(to)
	if from == to {
		return nil
	}
	df, dt := e.Get(from), e.Get(to)
	if df.Kind == KindErrorRecovery || dt.Kind == KindErrorRecovery {
		return nil
	}
	if df.Kind == KindNever {
		return nil
	}
	if df.Kind == KindUnsignedInteger && dt.Kind == KindUnsignedInteger {
		widenable := map[int][]int{8: {16, 32, 64}, 16: {32, 64}, 32: {64}, 64: {}}
		if dt.Width == df.Width {
			return nil
		}
		for _, w := range widenable[df.Width] {
			if w == dt.Width {
				return nil
			}
		}
		return &Error{Kind: "CoercionFailure", Message: fmt.Sprintf("u%d does not coerce to u%d", df.Width, dt.Width)}
	}
	return e.Unify(from, to)
}

// Substitute walks id and rewrites Placeholder(owner, index) to subst[index]
// whenever owner == forDecl; parameters are addressed by position, bound to
// their enclosing declaration, so the rewrite is capture-free (spec §4.1).
func (e *Engine) Substitute(id ID, forDecl DeclID, subst []ID) ID {
	d := e.Get(id)
	switch d.Kind {
	case KindPlaceholder:
		if d.Param.Decl == forDecl && d.Param.Index < len(subst) {
			return subst[d.Param.Index]
		}
		return id
	case KindArray:
		elem := e.Substitute(d.Elem, forDecl, subst)
		if elem == d.Elem {
			return id
		}
		return e.Insert(Descriptor{Kind: KindArray, Elem: elem, Count: d.Count})
	case KindTuple:
		changed := false
		out := make([]ID, len(d.Elems))
		for i, el := range d.Elems {
			out[i] = e.Substitute(el, forDecl, subst)
			if out[i] != el {
				changed = true
			}
		}
		if !changed {
			return id
		}
		return e.Insert(Descriptor{Kind: KindTuple, Elems: out})
	case KindAlias:
		target := e.Substitute(d.Target, forDecl, subst)
		if target == d.Target {
			return id
		}
		return e.Insert(Descriptor{Kind: KindAlias, AliasName: d.AliasName, Target: target})
	case KindCustom:
		changed := false
		out := make([]ID, len(d.TypeArgs))
		for i, el := range d.TypeArgs {
			out[i] = e.Substitute(el, forDecl, subst)
			if out[i] != el {
				changed = true
			}
		}
		if !changed {
			return id
		}
		return e.Insert(Descriptor{Kind: KindCustom, Path: d.Path, TypeArgs: out})
	default:
		return id
	}
}

// ComposeSubst composes two substitution lists so that
// Substitute(Substitute(t, s1), s2) == Substitute(t, Compose(s1, s2)) holds
// (the associativity property in spec §8): apply s2 to every entry of s1.
func (e *Engine) ComposeSubst(forDecl DeclID, s1, s2 []ID) []ID {
	out := make([]ID, len(s1))
	for i, id := range s1 {
		out[i] = e.Substitute(id, forDecl, s2)
	}
	return out
}

// DefaultNumerics rewrites every still-unbound integer inference variable
// reachable through ids to UnsignedInteger(64), unless collecting-only mode
// is active (spec §4.1). It is idempotent: a second call finds nothing left
// to default since the first call already bound every KindUnknown id it
// touched.
func (e *Engine) DefaultNumerics(ids []ID) {
	if e.collectingOnly {
		return
	}
	u64 := e.Insert(Descriptor{Kind: KindUnsignedInteger, Width: 64})
	for _, id := range ids {
		root := e.chase(id)
		if e.Get(root).Kind == KindUnknown {
			e.bindings[root] = u64
		}
	}
}

func structurallyEqual(a, b Descriptor) bool {
	return structuralKey(a) == structuralKey(b)
}

func structuralKey(d Descriptor) string {
	switch d.Kind {
	case KindUnsignedInteger:
		return fmt.Sprintf("u:%d", d.Width)
	case KindBoolean:
		return "bool"
	case KindB256:
		return "b256"
	case KindStringArray:
		return fmt.Sprintf("strarr:%d", d.Count)
	case KindStringSlice:
		return "strslice"
	case KindRawPtr:
		return "rawptr"
	case KindRawSlice:
		return "rawslice"
	case KindTuple:
		return fmt.Sprintf("tuple:%v", d.Elems)
	case KindArray:
		return fmt.Sprintf("arr:%d:%d", d.Elem, d.Count)
	case KindStruct:
		return fmt.Sprintf("struct:%d", d.Decl)
	case KindEnum:
		return fmt.Sprintf("enum:%d", d.Decl)
	case KindCustom:
		return fmt.Sprintf("custom:%v:%v", d.Path, d.TypeArgs)
	case KindContractCaller:
		return fmt.Sprintf("caller:%d:%d", d.Abi, d.Address)
	case KindContract:
		return "contract"
	case KindAlias:
		return fmt.Sprintf("alias:%s:%d", d.AliasName, d.Target)
	case KindSelfType:
		return "self"
	case KindStorage:
		return fmt.Sprintf("storage:%v", d.Fields)
	case KindNever:
		return "never"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("nonstructural:%v", d)
	}
}

func describe(d Descriptor) string {
	return structuralKey(d)
}
