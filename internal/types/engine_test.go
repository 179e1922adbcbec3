package types

import "testing"

func u(e *Engine, w int) ID { return e.Insert(Descriptor{Kind: KindUnsignedInteger, Width: w}) }

func TestInsertInternsStructuralTypes(t *testing.T) {
	e := NewEngine()
	a := u(e, 8)
	b := u(e, 8)
	if a != b {
		t.Fatalf("expected identical structural descriptors to share an id, got %d and %d", a, b)
	}
}

func TestInsertNeverInternsErrorRecovery(t *testing.T) {
	e := NewEngine()
	a := e.NewErrorRecovery()
	b := e.NewErrorRecovery()
	if a == b {
		t.Fatalf("expected distinct ErrorRecovery ids, got the same id twice")
	}
}

func TestCoerceReflexiveAndTransitive(t *testing.T) {
	e := NewEngine()
	u8, u16, u32 := u(e, 8), u(e, 16), u(e, 32)
	if err := e.Coerce(u8, u8); err != nil {
		t.Fatalf("coerce(t,t) must succeed: %v", err)
	}
	if err := e.Coerce(u8, u16); err != nil {
		t.Fatalf("u8->u16 should widen: %v", err)
	}
	if err := e.Coerce(u16, u32); err != nil {
		t.Fatalf("u16->u32 should widen: %v", err)
	}
	if err := e.Coerce(u8, u32); err != nil {
		t.Fatalf("transitivity: u8->u32 should also coerce: %v", err)
	}
	if err := e.Coerce(u32, u8); err == nil {
		t.Fatalf("narrowing u32->u8 must fail")
	}
}

func TestErrorRecoveryAbsorbsUnification(t *testing.T) {
	e := NewEngine()
	rec := e.NewErrorRecovery()
	u8 := u(e, 8)
	if err := e.Unify(rec, u8); err != nil {
		t.Fatalf("ErrorRecovery must absorb unification silently: %v", err)
	}
}

func TestSubstituteAssociativity(t *testing.T) {
	e := NewEngine()
	const decl DeclID = 1
	p0 := e.push(Descriptor{Kind: KindPlaceholder, Param: ParamRef{Decl: decl, Index: 0, Name: "T"}})
	arr := e.Insert(Descriptor{Kind: KindArray, Elem: p0, Count: 4})

	u8, u16 := u(e, 8), u(e, 16)
	s1 := []ID{u8}
	s2 := []ID{u16}

	direct := e.Substitute(e.Substitute(arr, decl, s1), decl, s2)
	composed := e.Substitute(arr, decl, e.ComposeSubst(decl, s1, s2))

	if e.Get(direct).Elem != e.Get(composed).Elem {
		t.Fatalf("substitution associativity violated: %v != %v", e.Get(direct), e.Get(composed))
	}
}

func TestDefaultNumericsSkipsWhenCollectingOnly(t *testing.T) {
	e := NewEngine()
	e.SetCollectingOnly(true)
	v := e.NewInferenceVar()
	e.DefaultNumerics([]ID{v})
	if e.Get(e.chase(v)).Kind != KindUnknown {
		t.Fatalf("collecting-only mode must not default numerics")
	}
}

func TestDefaultNumericsRewritesToU64(t *testing.T) {
	e := NewEngine()
	v := e.NewInferenceVar()
	e.DefaultNumerics([]ID{v})
	got := e.Get(e.chase(v))
	if got.Kind != KindUnsignedInteger || got.Width != 64 {
		t.Fatalf("expected u64 default, got %+v", got)
	}
}
