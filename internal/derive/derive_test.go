package derive

import (
	"testing"

	"corec/internal/decl"
	"corec/internal/engines"
	"corec/internal/namespace"
	"corec/internal/types"
)

func TestEligibleAllScalarFields(t *testing.T) {
	e := engines.New()
	trait := e.Decls.Insert(decl.Decl{Kind: decl.KindTrait, Name: "encode"})
	u64 := e.Types.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 64})
	target := e.Decls.Insert(decl.Decl{
		Kind:   decl.KindStruct,
		Name:   "Point",
		Fields: []decl.Field{{Name: "x", Type: u64}, {Name: "y", Type: u64}},
	})

	ok, reason := Eligible(e, target, trait)
	if !ok {
		t.Fatalf("expected eligible, got reason %q", reason)
	}
}

func TestEligibleFieldMissingImpl(t *testing.T) {
	e := engines.New()
	trait := e.Decls.Insert(decl.Decl{Kind: decl.KindTrait, Name: "encode"})
	other := e.Decls.Insert(decl.Decl{Kind: decl.KindStruct, Name: "Opaque"})
	otherTy := e.Types.Insert(types.Descriptor{Kind: types.KindStruct, Decl: other})
	target := e.Decls.Insert(decl.Decl{
		Kind:   decl.KindStruct,
		Name:   "Wrapper",
		Fields: []decl.Field{{Name: "inner", Type: otherTy}},
	})

	ok, reason := Eligible(e, target, trait)
	if ok {
		t.Fatalf("expected ineligible")
	}
	if reason == "" {
		t.Fatalf("expected a reason string")
	}
}

func TestEligibleGenericParamWithMatchingBound(t *testing.T) {
	e := engines.New()
	trait := e.Decls.Insert(decl.Decl{Kind: decl.KindTrait, Name: "encode"})
	target := e.Decls.Insert(decl.Decl{
		Kind:       decl.KindStruct,
		Name:       "Box",
		TypeParams: []decl.TypeParam{{Name: "T", Bounds: []decl.ID{trait}}},
	})
	ph := e.Types.Insert(types.Descriptor{Kind: types.KindPlaceholder, Param: types.ParamRef{Decl: target, Index: 0, Name: "T"}})
	e.Decls.Get(target).Fields = []decl.Field{{Name: "value", Type: ph}}

	ok, _ := Eligible(e, target, trait)
	if !ok {
		t.Fatalf("expected eligible via generic bound")
	}
}

func TestEligibleGenericTraitBoundBailsOut(t *testing.T) {
	e := engines.New()
	trait := e.Decls.Insert(decl.Decl{Kind: decl.KindTrait, Name: "encode"})
	genericTrait := e.Decls.Insert(decl.Decl{
		Kind:       decl.KindTrait,
		Name:       "Convert",
		TypeParams: []decl.TypeParam{{Name: "X"}},
	})
	target := e.Decls.Insert(decl.Decl{
		Kind:       decl.KindStruct,
		Name:       "Box",
		TypeParams: []decl.TypeParam{{Name: "T", Bounds: []decl.ID{genericTrait}}},
	})
	ph := e.Types.Insert(types.Descriptor{Kind: types.KindPlaceholder, Param: types.ParamRef{Decl: target, Index: 0, Name: "T"}})
	e.Decls.Get(target).Fields = []decl.Field{{Name: "value", Type: ph}}

	ok, _ := Eligible(e, target, trait)
	if ok {
		t.Fatalf("expected the generic-trait-bound case to bail out conservatively")
	}
}

func TestGenerateStructEncodeProducesOneArmPerField(t *testing.T) {
	e := engines.New()
	trait := e.Decls.Insert(decl.Decl{Kind: decl.KindTrait, Name: "encode"})
	u64 := e.Types.Insert(types.Descriptor{Kind: types.KindUnsignedInteger, Width: 64})
	target := e.Decls.Insert(decl.Decl{
		Kind:   decl.KindStruct,
		Name:   "Point",
		Fields: []decl.Field{{Name: "x", Type: u64}, {Name: "y", Type: u64}},
	})
	mod := namespace.Root()

	res := Generate(e, mod, Request{Target: target, Trait: trait, Kind: Encode})
	if res.Body.Tail == nil || len(res.Body.Tail.Elements) != 2 {
		t.Fatalf("expected 2 encode calls, got %+v", res.Body.Tail)
	}
	if !res.Impl.HasTrait || res.Impl.Trait != trait {
		t.Fatalf("expected generated impl to target the encode trait")
	}
}
