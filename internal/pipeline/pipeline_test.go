package pipeline

import (
	"testing"

	"corec/internal/config"
	"corec/internal/namespace"
	"corec/internal/parsetree"
)

func u64TypeExpr() *parsetree.TypeExpr {
	return &parsetree.TypeExpr{Path: []string{"u64"}}
}

func TestCompileElaboratesDerivesAndLowersToIR(t *testing.T) {
	prog := &parsetree.Program{
		Decls: []parsetree.Decl{
			{
				Kind: parsetree.DeclTrait,
				Name: "Encode",
			},
			{
				Kind:       parsetree.DeclStruct,
				Name:       "Point",
				Attributes: []parsetree.Attribute{{Name: "derive", Args: []parsetree.AttrArg{{Value: "Encode"}}}},
				Fields: []parsetree.FieldDecl{
					{Name: "x", Type: u64TypeExpr()},
					{Name: "y", Type: u64TypeExpr()},
				},
			},
			{
				Kind: parsetree.DeclFunction,
				Name: "main",
				Function: &parsetree.FunctionDecl{
					Name:   "main",
					Return:   u64TypeExpr(),
					TailExpr: &parsetree.Expr{Kind: parsetree.ExprLiteral, LitValue: int64(0)},
				},
			},
		},
	}

	out := Compile(Unit{
		Program: prog,
		Module:  namespace.Root().Child("test"),
		Kind:    config.Script,
		Flags:   config.FeatureFlags{AllowDeadCodeWarnings: true},
	})

	if out.Engines.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", out.Engines.Sink.Diagnostics())
	}
	if len(out.IR.Functions) < 2 {
		t.Fatalf("expected at least 2 lowered functions (main + derived encode), got %d", len(out.IR.Functions))
	}
	if out.Graph == nil {
		t.Fatalf("expected a reachability graph")
	}
}

func TestCompileReportsUnresolvedDeriveTrait(t *testing.T) {
	prog := &parsetree.Program{
		Decls: []parsetree.Decl{
			{
				Kind:       parsetree.DeclStruct,
				Name:       "Widget",
				Attributes: []parsetree.Attribute{{Name: "derive", Args: []parsetree.AttrArg{{Value: "NotReal"}}}},
				Fields:     []parsetree.FieldDecl{{Name: "x", Type: u64TypeExpr()}},
			},
		},
	}

	out := Compile(Unit{
		Program: prog,
		Module:  namespace.Root().Child("test2"),
		Kind:    config.Library,
	})

	if !out.Engines.Sink.HasErrors() {
		t.Fatalf("expected an unresolved-trait diagnostic for a nonexistent derive target")
	}
}
