// Package engines bundles the type arena, declaration arena and symbol
// interner into the single handle (spec §9: "an Engines struct bundling the
// arenas by shared reference") threaded through every phase from C6 onward,
// rather than reaching for implicit package-level globals.
package engines

import (
	"corec/internal/decl"
	"corec/internal/diag"
	"corec/internal/span"
	"corec/internal/types"
)

// Engines is created at the start of compiling a program and lives until its
// diagnostics have been rendered (spec §9).
type Engines struct {
	Types  *types.Engine
	Decls  *decl.Engine
	Idents *span.Interner
	Sink   *diag.Sink
}

func New() *Engines {
	return &Engines{
		Types:  types.NewEngine(),
		Decls:  decl.NewEngine(),
		Idents: span.NewInterner(),
		Sink:   diag.NewSink(),
	}
}
