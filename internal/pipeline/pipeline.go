// Package pipeline strings C6 through C11 together into the single
// whole-module entry point spec §9 describes: elaborate, derive, check
// reachability, then lower to IR and run the two cleanup passes — everything
// up to the point where C12's assembler takes over. Grounded on the
// teacher's cmd/sentra/main.go "run" subcommand driving lex->parse->compile
// in sequence and stopping at the first fatal error, generalized here to a
// library entry point rather than a CLI command (orchestrate.Run is what
// fans this out across multiple modules concurrently; Compile is the single
// unit of work each goroutine there calls).
package pipeline

import (
	"corec/internal/config"
	"corec/internal/engines"
	"corec/internal/ir"
	"corec/internal/ir/constprop"
	"corec/internal/ir/demote"
	"corec/internal/namespace"
	"corec/internal/parsetree"
	"corec/internal/reach"
	"corec/internal/typecheck"
)

// Unit is everything pipeline.Compile needs for one module: its parse tree,
// the namespace it elaborates into, and the flags governing optional
// behavior (spec §5).
type Unit struct {
	Program *parsetree.Program
	Module  *namespace.Module
	Kind    config.ProgramKind
	Flags   config.FeatureFlags
}

// Output is everything downstream of C11 needs: the lowered, cleaned-up IR
// ready for C12's assembler, plus the engines bundle (still needed for
// diagnostic rendering) and the reachability graph (a caller doing
// IDE-style analysis may want it even when AllowDeadCodeWarnings is false).
type Output struct {
	Engines *engines.Engines
	Graph   *reach.Graph
	IR      *ir.Program
}

// Compile runs one module through elaboration, auto-derive, reachability
// and IR lowering+cleanup. It never stops early on a diagnostic (spec §7):
// every phase keeps going and pushes what it can to the shared sink, so the
// caller sees every error from one compilation rather than only the first.
// Use out.Engines.Sink.HasErrors to decide whether the result is usable.
func Compile(u Unit) *Output {
	e := engines.New()
	if u.Flags.CollectingOnly {
		e.Types.SetCollectingOnly(true)
	}

	ctx := typecheck.NewContext(e, u.Module)
	typed := typecheck.ElaborateProgram(ctx, u.Program)

	graph := reach.Build(e, typed, u.Kind)
	if u.Flags.AllowDeadCodeWarnings {
		for _, d := range graph.DeadCode() {
			e.Sink.Push(d)
		}
	}

	prog := ir.BuildProgram(e, typed)
	for _, fn := range prog.Functions {
		demote.Run(fn, e.Types)
		constprop.Run(fn)
	}

	return &Output{Engines: e, Graph: graph, IR: prog}
}
