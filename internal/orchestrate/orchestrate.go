// Package orchestrate is the only place in this module that touches
// concurrency: the peripheral module-compilation boundary spec §5 describes
// ("parallelism exists only at the module-compilation boundary... treats
// each module's core pipeline as a self-contained task with no shared
// mutable state"). Grounded on the teacher's own single-threaded
// cmd/sentra/main.go driver loop, generalized from "compile one program" to
// "fan a batch of independent compile units out across goroutines", using
// golang.org/x/sync/errgroup the way a from-scratch multi-module build
// driver would rather than hand-rolling a WaitGroup plus an error channel.
package orchestrate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Unit is one independent compile job: a label for error reporting plus
// whatever opaque input its Compile func closes over (a parsed program, a
// namespace root, a config.FeatureFlags value).
type Unit[T any] struct {
	Name  string
	Input T
}

// Result pairs a unit's name back with its output, so callers can report
// per-module failures without needing the units and results to stay in the
// same slice index (errgroup does preserve index order here, but callers
// outside this package shouldn't have to know that).
type Result[T, R any] struct {
	Name   string
	Output R
}

// Run compiles every unit concurrently via compile, stopping at the first
// error (errgroup's default behavior) and returning that error, prefixed
// with the failing unit's Name (the original stays reachable via errors.Is). Each
// goroutine only ever touches its own Unit and writes to its own slot in the
// results slice, so no lock is needed: the no-shared-mutable-state
// invariant the core pipeline already relies on (each namespace.Module,
// engines.Engines, and diag.Sink is built fresh per compilation) extends
// naturally to running several of them side by side.
func Run[T, R any](ctx context.Context, units []Unit[T], compile func(context.Context, T) (R, error)) ([]Result[T, R], error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]Result[T, R], len(units))
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			out, err := compile(ctx, u.Input)
			if err != nil {
				return fmt.Errorf("%s: %w", u.Name, err)
			}
			results[i] = Result[T, R]{Name: u.Name, Output: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
