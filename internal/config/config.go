// Package config holds the inputs to a compilation that aren't the parse
// tree or the namespace root (spec §5): the program kind and the
// feature-flags set. Grounded on the teacher's cmd/sentra/main.go run-mode
// flags (--production/--fast/--hotfix/--super), generalized from loose
// boolean CLI flags into a single typed struct passed into the core rather
// than read back out of a flag.FlagSet at arbitrary depth.
package config

// ProgramKind selects how C8 computes entry points (spec §3): script and
// predicate programs are entered only through `main`; contract and library
// programs expose every public item as an entry point.
type ProgramKind uint8

const (
	Script ProgramKind = iota
	Predicate
	Contract
	Library
)

func (k ProgramKind) String() string {
	switch k {
	case Predicate:
		return "predicate"
	case Contract:
		return "contract"
	case Library:
		return "library"
	default:
		return "script"
	}
}

// EntersThroughMain reports whether k uses the single-`main`-entry-point
// rule rather than the all-public-items rule (spec §3).
func (k ProgramKind) EntersThroughMain() bool {
	return k == Script || k == Predicate
}

// FeatureFlags gates optional pipeline behavior. CollectingOnly suppresses
// C3's numeric defaulting (spec §4.1), used by tooling that wants to inspect
// still-unresolved inference variables rather than have them silently
// widened to u64 (an IDE hover or a derive-eligibility probe, for example).
type FeatureFlags struct {
	CollectingOnly bool
	// AllowDeadCodeWarnings gates whether C8 pushes DeadCode/DeadEnumVariant
	// diagnostics at all, rather than only computing the graph for other
	// consumers (a caller doing reachability-only analysis for an IDE
	// "unused" gutter icon might want the graph without the warnings).
	AllowDeadCodeWarnings bool
}
