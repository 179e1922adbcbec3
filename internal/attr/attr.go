// Package attr validates the attribute grammar at the parser boundary (spec
// §6), grounded on original_source/sway-core/src/transform/attribute.rs: a
// per-attribute-name table of argument multiplicity, allowed argument
// names/values, and eligible declaration kinds. Violations become
// diagnostics, never panics (spec §7).
package attr

import (
	"corec/internal/decl"
	"corec/internal/diag"
	"corec/internal/parsetree"
)

// Multiplicity bounds how many arguments an attribute accepts.
type Multiplicity struct {
	Min, Max int // Max < 0 means unbounded
}

func exactly(n int) Multiplicity { return Multiplicity{Min: n, Max: n} }
func atMost(n int) Multiplicity  { return Multiplicity{Min: 0, Max: n} }
func atLeast(n int) Multiplicity { return Multiplicity{Min: n, Max: -1} }

// Rule describes one recognized attribute name.
type Rule struct {
	Multiplicity  Multiplicity
	AllowedArgs   map[string]bool // empty means any argument name is accepted
	RequireValues bool            // args must carry `= value`
	AllowValues   bool            // args may carry `= value`
	Targets       map[decl.Kind]bool
}

var allTargets = map[decl.Kind]bool{
	decl.KindStruct: true, decl.KindEnum: true, decl.KindTrait: true,
	decl.KindFunction: true, decl.KindImpl: true,
}

// Table is the attribute grammar named in spec §6.
var Table = map[string]Rule{
	"doc-comment": {Multiplicity: atLeast(0), Targets: allTargets},
	"storage": {
		Multiplicity: exactly(1),
		AllowedArgs:  map[string]bool{"read": true, "write": true},
		Targets:      map[decl.Kind]bool{decl.KindFunction: true},
	},
	"inline": {
		Multiplicity: exactly(1),
		AllowedArgs:  map[string]bool{"always": true, "never": true},
		Targets:      map[decl.Kind]bool{decl.KindFunction: true},
	},
	"trace": {
		Multiplicity: exactly(1),
		AllowedArgs:  map[string]bool{"always": true, "never": true},
		Targets:      map[decl.Kind]bool{decl.KindFunction: true},
	},
	"test": {
		Multiplicity:  atMost(1),
		AllowedArgs:   map[string]bool{"should_revert": true},
		AllowValues:   true,
		Targets:       map[decl.Kind]bool{decl.KindFunction: true},
	},
	"payable": {Multiplicity: exactly(0), Targets: map[decl.Kind]bool{decl.KindFunction: true}},
	"allow": {
		Multiplicity: atLeast(1),
		AllowedArgs:  map[string]bool{"dead_code": true, "deprecated": true},
		Targets:      allTargets,
	},
	"cfg": {
		Multiplicity:  atLeast(1),
		AllowValues:   true,
		Targets:       allTargets,
	},
	"deprecated": {
		Multiplicity:  atMost(1),
		AllowedArgs:   map[string]bool{"note": true},
		RequireValues: true,
		AllowValues:   true,
		Targets:       allTargets,
	},
	"fallback": {Multiplicity: exactly(0), Targets: map[decl.Kind]bool{decl.KindFunction: true}},
	"error_type": {Multiplicity: exactly(0), Targets: map[decl.Kind]bool{decl.KindEnum: true}},
	"derive": {
		Multiplicity: atLeast(1),
		Targets:      map[decl.Kind]bool{decl.KindStruct: true, decl.KindEnum: true},
	},
	"error": {
		Multiplicity:  exactly(1),
		AllowedArgs:   map[string]bool{"m": true},
		RequireValues: true,
		AllowValues:   true,
		Targets:       map[decl.Kind]bool{decl.KindFunction: true},
	},
}

// Validate checks every attribute on a declaration of the given kind against
// Table, appending a diagnostic for each violation and never panicking.
func Validate(sink *diag.Sink, target decl.Kind, attrs []parsetree.Attribute) {
	for _, a := range attrs {
		if a.Name == "doc-comment" {
			continue
		}
		rule, ok := Table[a.Name]
		if !ok {
			sink.Push(diag.Errorf(diag.CodeAttributeWrongTarget, a.Span,
				"unknown attribute `%s`", a.Name))
			continue
		}
		if !rule.Targets[target] {
			sink.Push(diag.Errorf(diag.CodeAttributeWrongTarget, a.Span,
				"attribute `%s` cannot be applied here", a.Name))
		}
		n := len(a.Args)
		if n < rule.Multiplicity.Min || (rule.Multiplicity.Max >= 0 && n > rule.Multiplicity.Max) {
			sink.Push(diag.Errorf(diag.CodeAttributeWrongArity, a.Span,
				"attribute `%s` expects %s argument(s), got %d", a.Name, describeMultiplicity(rule.Multiplicity), n))
			continue
		}
		for _, arg := range a.Args {
			if len(rule.AllowedArgs) > 0 && arg.Name != "" && !rule.AllowedArgs[arg.Name] {
				sink.Push(diag.Errorf(diag.CodeAttributeWrongValueType, arg.Span,
					"attribute `%s` does not accept argument `%s`", a.Name, arg.Name))
			}
			hasValue := arg.Value != ""
			if rule.RequireValues && !hasValue {
				sink.Push(diag.Errorf(diag.CodeAttributeWrongValueType, arg.Span,
					"attribute `%s` requires a value for `%s`", a.Name, arg.Name))
			}
			if hasValue && !rule.AllowValues {
				sink.Push(diag.Errorf(diag.CodeAttributeWrongValueType, arg.Span,
					"attribute `%s` does not take a value for `%s`", a.Name, arg.Name))
			}
		}
	}
}

func describeMultiplicity(m Multiplicity) string {
	if m.Max < 0 {
		if m.Min == 0 {
			return "any number of"
		}
		return "at least"
	}
	if m.Min == m.Max {
		if m.Min == 0 {
			return "no"
		}
		return "exactly"
	}
	return "between the allowed number of"
}

// DeriveTraits returns the trait names named by a `derive(...)` attribute on
// attrs, if any (spec §4.4 step 1's entry point: the caller still has to
// resolve each name to a trait decl.ID and run derive.Eligible itself).
func DeriveTraits(attrs []parsetree.Attribute) []string {
	for _, a := range attrs {
		if a.Name != "derive" {
			continue
		}
		names := make([]string, 0, len(a.Args))
		for _, arg := range a.Args {
			if arg.Value != "" {
				names = append(names, arg.Value)
			} else {
				names = append(names, arg.Name)
			}
		}
		return names
	}
	return nil
}

// PurityFromStorage derives the purity tag (spec §3) from a `storage`
// attribute list; functions with no `storage` attribute are pure.
func PurityFromStorage(attrs []parsetree.Attribute) decl.Purity {
	p := decl.PurityPure
	for _, a := range attrs {
		if a.Name != "storage" {
			continue
		}
		for _, arg := range a.Args {
			switch arg.Name {
			case "read":
				p = p.Merge(decl.PurityReads)
			case "write":
				p = p.Merge(decl.PurityWrites)
			}
		}
	}
	return p
}
