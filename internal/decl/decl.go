// Package decl implements the declaration engine (C4): interning of
// struct/enum/trait/function/impl declarations with stable ids. Grounded on
// the teacher's arena-and-handle style in internal/compregister.Compiler
// (flat slices plus small integer ids instead of owning pointers), applied
// here to declarations instead of registers, per the "cyclic references as
// arena indices" design note (spec §9).
package decl

import (
	"corec/internal/span"
	"corec/internal/types"
)

// Purity is the declared storage effect of a function (spec §3), derived
// from a `storage` attribute.
type Purity uint8

const (
	PurityPure Purity = iota
	PurityReads
	PurityWrites
	PurityReadsWrites
)

func (p Purity) String() string {
	switch p {
	case PurityReads:
		return "reads"
	case PurityWrites:
		return "writes"
	case PurityReadsWrites:
		return "reads+writes"
	default:
		return "pure"
	}
}

func (p Purity) Merge(other Purity) Purity {
	reads := p == PurityReads || p == PurityReadsWrites || other == PurityReads || other == PurityReadsWrites
	writes := p == PurityWrites || p == PurityReadsWrites || other == PurityWrites || other == PurityReadsWrites
	switch {
	case reads && writes:
		return PurityReadsWrites
	case reads:
		return PurityReads
	case writes:
		return PurityWrites
	default:
		return PurityPure
	}
}

// Visibility controls whether a declaration crosses a module boundary (C5
// consults this).
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

// TypeParam is one entry of a declaration's ordered type-parameter list,
// with its trait bounds (spec §3).
type TypeParam struct {
	Name   string
	Bounds []ID // trait declarations this parameter must implement
}

// Kind tags which declaration shape an ID names.
type Kind uint8

const (
	KindStruct Kind = iota
	KindEnum
	KindTrait
	KindFunction
	KindImpl
)

// ID is a stable index into an Engine's declaration arena.
type ID = types.DeclID

// Field is one struct field or enum variant payload.
type Field struct {
	Name string
	Type types.ID
	Span span.Span
}

// Param is one function parameter.
type Param struct {
	Name string
	Type types.ID
}

// StructDecl, EnumDecl, TraitDecl, FunctionDecl and ImplDecl are the five
// declaration shapes named in spec §3. A Decl wraps exactly one of them,
// selected by Kind - the tagged-variant pattern of spec §9 applied to
// declarations instead of expressions.
type Decl struct {
	Kind       Kind
	Name       string
	Span       span.Span
	Visibility Visibility
	TypeParams []TypeParam

	// KindStruct / KindEnum
	Fields []Field

	// KindTrait: methods this trait requires, by name -> signature
	TraitMethods []FunctionSig

	// KindFunction
	Params    []Param
	Return    types.ID
	Purity    Purity
	Body      interface{} // set by C6; left untyped here to avoid an import cycle with ir/parsetree
	IsMain    bool

	// KindImpl
	Trait        ID // zero-valued/ok-false (see HasTrait) for inherent impls
	HasTrait     bool
	ForType      types.ID
	Methods      []ID // KindFunction decls
	InCurrentMod bool // true if the impl'd trait is declared in the same module (feeds C8)
}

// FunctionSig is a method signature, used both by trait requirement lists and
// by method-resolution candidate summaries (spec §4.2 failure mode).
type FunctionSig struct {
	Name   string
	Params []types.ID
	Return types.ID
}

// Engine is the append-only declaration arena (spec §5).
type Engine struct {
	arena []Decl
}

func NewEngine() *Engine { return &Engine{} }

func (e *Engine) Insert(d Decl) ID {
	id := ID(len(e.arena))
	e.arena = append(e.arena, d)
	return id
}

func (e *Engine) Get(id ID) *Decl { return &e.arena[id] }

func (e *Engine) Len() int { return len(e.arena) }

// All returns every declaration id in insertion order, used by C8 to compute
// program entry points.
func (e *Engine) All() []ID {
	ids := make([]ID, len(e.arena))
	for i := range e.arena {
		ids[i] = ID(i)
	}
	return ids
}
