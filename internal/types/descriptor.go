// Package types implements the type engine (C3): an arena of type
// descriptors plus unification, coercion, and substitution of type
// parameters. Grounded on the teacher's register-allocator style of owning a
// flat slice and handing out small integer ids (see
// internal/compregister.RegisterAllocator), generalized from registers to
// type descriptors.
package types

import "github.com/google/uuid"

// ID is a stable index into an Engine's arena.
type ID uint32

// DeclID is an opaque reference into the declaration arena (C4). types
// never imports the decl package (decl imports types instead, for field and
// parameter types), so DeclID is declared here as the shared currency
// between the two arenas.
type DeclID uint32

// Kind tags which variant a Descriptor holds.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindErrorRecovery
	KindUnknownGeneric
	KindPlaceholder
	KindUnsignedInteger
	KindBoolean
	KindB256
	KindStringArray
	KindStringSlice
	KindRawPtr
	KindRawSlice
	KindTuple
	KindArray
	KindStruct
	KindEnum
	KindCustom
	KindContractCaller
	KindContract
	KindAlias
	KindSelfType
	KindStorage
	// KindNever is not named as a variant in the data model (§3), but §4.1's
	// coercion rule ("Never→T") and §4.2 step 4 ("Never and Unknown treated
	// as universal") both require a bottom type to exist. Added rather than
	// left implicit so coerce() has something concrete to special-case.
	KindNever
)

// ParamRef names a generic parameter currently in scope: the declaration
// that introduces it and its position among that declaration's type
// parameters.
type ParamRef struct {
	Decl  DeclID
	Index int
	Name  string
}

// StorageField is one field of a Storage{fields} descriptor.
type StorageField struct {
	Name string
	Type ID
}

// Descriptor is the tagged-variant type-descriptor value (spec §3). Replacing
// a class hierarchy with one struct and a Kind tag is the "tagged variants
// instead of deep visitor patterns" design note (spec §9): every pass
// consuming a Descriptor does a closed switch on Kind.
type Descriptor struct {
	Kind Kind

	// KindErrorRecovery
	ErrorID uuid.UUID

	// KindUnknownGeneric
	GenericName        string
	GenericConstraints []DeclID

	// KindPlaceholder
	Param ParamRef

	// KindUnsignedInteger
	Width int

	// KindStringArray / KindArray
	Count int
	Elem  ID

	// KindTuple
	Elems []ID

	// KindStruct / KindEnum
	Decl DeclID

	// KindCustom
	Path     []string
	TypeArgs []ID

	// KindContractCaller
	Abi     DeclID
	Address ID

	// KindAlias
	AliasName string
	Target    ID

	// KindStorage
	Fields []StorageField
}

func structural(k Kind) bool {
	switch k {
	case KindUnknownGeneric, KindPlaceholder, KindErrorRecovery:
		return false
	default:
		return true
	}
}
