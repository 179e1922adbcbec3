// Package dataseg implements the data section of binary emission (C15): an
// append-only list of typed entries keyed by a content-addressed id, so two
// constants with identical bytes share one entry within a single
// compilation. Grounded on the teacher's addNumberConstant dedup table in
// internal/compregister.Compiler (reuse an existing constant slot instead of
// allocating a new one), generalized from a small in-memory int/string
// constant table to a content-addressed byte-keyed one, and from a stdlib
// hash to golang.org/x/crypto/blake2b per spec §6 ("content-addressed id
// stable across a single compilation").
package dataseg

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// ID identifies one data-section entry by the blake2b-256 digest of its
// bytes, truncated to the id width the target VM's LoadLabel/data-offset
// operands can address.
type ID [16]byte

// Width classifies whether an entry fits in one machine word (a "copy type"
// the VM can load directly into a register) or needs the two-word
// address-load-then-LW sequence C12/C14 emit for larger values (spec §3).
type Width uint8

const (
	Copy Width = iota
	Reference
)

// Entry is one data-section record.
type Entry struct {
	ID    ID
	Bytes []byte
	Width Width
}

// Section is the append-only, content-addressed data section for one
// compilation unit.
type Section struct {
	entries []Entry
	index   map[ID]int
}

func New() *Section {
	return &Section{index: make(map[ID]int)}
}

// Intern records bytes (if not already present) and returns its stable id,
// deduplicating identical content within this compilation.
func (s *Section) Intern(bytes []byte, width Width) ID {
	id := contentID(bytes)
	if i, ok := s.index[id]; ok {
		return s.entries[i].ID
	}
	s.index[id] = len(s.entries)
	s.entries = append(s.entries, Entry{ID: id, Bytes: append([]byte(nil), bytes...), Width: width})
	return id
}

// InternUint64 is the common case: a single machine word, always Copy width.
func (s *Section) InternUint64(v uint64) ID {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return s.Intern(buf[:], Copy)
}

// Offset returns the entry's position (in entry-index units, not bytes) for
// the emitter (C15) to resolve an OpDataOffset, OpConfigurables or
// OpLoadLabel placeholder against, and whether that id is currently present.
func (s *Section) Offset(id ID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

func (s *Section) Entries() []Entry {
	return s.entries
}

// Len reports the number of distinct entries, used by cmd/corec's size
// reporting (via github.com/dustin/go-humanize for the byte count).
func (s *Section) Len() int { return len(s.entries) }

// Size is the total byte footprint of every distinct entry.
func (s *Section) Size() int {
	n := 0
	for _, e := range s.entries {
		n += len(e.Bytes)
	}
	return n
}

func contentID(bytes []byte) ID {
	sum := blake2b.Sum256(bytes)
	var id ID
	copy(id[:], sum[:16])
	return id
}
