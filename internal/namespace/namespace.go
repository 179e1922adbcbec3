// Package namespace implements the module hierarchy, imports, visibility and
// trait-impl lookup (C5). Grounded on the teacher's Scope type in
// internal/compregister.Compiler (a parent-linked chain of name tables),
// generalized from local variable scopes to a module tree carrying
// declarations and trait impls.
package namespace

import (
	"strings"

	"corec/internal/decl"
	"corec/internal/types"
)

// Module is one node of the namespace tree.
type Module struct {
	Name     string
	Parent   *Module
	Children map[string]*Module

	// types/values declared directly in this module, by name.
	Types  map[string]types.DeclID
	Values map[string]decl.ID

	// Imports: alias -> fully-qualified path of an imported module.
	Imports map[string][]string

	// TraitImpls indexes impl blocks (decl.KindImpl) by the type they target,
	// so method resolution (C6) can gather candidates per spec §4.2 step 2.
	TraitImpls map[types.ID][]decl.ID
}

func NewModule(name string, parent *Module) *Module {
	return &Module{
		Name:       name,
		Parent:     parent,
		Children:   make(map[string]*Module),
		Types:      make(map[string]types.DeclID),
		Values:     make(map[string]decl.ID),
		Imports:    make(map[string][]string),
		TraitImpls: make(map[types.ID][]decl.ID),
	}
}

// Root builds an empty root module, the entry point of the namespace tree fed
// into the core by the (out-of-scope) module-resolution step.
func Root() *Module { return NewModule("", nil) }

// Child returns (creating if absent) the named submodule.
func (m *Module) Child(name string) *Module {
	if c, ok := m.Children[name]; ok {
		return c
	}
	c := NewModule(name, m)
	m.Children[name] = c
	return c
}

// Path returns the dotted path from the root to m.
func (m *Module) Path() []string {
	if m.Parent == nil {
		if m.Name == "" {
			return nil
		}
		return []string{m.Name}
	}
	return append(m.Parent.Path(), m.Name)
}

func (m *Module) String() string { return strings.Join(m.Path(), "::") }

// DeclareType registers a struct/enum/trait declaration under name.
func (m *Module) DeclareType(name string, id types.DeclID) { m.Types[name] = id }

// DeclareValue registers a function declaration under name.
func (m *Module) DeclareValue(name string, id decl.ID) { m.Values[name] = id }

// RegisterImpl indexes an impl block by the concrete type it targets, so
// TraitImpls(forType) can return every candidate for method resolution.
func (m *Module) RegisterImpl(forType types.ID, implID decl.ID) {
	m.TraitImpls[forType] = append(m.TraitImpls[forType], implID)
}

// lookupChild walks a dotted path from m, following child modules and
// aliases recorded in Imports.
func (m *Module) lookupChild(path []string) (*Module, bool) {
	cur := m
	for _, seg := range path {
		if target, ok := cur.Imports[seg]; ok {
			resolved, ok := cur.resolveFromRoot(target)
			if !ok {
				return nil, false
			}
			cur = resolved
			continue
		}
		child, ok := cur.Children[seg]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

func (m *Module) root() *Module {
	cur := m
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

func (m *Module) resolveFromRoot(path []string) (*Module, bool) {
	return m.root().lookupChild(path)
}

// ResolveTypePath implements types.PathResolver: it resolves a Custom{path}
// reference to the declaration it names, searching the local module and then
// the fully-qualified path from the root.
func (m *Module) ResolveTypePath(path []string) (types.DeclID, bool) {
	if len(path) == 0 {
		return 0, false
	}
	name := path[len(path)-1]
	modPath := path[:len(path)-1]
	if len(modPath) == 0 {
		if id, ok := m.Types[name]; ok {
			return id, true
		}
		if m.Parent != nil {
			return m.Parent.ResolveTypePath(path)
		}
		return 0, false
	}
	target, ok := m.lookupChild(modPath)
	if !ok {
		target, ok = m.resolveFromRoot(modPath)
		if !ok {
			return 0, false
		}
	}
	id, ok := target.Types[name]
	return id, ok
}

// Visible reports whether a declaration in declModule is visible from m:
// always true within the same module, otherwise the declaration must be
// public.
func Visible(m *Module, declModule *Module, vis decl.Visibility) bool {
	if m == declModule {
		return true
	}
	return vis == decl.VisibilityPublic
}

// CandidateNamespaces returns the three namespaces method resolution (C6)
// gathers candidates from, in the order spec §4.2 step 2 requires: the local
// module, the module declaring the argument type, and the module declaring
// the receiver type.
func CandidateNamespaces(local, argTypeModule, receiverTypeModule *Module) []*Module {
	seen := make(map[*Module]bool)
	var out []*Module
	for _, m := range []*Module{local, argTypeModule, receiverTypeModule} {
		if m == nil || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
