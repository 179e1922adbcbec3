// Package resolve is the minimal stand-in for the module/package resolution
// step that populates a namespace.Root before the core pipeline runs (out of
// scope per spec §1: this module only validates a dependency coordinate and
// hands back a bare namespace root, it never touches the filesystem or a
// module proxy). Grounded on the teacher's cmd/sentra/main.go argument
// validation (reject a malformed run before handing off to the core),
// generalized from validating CLI flags to validating a dependency's module
// path and version constraint via golang.org/x/mod.
package resolve

import (
	"fmt"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"

	"corec/internal/namespace"
)

// Dependency is one entry of a compilation unit's dependency list: a module
// path plus the version constraint it was pinned at.
type Dependency struct {
	Path    string
	Version string
}

// Unit names the inputs resolve hands back a namespace root for.
type Unit struct {
	Name         string
	Dependencies []Dependency
}

// Root validates u's dependency coordinates and returns a fresh
// namespace.Root for the core pipeline to populate with declarations. Real
// package resolution (fetching, caching, re-exporting a dependency's public
// namespace) stays out of scope; this only guards against a malformed
// coordinate reaching the core.
func Root(u Unit) (*namespace.Module, error) {
	for _, dep := range u.Dependencies {
		if err := module.CheckPath(dep.Path); err != nil {
			return nil, fmt.Errorf("resolve: dependency %q: %w", dep.Path, err)
		}
		if dep.Version != "" && !semver.IsValid(dep.Version) {
			return nil, fmt.Errorf("resolve: dependency %q has an invalid version %q", dep.Path, dep.Version)
		}
	}
	root := namespace.Root()
	return root.Child(u.Name), nil
}
