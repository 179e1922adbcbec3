package resolve

import "testing"

func TestRootAcceptsValidDependency(t *testing.T) {
	u := Unit{Name: "main", Dependencies: []Dependency{{Path: "example.com/foo", Version: "v1.2.3"}}}
	mod, err := Root(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Name != "main" {
		t.Fatalf("expected child module named %q, got %q", "main", mod.Name)
	}
}

func TestRootRejectsMalformedPath(t *testing.T) {
	u := Unit{Name: "main", Dependencies: []Dependency{{Path: "Not A Valid Path"}}}
	if _, err := Root(u); err == nil {
		t.Fatalf("expected an error for a malformed module path")
	}
}

func TestRootRejectsInvalidVersion(t *testing.T) {
	u := Unit{Name: "main", Dependencies: []Dependency{{Path: "example.com/foo", Version: "not-semver"}}}
	if _, err := Root(u); err == nil {
		t.Fatalf("expected an error for an invalid version")
	}
}

func TestRootWithNoDependencies(t *testing.T) {
	mod, err := Root(Unit{Name: "solo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod == nil {
		t.Fatalf("expected a non-nil module")
	}
}
