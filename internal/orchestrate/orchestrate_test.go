package orchestrate

import (
	"context"
	"errors"
	"testing"
)

func TestRunCompilesEveryUnit(t *testing.T) {
	units := []Unit[int]{{Name: "a", Input: 1}, {Name: "b", Input: 2}, {Name: "c", Input: 3}}
	results, err := Run(context.Background(), units, func(_ context.Context, n int) (int, error) {
		return n * 10, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []int{10, 20, 30} {
		if results[i].Output != want {
			t.Fatalf("result %d: expected %d, got %d", i, want, results[i].Output)
		}
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	units := []Unit[int]{{Name: "a", Input: 1}, {Name: "bad", Input: 2}}
	_, err := Run(context.Background(), units, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
