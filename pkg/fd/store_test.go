package fd

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewIntVar_Validation(t *testing.T) {
	s := NewStore()
	if _, err := s.NewIntVar("x", 3, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.NewEnumVar("e", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestBoundedVar_Bounds(t *testing.T) {
	s := NewStore()
	x := s.MustIntVar("x", -3, 5)
	if x.Size() != 9 || x.LB() != -3 || x.UB() != 5 {
		t.Fatalf("unexpected domain %v", x)
	}
	if changed, err := s.UpdateLowerBound(x, -1, nil); err != nil || !changed {
		t.Fatalf("UpdateLowerBound: changed=%v err=%v", changed, err)
	}
	if changed, _ := s.UpdateLowerBound(x, -2, nil); changed {
		t.Fatalf("weaker bound must not change the domain")
	}
	if _, err := s.UpdateUpperBound(x, 2, nil); err != nil {
		t.Fatalf("UpdateUpperBound: %v", err)
	}
	if got := x.Values(); !reflect.DeepEqual(got, []int{-1, 0, 1, 2}) {
		t.Fatalf("values = %v", got)
	}
	if _, err := s.UpdateLowerBound(x, 3, nil); !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected wipe-out, got %v", err)
	}
	// interior removal is a no-op on bounded variables
	if changed, _ := s.Remove(x, 0, nil); changed {
		t.Fatalf("bounded variable cannot hold holes")
	}
	if changed, _ := s.Remove(x, -1, nil); !changed || x.LB() != 0 {
		t.Fatalf("removing the lower bound should move it, got %v", x)
	}
}

func TestEnumVar_Holes(t *testing.T) {
	s := NewStore()
	v := s.MustEnumVar("v", 7, -2, 3, 130)
	if v.Size() != 4 || v.LB() != -2 || v.UB() != 130 {
		t.Fatalf("unexpected domain %v", v)
	}
	if n, ok := v.NextValue(3); !ok || n != 7 {
		t.Fatalf("NextValue(3) = %d,%v", n, ok)
	}
	if n, ok := v.PrevValue(130); !ok || n != 7 {
		t.Fatalf("PrevValue(130) = %d,%v", n, ok)
	}
	if _, err := s.UpdateLowerBound(v, 4, nil); err != nil {
		t.Fatal(err)
	}
	if v.LB() != 7 || v.Size() != 2 {
		t.Fatalf("lower bound should snap to 7, got %v", v)
	}
	if _, err := s.UpdateUpperBound(v, 100, nil); err != nil {
		t.Fatal(err)
	}
	if !v.IsInstantiated() || v.Value() != 7 {
		t.Fatalf("expected v=7, got %v", v)
	}
	if _, err := s.Remove(v, 7, nil); !errors.Is(err, ErrDomainEmpty) {
		t.Fatalf("removing the last value must wipe out, got %v", err)
	}
}

func TestCheckpoints_RestoreDomainsAndCells(t *testing.T) {
	s := NewStore()
	x := s.MustIntVar("x", 0, 10)
	e := s.MustEnumVar("e", 1, 2, 3, 4)
	c := s.NewCell(5)

	s.PushCheckpoint()
	stamp := x.Stamp()
	s.UpdateLowerBound(x, 4, nil)
	s.Remove(e, 2, nil)
	c.Set(9)

	s.PushCheckpoint()
	s.Instantiate(x, 6, nil)
	c.Set(11)
	s.PopCheckpoint()

	if x.LB() != 4 || x.UB() != 10 || c.Get() != 9 {
		t.Fatalf("inner pop: x=%v cell=%d", x, c.Get())
	}
	s.PopCheckpoint()
	if x.LB() != 0 || x.UB() != 10 || x.Size() != 11 {
		t.Fatalf("outer pop: x=%v", x)
	}
	if got := e.Values(); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Fatalf("e = %v", got)
	}
	if c.Get() != 5 {
		t.Fatalf("cell = %d, want 5", c.Get())
	}
	if x.Stamp() <= stamp {
		t.Fatalf("restoration must advance the stamp")
	}
	// popping with nothing open is harmless
	s.PopCheckpoint()
}
