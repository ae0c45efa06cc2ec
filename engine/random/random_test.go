package random

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)
	for i := range 200 {
		va, vb := a.Range(-1, 1), b.Range(-1, 1)
		if va != vb {
			t.Fatalf("draw %d differs: %v vs %v", i, va, vb)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewGenerator(1)
	b := NewGenerator(2)
	same := 0
	for range 50 {
		if a.Value() == b.Value() {
			same++
		}
	}
	if same == 50 {
		t.Fatal("different seeds produced identical sequences")
	}
}

func TestRangeBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
	}{
		{"symmetric", -1, 1},
		{"positive", 2, 5},
		{"swapped", 1, -1},
		{"empty", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(7)
			lo, hi := min(tt.min, tt.max), max(tt.min, tt.max)
			for range 1000 {
				v := g.Range(tt.min, tt.max)
				if v < lo || (v >= hi && lo != hi) {
					t.Fatalf("value %v outside [%v, %v)", v, lo, hi)
				}
			}
		})
	}
}

func TestPick(t *testing.T) {
	g := NewGenerator(9)
	if got := g.Pick(0); got != -1 {
		t.Fatalf("Pick(0) = %d, want -1", got)
	}
	seen := make(map[int]bool)
	for range 500 {
		i := g.Pick(5)
		if i < 0 || i >= 5 {
			t.Fatalf("Pick(5) = %d out of range", i)
		}
		seen[i] = true
	}
	if len(seen) != 5 {
		t.Fatalf("expected every index to be picked at least once, saw %v", seen)
	}
}

func TestRangeIntEmpty(t *testing.T) {
	g := NewGenerator(3)
	if got := g.RangeInt(4, 4); got != 4 {
		t.Fatalf("RangeInt(4, 4) = %d, want 4", got)
	}
}

func TestSeed(t *testing.T) {
	if got := NewGenerator(1234).Seed(); got != 1234 {
		t.Fatalf("Seed() = %d, want 1234", got)
	}
}
