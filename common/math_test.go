package common

import (
	"math"
	"testing"
)

func transform(m [16]float32, v [4]float32) [4]float32 {
	var out [4]float32
	for row := range 4 {
		for col := range 4 {
			out[row] += m[col*4+row] * v[col]
		}
	}
	return out
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestOrthoDepthRange(t *testing.T) {
	tests := []struct {
		name      string
		near, far float32
		z         float32
		wantDepth float32
	}{
		{"near plane maps to zero", 0.1, 100, -0.1, 0},
		{"far plane maps to one", 0.1, 100, -100, 1},
		{"negative near plane", -100, 100, 100, 0},
		{"negative near far plane", -100, 100, -100, 1},
		{"midpoint", -100, 100, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Ortho(-1, 1, -1, 1, tt.near, tt.far)
			p := transform(m, [4]float32{0, 0, tt.z, 1})
			if !approx(p[2]/p[3], tt.wantDepth) {
				t.Fatalf("depth = %v, want %v", p[2]/p[3], tt.wantDepth)
			}
		})
	}
}

func TestOrthoBounds(t *testing.T) {
	m := Ortho(-4, 4, -2, 2, -100, 100)
	p := transform(m, [4]float32{4, -2, 0, 1})
	if !approx(p[0], 1) || !approx(p[1], -1) {
		t.Fatalf("corner mapped to (%v, %v), want (1, -1)", p[0], p[1])
	}
}

func TestModelMatrix(t *testing.T) {
	t.Run("identity inputs", func(t *testing.T) {
		m := ModelMatrix(0, [3]float32{}, [3]float32{1, 1, 1})
		var id [16]float32
		Identity(id[:])
		if m != id {
			t.Fatalf("got %v, want identity", m)
		}
	})

	t.Run("translation then parent rotation", func(t *testing.T) {
		m := ModelMatrix(math.Pi/2, [3]float32{1, 0, 0}, [3]float32{1, 1, 1})
		p := transform(m, [4]float32{0, 0, 0, 1})
		if !approx(p[0], 0) || !approx(p[1], 1) {
			t.Fatalf("origin mapped to (%v, %v), want (0, 1)", p[0], p[1])
		}
	})

	t.Run("zero scale stays finite", func(t *testing.T) {
		m := ModelMatrix(0.7, [3]float32{0.2, -0.4, 0.9}, [3]float32{0, 0.3, 0})
		if !IsFinite(m) {
			t.Fatalf("matrix has non-finite values: %v", m)
		}
		p := transform(m, [4]float32{1, 1, 1, 1})
		q := transform(m, [4]float32{-1, 1, -1, 1})
		if !approx(p[2], q[2]) {
			t.Fatalf("z-flattened sphere should collapse z: %v vs %v", p[2], q[2])
		}
	})
}

func TestMul4Identity(t *testing.T) {
	var id [16]float32
	Identity(id[:])
	m := LookAt([3]float32{2, 2, 2}, [3]float32{}, [3]float32{0, 1, 0})
	if got := Mul4(id, m); got != m {
		t.Fatalf("identity * m = %v, want %v", got, m)
	}
}

func TestLookAtCentersTarget(t *testing.T) {
	m := LookAt([3]float32{2, 2, 2}, [3]float32{}, [3]float32{0, 1, 0})
	p := transform(m, [4]float32{0, 0, 0, 1})
	if !approx(p[0], 0) || !approx(p[1], 0) || p[2] >= 0 {
		t.Fatalf("target in view space = %v, want on the -z axis", p)
	}
}

func TestSizeScaled(t *testing.T) {
	tests := []struct {
		in    Size
		ratio float64
		want  Size
	}{
		{Size{512, 512}, 1, Size{512, 512}},
		{Size{512, 256}, 2, Size{1024, 512}},
		{Size{100, 100}, 0, Size{100, 100}},
		{Size{1, 1}, 0.1, Size{1, 1}},
	}
	for _, tt := range tests {
		if got := tt.in.Scaled(tt.ratio); got != tt.want {
			t.Errorf("%v.Scaled(%v) = %v, want %v", tt.in, tt.ratio, got, tt.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 24, 30); got != 24 {
		t.Fatalf("Coalesce = %d, want 24", got)
	}
	if got := Coalesce[string](); got != "" {
		t.Fatalf("Coalesce of nothing = %q, want empty", got)
	}
}
