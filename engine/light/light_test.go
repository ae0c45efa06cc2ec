package light

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/noise-spheres/common"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypeAmbient)
	if !l.Enabled() || l.Intensity() != 1 || l.Color() != (common.Color{R: 1, G: 1, B: 1}) {
		t.Fatalf("unexpected defaults: enabled=%v intensity=%v color=%+v", l.Enabled(), l.Intensity(), l.Color())
	}
	if l.Direction() != [3]float32{} {
		t.Fatalf("ambient direction = %v, want zero", l.Direction())
	}
}

func TestDirectionalLightDirection(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float32
		want    [3]float32
	}{
		{"axis aligned", 0, 5, 0, [3]float32{0, -1, 0}},
		{"sketch key light", 2, 2, 4, [3]float32{-2 / float32(math.Sqrt(24)), -2 / float32(math.Sqrt(24)), -4 / float32(math.Sqrt(24))}},
		{"at origin", 0, 0, 0, [3]float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLight(LightTypeDirectional, WithPosition(tt.x, tt.y, tt.z))
			got := l.Direction()
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-5 {
					t.Fatalf("Direction = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRadiance(t *testing.T) {
	l := NewLight(LightTypeDirectional,
		WithColor(common.Color{R: 0.5, G: 1, B: 0.25}),
		WithIntensity(2),
	)
	if got := l.Radiance(); got != (common.Color{R: 1, G: 2, B: 0.5}) {
		t.Fatalf("Radiance = %+v", got)
	}
	l.SetEnabled(false)
	if got := l.Radiance(); got != (common.Color{}) {
		t.Fatalf("disabled Radiance = %+v, want black", got)
	}
	if LightTypeDirectional.String() != "directional" {
		t.Fatal("unexpected type name")
	}
}

func TestNegativeIntensityClamps(t *testing.T) {
	l := NewLight(LightTypeAmbient, WithIntensity(-3), WithEnabled(false))
	if l.Intensity() != 0 || l.Enabled() {
		t.Fatalf("intensity=%v enabled=%v, want 0 false", l.Intensity(), l.Enabled())
	}
}
