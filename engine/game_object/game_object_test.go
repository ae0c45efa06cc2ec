package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/model"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/material"
)

func TestInstanceCarriesMaterial(t *testing.T) {
	mat := material.NewMaterial(material.WithColor(common.Color{R: 0.1, G: 0.2, B: 0.3}))
	mat.SetTime(2.5)
	obj := NewGameObject(
		WithMaterial(mat),
		WithPosition([3]float32{0.5, -0.25, 0}),
		WithScale([3]float32{0.5, 0.5, 0.5}),
	)

	inst := obj.Instance(0.3)
	if inst.Material.Time != 2.5 || inst.Material.Color != [3]float32{0.1, 0.2, 0.3} {
		t.Fatalf("material = %+v", inst.Material)
	}
	if inst.Model != common.ModelMatrix(0.3, [3]float32{0.5, -0.25, 0}, [3]float32{0.5, 0.5, 0.5}) {
		t.Fatalf("model matrix does not match Rz*T*S")
	}
	if inst.Size() != 80 || len(inst.Marshal()) != 80 {
		t.Fatalf("instance size = %d / %d, want 80", inst.Size(), len(inst.Marshal()))
	}
}

func TestDegenerateScaleStaysFinite(t *testing.T) {
	tests := []struct {
		name  string
		scale [3]float32
	}{
		{"all zero", [3]float32{0, 0, 0}},
		{"one zero axis", [3]float32{0.4, 0, -0.2}},
		{"negative", [3]float32{-0.5, -0.5, -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := NewGameObject(WithScale(tt.scale))
			if m := obj.ModelMatrix(1.2); !common.IsFinite(m) {
				t.Fatalf("non-finite matrix %v", m)
			}
		})
	}
}

func TestDisabledInstanceCollapses(t *testing.T) {
	obj := NewGameObject(WithEnabled(false), WithPosition([3]float32{1, 1, 1}))
	if obj.Instance(0).Model != ([16]float32{}) {
		t.Fatal("disabled object should get a zero world matrix")
	}
	obj.SetEnabled(true)
	if obj.Instance(0).Model == ([16]float32{}) {
		t.Fatal("enabled object should get a real world matrix")
	}
}

func TestSharedModelIsAliased(t *testing.T) {
	m := model.NewModel(model.WithName("sphere"))
	a := NewGameObject(WithModel(m), WithMaterial(material.NewMaterial()))
	b := NewGameObject(WithModel(m), WithMaterial(material.NewMaterial()))
	if a.Model() != b.Model() {
		t.Fatal("objects should alias the same model")
	}
	if a.Material() == b.Material() {
		t.Fatal("objects should own distinct materials")
	}
}

func TestDefaults(t *testing.T) {
	obj := NewGameObject(WithID(7))
	if obj.ID() != 7 || !obj.Enabled() || obj.Scale() != [3]float32{1, 1, 1} || obj.Position() != [3]float32{} {
		t.Fatalf("unexpected defaults: id=%d enabled=%v scale=%v pos=%v", obj.ID(), obj.Enabled(), obj.Scale(), obj.Position())
	}
	obj.SetPosition(1, 2, 3)
	obj.SetScale(0, 0, 0)
	if obj.Position() != [3]float32{1, 2, 3} || obj.Scale() != [3]float32{} {
		t.Fatal("setters did not apply")
	}
}
