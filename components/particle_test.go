package components

import (
	"errors"
	"math"
	"testing"
)

func TestNewParticle(t *testing.T) {
	p := NewParticle(2, Vec2{1, 0}, 0.03, 7)

	if p.Index != 7 {
		t.Errorf("Index = %d, want 7", p.Index)
	}
	if p.LastVelocity != p.Velocity {
		t.Errorf("LastVelocity = %v, want %v", p.LastVelocity, p.Velocity)
	}
	wantArea := math.Pi * 0.03 * 0.03 * float64(ParticleResolution)
	if math.Abs(float64(p.Area)-wantArea) > 1e-6 {
		t.Errorf("Area = %f, want %f", p.Area, wantArea)
	}
}

func TestCheckIndexes(t *testing.T) {
	tests := []struct {
		name    string
		indexes []int
		wantErr error
	}{
		{"empty", nil, nil},
		{"dense", []int{0, 1, 2, 3}, nil},
		{"permuted", []int{2, 0, 3, 1}, nil},
		{"gap", []int{0, 1, 3}, ErrIndexGap},
		{"negative", []int{-1, 0}, ErrIndexGap},
		{"duplicate", []int{0, 1, 1}, ErrIndexDuplicate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			particles := make([]Particle, len(tc.indexes))
			for i, idx := range tc.indexes {
				particles[i] = NewParticle(1, Vec2{}, 1, idx)
			}
			err := CheckIndexes(particles)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("CheckIndexes() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestIndexSetReuse(t *testing.T) {
	var set IndexSet
	mk := func(indexes ...int) []Particle {
		ps := make([]Particle, len(indexes))
		for i, idx := range indexes {
			ps[i].Index = idx
		}
		return ps
	}

	if err := set.Check(mk(0, 1, 2, 3)); err != nil {
		t.Fatalf("dense: %v", err)
	}
	// A smaller slice must not see marks left by the previous check.
	if err := set.Check(mk(1, 0)); err != nil {
		t.Errorf("shrunk: %v", err)
	}
	if err := set.Check(mk(0, 0)); !errors.Is(err, ErrIndexDuplicate) {
		t.Errorf("duplicate after reuse = %v", err)
	}
	if err := set.Check(mk(2, 0, 1, 4, 3)); err != nil {
		t.Errorf("grown: %v", err)
	}
}

func TestVec2Normalize(t *testing.T) {
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("zero vector normalized to %v", got)
	}

	n := Vec2{3, 4}.Normalize()
	if math.Abs(float64(n.Length())-1) > 1e-6 {
		t.Errorf("normalized length = %f, want 1", n.Length())
	}
}

func TestVec2IsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	if !(Vec2{1, -2}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec2{nan, 0}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if (Vec2{0, inf}).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}

func TestVec2Signum(t *testing.T) {
	got := Vec2{-3, 0}.Signum()
	if got != (Vec2{-1, 1}) {
		t.Errorf("Signum = %v, want {-1 1}", got)
	}
}
