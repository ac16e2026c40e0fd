package phase

import (
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}

	if got := a.Add(b); got != (Vec3{5, -3, 9}) {
		t.Errorf("add: %v", got)
	}
	if got := a.Sub(b); got != (Vec3{-3, 7, -3}) {
		t.Errorf("sub: %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("scale: %v", got)
	}
	if got := a.Dot(b); got != 4-10+18 {
		t.Errorf("dot: %v", got)
	}
	if got := (Vec3{3, 4, 0}).Norm(); got != 5 {
		t.Errorf("norm: %v", got)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"finite", Vec3{1, 2, 3}, true},
		{"zero", Vec3{}, true},
		{"nan", Vec3{math.NaN(), 0, 0}, false},
		{"pos inf", Vec3{0, math.Inf(1), 0}, false},
		{"neg inf", Vec3{0, 0, math.Inf(-1)}, false},
		{"sentinel", Inf(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite(%v) = %v", tt.v, got)
			}
		})
	}
}

func TestState_Kick(t *testing.T) {
	s := State{Pos: Vec3{1, 2, 3}, Vel: Vec3{10, 0, 0}}
	k := s.Kick(Vec3{0, 5, -1})

	if k.Pos != s.Pos {
		t.Errorf("kick moved the position: %v", k.Pos)
	}
	if k.Vel != (Vec3{10, 5, -1}) {
		t.Errorf("kick velocity: %v", k.Vel)
	}
	if s.Vel != (Vec3{10, 0, 0}) {
		t.Errorf("kick mutated the receiver: %v", s.Vel)
	}
}

func TestUnitConversion(t *testing.T) {
	// 220 km/s is a bit under a quarter kpc/Myr
	v := 220 * KpcMyrPerKms
	if v < 0.22 || v > 0.23 {
		t.Errorf("220 km/s = %g kpc/Myr", v)
	}
}
