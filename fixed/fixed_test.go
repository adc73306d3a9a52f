package fixed

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		a, b     Fixed
		mul, div Fixed
	}{
		{FromInt(2), FromInt(3), FromInt(6), FracUnit * 2 / 3},
		{FromInt(-4), FracUnit / 2, FromInt(-2), FromInt(-8)},
		{FracUnit, FracUnit, FracUnit, FracUnit},
		{0, FromInt(5), 0, 0},
	}
	for _, tt := range tests {
		if got := Mul(tt.a, tt.b); got != tt.mul {
			t.Errorf("Mul(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.mul)
		}
		if got := Div(tt.a, tt.b); got != tt.div {
			t.Errorf("Div(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.div)
		}
	}
}

func TestDivSaturates(t *testing.T) {
	if got := Div(FromInt(1000), 1); got != MaxFixed {
		t.Errorf("positive overflow = %v, want MaxFixed", got)
	}
	if got := Div(FromInt(-1000), 1); got != MinFixed {
		t.Errorf("negative overflow = %v, want MinFixed", got)
	}
	if got := Div(FromInt(1), 0); got != MaxFixed {
		t.Errorf("division by zero = %v, want MaxFixed", got)
	}
}

func TestFromFloat(t *testing.T) {
	if got := FromFloat(1.0); got != FracUnit {
		t.Errorf("FromFloat(1) = %v", got)
	}
	// 160 * (1/160) is not exactly 1 in binary; rounding must recover it.
	if got := FromFloat(160 * (1.0 / 160)); got != FracUnit {
		t.Errorf("FromFloat(160/160) = %v", got)
	}
	if got := FromFloat(1e12); got != MaxFixed {
		t.Errorf("FromFloat(1e12) = %v", got)
	}
	if got := FromFloat(math.NaN()); got != 0 {
		t.Errorf("FromFloat(NaN) = %v", got)
	}
	if got := FromFloat(-2.5).Int(); got != -3 {
		t.Errorf("(-2.5).Int() = %v, want -3", got)
	}
}

func TestAngles(t *testing.T) {
	if got := AngleFromDegrees(90); got != Ang90 {
		t.Errorf("90 degrees = %#x", got)
	}
	if got := AngleFromDegrees(-90); got != Ang270 {
		t.Errorf("-90 degrees = %#x", got)
	}
	if s := Ang90.Sin(); math.Abs(s.Float()-1) > 1e-3 {
		t.Errorf("sin(90) = %v", s.Float())
	}
	if c := Ang180.Cos(); math.Abs(c.Float()+1) > 1e-3 {
		t.Errorf("cos(180) = %v", c.Float())
	}
	if r := Ang180.Radians(); math.Abs(r-math.Pi) > 1e-9 {
		t.Errorf("Ang180.Radians() = %v", r)
	}
	if v := FineTangent[FineAngles/4+FineAngles/8].Float(); math.Abs(v-1) > 1e-2 {
		t.Errorf("tan(45) = %v", v)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Error("Clamp misbehaves")
	}
}
