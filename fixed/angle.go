package fixed

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Angle is a binary angle: the full circle maps onto the uint32 range, so
// arithmetic wraps naturally.
type Angle uint32

const (
	Ang45  Angle = 0x20000000
	Ang90  Angle = 0x40000000
	Ang180 Angle = 0x80000000
	Ang270 Angle = 0xc0000000
)

// Fine angle tables have FineAngles entries per circle.
const (
	FineAngles       = 8192
	FineMask         = FineAngles - 1
	AngleToFineShift = 19
)

var (
	// FineSine covers 5/4 of a circle so FineCosine can alias into it.
	FineSine [FineAngles * 5 / 4]Fixed

	// FineCosine[i] == cos(i).
	FineCosine []Fixed

	// FineTangent spans -90..+90 degrees.
	FineTangent [FineAngles / 2]Fixed
)

func init() {
	for i := range FineSine {
		a := (float64(i) + 0.5) * 2 * math.Pi / FineAngles
		FineSine[i] = FromFloat(math.Sin(a))
	}
	FineCosine = FineSine[FineAngles/4:]
	for i := range FineTangent {
		a := (float64(i) - FineAngles/4 + 0.5) * 2 * math.Pi / FineAngles
		FineTangent[i] = FromFloat(math.Tan(a))
	}
}

// Fine returns the fine-table index of a.
func (a Angle) Fine() int {
	return int(a >> AngleToFineShift)
}

// Sin looks a up in the fine sine table.
func (a Angle) Sin() Fixed {
	return FineSine[a.Fine()]
}

// Cos looks a up in the fine cosine table.
func (a Angle) Cos() Fixed {
	return FineCosine[a.Fine()]
}

// Radians converts a to radians in [0, 2pi).
func (a Angle) Radians() float64 {
	return float64(a) * (2 * math.Pi / (1 << 32))
}

// AngleFromRadians wraps r into a binary angle.
func AngleFromRadians[T constraints.Float](r T) Angle {
	turns := math.Mod(float64(r)/(2*math.Pi), 1)
	if turns < 0 {
		turns++
	}
	return Angle(uint64(turns*(1<<32)) & math.MaxUint32)
}

// AngleFromDegrees wraps d into a binary angle.
func AngleFromDegrees[T constraints.Integer | constraints.Float](d T) Angle {
	return AngleFromRadians(float64(d) * (math.Pi / 180))
}
