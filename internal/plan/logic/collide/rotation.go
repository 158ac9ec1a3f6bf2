package collide

import "math"

// AxisTolerance is how far, in degrees, a rotation may sit from a quarter
// turn and still take the axis-aligned path.
const AxisTolerance = 0.5

// QuarterTurn converts a rotation in degrees to a quarter-turn count in [0,3].
// ok is false when the angle is not within AxisTolerance of a multiple of 90.
func QuarterTurn(deg float64) (turns int, ok bool) {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	q := math.Round(d / 90)
	if math.Abs(d-q*90) > AxisTolerance {
		return 0, false
	}
	return int(q) % 4, true
}

// RotateXZ rotates an (x,z) offset counter-clockwise by deg degrees, the same
// convention as placed building walls.
func RotateXZ(x, z, deg float64) (rx, rz float64) {
	s, c := math.Sincos(deg * math.Pi / 180)
	return x*c - z*s, x*s + z*c
}
