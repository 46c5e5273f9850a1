package forest

import "math"

// GrowthDirection is one of the eight compass headings a branch segment can
// extend toward. Values are ordered clockwise starting at Left.
type GrowthDirection uint8

const (
	Left       GrowthDirection = iota // -x
	UpperLeft                         // -x, -y
	Up                                // -y
	UpperRight                        // +x, -y
	Right                             // +x
	LowerRight                        // +x, +y
	Down                              // +y
	LowerLeft                         // -x, +y
)

// NumDirections is the size of the direction model.
const NumDirections = 8

// GrowthDirections lists every direction in index order. Branch candidates are
// visited in this order, which fixes the order random draws are consumed.
var GrowthDirections = [NumDirections]GrowthDirection{
	Left, UpperLeft, Up, UpperRight, Right, LowerRight, Down, LowerLeft,
}

var directionNames = [NumDirections]string{
	"Left", "UpperLeft", "Up", "UpperRight", "Right", "LowerRight", "Down", "LowerLeft",
}

// String returns the direction's name.
func (d GrowthDirection) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "GrowthDirection(?)"
}

// IsDiagonal reports whether d moves along both axes.
func (d GrowthDirection) IsDiagonal() bool {
	return d%2 == 1
}

// unit returns the per-axis sign of d.
func (d GrowthDirection) unit() (sx, sy float32) {
	switch d {
	case Left:
		return -1, 0
	case UpperLeft:
		return -1, -1
	case Up:
		return 0, -1
	case UpperRight:
		return 1, -1
	case Right:
		return 1, 0
	case LowerRight:
		return 1, 1
	case Down:
		return 0, 1
	case LowerLeft:
		return -1, 1
	}
	return 0, 0
}

// cardinalLength returns 2^level in float32.
func cardinalLength(level uint8) float32 {
	return float32(math.Ldexp(1, int(level)))
}

// diagonalLength returns sqrt(2^(2*level) / 2), the per-axis component of a
// diagonal step whose Euclidean length equals 2^level. The quotient is formed
// in float32 before the square root so results match a float32 pipeline.
func diagonalLength(level uint8) float32 {
	sq := float32(math.Ldexp(1, 2*int(level))) / 2
	return float32(math.Sqrt(float64(sq)))
}

// Offset returns the displacement of a segment grown in direction d at the
// given level, scaled per axis into NDC.
func (d GrowthDirection) Offset(level uint8, scale Vec2) (dx, dy float32) {
	sx, sy := d.unit()
	length := cardinalLength(level)
	if d.IsDiagonal() {
		length = diagonalLength(level)
	}
	return sx * scale.X * length, sy * scale.Y * length
}

// Step returns the end point of a segment that starts at (x, y).
func (d GrowthDirection) Step(x, y float32, level uint8, scale Vec2) (float32, float32) {
	dx, dy := d.Offset(level, scale)
	return x + dx, y + dy
}
