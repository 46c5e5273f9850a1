package forest

// Affine matrices use the layout [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// newX = a*x + c*y + tx, newY = b*x + d*y + ty

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// ndcTransform maps normalized device coordinates ([-1, 1] on both axes,
// y up, origin at the centre) onto a w x h pixel target with y down.
func ndcTransform(w, h int) [6]float64 {
	hw := float64(w) / 2
	hh := float64(h) / 2
	return [6]float64{hw, 0, 0, -hh, hw, hh}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// ScreenToNDC converts a pixel position on a w x h target back into NDC.
func ScreenToNDC(w, h int, sx, sy float64) (x, y float64) {
	return transformPoint(invertAffine(ndcTransform(w, h)), sx, sy)
}
