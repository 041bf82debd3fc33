package hexmap

// BetweenUniversal enumerates every hex inside the closed axis-aligned
// rectangle spanned by the corners a and b, either of which may be the
// larger one on either axis. Order is row-major and deterministic: all
// hexes at one Y before the next, left to right within a row. The
// result has no duplicates; BetweenUniversal(a, a) is [a].
//
// Callers are responsible for bounding the rectangle before asking for
// it; the enumeration itself is total.
func BetweenUniversal(a, b UniversalHex) []UniversalHex {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	out := make([]UniversalHex, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			out = append(out, UniversalHex{X: x, Y: y})
		}
	}
	return out
}

// Between is BetweenUniversal for sector-relative corners, stitching
// the rectangle across however many sector boundaries it spans. All
// sectors actually touched by the span appear among the results,
// with no hex duplicated or missed at the seams.
func Between(a, b SectorHex) []SectorHex {
	uhs := BetweenUniversal(a.Universal(), b.Universal())
	out := make([]SectorHex, len(uhs))
	for i, u := range uhs {
		out[i] = u.Sector()
	}
	return out
}
