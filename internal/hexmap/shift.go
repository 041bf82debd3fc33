package hexmap

import "travmap.dev/internal/mathx"

// shiftAxis moves a 1-based in-sector coordinate along one axis by an
// arbitrary signed delta. It returns the renormalized coordinate, still
// in [1,size], and the number of whole sectors crossed (floor of the
// position on the infinite line divided by size, so delta 0 is an exact
// identity and a single call may cross any number of boundaries).
func shiftAxis(current, delta, size int) (newCurrent, sectorsCrossed int) {
	pos := current - 1 + delta
	return mathx.Mod(pos, size) + 1, mathx.FloorDiv(pos, size)
}

// Shift moves h by dx columns and dy rows in local (display) direction,
// folding any sector crossings into the sector indices. Crossing in the
// positive row direction decreases SectorY, matching the inverted Y
// convention of Universal.
func (h SectorHex) Shift(dx, dy int) SectorHex {
	lx, cx := shiftAxis(h.LocalX, dx, SectorColumns)
	ly, cy := shiftAxis(h.LocalY, dy, SectorRows)
	return SectorHex{
		SectorX: h.SectorX + cx,
		SectorY: h.SectorY - cy,
		LocalX:  lx,
		LocalY:  ly,
	}
}

// Shift moves u by a plain integer delta. Universal coordinates are
// unbounded, so no wraparound is involved.
func (u UniversalHex) Shift(dx, dy int) UniversalHex {
	return UniversalHex{X: u.X + dx, Y: u.Y + dy}
}
