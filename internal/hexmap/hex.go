// Package hexmap implements the sector hex coordinate system: fixed
// 32x40 sectors tiling an infinite plane, with conversion between
// sector-relative and flattened universal addresses, wraparound shifts
// and rectangle enumeration.
//
// All functions are pure and total over the integers; there is no
// "invalid hex" at this layer.
package hexmap

import (
	"fmt"

	"travmap.dev/internal/mathx"
)

// Sector dimensions in hexes.
const (
	SectorColumns = 32
	SectorRows    = 40
)

// SectorHex addresses a hex by sector index plus a 1-based position
// inside that sector: LocalX in [1,32], LocalY in [1,40]. Local
// coordinates are never 0; arithmetic that would leave the range
// renormalizes into the neighboring sector instead.
type SectorHex struct {
	SectorX int
	SectorY int
	LocalX  int
	LocalY  int
}

// UniversalHex is the flattening of all sectors onto one infinite grid.
// It is the canonical physical coordinate: map keys, range math and
// equality all work here without reference to a sector.
type UniversalHex struct {
	X int
	Y int
}

// Universal flattens h onto the infinite grid.
//
// The Y axis is inverted: the local row grows toward one edge of the
// sector while the sector index grows in the opposite global direction,
// so y = SectorY*SectorRows - LocalY.
func (h SectorHex) Universal() UniversalHex {
	return UniversalHex{
		X: h.LocalX + h.SectorX*SectorColumns,
		Y: h.SectorY*SectorRows - h.LocalY,
	}
}

// Sector derives the sector-relative view of u. It is the exact inverse
// of Universal: a coordinate on a sector boundary resolves to one sector
// deterministically and the local coordinates are never 0.
func (u UniversalHex) Sector() SectorHex {
	sx := mathx.FloorDiv(u.X-1, SectorColumns)
	sy := mathx.FloorDiv(u.Y, SectorRows) + 1
	return SectorHex{
		SectorX: sx,
		SectorY: sy,
		LocalX:  u.X - sx*SectorColumns,
		LocalY:  sy*SectorRows - u.Y,
	}
}

// Key is a collision-free string encoding of h, for map/dictionary use.
func (h SectorHex) Key() string {
	return fmt.Sprintf("%d.%d.%d.%d", h.SectorX, h.SectorY, h.LocalX, h.LocalY)
}

// SectorKey identifies h's sector alone, for per-sector batching.
func (h SectorHex) SectorKey() string {
	return fmt.Sprintf("%d.%d", h.SectorX, h.SectorY)
}

// Key is a collision-free string encoding of u, for map/dictionary use.
func (u UniversalHex) Key() string {
	return fmt.Sprintf("%d.%d", u.X, u.Y)
}

// Label is the 4-digit column-row display string shown on a map hex.
// It is built from local coordinates only, so it repeats across
// sectors; never use it as a key.
func (h SectorHex) Label() string {
	return fmt.Sprintf("%02d%02d", h.LocalX, h.LocalY)
}

// Label is the display label of the hex u falls in.
func (u UniversalHex) Label() string {
	return u.Sector().Label()
}
