package hexmap

import "testing"

func TestShiftZeroIsIdentity(t *testing.T) {
	hexes := []SectorHex{
		{SectorX: 1, SectorY: 1, LocalX: 1, LocalY: 1},
		{SectorX: 0, SectorY: 0, LocalX: 32, LocalY: 40},
		{SectorX: -4, SectorY: 7, LocalX: 16, LocalY: 20},
	}
	for _, h := range hexes {
		if got := h.Shift(0, 0); got != h {
			t.Fatalf("Shift(%+v, 0, 0) = %+v", h, got)
		}
	}
	u := UniversalHex{X: -17, Y: 99}
	if got := u.Shift(0, 0); got != u {
		t.Fatalf("Shift(%+v, 0, 0) = %+v", u, got)
	}
}

func TestShiftExamples(t *testing.T) {
	cases := []struct {
		h      SectorHex
		dx, dy int
		want   SectorHex
	}{
		{SectorHex{1, 1, 1, 1}, 0, 0, SectorHex{1, 1, 1, 1}},
		{SectorHex{1, 1, 1, 1}, 1, 1, SectorHex{1, 1, 2, 2}},
		// One step backwards off the sector's first column/row.
		{SectorHex{1, 1, 1, 1}, -1, 0, SectorHex{0, 1, 32, 1}},
		{SectorHex{1, 1, 1, 1}, 0, -1, SectorHex{1, 2, 1, 40}},
		// One step forwards off the last column/row.
		{SectorHex{0, 0, 32, 40}, 1, 0, SectorHex{1, 0, 1, 40}},
		{SectorHex{0, 0, 32, 40}, 0, 1, SectorHex{0, -1, 32, 1}},
		// A fast drag may cross several sectors in one call.
		{SectorHex{0, 0, 5, 5}, 3*SectorColumns + 2, -2*SectorRows - 7, SectorHex{3, 3, 7, 38}},
	}
	for _, c := range cases {
		if got := c.h.Shift(c.dx, c.dy); got != c.want {
			t.Fatalf("Shift(%+v, %d, %d) = %+v, want %+v", c.h, c.dx, c.dy, got, c.want)
		}
	}
}

func TestShiftWholeSectorCrossing(t *testing.T) {
	h := SectorHex{SectorX: 2, SectorY: -1, LocalX: 13, LocalY: 27}

	got := h.Shift(SectorColumns, 0)
	if got.SectorX != h.SectorX+1 || got.SectorY != h.SectorY || got.LocalX != h.LocalX || got.LocalY != h.LocalY {
		t.Fatalf("Shift(+%d, 0) = %+v", SectorColumns, got)
	}
	got = h.Shift(-SectorColumns, 0)
	if got.SectorX != h.SectorX-1 || got.LocalX != h.LocalX {
		t.Fatalf("Shift(-%d, 0) = %+v", SectorColumns, got)
	}
	// Inverted axis: a positive row shift of one full sector lowers SectorY.
	got = h.Shift(0, SectorRows)
	if got.SectorY != h.SectorY-1 || got.SectorX != h.SectorX || got.LocalY != h.LocalY {
		t.Fatalf("Shift(0, +%d) = %+v", SectorRows, got)
	}
	got = h.Shift(0, -SectorRows)
	if got.SectorY != h.SectorY+1 || got.LocalY != h.LocalY {
		t.Fatalf("Shift(0, -%d) = %+v", SectorRows, got)
	}
}

func TestShiftAdditivity(t *testing.T) {
	h := SectorHex{SectorX: -2, SectorY: 3, LocalX: 9, LocalY: 31}
	deltas := []int{-97, -40, -33, -32, -1, 0, 1, 31, 32, 40, 41, 103}
	for _, dx1 := range deltas {
		for _, dy1 := range deltas {
			for _, dx2 := range deltas {
				for _, dy2 := range deltas {
					a := h.Shift(dx1, dy1).Shift(dx2, dy2)
					b := h.Shift(dx1+dx2, dy1+dy2)
					if a != b {
						t.Fatalf("shift(shift(h,%d,%d),%d,%d) = %+v, shift(h,%d,%d) = %+v",
							dx1, dy1, dx2, dy2, a, dx1+dx2, dy1+dy2, b)
					}
				}
			}
		}
	}
}

func TestShiftNeverLeavesLocalRange(t *testing.T) {
	h := SectorHex{SectorX: 0, SectorY: 0, LocalX: 1, LocalY: 1}
	for d := -130; d <= 130; d++ {
		got := h.Shift(d, d)
		if got.LocalX < 1 || got.LocalX > SectorColumns || got.LocalY < 1 || got.LocalY > SectorRows {
			t.Fatalf("Shift(%d, %d) left local range: %+v", d, d, got)
		}
	}
}

func TestShiftAxis(t *testing.T) {
	cases := []struct {
		current, delta, size int
		want, crossed        int
	}{
		{1, 0, 32, 1, 0},
		{32, 0, 32, 32, 0},
		{32, 1, 32, 1, 1},
		{1, -1, 32, 32, -1},
		{1, -33, 32, 32, -2},
		{5, 64, 32, 5, 2},
		{40, 1, 40, 1, 1},
		{1, 80, 40, 1, 2},
	}
	for _, c := range cases {
		got, crossed := shiftAxis(c.current, c.delta, c.size)
		if got != c.want || crossed != c.crossed {
			t.Fatalf("shiftAxis(%d, %d, %d) = (%d, %d), want (%d, %d)",
				c.current, c.delta, c.size, got, crossed, c.want, c.crossed)
		}
	}
}
