package stargen

import (
	"testing"

	"travmap.dev/internal/hexmap"
)

func TestSectorDeterministic(t *testing.T) {
	a := New(1337).Sector(0, 0)
	b := New(1337).Sector(0, 0)
	if len(a) == 0 {
		t.Fatalf("sector came out empty")
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Hex != b[i].Hex || a[i].Name != b[i].Name || a[i].UWP != b[i].UWP {
			t.Fatalf("system %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSeedChangesSector(t *testing.T) {
	a := New(1337).Sector(0, 0)
	b := New(1338).Sector(0, 0)
	if len(a) == len(b) {
		same := true
		for i := range a {
			if a[i].Hex != b[i].Hex {
				same = false
				break
			}
		}
		if same {
			t.Fatalf("different seeds produced identical occupancy")
		}
	}
}

func TestSectorStaysInBounds(t *testing.T) {
	for _, sys := range New(7).Sector(-3, 2) {
		s := sys.Hex.Sector()
		if s.SectorX != -3 || s.SectorY != 2 {
			t.Fatalf("system %s fell outside sector (-3,2): %+v", sys.Hex.Key(), s)
		}
	}
}

func TestDensityNearHalf(t *testing.T) {
	g := New(99)
	occupied := 0
	total := 0
	for _, sy := range []int{-2, 0, 3} {
		for _, sx := range []int{-2, 0, 3} {
			occupied += len(g.Sector(sx, sy))
			total += hexmap.SectorColumns * hexmap.SectorRows
		}
	}
	frac := float64(occupied) / float64(total)
	if frac < 0.40 || frac > 0.56 {
		t.Fatalf("occupancy %f outside expected band", frac)
	}
}

func TestSystemShape(t *testing.T) {
	g := New(1)
	found := false
	for _, u := range hexmap.BetweenUniversal(hexmap.UniversalHex{X: 1, Y: 1}, hexmap.UniversalHex{X: 20, Y: 20}) {
		sys, ok := g.System(u)
		if !ok {
			continue
		}
		found = true
		if sys.Name == "" {
			t.Fatalf("empty name at %s", u.Key())
		}
		if len(sys.UWP) != 9 || sys.UWP[7] != '-' {
			t.Fatalf("malformed UWP %q at %s", sys.UWP, u.Key())
		}
		if len(sys.Stars) < 1 || len(sys.Stars) > 2 {
			t.Fatalf("star count %d at %s", len(sys.Stars), u.Key())
		}
		switch sys.Zone {
		case "", "A", "R":
		default:
			t.Fatalf("unknown zone %q at %s", sys.Zone, u.Key())
		}
	}
	if !found {
		t.Fatalf("no systems generated in a 400-hex window")
	}
}
