// Package stargen deterministically synthesizes star systems for
// sectors that have no stored survey data. Every hex is derived from
// the map seed and its universal coordinate alone, so any two servers
// with the same seed agree on every sector without coordination.
package stargen

import (
	"fmt"

	"travmap.dev/internal/hexmap"
	"travmap.dev/internal/mathx"
	"travmap.dev/internal/store"
)

type Generator struct {
	seed int64
}

func New(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Traveller-flavored attribute tables. The strings are opaque payload
// here; only their shape matters to the server.
var (
	starports = []byte("AABBCCDEEX")
	starTypes = []string{"O", "B", "A", "F", "F", "G", "G", "K", "K", "M", "M", "M"}

	nameFirst = []string{
		"Al", "Be", "Cor", "Dag", "Eri", "Fol", "Gar", "Hel", "Ind", "Jor",
		"Kel", "Lor", "Mar", "Nar", "Or", "Pel", "Quar", "Reg", "Sol", "Tor",
		"Ur", "Vel", "Wy", "Xan", "Yel", "Zar",
	}
	nameSecond = []string{
		"a", "an", "ar", "el", "en", "ia", "il", "in", "is", "on", "or", "os", "u", "ul",
	}
	nameThird = []string{
		"da", "dine", "don", "gard", "lia", "mis", "na", "nos", "ra", "ris", "ta", "th", "va", "x",
	}
)

// Presence density, permille. Classic sector surveys land near half
// the hexes occupied.
const presencePermille = 480

// HasSystem reports whether the hex holds a star system at all.
func (g *Generator) HasSystem(u hexmap.UniversalHex) bool {
	return mathx.Hash2(g.seed, u.X, u.Y)%1000 < presencePermille
}

// System synthesizes the record for one hex. The second return is
// false for empty hexes.
func (g *Generator) System(u hexmap.UniversalHex) (store.System, bool) {
	if !g.HasSystem(u) {
		return store.System{}, false
	}
	return store.System{
		Hex:   u,
		Name:  g.name(u),
		UWP:   g.uwp(u),
		Stars: g.stars(u),
		Zone:  g.zone(u),
	}, true
}

// Sector synthesizes every occupied hex of one sector, in the row-major
// order the coordinate core enumerates.
func (g *Generator) Sector(sectorX, sectorY int) []store.System {
	first := hexmap.SectorHex{SectorX: sectorX, SectorY: sectorY, LocalX: 1, LocalY: 1}
	last := hexmap.SectorHex{SectorX: sectorX, SectorY: sectorY, LocalX: hexmap.SectorColumns, LocalY: hexmap.SectorRows}

	var out []store.System
	for _, u := range hexmap.BetweenUniversal(first.Universal(), last.Universal()) {
		if sys, ok := g.System(u); ok {
			out = append(out, sys)
		}
	}
	return out
}

func (g *Generator) name(u hexmap.UniversalHex) string {
	h := mathx.Hash2(g.seed+1, u.X, u.Y)
	n := nameFirst[h%uint64(len(nameFirst))] + nameSecond[(h>>8)%uint64(len(nameSecond))]
	if (h>>16)%3 != 0 {
		n += nameThird[(h>>24)%uint64(len(nameThird))]
	}
	return n
}

func (g *Generator) uwp(u hexmap.UniversalHex) string {
	h := mathx.Hash2(g.seed+2, u.X, u.Y)
	port := starports[h%uint64(len(starports))]
	size := (h >> 4) % 10
	atmo := (h >> 8) % 13
	hydro := (h >> 12) % 11
	pop := (h >> 16) % 11
	gov := (h >> 20) % 14
	law := (h >> 24) % 10
	tech := (h >> 28) % 16
	return fmt.Sprintf("%c%s%s%s%s%s%s-%s",
		port, exHex(size), exHex(atmo), exHex(hydro), exHex(pop), exHex(gov), exHex(law), exHex(tech))
}

func (g *Generator) stars(u hexmap.UniversalHex) []string {
	h := mathx.Hash2(g.seed+3, u.X, u.Y)
	n := 1
	if h%5 == 0 {
		n = 2
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hh := h >> (8 * uint(i))
		out = append(out, fmt.Sprintf("%s%d V", starTypes[hh%uint64(len(starTypes))], (hh>>4)%10))
	}
	return out
}

func (g *Generator) zone(u hexmap.UniversalHex) string {
	switch mathx.Hash2(g.seed+4, u.X, u.Y) % 100 {
	case 0, 1:
		return "R"
	case 2, 3, 4, 5, 6:
		return "A"
	default:
		return ""
	}
}

// exHex renders an attribute digit in Traveller's extended hex
// notation (0-9 then A..).
func exHex(v uint64) string {
	const digits = "0123456789ABCDEFGH"
	return string(digits[v%uint64(len(digits))])
}
