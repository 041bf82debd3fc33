package atlas

import (
	"context"
	"fmt"
	"time"

	"travmap.dev/internal/hexmap"
	"travmap.dev/internal/protocol"
	"travmap.dev/internal/store"
)

// sectorKey identifies one sector tile.
type sectorKey struct {
	SX int
	SY int
}

func (k sectorKey) String() string { return fmt.Sprintf("%d.%d", k.SX, k.SY) }

type sectorData struct {
	key     sectorKey
	systems []store.System
}

func (sd *sectorData) message() protocol.SectorMsg {
	systems := make([]protocol.System, 0, len(sd.systems))
	for _, sys := range sd.systems {
		systems = append(systems, toProtocol(sys))
	}
	return protocol.SectorMsg{
		Type:            protocol.TypeSector,
		ProtocolVersion: protocol.Version,
		SectorX:         sd.key.SX,
		SectorY:         sd.key.SY,
		SectorKey:       sd.key.String(),
		Systems:         systems,
	}
}

func toProtocol(sys store.System) protocol.System {
	return protocol.System{
		Key:   sys.Hex.Key(),
		Label: sys.Hex.Label(),
		Name:  sys.Name,
		UWP:   sys.UWP,
		Stars: sys.Stars,
		Zone:  sys.Zone,
	}
}

// coveredSectors returns the sectors a hex enumeration passes through,
// in first-touch order (deterministic because the enumeration is
// row-major).
func coveredSectors(hexes []hexmap.SectorHex) []sectorKey {
	seen := map[sectorKey]bool{}
	var out []sectorKey
	for _, h := range hexes {
		k := sectorKey{SX: h.SectorX, SY: h.SectorY}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// loadSector resolves one sector: cache, then store, then generator,
// then empty. Only ever called from the Run loop.
func (s *Service) loadSector(sx, sy int) *sectorData {
	key := sectorKey{SX: sx, SY: sy}
	if sd, ok := s.sectors[key.String()]; ok {
		return sd
	}

	sd := &sectorData{key: key}
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		systems, err := s.store.SystemsInSector(ctx, sx, sy)
		cancel()
		if err != nil {
			s.log.Printf("sector %s: store: %v", key, err)
		}
		sd.systems = systems
	}
	if len(sd.systems) == 0 && s.gen != nil {
		sd.systems = s.gen.Sector(sx, sy)
	}

	s.cacheSector(sd)
	return sd
}

func (s *Service) cacheSector(sd *sectorData) {
	s.sectors[sd.key.String()] = sd
	// Blunt eviction: drop arbitrary entries once over the limit. Sectors
	// are cheap to reload and map iteration order spreads the churn.
	for len(s.sectors) > s.cfg.MaxCachedSectors {
		for k := range s.sectors {
			if k == sd.key.String() {
				continue
			}
			delete(s.sectors, k)
			break
		}
	}
	s.mLoadedSectors.Store(int64(len(s.sectors)))
}
