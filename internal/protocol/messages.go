package protocol

// HexRef is a sector-relative hex address as the network layer supplies
// it: sector index pair plus 1-based in-sector column/row.
type HexRef struct {
	SectorX int `json:"sector_x"`
	SectorY int `json:"sector_y"`
	LocalX  int `json:"local_x"`
	LocalY  int `json:"local_y"`
}

// System is one star-system record. Attribute strings (UWP, star
// classes, travel zone) are carried opaquely; decoding them is the
// client's business.
type System struct {
	Key   string   `json:"key"`   // universal "x.y"
	Label string   `json:"label"` // 4-digit in-sector hex label
	Name  string   `json:"name"`
	UWP   string   `json:"uwp"`
	Stars []string `json:"stars,omitempty"`
	Zone  string   `json:"zone,omitempty"`
}

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	SessionID       string    `json:"session_id"`
	MapParams       MapParams `json:"map_params"`
}

type MapParams struct {
	SectorColumns int `json:"sector_columns"`
	SectorRows    int `json:"sector_rows"`
	MaxRangeHexes int `json:"max_range_hexes"`
}

// SUBSCRIBE (client -> server): replace the session's viewport with the
// rectangle spanned by the two corners.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CornerA         HexRef `json:"corner_a"`
	CornerB         HexRef `json:"corner_b"`
}

// PAN (client -> server): move the viewport by a hex delta (already
// converted from pixels by the client).
type PanMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	DX              int    `json:"dx"`
	DY              int    `json:"dy"`
}

// SECTOR (server -> client): one sector's worth of systems.
type SectorMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SectorX         int      `json:"sector_x"`
	SectorY         int      `json:"sector_y"`
	SectorKey       string   `json:"sector_key"`
	Systems         []System `json:"systems"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
