// Package atlas is the serialized map service: it owns the sector
// cache and all viewer sessions, and answers viewport subscriptions,
// pans and range queries. All state is accessed only from the Run
// loop goroutine; the coordinate math itself lives in hexmap and is
// pure.
package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"travmap.dev/internal/atlas/stargen"
	"travmap.dev/internal/config"
	"travmap.dev/internal/hexmap"
	"travmap.dev/internal/mathx"
	"travmap.dev/internal/protocol"
	"travmap.dev/internal/store"
)

// JoinRequest registers a new viewer session.
type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// Envelope is a routed client message for an existing session.
type Envelope struct {
	SessionID string
	Subscribe *protocol.SubscribeMsg
	Pan       *protocol.PanMsg
}

// QueryRequest is the synchronous range lookup used by the HTTP API.
type QueryRequest struct {
	CornerA hexmap.SectorHex
	CornerB hexmap.SectorHex
	Resp    chan QueryResponse
}

type QueryResponse struct {
	Systems []protocol.System
	ErrCode string
}

// QueryLogger records served range queries; implemented by
// persistence/qlog. May be nil.
type QueryLogger interface {
	WriteQuery(entry QueryLogEntry) error
}

// QueryLogEntry is one served viewport/range request.
type QueryLogEntry struct {
	Session string `json:"session,omitempty"`
	Kind    string `json:"kind"` // "subscribe", "pan", "query"
	CornerA string `json:"corner_a"`
	CornerB string `json:"corner_b"`
	Hexes   int    `json:"hexes"`
	Sectors int    `json:"sectors"`
}

type session struct {
	id        string
	name      string
	out       chan []byte
	cornerA   hexmap.SectorHex
	cornerB   hexmap.SectorHex
	active    bool
	delivered map[string]bool // sector keys already sent
}

type Metrics struct {
	Sessions      int64
	LoadedSectors int64
	Queries       int64
	HexesServed   int64
}

type Service struct {
	cfg   config.Config
	log   *log.Logger
	store *store.Store       // may be nil (generated-only atlas)
	gen   *stargen.Generator // may be nil (stored-only atlas)

	sectors  map[string]*sectorData
	sessions map[string]*session

	join    chan JoinRequest
	leave   chan string
	inbox   chan Envelope
	queries chan QueryRequest
	stop    chan struct{}

	queryLog QueryLogger

	nextSessionNum atomic.Uint64

	mSessions      atomic.Int64
	mLoadedSectors atomic.Int64
	mQueries       atomic.Int64
	mHexesServed   atomic.Int64
}

func New(cfg config.Config, st *store.Store, logger *log.Logger) *Service {
	s := &Service{
		cfg:      cfg,
		log:      logger,
		store:    st,
		sectors:  map[string]*sectorData{},
		sessions: map[string]*session{},
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		inbox:    make(chan Envelope, 1024),
		queries:  make(chan QueryRequest, 64),
		stop:     make(chan struct{}),
	}
	if cfg.GenerateMissing {
		s.gen = stargen.New(cfg.Seed)
	}
	return s
}

func (s *Service) SetQueryLogger(l QueryLogger) { s.queryLog = l }

func (s *Service) Join() chan<- JoinRequest { return s.join }

func (s *Service) Leave() chan<- string { return s.leave }

func (s *Service) Inbox() chan<- Envelope { return s.inbox }

func (s *Service) Queries() chan<- QueryRequest { return s.queries }

func (s *Service) Metrics() Metrics {
	return Metrics{
		Sessions:      s.mSessions.Load(),
		LoadedSectors: s.mLoadedSectors.Load(),
		Queries:       s.mQueries.Load(),
		HexesServed:   s.mHexesServed.Load(),
	}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			s.handleJoin(req)
		case id := <-s.leave:
			s.handleLeave(id)
		case env := <-s.inbox:
			s.handleEnvelope(env)
		case q := <-s.queries:
			s.handleQuery(q)
		}
	}
}

func (s *Service) Stop() { close(s.stop) }

func (s *Service) handleJoin(req JoinRequest) {
	name := req.Name
	if name == "" {
		name = "viewer"
	}
	id := fmt.Sprintf("S%d", s.nextSessionNum.Add(1))
	s.sessions[id] = &session{
		id:        id,
		name:      name,
		out:       req.Out,
		delivered: map[string]bool{},
	}
	s.mSessions.Store(int64(len(s.sessions)))

	req.Resp <- JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		MapParams: protocol.MapParams{
			SectorColumns: hexmap.SectorColumns,
			SectorRows:    hexmap.SectorRows,
			MaxRangeHexes: s.cfg.MaxRangeHexes,
		},
	}}
}

func (s *Service) handleLeave(id string) {
	delete(s.sessions, id)
	s.mSessions.Store(int64(len(s.sessions)))
}

func (s *Service) handleEnvelope(env Envelope) {
	sess, ok := s.sessions[env.SessionID]
	if !ok {
		return
	}
	switch {
	case env.Subscribe != nil:
		a := fromRef(env.Subscribe.CornerA)
		b := fromRef(env.Subscribe.CornerB)
		s.setViewport(sess, a, b, "subscribe")
	case env.Pan != nil:
		if !sess.active {
			s.sendError(sess, protocol.ErrBadMessage, "PAN before SUBSCRIBE")
			return
		}
		a := sess.cornerA.Shift(env.Pan.DX, env.Pan.DY)
		b := sess.cornerB.Shift(env.Pan.DX, env.Pan.DY)
		s.setViewport(sess, a, b, "pan")
	}
}

// setViewport replaces the session's viewport and delivers every
// covered sector not yet sent to this session.
func (s *Service) setViewport(sess *session, a, b hexmap.SectorHex, kind string) {
	// Size check before enumerating: a runaway viewport must not cost
	// an allocation proportional to its area.
	if area := rectArea(a, b); area > s.cfg.MaxRangeHexes {
		s.sendError(sess, protocol.ErrRangeTooLarge,
			fmt.Sprintf("viewport of %d hexes exceeds limit %d", area, s.cfg.MaxRangeHexes))
		return
	}
	hexes := hexmap.Between(a, b)
	sess.cornerA = a
	sess.cornerB = b
	sess.active = true

	sent := 0
	for _, key := range coveredSectors(hexes) {
		if sess.delivered[key.String()] {
			continue
		}
		sd := s.loadSector(key.SX, key.SY)
		if s.send(sess, sd.message()) {
			sess.delivered[key.String()] = true
			sent++
		}
	}

	s.mQueries.Add(1)
	s.mHexesServed.Add(int64(len(hexes)))
	s.logQuery(QueryLogEntry{
		Session: sess.id,
		Kind:    kind,
		CornerA: a.Key(),
		CornerB: b.Key(),
		Hexes:   len(hexes),
		Sectors: sent,
	})
}

func (s *Service) handleQuery(q QueryRequest) {
	if rectArea(q.CornerA, q.CornerB) > s.cfg.MaxRangeHexes {
		q.Resp <- QueryResponse{ErrCode: protocol.ErrRangeTooLarge}
		return
	}
	hexes := hexmap.Between(q.CornerA, q.CornerB)

	au := q.CornerA.Universal()
	bu := q.CornerB.Universal()
	minX, maxX := au.X, bu.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := au.Y, bu.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	covered := coveredSectors(hexes)
	var out []protocol.System
	for _, key := range covered {
		for _, sys := range s.loadSector(key.SX, key.SY).systems {
			if sys.Hex.X < minX || sys.Hex.X > maxX || sys.Hex.Y < minY || sys.Hex.Y > maxY {
				continue
			}
			out = append(out, toProtocol(sys))
		}
	}

	s.mQueries.Add(1)
	s.mHexesServed.Add(int64(len(hexes)))
	s.logQuery(QueryLogEntry{
		Kind:    "query",
		CornerA: q.CornerA.Key(),
		CornerB: q.CornerB.Key(),
		Hexes:   len(hexes),
		Sectors: len(covered),
	})
	q.Resp <- QueryResponse{Systems: out}
}

func (s *Service) send(sess *session, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	select {
	case sess.out <- b:
		return true
	default:
		// Slow consumer: drop; the client can resubscribe.
		return false
	}
}

func (s *Service) sendError(sess *session, code, msg string) {
	s.send(sess, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
}

func (s *Service) logQuery(e QueryLogEntry) {
	if s.queryLog == nil {
		return
	}
	if err := s.queryLog.WriteQuery(e); err != nil {
		s.log.Printf("query log: %v", err)
	}
}

// rectArea is the hex count of the closed rectangle spanned by the
// corners, computed without enumerating it. Wire corners are
// unbounded, so extents near the integer limit must saturate rather
// than wrap: a wrapped product would slip under MaxRangeHexes and send
// an astronomically large rectangle into the enumeration.
func rectArea(a, b hexmap.SectorHex) int {
	au := a.Universal()
	bu := b.Universal()
	w := mathx.AbsInt(au.X-bu.X) + 1
	h := mathx.AbsInt(au.Y-bu.Y) + 1
	if w <= 0 || h <= 0 || w > math.MaxInt/h {
		return math.MaxInt
	}
	return w * h
}

func fromRef(r protocol.HexRef) hexmap.SectorHex {
	return hexmap.SectorHex{SectorX: r.SectorX, SectorY: r.SectorY, LocalX: r.LocalX, LocalY: r.LocalY}
}
