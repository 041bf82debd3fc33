// Package ws exposes the atlas over a websocket session: HELLO
// handshake, then SUBSCRIBE/PAN messages in, SECTOR/ERROR messages out.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"travmap.dev/internal/atlas"
	"travmap.dev/internal/protocol"
)

type Server struct {
	atlas *atlas.Service
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(a *atlas.Service, logger *log.Logger) *Server {
	return &Server{
		atlas: a,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				if b, err := json.Marshal(protocol.ErrorMsg{
					Type:            protocol.TypeError,
					ProtocolVersion: protocol.Version,
					Code:            protocol.ErrBadVersion,
					Message:         "unsupported protocol_version " + base.ProtocolVersion,
				}); err == nil {
					select {
					case out <- b:
					default:
					}
				}
				continue
			}
			switch base.Type {
			case protocol.TypeSubscribe:
				var sub protocol.SubscribeMsg
				if err := json.Unmarshal(msg, &sub); err != nil {
					continue
				}
				s.atlas.Inbox() <- atlas.Envelope{SessionID: sessionID, Subscribe: &sub}
			case protocol.TypePan:
				var pan protocol.PanMsg
				if err := json.Unmarshal(msg, &pan); err != nil {
					continue
				}
				s.atlas.Inbox() <- atlas.Envelope{SessionID: sessionID, Pan: &pan}
			}
		}

		// Cleanup.
		s.atlas.Leave() <- sessionID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrBadVersion,
			Message:         "unsupported protocol_version " + hello.ProtocolVersion,
		})
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 64
	}
	if maxQ > 1024 {
		maxQ = 1024
	}
	out = make(chan []byte, maxQ)

	respCh := make(chan atlas.JoinResponse, 1)
	s.atlas.Join() <- atlas.JoinRequest{
		Name: hello.ClientName,
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.atlas.Leave() <- resp.Welcome.SessionID
		return "", nil
	}
	return resp.Welcome.SessionID, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
