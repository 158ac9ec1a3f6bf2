package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"plotcraft.ai/internal/protocol"
	"plotcraft.ai/internal/site"
)

const outQueue = 64

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler serves one editor connection against st: HELLO, WELCOME, then a
// stream of EVENT messages each answered by APPLIED or ERROR.
func (s *Server) Handler(st *site.Site) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn, st)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-st.Done():
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "plan closed"), time.Now().Add(time.Second))
					cancel()
					return
				case b := <-out:
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
				break
			}
			ev, ok := s.decodeEvent(msg, out)
			if !ok {
				continue
			}
			select {
			case st.Inbox() <- site.EventEnvelope{SessionID: sessionID, Msg: ev}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()

		select {
		case st.Leave() <- sessionID:
		case <-st.Done():
		}
	}
}

// decodeEvent parses an EVENT. Anything else is answered with a protocol
// error on out and dropped.
func (s *Server) decodeEvent(msg []byte, out chan []byte) (protocol.EventMsg, bool) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		push(out, protocol.NewError(protocol.ErrProtoBadRequest, "malformed json"))
		return protocol.EventMsg{}, false
	}
	if base.Type != protocol.TypeEvent {
		push(out, protocol.NewError(protocol.ErrProtoBadRequest, "unexpected message type "+base.Type))
		return protocol.EventMsg{}, false
	}
	if base.ProtocolVersion != "" && base.ProtocolVersion != protocol.Version {
		push(out, protocol.NewError(protocol.ErrProtoBadRequest, "bad protocol_version"))
		return protocol.EventMsg{}, false
	}
	var ev protocol.EventMsg
	if err := json.Unmarshal(msg, &ev); err != nil {
		push(out, protocol.NewError(protocol.ErrProtoBadRequest, err.Error()))
		return protocol.EventMsg{}, false
	}
	return ev, true
}

func (s *Server) handshake(conn *websocket.Conn, st *site.Site) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}

	out = make(chan []byte, outQueue)
	respCh := make(chan site.JoinResponse, 1)
	select {
	case st.Join() <- site.JoinRequest{ClientName: hello.ClientName, Out: out, Resp: respCh}:
	case <-st.Done():
		closeWith(conn, "plan closed")
		return "", nil
	}
	var resp site.JoinResponse
	select {
	case resp = <-respCh:
	case <-st.Done():
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return "", nil
	}
	if s.log != nil {
		s.log.Printf("ws: plan=%s session=%s client=%q remote=%s", resp.Welcome.PlanID, resp.Welcome.SessionID, hello.ClientName, conn.RemoteAddr())
	}
	return resp.Welcome.SessionID, out
}

func push(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
