package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotcraft.ai/internal/plan/model"
	"plotcraft.ai/internal/protocol"
	"plotcraft.ai/internal/site"
	"plotcraft.ai/internal/tuning"
)

func startSite(t *testing.T) *site.Site {
	t.Helper()
	tune := tuning.Defaults()
	st, err := site.New(model.NewPlan("P1", tune.ModelConfig()), 0, site.Config{Tuning: tune, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = st.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-st.Done()
	})
	return st
}

func dial(t *testing.T, st *site.Site) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewServer(nil).Handler(st))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn, v any) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	base, err := protocol.DecodeBase(b)
	require.NoError(t, err)
	if v != nil {
		require.NoError(t, json.Unmarshal(b, v))
	}
	return base.Type
}

func TestHandshakeAndEvent(t *testing.T) {
	conn := dial(t, startSite(t))

	require.NoError(t, conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "editor"}))
	var w protocol.WelcomeMsg
	require.Equal(t, protocol.TypeWelcome, read(t, conn, &w))
	assert.Equal(t, "P1", w.PlanID)
	assert.NotEmpty(t, w.SessionID)
	assert.Contains(t, w.Tools, "wall")

	pt := model.Vec2{X: 1, Z: 1}
	require.NoError(t, conn.WriteJSON(protocol.EventMsg{
		Type:  protocol.TypeEvent,
		Seq:   1,
		Event: protocol.EventPayload{Kind: protocol.EventSelectTool, Tool: "wall"},
	}))
	var a protocol.AppliedMsg
	require.Equal(t, protocol.TypeApplied, read(t, conn, &a))
	assert.Equal(t, "wall", a.Tool)

	require.NoError(t, conn.WriteJSON(protocol.EventMsg{
		Type:  protocol.TypeEvent,
		Seq:   2,
		Event: protocol.EventPayload{Kind: protocol.EventPointerDown, Point: &pt},
	}))
	require.Equal(t, protocol.TypeApplied, read(t, conn, &a))
	assert.Equal(t, uint64(2), a.Seq)
	assert.Equal(t, "collecting", a.State)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"HELLO","protocol_version":"1.0"}`)))
	var e protocol.ErrorMsg
	require.Equal(t, protocol.TypeError, read(t, conn, &e))
	assert.Equal(t, protocol.ErrProtoBadRequest, e.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.Equal(t, protocol.TypeError, read(t, conn, &e))
}

func TestHandshakeRejectsBadHello(t *testing.T) {
	for _, hello := range []string{
		`{"type":"EVENT","seq":1}`,
		`{"type":"HELLO","protocol_version":"0.1"}`,
	} {
		conn := dial(t, startSite(t))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(hello)))
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		var ce *websocket.CloseError
		require.ErrorAs(t, err, &ce, hello)
		assert.Equal(t, websocket.ClosePolicyViolation, ce.Code)
	}
}
