package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
)

type frame struct {
	Type     string          `json:"type"`
	Code     string          `json:"code"`
	ClientID string          `json:"client_id"`
	UserID   string          `json:"user_id"`
	Groups   []string        `json:"groups"`
	Data     json.RawMessage `json:"data"`
}

func wsURL(srv *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + WebSocketPath
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func (s *testServer) dial(t *testing.T, u domain.UserSummary) (*websocket.Conn, frame) {
	t.Helper()

	srv := httptest.NewServer(s.mux)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, s.token(t, u)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	connected := readFrame(t, conn)
	require.Equal(t, domain.MsgTypeConnected, connected.Type)
	return conn, connected
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f frame
	require.NoError(t, json.Unmarshal(data, &f), string(data))
	return f
}

func TestWS_RejectsBadTokenBeforeUpgrade(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.mux)
	defer srv.Close()

	for _, token := range []string{"", "garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Zero(t, s.hub.ClientCount())
}

func TestWS_ConnectedJoinsGroups(t *testing.T) {
	s := newTestServer(t)

	_, connected := s.dial(t, endUser)
	assert.Equal(t, endUser.ID, connected.UserID)
	assert.NotEmpty(t, connected.ClientID)
	assert.Equal(t, []string{domain.PersonalGroup(endUser.ID)}, connected.Groups)

	_, connected = s.dial(t, adminA)
	assert.ElementsMatch(t, []string{domain.PersonalGroup(adminA.ID), domain.OperatorPoolGroup}, connected.Groups)

	assert.Equal(t, 1, s.hub.GroupSize(domain.OperatorPoolGroup))
	assert.Equal(t, 2, s.hub.ClientCount())
}

func TestWS_PingAndBadFrames(t *testing.T) {
	s := newTestServer(t)
	conn, _ := s.dial(t, endUser)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"ping"}`)))
	assert.Equal(t, domain.MsgTypePong, readFrame(t, conn).Type)

	for _, raw := range []string{`not json`, `{}`, `{"action":"dance"}`, `{"action":"read_messages","thread_id":"nope"}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		f := readFrame(t, conn)
		assert.Equal(t, domain.MsgTypeError, f.Type, raw)
		assert.Equal(t, domain.ErrCodeBadRequest, f.Code, raw)
	}

	// The session survives malformed input.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"ping"}`)))
	assert.Equal(t, domain.MsgTypePong, readFrame(t, conn).Type)
}

func TestWS_PushesReachGroups(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	opConn, _ := s.dial(t, adminA)
	userConn, _ := s.dial(t, endUser)

	thread, err := s.lifecycle.CreateThread(ctx, endUser, "hi")
	require.NoError(t, err)

	echo := readFrame(t, userConn)
	assert.Equal(t, domain.PushMessageSent, echo.Type)

	announced := readFrame(t, opConn)
	require.Equal(t, domain.PushNewThread, announced.Type)
	var view domain.ThreadView
	require.NoError(t, json.Unmarshal(announced.Data, &view))
	assert.Equal(t, thread.ID, view.ID)
	assert.Equal(t, 1, view.UnreadCount)

	_, err = s.lifecycle.ClaimThread(ctx, thread.ID, adminA)
	require.NoError(t, err)
	assert.Equal(t, domain.PushAdminAssigned, readFrame(t, userConn).Type)

	_, err = s.pipeline.Send(ctx, thread.ID, adminA, "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.PushMessageSent, readFrame(t, opConn).Type)

	received := readFrame(t, userConn)
	require.Equal(t, domain.PushMessageReceived, received.Type)
	var msg domain.MessageView
	require.NoError(t, json.Unmarshal(received.Data, &msg))
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, adminA.ID, msg.Sender.ID)
}

func TestWS_ReadMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	thread, err := s.lifecycle.CreateThread(ctx, endUser, "first")
	require.NoError(t, err)
	_, err = s.pipeline.Send(ctx, thread.ID, endUser, "second")
	require.NoError(t, err)
	_, err = s.lifecycle.ClaimThread(ctx, thread.ID, adminA)
	require.NoError(t, err)

	n, err := s.lifecycle.UnreadCount(ctx, thread.ID, adminA.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	conn, _ := s.dial(t, adminA)
	require.NoError(t, conn.WriteJSON(domain.ReadMessagesFrame{Action: domain.ActionReadMessages, ThreadID: thread.ID}))

	require.Eventually(t, func() bool {
		n, err := s.lifecycle.UnreadCount(ctx, thread.ID, adminA.ID)
		return err == nil && n == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWS_ReadMessagesForbidden(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	thread, err := s.lifecycle.CreateThread(ctx, endUser, "private")
	require.NoError(t, err)

	conn, _ := s.dial(t, stranger)
	require.NoError(t, conn.WriteJSON(domain.ReadMessagesFrame{Action: domain.ActionReadMessages, ThreadID: thread.ID}))

	f := readFrame(t, conn)
	assert.Equal(t, domain.MsgTypeError, f.Type)
	assert.Equal(t, domain.ErrCodeForbidden, f.Code)

	n, err := s.lifecycle.UnreadCount(ctx, thread.ID, stranger.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWS_DisconnectLeavesGroups(t *testing.T) {
	s := newTestServer(t)

	conn, connected := s.dial(t, adminA)
	require.Len(t, connected.Groups, 2)
	require.Equal(t, 1, s.hub.GroupSize(domain.OperatorPoolGroup))

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return s.hub.GroupSize(domain.PersonalGroup(adminA.ID)) == 0 &&
			s.hub.GroupSize(domain.OperatorPoolGroup) == 0 &&
			s.hub.ClientCount() == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWS_PushToDeadPeerEndsSession(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	opConn, _ := s.dial(t, adminA)
	_, _ = s.dial(t, adminB)
	require.Equal(t, 2, s.hub.GroupSize(domain.OperatorPoolGroup))

	require.NoError(t, opConn.Close())

	// Pushes keep flowing to the live operator while the dead one is removed.
	_, err := s.lifecycle.CreateThread(ctx, endUser, "anyone?")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.hub.GroupSize(domain.PersonalGroup(adminA.ID)) == 0 &&
			s.hub.GroupSize(domain.OperatorPoolGroup) == 1 &&
			s.hub.ClientCount() == 1
	}, 3*time.Second, 10*time.Millisecond)
}
