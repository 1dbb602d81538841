package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"quizboard/internal/app"
)

func TestWebSocketSessionFlow(t *testing.T) {
	f := newFixture(t)

	var snap app.SessionSnapshot
	if code := f.do(t, http.MethodPost, "/api/quizzes/quiz-1/sessions", "", nil, &snap); code != http.StatusCreated {
		t.Fatalf("start session: status %d", code)
	}

	u := "ws" + f.server.URL[len("http"):] + "/api/sessions/" + snap.SessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current snapshot first.
	_, payload := readNext(conn, t, "snapshot")
	if payload["state"] != string(app.StateCollectingIdentity) {
		t.Fatalf("expected identity step, got %v", payload["state"])
	}

	send(t, conn, "begin", map[string]any{"name": "Alice", "email": "alice@example.com"})
	_, payload = readNext(conn, t, "snapshot")
	if payload["state"] != string(app.StateInProgress) {
		t.Fatalf("expected in progress, got %v", payload["state"])
	}

	send(t, conn, "answer", map[string]any{"optionIndex": 9})
	readNext(conn, t, "error")

	send(t, conn, "answer", map[string]any{"optionIndex": 1})
	readNext(conn, t, "snapshot")

	send(t, conn, "submit", nil)

	submittedSeen := false
	succeededSeen := false
	for i := 0; i < 5 && !(submittedSeen && succeededSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "submitted":
			submittedSeen = payload["resultId"] != ""
		case "snapshot":
			if payload["state"] == string(app.StateSucceeded) {
				succeededSeen = true
			}
		}
	}
	if !submittedSeen || !succeededSeen {
		t.Fatalf("expected submitted and succeeded, got submitted=%v succeeded=%v", submittedSeen, succeededSeen)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	f := newFixture(t)

	u := "ws" + f.server.URL[len("http"):] + "/api/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	raw, _ := json.Marshal(payload)
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": json.RawMessage(raw)}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
