package transport

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/beka-birhanu/cheese-chase-server/protocol"
)

func TestTCPConnRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	client := NewTCPConn(a, time.Second)
	server := NewTCPConn(b, time.Second)
	defer client.Close()
	defer server.Close()

	want := protocol.NewMessage(protocol.Connect, "pending|Bob")
	errc := make(chan error, 1)
	go func() { errc <- client.WriteMessage(want) }()

	got, err := server.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if err := <-errc; err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}

func TestTCPConnWriteTimesOutOnStalledPeer(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	c := NewTCPConn(a, 20*time.Millisecond)
	defer c.Close()

	// Nobody reads b, so the pipe write blocks until the deadline.
	err := c.WriteMessage(protocol.NewMessage(protocol.State, "GAMEOVER|false,none"))
	var ne net.Error
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestTCPConnCloseUnblocksRead(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	c := NewTCPConn(a, 0)

	done := make(chan error, 1)
	go func() {
		_, err := c.ReadMessage()
		done <- err
	}()
	_ = c.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected read error after close")
		}
	case <-time.After(time.Second):
		t.Fatalf("read still blocked after close")
	}
}

func TestWSConnRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	echoed := make(chan protocol.Message, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewWSConn(ws, time.Second)
		defer c.Close()
		m, err := c.ReadMessage()
		if err != nil {
			return
		}
		echoed <- m
		_ = c.WriteMessage(protocol.NewMessage(protocol.AssignRole, "mouse"))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client := NewWSConn(ws, time.Second)
	defer client.Close()

	if err := client.WriteMessage(protocol.NewMessage(protocol.Connect, "pending|Bob")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	select {
	case m := <-echoed:
		if m.Type != protocol.Connect || m.Payload != "pending|Bob" {
			t.Fatalf("server read %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatalf("server never read the message")
	}

	reply, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if reply.Type != protocol.AssignRole || reply.Payload != "mouse" {
		t.Fatalf("got %+v", reply)
	}
}

func TestWSConnRejectsTextFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	result := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewWSConn(ws, time.Second)
		defer c.Close()
		_, err = c.ReadMessage()
		result <- err
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	if err := ws.WriteMessage(websocket.TextMessage, []byte("CONNECT host|A")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrTextFrame) {
			t.Fatalf("expected ErrTextFrame, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("server never returned")
	}
}
