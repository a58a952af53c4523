package wsobserver

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fluxorio/iotfsm/diagnostics"
)

func TestHubBroadcastsToConnectedClient(t *testing.T) {
	hub := NewHub(nil, true)
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server goroutine a moment to register the connection
	// before broadcasting; Observe drops records for clients it hasn't
	// registered yet.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatal("hub should have registered the connected client")
	}

	hub.Observe(diagnostics.Record{EngineID: "e1", Status: "StateChanged"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var rec diagnostics.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.EngineID != "e1" || rec.Status != "StateChanged" {
		t.Fatalf("got %+v, want EngineID=e1 Status=StateChanged", rec)
	}
}

func TestHubObserveWithNoClientsIsSafe(t *testing.T) {
	hub := NewHub(nil, true)
	hub.Observe(diagnostics.Record{})
}
