package webapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	core "github.com/othiagos/p2p-blockchain-chat"
)

func newTestServer() *Server {
	backend := core.NewBackend(&core.Config{Port: 51511}, log.New(io.Discard, "", 0))
	return NewServer(backend)
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer()
	s.Backend.Archive.Append([]byte("hi"))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var status core.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.ArchiveLen != 1 {
		t.Errorf("ArchiveLen = %d, want 1", status.ArchiveLen)
	}
	if status.Port != 51511 {
		t.Errorf("Port = %d, want 51511", status.Port)
	}
}

func TestHandleHistory(t *testing.T) {
	s := newTestServer()
	s.Backend.Archive.Append([]byte("first"))
	s.Backend.Archive.Append([]byte("second"))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	var history []string
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(history) != 2 || history[0] != "first" || history[1] != "second" {
		t.Fatalf("history = %v, want [first second]", history)
	}
}

func TestHandleAppend(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/append", strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	var resp appendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Accepted {
		t.Fatal("expected append to be accepted")
	}
	if s.Backend.Archive.Len() != 1 {
		t.Fatalf("Archive.Len() = %d, want 1", s.Backend.Archive.Len())
	}
}

func TestHandleAppendRejectsInvalidJSON(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/append", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want 400", rec.Code)
	}
}

func TestBroadcastNotificationSkipsWithNoClients(t *testing.T) {
	s := newTestServer()
	// Must not panic with zero connected websocket clients.
	s.broadcastNotification("hello peers")
}
