/*
File Name:  api.go

The webapi package is an optional status/dashboard HTTP API in front of a
Backend: JSON endpoints for status, peers, and history, plus a websocket
stream of Notification events, mirroring the teacher's WebapiInstance /
Router registration pattern.
*/

package webapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	core "github.com/othiagos/p2p-blockchain-chat"
)

// Server wraps a core.Backend with an HTTP status API (read-only apart
// from POST /append) and a websocket Notification stream.
type Server struct {
	Backend *core.Backend
	Router  *mux.Router

	clientsMutex sync.Mutex
	clients      map[uuid.UUID]*websocket.Conn
}

// upgrader accepts all origins, matching the teacher's dashboard-facing
// WSUpgrader; this API is meant to be reachable from a local browser tool.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewServer builds a Server and wires its Notification hook into backend.
func NewServer(backend *core.Backend) *Server {
	s := &Server{
		Backend: backend,
		Router:  mux.NewRouter(),
		clients: make(map[uuid.UUID]*websocket.Conn),
	}

	s.Router.HandleFunc("/status", s.handleStatus).Methods("GET")
	s.Router.HandleFunc("/peers", s.handlePeers).Methods("GET")
	s.Router.HandleFunc("/history", s.handleHistory).Methods("GET")
	s.Router.HandleFunc("/append", s.handleAppend).Methods("POST")
	s.Router.HandleFunc("/ws", s.handleWebsocket).Methods("GET")

	backend.Hooks.OnNotification = s.broadcastNotification

	return s
}

// ListenAndServe starts the HTTP server on addr. It blocks.
func (s *Server) ListenAndServe(addr string) error {
	s.Backend.Logger.Printf("webapi: listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Router)
}

func encodeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	encodeJSON(w, s.Backend.Status())
}

func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	encodeJSON(w, s.Backend.ListPeers())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	encodeJSON(w, s.Backend.ListHistory())
}

type appendRequest struct {
	Message string `json:"message"`
}

type appendResponse struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if r.Body == nil {
		http.Error(w, "missing body", http.StatusBadRequest)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	encodeJSON(w, appendResponse{Accepted: s.Backend.AppendMessage(req.Message)})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	id := uuid.New()
	s.clientsMutex.Lock()
	s.clients[id] = conn
	s.clientsMutex.Unlock()

	s.Backend.Logger.Printf("webapi: websocket client %s connected\n", id)

	// The connection only receives server-pushed events; drain and discard
	// any client reads so a closed socket is detected promptly.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.clientsMutex.Lock()
	delete(s.clients, id)
	s.clientsMutex.Unlock()
	conn.Close()
}

type notificationEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// broadcastNotification fans a Notification event out to every connected
// websocket client. Installed as the Backend's OnNotification hook.
func (s *Server) broadcastNotification(text string) {
	event := notificationEvent{Type: "notification", Text: text}

	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	for id, conn := range s.clients {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(s.clients, id)
		}
	}
}
