package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"debate-dashboard/internal/web"

	"github.com/gorilla/websocket"
)

// fragmentMessage is the envelope pushed to browsers; the page script
// swaps the innerHTML of the element whose id matches Fragment.
type fragmentMessage struct {
	Fragment string `json:"fragment"`
	HTML     string `json:"html"`
}

type viewerHub struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	conns   map[*websocket.Conn]web.Viewer
}

func newViewerHub() *viewerHub {
	return &viewerHub{
		conns: make(map[*websocket.Conn]web.Viewer),
	}
}

func (h *viewerHub) Add(conn *websocket.Conn, viewer web.Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = viewer
}

func (h *viewerHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *viewerHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *viewerHub) Send(conn *websocket.Conn, fragment, html string) {
	data, err := json.Marshal(fragmentMessage{Fragment: fragment, HTML: html})
	if err != nil {
		return
	}
	// Reconcilers run on independent goroutines; gorilla allows only one
	// concurrent writer per connection.
	h.writeMu.Lock()
	writeErr := conn.WriteMessage(websocket.TextMessage, data)
	h.writeMu.Unlock()
	if writeErr != nil {
		h.Remove(conn)
	}
}

// ForEach invokes fn for every connected viewer. The connection list is
// copied up front so fn may send (and trigger removals) without holding
// the hub lock.
func (h *viewerHub) ForEach(fn func(conn *websocket.Conn, viewer web.Viewer)) {
	h.mu.Lock()
	type entry struct {
		conn   *websocket.Conn
		viewer web.Viewer
	}
	entries := make([]entry, 0, len(h.conns))
	for conn, viewer := range h.conns {
		entries = append(entries, entry{conn: conn, viewer: viewer})
	}
	h.mu.Unlock()
	for _, e := range entries {
		fn(e.conn, e.viewer)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.sessions.GetViewer(w, r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected viewer_id=%d remote=%s", viewer.ID, r.RemoteAddr)
	s.hub.Add(conn, viewer)
	s.sendSnapshot(conn, viewer)
	go s.readWS(conn, viewer)
}

func (s *Server) readWS(conn *websocket.Conn, viewer web.Viewer) {
	defer s.hub.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected viewer_id=%d error=%v", viewer.ID, err)
			return
		}
	}
}
