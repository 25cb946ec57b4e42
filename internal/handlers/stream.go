package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moredevelopers26/chattest/internal/metrics"
	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one frame of the stream.
type Event struct {
	Type         string               `json:"type"` // "snapshot" or "notification"
	Snapshot     *models.Snapshot     `json:"snapshot,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// ClientCommand is read from the socket.
type ClientCommand struct {
	Foreground    *string `json:"foreground,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
}

// Stream upgrades to a websocket and pushes a snapshot after every
// mutation, followed by notifications for messages from other users.
// The room query parameter sets the foreground room, whose messages are
// not announced.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.SnapshotSubscribers.Inc()
	defer metrics.SnapshotSubscribers.Dec()

	tracker := notify.NewTracker()
	tracker.SetForeground(r.URL.Query().Get("room"))

	// Observers run one at a time under the service lock. A lagging client
	// skips to the newest snapshot; the tracker still sees every new
	// message because it diffs against the last snapshot it observed.
	snaps := make(chan models.Snapshot, 1)
	unsubscribe := h.chat.Subscribe(func(s models.Snapshot) {
		select {
		case <-snaps:
			metrics.SnapshotsCoalesced.Inc()
		default:
		}
		snaps <- s
	})
	defer unsubscribe()

	done := make(chan struct{})
	go h.readCommands(conn, tracker, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if !h.push(conn, tracker, h.chat.Snapshot()) {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-h.ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case s := <-snaps:
			if !h.push(conn, tracker, s) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) push(conn *websocket.Conn, tracker *notify.Tracker, s models.Snapshot) bool {
	events := []Event{{Type: "snapshot", Snapshot: &s}}
	for _, n := range tracker.Observe(s) {
		n := n
		events = append(events, Event{Type: "notification", Notification: &n})
	}
	for _, ev := range events {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug().Err(err).Msg("stream write failed")
			return false
		}
	}
	return true
}

func (h *Handler) readCommands(conn *websocket.Conn, tracker *notify.Tracker, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd ClientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("stream closed")
			}
			return
		}
		if cmd.Foreground != nil {
			tracker.SetForeground(*cmd.Foreground)
		}
		if cmd.Notifications != nil {
			tracker.SetEnabled(*cmd.Notifications)
		}
	}
}
