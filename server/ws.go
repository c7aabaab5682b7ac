package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/routesim/sim"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWs streams snapshot JSON for ?vehicle=<id>, or every vehicle when the
// parameter is empty or "*". The current state is sent first.
func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("err upgrading connection: %v", err)
		return
	}

	sub := s.engine.Publisher().Subscribe(r.URL.Query().Get("vehicle"))
	clog := log.WithFields(log.Fields{"subscriber": sub.ID(), "selector": sub.Selector()})
	clog.Infof("websocket client connected, %d subscribers", s.engine.Publisher().Len())

	go readPump(conn, sub, clog)
	s.writePump(conn, sub, clog)
}

// readPump discards client messages and ends the subscription when the client goes away.
func readPump(conn *websocket.Conn, sub *sim.Subscription, clog *log.Entry) {
	defer sub.Unsubscribe()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				clog.Warnf("websocket error: %v", err)
			}
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, sub *sim.Subscription, clog *log.Entry) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		sub.Unsubscribe()
		conn.Close()
		clog.Infof("websocket client disconnected, %d dropped snapshots", sub.Dropped())
	}()

	for _, snap := range s.engine.Snapshots() {
		if !sub.Matches(snap.VehicleID) {
			continue
		}
		if err := writeSnapshot(conn, snap); err != nil {
			return
		}
	}

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				clog.Debugf("websocket write error: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap sim.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
