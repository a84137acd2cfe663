package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// inbound is what clients send: join a room or publish into one.
type inbound struct {
	Action  string `json:"action"`
	Room    string `json:"room"`
	Content string `json:"content"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

// ServeConn bridges one websocket connection to the hub and blocks until the
// connection goes away. userID is the identity bound at handshake time, nil
// for anonymous connections.
func ServeConn(h *Hub, conn *websocket.Conn, userID *string) {
	sess := h.Connect(userID)
	defer h.Disconnect(sess)

	go writePump(conn, sess)
	readPump(h, conn, sess)
}

func readPump(h *Hub, conn *websocket.Conn, sess *Session) {
	defer conn.Close()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}

		switch in.Action {
		case "join":
			h.Join(sess, in.Room)
		case "publish":
			h.Publish(sess, in.Room, in.Content)
		}
	}
}

func writePump(conn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sess.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
