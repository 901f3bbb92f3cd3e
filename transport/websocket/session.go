package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Session is the server-side record of one live connection.
// Identity and rooms are only touched by the event loop.
type Session struct {
	ID       string
	Identity string

	rooms map[string]struct{}

	conn *websocket.Conn
	send chan []byte
}

func newSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		ID:    id,
		rooms: make(map[string]struct{}),
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
	}
}

func (that *Session) IsAuthenticated() bool {
	return that.Identity != ""
}

// enqueue - hands data to the write pump without blocking; false when the buffer is full.
func (that *Session) enqueue(data []byte) bool {
	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

// readPump - decodes frames and forwards them to the event loop until the connection fails.
func (that *Server) readPump(session *Session) {
	log := that.logger.With("method", "readPump", "sessionID", session.ID)

	defer func() {
		that.leave(session)
		session.conn.Close()
	}()

	session.conn.SetReadLimit(maxMessageSize)

	if err := session.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
	}

	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
		}

		if !that.submit(event{session: session, message: &message, err: err}) {
			return
		}
	}
}

// writePump - the only writer of session.conn. It exits when the event loop closes session.send.
func (that *Server) writePump(session *Session) {
	log := that.logger.With("method", "writePump", "sessionID", session.ID)

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		session.conn.Close()
	}()

	for {
		select {
		case data, ok := <-session.send:
			if err := session.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
			}

			if !ok {
				_ = session.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := session.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := session.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
			}

			if err := session.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
