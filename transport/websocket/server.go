package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type identityVerifier interface {
	Verify(credential string) (string, error)
}

type roomRegistry interface {
	CreateRoom(ctx context.Context, creator string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, identity string) (*entity.Room, error)
	MakeMove(ctx context.Context, roomID, identity string, cell int) (*entity.Room, error)
	ResetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	ListOpenRooms(ctx context.Context) ([]entity.OpenRoom, error)
}

type handlerFunc func(ctx context.Context, session *Session, message *Message) error

// event is one inbound frame; err is set when the frame was not a valid Message.
type event struct {
	session *Session
	message *Message
	err     error
}

// Server is the session gateway. Run owns sessions, subscriptions and every call into the
// room registry, so intents are applied one at a time in arrival order.
type Server struct {
	logger   *slog.Logger
	verifier identityVerifier
	rooms    roomRegistry
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	sessions    map[string]*Session
	subscribers map[string]map[string]*Session // roomID -> sessionID -> session

	register   chan *Session
	unregister chan *Session
	events     chan event
	done       chan struct{}
}

func New(logger *slog.Logger, verifier identityVerifier, rooms roomRegistry, allowedOrigin string) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		verifier: verifier,
		rooms:    rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigin),
		},

		handlers: make(map[string]handlerFunc),

		sessions:    make(map[string]*Session),
		subscribers: make(map[string]map[string]*Session),

		register:   make(chan *Session),
		unregister: make(chan *Session),
		events:     make(chan event),
		done:       make(chan struct{}),
	}

	server.handlers[actionAuthenticate] = server.handleAuthenticate
	server.handlers[actionCreateGame] = server.handleCreateGame
	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionResetGame] = server.handleResetGame

	return server
}

// checkOrigin - requests without an Origin header come from non-browser clients and are allowed.
func checkOrigin(allowedOrigin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
	}
}

// Run - processes connection changes and intents until ctx is canceled, then closes every session.
func (that *Server) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	defer close(that.done)

	for {
		select {
		case session := <-that.register:
			that.sessions[session.ID] = session
			log.Info("client connected", "sessionID", session.ID, "sessions", len(that.sessions))

		case session := <-that.unregister:
			if that.drop(session) {
				log.Info("client disconnected", "sessionID", session.ID, "sessions", len(that.sessions))
			}

		case ev := <-that.events:
			that.dispatch(ctx, ev)

		case <-ctx.Done():
			for _, session := range that.sessions {
				that.drop(session)
			}
			log.Info("websocket server stopped")
			return
		}
	}
}

// ServeHTTP - upgrades the connection to WebSocket and serves it until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	session := newSession(uuid.NewString(), conn)

	select {
	case that.register <- session:
	case <-that.done:
		conn.Close()
		return
	}

	go that.writePump(session)
	that.readPump(session)
}

// submit - forwards ev to the event loop; false once the loop has stopped.
func (that *Server) submit(ev event) bool {
	select {
	case that.events <- ev:
		return true
	case <-that.done:
		return false
	}
}

func (that *Server) leave(session *Session) {
	select {
	case that.unregister <- session:
	case <-that.done:
	}
}

// drop - forgets the session and its subscriptions. Rooms are left as they are.
func (that *Server) drop(session *Session) bool {
	if _, ok := that.sessions[session.ID]; !ok {
		return false
	}

	delete(that.sessions, session.ID)

	for roomID := range session.rooms {
		delete(that.subscribers[roomID], session.ID)
		if len(that.subscribers[roomID]) == 0 {
			delete(that.subscribers, roomID)
		}
	}

	close(session.send)

	return true
}

func (that *Server) subscribe(session *Session, roomID string) {
	if that.subscribers[roomID] == nil {
		that.subscribers[roomID] = make(map[string]*Session)
	}

	that.subscribers[roomID][session.ID] = session
	session.rooms[roomID] = struct{}{}
}
