package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridduel/tictactoe-backend/internal/entity"
)

type gameManager interface {
	GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error)
	CreateGame(ctx context.Context, playerID string, withBot bool) (*entity.Game, error)
	JoinGame(ctx context.Context, roomCodeOrID, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
}

// client wraps a connection with a write lock; broadcasts and direct
// responses may race on the same socket.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (that *client) send(msg *Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// session is one connection's state; the player id is bound by the connect
// action and required by everything else.
type session struct {
	client   *client
	playerID string
}

// Server pushes game state to both players on every accepted mutation, so
// clients render server state instead of re-deriving win or turn logic.
type Server struct {
	logger  *slog.Logger
	manager gameManager

	upgrader websocket.Upgrader

	connections      map[string]*client
	connectionsMutex sync.RWMutex

	handlers map[string]func(ctx context.Context, sess *session, msg *Message) error
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		connections: make(map[string]*client),
		handlers:    make(map[string]func(context.Context, *session, *Message) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:state"] = server.handleGameState

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sess := &session{client: &client{conn: conn}}

	defer func() {
		that.unregister(sess)
		conn.Close()
	}()

	log.Info("WebSocket connection established")

	that.readLoop(ctx, sess)
}

func (that *Server) readLoop(ctx context.Context, sess *session) {
	log := that.logger.With("method", "readLoop")

	for {
		var message Message
		if err := sess.client.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection closed unexpectedly", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			_ = that.sendError(sess, message.Action, "unknown action")
			continue
		}

		if err := handler(ctx, sess, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(playerID string, c *client) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = c
	that.connectionsMutex.Unlock()
}

func (that *Server) unregister(sess *session) {
	if sess.playerID == "" {
		return
	}

	that.connectionsMutex.Lock()
	if that.connections[sess.playerID] == sess.client {
		delete(that.connections, sess.playerID)
	}
	that.connectionsMutex.Unlock()

	that.logger.Info("player disconnected", "playerID", sess.playerID)
}

// broadcastGame pushes the updated game to every seated player that has a
// live connection.
func (that *Server) broadcastGame(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcastGame", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		that.connectionsMutex.RLock()
		c, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		msg, err := newMessage(action, Payload{Player: player, Game: game})
		if err != nil {
			log.Error("failed to build message", "error", err)
			continue
		}

		if err = c.send(msg); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

func (that *Server) sendPayload(sess *session, action string, payload Payload) error {
	msg, err := newMessage(action, payload)
	if err != nil {
		return err
	}

	return sess.client.send(msg)
}

func (that *Server) sendError(sess *session, action, errorMsg string) error {
	return that.sendPayload(sess, action, Payload{Error: errorMsg})
}

func newMessage(action string, payload Payload) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return &Message{Action: action, Payload: raw}, nil
}
