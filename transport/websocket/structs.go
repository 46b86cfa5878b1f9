package websocket

import (
	"encoding/json"

	"github.com/gridduel/tictactoe-backend/internal/entity"
)

// Message is one WebSocket exchange: an action name plus its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player   *entity.Player `json:"player,omitempty"`
	Game     *entity.Game   `json:"game,omitempty"`
	RoomCode string         `json:"room_code,omitempty"`
	Cell     *int           `json:"cell,omitempty"`
	WithBot  bool           `json:"with_bot,omitempty"`
	Error    string         `json:"error,omitempty"`
}
