package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// inbound actions
const (
	actionAuthenticate = "authenticate"
	actionCreateGame   = "createGame"
	actionJoinGame     = "joinGame"
	actionMakeMove     = "makeMove"
	actionResetGame    = "resetGame"
)

// outbound actions
const (
	actionAuthenticated  = "authenticated"
	actionAvailableGames = "availableGames"
	actionGameCreated    = "gameCreated"
	actionGameUpdated    = "gameUpdated"
	actionError          = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	GameID string `json:"gameId"`
	Index  *int   `json:"index"`
}

type GameCreatedPayload struct {
	GameID string       `json:"gameId"`
	Game   *entity.Room `json:"game"`
}

func encodeMessage(action string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
