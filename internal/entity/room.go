package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Players binds identities to marks. An empty identity means the mark is free.
type Players struct {
	X string `json:"X"`
	O string `json:"O"`
}

// MarshalJSON - a free mark is sent as null.
func (that Players) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[Mark]*string{
		PlayerX: nullable(that.X),
		PlayerO: nullable(that.O),
	})
}

// Of - returns the identity bound to mark.
func (that Players) Of(mark Mark) string {
	switch mark {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return ""
	}
}

func nullable(identity string) *string {
	if identity == "" {
		return nil
	}
	return &identity
}

// Room is one game. All fields are values, so copying a Room copies its whole state.
type Room struct {
	ID      string  `json:"gameId"`
	Board   Board   `json:"board"`
	Turn    Mark    `json:"currentPlayer"`
	Winner  Outcome `json:"winner"`
	Players Players `json:"players"`
	Active  bool    `json:"active"`
}

// OpenRoom is a listing entry for a room waiting for its second player.
type OpenRoom struct {
	GameID  string  `json:"gameId"`
	Players Players `json:"players"`
}

func NewRoom(id, creator string) *Room {
	return &Room{
		ID:      id,
		Turn:    PlayerX,
		Players: Players{X: creator},
	}
}

// Clone - returns an independent copy of the room.
func (that *Room) Clone() *Room {
	clone := *that
	return &clone
}

func (that *Room) Status() string {
	switch {
	case !that.Active:
		return StatusWaiting
	case that.Winner.IsDecided():
		return StatusFinished
	default:
		return StatusActive
	}
}

// IsOpen - reports whether the room can be joined.
func (that *Room) IsOpen() bool {
	return that.Players.O == "" && !that.Active
}

// Join - binds the second mark to identity and starts the game.
func (that *Room) Join(identity string) error {
	if identity == "" {
		return apperror.ErrAuthRequired
	}

	if that.Players.O != "" {
		return apperror.ErrRoomFull
	}

	that.Players.O = identity
	that.Active = true

	return nil
}

// Move - places the mark of the current turn on cell when identity owns that turn.
// Nothing is modified unless every check passes.
func (that *Room) Move(identity string, cell int) error {
	if identity == "" {
		return apperror.ErrAuthRequired
	}

	if !that.Active || that.Winner.IsDecided() {
		return apperror.ErrNotActive
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	if that.Players.Of(that.Turn) != identity {
		return apperror.ErrNotYourTurn
	}

	that.Board[cell] = that.Turn

	if outcome := Evaluate(that.Board); outcome.IsDecided() {
		that.Winner = outcome
		that.Turn = EmptyCell
		return nil
	}

	that.Turn = that.Turn.Other()

	return nil
}

// Reset - clears the board and restarts the game with the same players.
func (that *Room) Reset() {
	that.Board = Board{}
	that.Winner = OutcomeNone
	that.Turn = PlayerX
	that.Active = true
}
