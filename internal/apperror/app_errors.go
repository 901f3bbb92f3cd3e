package apperror

import "errors"

var (
	ErrAuthInvalid  = errors.New("credential failed verification")
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("game not found")
	ErrRoomFull     = errors.New("game already has two players")
	ErrNotActive    = errors.New("game is not active or already finished")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrInvalidCell  = errors.New("invalid cell index")

	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownAction  = errors.New("unknown action")
)

const reasonInternal = "Internal error"

// reasons maps every client-visible failure kind to the text sent in an error notification.
var reasons = []struct {
	err    error
	reason string
}{
	{ErrAuthInvalid, "Authentication failed"},
	{ErrAuthRequired, "Authentication required"},
	{ErrNotFound, "Game not found"},
	{ErrRoomFull, "Game already has two players"},
	{ErrNotActive, "Game is not active or already finished"},
	{ErrCellOccupied, "Cell already occupied"},
	{ErrNotYourTurn, "Not your turn"},
	{ErrInvalidCell, "Invalid cell index"},
	{ErrInvalidPayload, "Invalid payload"},
	{ErrUnknownAction, "Unknown action"},
}

// Reason - returns the client-facing reason for err. Errors outside the taxonomy are reported as internal.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}

	return reasonInternal
}
