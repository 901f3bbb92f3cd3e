package entity

import "encoding/json"

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// Other - returns the opposing mark.
func (that Mark) Other() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Board is row-major, cell 0 is top-left.
type Board [9]Mark

// Outcome is empty while the game is undecided, a mark when that mark won, or OutcomeDraw.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeDraw Outcome = "draw"
)

// MarshalJSON - an undecided outcome is sent as null.
func (that Outcome) MarshalJSON() ([]byte, error) {
	if that == OutcomeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(that))
}

func (that Outcome) IsDecided() bool {
	return that != OutcomeNone
}

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - returns the outcome of the board. Lines are checked in WinCombos order.
func Evaluate(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome(a)
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == EmptyCell {
			return OutcomeNone
		}
	}

	return OutcomeDraw
}
