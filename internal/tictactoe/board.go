package tictactoe

const (
	MarkX = "X"
	MarkO = "O"
	// MarkTie is the winner value recorded for a draw.
	MarkTie = "-"

	EmptyCell = ""

	BoardSize = 9
	// CenterCell is the strongest opening cell on a 3x3 board.
	CenterCell = 4
)

// WinCombos lists the 8 winning triples: 3 rows, 3 columns, 2 diagonals.
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

// Corners are checked by the bot after the center.
var Corners = [4]int{0, 2, 6, 8}

// Winner evaluates a board after a move has been placed. It returns the
// winning mark, MarkTie when the board is full with no winner, or EmptyCell
// while the game can still continue. It never mutates the board.
func Winner(board [9]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return MarkTie
}

// OpponentOf returns the other mark.
func OpponentOf(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
