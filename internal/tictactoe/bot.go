package tictactoe

import (
	"errors"
	"math/rand"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Bot picks cells for an automated player. The random source is injected so
// tests can seed it and assert a deterministic choice.
type Bot struct {
	rnd *rand.Rand
}

func NewBot(rnd *rand.Rand) *Bot {
	return &Bot{rnd: rnd}
}

// PickCell chooses an empty cell for the given mark, in fixed priority:
// complete its own triple, block the opponent's, take the center, take a
// random empty corner, then any random empty cell. This is a heuristic, not
// optimal play.
func (that *Bot) PickCell(board [9]string, mark string) (int, error) {
	if cell, ok := findWinningCell(board, mark); ok {
		return cell, nil
	}

	if cell, ok := findWinningCell(board, OpponentOf(mark)); ok {
		return cell, nil
	}

	if board[CenterCell] == EmptyCell {
		return CenterCell, nil
	}

	emptyCorners := make([]int, 0, len(Corners))
	for _, corner := range Corners {
		if board[corner] == EmptyCell {
			emptyCorners = append(emptyCorners, corner)
		}
	}
	if len(emptyCorners) > 0 {
		return emptyCorners[that.rnd.Intn(len(emptyCorners))], nil
	}

	emptyCells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == EmptyCell {
			emptyCells = append(emptyCells, i)
		}
	}
	if len(emptyCells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return emptyCells[that.rnd.Intn(len(emptyCells))], nil
}

// findWinningCell returns the empty cell that would complete a triple for
// the given mark, if one exists.
func findWinningCell(board [9]string, mark string) (int, bool) {
	for _, combo := range WinCombos {
		marked := 0
		empty := -1

		for _, idx := range combo {
			switch board[idx] {
			case mark:
				marked++
			case EmptyCell:
				empty = idx
			}
		}

		if marked == 2 && empty >= 0 {
			return empty, true
		}
	}

	return 0, false
}
