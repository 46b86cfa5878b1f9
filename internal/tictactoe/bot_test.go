package tictactoe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot() *Bot {
	return NewBot(rand.New(rand.NewSource(1)))
}

func TestBot_PickCell(t *testing.T) {
	t.Run("Completes its own triple before anything else", func(t *testing.T) {
		// Given: O can win at cell 5 and X threatens the top row
		board := [9]string{
			MarkX, MarkX, EmptyCell,
			MarkO, MarkO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: the bot picks a cell for O
		cell, err := newTestBot().PickCell(board, MarkO)

		// Then: it takes its own winning cell, not the block
		require.NoError(t, err)
		assert.Equal(t, 5, cell)
	})

	t.Run("Blocks the opponent's winning cell", func(t *testing.T) {
		// Given: X holds cells 0 and 1 and would win at 2
		board := [9]string{
			MarkX, MarkX, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: the bot picks a cell for O
		cell, err := newTestBot().PickCell(board, MarkO)

		// Then: it blocks at index 2
		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Takes the center when no triple is in play", func(t *testing.T) {
		// Given: only one corner is taken
		board := [9]string{
			MarkX, EmptyCell, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: the bot picks a cell for O
		cell, err := newTestBot().PickCell(board, MarkO)

		// Then: it takes the center
		require.NoError(t, err)
		assert.Equal(t, CenterCell, cell)
	})

	t.Run("Takes an empty corner when the center is taken", func(t *testing.T) {
		// Given: the center is occupied and no triple is threatened
		board := [9]string{
			EmptyCell, EmptyCell, EmptyCell,
			EmptyCell, MarkX, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: the bot picks a cell for O
		cell, err := newTestBot().PickCell(board, MarkO)

		// Then: the chosen cell is one of the corners
		require.NoError(t, err)
		assert.Contains(t, []int{0, 2, 6, 8}, cell)
	})

	t.Run("Falls back to a random empty edge cell", func(t *testing.T) {
		// Given: center and corners taken, no open triple for either mark
		board := [9]string{
			MarkX, MarkO, MarkX,
			EmptyCell, MarkX, EmptyCell,
			MarkO, MarkX, MarkO,
		}

		// When: the bot picks a cell for O
		cell, err := newTestBot().PickCell(board, MarkO)

		// Then: one of the remaining edge cells is chosen
		require.NoError(t, err)
		assert.Contains(t, []int{3, 5}, cell)
	})

	t.Run("Errors on a full board", func(t *testing.T) {
		board := [9]string{
			MarkX, MarkO, MarkX,
			MarkO, MarkX, MarkO,
			MarkO, MarkX, MarkO,
		}

		_, err := newTestBot().PickCell(board, MarkO)

		require.ErrorIs(t, err, ErrNoAvailableMoves)
	})
}
