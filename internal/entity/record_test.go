package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridduel/tictactoe-backend/internal/tictactoe"
)

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, OutcomeWin, OutcomeFor(tictactoe.MarkX, tictactoe.MarkX))
	assert.Equal(t, OutcomeLoss, OutcomeFor(tictactoe.MarkO, tictactoe.MarkX))
	assert.Equal(t, OutcomeDraw, OutcomeFor(tictactoe.MarkX, tictactoe.MarkTie))
	assert.Equal(t, OutcomeDraw, OutcomeFor(tictactoe.MarkO, tictactoe.MarkTie))
}
