package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridduel/tictactoe-backend/internal/entity"
	"github.com/gridduel/tictactoe-backend/internal/repository/storage/sqlite"
	"github.com/gridduel/tictactoe-backend/internal/tictactoe"
)

func newArchive(t *testing.T) (context.Context, ArchiveRepository) {
	t.Helper()

	ctx := context.Background()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	require.NoError(t, st.Init(ctx))

	return ctx, NewArchiveRepository(st.Connection)
}

func finishedGame(id, winner string) *entity.Game {
	now := time.Now()

	return &entity.Game{
		ID:       id,
		RoomCode: "ABC123",
		Status:   entity.StatusFinished,
		Winner:   winner,
		Players: []*entity.Player{
			{ID: "alice", Name: "Alice", Mark: tictactoe.MarkX},
			{ID: "bob", Name: "Bob", Mark: tictactoe.MarkO},
		},
		Moves: []entity.Move{
			{Mark: tictactoe.MarkX, Cell: 0, At: now.Add(-time.Minute)},
			{Mark: tictactoe.MarkO, Cell: 3, At: now.Add(-30 * time.Second)},
		},
		CreatedAt:  now.Add(-2 * time.Minute),
		FinishedAt: now,
	}
}

func TestArchiveRepository_RecordResult(t *testing.T) {
	t.Run("Win credits the winner and debits the loser", func(t *testing.T) {
		ctx, archive := newArchive(t)

		// Given: a finished game won by X
		game := finishedGame("game-1", tictactoe.MarkX)

		// When: the result is recorded
		require.NoError(t, archive.RecordResult(ctx, game))

		// Then: counters reflect one win and one loss
		aliceStats, err := archive.GetStatsByPlayer(ctx, "alice")
		require.NoError(t, err)
		assert.EqualValues(t, 1, aliceStats.Wins)
		assert.EqualValues(t, 0, aliceStats.Losses)
		assert.EqualValues(t, 1, aliceStats.TotalGames)

		bobStats, err := archive.GetStatsByPlayer(ctx, "bob")
		require.NoError(t, err)
		assert.EqualValues(t, 1, bobStats.Losses)
		assert.EqualValues(t, 1, bobStats.TotalGames)
	})

	t.Run("Draw credits both players", func(t *testing.T) {
		ctx, archive := newArchive(t)

		require.NoError(t, archive.RecordResult(ctx, finishedGame("game-1", tictactoe.MarkTie)))

		for _, playerID := range []string{"alice", "bob"} {
			stats, err := archive.GetStatsByPlayer(ctx, playerID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, stats.Draws)
			assert.EqualValues(t, 1, stats.TotalGames)
		}
	})

	t.Run("Reapplying the same game is a no-op", func(t *testing.T) {
		ctx, archive := newArchive(t)

		// Given: a recorded result
		game := finishedGame("game-1", tictactoe.MarkX)
		require.NoError(t, archive.RecordResult(ctx, game))

		// When: the finishing side effect is signalled again
		require.NoError(t, archive.RecordResult(ctx, game))

		// Then: counters did not move a second time
		aliceStats, err := archive.GetStatsByPlayer(ctx, "alice")
		require.NoError(t, err)
		assert.EqualValues(t, 1, aliceStats.Wins)
		assert.EqualValues(t, 1, aliceStats.TotalGames)

		matches, err := archive.GetMatchesByPlayer(ctx, "alice", 20)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("Counters accumulate across games", func(t *testing.T) {
		ctx, archive := newArchive(t)

		require.NoError(t, archive.RecordResult(ctx, finishedGame("game-1", tictactoe.MarkX)))
		require.NoError(t, archive.RecordResult(ctx, finishedGame("game-2", tictactoe.MarkO)))
		require.NoError(t, archive.RecordResult(ctx, finishedGame("game-3", tictactoe.MarkTie)))

		aliceStats, err := archive.GetStatsByPlayer(ctx, "alice")
		require.NoError(t, err)
		assert.EqualValues(t, 1, aliceStats.Wins)
		assert.EqualValues(t, 1, aliceStats.Losses)
		assert.EqualValues(t, 1, aliceStats.Draws)
		assert.EqualValues(t, 3, aliceStats.TotalGames)
	})

	t.Run("Rejects an unfinished game", func(t *testing.T) {
		ctx, archive := newArchive(t)

		game := finishedGame("game-1", tictactoe.MarkX)
		game.Status = entity.StatusPlaying

		require.Error(t, archive.RecordResult(ctx, game))
	})

	t.Run("Unknown player has all-zero stats", func(t *testing.T) {
		ctx, archive := newArchive(t)

		stats, err := archive.GetStatsByPlayer(ctx, "nobody")

		require.NoError(t, err)
		assert.EqualValues(t, 0, stats.TotalGames)
	})
}

func TestArchiveRepository_GetMatchesByPlayer(t *testing.T) {
	ctx, archive := newArchive(t)

	// Given: a recorded match
	game := finishedGame("game-1", tictactoe.MarkX)
	require.NoError(t, archive.RecordResult(ctx, game))

	// When: the player's history is fetched
	matches, err := archive.GetMatchesByPlayer(ctx, "bob", 20)

	// Then: the record carries outcomes, the move log copy and the duration
	require.NoError(t, err)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.Equal(t, "game-1", match.GameID)
	assert.Equal(t, tictactoe.MarkX, match.Winner)
	assert.Len(t, match.Moves, 2)
	assert.Equal(t, 2*time.Minute, match.Duration)

	outcomes := make(map[string]string)
	for _, participant := range match.Participants {
		outcomes[participant.PlayerID] = participant.Outcome
	}
	assert.Equal(t, entity.OutcomeWin, outcomes["alice"])
	assert.Equal(t, entity.OutcomeLoss, outcomes["bob"])
}
