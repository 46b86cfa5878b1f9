package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridduel/tictactoe-backend/internal/entity"
	"github.com/gridduel/tictactoe-backend/testing/suite"
)

func TestPlayerRepository(t *testing.T) {
	t.Run("CreateOrUpdate_And_GetByID", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a player record
		player := &entity.Player{ID: "alice", Name: "Alice", GameID: "game-1"}

		// When: the record is stored and fetched back
		err := playerRepo.CreateOrUpdate(ctx, player)
		require.NoError(t, err)

		retrieved, err := playerRepo.GetByID(ctx, "alice")

		// Then: the stored fields survive the round trip
		require.NoError(t, err)
		assert.Equal(t, "Alice", retrieved.Name)
		assert.Equal(t, "game-1", retrieved.GameID)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		_, err := playerRepo.GetByID(ctx, "nobody")

		require.ErrorIs(t, err, ErrPlayerNotFound)
	})
}
