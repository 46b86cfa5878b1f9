package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gridduel/tictactoe-backend/internal/apperror"
	"github.com/gridduel/tictactoe-backend/internal/entity"
)

// GameRepository is the session directory: point lookup by id, lookup by
// room code, and the two secondary indexes (status, participant) the lobby
// and history views need.
type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetByRoomCode(ctx context.Context, code string) (*entity.Game, error)
	GetByStatus(ctx context.Context, status string) ([]*entity.Game, error)
	GetByParticipant(ctx context.Context, playerID string) ([]*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func roomCodeKey(code string) string {
	return "roomcode:" + code
}

func statusKey(status string) string {
	return "games:status:" + status
}

func participantKey(playerID string) string {
	return "games:player:" + playerID
}

// Create stores a fresh session. The room code index entry is reserved with
// SETNX first, so two sessions can never share a code; the caller retries
// with a new code on ErrRoomCodeTaken.
func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	reserved, err := that.client.SetNX(ctx, roomCodeKey(game.RoomCode), game.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve room code: %w", err)
	}

	if !reserved {
		return fmt.Errorf("%w: %s", apperror.ErrRoomCodeTaken, game.RoomCode)
	}

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
		pipe.SAdd(ctx, statusKey(game.Status), game.ID)
		for _, player := range game.Players {
			if player.IsBot() {
				continue
			}
			pipe.SAdd(ctx, participantKey(player.ID), game.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store game: %w", err)
	}

	return nil
}

// Update commits a mutation computed from Version-1. The stored version is
// re-read under WATCH; if another writer got there first the transaction is
// rejected with ErrConcurrentModification and nothing is written.
func (that *dbGame) Update(ctx context.Context, game *entity.Game) error {
	key := gameKey(game.ID)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get game: %w", err)
		}

		var stored entity.Game
		if err = json.Unmarshal([]byte(response), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if stored.Version != game.Version-1 {
			return fmt.Errorf("%w: stored version %d, expected %d", apperror.ErrConcurrentModification, stored.Version, game.Version-1)
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, 0)

			if stored.Status != game.Status {
				pipe.SRem(ctx, statusKey(stored.Status), game.ID)
				pipe.SAdd(ctx, statusKey(game.Status), game.ID)
			}

			for _, player := range game.Players {
				if player.IsBot() {
					continue
				}
				pipe.SAdd(ctx, participantKey(player.ID), game.ID)
			}

			// room codes are unique among non-finished sessions only
			if game.IsFinished() {
				pipe.Del(ctx, roomCodeKey(game.RoomCode))
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to commit game update: %w", err)
		}

		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: transaction aborted", apperror.ErrConcurrentModification)
	}

	return err
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) GetByRoomCode(ctx context.Context, code string) (*entity.Game, error) {
	id, err := that.client.Get(ctx, roomCodeKey(code)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to resolve room code: %w", err)
	}

	return that.GetByID(ctx, id)
}

func (that *dbGame) GetByStatus(ctx context.Context, status string) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, statusKey(status)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games by status: %w", err)
	}

	return that.getAll(ctx, ids)
}

func (that *dbGame) GetByParticipant(ctx context.Context, playerID string) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, participantKey(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games by participant: %w", err)
	}

	return that.getAll(ctx, ids)
}

func (that *dbGame) getAll(ctx context.Context, ids []string) ([]*entity.Game, error) {
	games := make([]*entity.Game, 0, len(ids))

	for _, id := range ids {
		game, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrGameNotFound) {
			// index entry outlived the game key
			continue
		}
		if err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	return games, nil
}
