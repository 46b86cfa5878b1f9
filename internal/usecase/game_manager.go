package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/gridduel/tictactoe-backend/internal/apperror"
	"github.com/gridduel/tictactoe-backend/internal/entity"
	"github.com/gridduel/tictactoe-backend/internal/pkg"
	"github.com/gridduel/tictactoe-backend/internal/tictactoe"
)

// maxUpdateRetries bounds the retry-on-conflict loop so two stubborn
// writers can't livelock each other.
const maxUpdateRetries = 3

// maxRoomCodeAttempts bounds room code generation; with 36^6 codes a retry
// is already rare, exhaustion means something is very wrong.
const maxRoomCodeAttempts = 10

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetByRoomCode(ctx context.Context, code string) (*entity.Game, error)
	GetByStatus(ctx context.Context, status string) ([]*entity.Game, error)
	GetByParticipant(ctx context.Context, playerID string) ([]*entity.Game, error)
}

type archiveRepo interface {
	RecordResult(ctx context.Context, game *entity.Game) error
	GetStatsByPlayer(ctx context.Context, playerID string) (*entity.StatsRecord, error)
	GetMatchesByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.MatchRecord, error)
}

// GameManager owns the session lifecycle: create, join, turns, the bot's
// turns, and the exactly-once finishing side effect. All mutations go
// through an optimistic-concurrency loop; conflicts on the same session are
// re-read and re-validated, different sessions never contend.
type GameManager struct {
	logger *slog.Logger

	playerRepo  playerRepo
	gameRepo    gameRepo
	archiveRepo archiveRepo

	bot *tictactoe.Bot
	rnd *rand.Rand
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, archiveRepo archiveRepo, rnd *rand.Rand) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo:  playerRepo,
		gameRepo:    gameRepo,
		archiveRepo: archiveRepo,

		bot: tictactoe.NewBot(rnd),
		rnd: rnd,
	}
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{
			ID:   pkg.GeneratePlayerID(),
			Name: name,
		}

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if name != "" && name != player.Name {
		player.Name = name
		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}
	}

	return player, nil
}

// CreateGame allocates a waiting session for the creator. Room codes are
// generated until the directory accepts one; correctness doesn't depend on
// the code space being large, only the retry does the work.
func (that *GameManager) CreateGame(ctx context.Context, playerID string, withBot bool) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	var game *entity.Game

	for attempt := 0; attempt < maxRoomCodeAttempts; attempt++ {
		game = entity.NewGame(pkg.GenerateGameID(), pkg.GenerateRoomCode(that.rnd), player)

		if withBot {
			botPlayer := &entity.Player{ID: pkg.GenerateBotID(), Name: "Bot"}
			if err = game.AddPlayer(botPlayer); err != nil {
				return nil, fmt.Errorf("failed to seat bot: %w", err)
			}
		}

		err = that.gameRepo.Create(ctx, game)
		if err == nil {
			break
		}
		if !errors.Is(err, apperror.ErrRoomCodeTaken) {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "roomCode", game.RoomCode, "withBot", withBot)

	return game, nil
}

// JoinGame seats the identity in the second slot. The argument is resolved
// as a room code first, then as a game id.
func (that *GameManager) JoinGame(ctx context.Context, roomCodeOrID, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.resolveGame(ctx, roomCodeOrID)
	if err != nil {
		return nil, err
	}

	updated, err := that.mutateGame(ctx, game.ID, func(current *entity.Game) error {
		return current.AddPlayer(player)
	})
	if err != nil {
		return nil, err
	}

	player.GameID = updated.ID
	player.Mark = tictactoe.MarkO
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("player joined game", "gameID", updated.ID, "playerID", player.ID)

	return updated, nil
}

// MakeTurn applies one move for the acting identity, then lets the bot
// answer when the session has one and the game is still running. Both moves
// go through the same validate-then-apply path.
func (that *GameManager) MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error) {
	if gameID == "" {
		player, err := that.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}
		gameID = player.GameID
	}

	game, err := that.mutateGame(ctx, gameID, func(current *entity.Game) error {
		return current.ApplyMove(playerID, cell)
	})
	if err != nil {
		return nil, err
	}

	if game.IsFinished() {
		if err = that.finishGame(ctx, game); err != nil {
			return nil, err
		}
		return game, nil
	}

	if botPlayer := game.BotPlayer(); botPlayer != nil && game.Turn == botPlayer.Mark {
		if game, err = that.playBotTurn(ctx, game.ID, botPlayer); err != nil {
			return nil, err
		}

		if game.IsFinished() {
			if err = that.finishGame(ctx, game); err != nil {
				return nil, err
			}
		}
	}

	return game, nil
}

// ReplayAt projects the board after the first step moves of a session's log.
func (that *GameManager) ReplayAt(ctx context.Context, gameID string, step int) ([9]string, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return [9]string{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game.ReplayAt(step)
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *GameManager) GetGameByRoomCode(ctx context.Context, code string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByRoomCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by room code: %w", err)
	}

	return game, nil
}

// WaitingGames lists joinable sessions for the lobby view.
func (that *GameManager) WaitingGames(ctx context.Context) ([]*entity.Game, error) {
	games, err := that.gameRepo.GetByStatus(ctx, entity.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting games: %w", err)
	}

	return games, nil
}

// PlayerGames lists every session the identity participates in.
func (that *GameManager) PlayerGames(ctx context.Context, playerID string) ([]*entity.Game, error) {
	games, err := that.gameRepo.GetByParticipant(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player games: %w", err)
	}

	return games, nil
}

func (that *GameManager) PlayerStats(ctx context.Context, playerID string) (*entity.StatsRecord, error) {
	stats, err := that.archiveRepo.GetStatsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	return stats, nil
}

func (that *GameManager) PlayerMatches(ctx context.Context, playerID string, limit int) ([]*entity.MatchRecord, error) {
	matches, err := that.archiveRepo.GetMatchesByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get player matches: %w", err)
	}

	return matches, nil
}

// mutateGame is the optimistic-concurrency loop: read, mutate, bump the
// version, commit. A version conflict means someone else won the race; the
// session is re-read and the mutation re-validated against the new state,
// so a lost race against the same cell surfaces as ErrCellOccupied, not as
// a silent double write.
func (that *GameManager) mutateGame(ctx context.Context, id string, mutate func(*entity.Game) error) (*entity.Game, error) {
	var lastErr error

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		game, err := that.gameRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get game by id: %w", err)
		}

		if err = mutate(game); err != nil {
			return nil, err
		}

		game.Version++

		err = that.gameRepo.Update(ctx, game)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, apperror.ErrConcurrentModification) {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		lastErr = err
	}

	return nil, lastErr
}

func (that *GameManager) playBotTurn(ctx context.Context, gameID string, botPlayer *entity.Player) (*entity.Game, error) {
	return that.mutateGame(ctx, gameID, func(current *entity.Game) error {
		cell, err := that.bot.PickCell(current.Board, botPlayer.Mark)
		if err != nil {
			return fmt.Errorf("bot failed to pick a cell: %w", err)
		}

		return current.ApplyMove(botPlayer.ID, cell)
	})
}

// finishGame applies the finishing side effect. The status transition is
// the single trigger point and the archive is idempotent on the game id, so
// a duplicate signal can't attribute a result twice.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) error {
	log := that.logger.With("method", "finishGame", "gameID", game.ID)

	if err := that.archiveRepo.RecordResult(ctx, game); err != nil {
		return fmt.Errorf("failed to archive game result: %w", err)
	}

	// free the players for their next game; the session itself stays as
	// the replay source
	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		record, err := that.playerRepo.GetByID(ctx, player.ID)
		if err != nil {
			log.Error("failed to get player", "playerID", player.ID, "error", err)
			continue
		}

		record.GameID = ""
		record.Mark = ""
		if err = that.playerRepo.CreateOrUpdate(ctx, record); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}

	log.Info("game finished", "winner", game.Winner)

	return nil
}

func (that *GameManager) resolveGame(ctx context.Context, roomCodeOrID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByRoomCode(ctx, roomCodeOrID)
	if err == nil {
		return game, nil
	}
	if !errors.Is(err, apperror.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to resolve room code: %w", err)
	}

	game, err = that.gameRepo.GetByID(ctx, roomCodeOrID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve game: %w", err)
	}

	return game, nil
}
