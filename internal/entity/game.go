package entity

import (
	"fmt"
	"time"

	"github.com/gridduel/tictactoe-backend/internal/apperror"
	"github.com/gridduel/tictactoe-backend/internal/tictactoe"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

const maxPlayers = 2

// Move is one entry of the append-only move log.
type Move struct {
	Mark string    `json:"mark"`
	Cell int       `json:"cell"`
	At   time.Time `json:"at"`
}

// Game is one session from creation to its terminal result. The board, turn
// indicator and status are read and mutated as one unit; Version backs the
// repository's optimistic concurrency check and is bumped once per accepted
// mutation.
type Game struct {
	ID         string    `json:"id"`
	RoomCode   string    `json:"room_code"`
	Board      [9]string `json:"board"`
	Turn       string    `json:"player_turn,omitempty"`
	Status     string    `json:"status"`
	Winner     string    `json:"winner,omitempty"`
	Players    []*Player `json:"players,omitempty"`
	Moves      []Move    `json:"moves,omitempty"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewGame allocates a waiting session with the creator in the first slot.
// The creator always plays X and moves first.
func NewGame(id, roomCode string, creator *Player) *Game {
	creator.Mark = tictactoe.MarkX
	creator.GameID = id

	return &Game{
		ID:        id,
		RoomCode:  roomCode,
		Turn:      tictactoe.MarkX,
		Status:    StatusWaiting,
		Players:   []*Player{creator},
		CreatedAt: time.Now(),
	}
}

// AddPlayer fills the second slot and starts the game.
func (that *Game) AddPlayer(player *Player) error {
	if that.PlayerByID(player.ID) != nil {
		return apperror.ErrDuplicatePlayer
	}

	if !that.IsWaiting() {
		return apperror.ErrGameAlreadyStarted
	}

	if len(that.Players) >= maxPlayers {
		return apperror.ErrGameFull
	}

	player.Mark = tictactoe.MarkO
	player.GameID = that.ID
	that.Players = append(that.Players, player)

	if len(that.Players) == maxPlayers {
		that.Status = StatusPlaying
		that.Turn = tictactoe.MarkX
	}

	return nil
}

// ApplyMove validates a move for the acting identity and, only if every
// check passes, applies exactly one mutation: the cell is marked, the move
// is appended to the log and either the turn flips or the game finishes.
func (that *Game) ApplyMove(playerID string, cell int) error {
	player := that.PlayerByID(playerID)

	if err := that.validateMove(player, cell); err != nil {
		return err
	}

	that.Board[cell] = player.Mark
	that.Moves = append(that.Moves, Move{
		Mark: player.Mark,
		Cell: cell,
		At:   time.Now(),
	})

	switch winner := tictactoe.Winner(that.Board); winner {
	case tictactoe.EmptyCell:
		that.Turn = tictactoe.OpponentOf(player.Mark)
	default:
		that.Winner = winner
		that.Status = StatusFinished
		that.Turn = ""
		that.FinishedAt = time.Now()
	}

	return nil
}

// validateMove rejects without mutating anything. The identity check runs
// first so that a stranger poking at a waiting game gets ErrNotAPlayer, not
// a status error.
func (that *Game) validateMove(player *Player, cell int) error {
	if player == nil {
		return apperror.ErrNotAPlayer
	}

	if !that.IsPlaying() {
		return apperror.ErrGameNotInProgress
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOutOfRange, cell)
	}

	if that.Turn != player.Mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != tictactoe.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// ReplayAt reconstructs the board after the first step moves of the log.
// It is a pure projection and never mutates the session.
func (that *Game) ReplayAt(step int) ([9]string, error) {
	if step < 0 || step > len(that.Moves) {
		return [9]string{}, fmt.Errorf("%w: step %d of %d moves", apperror.ErrCellOutOfRange, step, len(that.Moves))
	}

	var board [9]string
	for _, move := range that.Moves[:step] {
		board[move.Cell] = move.Mark
	}

	return board, nil
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// BotPlayer returns the automated slot, if the session has one.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}
	return nil
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// Duration is meaningful only on a finished session.
func (that *Game) Duration() time.Duration {
	if that.FinishedAt.IsZero() {
		return 0
	}
	return that.FinishedAt.Sub(that.CreatedAt)
}
