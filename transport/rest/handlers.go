package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gridduel/tictactoe-backend/internal/apperror"
	"github.com/gridduel/tictactoe-backend/internal/entity"
)

// identityHeader carries the opaque identity issued by the external
// identity provider; requests are trusted as already authenticated.
const identityHeader = "X-Player-ID"

const defaultMatchLimit = 20

type gameManager interface {
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	GetGameByRoomCode(ctx context.Context, code string) (*entity.Game, error)
	ReplayAt(ctx context.Context, gameID string, step int) ([9]string, error)
	WaitingGames(ctx context.Context) ([]*entity.Game, error)
	PlayerGames(ctx context.Context, playerID string) ([]*entity.Game, error)
	PlayerStats(ctx context.Context, playerID string) (*entity.StatsRecord, error)
	PlayerMatches(ctx context.Context, playerID string, limit int) ([]*entity.MatchRecord, error)
}

type handlers struct {
	logger  *slog.Logger
	manager gameManager
}

func newHandlers(logger *slog.Logger, manager gameManager) *handlers {
	return &handlers{
		logger:  logger,
		manager: manager,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (that *handlers) GameByID(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, game)
}

func (that *handlers) GameByRoomCode(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.GetGameByRoomCode(r.Context(), r.PathValue("code"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, game)
}

// Replay returns the board after the first {step} moves of the session's
// log, for step-through review.
func (that *handlers) Replay(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(r.URL.Query().Get("step"))
	if err != nil {
		http.Error(w, "step must be an integer", http.StatusBadRequest)
		return
	}

	board, err := that.manager.ReplayAt(r.Context(), r.PathValue("id"), step)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, map[string]any{"step": step, "board": board})
}

func (that *handlers) WaitingGames(w http.ResponseWriter, r *http.Request) {
	games, err := that.manager.WaitingGames(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, games)
}

func (that *handlers) MyGames(w http.ResponseWriter, r *http.Request) {
	playerID, ok := that.identity(w, r)
	if !ok {
		return
	}

	games, err := that.manager.PlayerGames(r.Context(), playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, games)
}

func (that *handlers) MyStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := that.identity(w, r)
	if !ok {
		return
	}

	stats, err := that.manager.PlayerStats(r.Context(), playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, stats)
}

func (that *handlers) MyMatches(w http.ResponseWriter, r *http.Request) {
	playerID, ok := that.identity(w, r)
	if !ok {
		return
	}

	matches, err := that.manager.PlayerMatches(r.Context(), playerID, defaultMatchLimit)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, matches)
}

func (that *handlers) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	playerID := r.Header.Get(identityHeader)
	if playerID == "" {
		http.Error(w, apperror.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return "", false
	}

	return playerID, true
}

func (that *handlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperror.ErrCellOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		that.logger.Error("request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
