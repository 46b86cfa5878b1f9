package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gridduel/tictactoe-backend/internal/entity"
)

// ArchiveRepository applies the finishing side effect of a session: the
// match record and both players' counters are written in one transaction,
// keyed on the game id so reapplying for an already-archived session is a
// no-op.
type ArchiveRepository interface {
	RecordResult(ctx context.Context, game *entity.Game) error
	GetStatsByPlayer(ctx context.Context, playerID string) (*entity.StatsRecord, error)
	GetMatchesByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.MatchRecord, error)
}

type dbArchive struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &dbArchive{
		conn: conn,
	}
}

func (that *dbArchive) RecordResult(ctx context.Context, game *entity.Game) error {
	if !game.IsFinished() {
		return fmt.Errorf("can't archive game %s: not finished", game.ID)
	}

	movesJSON, err := json.Marshal(game.Moves)
	if err != nil {
		return fmt.Errorf("can't marshal move log: %w", err)
	}

	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint: errcheck // rollback after commit is a no-op

	// The primary key on game_id is the idempotency marker: if the row is
	// already there, the stats were applied too, so skip everything.
	result, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO matches (game_id, winner, moves, duration_ms, finished_at) VALUES (?, ?, ?, ?, ?)`,
		game.ID, game.Winner, string(movesJSON), game.Duration().Milliseconds(), game.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("can't insert match: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't read rows affected: %w", err)
	}

	if inserted == 0 {
		return nil
	}

	for _, player := range game.Players {
		outcome := entity.OutcomeFor(player.Mark, game.Winner)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO match_players (game_id, player_id, name, mark, outcome) VALUES (?, ?, ?, ?, ?)`,
			game.ID, player.ID, player.Name, player.Mark, outcome,
		)
		if err != nil {
			return fmt.Errorf("can't insert match player: %w", err)
		}

		// bots carry no persistent identity, so they get no counters
		if player.IsBot() {
			continue
		}

		wins, losses, draws := 0, 0, 0
		switch outcome {
		case entity.OutcomeWin:
			wins = 1
		case entity.OutcomeLoss:
			losses = 1
		case entity.OutcomeDraw:
			draws = 1
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO player_stats (player_id, wins, losses, draws, total_games) VALUES (?, ?, ?, ?, 1)
			 ON CONFLICT(player_id) DO UPDATE SET
				wins = wins + excluded.wins,
				losses = losses + excluded.losses,
				draws = draws + excluded.draws,
				total_games = total_games + 1`,
			player.ID, wins, losses, draws,
		)
		if err != nil {
			return fmt.Errorf("can't update player stats: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit archive transaction: %w", err)
	}

	return nil
}

func (that *dbArchive) GetStatsByPlayer(ctx context.Context, playerID string) (*entity.StatsRecord, error) {
	stats := &entity.StatsRecord{PlayerID: playerID}

	err := that.conn.QueryRowContext(ctx,
		`SELECT wins, losses, draws, total_games FROM player_stats WHERE player_id = ?`,
		playerID,
	).Scan(&stats.Wins, &stats.Losses, &stats.Draws, &stats.TotalGames)

	// a player with no finished games simply has all-zero counters
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't find stats: %w", err)
	}

	return stats, nil
}

func (that *dbArchive) GetMatchesByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.MatchRecord, error) {
	rows, err := that.conn.QueryContext(ctx,
		`SELECT m.game_id, m.winner, m.moves, m.duration_ms, m.finished_at
		 FROM matches m
		 JOIN match_players mp ON mp.game_id = m.game_id
		 WHERE mp.player_id = ?
		 ORDER BY m.finished_at DESC
		 LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("can't query matches: %w", err)
	}
	defer rows.Close()

	var matches []*entity.MatchRecord

	for rows.Next() {
		var (
			match      entity.MatchRecord
			movesJSON  string
			durationMS int64
		)

		if err = rows.Scan(&match.GameID, &match.Winner, &movesJSON, &durationMS, &match.FinishedAt); err != nil {
			return nil, fmt.Errorf("can't scan match: %w", err)
		}

		if err = json.Unmarshal([]byte(movesJSON), &match.Moves); err != nil {
			return nil, fmt.Errorf("can't unmarshal move log: %w", err)
		}

		match.Duration = time.Duration(durationMS) * time.Millisecond

		if match.Participants, err = that.matchParticipants(ctx, match.GameID); err != nil {
			return nil, err
		}

		matches = append(matches, &match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate matches: %w", err)
	}

	return matches, nil
}

func (that *dbArchive) matchParticipants(ctx context.Context, gameID string) ([]entity.MatchParticipant, error) {
	rows, err := that.conn.QueryContext(ctx,
		`SELECT player_id, name, mark, outcome FROM match_players WHERE game_id = ?`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("can't query match players: %w", err)
	}
	defer rows.Close()

	var participants []entity.MatchParticipant

	for rows.Next() {
		var participant entity.MatchParticipant
		if err = rows.Scan(&participant.PlayerID, &participant.Name, &participant.Mark, &participant.Outcome); err != nil {
			return nil, fmt.Errorf("can't scan match player: %w", err)
		}
		participants = append(participants, participant)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate match players: %w", err)
	}

	return participants, nil
}
