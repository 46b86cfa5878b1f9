package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	Connection *sql.DB
}

func New(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

// Init creates the archive tables: cumulative per-player counters and the
// immutable per-match records with their move logs.
func (that *Storage) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS player_stats (
			player_id   TEXT PRIMARY KEY,
			wins        INTEGER NOT NULL DEFAULT 0,
			losses      INTEGER NOT NULL DEFAULT 0,
			draws       INTEGER NOT NULL DEFAULT 0,
			total_games INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			game_id     TEXT PRIMARY KEY,
			winner      TEXT NOT NULL,
			moves       TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS match_players (
			game_id   TEXT NOT NULL REFERENCES matches(game_id),
			player_id TEXT NOT NULL,
			name      TEXT NOT NULL,
			mark      TEXT NOT NULL,
			outcome   TEXT NOT NULL,
			PRIMARY KEY (game_id, player_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_players_player ON match_players(player_id)`,
	}

	for _, query := range queries {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *Storage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
