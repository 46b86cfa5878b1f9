package entity

import "time"

const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeDraw = "draw"
)

// StatsRecord holds a player's cumulative counters. TotalGames always
// equals Wins+Losses+Draws; each finished session contributes exactly once.
type StatsRecord struct {
	PlayerID   string `json:"player_id"`
	Wins       int64  `json:"wins"`
	Losses     int64  `json:"losses"`
	Draws      int64  `json:"draws"`
	TotalGames int64  `json:"total_games"`
}

// MatchParticipant is one player's side of an archived match.
type MatchParticipant struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Mark     string `json:"mark"`
	Outcome  string `json:"outcome"`
}

// MatchRecord is the immutable archive entry created once, when a session
// finishes. The move log is copied so the match can be replayed after the
// live session key expires.
type MatchRecord struct {
	GameID       string             `json:"game_id"`
	Participants []MatchParticipant `json:"participants"`
	Winner       string             `json:"winner"`
	Moves        []Move             `json:"moves"`
	Duration     time.Duration      `json:"duration"`
	FinishedAt   time.Time          `json:"finished_at"`
}

// OutcomeFor maps a slot's mark to its outcome given the session winner.
func OutcomeFor(mark, winner string) string {
	switch winner {
	case mark:
		return OutcomeWin
	case "", "-":
		return OutcomeDraw
	default:
		return OutcomeLoss
	}
}
