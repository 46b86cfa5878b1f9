package entity

import "strings"

// Player is both the identity record stored in the player repository and a
// slot inside a game. A slot binds one identity to one mark for the
// lifetime of the session.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

func (that *Player) IsBot() bool {
	return strings.HasPrefix(that.ID, "bot:")
}
