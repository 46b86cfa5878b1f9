package pkg

import (
	"math/rand"

	"github.com/google/uuid"
)

// RoomCodeLength is the length of the human-shareable code players type in
// to join a game.
const RoomCodeLength = 6

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRoomCode produces an uppercase alphanumeric room code from the
// injected random source. Uniqueness is enforced by the caller against the
// session directory, not here.
func GenerateRoomCode(rnd *rand.Rand) string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rnd.Intn(len(roomCodeAlphabet))]
	}

	return string(code)
}

func GenerateGameID() string {
	return uuid.NewString()
}

func GeneratePlayerID() string {
	return uuid.NewString()
}

func GenerateBotID() string {
	return "bot:" + uuid.NewString()
}
