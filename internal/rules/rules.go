package rules

import (
	"encoding/json"

	"github.com/parlorgames/backend/internal/protocol"
)

// Seat assigns one participant a color at the board, in seating order.
type Seat struct {
	Handle string
	Color  protocol.PlayerColor
	Kind   protocol.PlayerType
}

// Turn names the human player who must move next and their legal moves.
type Turn struct {
	Handle string
	Moves  []protocol.GameMove
}

// Result is the outcome of executing one move, after any server-managed
// players have taken their own turns.
type Result struct {
	Completed bool
	Comment   string
	NextTurn  *Turn
}

// Engine runs the rules of one game. Implementations play turns for
// programmatic seats internally; the engine only ever reports a human
// seat as pending.
type Engine interface {
	// Start seats the participants and deals the first turn.
	Start(players int, seats []Seat) error

	// PlayerView renders the board as seen by one participant.
	PlayerView(handle string) (json.RawMessage, error)

	// LegalMoves lists the moves currently on offer for a participant.
	// The result is empty unless a move is pending for that participant.
	LegalMoves(handle string) []protocol.GameMove

	// IsMovePending reports whether the participant must move now.
	IsMovePending(handle string) bool

	// ExecuteMove applies one of the pending moves.
	ExecuteMove(handle string, moveID string) (*Result, error)
}

// Factory creates a fresh engine for each started game.
type Factory func() Engine
