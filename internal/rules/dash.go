package rules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/parlorgames/backend/internal/protocol"
)

// trackLength is the number of squares between start and finish.
const trackLength = 24

// DashEngine plays a simple race. Each turn the mover is offered a
// handful of step counts and advances by the one they pick; the first
// seat past the final square wins. Programmatic seats always take the
// first move on offer.
type DashEngine struct {
	rng       *rand.Rand
	seats     []Seat
	positions map[string]int
	turn      int
	started   bool
	finished  bool
	winner    string
	moveSeq   int
	steps     map[string]int
	moves     []protocol.GameMove
}

// NewDashEngine builds an engine whose move offers are drawn from the seed.
func NewDashEngine(seed int64) *DashEngine {
	return &DashEngine{rng: rand.New(rand.NewSource(seed))}
}

// DefaultFactory seeds each new game from the clock.
func DefaultFactory() Factory {
	return func() Engine {
		return NewDashEngine(time.Now().UnixNano())
	}
}

// SeededFactory produces deterministic engines, one derived seed per game.
func SeededFactory(seed int64) Factory {
	var game int64
	return func() Engine {
		game++
		return NewDashEngine(seed + game)
	}
}

func (e *DashEngine) Start(players int, seats []Seat) error {
	if e.started {
		return fmt.Errorf("game already started")
	}
	if len(seats) != players {
		return fmt.Errorf("expected %d seats, got %d", players, len(seats))
	}
	e.seats = make([]Seat, len(seats))
	copy(e.seats, seats)
	e.positions = make(map[string]int, len(seats))
	for _, s := range seats {
		e.positions[s.Handle] = 0
	}
	e.turn = 0
	e.started = true
	e.deal()
	e.autoAdvance()
	return nil
}

func (e *DashEngine) PlayerView(handle string) (json.RawMessage, error) {
	if !e.started {
		return nil, fmt.Errorf("game not started")
	}
	if _, ok := e.positions[handle]; !ok {
		return nil, fmt.Errorf("handle %q is not seated", handle)
	}
	type seatView struct {
		Handle   string               `json:"handle"`
		Color    protocol.PlayerColor `json:"color"`
		Type     protocol.PlayerType  `json:"type"`
		Position int                  `json:"position"`
	}
	view := struct {
		Viewer      string     `json:"viewer"`
		TrackLength int        `json:"track_length"`
		Seats       []seatView `json:"seats"`
		CurrentTurn string     `json:"current_turn"`
		Finished    bool       `json:"finished"`
		Winner      string     `json:"winner,omitempty"`
	}{
		Viewer:      handle,
		TrackLength: trackLength,
		Finished:    e.finished,
		Winner:      e.winner,
	}
	if !e.finished {
		view.CurrentTurn = e.seats[e.turn].Handle
	}
	for _, s := range e.seats {
		view.Seats = append(view.Seats, seatView{s.Handle, s.Color, s.Kind, e.positions[s.Handle]})
	}
	return json.Marshal(view)
}

func (e *DashEngine) LegalMoves(handle string) []protocol.GameMove {
	if !e.IsMovePending(handle) {
		return nil
	}
	moves := make([]protocol.GameMove, len(e.moves))
	copy(moves, e.moves)
	return moves
}

func (e *DashEngine) IsMovePending(handle string) bool {
	return e.started && !e.finished && e.seats[e.turn].Handle == handle
}

func (e *DashEngine) ExecuteMove(handle string, moveID string) (*Result, error) {
	if !e.IsMovePending(handle) {
		return nil, fmt.Errorf("no move pending for %q", handle)
	}
	if _, ok := e.steps[moveID]; !ok {
		return nil, fmt.Errorf("move %q is not on offer", moveID)
	}
	e.apply(moveID)
	e.autoAdvance()
	if e.finished {
		return &Result{
			Completed: true,
			Comment:   fmt.Sprintf("Player %s crossed the finish line", e.winner),
		}, nil
	}
	next := e.seats[e.turn].Handle
	return &Result{NextTurn: &Turn{Handle: next, Moves: e.LegalMoves(next)}}, nil
}

// apply advances the current seat by the chosen step count and either
// finishes the race or deals the next turn.
func (e *DashEngine) apply(moveID string) {
	mover := e.seats[e.turn].Handle
	e.positions[mover] += e.steps[moveID]
	if e.positions[mover] >= trackLength {
		e.finished = true
		e.winner = mover
		e.steps = nil
		e.moves = nil
		return
	}
	e.turn = (e.turn + 1) % len(e.seats)
	e.deal()
}

// autoAdvance plays programmatic seats until a human must move or the
// race is over.
func (e *DashEngine) autoAdvance() {
	for !e.finished && e.seats[e.turn].Kind == protocol.PlayerProgrammatic {
		e.apply(e.moves[0].MoveID)
	}
}

// deal draws the moves offered for the current turn. Move ids stay
// stable until the turn is taken.
func (e *DashEngine) deal() {
	e.moveSeq++
	count := 1 + e.rng.Intn(3)
	e.steps = make(map[string]int, count)
	e.moves = make([]protocol.GameMove, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("move-%d-%d", e.moveSeq, i)
		steps := 1 + e.rng.Intn(6)
		e.steps[id] = steps
		e.moves = append(e.moves, protocol.GameMove{
			MoveID:      id,
			Description: fmt.Sprintf("Advance %d squares", steps),
		})
	}
}
