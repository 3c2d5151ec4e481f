package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/parlorgames/backend/internal/config"
	"github.com/parlorgames/backend/internal/protocol"
	"github.com/parlorgames/backend/internal/rules"
)

// fakeTransport records what the engine sends without any network.
type fakeTransport struct {
	name   string
	sent   [][]byte
	closed bool
}

func (t *fakeTransport) Send(data []byte) error {
	if t.closed {
		return fmt.Errorf("transport %s is closed", t.name)
	}
	t.sent = append(t.sent, data)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

// kinds decodes the recorded frames down to their message kinds.
func (t *fakeTransport) kinds(tb testing.TB) []protocol.MessageType {
	tb.Helper()
	out := make([]protocol.MessageType, 0, len(t.sent))
	for _, data := range t.sent {
		env, err := protocol.Decode(data)
		if err != nil {
			tb.Fatalf("transport %s holds an undecodable frame: %v", t.name, err)
		}
		out = append(out, env.Message)
	}
	return out
}

// last decodes the most recent frame of the given kind, failing the
// test when none was sent.
func (t *fakeTransport) last(tb testing.TB, kind protocol.MessageType) *protocol.Envelope {
	tb.Helper()
	for i := len(t.sent) - 1; i >= 0; i-- {
		env, err := protocol.Decode(t.sent[i])
		if err != nil {
			tb.Fatalf("transport %s holds an undecodable frame: %v", t.name, err)
		}
		if env.Message == kind {
			return env
		}
	}
	tb.Fatalf("transport %s never received %s; got %v", t.name, kind, t.kinds(tb))
	return nil
}

func (t *fakeTransport) reset() {
	t.sent = nil
}

// stubEngine is a scripted rules engine. Every turn offers the same
// two moves: "step" passes the turn to the next human seat, "win"
// completes the game for the mover.
type stubEngine struct {
	seats    []rules.Seat
	turn     int
	finished bool
	failView bool
}

var stubMoves = []protocol.GameMove{
	{MoveID: "step", Description: "Pass the turn"},
	{MoveID: "win", Description: "Win the game"},
}

func stubFactory() rules.Engine {
	return &stubEngine{}
}

func (e *stubEngine) Start(players int, seats []rules.Seat) error {
	if len(seats) != players {
		return fmt.Errorf("expected %d seats, got %d", players, len(seats))
	}
	e.seats = seats
	e.skipProgrammatic()
	return nil
}

func (e *stubEngine) skipProgrammatic() {
	for e.seats[e.turn].Kind == protocol.PlayerProgrammatic {
		e.turn = (e.turn + 1) % len(e.seats)
	}
}

func (e *stubEngine) PlayerView(handle string) (json.RawMessage, error) {
	if e.failView {
		return nil, fmt.Errorf("scripted view failure")
	}
	return json.Marshal(map[string]string{"viewer": handle})
}

func (e *stubEngine) LegalMoves(handle string) []protocol.GameMove {
	if !e.IsMovePending(handle) {
		return nil
	}
	return stubMoves
}

func (e *stubEngine) IsMovePending(handle string) bool {
	return len(e.seats) > 0 && !e.finished && e.seats[e.turn].Handle == handle
}

func (e *stubEngine) ExecuteMove(handle string, moveID string) (*rules.Result, error) {
	if !e.IsMovePending(handle) {
		return nil, fmt.Errorf("no move pending for %q", handle)
	}
	if moveID == "win" {
		e.finished = true
		return &rules.Result{Completed: true, Comment: fmt.Sprintf("Player %s won", handle)}, nil
	}
	e.turn = (e.turn + 1) % len(e.seats)
	e.skipProgrammatic()
	next := e.seats[e.turn].Handle
	return &rules.Result{NextTurn: &rules.Turn{Handle: next, Moves: stubMoves}}, nil
}

// startFailEngine refuses to seat a game.
type startFailEngine struct{ stubEngine }

func (e *startFailEngine) Start(players int, seats []rules.Seat) error {
	return fmt.Errorf("scripted start failure")
}

// moveFailEngine accepts seats but rejects every move.
type moveFailEngine struct{ stubEngine }

func (e *moveFailEngine) ExecuteMove(handle string, moveID string) (*rules.Result, error) {
	return nil, fmt.Errorf("scripted move failure")
}

func testConfig() *config.Config {
	return &config.Config{
		TotalGameLimit:          1000,
		InProgressGameLimit:     25,
		RegisteredPlayerLimit:   100,
		PlayerIdleThreshMin:     10,
		PlayerInactiveThreshMin: 20,
		GameIdleThreshMin:       10,
		GameInactiveThreshMin:   20,
		GameRetentionThreshMin:  2880,
	}
}

// testManager builds a manager with a scripted rules engine, a fixed
// rng and a controllable clock.
func testManager(cfg *config.Config) (*Manager, *time.Time) {
	now := time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)
	m := NewManager(cfg, zap.NewNop().Sugar(), stubFactory)
	m.now = func() time.Time { return now }
	m.rng = rand.New(rand.NewSource(1))
	return m, &now
}

// register runs a REGISTER_PLAYER request and returns the minted id.
func register(t *testing.T, m *Manager, tr *fakeTransport, handle string) string {
	t.Helper()
	q, err := m.HandleRequest(tr, &protocol.Envelope{
		Message: protocol.MessageRegisterPlayer,
		Context: &protocol.RegisterPlayerContext{Handle: handle},
	}, "")
	if err != nil {
		t.Fatalf("registering %s failed: %v", handle, err)
	}
	q.Flush()
	ctx := tr.last(t, protocol.MessagePlayerRegistered).Context.(*protocol.PlayerRegisteredContext)
	if ctx.Handle != handle || ctx.PlayerID == "" {
		t.Fatalf("bad registration context: %+v", ctx)
	}
	return ctx.PlayerID
}

// run executes one request and flushes, failing the test on error.
func run(t *testing.T, m *Manager, tr *fakeTransport, playerID string, env *protocol.Envelope) {
	t.Helper()
	q, err := m.HandleRequest(tr, env, playerID)
	if err != nil {
		t.Fatalf("%s failed: %v", env.Message, err)
	}
	q.Flush()
}

// runFail executes one request expecting a typed rejection.
func runFail(t *testing.T, m *Manager, tr *fakeTransport, playerID string, env *protocol.Envelope, reason protocol.FailureReason) {
	t.Helper()
	_, err := m.HandleRequest(tr, env, playerID)
	if err == nil {
		t.Fatalf("%s should have failed with %s", env.Message, reason)
	}
	if pe := protocol.AsProcessingError(err); pe.Reason != reason {
		t.Fatalf("%s failed with %s, want %s", env.Message, pe.Reason, reason)
	}
}

// advertise creates a game for an already-registered player and
// returns its id.
func advertise(t *testing.T, m *Manager, tr *fakeTransport, playerID string, ctx *protocol.AdvertiseGameContext) string {
	t.Helper()
	run(t, m, tr, playerID, &protocol.Envelope{Message: protocol.MessageAdvertiseGame, Context: ctx})
	return tr.last(t, protocol.MessageGameJoined).Context.(*protocol.GameJoinedContext).GameID
}

// publicGame is a plain two-seat public advertisement.
func publicGame(players int) *protocol.AdvertiseGameContext {
	return &protocol.AdvertiseGameContext{
		Name:           "fun",
		Mode:           protocol.ModeStandard,
		Players:        players,
		Visibility:     protocol.VisibilityPublic,
		InvitedHandles: []string{},
	}
}

// checkInvariants verifies the structural invariants the store is
// supposed to preserve across every transition.
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.store.players {
		if p.ID != id {
			t.Errorf("player %s stored under id %s", p.ID, id)
		}
		if got := m.store.handles[p.Handle]; got != id {
			t.Errorf("handle %s maps to %s, want %s", p.Handle, got, id)
		}
		if p.Participation == protocol.PlayerJoined || p.Participation == protocol.PlayerPlaying {
			g := m.store.games[p.GameID]
			if g == nil {
				t.Errorf("player %s is %s in missing game %s", p.Handle, p.Participation, p.GameID)
			} else if _, seated := g.gamePlayers[p.Handle]; !seated {
				t.Errorf("player %s is %s but not seated in game %s", p.Handle, p.Participation, g.ID)
			}
		}
	}
	for handle, id := range m.store.handles {
		if p := m.store.players[id]; p == nil || p.Handle != handle {
			t.Errorf("handle %s maps to stale id %s", handle, id)
		}
	}
	for _, g := range m.store.games {
		if len(g.gamePlayers) > g.Players {
			t.Errorf("game %s has %d seats, limit %d", g.ID, len(g.gamePlayers), g.Players)
		}
		colors := make(map[protocol.PlayerColor]bool)
		for _, gp := range g.gamePlayers {
			if colors[gp.Color] {
				t.Errorf("game %s assigned color %s twice", g.ID, gp.Color)
			}
			colors[gp.Color] = true
		}
	}
}
