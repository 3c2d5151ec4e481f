package game

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parlorgames/backend/internal/config"
	"github.com/parlorgames/backend/internal/protocol"
	"github.com/parlorgames/backend/internal/rules"
)

// Manager owns every player and game on the server. All state changes
// run under one lock; network work is queued while the lock is held
// and flushed by the caller after it is released.
type Manager struct {
	mu      sync.Mutex
	cfg     *config.Config
	log     *zap.SugaredLogger
	store   *Store
	factory rules.Factory
	now     func() time.Time
	rng     *rand.Rand
}

// NewManager creates a manager with an empty store.
func NewManager(cfg *config.Config, log *zap.SugaredLogger, factory rules.Factory) *Manager {
	return &Manager{
		cfg:     cfg,
		log:     log,
		store:   newStore(),
		factory: factory,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type request struct {
	envelope  *protocol.Envelope
	transport Transport
	player    *Player
	game      *Game
}

// HandleRequest runs one client request and returns the queued work.
// On error nothing was changed and nothing is queued; the caller
// reports the failure on the requesting transport.
func (m *Manager) HandleRequest(t Transport, env *protocol.Envelope, playerID string) (*TaskQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Infof("[REQUEST] %s", env.Message)
	q := NewTaskQueue(m.log)

	if env.Message == protocol.MessageRegisterPlayer {
		ctx := env.Context.(*protocol.RegisterPlayerContext)
		if err := m.registerPlayer(q, t, ctx); err != nil {
			return nil, err
		}
		return q, nil
	}

	player := m.store.playerByID(playerID)
	if player == nil {
		return nil, protocol.NewError(protocol.ReasonInvalidPlayer)
	}
	r := &request{envelope: env, transport: t, player: player, game: m.store.gameByID(player.GameID)}
	if err := m.dispatch(q, r); err != nil {
		return nil, err
	}
	// Activity is recorded only for requests that succeed. The player is
	// already gone at this point if the request was UNREGISTER_PLAYER.
	if m.store.playerByID(playerID) != nil {
		player.markActive(m.now())
	}
	return q, nil
}

func (m *Manager) dispatch(q *TaskQueue, r *request) error {
	switch r.envelope.Message {
	case protocol.MessageReregisterPlayer:
		return m.reregisterPlayer(q, r)
	case protocol.MessageUnregisterPlayer:
		return m.unregisterPlayer(q, r)
	case protocol.MessageListPlayers:
		return m.listPlayers(q, r)
	case protocol.MessageAdvertiseGame:
		return m.advertiseGame(q, r)
	case protocol.MessageListAvailableGames:
		return m.listAvailableGames(q, r)
	case protocol.MessageJoinGame:
		return m.joinGame(q, r)
	case protocol.MessageQuitGame:
		return m.quitGame(q, r)
	case protocol.MessageStartGame:
		return m.startGame(q, r)
	case protocol.MessageCancelGame:
		return m.cancelGame(q, r)
	case protocol.MessageExecuteMove:
		return m.executeMove(q, r)
	case protocol.MessageRetrieveGameState:
		return m.retrieveGameState(q, r)
	case protocol.MessageSendMessage:
		return m.sendMessage(q, r)
	}
	return protocol.NewErrorf(protocol.ReasonInternalError, "Unable to dispatch %s request", r.envelope.Message)
}

// HandleDisconnect runs the cascade for a transport that dropped.
func (m *Manager) HandleDisconnect(t Transport) *TaskQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := NewTaskQueue(m.log)
	p := m.store.playerByTransport(t)
	if p == nil {
		return q
	}
	m.log.Infof("[EVENT] player %s disconnected", p.Handle)
	g := m.store.gameByID(p.GameID)
	p.markDisconnected()
	if g != nil {
		comment := "Player " + p.Handle + " disconnected"
		g.markActive(m.now())
		g.markQuit(p.Handle, protocol.PlayerDisconnected)
		m.gamePlayerChangeEvent(q, g, comment)
		if !g.isViable() {
			if err := m.gameCancelledEvent(q, g, protocol.CancelledNotViable, comment, true); err != nil {
				m.log.Errorf("cancelling unviable game %s: %v", g.ID, err)
			}
		}
	}
	return q
}

// HandleShutdown tells every connected player the server is going away
// and cancels all in-progress games without further notifications.
func (m *Manager) HandleShutdown() *TaskQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := NewTaskQueue(m.log)
	m.log.Infof("[EVENT] server shutdown")
	q.Message(&protocol.Envelope{Message: protocol.MessageServerShutdown}, m.store.connectedTransports()...)
	for _, g := range m.store.inProgressGames() {
		if err := m.gameCancelledEvent(q, g, protocol.CancelledShutdown, "", false); err != nil {
			m.log.Errorf("cancelling game %s at shutdown: %v", g.ID, err)
		}
	}
	return q
}

// Counts reports how many players and games are tracked right now.
func (m *Manager) Counts() (players, games int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.playerCount(), m.store.gameCount()
}
