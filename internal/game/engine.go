package game

import (
	"github.com/parlorgames/backend/internal/protocol"
)

// Request handlers. Each validates its preconditions in order, then
// hands off to the matching event to apply changes and queue messages.
// Failing a precondition returns before anything is touched.

func (m *Manager) registerPlayer(q *TaskQueue, t Transport, ctx *protocol.RegisterPlayerContext) error {
	if m.store.playerByTransport(t) != nil {
		return protocol.NewErrorf(protocol.ReasonInvalidRequest, "Connection already has a registered player")
	}
	if m.store.playerCount() >= m.cfg.RegisteredPlayerLimit {
		return protocol.NewError(protocol.ReasonUserLimitReached)
	}
	return m.playerRegisteredEvent(q, t, ctx.Handle)
}

func (m *Manager) reregisterPlayer(q *TaskQueue, r *request) error {
	if bound := m.store.playerByTransport(r.transport); bound != nil && bound != r.player {
		return protocol.NewErrorf(protocol.ReasonInvalidRequest, "Connection is bound to another player")
	}
	m.playerReregisteredEvent(q, r.player, r.transport)
	return nil
}

func (m *Manager) unregisterPlayer(q *TaskQueue, r *request) error {
	return m.playerUnregisteredEvent(q, r.player, r.game)
}

func (m *Manager) listPlayers(q *TaskQueue, r *request) error {
	m.registeredPlayersEvent(q, r.player)
	return nil
}

func (m *Manager) advertiseGame(q *TaskQueue, r *request) error {
	ctx := r.envelope.Context.(*protocol.AdvertiseGameContext)
	if r.player.GameID != "" {
		return protocol.NewError(protocol.ReasonAlreadyPlaying)
	}
	if m.store.gameCount() >= m.cfg.TotalGameLimit {
		return protocol.NewError(protocol.ReasonGameLimitReached)
	}
	m.gameAdvertisedEvent(q, r.player, ctx)
	return nil
}

func (m *Manager) listAvailableGames(q *TaskQueue, r *request) error {
	m.availableGamesEvent(q, r.player)
	return nil
}

func (m *Manager) joinGame(q *TaskQueue, r *request) error {
	ctx := r.envelope.Context.(*protocol.JoinGameContext)
	if r.player.GameID != "" {
		return protocol.NewError(protocol.ReasonAlreadyPlaying)
	}
	return m.gameJoinedEvent(q, r.player, ctx.GameID)
}

func (m *Manager) quitGame(q *TaskQueue, r *request) error {
	if r.game == nil {
		return protocol.NewError(protocol.ReasonNotPlaying)
	}
	if !r.game.State.InProgress() {
		return protocol.NewErrorf(protocol.ReasonInvalidGame, "Game is not in progress")
	}
	if r.player.Handle == r.game.AdvertiserHandle {
		return protocol.NewError(protocol.ReasonAdvertiserMayNotQuit)
	}
	return m.gamePlayerQuitEvent(q, r.player, r.game)
}

func (m *Manager) startGame(q *TaskQueue, r *request) error {
	if r.game == nil {
		return protocol.NewError(protocol.ReasonNotPlaying)
	}
	if r.game.State != protocol.GameAdvertised {
		return protocol.NewErrorf(protocol.ReasonInvalidGame, "Game is already being played")
	}
	if r.player.Handle != r.game.AdvertiserHandle {
		return protocol.NewError(protocol.ReasonNotAdvertiser)
	}
	if m.store.inProgressGameCount() >= m.cfg.InProgressGameLimit {
		return protocol.NewError(protocol.ReasonGameLimitReached)
	}
	return m.gameStartedEvent(q, r.game)
}

func (m *Manager) cancelGame(q *TaskQueue, r *request) error {
	if r.game == nil {
		return protocol.NewError(protocol.ReasonNotPlaying)
	}
	if !r.game.State.InProgress() {
		return protocol.NewErrorf(protocol.ReasonInvalidGame, "Game is not in progress")
	}
	if r.player.Handle != r.game.AdvertiserHandle {
		return protocol.NewError(protocol.ReasonNotAdvertiser)
	}
	return m.gameCancelledEvent(q, r.game, protocol.CancelledByAdvertiser, "", true)
}

func (m *Manager) executeMove(q *TaskQueue, r *request) error {
	ctx := r.envelope.Context.(*protocol.ExecuteMoveContext)
	if r.game == nil {
		return protocol.NewError(protocol.ReasonNotPlaying)
	}
	if r.game.State != protocol.GamePlaying || r.game.engine == nil {
		return protocol.NewErrorf(protocol.ReasonInvalidGame, "Game is not being played")
	}
	if !r.game.engine.IsMovePending(r.player.Handle) {
		return protocol.NewError(protocol.ReasonNoMovePending)
	}
	legal := false
	for _, move := range r.game.engine.LegalMoves(r.player.Handle) {
		if move.MoveID == ctx.MoveID {
			legal = true
			break
		}
	}
	if !legal {
		return protocol.NewError(protocol.ReasonIllegalMove)
	}
	return m.gameExecuteMoveEvent(q, r.player, r.game, ctx.MoveID)
}

func (m *Manager) retrieveGameState(q *TaskQueue, r *request) error {
	if r.game == nil {
		return protocol.NewError(protocol.ReasonNotPlaying)
	}
	if r.game.State != protocol.GamePlaying {
		return protocol.NewErrorf(protocol.ReasonInvalidGame, "Game is not being played")
	}
	return m.gameStateChangeEvent(q, r.game, r.player)
}

func (m *Manager) sendMessage(q *TaskQueue, r *request) error {
	ctx := r.envelope.Context.(*protocol.SendMessageContext)
	m.playerMessageReceivedEvent(q, r.player.Handle, ctx.RecipientHandles, ctx.Message)
	return nil
}
