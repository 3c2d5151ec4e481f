package game

import (
	"fmt"

	"github.com/parlorgames/backend/internal/protocol"
)

// Events. Each applies its state changes and queues the resulting
// messages; cascades call further events.

func (m *Manager) playerRegisteredEvent(q *TaskQueue, t Transport, handle string) error {
	p, err := m.store.createPlayer(handle, t, m.now())
	if err != nil {
		return err
	}
	m.log.Infof("[EVENT] player %s registered", p.Handle)
	q.Message(&protocol.Envelope{
		Message: protocol.MessagePlayerRegistered,
		Context: &protocol.PlayerRegisteredContext{PlayerID: p.ID, Handle: p.Handle},
	}, t)
	return nil
}

// playerReregisteredEvent rebinds a registration to a new transport.
// Any previous transport is left alone; if it is still open its reader
// keeps running until the peer goes away.
func (m *Manager) playerReregisteredEvent(q *TaskQueue, p *Player, t Transport) {
	m.log.Infof("[EVENT] player %s reregistered", p.Handle)
	p.Transport = t
	p.markActive(m.now())
	q.Message(&protocol.Envelope{
		Message: protocol.MessagePlayerRegistered,
		Context: &protocol.PlayerRegisteredContext{PlayerID: p.ID, Handle: p.Handle},
	}, t)
}

func (m *Manager) playerUnregisteredEvent(q *TaskQueue, p *Player, g *Game) error {
	m.log.Infof("[EVENT] player %s unregistered", p.Handle)
	p.markQuit()
	if g != nil {
		comment := fmt.Sprintf("Player %s unregistered", p.Handle)
		g.markActive(m.now())
		g.markQuit(p.Handle, protocol.PlayerQuit)
		m.gamePlayerChangeEvent(q, g, comment)
		if !g.isViable() {
			if err := m.gameCancelledEvent(q, g, protocol.CancelledNotViable, comment, true); err != nil {
				return err
			}
		}
	}
	m.store.deletePlayer(p)
	return nil
}

func (m *Manager) registeredPlayersEvent(q *TaskQueue, p *Player) {
	all := m.store.allPlayers()
	players := make([]protocol.RegisteredPlayer, 0, len(all))
	for _, other := range all {
		players = append(players, other.toRegisteredPlayer())
	}
	q.Message(&protocol.Envelope{
		Message: protocol.MessageRegisteredPlayers,
		Context: &protocol.RegisteredPlayersContext{Players: players},
	}, p.Transport)
}

func (m *Manager) availableGamesEvent(q *TaskQueue, p *Player) {
	available := m.store.availableGames(p)
	games := make([]protocol.AdvertisedGame, 0, len(available))
	for _, g := range available {
		games = append(games, g.toAdvertisedGame())
	}
	q.Message(&protocol.Envelope{
		Message: protocol.MessageAvailableGames,
		Context: &protocol.AvailableGamesContext{Games: games},
	}, p.Transport)
}

// playerIdleEvent warns a player that they have gone quiet.
func (m *Manager) playerIdleEvent(q *TaskQueue, p *Player) {
	m.log.Infof("[EVENT] player %s idle", p.Handle)
	q.Message(&protocol.Envelope{Message: protocol.MessagePlayerIdle}, p.Transport)
	p.markIdle()
}

// playerInactiveEvent drops a player who has been quiet too long: they
// are notified, disconnected and unregistered in one pass.
func (m *Manager) playerInactiveEvent(q *TaskQueue, p *Player) error {
	m.log.Infof("[EVENT] player %s inactive", p.Handle)
	p.markInactive()
	q.Message(&protocol.Envelope{Message: protocol.MessagePlayerInactive}, p.Transport)
	q.Disconnect(p.Transport)
	return m.playerUnregisteredEvent(q, p, m.store.gameByID(p.GameID))
}

// playerMessageReceivedEvent fans a chat message out to its recipients.
// Unknown recipients are dropped; delivery is best-effort.
func (m *Manager) playerMessageReceivedEvent(q *TaskQueue, sender string, recipients []string, text string) {
	env := &protocol.Envelope{
		Message: protocol.MessagePlayerMessageReceived,
		Context: &protocol.PlayerMessageReceivedContext{
			SenderHandle:     sender,
			RecipientHandles: recipients,
			Message:          text,
		},
	}
	transports := make([]Transport, 0, len(recipients))
	for _, h := range recipients {
		if p := m.store.playerByHandle(h); p != nil {
			transports = append(transports, p.Transport)
		}
	}
	q.Message(env, transports...)
}

// gameAdvertisedEvent creates the game, seats the advertiser and tells
// everyone involved: the advertiser gets the advertisement and join
// confirmation, registered invitees get invitations.
func (m *Manager) gameAdvertisedEvent(q *TaskQueue, p *Player, ctx *protocol.AdvertiseGameContext) {
	g := newGame(p.Handle, ctx, m.now())
	m.store.addGame(g)
	g.addPlayer(p.Handle, protocol.PlayerHuman, g.randomUnusedColor(m.rng))
	p.markJoined(g.ID)
	m.log.Infof("[EVENT] game %s advertised by %s", g.ID, p.Handle)
	q.Message(&protocol.Envelope{
		Message: protocol.MessageGameAdvertised,
		Context: &protocol.GameAdvertisedContext{Game: g.toAdvertisedGame()},
	}, p.Transport)
	m.gameInvitationEvent(q, g)
	q.Message(&protocol.Envelope{
		Message: protocol.MessageGameJoined,
		Context: &protocol.GameJoinedContext{GameID: g.ID},
	}, p.Transport)
}

// gameInvitationEvent invites every registered invited player.
func (m *Manager) gameInvitationEvent(q *TaskQueue, g *Game) {
	if len(g.InvitedHandles) == 0 {
		return
	}
	env := &protocol.Envelope{
		Message: protocol.MessageGameInvitation,
		Context: &protocol.GameInvitationContext{Game: g.toAdvertisedGame()},
	}
	transports := make([]Transport, 0, len(g.InvitedHandles))
	for _, h := range g.InvitedHandles {
		if invitee := m.store.playerByHandle(h); invitee != nil {
			transports = append(transports, invitee.Transport)
		}
	}
	q.Message(env, transports...)
}

// gameJoinedEvent seats a player in an advertised game, starting it
// when the last seat fills and the in-progress limit allows.
func (m *Manager) gameJoinedEvent(q *TaskQueue, p *Player, gameID string) error {
	g := m.store.gameByID(gameID)
	if g == nil || !g.isAvailable(p) {
		return protocol.NewError(protocol.ReasonInvalidGame)
	}
	g.markActive(m.now())
	g.addPlayer(p.Handle, protocol.PlayerHuman, g.randomUnusedColor(m.rng))
	p.markJoined(g.ID)
	m.log.Infof("[EVENT] player %s joined game %s", p.Handle, g.ID)
	q.Message(&protocol.Envelope{
		Message: protocol.MessageGameJoined,
		Context: &protocol.GameJoinedContext{GameID: g.ID},
	}, p.Transport)
	if g.isFullyJoined() {
		if m.store.inProgressGameCount() >= m.cfg.InProgressGameLimit {
			m.log.Warnf("[EVENT] game limit reached, game %s will not be auto-started", g.ID)
			return nil
		}
		return m.gameStartedEvent(q, g)
	}
	return nil
}

// gameStartedEvent fills any open seats with programmatic players,
// seats the rules engine and moves the game into play.
func (m *Manager) gameStartedEvent(q *TaskQueue, g *Game) error {
	now := m.now()
	filled, err := m.backfill(g)
	if err != nil {
		return err
	}
	engine := m.factory()
	if err := engine.Start(g.Players, g.seats()); err != nil {
		// The game is still advertised, so markQuit releases the
		// backfilled seats entirely.
		for _, h := range filled {
			g.markQuit(h, protocol.PlayerQuit)
		}
		return fmt.Errorf("starting rules engine for game %s: %w", g.ID, err)
	}
	g.engine = engine
	g.markActive(now)
	g.markStarted(now)
	players := m.store.gamePlayers(g)
	for _, p := range players {
		p.markPlaying()
	}
	m.log.Infof("[EVENT] game %s started", g.ID)
	q.MessagePlayers(&protocol.Envelope{Message: protocol.MessageGameStarted}, players)
	m.gamePlayerChangeEvent(q, g, "Game started")
	if err := m.gameStateChangeEvent(q, g, nil); err != nil {
		return err
	}
	for _, h := range g.handles() {
		if g.engine.IsMovePending(h) {
			m.gamePlayerTurnEvent(q, g, h, g.engine.LegalMoves(h))
			break
		}
	}
	return nil
}

// backfill seats programmatic players in any open seats, avoiding
// handles already in use anywhere on the server. Either every open
// seat is filled or none is: when the name pool cannot cover the
// demand, the game is left exactly as it was.
func (m *Manager) backfill(g *Game) ([]string, error) {
	need := g.Players - len(g.seating)
	if need <= 0 {
		return nil, nil
	}
	taken := make(map[string]bool, len(m.store.handles)+len(g.seating))
	for h := range m.store.handles {
		taken[h] = true
	}
	for _, h := range g.seating {
		taken[h] = true
	}
	names := drawFillNames(m.rng, need, taken)
	if len(names) < need {
		m.log.Warnf("[EVENT] game %s needs %d fill players, only %d names free", g.ID, need, len(names))
		return nil, protocol.NewError(protocol.ReasonInternalError)
	}
	for _, name := range names {
		g.addPlayer(name, protocol.PlayerProgrammatic, g.randomUnusedColor(m.rng))
	}
	return names, nil
}

// gameCancelledEvent detaches every human player from the game and
// closes it. With notify set, players are told why and shown the final
// board when the game had started.
func (m *Manager) gameCancelledEvent(q *TaskQueue, g *Game, reason protocol.CancelledReason, comment string, notify bool) error {
	if comment == "" {
		comment = reason.DefaultComment()
	}
	players := m.store.gamePlayers(g)
	for _, p := range players {
		p.markQuit()
	}
	g.markCancelled(reason, comment, m.now())
	m.log.Infof("[EVENT] game %s cancelled (%s)", g.ID, reason)
	if !notify {
		return nil
	}
	q.MessagePlayers(&protocol.Envelope{
		Message: protocol.MessageGameCancelled,
		Context: &protocol.GameCancelledContext{Reason: reason, Comment: comment},
	}, players)
	return m.gameStateChangeEvent(q, g, nil)
}

// gameCompletedEvent closes a game that was played to its end.
func (m *Manager) gameCompletedEvent(q *TaskQueue, g *Game, comment string) error {
	players := m.store.gamePlayers(g)
	for _, p := range players {
		p.markQuit()
	}
	g.markCompleted(comment, m.now())
	m.log.Infof("[EVENT] game %s completed: %s", g.ID, comment)
	q.MessagePlayers(&protocol.Envelope{
		Message: protocol.MessageGameCompleted,
		Context: &protocol.GameCompletedContext{Comment: comment},
	}, players)
	return m.gameStateChangeEvent(q, g, nil)
}

// gameIdleEvent warns a game's players that nothing has happened for a
// while.
func (m *Manager) gameIdleEvent(q *TaskQueue, g *Game) {
	m.log.Infof("[EVENT] game %s idle", g.ID)
	q.MessagePlayers(&protocol.Envelope{Message: protocol.MessageGameIdle}, m.store.gamePlayers(g))
	g.markIdle()
}

// gameInactiveEvent cancels a game that has been idle too long.
func (m *Manager) gameInactiveEvent(q *TaskQueue, g *Game) error {
	m.log.Infof("[EVENT] game %s inactive", g.ID)
	g.markInactive()
	return m.gameCancelledEvent(q, g, protocol.CancelledInactive, "", true)
}

// gameObsoleteEvent drops a finished game that nobody can retrieve
// anything from anymore.
func (m *Manager) gameObsoleteEvent(g *Game) {
	m.log.Infof("[EVENT] game %s obsolete, deleting", g.ID)
	m.store.deleteGame(g)
}

// gamePlayerQuitEvent releases a player's seat, cancelling the game if
// too few playable seats remain.
func (m *Manager) gamePlayerQuitEvent(q *TaskQueue, p *Player, g *Game) error {
	comment := fmt.Sprintf("Player %s quit", p.Handle)
	m.log.Infof("[EVENT] player %s quit game %s", p.Handle, g.ID)
	g.markActive(m.now())
	p.markQuit()
	g.markQuit(p.Handle, protocol.PlayerQuit)
	m.gamePlayerChangeEvent(q, g, comment)
	if !g.isViable() {
		return m.gameCancelledEvent(q, g, protocol.CancelledNotViable, comment, true)
	}
	return nil
}

// gameExecuteMoveEvent applies a validated move and fans out the
// consequences: either the game completes, or everyone sees the new
// board and the next player is put on turn.
func (m *Manager) gameExecuteMoveEvent(q *TaskQueue, p *Player, g *Game, moveID string) error {
	result, err := g.engine.ExecuteMove(p.Handle, moveID)
	if err != nil {
		return fmt.Errorf("executing move %s in game %s: %w", moveID, g.ID, err)
	}
	g.markActive(m.now())
	if result.Completed {
		return m.gameCompletedEvent(q, g, result.Comment)
	}
	if err := m.gameStateChangeEvent(q, g, nil); err != nil {
		return err
	}
	if result.NextTurn != nil {
		m.gamePlayerTurnEvent(q, g, result.NextTurn.Handle, result.NextTurn.Moves)
	}
	return nil
}

// gamePlayerChangeEvent shows every player the current seating chart.
func (m *Manager) gamePlayerChangeEvent(q *TaskQueue, g *Game, comment string) {
	q.MessagePlayers(&protocol.Envelope{
		Message: protocol.MessageGamePlayerChange,
		Context: &protocol.GamePlayerChangeContext{Comment: comment, Players: g.playerInfos()},
	}, m.store.gamePlayers(g))
}

// gameStateChangeEvent sends each player their own view of the board,
// or just one player's view when a viewer is given. Games that never
// started have no board and nothing is sent.
func (m *Manager) gameStateChangeEvent(q *TaskQueue, g *Game, viewer *Player) error {
	if g.engine == nil {
		return nil
	}
	g.markActive(m.now())
	players := m.store.gamePlayers(g)
	if viewer != nil {
		players = []*Player{viewer}
	}
	for _, p := range players {
		view, err := g.engine.PlayerView(p.Handle)
		if err != nil {
			return fmt.Errorf("rendering game %s for %s: %w", g.ID, p.Handle, err)
		}
		q.Message(&protocol.Envelope{
			Message: protocol.MessageGameStateChange,
			Context: &protocol.GameStateChangeContext{GameID: g.ID, View: view},
		}, p.Transport)
	}
	return nil
}

// gamePlayerTurnEvent tells one player it is their turn.
func (m *Manager) gamePlayerTurnEvent(q *TaskQueue, g *Game, handle string, moves []protocol.GameMove) {
	p := m.store.playerByHandle(handle)
	if p == nil {
		return
	}
	q.Message(&protocol.Envelope{
		Message: protocol.MessageGamePlayerTurn,
		Context: &protocol.GamePlayerTurnContext{Handle: handle, GameID: g.ID, Moves: moves},
	}, p.Transport)
}
