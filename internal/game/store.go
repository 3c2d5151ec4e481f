package game

import (
	"sort"
	"time"

	"github.com/parlorgames/backend/internal/protocol"
)

// Store is the in-memory registry of players and games. It does no
// locking of its own; the manager serializes access.
type Store struct {
	players map[string]*Player // keyed by player id
	handles map[string]string  // handle -> player id
	games   map[string]*Game   // keyed by game id
}

func newStore() *Store {
	return &Store{
		players: make(map[string]*Player),
		handles: make(map[string]string),
		games:   make(map[string]*Game),
	}
}

// createPlayer registers a new player under a unique handle.
func (s *Store) createPlayer(handle string, t Transport, now time.Time) (*Player, error) {
	if _, exists := s.handles[handle]; exists {
		return nil, protocol.NewErrorf(protocol.ReasonDuplicateUser, "Handle %q is already in use", handle)
	}
	p := newPlayer(handle, t, now)
	s.players[p.ID] = p
	s.handles[p.Handle] = p.ID
	return p, nil
}

// deletePlayer removes a player and frees their handle.
func (s *Store) deletePlayer(p *Player) {
	delete(s.players, p.ID)
	delete(s.handles, p.Handle)
}

func (s *Store) playerByID(id string) *Player {
	return s.players[id]
}

func (s *Store) playerByHandle(handle string) *Player {
	if id, ok := s.handles[handle]; ok {
		return s.players[id]
	}
	return nil
}

// playerByTransport finds the player bound to a transport, if any.
func (s *Store) playerByTransport(t Transport) *Player {
	for _, p := range s.players {
		if p.Transport == t {
			return p
		}
	}
	return nil
}

func (s *Store) addGame(g *Game) {
	s.games[g.ID] = g
}

func (s *Store) deleteGame(g *Game) {
	delete(s.games, g.ID)
}

func (s *Store) gameByID(id string) *Game {
	if id == "" {
		return nil
	}
	return s.games[id]
}

func (s *Store) playerCount() int {
	return len(s.players)
}

func (s *Store) gameCount() int {
	return len(s.games)
}

func (s *Store) inProgressGameCount() int {
	count := 0
	for _, g := range s.games {
		if g.State.InProgress() {
			count++
		}
	}
	return count
}

// allPlayers lists every registered player, ordered by handle.
func (s *Store) allPlayers() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// allGames lists every tracked game, oldest advertisement first.
func (s *Store) allGames() []*Game {
	out := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AdvertisedTime.Equal(out[j].AdvertisedTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].AdvertisedTime.Before(out[j].AdvertisedTime)
	})
	return out
}

// availableGames lists the games a player could join right now.
func (s *Store) availableGames(p *Player) []*Game {
	out := make([]*Game, 0)
	for _, g := range s.allGames() {
		if g.isAvailable(p) {
			out = append(out, g)
		}
	}
	return out
}

// inProgressGames lists games that are advertised or being played.
func (s *Store) inProgressGames() []*Game {
	out := make([]*Game, 0)
	for _, g := range s.allGames() {
		if g.State.InProgress() {
			out = append(out, g)
		}
	}
	return out
}

// gamePlayers resolves the live player records for every human seated
// in a game, in seating order. Seats whose registration is gone are
// skipped.
func (s *Store) gamePlayers(g *Game) []*Player {
	out := make([]*Player, 0, len(g.seating))
	for _, h := range g.humanHandles() {
		if p := s.playerByHandle(h); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// connectedTransports lists the transports of every connected player.
func (s *Store) connectedTransports() []Transport {
	out := make([]Transport, 0, len(s.players))
	for _, p := range s.allPlayers() {
		if p.Transport != nil {
			out = append(out, p.Transport)
		}
	}
	return out
}
