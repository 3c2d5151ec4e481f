package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/parlorgames/backend/internal/protocol"
	"github.com/parlorgames/backend/internal/rules"
)

// GamePlayer is one seat in a game, human or programmatic.
type GamePlayer struct {
	Handle string
	Color  protocol.PlayerColor
	Kind   protocol.PlayerType
	State  protocol.PlayerState
}

// Game is one tracked game, from advertisement to deletion. All fields
// are guarded by the manager lock.
type Game struct {
	ID               string
	Name             string
	Mode             protocol.GameMode
	AdvertiserHandle string
	Players          int
	Visibility       protocol.Visibility
	InvitedHandles   []string
	AdvertisedTime   time.Time
	LastActiveTime   time.Time
	StartedTime      time.Time
	CompletedTime    time.Time
	State            protocol.GameState
	Activity         protocol.ActivityState
	CancelledReason  protocol.CancelledReason
	CompletedComment string

	gamePlayers map[string]*GamePlayer
	seating     []string
	engine      rules.Engine
}

func newGame(advertiser string, ctx *protocol.AdvertiseGameContext, now time.Time) *Game {
	invited := make([]string, 0, len(ctx.InvitedHandles))
	invited = append(invited, ctx.InvitedHandles...)
	return &Game{
		ID:               uuid.NewString(),
		Name:             ctx.Name,
		Mode:             ctx.Mode,
		AdvertiserHandle: advertiser,
		Players:          ctx.Players,
		Visibility:       ctx.Visibility,
		InvitedHandles:   invited,
		AdvertisedTime:   now,
		LastActiveTime:   now,
		State:            protocol.GameAdvertised,
		Activity:         protocol.ActivityActive,
		gamePlayers:      make(map[string]*GamePlayer),
	}
}

func (g *Game) markActive(now time.Time) {
	g.LastActiveTime = now
	g.Activity = protocol.ActivityActive
}

func (g *Game) markIdle() {
	g.Activity = protocol.ActivityIdle
}

func (g *Game) markInactive() {
	g.Activity = protocol.ActivityInactive
}

// addPlayer seats a participant. Seating order is join order.
func (g *Game) addPlayer(handle string, kind protocol.PlayerType, color protocol.PlayerColor) {
	g.gamePlayers[handle] = &GamePlayer{Handle: handle, Color: color, Kind: kind, State: protocol.PlayerJoined}
	g.seating = append(g.seating, handle)
}

// markStarted flips the game and every seat into play.
func (g *Game) markStarted(now time.Time) {
	g.State = protocol.GamePlaying
	g.StartedTime = now
	for _, gp := range g.gamePlayers {
		gp.State = protocol.PlayerPlaying
	}
}

// markQuit records a seat abandoning the game. Before the game starts
// the seat is released entirely; afterwards it is kept with its state
// marked so remaining players can see who left.
func (g *Game) markQuit(handle string, state protocol.PlayerState) {
	if g.State == protocol.GameAdvertised {
		delete(g.gamePlayers, handle)
		for i, h := range g.seating {
			if h == handle {
				g.seating = append(g.seating[:i], g.seating[i+1:]...)
				break
			}
		}
		return
	}
	if gp, ok := g.gamePlayers[handle]; ok {
		gp.State = state
	}
}

// markCancelled finishes every seat still in play and closes the game.
func (g *Game) markCancelled(reason protocol.CancelledReason, comment string, now time.Time) {
	for _, gp := range g.gamePlayers {
		if gp.State.IsPlayable() {
			gp.State = protocol.PlayerFinished
		}
	}
	g.State = protocol.GameCancelled
	g.CancelledReason = reason
	g.CompletedComment = comment
	g.CompletedTime = now
}

// markCompleted closes the game after a win.
func (g *Game) markCompleted(comment string, now time.Time) {
	for _, gp := range g.gamePlayers {
		if gp.State.IsPlayable() {
			gp.State = protocol.PlayerFinished
		}
	}
	g.State = protocol.GameCompleted
	g.CompletedComment = comment
	g.CompletedTime = now
}

// isAvailable reports whether a player may join this game.
func (g *Game) isAvailable(p *Player) bool {
	if g.State != protocol.GameAdvertised || g.isFullyJoined() {
		return false
	}
	if g.Visibility == protocol.VisibilityPublic {
		return true
	}
	for _, h := range g.InvitedHandles {
		if h == p.Handle {
			return true
		}
	}
	return false
}

func (g *Game) isFullyJoined() bool {
	return len(g.seating) >= g.Players
}

// isViable reports whether the game can still be played. An advertised
// game is always viable; once play starts at least two seats must
// remain playable.
func (g *Game) isViable() bool {
	if g.State == protocol.GameAdvertised {
		return true
	}
	playable := 0
	for _, gp := range g.gamePlayers {
		if gp.State.IsPlayable() {
			playable++
		}
	}
	return playable >= 2
}

// randomUnusedColor draws from whatever remains of the first Players
// entries of the color order.
func (g *Game) randomUnusedColor(rng *rand.Rand) protocol.PlayerColor {
	used := make(map[protocol.PlayerColor]bool, len(g.gamePlayers))
	for _, gp := range g.gamePlayers {
		used[gp.Color] = true
	}
	unused := make([]protocol.PlayerColor, 0, g.Players)
	for _, c := range protocol.ColorOrder[:g.Players] {
		if !used[c] {
			unused = append(unused, c)
		}
	}
	return unused[rng.Intn(len(unused))]
}

// handles lists every seated handle in seating order.
func (g *Game) handles() []string {
	out := make([]string, len(g.seating))
	copy(out, g.seating)
	return out
}

// humanHandles lists seated human handles in seating order.
func (g *Game) humanHandles() []string {
	out := make([]string, 0, len(g.seating))
	for _, h := range g.seating {
		if gp, ok := g.gamePlayers[h]; ok && gp.Kind == protocol.PlayerHuman {
			out = append(out, h)
		}
	}
	return out
}

// seats renders the seating chart handed to the rules engine.
func (g *Game) seats() []rules.Seat {
	out := make([]rules.Seat, 0, len(g.seating))
	for _, h := range g.seating {
		gp := g.gamePlayers[h]
		out = append(out, rules.Seat{Handle: gp.Handle, Color: gp.Color, Kind: gp.Kind})
	}
	return out
}

func (g *Game) playerInfos() []protocol.GamePlayerInfo {
	out := make([]protocol.GamePlayerInfo, 0, len(g.seating))
	for _, h := range g.seating {
		gp := g.gamePlayers[h]
		out = append(out, protocol.GamePlayerInfo{Handle: gp.Handle, Color: gp.Color, Type: gp.Kind, State: gp.State})
	}
	return out
}

func (g *Game) toAdvertisedGame() protocol.AdvertisedGame {
	invited := make([]string, 0, len(g.InvitedHandles))
	invited = append(invited, g.InvitedHandles...)
	return protocol.AdvertisedGame{
		GameID:           g.ID,
		Name:             g.Name,
		Mode:             g.Mode,
		AdvertiserHandle: g.AdvertiserHandle,
		Players:          g.Players,
		Available:        g.Players - len(g.seating),
		Visibility:       g.Visibility,
		InvitedHandles:   invited,
	}
}
