package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/parlorgames/backend/internal/protocol"
)

// Player is one registered player. All fields are guarded by the
// manager lock; the id doubles as the player's credential and must
// never be shared with other players.
type Player struct {
	ID               string
	Handle           string
	Transport        Transport
	RegistrationTime time.Time
	LastActiveTime   time.Time
	Activity         protocol.ActivityState
	Connection       protocol.ConnectionState
	Participation    protocol.PlayerState
	GameID           string
}

func newPlayer(handle string, t Transport, now time.Time) *Player {
	return &Player{
		ID:               uuid.NewString(),
		Handle:           handle,
		Transport:        t,
		RegistrationTime: now,
		LastActiveTime:   now,
		Activity:         protocol.ActivityActive,
		Connection:       protocol.ConnectionConnected,
		Participation:    protocol.PlayerWaiting,
	}
}

func (p *Player) markActive(now time.Time) {
	p.LastActiveTime = now
	p.Activity = protocol.ActivityActive
	p.Connection = protocol.ConnectionConnected
}

func (p *Player) markIdle() {
	p.Activity = protocol.ActivityIdle
}

func (p *Player) markInactive() {
	p.Activity = protocol.ActivityInactive
}

func (p *Player) markJoined(gameID string) {
	p.GameID = gameID
	p.Participation = protocol.PlayerJoined
}

func (p *Player) markPlaying() {
	p.Participation = protocol.PlayerPlaying
}

// markQuit detaches the player from their game, leaving them ready to
// join another.
func (p *Player) markQuit() {
	p.GameID = ""
	p.Participation = protocol.PlayerWaiting
}

// markDisconnected records that the player's transport is gone. The
// registration survives so the player can reregister later.
func (p *Player) markDisconnected() {
	p.markQuit()
	p.Transport = nil
	p.Connection = protocol.ConnectionDisconnected
	p.Activity = protocol.ActivityIdle
}

func (p *Player) toRegisteredPlayer() protocol.RegisteredPlayer {
	return protocol.RegisteredPlayer{
		Handle:           p.Handle,
		RegistrationDate: protocol.NewTimestamp(p.RegistrationTime),
		LastActiveDate:   protocol.NewTimestamp(p.LastActiveTime),
		ConnectionState:  p.Connection,
		ActivityState:    p.Activity,
		PlayState:        p.Participation,
		GameID:           p.GameID,
	}
}
