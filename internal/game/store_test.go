package game

import (
	"errors"
	"testing"
	"time"

	"github.com/parlorgames/backend/internal/protocol"
)

func TestStoreCreatePlayerRejectsDuplicateHandle(t *testing.T) {
	s := newStore()
	now := time.Now()
	if _, err := s.createPlayer("leela", &fakeTransport{name: "alpha"}, now); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := s.createPlayer("leela", &fakeTransport{name: "beta"}, now)
	if err == nil {
		t.Fatalf("duplicate handle should fail")
	}
	var pe *protocol.ProcessingError
	if !errors.As(err, &pe) || pe.Reason != protocol.ReasonDuplicateUser {
		t.Errorf("expected DUPLICATE_USER, got %v", err)
	}
}

func TestStoreDeletePlayerFreesHandle(t *testing.T) {
	s := newStore()
	p, err := s.createPlayer("leela", &fakeTransport{name: "alpha"}, time.Now())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	s.deletePlayer(p)
	if s.playerByID(p.ID) != nil || s.playerByHandle("leela") != nil {
		t.Errorf("deleted player still resolvable")
	}
	if _, err := s.createPlayer("leela", &fakeTransport{name: "beta"}, time.Now()); err != nil {
		t.Errorf("handle should be free again: %v", err)
	}
}

func TestStoreLookupsMissReturnNil(t *testing.T) {
	s := newStore()
	if s.playerByID("nope") != nil || s.playerByHandle("nope") != nil {
		t.Errorf("player lookups should miss")
	}
	if s.gameByID("nope") != nil || s.gameByID("") != nil {
		t.Errorf("game lookups should miss")
	}
	if s.playerByTransport(&fakeTransport{name: "alpha"}) != nil {
		t.Errorf("transport lookup should miss")
	}
}

func TestStorePlayerByTransport(t *testing.T) {
	s := newStore()
	alpha := &fakeTransport{name: "alpha"}
	p, _ := s.createPlayer("leela", alpha, time.Now())
	if got := s.playerByTransport(alpha); got != p {
		t.Errorf("wrong player for transport: %v", got)
	}
}

func TestStoreInProgressGameCount(t *testing.T) {
	s := newStore()
	now := time.Now()
	mk := func(state protocol.GameState) {
		g := newGame("leela", publicGame(2), now)
		g.State = state
		s.addGame(g)
	}
	mk(protocol.GameAdvertised)
	mk(protocol.GamePlaying)
	mk(protocol.GameCompleted)
	mk(protocol.GameCancelled)
	if got := s.inProgressGameCount(); got != 2 {
		t.Errorf("expected 2 in-progress games, got %d", got)
	}
	if got := len(s.inProgressGames()); got != 2 {
		t.Errorf("expected 2 in-progress games listed, got %d", got)
	}
	if s.gameCount() != 4 {
		t.Errorf("expected 4 games total, got %d", s.gameCount())
	}
}
