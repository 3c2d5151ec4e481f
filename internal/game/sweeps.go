package game

import (
	"context"
	"time"

	"github.com/parlorgames/backend/internal/protocol"
)

// Periodic sweeps. Each sweep takes the manager lock, walks a snapshot
// of the store and queues any resulting work; the worker flushes after
// the lock is released. Thresholds are strict: a player or game exactly
// at a threshold is not yet over it.

// HandleIdlePlayerSweep classifies every player by how long ago they
// were last active. Players over the inactive threshold, or
// disconnected and over the idle threshold, are unregistered.
func (m *Manager) HandleIdlePlayerSweep() *TaskQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := NewTaskQueue(m.log)
	now := m.now()
	idle := time.Duration(m.cfg.PlayerIdleThreshMin) * time.Minute
	inactive := time.Duration(m.cfg.PlayerInactiveThreshMin) * time.Minute
	for _, p := range m.store.allPlayers() {
		elapsed := now.Sub(p.LastActiveTime)
		switch {
		case elapsed > inactive, p.Connection == protocol.ConnectionDisconnected && elapsed > idle:
			if err := m.playerInactiveEvent(q, p); err != nil {
				m.log.Errorf("evicting inactive player %s: %v", p.Handle, err)
			}
		case elapsed > idle:
			if p.Activity != protocol.ActivityIdle {
				m.playerIdleEvent(q, p)
			}
		}
	}
	return q
}

// HandleIdleGameSweep classifies every in-progress game the same way.
// Games over the inactive threshold are cancelled.
func (m *Manager) HandleIdleGameSweep() *TaskQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := NewTaskQueue(m.log)
	now := m.now()
	idle := time.Duration(m.cfg.GameIdleThreshMin) * time.Minute
	inactive := time.Duration(m.cfg.GameInactiveThreshMin) * time.Minute
	for _, g := range m.store.inProgressGames() {
		elapsed := now.Sub(g.LastActiveTime)
		switch {
		case elapsed > inactive:
			if err := m.gameInactiveEvent(q, g); err != nil {
				m.log.Errorf("cancelling inactive game %s: %v", g.ID, err)
			}
		case elapsed > idle:
			if g.Activity != protocol.ActivityIdle {
				m.gameIdleEvent(q, g)
			}
		}
	}
	return q
}

// HandleObsoleteGameSweep deletes finished games past the retention
// window. Nobody is told; the players moved on long ago.
func (m *Manager) HandleObsoleteGameSweep() *TaskQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := NewTaskQueue(m.log)
	now := m.now()
	retention := time.Duration(m.cfg.GameRetentionThreshMin) * time.Minute
	for _, g := range m.store.allGames() {
		if g.State.InProgress() {
			continue
		}
		if now.Sub(g.CompletedTime) > retention {
			m.gameObsoleteEvent(g)
		}
	}
	return q
}

// RunSweeps starts the three sweep workers. Each waits its configured
// delay, then runs its sweep on its configured period until the context
// is cancelled.
func (m *Manager) RunSweeps(ctx context.Context) {
	go m.runSweep(ctx, "idle-player",
		time.Duration(m.cfg.IdlePlayerCheckDelaySec)*time.Second,
		time.Duration(m.cfg.IdlePlayerCheckPeriodSec)*time.Second,
		m.HandleIdlePlayerSweep)
	go m.runSweep(ctx, "idle-game",
		time.Duration(m.cfg.IdleGameCheckDelaySec)*time.Second,
		time.Duration(m.cfg.IdleGameCheckPeriodSec)*time.Second,
		m.HandleIdleGameSweep)
	go m.runSweep(ctx, "obsolete-game",
		time.Duration(m.cfg.ObsoleteGameCheckDelaySec)*time.Second,
		time.Duration(m.cfg.ObsoleteGameCheckPeriodSec)*time.Second,
		m.HandleObsoleteGameSweep)
}

func (m *Manager) runSweep(ctx context.Context, name string, delay, period time.Duration, sweep func() *TaskQueue) {
	m.log.Infof("[SWEEP] %s worker started (delay %s, period %s)", name, delay, period)
	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Infof("[SWEEP] %s worker stopping", name)
			return
		case <-ticker.C:
			sweep().Flush()
		}
	}
}
