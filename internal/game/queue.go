package game

import (
	"go.uber.org/zap"

	"github.com/parlorgames/backend/internal/logging"
	"github.com/parlorgames/backend/internal/protocol"
)

// Transport is one client connection as the engine sees it. Send and
// Close must be safe to call from any goroutine.
type Transport interface {
	Send(data []byte) error
	Close() error
}

type queuedMessage struct {
	data      []byte
	transport Transport
}

// TaskQueue accumulates the messages and disconnects produced while the
// engine lock is held. Nothing touches the network until Flush, which
// callers run after releasing the lock.
type TaskQueue struct {
	log         *zap.SugaredLogger
	messages    []queuedMessage
	disconnects []Transport
	marked      map[Transport]bool
}

// NewTaskQueue builds an empty queue.
func NewTaskQueue(log *zap.SugaredLogger) *TaskQueue {
	return &TaskQueue{log: log, marked: make(map[Transport]bool)}
}

// IsEmpty reports whether the queue holds no work.
func (q *TaskQueue) IsEmpty() bool {
	return len(q.messages) == 0 && len(q.disconnects) == 0
}

// Message enqueues one envelope for each listed transport. Within a
// single call each transport receives the message at most once; nil
// transports are skipped.
func (q *TaskQueue) Message(env *protocol.Envelope, transports ...Transport) {
	data, err := protocol.Encode(env)
	if err != nil {
		q.log.Errorf("dropping unencodable %s event: %v", env.Message, err)
		return
	}
	seen := make(map[Transport]bool, len(transports))
	for _, t := range transports {
		if t == nil || seen[t] {
			continue
		}
		seen[t] = true
		q.messages = append(q.messages, queuedMessage{data: data, transport: t})
	}
}

// MessagePlayers enqueues one envelope for each player's transport.
func (q *TaskQueue) MessagePlayers(env *protocol.Envelope, players []*Player) {
	transports := make([]Transport, 0, len(players))
	for _, p := range players {
		transports = append(transports, p.Transport)
	}
	q.Message(env, transports...)
}

// Disconnect schedules a transport to be closed at flush time. Messages
// queued for a disconnecting transport are suppressed.
func (q *TaskQueue) Disconnect(t Transport) {
	if t == nil || q.marked[t] {
		return
	}
	q.marked[t] = true
	q.disconnects = append(q.disconnects, t)
}

// Flush performs the queued work: disconnects first, then sends. A send
// failure closes the offending transport and moves on.
func (q *TaskQueue) Flush() {
	for _, t := range q.disconnects {
		if err := t.Close(); err != nil {
			q.log.Debugf("closing connection failed: %v", err)
		}
	}
	for _, m := range q.messages {
		if q.marked[m.transport] {
			continue
		}
		q.log.Debugf("sending: %s", logging.Mask(string(m.data)))
		if err := m.transport.Send(m.data); err != nil {
			q.log.Warnf("send failed, closing connection: %v", err)
			_ = m.transport.Close()
		}
	}
}
