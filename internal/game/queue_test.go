package game

import (
	"testing"

	"go.uber.org/zap"

	"github.com/parlorgames/backend/internal/protocol"
)

func testQueue() *TaskQueue {
	return NewTaskQueue(zap.NewNop().Sugar())
}

func TestQueueDeduplicatesPerTransport(t *testing.T) {
	q := testQueue()
	alpha := &fakeTransport{name: "alpha"}
	q.Message(&protocol.Envelope{Message: protocol.MessageGameStarted}, alpha, alpha, nil)
	q.Flush()
	if len(alpha.sent) != 1 {
		t.Errorf("expected one frame after dedup, got %d", len(alpha.sent))
	}
}

func TestQueuePreservesOrderPerTransport(t *testing.T) {
	q := testQueue()
	alpha := &fakeTransport{name: "alpha"}
	q.Message(&protocol.Envelope{Message: protocol.MessageGameStarted}, alpha)
	q.Message(&protocol.Envelope{Message: protocol.MessageGameIdle}, alpha)
	q.Flush()
	kinds := alpha.kinds(t)
	if len(kinds) != 2 || kinds[0] != protocol.MessageGameStarted || kinds[1] != protocol.MessageGameIdle {
		t.Errorf("frames out of order: %v", kinds)
	}
}

func TestQueueSuppressesSendsToDisconnecting(t *testing.T) {
	q := testQueue()
	alpha := &fakeTransport{name: "alpha"}
	beta := &fakeTransport{name: "beta"}
	q.Message(&protocol.Envelope{Message: protocol.MessagePlayerInactive}, alpha, beta)
	q.Disconnect(alpha)
	q.Flush()
	if !alpha.closed {
		t.Errorf("marked transport should be closed")
	}
	if len(alpha.sent) != 0 {
		t.Errorf("marked transport should receive nothing, got %d frames", len(alpha.sent))
	}
	if len(beta.sent) != 1 {
		t.Errorf("unmarked transport should still receive its frame")
	}
}

func TestQueueDisconnectIsIdempotent(t *testing.T) {
	q := testQueue()
	alpha := &fakeTransport{name: "alpha"}
	q.Disconnect(alpha)
	q.Disconnect(alpha)
	q.Disconnect(nil)
	if len(q.disconnects) != 1 {
		t.Errorf("expected one disconnect intent, got %d", len(q.disconnects))
	}
}

func TestQueueClosesTransportOnSendFailure(t *testing.T) {
	q := testQueue()
	alpha := &fakeTransport{name: "alpha"}
	alpha.closed = true // sends will fail
	beta := &fakeTransport{name: "beta"}
	q.Message(&protocol.Envelope{Message: protocol.MessageGameStarted}, alpha, beta)
	q.Flush()
	if len(beta.sent) != 1 {
		t.Errorf("a failing peer must not block delivery to others")
	}
}

func TestQueueSkipsNilTransports(t *testing.T) {
	q := testQueue()
	q.Message(&protocol.Envelope{Message: protocol.MessageGameStarted}, nil)
	q.MessagePlayers(&protocol.Envelope{Message: protocol.MessageGameStarted}, []*Player{{Handle: "ghost"}})
	if !q.IsEmpty() {
		t.Errorf("nil transports should queue nothing")
	}
}
