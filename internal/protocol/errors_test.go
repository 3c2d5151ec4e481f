package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestDefaultComments(t *testing.T) {
	reasons := []FailureReason{
		ReasonInvalidRequest, ReasonMissingAuth, ReasonInvalidPlayer,
		ReasonDuplicateUser, ReasonUserLimitReached, ReasonGameLimitReached,
		ReasonAlreadyPlaying, ReasonNotPlaying, ReasonInvalidGame,
		ReasonNotAdvertiser, ReasonAdvertiserMayNotQuit, ReasonNoMovePending,
		ReasonIllegalMove, ReasonInternalError,
	}
	for _, r := range reasons {
		if r.DefaultComment() == "" || r.DefaultComment() == string(r) {
			t.Errorf("reason %s has no human-readable comment", r)
		}
	}
}

func TestNewFailureFromProcessingError(t *testing.T) {
	err := NewErrorf(ReasonIllegalMove, "Move move-9 is not on offer")
	env := NewFailure(err)
	if env.Message != MessageRequestFailed {
		t.Errorf("wrong kind: %s", env.Message)
	}
	ctx := env.Context.(*RequestFailedContext)
	if ctx.Reason != ReasonIllegalMove || ctx.Comment != "Move move-9 is not on offer" {
		t.Errorf("wrong context: %+v", ctx)
	}
}

func TestNewFailureFromWrappedError(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewError(ReasonNotPlaying))
	ctx := NewFailure(err).Context.(*RequestFailedContext)
	if ctx.Reason != ReasonNotPlaying {
		t.Errorf("wrapped reason lost: %+v", ctx)
	}
}

func TestNewFailureMasksUntypedErrors(t *testing.T) {
	err := errors.New("pointer dereference in rules engine")
	ctx := NewFailure(err).Context.(*RequestFailedContext)
	if ctx.Reason != ReasonInternalError {
		t.Errorf("expected INTERNAL_ERROR, got %s", ctx.Reason)
	}
	if ctx.Comment != ReasonInternalError.DefaultComment() {
		t.Errorf("internal error text leaked to client: %q", ctx.Comment)
	}
}
