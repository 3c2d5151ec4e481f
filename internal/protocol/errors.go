package protocol

import (
	"errors"
	"fmt"
)

// FailureReason is the machine-readable category attached to a REQUEST_FAILED event.
type FailureReason string

const (
	ReasonInvalidRequest       FailureReason = "INVALID_REQUEST"
	ReasonMissingAuth          FailureReason = "MISSING_AUTH"
	ReasonInvalidPlayer        FailureReason = "INVALID_PLAYER"
	ReasonDuplicateUser        FailureReason = "DUPLICATE_USER"
	ReasonUserLimitReached     FailureReason = "USER_LIMIT_REACHED"
	ReasonGameLimitReached     FailureReason = "GAME_LIMIT_REACHED"
	ReasonAlreadyPlaying       FailureReason = "ALREADY_PLAYING"
	ReasonNotPlaying           FailureReason = "NOT_PLAYING"
	ReasonInvalidGame          FailureReason = "INVALID_GAME"
	ReasonNotAdvertiser        FailureReason = "NOT_ADVERTISER"
	ReasonAdvertiserMayNotQuit FailureReason = "ADVERTISER_MAY_NOT_QUIT"
	ReasonNoMovePending        FailureReason = "NO_MOVE_PENDING"
	ReasonIllegalMove          FailureReason = "ILLEGAL_MOVE"
	ReasonInternalError        FailureReason = "INTERNAL_ERROR"
)

// DefaultComment is the human-readable explanation used when a failure
// carries no more specific comment.
func (r FailureReason) DefaultComment() string {
	switch r {
	case ReasonInvalidRequest:
		return "Message is not valid"
	case ReasonMissingAuth:
		return "Missing or invalid authorization header"
	case ReasonInvalidPlayer:
		return "Unknown or invalid player"
	case ReasonDuplicateUser:
		return "Handle is already in use"
	case ReasonUserLimitReached:
		return "System user limit reached"
	case ReasonGameLimitReached:
		return "System game limit reached"
	case ReasonAlreadyPlaying:
		return "Player is already playing a game"
	case ReasonNotPlaying:
		return "Player is not playing a game"
	case ReasonInvalidGame:
		return "Unknown or invalid game"
	case ReasonNotAdvertiser:
		return "Player did not advertise this game"
	case ReasonAdvertiserMayNotQuit:
		return "Advertiser may not quit a game (cancel instead)"
	case ReasonNoMovePending:
		return "No move is pending for this player"
	case ReasonIllegalMove:
		return "The chosen move is not legal"
	case ReasonInternalError:
		return "Internal error"
	}
	return string(r)
}

// ProcessingError is a request failure that maps onto a REQUEST_FAILED event.
type ProcessingError struct {
	Reason  FailureReason
	Comment string
}

func (e *ProcessingError) Error() string {
	return e.Comment
}

// NewError builds a ProcessingError carrying the reason's default comment.
func NewError(reason FailureReason) *ProcessingError {
	return &ProcessingError{Reason: reason, Comment: reason.DefaultComment()}
}

// NewErrorf builds a ProcessingError with a formatted comment.
func NewErrorf(reason FailureReason, format string, args ...any) *ProcessingError {
	return &ProcessingError{Reason: reason, Comment: fmt.Sprintf(format, args...)}
}

// AsProcessingError normalizes any error into a ProcessingError. Errors
// that are not already typed are reported as internal errors without
// leaking their text to the caller.
func AsProcessingError(err error) *ProcessingError {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe
	}
	return NewError(ReasonInternalError)
}

// NewFailure wraps an error into the single REQUEST_FAILED envelope sent
// back to the requesting connection.
func NewFailure(err error) *Envelope {
	pe := AsProcessingError(err)
	return &Envelope{
		Message: MessageRequestFailed,
		Context: &RequestFailedContext{Reason: pe.Reason, Comment: pe.Comment},
	}
}
