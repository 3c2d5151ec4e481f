package protocol

// GameMode is the flavor of play a game is advertised with.
type GameMode string

const (
	ModeStandard GameMode = "STANDARD"
	ModeAdult    GameMode = "ADULT"
)

// IsValid reports whether the mode is a known game mode.
func (m GameMode) IsValid() bool {
	return m == ModeStandard || m == ModeAdult
}

// Visibility controls which players may see and join an advertised game.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// IsValid reports whether the visibility is a known value.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// PlayerType distinguishes humans from server-managed fill-in players.
type PlayerType string

const (
	PlayerHuman        PlayerType = "HUMAN"
	PlayerProgrammatic PlayerType = "PROGRAMMATIC"
)

// PlayerState is a player's participation state within a game.
type PlayerState string

const (
	PlayerWaiting      PlayerState = "WAITING"
	PlayerJoined       PlayerState = "JOINED"
	PlayerPlaying      PlayerState = "PLAYING"
	PlayerFinished     PlayerState = "FINISHED"
	PlayerQuit         PlayerState = "QUIT"
	PlayerDisconnected PlayerState = "DISCONNECTED"
)

// IsPlayable reports whether a seat in this state still counts toward game viability.
func (s PlayerState) IsPlayable() bool {
	switch s {
	case PlayerWaiting, PlayerJoined, PlayerPlaying, PlayerFinished:
		return true
	}
	return false
}

// PlayerColor identifies a seat at the board.
type PlayerColor string

const (
	ColorRed    PlayerColor = "RED"
	ColorYellow PlayerColor = "YELLOW"
	ColorGreen  PlayerColor = "GREEN"
	ColorBlue   PlayerColor = "BLUE"
)

// ColorOrder lists the colors in assignment order. A game with N seats
// draws only from the first N entries.
var ColorOrder = []PlayerColor{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// ConnectionState tracks whether a registered player has a live transport.
type ConnectionState string

const (
	ConnectionConnected    ConnectionState = "CONNECTED"
	ConnectionDisconnected ConnectionState = "DISCONNECTED"
)

// ActivityState classifies how recently a player or game showed signs of life.
type ActivityState string

const (
	ActivityActive   ActivityState = "ACTIVE"
	ActivityIdle     ActivityState = "IDLE"
	ActivityInactive ActivityState = "INACTIVE"
)

// GameState is the lifecycle state of a tracked game.
type GameState string

const (
	GameAdvertised GameState = "ADVERTISED"
	GamePlaying    GameState = "PLAYING"
	GameCompleted  GameState = "COMPLETED"
	GameCancelled  GameState = "CANCELLED"
)

// InProgress reports whether the game is still running or waiting to run.
func (s GameState) InProgress() bool {
	return s == GameAdvertised || s == GamePlaying
}

// CancelledReason says why a game was cancelled.
type CancelledReason string

const (
	CancelledByAdvertiser CancelledReason = "CANCELLED"
	CancelledNotViable    CancelledReason = "NOT_VIABLE"
	CancelledInactive     CancelledReason = "INACTIVE"
	CancelledShutdown     CancelledReason = "SHUTDOWN"
)

// DefaultComment is the human-readable explanation used when a cancel
// carries no caller-supplied comment.
func (r CancelledReason) DefaultComment() string {
	switch r {
	case CancelledByAdvertiser:
		return "Game was cancelled by advertiser"
	case CancelledNotViable:
		return "Game is no longer viable"
	case CancelledInactive:
		return "Game was idle too long"
	case CancelledShutdown:
		return "Server was shut down"
	}
	return string(r)
}
