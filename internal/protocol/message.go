package protocol

import (
	"bytes"
	"encoding/json"
)

// MessageType names a request or event on the wire.
type MessageType string

// Requests accepted from clients.
const (
	MessageRegisterPlayer     MessageType = "REGISTER_PLAYER"
	MessageReregisterPlayer   MessageType = "REREGISTER_PLAYER"
	MessageUnregisterPlayer   MessageType = "UNREGISTER_PLAYER"
	MessageListPlayers        MessageType = "LIST_PLAYERS"
	MessageAdvertiseGame      MessageType = "ADVERTISE_GAME"
	MessageListAvailableGames MessageType = "LIST_AVAILABLE_GAMES"
	MessageJoinGame           MessageType = "JOIN_GAME"
	MessageQuitGame           MessageType = "QUIT_GAME"
	MessageStartGame          MessageType = "START_GAME"
	MessageCancelGame         MessageType = "CANCEL_GAME"
	MessageExecuteMove        MessageType = "EXECUTE_MOVE"
	MessageRetrieveGameState  MessageType = "RETRIEVE_GAME_STATE"
	MessageSendMessage        MessageType = "SEND_MESSAGE"
)

// Events published by the server.
const (
	MessageRequestFailed         MessageType = "REQUEST_FAILED"
	MessageServerShutdown        MessageType = "SERVER_SHUTDOWN"
	MessageRegisteredPlayers     MessageType = "REGISTERED_PLAYERS"
	MessageAvailableGames        MessageType = "AVAILABLE_GAMES"
	MessagePlayerRegistered      MessageType = "PLAYER_REGISTERED"
	MessagePlayerDisconnected    MessageType = "PLAYER_DISCONNECTED"
	MessagePlayerIdle            MessageType = "PLAYER_IDLE"
	MessagePlayerInactive        MessageType = "PLAYER_INACTIVE"
	MessagePlayerMessageReceived MessageType = "PLAYER_MESSAGE_RECEIVED"
	MessageGameAdvertised        MessageType = "GAME_ADVERTISED"
	MessageGameInvitation        MessageType = "GAME_INVITATION"
	MessageGameJoined            MessageType = "GAME_JOINED"
	MessageGameStarted           MessageType = "GAME_STARTED"
	MessageGameCancelled         MessageType = "GAME_CANCELLED"
	MessageGameCompleted         MessageType = "GAME_COMPLETED"
	MessageGameIdle              MessageType = "GAME_IDLE"
	MessageGameInactive          MessageType = "GAME_INACTIVE"
	MessageGameObsolete          MessageType = "GAME_OBSOLETE"
	MessageGamePlayerChange      MessageType = "GAME_PLAYER_CHANGE"
	MessageGameStateChange       MessageType = "GAME_STATE_CHANGE"
	MessageGamePlayerTurn        MessageType = "GAME_PLAYER_TURN"
)

// Envelope is the framing shared by every request and event. Context is
// nil for kinds that carry none, otherwise a pointer to the kind's
// context struct.
type Envelope struct {
	Message MessageType
	Context any
}

// MarshalJSON renders {"message": ..., "context": ...}, omitting the
// context key entirely for kinds that carry none.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.Context == nil {
		return json.Marshal(struct {
			Message MessageType `json:"message"`
		}{e.Message})
	}
	return json.Marshal(struct {
		Message MessageType `json:"message"`
		Context any         `json:"context"`
	}{e.Message, e.Context})
}

// Encode serializes an envelope for the wire.
func Encode(e *Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// RegisterPlayerContext carries the handle a new player wants to claim.
type RegisterPlayerContext struct {
	Handle string `json:"handle"`
}

func (c *RegisterPlayerContext) validate() error {
	return requireString("handle", c.Handle)
}

// AdvertiseGameContext describes a game to be advertised.
type AdvertiseGameContext struct {
	Name           string     `json:"name"`
	Mode           GameMode   `json:"mode"`
	Players        int        `json:"players"`
	Visibility     Visibility `json:"visibility"`
	InvitedHandles []string   `json:"invited_handles"`
}

func (c *AdvertiseGameContext) validate() error {
	if err := requireString("name", c.Name); err != nil {
		return err
	}
	if !c.Mode.IsValid() {
		return NewErrorf(ReasonInvalidRequest, "Mode %q is not a valid game mode", string(c.Mode))
	}
	if c.Players < 2 || c.Players > 4 {
		return NewErrorf(ReasonInvalidRequest, "Players must be 2, 3 or 4")
	}
	if !c.Visibility.IsValid() {
		return NewErrorf(ReasonInvalidRequest, "Visibility %q is not valid", string(c.Visibility))
	}
	for _, h := range c.InvitedHandles {
		if err := requireString("invited_handles", h); err != nil {
			return err
		}
	}
	return nil
}

// JoinGameContext identifies the game a player wants to join.
type JoinGameContext struct {
	GameID string `json:"game_id"`
}

func (c *JoinGameContext) validate() error {
	return requireString("game_id", c.GameID)
}

// ExecuteMoveContext identifies the move a player chose.
type ExecuteMoveContext struct {
	MoveID string `json:"move_id"`
}

func (c *ExecuteMoveContext) validate() error {
	return requireString("move_id", c.MoveID)
}

// SendMessageContext carries a chat message and its recipients.
type SendMessageContext struct {
	Message          string   `json:"message"`
	RecipientHandles []string `json:"recipient_handles"`
}

func (c *SendMessageContext) validate() error {
	if err := requireString("message", c.Message); err != nil {
		return err
	}
	if len(c.RecipientHandles) == 0 {
		return NewErrorf(ReasonInvalidRequest, "Recipient handles may not be empty")
	}
	for _, h := range c.RecipientHandles {
		if err := requireString("recipient_handles", h); err != nil {
			return err
		}
	}
	return nil
}

// RequestFailedContext reports why a request was rejected.
type RequestFailedContext struct {
	Reason  FailureReason `json:"reason"`
	Comment string        `json:"comment"`
}

// RegisteredPlayer is one player's public record in a LIST_PLAYERS response.
type RegisteredPlayer struct {
	Handle           string          `json:"handle"`
	RegistrationDate Timestamp       `json:"registration_date"`
	LastActiveDate   Timestamp       `json:"last_active_date"`
	ConnectionState  ConnectionState `json:"connection_state"`
	ActivityState    ActivityState   `json:"activity_state"`
	PlayState        PlayerState     `json:"play_state"`
	GameID           string          `json:"game_id"`
}

// RegisteredPlayersContext is the LIST_PLAYERS response payload.
type RegisteredPlayersContext struct {
	Players []RegisteredPlayer `json:"players"`
}

// AdvertisedGame is the public snapshot of an advertised game.
type AdvertisedGame struct {
	GameID           string     `json:"game_id"`
	Name             string     `json:"name"`
	Mode             GameMode   `json:"mode"`
	AdvertiserHandle string     `json:"advertiser_handle"`
	Players          int        `json:"players"`
	Available        int        `json:"available"`
	Visibility       Visibility `json:"visibility"`
	InvitedHandles   []string   `json:"invited_handles"`
}

// AvailableGamesContext is the LIST_AVAILABLE_GAMES response payload.
type AvailableGamesContext struct {
	Games []AdvertisedGame `json:"games"`
}

// PlayerRegisteredContext hands the new player its id and confirms the handle.
type PlayerRegisteredContext struct {
	PlayerID string `json:"player_id"`
	Handle   string `json:"handle"`
}

// PlayerMessageReceivedContext delivers a chat message.
type PlayerMessageReceivedContext struct {
	SenderHandle     string   `json:"sender_handle"`
	RecipientHandles []string `json:"recipient_handles"`
	Message          string   `json:"message"`
}

// GameAdvertisedContext confirms a newly advertised game to its advertiser.
type GameAdvertisedContext struct {
	Game AdvertisedGame `json:"game"`
}

// GameInvitationContext invites a registered player to a private game.
type GameInvitationContext struct {
	Game AdvertisedGame `json:"game"`
}

// GameJoinedContext confirms that the recipient joined the game.
type GameJoinedContext struct {
	GameID string `json:"game_id"`
}

// GameCancelledContext reports that a game was cancelled.
type GameCancelledContext struct {
	Reason  CancelledReason `json:"reason"`
	Comment string          `json:"comment"`
}

// GameCompletedContext reports that a game ran to completion.
type GameCompletedContext struct {
	Comment string `json:"comment"`
}

// GamePlayerInfo is one seat's public state in a GAME_PLAYER_CHANGE event.
type GamePlayerInfo struct {
	Handle string      `json:"handle"`
	Color  PlayerColor `json:"color"`
	Type   PlayerType  `json:"type"`
	State  PlayerState `json:"state"`
}

// GamePlayerChangeContext reports a change in a game's seat assignments.
type GamePlayerChangeContext struct {
	Comment string           `json:"comment"`
	Players []GamePlayerInfo `json:"players"`
}

// GameStateChangeContext carries one player's view of the board.
type GameStateChangeContext struct {
	GameID string          `json:"game_id"`
	View   json.RawMessage `json:"view"`
}

// GameMove is one legal move offered to a player.
type GameMove struct {
	MoveID      string `json:"move_id"`
	Description string `json:"description"`
}

// GamePlayerTurnContext tells a player it is their turn and what they may do.
type GamePlayerTurnContext struct {
	Handle string     `json:"handle"`
	GameID string     `json:"game_id"`
	Moves  []GameMove `json:"moves"`
}

// validator is implemented by request contexts that carry field constraints.
type validator interface {
	validate() error
}

// contextFactories maps each kind to a constructor for its context
// struct. A nil entry means the kind carries no context.
var contextFactories = map[MessageType]func() any{
	MessageRegisterPlayer:     func() any { return &RegisterPlayerContext{} },
	MessageReregisterPlayer:   nil,
	MessageUnregisterPlayer:   nil,
	MessageListPlayers:        nil,
	MessageAdvertiseGame:      func() any { return &AdvertiseGameContext{} },
	MessageListAvailableGames: nil,
	MessageJoinGame:           func() any { return &JoinGameContext{} },
	MessageQuitGame:           nil,
	MessageStartGame:          nil,
	MessageCancelGame:         nil,
	MessageExecuteMove:        func() any { return &ExecuteMoveContext{} },
	MessageRetrieveGameState:  nil,
	MessageSendMessage:        func() any { return &SendMessageContext{} },

	MessageRequestFailed:         func() any { return &RequestFailedContext{} },
	MessageServerShutdown:        nil,
	MessageRegisteredPlayers:     func() any { return &RegisteredPlayersContext{} },
	MessageAvailableGames:        func() any { return &AvailableGamesContext{} },
	MessagePlayerRegistered:      func() any { return &PlayerRegisteredContext{} },
	MessagePlayerDisconnected:    nil,
	MessagePlayerIdle:            nil,
	MessagePlayerInactive:        nil,
	MessagePlayerMessageReceived: func() any { return &PlayerMessageReceivedContext{} },
	MessageGameAdvertised:        func() any { return &GameAdvertisedContext{} },
	MessageGameInvitation:        func() any { return &GameInvitationContext{} },
	MessageGameJoined:            func() any { return &GameJoinedContext{} },
	MessageGameStarted:           nil,
	MessageGameCancelled:         func() any { return &GameCancelledContext{} },
	MessageGameCompleted:         func() any { return &GameCompletedContext{} },
	MessageGameIdle:              nil,
	MessageGameInactive:          nil,
	MessageGameObsolete:          nil,
	MessageGamePlayerChange:      func() any { return &GamePlayerChangeContext{} },
	MessageGameStateChange:       func() any { return &GameStateChangeContext{} },
	MessageGamePlayerTurn:        func() any { return &GamePlayerTurnContext{} },
}

// Decode parses and validates one wire message. Every failure is an
// INVALID_REQUEST ProcessingError describing what was wrong.
func Decode(data []byte) (*Envelope, error) {
	var raw struct {
		Message *MessageType    `json:"message"`
		Context json.RawMessage `json:"context"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewErrorf(ReasonInvalidRequest, "Message is not valid JSON")
	}
	if raw.Message == nil || *raw.Message == "" {
		return nil, NewErrorf(ReasonInvalidRequest, "Message kind is missing")
	}
	kind := *raw.Message
	factory, known := contextFactories[kind]
	if !known {
		return nil, NewErrorf(ReasonInvalidRequest, "Message kind %q is not known", string(kind))
	}
	if factory == nil {
		if len(raw.Context) > 0 && !bytes.Equal(raw.Context, []byte("null")) {
			return nil, NewErrorf(ReasonInvalidRequest, "Message %q does not allow a context", string(kind))
		}
		return &Envelope{Message: kind}, nil
	}
	if len(raw.Context) == 0 || bytes.Equal(raw.Context, []byte("null")) {
		return nil, NewErrorf(ReasonInvalidRequest, "Message %q requires a context", string(kind))
	}
	ctx := factory()
	dec := json.NewDecoder(bytes.NewReader(raw.Context))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ctx); err != nil {
		return nil, NewErrorf(ReasonInvalidRequest, "Context for %q is not valid: %s", string(kind), err)
	}
	if v, ok := ctx.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return &Envelope{Message: kind, Context: ctx}, nil
}

// requireString rejects empty strings and the literal "None".
func requireString(field, value string) error {
	if value == "" || value == "None" {
		return NewErrorf(ReasonInvalidRequest, "Field %q may not be empty", field)
	}
	return nil
}
