package emoji

// Inbound event types
const (
	EventCreateRoom  = "create_room"
	EventJoinRoom    = "join_room"
	EventStartGame   = "start_game"
	EventSubmitGuess = "submit_guess"
)

// Outbound notification types
const (
	TypeRoomCreated    = "room_created"
	TypeRoomJoined     = "room_joined"
	TypePlayerJoined   = "player_joined"
	TypePlayerLeft     = "player_left"
	TypeRoundStarted   = "round_started"
	TypeCorrectGuess   = "correct_guess"
	TypeIncorrectGuess = "incorrect_guess"
	TypeRoundEnded     = "round_ended"
	TypeGameEnded      = "game_ended"
	TypeError          = "error"
)

// ClientMessage is anything a client can send.
type ClientMessage struct {
	Type       string `json:"type"`                 // create_room, join_room, start_game, submit_guess
	PlayerName string `json:"playerName,omitempty"` // create_room / join_room
	RoomID     string `json:"roomId,omitempty"`     // join_room
	Guess      string `json:"guess,omitempty"`      // submit_guess
}

// Notification is an outbound message addressed to a set of connections.
type Notification struct {
	To      []string
	Message any
}

// PlayerView is the public form of a player.
type PlayerView struct {
	ID         string `json:"socketId"`
	Name       string `json:"name"`
	TotalScore int    `json:"totalScore"`
	IsHost     bool   `json:"isHost"`
}

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	ID    string `json:"socketId"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundResult is one correct answer within a round.
type RoundResult struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	TimeToAnswer int64  `json:"timeToAnswer"`
	Points       int    `json:"points"`
}

// RoomCreatedMessage and RoomJoinedMessage are sent to the connection that
// created or joined the room.
type RoomCreatedMessage struct {
	Type    string       `json:"type"` // "room_created"
	RoomID  string       `json:"roomId"`
	IsHost  bool         `json:"isHost"`
	Players []PlayerView `json:"players"`
}

type RoomJoinedMessage struct {
	Type    string       `json:"type"` // "room_joined"
	RoomID  string       `json:"roomId"`
	IsHost  bool         `json:"isHost"`
	Players []PlayerView `json:"players"`
}

type PlayerJoinedMessage struct {
	Type    string       `json:"type"` // "player_joined"
	Player  PlayerView   `json:"player"`
	Players []PlayerView `json:"players"`
}

type PlayerLeftMessage struct {
	Type       string       `json:"type"` // "player_left"
	PlayerName string       `json:"playerName"`
	Players    []PlayerView `json:"players"`
}

type RoundStartedMessage struct {
	Type       string `json:"type"` // "round_started"
	Round      int    `json:"round"`
	MaxRounds  int    `json:"maxRounds"`
	Emojis     string `json:"emojis"`
	Difficulty int    `json:"difficulty"`
	DurationMs int64  `json:"durationMs"`
}

type CorrectGuessMessage struct {
	Type            string `json:"type"` // "correct_guess"
	PlayerID        string `json:"playerId"`
	PlayerName      string `json:"playerName"`
	Points          int    `json:"points"`
	TimeToAnswer    int64  `json:"timeToAnswer"`
	PlayersAnswered int    `json:"playersAnswered"`
	TotalPlayers    int    `json:"totalPlayers"`
	NewScore        int    `json:"newScore"`
}

// IncorrectGuessMessage carries nothing but its type, so the answer never leaks.
type IncorrectGuessMessage struct {
	Type string `json:"type"` // "incorrect_guess"
}

type RoundEndedMessage struct {
	Type        string             `json:"type"` // "round_ended"
	Round       int                `json:"round"`
	Answer      string             `json:"answer"`
	Results     []RoundResult      `json:"results"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type GameEndedMessage struct {
	Type             string             `json:"type"` // "game_ended"
	Winner           *LeaderboardEntry  `json:"winner"`
	FinalLeaderboard []LeaderboardEntry `json:"finalLeaderboard"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

func errorNotification(to string, err error) Notification {
	return Notification{
		To:      []string{to},
		Message: ErrorMessage{Type: TypeError, Message: err.Error()},
	}
}
