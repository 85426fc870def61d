/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package emoji

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Phase is the state of a room's state machine.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseInRound
	PhaseBetweenRounds
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseInRound:
		return "playing"
	case PhaseBetweenRounds:
		return "between_rounds"
	case PhaseFinished:
		return "finished"
	}

	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// MaxNameLength is the longest display name accepted, in characters.
const MaxNameLength = 20

// Settings controls game pacing.
type Settings struct {
	MaxRounds     int
	MinPlayers    int
	RoundDuration time.Duration
	RevealDelay   time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		MaxRounds:     6,
		MinPlayers:    2,
		RoundDuration: 60 * time.Second,
		RevealDelay:   5 * time.Second,
	}
}

// Scheduler runs fn after d. Implementations must run fn serialized with
// every other operation on the same room.
type Scheduler interface {
	Schedule(d time.Duration, fn func() []Notification)
}

// RoomOptions carries a room's collaborators.
type RoomOptions struct {
	Catalog   *Catalog
	Settings  Settings
	Scheduler Scheduler
	Now       func() time.Time
	Logger    *zap.Logger
}

// Player is a seated connection.
type Player struct {
	ID     string
	Name   string
	Score  int
	IsHost bool

	// seq is the join order; lower joined earlier.
	seq uint64
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:         p.ID,
		Name:       p.Name,
		TotalScore: p.Score,
		IsHost:     p.IsHost,
	}
}

type answer struct {
	elapsedMs int64
	points    int
}

// Room is one game. It is not safe for concurrent use; the Directory runs
// every call for a room on that room's actor.
type Room struct {
	code     string
	hostID   string
	players  map[string]*Player
	nextSeq  uint64
	settings Settings

	phase      Phase
	round      int
	current    *Phrase
	used       map[Phrase]struct{}
	roundStart time.Time
	answers    map[string]answer
	closed     bool

	catalog *Catalog
	sched   Scheduler
	now     func() time.Time
	log     *zap.Logger
}

// cleanName trims name and checks its length.
func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	return name, n >= 1 && n <= MaxNameLength
}

// NewRoom creates a room in the waiting phase with hostID as its only
// player and host.
func NewRoom(code, hostID, hostName string, opts RoomOptions) (*Room, []Notification, error) {
	name, ok := cleanName(hostName)
	if !ok {
		return nil, nil, ErrDropped
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Room{
		code:     code,
		hostID:   hostID,
		players:  make(map[string]*Player),
		settings: opts.Settings,
		phase:    PhaseWaiting,
		used:     make(map[Phrase]struct{}),
		answers:  make(map[string]answer),
		catalog:  opts.Catalog,
		sched:    opts.Scheduler,
		now:      opts.Now,
		log:      opts.Logger.With(zap.String("room", code)),
	}

	r.addPlayer(hostID, name, true)

	r.log.Info("room created", zap.String("host", name))

	return r, []Notification{{
		To: []string{hostID},
		Message: RoomCreatedMessage{
			Type:    TypeRoomCreated,
			RoomID:  code,
			IsHost:  true,
			Players: r.playerViews(),
		},
	}}, nil
}

func (r *Room) Code() string { return r.code }

func (r *Room) Phase() Phase { return r.phase }

func (r *Room) Round() int { return r.round }

func (r *Room) HostID() string { return r.hostID }

func (r *Room) Closed() bool { return r.closed }

// Player returns the seated player with the given handle, if any.
func (r *Room) Player(id string) (Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}

	return *p, true
}

func (r *Room) addPlayer(id, name string, host bool) *Player {
	p := &Player{
		ID:     id,
		Name:   name,
		IsHost: host,
		seq:    r.nextSeq,
	}
	r.nextSeq++
	r.players[id] = p

	return p
}

// ordered returns the players in join order.
func (r *Room) ordered() []*Player {
	list := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, p)
	}

	slices.SortFunc(list, func(a, b *Player) int {
		return cmp.Compare(a.seq, b.seq)
	})

	return list
}

func (r *Room) playerViews() []PlayerView {
	views := make([]PlayerView, 0, len(r.players))
	for _, p := range r.ordered() {
		views = append(views, p.view())
	}

	return views
}

func (r *Room) everyone() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.ordered() {
		ids = append(ids, p.ID)
	}

	return ids
}

func (r *Room) everyoneExcept(id string) []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.ordered() {
		if p.ID != id {
			ids = append(ids, p.ID)
		}
	}

	return ids
}

// Leaderboard ranks players by score, highest first, earlier joiners first
// on ties.
func (r *Room) Leaderboard() []LeaderboardEntry {
	list := r.ordered()

	slices.SortStableFunc(list, func(a, b *Player) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	board := make([]LeaderboardEntry, 0, len(list))
	for i, p := range list {
		board = append(board, LeaderboardEntry{
			Rank:  i + 1,
			ID:    p.ID,
			Name:  p.Name,
			Score: p.Score,
		})
	}

	return board
}

// Join seats a new player. Only allowed while waiting.
func (r *Room) Join(id, name string) ([]Notification, error) {
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if r.phase != PhaseWaiting {
		return nil, ErrGameInProgress
	}
	if _, seated := r.players[id]; seated {
		return nil, ErrDropped
	}

	name, ok := cleanName(name)
	if !ok {
		return nil, ErrDropped
	}

	p := r.addPlayer(id, name, false)
	players := r.playerViews()

	r.log.Info("player joined", zap.String("player", name), zap.Int("players", len(players)))

	return []Notification{
		{
			To: []string{id},
			Message: RoomJoinedMessage{
				Type:    TypeRoomJoined,
				RoomID:  r.code,
				IsHost:  false,
				Players: players,
			},
		},
		{
			To: r.everyoneExcept(id),
			Message: PlayerJoinedMessage{
				Type:    TypePlayerJoined,
				Player:  p.view(),
				Players: players,
			},
		},
	}, nil
}

// Start begins the first round on behalf of the host.
func (r *Room) Start(id string) ([]Notification, error) {
	switch {
	case r.closed:
		return nil, ErrRoomNotFound
	case id != r.hostID:
		return nil, ErrNotHost
	case r.phase != PhaseWaiting:
		return nil, ErrAlreadyStarted
	case len(r.players) < r.settings.MinPlayers:
		return nil, ErrNotEnoughPlayers
	}

	r.log.Info("game started", zap.Int("players", len(r.players)))

	return r.startRound(), nil
}

func (r *Room) startRound() []Notification {
	if r.closed || r.round >= r.settings.MaxRounds {
		return nil
	}

	phrase, ok := r.catalog.Sample(r.used)
	if !ok {
		r.log.Info("catalog exhausted", zap.Int("round", r.round))
		return r.endGame()
	}

	r.round++
	r.phase = PhaseInRound
	r.current = &phrase
	r.used[phrase] = struct{}{}
	clear(r.answers)
	r.roundStart = r.now()

	round := r.round
	r.sched.Schedule(r.settings.RoundDuration, func() []Notification {
		if r.closed || r.phase != PhaseInRound || r.round != round {
			return nil
		}
		r.log.Debug("round timed out", zap.Int("round", round))
		return r.endRound()
	})

	r.log.Debug("round started",
		zap.Int("round", r.round),
		zap.Int("difficulty", phrase.Difficulty),
	)

	return []Notification{{
		To: r.everyone(),
		Message: RoundStartedMessage{
			Type:       TypeRoundStarted,
			Round:      r.round,
			MaxRounds:  r.settings.MaxRounds,
			Emojis:     phrase.Emojis,
			Difficulty: phrase.Difficulty,
			DurationMs: r.settings.RoundDuration.Milliseconds(),
		},
	}}
}

// SubmitGuess evaluates a guess. Guesses outside a round, or from a player
// who already answered this round, are dropped.
func (r *Room) SubmitGuess(id, text string) ([]Notification, error) {
	if r.closed || r.phase != PhaseInRound || r.current == nil {
		return nil, ErrDropped
	}

	p, ok := r.players[id]
	if !ok {
		return nil, ErrDropped
	}
	if _, answered := r.answers[id]; answered {
		return nil, ErrDropped
	}

	if !IsAcceptable(text, r.current.Answer) {
		return []Notification{{
			To:      []string{id},
			Message: IncorrectGuessMessage{Type: TypeIncorrectGuess},
		}}, nil
	}

	elapsed := r.now().Sub(r.roundStart).Milliseconds()
	points := Points(elapsed, r.current.Difficulty)

	p.Score += points
	r.answers[id] = answer{elapsedMs: elapsed, points: points}

	r.log.Debug("correct guess",
		zap.String("player", p.Name),
		zap.Int("points", points),
		zap.Int64("elapsed_ms", elapsed),
	)

	notes := []Notification{{
		To: r.everyone(),
		Message: CorrectGuessMessage{
			Type:            TypeCorrectGuess,
			PlayerID:        id,
			PlayerName:      p.Name,
			Points:          points,
			TimeToAnswer:    elapsed,
			PlayersAnswered: len(r.answers),
			TotalPlayers:    len(r.players),
			NewScore:        p.Score,
		},
	}}

	if len(r.answers) >= len(r.players) {
		notes = append(notes, r.endRound()...)
	}

	return notes, nil
}

// results lists this round's correct answers, fastest first.
func (r *Room) results() []RoundResult {
	list := make([]RoundResult, 0, len(r.answers))
	for id, a := range r.answers {
		name := "Unknown"
		if p, ok := r.players[id]; ok {
			name = p.Name
		}
		list = append(list, RoundResult{
			PlayerID:     id,
			PlayerName:   name,
			TimeToAnswer: a.elapsedMs,
			Points:       a.points,
		})
	}

	slices.SortFunc(list, func(a, b RoundResult) int {
		if c := cmp.Compare(a.TimeToAnswer, b.TimeToAnswer); c != 0 {
			return c
		}
		return strings.Compare(a.PlayerID, b.PlayerID)
	})

	return list
}

func (r *Room) endRound() []Notification {
	r.phase = PhaseBetweenRounds

	msg := RoundEndedMessage{
		Type:        TypeRoundEnded,
		Round:       r.round,
		Answer:      r.current.Answer,
		Results:     r.results(),
		Leaderboard: r.Leaderboard(),
	}

	round := r.round
	last := r.round >= r.settings.MaxRounds || r.catalog.Remaining(r.used) == 0

	r.sched.Schedule(r.settings.RevealDelay, func() []Notification {
		if r.closed || r.phase != PhaseBetweenRounds || r.round != round {
			return nil
		}
		if last {
			return r.endGame()
		}
		return r.startRound()
	})

	r.log.Debug("round ended", zap.Int("round", round), zap.Bool("last", last))

	return []Notification{{To: r.everyone(), Message: msg}}
}

func (r *Room) endGame() []Notification {
	r.phase = PhaseFinished

	board := r.Leaderboard()

	var winner *LeaderboardEntry
	if len(board) > 0 {
		w := board[0]
		winner = &w
	}

	if winner != nil {
		r.log.Info("game ended", zap.String("winner", winner.Name), zap.Int("score", winner.Score))
	}

	return []Notification{{
		To: r.everyone(),
		Message: GameEndedMessage{
			Type:             TypeGameEnded,
			Winner:           winner,
			FinalLeaderboard: board,
		},
	}}
}

// Leave removes a player in any phase. When the last player leaves the room
// is closed and Leave reports empty.
func (r *Room) Leave(id string) (notes []Notification, empty bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, len(r.players) == 0
	}

	delete(r.players, id)

	if len(r.players) == 0 {
		r.closed = true
		r.log.Info("room emptied")
		return nil, true
	}

	if id == r.hostID {
		next := r.ordered()[0]
		next.IsHost = true
		r.hostID = next.ID
		r.log.Info("host reassigned", zap.String("host", next.Name))
	}

	r.log.Info("player left", zap.String("player", p.Name), zap.Int("players", len(r.players)))

	notes = []Notification{{
		To: r.everyone(),
		Message: PlayerLeftMessage{
			Type:       TypePlayerLeft,
			PlayerName: p.Name,
			Players:    r.playerViews(),
		},
	}}

	if r.phase == PhaseInRound && r.allPresentAnswered() {
		notes = append(notes, r.endRound()...)
	}

	return notes, false
}

func (r *Room) allPresentAnswered() bool {
	for id := range r.players {
		if _, ok := r.answers[id]; !ok {
			return false
		}
	}

	return true
}

// Close shuts the room down regardless of its players and returns the
// handles that were still seated.
func (r *Room) Close() []string {
	ids := r.everyone()

	r.closed = true
	clear(r.players)

	return ids
}

// RoomInfo is a point-in-time summary of a room.
type RoomInfo struct {
	Code      string       `json:"roomId"`
	Phase     Phase        `json:"phase"`
	Round     int          `json:"round"`
	MaxRounds int          `json:"maxRounds"`
	Players   []PlayerView `json:"players"`
}

func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Code:      r.code,
		Phase:     r.phase,
		Round:     r.round,
		MaxRounds: r.settings.MaxRounds,
		Players:   r.playerViews(),
	}
}
