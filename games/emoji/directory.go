/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package emoji

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Transport delivers outbound messages to connections. Send must not block.
type Transport interface {
	Send(handle string, msg any)
}

// DirectoryConfig carries the collaborators shared by every room.
type DirectoryConfig struct {
	Catalog   *Catalog
	Settings  Settings
	Transport Transport
	Logger    *zap.Logger

	// Optional; default to time.Now, crypto/rand and 64.
	Now       func() time.Time
	Random    io.Reader
	InboxSize int
}

// Directory maps connection handles and room codes to rooms, and routes
// inbound events to the right room's actor.
type Directory struct {
	cfg DirectoryConfig
	log *zap.Logger

	mu     sync.RWMutex
	rooms  map[string]*actor
	seats  map[string]string // handle -> room code
	closed bool
}

func NewDirectory(cfg DirectoryConfig) *Directory {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Random == nil {
		cfg.Random = rand.Reader
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Directory{
		cfg:   cfg,
		log:   cfg.Logger,
		rooms: make(map[string]*actor),
		seats: make(map[string]string),
	}
}

// Handle routes one inbound event from handle. Errors meant for the client
// have already been sent to it when Handle returns; the error is returned
// for logging.
func (d *Directory) Handle(ctx context.Context, handle string, msg ClientMessage) error {
	var err error

	switch msg.Type {
	case EventCreateRoom:
		err = d.create(handle, msg.PlayerName)
	case EventJoinRoom:
		err = d.join(ctx, handle, msg.RoomID, msg.PlayerName)
	case EventStartGame:
		err = d.inRoom(ctx, handle, func(r *Room) ([]Notification, error) {
			return r.Start(handle)
		})
	case EventSubmitGuess:
		err = d.inRoom(ctx, handle, func(r *Room) ([]Notification, error) {
			return r.SubmitGuess(handle, msg.Guess)
		})
	default:
		err = ErrDropped
	}

	switch {
	case err == nil:
	case reportable(err):
		d.dispatch([]Notification{errorNotification(handle, err)})
	default:
		d.log.Debug("dropped request",
			zap.String("handle", handle),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
	}

	return err
}

func (d *Directory) create(handle, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrShutdown
	}
	if _, seated := d.seats[handle]; seated {
		return ErrDropped
	}

	code, err := uniqueCode(d.cfg.Random, func(c string) bool {
		_, taken := d.rooms[c]
		return taken
	})
	if err != nil {
		return err
	}

	a := newActor(d, code)

	room, notes, err := NewRoom(code, handle, name, RoomOptions{
		Catalog:   d.cfg.Catalog,
		Settings:  d.cfg.Settings,
		Scheduler: a,
		Now:       d.cfg.Now,
		Logger:    d.log,
	})
	if err != nil {
		return err
	}

	a.room = room
	d.rooms[code] = a
	d.seats[handle] = code

	go a.run()

	d.dispatch(notes)

	return nil
}

func (d *Directory) join(ctx context.Context, handle, code, name string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	d.mu.RLock()
	closed := d.closed
	_, seated := d.seats[handle]
	a := d.rooms[code]
	d.mu.RUnlock()

	switch {
	case closed:
		return ErrShutdown
	case seated:
		return ErrDropped
	case a == nil:
		return ErrRoomNotFound
	}

	var opErr error
	err := a.do(ctx, func() {
		notes, err := a.room.Join(handle, name)
		if err != nil {
			opErr = err
			return
		}

		d.mu.Lock()
		d.seats[handle] = code
		d.mu.Unlock()

		d.dispatch(notes)
	})
	if err != nil {
		return err
	}

	return opErr
}

// inRoom runs op on the actor of the room handle is seated in.
func (d *Directory) inRoom(ctx context.Context, handle string, op func(*Room) ([]Notification, error)) error {
	a := d.seatOf(handle)
	if a == nil {
		return ErrDropped
	}

	var opErr error
	err := a.do(ctx, func() {
		var notes []Notification
		notes, opErr = op(a.room)
		d.dispatch(notes)
	})
	if errors.Is(err, ErrRoomNotFound) {
		return ErrDropped
	}
	if err != nil {
		return err
	}

	return opErr
}

func (d *Directory) seatOf(handle string) *actor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	code, ok := d.seats[handle]
	if !ok {
		return nil
	}

	return d.rooms[code]
}

// Disconnect removes handle from its room, if any. It waits until the room
// has processed the departure or ctx is done.
func (d *Directory) Disconnect(ctx context.Context, handle string) {
	d.mu.Lock()
	code, ok := d.seats[handle]
	delete(d.seats, handle)
	a := d.rooms[code]
	d.mu.Unlock()

	if !ok || a == nil {
		return
	}

	_ = a.do(ctx, func() {
		notes, empty := a.room.Leave(handle)
		d.dispatch(notes)

		if empty {
			d.release(code, a, nil)
			a.retire()
		}
	})
}

// release drops a room and the given seats from the registry.
func (d *Directory) release(code string, a *actor, handles []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rooms[code] == a {
		delete(d.rooms, code)
	}

	for _, h := range handles {
		if d.seats[h] == code {
			delete(d.seats, h)
		}
	}
}

// Lookup returns a snapshot of the room with the given code.
func (d *Directory) Lookup(ctx context.Context, code string) (RoomInfo, error) {
	d.mu.RLock()
	a := d.rooms[strings.ToUpper(code)]
	d.mu.RUnlock()

	if a == nil {
		return RoomInfo{}, ErrRoomNotFound
	}

	var info RoomInfo
	if err := a.do(ctx, func() { info = a.room.Info() }); err != nil {
		return RoomInfo{}, err
	}

	return info, nil
}

// Rooms reports how many rooms are live.
func (d *Directory) Rooms() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}

// Reap closes every room that has been idle since before cutoff, telling
// its remaining players why, and returns how many rooms were closed.
func (d *Directory) Reap(ctx context.Context, cutoff time.Time) int {
	d.mu.RLock()
	actors := make([]*actor, 0, len(d.rooms))
	for _, a := range d.rooms {
		actors = append(actors, a)
	}
	d.mu.RUnlock()

	reaped := 0
	for _, a := range actors {
		if !a.idleSince(cutoff) {
			continue
		}

		err := a.do(ctx, func() {
			handles := a.room.Close()
			d.release(a.code, a, handles)

			for _, h := range handles {
				d.dispatch([]Notification{errorNotification(h, ErrRoomExpired)})
			}

			a.retire()
		})
		if err == nil {
			reaped++
			d.log.Info("reaped idle room", zap.String("room", a.code))
		}
	}

	return reaped
}

// Shutdown stops every room. Later events are rejected with ErrShutdown.
func (d *Directory) Shutdown() {
	d.mu.Lock()
	d.closed = true
	actors := make([]*actor, 0, len(d.rooms))
	for _, a := range d.rooms {
		actors = append(actors, a)
	}
	clear(d.rooms)
	clear(d.seats)
	d.mu.Unlock()

	for _, a := range actors {
		a.stop()
	}

	d.log.Info("directory shut down", zap.Int("rooms", len(actors)))
}

func (d *Directory) dispatch(notes []Notification) {
	for _, n := range notes {
		for _, to := range n.To {
			d.cfg.Transport.Send(to, n.Message)
		}
	}
}

// actor serializes every operation on one room, including scheduled
// transitions.
type actor struct {
	d    *Directory
	code string
	room *Room

	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once
	retiring bool

	lastActive atomic.Int64

	timersMu sync.Mutex
	timers   []*time.Timer
}

func newActor(d *Directory, code string) *actor {
	a := &actor{
		d:     d,
		code:  code,
		inbox: make(chan func(), d.cfg.InboxSize),
		done:  make(chan struct{}),
	}
	a.touch()

	return a
}

func (a *actor) run() {
	for {
		select {
		case fn := <-a.inbox:
			a.safely(fn)
			if a.retiring {
				a.stop()
				return
			}
		case <-a.done:
			return
		}
	}
}

func (a *actor) safely(fn func()) {
	defer func() {
		if v := recover(); v != nil {
			a.d.log.Error("recovered from panic in room",
				zap.String("room", a.code),
				zap.Any("panic", v),
				zap.Stack("stack"),
			)
		}
	}()

	a.touch()
	fn()
}

func (a *actor) touch() {
	a.lastActive.Store(a.d.cfg.Now().UnixNano())
}

func (a *actor) idleSince(cutoff time.Time) bool {
	return time.Unix(0, a.lastActive.Load()).Before(cutoff)
}

// retire stops the actor once the current operation returns. Only called
// from the actor's own goroutine.
func (a *actor) retire() {
	a.retiring = true
}

func (a *actor) stop() {
	a.stopOnce.Do(func() {
		close(a.done)

		a.timersMu.Lock()
		for _, t := range a.timers {
			t.Stop()
		}
		a.timers = nil
		a.timersMu.Unlock()
	})
}

func (a *actor) post(fn func()) bool {
	select {
	case <-a.done:
		return false
	default:
	}

	select {
	case a.inbox <- fn:
		return true
	case <-a.done:
		return false
	}
}

// do runs fn on the actor and waits for it to finish.
func (a *actor) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	ok := a.post(func() {
		defer close(finished)
		fn()
	})
	if !ok {
		return ErrRoomNotFound
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrRoomNotFound
		}
	}
}

// Schedule implements Scheduler by posting fn back onto the actor.
func (a *actor) Schedule(d time.Duration, fn func() []Notification) {
	t := time.AfterFunc(d, func() {
		a.post(func() {
			a.d.dispatch(fn())
		})
	})

	a.timersMu.Lock()
	defer a.timersMu.Unlock()

	select {
	case <-a.done:
		t.Stop()
		return
	default:
	}

	a.timers = append(a.timers, t)
}
