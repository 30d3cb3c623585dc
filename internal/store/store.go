package store

import (
	"context"
	"errors"
	"sync"

	"github.com/flipseven/flipseven-server/internal/game"
)

var (
	// ErrRoomNotFound is returned when a room code does not exist. This
	// is the only store failure surfaced to end users.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned when creating a room whose code is taken.
	ErrRoomExists = errors.New("room already exists")
)

// UpdateFn computes the next room snapshot in place on a fresh deep
// clone of the committed state. Returning false aborts the update
// without a commit; this is how precondition failures degrade to silent
// no-ops. The function must be a pure function of the clone it receives:
// on a write conflict it is re-run against a fresh read.
type UpdateFn func(*game.Room) bool

// Store is the transactional room document store: atomic
// compare-and-swap read-modify-write plus a push subscription that
// delivers committed snapshots to all current subscribers of a room
// code, at-least-once, in commit order.
type Store interface {
	Create(ctx context.Context, room *game.Room) error
	Get(ctx context.Context, code string) (*game.Room, error)
	Update(ctx context.Context, code string, fn UpdateFn) error

	// Subscribe returns a channel of committed snapshots for the room
	// and a cancel function releasing the subscription.
	Subscribe(code string) (<-chan *game.Room, func())

	Close()
}

// subscriberBuffer bounds each subscriber channel. A subscriber that
// falls behind loses the oldest buffered snapshot, never the newest.
const subscriberBuffer = 64

// fanout routes committed snapshots to per-room subscribers. Publish
// calls must already be serialized in commit order by the caller.
type fanout struct {
	mu   sync.Mutex
	subs map[string]map[int]chan *game.Room
	next int
}

func newFanout() *fanout {
	return &fanout{subs: make(map[string]map[int]chan *game.Room)}
}

func (f *fanout) subscribe(code string) (<-chan *game.Room, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan *game.Room, subscriberBuffer)
	if f.subs[code] == nil {
		f.subs[code] = make(map[int]chan *game.Room)
	}
	id := f.next
	f.next++
	f.subs[code][id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[code][id]; ok {
			delete(f.subs[code], id)
			close(sub)
		}
	}
	return ch, cancel
}

func (f *fanout) publish(code string, room *game.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[code] {
		snapshot := room.Clone()
		for {
			select {
			case ch <- snapshot:
			default:
				// Full buffer: evict the oldest snapshot and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, subs := range f.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(f.subs, code)
	}
}
