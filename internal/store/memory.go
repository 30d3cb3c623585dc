package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/flipseven/flipseven-server/internal/game"
)

// MemoryStore is the in-process Store implementation. It keeps a
// version per room and applies updates with the same optimistic
// read-compute-commit discipline as the external store, so the engine's
// transition functions behave identically against either backend.
type MemoryStore struct {
	mu     sync.Mutex
	rooms  map[string]*memoryEntry
	fanout *fanout
	logger *zap.Logger
}

type memoryEntry struct {
	room    *game.Room
	version int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[string]*memoryEntry),
		fanout: newFanout(),
		logger: logger,
	}
}

// Create inserts a new room document.
func (s *MemoryStore) Create(ctx context.Context, room *game.Room) error {
	s.mu.Lock()
	if _, exists := s.rooms[room.RoomCode]; exists {
		s.mu.Unlock()
		return ErrRoomExists
	}
	entry := &memoryEntry{room: room.Clone(), version: 1}
	s.rooms[room.RoomCode] = entry
	snapshot := entry.room
	s.mu.Unlock()

	s.fanout.publish(room.RoomCode, snapshot)
	return nil
}

// Get returns a deep copy of the committed snapshot.
func (s *MemoryStore) Get(ctx context.Context, code string) (*game.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return entry.room.Clone(), nil
}

// Update runs fn against a clone of the committed snapshot and commits
// the result iff the version is unchanged, retrying from a fresh read on
// conflict. fn returning false ends the update with no commit.
func (s *MemoryStore) Update(ctx context.Context, code string, fn UpdateFn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		entry, ok := s.rooms[code]
		if !ok {
			s.mu.Unlock()
			return ErrRoomNotFound
		}
		readVersion := entry.version
		next := entry.room.Clone()
		s.mu.Unlock()

		if !fn(next) {
			return nil
		}

		s.mu.Lock()
		entry, ok = s.rooms[code]
		if !ok {
			s.mu.Unlock()
			return ErrRoomNotFound
		}
		if entry.version != readVersion {
			s.mu.Unlock()
			if s.logger != nil {
				s.logger.Debug("room update conflict, retrying",
					zap.String("room_code", code),
					zap.Int64("read_version", readVersion),
				)
			}
			continue
		}
		entry.room = next
		entry.version = readVersion + 1
		// Publish before releasing the store lock so subscribers see
		// commits in commit order.
		s.fanout.publish(code, next)
		s.mu.Unlock()
		return nil
	}
}

// Subscribe registers a snapshot channel for a room code.
func (s *MemoryStore) Subscribe(code string) (<-chan *game.Room, func()) {
	return s.fanout.subscribe(code)
}

// Close releases all subscriptions.
func (s *MemoryStore) Close() {
	s.fanout.closeAll()
}
