package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/flipseven/flipseven-server/internal/game"
)

const roomsSchema = `
CREATE TABLE IF NOT EXISTS rooms (
    code       TEXT PRIMARY KEY,
    version    BIGINT NOT NULL DEFAULT 1,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const commitChannel = "room_commits"

// PostgresStore is the pgx-backed Store implementation. Updates use a
// version-column compare-and-swap; committed snapshots are fanned out to
// subscribers via LISTEN/NOTIFY, so multiple server instances sharing
// one database all observe every commit.
type PostgresStore struct {
	pool   *pgxpool.Pool
	fanout *fanout
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPostgresStore connects, ensures the schema, and starts the
// notification listener.
func NewPostgresStore(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if _, err := pool.Exec(ctx, roomsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure rooms schema: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s := &PostgresStore{
		pool:   pool,
		fanout: newFanout(),
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.listen(listenCtx)
	return s, nil
}

// Create inserts a new room document.
func (s *PostgresStore) Create(ctx context.Context, room *game.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO rooms (code, data) VALUES ($1, $2)`,
		room.RoomCode, data,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrRoomExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	s.notify(ctx, room.RoomCode)
	return nil
}

// Get returns the committed snapshot for a room code.
func (s *PostgresStore) Get(ctx context.Context, code string) (*game.Room, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM rooms WHERE code = $1`, code,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read room: %w", err)
	}
	return decodeRoom(data)
}

// Update applies fn with a version-column compare-and-swap, re-reading
// and re-running fn whenever another commit lands first.
func (s *PostgresStore) Update(ctx context.Context, code string, fn UpdateFn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var data []byte
		var version int64
		err := s.pool.QueryRow(ctx,
			`SELECT data, version FROM rooms WHERE code = $1`, code,
		).Scan(&data, &version)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read room: %w", err)
		}

		room, err := decodeRoom(data)
		if err != nil {
			return err
		}
		if !fn(room) {
			return nil
		}

		next, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("failed to encode room: %w", err)
		}
		tag, err := s.pool.Exec(ctx,
			`UPDATE rooms SET data = $1, version = version + 1, updated_at = now()
			 WHERE code = $2 AND version = $3`,
			next, code, version,
		)
		if err != nil {
			return fmt.Errorf("failed to commit room: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if s.logger != nil {
				s.logger.Debug("room update conflict, retrying",
					zap.String("room_code", code),
					zap.Int64("read_version", version),
				)
			}
			continue
		}
		s.notify(ctx, code)
		return nil
	}
}

// Subscribe registers a snapshot channel for a room code. Delivery is
// driven by the notification listener, so commits from other instances
// sharing the database are observed too.
func (s *PostgresStore) Subscribe(code string) (<-chan *game.Room, func()) {
	return s.fanout.subscribe(code)
}

// Close stops the listener and releases the pool.
func (s *PostgresStore) Close() {
	s.cancel()
	<-s.done
	s.fanout.closeAll()
	s.pool.Close()
}

func (s *PostgresStore) notify(ctx context.Context, code string) {
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, commitChannel, code); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to notify room commit",
				zap.String("room_code", code),
				zap.Error(err),
			)
		}
	}
}

// listen holds a dedicated connection on the commit channel and turns
// each notification into a fresh read plus a local fan-out. A fetch may
// observe a version newer than the notifying commit; subscribers always
// receive the latest committed snapshot at least once.
func (s *PostgresStore) listen(ctx context.Context) {
	defer close(s.done)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.listenOnce(ctx); err != nil && ctx.Err() == nil {
			if s.logger != nil {
				s.logger.Warn("notification listener error, reconnecting", zap.Error(err))
			}
		}
	}
}

func (s *PostgresStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+commitChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		room, err := s.Get(ctx, notification.Payload)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to fetch room after commit notification",
					zap.String("room_code", notification.Payload),
					zap.Error(err),
				)
			}
			continue
		}
		s.fanout.publish(notification.Payload, room)
	}
}

func decodeRoom(data []byte) (*game.Room, error) {
	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	return &room, nil
}
