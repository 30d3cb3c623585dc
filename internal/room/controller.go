package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/flipseven/flipseven-server/internal/game"
	"github.com/flipseven/flipseven-server/internal/store"
)

const (
	roomCodeLength   = 5
	roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	createAttempts   = 5
)

// Controller wraps every game-state transition in an optimistic
// read-modify-write against the shared room document. Precondition
// failures inside the engine degrade to silent no-ops; only setup
// errors (unknown room code, store failures) reach the caller.
type Controller struct {
	store  store.Store
	logger *zap.Logger
}

// NewController creates a transaction controller over the given store.
func NewController(st store.Store, logger *zap.Logger) *Controller {
	return &Controller{store: st, logger: logger}
}

// generateRoomCode allocates a short human-readable code. Ambiguous
// characters are excluded from the alphabet.
func generateRoomCode() string {
	var b strings.Builder
	for i := 0; i < roomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))])
	}
	return b.String()
}

// CreateRoom allocates a fresh room with the caller seated as host.
func (c *Controller) CreateRoom(ctx context.Context, hostUID, hostName string) (string, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		code := generateRoomCode()
		err := c.store.Create(ctx, game.NewRoom(code, hostUID, hostName))
		if errors.Is(err, store.ErrRoomExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		c.logger.Info("room created",
			zap.String("room_code", code),
			zap.String("host_uid", hostUID),
		)
		return code, nil
	}
	return "", fmt.Errorf("failed to allocate a room code")
}

// JoinRoom seats the caller, or updates their display name if the
// identity already holds a seat (reconnection). Fails with
// store.ErrRoomNotFound when the code is unknown.
func (c *Controller) JoinRoom(ctx context.Context, code, uid, name string) error {
	err := c.store.Update(ctx, code, func(r *game.Room) bool {
		r.AddPlayer(uid, name)
		return true
	})
	if err != nil {
		return err
	}
	c.logger.Info("player joined room",
		zap.String("room_code", code),
		zap.String("uid", uid),
		zap.String("name", name),
	)
	return nil
}

// StartGame starts a fresh game from the lobby. Host only.
func (c *Controller) StartGame(ctx context.Context, code, uid string) error {
	return c.apply(ctx, code, uid, "start_game", func(r *game.Room) bool {
		return r.StartGame(uid)
	})
}

// Hit draws one card for the caller if it is their turn.
func (c *Controller) Hit(ctx context.Context, code, uid string) error {
	return c.apply(ctx, code, uid, "hit", func(r *game.Room) bool {
		return r.Hit(uid)
	})
}

// Stay banks the caller's round score if it is their turn.
func (c *Controller) Stay(ctx context.Context, code, uid string) error {
	return c.apply(ctx, code, uid, "stay", func(r *game.Room) bool {
		return r.Stay(uid)
	})
}

// ResolveAction resolves the caller's pending action card against a target.
func (c *Controller) ResolveAction(ctx context.Context, code, uid, targetUID string) error {
	return c.apply(ctx, code, uid, "resolve_action", func(r *game.Room) bool {
		return r.ResolveAction(uid, targetUID)
	})
}

// StartNextRound advances the dealer and deals the next round. Host only.
func (c *Controller) StartNextRound(ctx context.Context, code, uid string) error {
	return c.apply(ctx, code, uid, "next_round", func(r *game.Room) bool {
		return r.StartNextRound(uid)
	})
}

// RestartGame resets totals after game over and starts again. Host only.
func (c *Controller) RestartGame(ctx context.Context, code, uid string) error {
	return c.apply(ctx, code, uid, "restart", func(r *game.Room) bool {
		return r.RestartGame(uid)
	})
}

// apply runs one engine transition through the store's CAS loop. A
// transition that reports "not applied" commits nothing and is not an
// error: the caller's view was stale and the next snapshot push resyncs it.
func (c *Controller) apply(ctx context.Context, code, uid, intent string, fn store.UpdateFn) error {
	applied := false
	err := c.store.Update(ctx, code, func(r *game.Room) bool {
		applied = fn(r)
		return applied
	})
	if err != nil {
		return err
	}
	if applied {
		c.logger.Debug("intent applied",
			zap.String("room_code", code),
			zap.String("uid", uid),
			zap.String("intent", intent),
		)
	} else {
		c.logger.Debug("intent ignored by precondition",
			zap.String("room_code", code),
			zap.String("uid", uid),
			zap.String("intent", intent),
		)
	}
	return nil
}
