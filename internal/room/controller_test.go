package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flipseven/flipseven-server/internal/game"
	"github.com/flipseven/flipseven-server/internal/store"
)

func newTestController(t *testing.T) (*Controller, store.Store) {
	t.Helper()
	st := store.NewMemoryStore(zap.NewNop())
	t.Cleanup(st.Close)
	return NewController(st, zap.NewNop()), st
}

func TestController_CreateRoom(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, "host", "Alice")
	require.NoError(t, err)
	assert.Len(t, code, roomCodeLength)

	room, err := st.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "host", room.HostUID)
	assert.Equal(t, game.PhaseLobby, room.Phase)
	assert.Equal(t, []string{"host"}, room.PlayerOrder)
}

func TestController_JoinRoom(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, "host", "Alice")
	require.NoError(t, err)
	require.NoError(t, c.JoinRoom(ctx, code, "guest", "Bob"))

	room, err := st.Get(ctx, code)
	require.NoError(t, err)
	assert.Len(t, room.PlayerOrder, 2)
	assert.Equal(t, "Bob", room.Players["guest"].Name)
}

func TestController_JoinUnknownRoom(t *testing.T) {
	c, _ := newTestController(t)
	err := c.JoinRoom(context.Background(), "NOPE1", "guest", "Bob")
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}

func TestController_StartGameHostOnly(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, "host", "Alice")
	require.NoError(t, err)
	require.NoError(t, c.JoinRoom(ctx, code, "guest", "Bob"))

	// A non-host start is a silent no-op, not an error.
	require.NoError(t, c.StartGame(ctx, code, "guest"))
	room, err := st.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseLobby, room.Phase)

	require.NoError(t, c.StartGame(ctx, code, "host"))
	room, err = st.Get(ctx, code)
	require.NoError(t, err)
	assert.NotEqual(t, game.PhaseLobby, room.Phase)
	assert.Equal(t, 1, room.Round)
}

func TestController_StaleIntentLeavesStateUntouched(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, "host", "Alice")
	require.NoError(t, err)
	require.NoError(t, c.JoinRoom(ctx, code, "guest", "Bob"))
	require.NoError(t, c.StartGame(ctx, code, "host"))

	before, err := st.Get(ctx, code)
	require.NoError(t, err)

	// A player who does not hold the turn cannot change anything, no
	// matter how many times the intent is submitted.
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Hit(ctx, code, "stranger"))
		require.NoError(t, c.Stay(ctx, code, "stranger"))
	}

	after, err := st.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestController_NextRoundOnlyFromRoundEnd(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, "host", "Alice")
	require.NoError(t, err)
	require.NoError(t, c.StartNextRound(ctx, code, "host"))

	room, err := st.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseLobby, room.Phase)
	assert.Equal(t, 0, room.Round)
}

func TestController_UnknownRoomSurfacesError(t *testing.T) {
	c, _ := newTestController(t)
	err := c.Hit(context.Background(), "NOPE1", "host")
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}
