package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// both stores must behave the same, every case runs against each of them
func forEachRepository(t *testing.T, run func(t *testing.T, ctx context.Context, repo RoomRepository)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		run(t, context.Background(), NewMemoryRoomRepository())
	})

	t.Run("redis", func(t *testing.T) {
		ctx, st := suite.New(t)
		run(t, ctx, NewRoomRepository(st.Storage, time.Hour))
	})
}

func TestRoomRepository_Create(t *testing.T) {
	forEachRepository(t, func(t *testing.T, ctx context.Context, repo RoomRepository) {
		// Given: a new room
		room := entity.NewRoom("game-1", "u1")

		// When: Create is called
		err := repo.Create(ctx, room)

		// Then: the room is stored
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, room, stored)

		// When: another room with the same id is created
		err = repo.Create(ctx, entity.NewRoom("game-1", "u2"))

		// Then: ErrRoomExists is returned and the first room is kept
		require.ErrorIs(t, err, ErrRoomExists)

		stored, err = repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, "u1", stored.Players.X)
	})
}

func TestRoomRepository_GetByID(t *testing.T) {
	forEachRepository(t, func(t *testing.T, ctx context.Context, repo RoomRepository) {
		// When: GetByID is called with an unknown id
		room, err := repo.GetByID(ctx, "game-missing")

		// Then: ErrNotFound is returned
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, room)
	})
}

func TestRoomRepository_Save(t *testing.T) {
	forEachRepository(t, func(t *testing.T, ctx context.Context, repo RoomRepository) {
		// Given: a stored room
		room := entity.NewRoom("game-1", "u1")
		require.NoError(t, repo.Create(ctx, room))

		// When: the room is changed and saved
		require.NoError(t, room.Join("u2"))
		require.NoError(t, room.Move("u1", 4))
		require.NoError(t, repo.Save(ctx, room))

		// Then: the saved state is returned
		stored, err := repo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, room, stored)
	})
}

func TestRoomRepository_UnsavedChangesAreInvisible(t *testing.T) {
	forEachRepository(t, func(t *testing.T, ctx context.Context, repo RoomRepository) {
		// Given: a stored room loaded by a caller
		require.NoError(t, repo.Create(ctx, entity.NewRoom("game-1", "u1")))
		loaded, err := repo.GetByID(ctx, "game-1")
		require.NoError(t, err)

		// When: the caller changes it without saving
		require.NoError(t, loaded.Join("u2"))

		// Then: the stored room is unchanged
		stored, err := repo.GetByID(ctx, "game-1")
		require.NoError(t, err)
		assert.True(t, stored.IsOpen())
	})
}

func TestRoomRepository_List(t *testing.T) {
	forEachRepository(t, func(t *testing.T, ctx context.Context, repo RoomRepository) {
		// Given: an empty store
		rooms, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, rooms)

		// When: three rooms are created
		for _, id := range []string{"game-c", "game-a", "game-b"} {
			require.NoError(t, repo.Create(ctx, entity.NewRoom(id, "u-"+id)))
		}

		// Then: they are listed in creation order
		rooms, err = repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 3)
		assert.Equal(t, "game-c", rooms[0].ID)
		assert.Equal(t, "game-a", rooms[1].ID)
		assert.Equal(t, "game-b", rooms[2].ID)
	})
}

func TestRoomRepository_ListSkipsExpiredRooms(t *testing.T) {
	ctx, st := suite.New(t)

	repo := NewRoomRepository(st.Storage, time.Hour)

	// Given: two rooms, one of which has expired
	require.NoError(t, repo.Create(ctx, entity.NewRoom("game-1", "u1")))
	require.NoError(t, repo.Create(ctx, entity.NewRoom("game-2", "u2")))
	require.NoError(t, st.Storage.Del(ctx, roomKey("game-1")).Err())

	// When: rooms are listed
	rooms, err := repo.List(ctx)

	// Then: only the live room is returned and the index forgets the expired one
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "game-2", rooms[0].ID)

	ids, err := st.Storage.LRange(ctx, roomsOrderKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"game-2"}, ids)
}

func TestRoomRepository_TTL(t *testing.T) {
	ctx, st := suite.New(t)

	repo := NewRoomRepository(st.Storage, time.Minute)

	// When: a room is created with a TTL
	require.NoError(t, repo.Create(ctx, entity.NewRoom("game-1", "u1")))

	// Then: the key carries an expiry no longer than the TTL
	ttl, err := st.Storage.TTL(ctx, roomKey("game-1")).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)
}
