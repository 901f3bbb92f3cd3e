package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// memoryRoom keeps rooms for the process lifetime. Rooms are stored and returned as copies,
// so a caller's unsaved changes are never visible to other readers.
type memoryRoom struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
	order []string
}

func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoom{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *memoryRoom) Create(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.ID]; ok {
		return fmt.Errorf("%w: %s", ErrRoomExists, room.ID)
	}

	that.rooms[room.ID] = room.Clone()
	that.order = append(that.order, room.ID)

	return nil
}

func (that *memoryRoom) Save(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.ID]; !ok {
		return fmt.Errorf("failed to save room %s: %w", room.ID, apperror.ErrNotFound)
	}

	that.rooms[room.ID] = room.Clone()

	return nil
}

func (that *memoryRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	return room.Clone(), nil
}

func (that *memoryRoom) List(_ context.Context) ([]*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.Room, 0, len(that.order))
	for _, id := range that.order {
		rooms = append(rooms, that.rooms[id].Clone())
	}

	return rooms, nil
}
