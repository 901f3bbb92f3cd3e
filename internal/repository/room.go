package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var ErrRoomExists = errors.New("room already exists")

const roomsOrderKey = "rooms:order"

type RoomRepository interface {
	// Create stores a new room and fails with ErrRoomExists when the id is taken.
	Create(ctx context.Context, room *entity.Room) error
	Save(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	// List returns rooms in creation order.
	List(ctx context.Context) ([]*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository - Redis backed rooms. Rooms not touched for ttl expire; zero ttl keeps them forever.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	created, err := that.client.SetNX(ctx, roomKey(room.ID), roomJSON, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", ErrRoomExists, room.ID)
	}

	if err = that.client.RPush(ctx, roomsOrderKey, room.ID).Err(); err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}

	return nil
}

func (that *dbRoom) Save(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKey(room.ID), roomJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *dbRoom) List(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.LRange(ctx, roomsOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room ids: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKey(id)
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(values))
	var expired []string

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// the room expired, its id is dropped from the index below
			expired = append(expired, ids[i])
			continue
		}

		var room entity.Room
		if err = json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room: %w", err)
		}

		rooms = append(rooms, &room)
	}

	for _, id := range expired {
		if err = that.client.LRem(ctx, roomsOrderKey, 1, id).Err(); err != nil {
			return nil, fmt.Errorf("failed to drop expired room %s: %w", id, err)
		}
	}

	return rooms, nil
}
