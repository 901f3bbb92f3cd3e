package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

const maxIDAttempts = 5

var ErrIDSpaceExhausted = errors.New("could not generate a unique room id")

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	Save(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	List(ctx context.Context) ([]*entity.Room, error)
}

// RoomManager is the room registry. It is not synchronized: the websocket server calls it
// from a single event loop, which is what keeps every transition atomic.
type RoomManager struct {
	logger   *slog.Logger
	roomRepo roomRepo

	newID func() string
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo) *RoomManager {
	return &RoomManager{
		logger:   logger.With("component", "room_manager"),
		roomRepo: roomRepo,
		newID:    generateRoomID,
	}
}

func generateRoomID() string {
	return "game-" + uuid.NewString()
}

func (that *RoomManager) CreateRoom(ctx context.Context, creator string) (*entity.Room, error) {
	if creator == "" {
		return nil, apperror.ErrAuthRequired
	}

	for range maxIDAttempts {
		room := entity.NewRoom(that.newID(), creator)

		err := that.roomRepo.Create(ctx, room)
		if errors.Is(err, repository.ErrRoomExists) {
			that.logger.Warn("room id collision", "method", "CreateRoom", "gameID", room.ID)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		that.logger.Info("room created", "method", "CreateRoom", "gameID", room.ID, "playerID", creator)

		return room, nil
	}

	return nil, ErrIDSpaceExhausted
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", roomID, err)
	}

	return room, nil
}

func (that *RoomManager) ListOpenRooms(ctx context.Context) ([]entity.OpenRoom, error) {
	rooms, err := that.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	open := make([]entity.OpenRoom, 0, len(rooms))
	for _, room := range rooms {
		if !room.IsOpen() {
			continue
		}

		open = append(open, entity.OpenRoom{GameID: room.ID, Players: room.Players})
	}

	return open, nil
}

func (that *RoomManager) JoinRoom(ctx context.Context, roomID, identity string) (*entity.Room, error) {
	room, err := that.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err = room.Join(identity); err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, err
	}

	that.logger.Info("player joined room", "method", "JoinRoom", "gameID", roomID, "playerID", identity)

	return room, nil
}

func (that *RoomManager) MakeMove(ctx context.Context, roomID, identity string, cell int) (*entity.Room, error) {
	if identity == "" {
		return nil, apperror.ErrAuthRequired
	}

	room, err := that.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err = room.Move(identity, cell); err != nil {
		return nil, fmt.Errorf("failed to make move in room %s: %w", roomID, err)
	}

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, err
	}

	if room.Winner.IsDecided() {
		that.logger.Info("game finished", "method", "MakeMove", "gameID", roomID, "winner", string(room.Winner))
	}

	return room, nil
}

// ResetRoom - anyone may reset any room; there is no ownership check.
func (that *RoomManager) ResetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room.Reset()

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, err
	}

	that.logger.Info("room reset", "method", "ResetRoom", "gameID", roomID)

	return room, nil
}

func (that *RoomManager) updateRoom(ctx context.Context, room *entity.Room) error {
	if err := that.roomRepo.Save(ctx, room); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}
