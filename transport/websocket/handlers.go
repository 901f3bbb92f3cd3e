package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

// dispatch - routes one inbound frame to its handler. Any failure is reported to the originator only.
func (that *Server) dispatch(ctx context.Context, ev event) {
	log := that.logger.With("method", "dispatch", "sessionID", ev.session.ID)

	if ev.err != nil {
		that.sendError(ev.session, fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, ev.err))
		return
	}

	handler, ok := that.handlers[ev.message.Action]
	if !ok {
		log.Warn("unknown action", "action", ev.message.Action)
		that.sendError(ev.session, apperror.ErrUnknownAction)
		return
	}

	if err := handler(ctx, ev.session, ev.message); err != nil {
		log.Info("intent rejected", "action", ev.message.Action, "error", err)
		that.sendError(ev.session, err)
	}
}

func (that *Server) handleAuthenticate(ctx context.Context, session *Session, msg *Message) error {
	log := that.logger.With("method", "handleAuthenticate", "sessionID", session.ID)

	var credential string
	if err := decodePayload(msg, &credential); err != nil {
		return err
	}

	identity, err := that.verifier.Verify(credential)
	if err != nil {
		return err
	}

	session.Identity = identity
	log.Info("session authenticated", "playerID", identity)

	if err = that.sendMessage(session, actionAuthenticated, true); err != nil {
		return err
	}

	games, err := that.rooms.ListOpenRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open rooms: %w", err)
	}

	return that.sendMessage(session, actionAvailableGames, games)
}

func (that *Server) handleCreateGame(ctx context.Context, session *Session, _ *Message) error {
	room, err := that.rooms.CreateRoom(ctx, session.Identity)
	if err != nil {
		return err
	}

	that.subscribe(session, room.ID)

	if err = that.sendMessage(session, actionGameCreated, GameCreatedPayload{GameID: room.ID, Game: room}); err != nil {
		return err
	}

	that.broadcastAvailableGames(ctx)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, session *Session, msg *Message) error {
	var roomID string
	if err := decodePayload(msg, &roomID); err != nil {
		return err
	}

	room, err := that.rooms.JoinRoom(ctx, roomID, session.Identity)
	if err != nil {
		return err
	}

	that.subscribe(session, room.ID)
	that.broadcastRoom(room.ID, actionGameUpdated, room)
	that.broadcastAvailableGames(ctx)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, session *Session, msg *Message) error {
	var payload MovePayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}

	if payload.Index == nil {
		return fmt.Errorf("%w: index is required", apperror.ErrInvalidPayload)
	}

	room, err := that.rooms.MakeMove(ctx, payload.GameID, session.Identity, *payload.Index)
	if err != nil {
		return err
	}

	that.broadcastRoom(room.ID, actionGameUpdated, room)

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, session *Session, msg *Message) error {
	var roomID string
	if err := decodePayload(msg, &roomID); err != nil {
		return err
	}

	room, err := that.rooms.ResetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	that.broadcastRoom(room.ID, actionGameUpdated, room)

	return nil
}

func (that *Server) broadcastAvailableGames(ctx context.Context) {
	games, err := that.rooms.ListOpenRooms(ctx)
	if err != nil {
		that.logger.Error("failed to list open rooms", "method", "broadcastAvailableGames", "error", err)
		return
	}

	that.broadcastAll(actionAvailableGames, games)
}

func decodePayload(msg *Message, dst interface{}) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", apperror.ErrInvalidPayload)
	}

	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	return nil
}

func (that *Server) sendMessage(session *Session, action string, payload interface{}) error {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	that.deliver(session, action, data)

	return nil
}

func (that *Server) sendError(session *Session, err error) {
	if sendErr := that.sendMessage(session, actionError, apperror.Reason(err)); sendErr != nil {
		that.logger.Error("failed to send error", "method", "sendError", "sessionID", session.ID, "error", sendErr)
	}
}

func (that *Server) broadcastRoom(roomID, action string, payload interface{}) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode broadcast", "method", "broadcastRoom", "gameID", roomID, "error", err)
		return
	}

	for _, session := range that.subscribers[roomID] {
		that.deliver(session, action, data)
	}
}

func (that *Server) broadcastAll(action string, payload interface{}) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode broadcast", "method", "broadcastAll", "error", err)
		return
	}

	for _, session := range that.sessions {
		that.deliver(session, action, data)
	}
}

// deliver - a slow client loses the message rather than stalling the event loop.
func (that *Server) deliver(session *Session, action string, data []byte) {
	if !session.enqueue(data) {
		that.logger.Warn("send buffer full, message dropped", "sessionID", session.ID, "action", action)
	}
}
