package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridduel/tictactoe-backend/internal/apperror"
)

func (that *Server) handleConnect(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	var id, name string
	if payloadReq.Player != nil {
		id = payloadReq.Player.ID
		name = payloadReq.Player.Name
	}

	player, err := that.manager.GetOrCreatePlayer(ctx, id, name)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		return that.sendError(sess, msg.Action, "failed to create a new player")
	}

	sess.playerID = player.ID
	that.register(player.ID, sess.client)

	payloadResp := Payload{Player: player}

	// a reconnecting player gets their running game back immediately
	if player.GameID != "" {
		game, err := that.manager.GetGame(ctx, player.GameID)
		if err != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = game
		}
	}

	if err = that.sendPayload(sess, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	if sess.playerID == "" {
		return that.sendError(sess, msg.Action, apperror.ErrNotAuthenticated.Error())
	}

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	game, err := that.manager.CreateGame(ctx, sess.playerID, payloadReq.WithBot)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendError(sess, msg.Action, rejectionMessage(err))
	}

	that.broadcastGame(msg.Action, game)

	log.Info("game created", "gameID", game.ID, "playerID", sess.playerID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleJoinGame")

	if sess.playerID == "" {
		return that.sendError(sess, msg.Action, apperror.ErrNotAuthenticated.Error())
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.RoomCode == "" {
		return that.sendError(sess, msg.Action, "room code is required")
	}

	game, err := that.manager.JoinGame(ctx, payloadReq.RoomCode, sess.playerID)
	if err != nil {
		log.Error("failed to join game", "roomCode", payloadReq.RoomCode, "error", err)
		return that.sendError(sess, msg.Action, rejectionMessage(err))
	}

	that.broadcastGame(msg.Action, game)

	log.Info("player joined game", "gameID", game.ID, "playerID", sess.playerID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	if sess.playerID == "" {
		return that.sendError(sess, msg.Action, apperror.ErrNotAuthenticated.Error())
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Cell == nil {
		return that.sendError(sess, msg.Action, "cell is required")
	}

	var gameID string
	if payloadReq.Game != nil {
		gameID = payloadReq.Game.ID
	}

	game, err := that.manager.MakeTurn(ctx, gameID, sess.playerID, *payloadReq.Cell)
	if err != nil {
		log.Error("failed to make turn", "playerID", sess.playerID, "error", err)
		return that.sendError(sess, msg.Action, rejectionMessage(err))
	}

	that.broadcastGame(msg.Action, game)

	log.Info("player made a turn", "gameID", game.ID, "playerID", sess.playerID, "cell", *payloadReq.Cell)

	return nil
}

func (that *Server) handleGameState(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleGameState")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		return that.sendError(sess, msg.Action, "game id is required")
	}

	game, err := that.manager.GetGame(ctx, payloadReq.Game.ID)
	if err != nil {
		log.Error("failed to get game", "gameID", payloadReq.Game.ID, "error", err)
		return that.sendError(sess, msg.Action, rejectionMessage(err))
	}

	return that.sendPayload(sess, msg.Action, Payload{Game: game})
}

// rejectionMessage keeps typed rejections readable for the client while
// hiding wrapped internal detail for everything else.
func rejectionMessage(err error) string {
	for _, rejection := range []error{
		apperror.ErrGameNotFound,
		apperror.ErrGameAlreadyStarted,
		apperror.ErrGameFull,
		apperror.ErrDuplicatePlayer,
		apperror.ErrGameNotInProgress,
		apperror.ErrNotAPlayer,
		apperror.ErrNotYourTurn,
		apperror.ErrCellOccupied,
		apperror.ErrCellOutOfRange,
		apperror.ErrConcurrentModification,
	} {
		if errors.Is(err, rejection) {
			return rejection.Error()
		}
	}

	return "internal error"
}
