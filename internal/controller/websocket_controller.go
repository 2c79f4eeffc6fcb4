package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/squarechess-backend/internal/middleware"
	"github.com/benbeisheim/squarechess-backend/internal/service"
	"github.com/benbeisheim/squarechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// HandleConnection serves one player's game socket until it closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	log := wsc.log.With().Str("gameId", gameID).Str("playerId", playerID).Logger()

	// Broadcasts from other players' moves share this writer.
	conn := service.NewSyncConn(c)
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warn().Err(err).Msg("register connection")
		if !errors.Is(err, service.ErrDuplicateConn) {
			conn.WriteJSON(ws.ErrorMessage(err))
			conn.Close()
		}
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("read")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug().Err(err).Msg("parse message")
			conn.WriteJSON(ws.ErrorMessage(err))
			continue
		}
		if err := wsc.handleMessage(ctx, gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("handle message")
			conn.WriteJSON(ws.ErrorMessage(err))
		}
	}
}

// handleMessage applies one inbound message. The resulting state reaches
// every connection through the session's broadcast.
func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeSelect:
		var p ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err := wsc.gameService.Select(ctx, gameID, playerID, p.Rank, p.File)
		return err

	case ws.MessageTypePromote:
		var p ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err := wsc.gameService.Promote(gameID, playerID, p.Piece)
		return err

	case ws.MessageTypeCancelPromotion:
		_, err := wsc.gameService.CancelPromotion(gameID, playerID)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and holds the socket open until a
// match is found or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	log := wsc.log.With().Str("playerId", playerID).Logger()

	matches := make(chan service.MatchFoundEvent, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, matches)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, matches)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, service.ErrAlreadyQueued) {
		c.WriteJSON(ws.ErrorMessage(err))
		return
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-matches:
		if !ok {
			log.Debug().Msg("matchmaking channel replaced")
			return
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err != nil {
			log.Error().Err(err).Msg("encode match")
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warn().Err(err).Msg("send match")
		}
	case <-gone:
		wsc.gameService.LeaveMatchmaking(playerID)
		log.Debug().Msg("left matchmaking")
	}
}
