package controller

import (
	"github.com/benbeisheim/squarechess-backend/internal/middleware"
	"github.com/benbeisheim/squarechess-backend/internal/service"
	"github.com/benbeisheim/squarechess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{gameService: gameService, log: log}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"gameId":  gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		gc.log.Debug().Err(err).Str("gameId", gameID).Str("playerId", playerID).Msg("join game")
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	snapshot, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(snapshot)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	removed := gc.gameService.LeaveMatchmaking(middleware.PlayerID(c))
	return c.JSON(fiber.Map{
		"removed": removed,
	})
}

func (gc *GameController) Select(c *fiber.Ctx) error {
	var req ws.SelectPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	snapshot, err := gc.gameService.Select(c.UserContext(), c.Params("gameId"), middleware.PlayerID(c), req.Rank, req.File)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(snapshot)
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var req ws.PromotePayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	snapshot, err := gc.gameService.Promote(c.Params("gameId"), middleware.PlayerID(c), req.Piece)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(snapshot)
}

func (gc *GameController) CancelPromotion(c *fiber.Ctx) error {
	snapshot, err := gc.gameService.CancelPromotion(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(snapshot)
}

func (gc *GameController) History(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	history, err := gc.gameService.History(gameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"gameId":  gameID,
		"history": history,
	})
}

func (gc *GameController) ArchivedGames(c *fiber.Ctx) error {
	ids, err := gc.gameService.ArchivedGames()
	if err != nil {
		gc.log.Error().Err(err).Msg("list archived games")
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"games": ids,
	})
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if err := gc.gameService.DeleteGame(gameID, middleware.PlayerID(c)); err != nil {
		return sendError(c, err)
	}
	gc.log.Info().Str("gameId", gameID).Str("playerId", middleware.PlayerID(c)).Msg("game deleted")
	return c.JSON(fiber.Map{
		"message": "Game deleted",
		"gameId":  gameID,
	})
}

// Register mounts the REST routes on router.
func (gc *GameController) Register(router fiber.Router) {
	games := router.Group("/game")
	games.Post("/matchmaking/join", gc.JoinMatchmaking)
	games.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	games.Post("/create", gc.CreateGame)
	games.Post("/join/:gameId", gc.JoinGame)
	games.Get("/archive", gc.ArchivedGames)
	games.Get("/:gameId", gc.GetGameState)
	games.Delete("/:gameId", gc.DeleteGame)
	games.Get("/:gameId/history", gc.History)
	games.Post("/:gameId/select", gc.Select)
	games.Post("/:gameId/promote", gc.Promote)
	games.Post("/:gameId/promote/cancel", gc.CancelPromotion)
}
