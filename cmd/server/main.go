package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/squarechess-backend/internal/config"
	"github.com/benbeisheim/squarechess-backend/internal/controller"
	"github.com/benbeisheim/squarechess-backend/internal/logging"
	"github.com/benbeisheim/squarechess-backend/internal/middleware"
	"github.com/benbeisheim/squarechess-backend/internal/service"
	"github.com/benbeisheim/squarechess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		bootLog := logging.New(os.Stderr, config.Default().LogLevel, "console")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	archive, err := storage.Open(cfg.ArchiveDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ArchiveDir).Msg("open archive")
	}
	defer archive.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	settings := service.DefaultSettings()
	settings.PromotionRule = cfg.PromotionRule
	settings.ClockTime = cfg.ClockTime
	gameManager := service.NewGameManager(log, archive, settings)
	defer gameManager.Close()
	go gameManager.StartMatchmaking(ctx)
	gameService := service.NewGameService(gameManager)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, log)
	wsController := controller.NewWebSocketController(gameService, log)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	// Set up WebSocket routes
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.AllowOrigins,
	}
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID(log), middleware.WebSocketUpgrade())
	wsRoutes.Get("/game/:gameId", websocket.New(wsController.HandleConnection, wsConfig))
	wsRoutes.Get("/matchmaking", websocket.New(wsController.HandleMatchmaking, wsConfig))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsurePlayerID(log))
	gameController.Register(api)

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Str("promotion", cfg.PromotionRule.String()).Msg("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error().Err(err).Msg("listen")
	}
}
