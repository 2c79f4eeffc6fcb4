package controller

import (
	"errors"

	"github.com/benbeisheim/squarechess-backend/internal/model"
	"github.com/benbeisheim/squarechess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotSeated),
		errors.Is(err, service.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrGameExists),
		errors.Is(err, service.ErrAlreadyQueued),
		errors.Is(err, model.ErrPromotionPending),
		errors.Is(err, model.ErrNoPromotionPending):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidSquare),
		errors.Is(err, model.ErrEmptySquare),
		errors.Is(err, model.ErrNoCandidate),
		errors.Is(err, model.ErrInvalidPromotion),
		errors.Is(err, model.ErrInvalidFEN):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
