package service

import (
	"errors"

	"github.com/benbeisheim/squarechess-backend/internal/model"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrGameFull      = errors.New("game is full")
	ErrNotSeated     = errors.New("player is not seated in this game")
	ErrNotYourTurn   = model.ErrNotYourTurn
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrNotAuthorized = errors.New("not authorized to join this game")
	ErrDuplicateConn = errors.New("connection already exists")
)
