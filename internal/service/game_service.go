package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbeisheim/squarechess-backend/internal/model"
	"github.com/benbeisheim/squarechess-backend/internal/storage"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame(fen string) (string, error) {
	gameID, err := gs.gameManager.CreateGame(fen)
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (Snapshot, error) {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Select forwards a click from playerID and returns the resulting snapshot.
func (gs *GameService) Select(ctx context.Context, gameID, playerID string, rank, file int) (Snapshot, error) {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	state, err := session.Select(ctx, playerID, rank, file)
	if err != nil {
		return Snapshot{}, err
	}
	return session.snapshot(state), nil
}

func (gs *GameService) Promote(gameID, playerID string, kind model.PieceKind) (Snapshot, error) {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	state, err := session.Promote(playerID, kind)
	if err != nil {
		return Snapshot{}, err
	}
	return session.snapshot(state), nil
}

func (gs *GameService) CancelPromotion(gameID, playerID string) (Snapshot, error) {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	state, err := session.CancelPromotion(playerID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.snapshot(state), nil
}

// History returns the archived history of gameID. A live game that has not
// moved yet has an empty history.
func (gs *GameService) History(gameID string) (model.History, error) {
	archive := gs.gameManager.archive
	if archive != nil {
		history, err := archive.LoadHistory(gameID)
		if err == nil {
			return history, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return nil, err
	}
	return session.History(), nil
}

func (gs *GameService) ArchivedGames() ([]string, error) {
	if gs.gameManager.archive == nil {
		return []string{}, nil
	}
	return gs.gameManager.archive.Games()
}

// DeleteGame ends a live game on behalf of one of its players. Connected
// clients are closed and the archived history is removed.
func (gs *GameService) DeleteGame(gameID, playerID string) error {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return err
	}
	if _, _, err := session.seat(playerID); err != nil {
		return err
	}
	if err := gs.gameManager.RemoveGame(gameID); err != nil {
		return err
	}
	if archive := gs.gameManager.archive; archive != nil {
		if err := archive.DeleteHistory(gameID); err != nil {
			return fmt.Errorf("delete history of %s: %w", gameID, err)
		}
	}
	return nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return err
	}
	return session.RegisterConnection(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	session, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return
	}
	session.UnregisterConnection(playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
