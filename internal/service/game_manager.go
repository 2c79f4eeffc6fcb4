package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/squarechess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Settings struct {
	PromotionRule model.PromotionRule
	ClockTime     time.Duration
	MatchInterval time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		PromotionRule: model.PromotePawnsOnly,
		ClockTime:     600 * time.Second,
		MatchInterval: time.Second,
	}
}

type GameManager struct {
	games            map[string]*Session
	queue            *Queue
	matchingChannels map[string]chan MatchFoundEvent
	mu               sync.RWMutex

	log      zerolog.Logger
	archive  HistoryArchive
	settings Settings
	newID    func() string
}

func NewGameManager(log zerolog.Logger, archive HistoryArchive, settings Settings) *GameManager {
	return &GameManager{
		games:            make(map[string]*Session),
		queue:            NewQueue(),
		matchingChannels: make(map[string]chan MatchFoundEvent),
		log:              log,
		archive:          archive,
		settings:         settings,
		newID:            uuid.NewString,
	}
}

// StartMatchmaking pairs queued players every MatchInterval until ctx ends.
func (gm *GameManager) StartMatchmaking(ctx context.Context) {
	ticker := time.NewTicker(gm.settings.MatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest-waiting players into a new game and
// notifies both. It reports whether a pair was made.
func (gm *GameManager) matchOnce() bool {
	first, second, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	gameID := gm.newID()
	session := gm.newSession(gameID)
	firstColor, err := session.AddPlayer(first.ID)
	if err != nil {
		gm.log.Error().Err(err).Str("playerId", first.ID).Msg("seat matched player")
		return true
	}
	secondColor, err := session.AddPlayer(second.ID)
	if err != nil {
		gm.log.Error().Err(err).Str("playerId", second.ID).Msg("seat matched player")
		return true
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.games[gameID] = session
	gm.log.Info().Str("gameId", gameID).Str("white", first.ID).Str("black", second.ID).Msg("match found")

	gm.notifyMatch(first.ID, MatchFoundEvent{GameID: gameID, Color: firstColor})
	gm.notifyMatch(second.ID, MatchFoundEvent{GameID: gameID, Color: secondColor})
	return true
}

// notifyMatch must be called with gm.mu held.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.log.Warn().Str("playerId", playerID).Msg("no matchmaking channel for matched player")
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		gm.log.Warn().Str("playerId", playerID).Msg("matchmaking channel full")
	}
	close(ch)
}

// RegisterMatchmakingChannel routes playerID's match event to ch, closing any
// channel registered earlier.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the registered one.
// The channel is not closed here.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) newSession(gameID string, opts ...model.Option) *Session {
	opts = append([]model.Option{model.WithPromotionRule(gm.settings.PromotionRule)}, opts...)
	return NewSession(gameID, gm.log, gm.archive, gm.settings.ClockTime, opts...)
}

// CreateGame starts a game from the initial position, or from fen when it
// is not empty.
func (gm *GameManager) CreateGame(fen string) (string, error) {
	var opts []model.Option
	if fen != "" {
		setup, err := model.ParseFEN(fen)
		if err != nil {
			return "", err
		}
		opts = append(opts, model.WithSetup(setup))
	}

	gameID := gm.newID()

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return "", fmt.Errorf("create %s: %w", gameID, ErrGameExists)
	}
	gm.games[gameID] = gm.newSession(gameID, opts...)
	gm.log.Info().Str("gameId", gameID).Msg("game created")
	return gameID, nil
}

func (gm *GameManager) GetSession(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	session, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	return session, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	session, err := gm.GetSession(gameID)
	if err != nil {
		return model.White, err
	}
	return session.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(Player{ID: playerID}); err != nil {
		gm.log.Warn().Err(err).Str("playerId", playerID).Msg("join matchmaking")
		return err
	}
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

// RemoveGame closes and forgets a game. Its archived history is kept.
func (gm *GameManager) RemoveGame(gameID string) error {
	gm.mu.Lock()
	session, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	session.Close()
	return nil
}

// Close shuts down every game.
func (gm *GameManager) Close() {
	gm.mu.Lock()
	sessions := make([]*Session, 0, len(gm.games))
	for id, s := range gm.games {
		sessions = append(sessions, s)
		delete(gm.games, id)
	}
	gm.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
