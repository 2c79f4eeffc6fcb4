package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/squarechess-backend/internal/model"
	"github.com/benbeisheim/squarechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type HistoryArchive interface {
	SaveHistory(gameID string, history model.History) error
	LoadHistory(gameID string) (model.History, error)
	Games() ([]string, error)
	DeleteHistory(gameID string) error
}

// Snapshot is the game as sent to clients.
type Snapshot struct {
	GameID  string          `json:"gameId"`
	State   model.GameState `json:"state"`
	FEN     string          `json:"fen"`
	Players Players         `json:"players"`
}

// Session binds a rules engine game to its two seats, their clocks and the
// websocket connections watching it.
type Session struct {
	id      string
	game    *model.Game
	log     zerolog.Logger
	archive HistoryArchive

	mu       sync.Mutex
	seats    [2]string
	clocks   [2]*Clock
	active   model.Color
	archived int
	conns    map[string]*SyncConn

	unsubscribe func()
}

func NewSession(id string, log zerolog.Logger, archive HistoryArchive, clockTime time.Duration, opts ...model.Option) *Session {
	s := &Session{
		id:      id,
		game:    model.NewGame(opts...),
		log:     log.With().Str("gameId", id).Logger(),
		archive: archive,
		clocks:  [2]*Clock{NewClock(clockTime), NewClock(clockTime)},
		conns:   make(map[string]*SyncConn),
	}
	s.active = s.game.ActiveColor()
	s.unsubscribe = s.game.Subscribe(s.onState)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// AddPlayer seats playerID on the first free color, white first. The same
// player may take both seats.
func (s *Session) AddPlayer(playerID string) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range []model.Color{model.White, model.Black} {
		if s.seats[c] == "" {
			s.seats[c] = playerID
			s.log.Info().Str("playerId", playerID).Stringer("color", c).Msg("player seated")
			if s.full() {
				s.clocks[s.active].Start()
			}
			return c, nil
		}
	}
	for _, c := range []model.Color{model.White, model.Black} {
		if s.seats[c] == playerID {
			return c, nil
		}
	}
	return model.White, ErrGameFull
}

func (s *Session) full() bool {
	return s.seats[model.White] != "" && s.seats[model.Black] != ""
}

func (s *Session) seated(playerID string) bool {
	return s.seats[model.White] == playerID || s.seats[model.Black] == playerID
}

// seat returns the color playerID plays. both is set when the player
// holds both seats, in which case every turn is theirs.
func (s *Session) seat(playerID string) (color model.Color, both bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	white, black := s.seats[model.White] == playerID, s.seats[model.Black] == playerID
	switch {
	case white && black:
		return model.White, true, nil
	case white:
		return model.White, false, nil
	case black:
		return model.Black, false, nil
	}
	return model.White, false, fmt.Errorf("game %s: %w", s.id, ErrNotSeated)
}

// Select forwards a click from playerID. Whose turn it is gets checked by
// the game inside the transition that applies the click.
func (s *Session) Select(ctx context.Context, playerID string, rank, file int) (model.GameState, error) {
	color, both, err := s.seat(playerID)
	if err != nil {
		return model.GameState{}, err
	}
	if both {
		return s.game.SelectSquare(ctx, rank, file)
	}
	return s.game.SelectSquareAs(ctx, color, rank, file)
}

func (s *Session) Promote(playerID string, kind model.PieceKind) (model.GameState, error) {
	color, both, err := s.seat(playerID)
	if err != nil {
		return model.GameState{}, err
	}
	if both {
		return s.game.Promote(kind)
	}
	return s.game.PromoteAs(color, kind)
}

func (s *Session) CancelPromotion(playerID string) (model.GameState, error) {
	color, both, err := s.seat(playerID)
	if err != nil {
		return model.GameState{}, err
	}
	if both {
		return s.game.CancelPromotion()
	}
	return s.game.CancelPromotionAs(color)
}

func (s *Session) History() model.History {
	return s.game.State().History
}

func (s *Session) Snapshot() Snapshot {
	return s.snapshot(s.game.State())
}

func (s *Session) snapshot(state model.GameState) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		GameID: s.id,
		State:  state,
		FEN:    state.FEN(),
		Players: Players{
			White: s.clientPlayer(model.White),
			Black: s.clientPlayer(model.Black),
		},
	}
}

func (s *Session) clientPlayer(c model.Color) ClientPlayer {
	return ClientPlayer{
		ID:       s.seats[c],
		Color:    c,
		TimeLeft: tenths(s.clocks[c].TimeLeft()),
	}
}

// onState runs after every transition of the game: it hands the clock to
// the new side, archives new history and pushes the snapshot to watchers.
func (s *Session) onState(state model.GameState) {
	s.mu.Lock()
	if state.Active != s.active {
		s.clocks[s.active].Stop()
		if s.full() {
			s.clocks[state.Active].Start()
		}
		s.active = state.Active
	}
	var history model.History
	if len(state.History) > s.archived {
		history = state.History
		s.archived = len(state.History)
	}
	s.mu.Unlock()

	if history != nil && s.archive != nil {
		if err := s.archive.SaveHistory(s.id, history); err != nil {
			s.log.Error().Err(err).Msg("archive history")
		}
	}
	s.broadcast(s.snapshot(state))
}

// RegisterConnection attaches conn for playerID and sends it the current
// snapshot. Seated players may always watch; others only while a seat is
// open. A second connection for the same player is closed and rejected.
// Writes go through a SyncConn; callers that also write to conn should
// pass one.
func (s *Session) RegisterConnection(playerID string, c Conn) error {
	conn := NewSyncConn(c)
	s.mu.Lock()
	if !s.seated(playerID) && s.full() {
		s.mu.Unlock()
		return fmt.Errorf("game %s: %w", s.id, ErrNotAuthorized)
	}
	if _, exists := s.conns[playerID]; exists {
		s.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return fmt.Errorf("game %s player %s: %w", s.id, playerID, ErrDuplicateConn)
	}
	s.conns[playerID] = conn
	s.mu.Unlock()

	s.log.Debug().Str("playerId", playerID).Msg("connection registered")
	return s.send(playerID, conn, s.Snapshot())
}

// UnregisterConnection removes conn unless it has already been replaced.
func (s *Session) UnregisterConnection(playerID string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.conns[playerID]; ok && current.wraps(conn) {
		delete(s.conns, playerID)
		s.log.Debug().Str("playerId", playerID).Msg("connection unregistered")
	}
}

func (s *Session) broadcast(snapshot Snapshot) {
	s.mu.Lock()
	active := make(map[string]*SyncConn, len(s.conns))
	for playerID, conn := range s.conns {
		active[playerID] = conn
	}
	s.mu.Unlock()

	for playerID, conn := range active {
		if err := s.send(playerID, conn, snapshot); err != nil {
			s.UnregisterConnection(playerID, conn)
		}
	}
}

func (s *Session) send(playerID string, conn Conn, snapshot Snapshot) error {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, snapshot)
	if err != nil {
		s.log.Error().Err(err).Msg("encode snapshot")
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn().Err(err).Str("playerId", playerID).Msg("send state")
		return err
	}
	return nil
}

// Close stops the clocks and drops every connection.
func (s *Session) Close() {
	s.unsubscribe()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clocks {
		c.Stop()
	}
	for playerID, conn := range s.conns {
		conn.Close()
		delete(s.conns, playerID)
	}
}
