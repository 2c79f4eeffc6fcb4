package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelected
	PhaseAwaitingPromotion
)

func (p Phase) String() string {
	switch p {
	case PhaseSelected:
		return "selected"
	case PhaseAwaitingPromotion:
		return "awaitingPromotion"
	}
	return "idle"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = PhaseIdle
	case "selected":
		*p = PhaseSelected
	case "awaitingPromotion":
		*p = PhaseAwaitingPromotion
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// PromotionRule selects which moves onto rank 1 or 8 ask for a promotion
// choice.
type PromotionRule int

const (
	PromotePawnsOnly PromotionRule = iota
	PromoteAnyPiece
)

func ParsePromotionRule(s string) (PromotionRule, error) {
	switch strings.ToLower(s) {
	case "pawns", "pawn":
		return PromotePawnsOnly, nil
	case "any":
		return PromoteAnyPiece, nil
	}
	return PromotePawnsOnly, fmt.Errorf("unknown promotion rule %q", s)
}

func (r PromotionRule) String() string {
	if r == PromoteAnyPiece {
		return "any"
	}
	return "pawns"
}

func (r PromotionRule) triggers(piece Occupant, c CandidateMove) bool {
	if c.Action != ActionMove && c.Action != ActionCapture {
		return false
	}
	if rank := c.Target.Rank(); rank != 1 && rank != 8 {
		return false
	}
	return r == PromoteAnyPiece || piece.Kind == Pawn
}

// Promoter supplies the piece a pawn becomes. An error abandons the choice.
type Promoter interface {
	Choose(ctx context.Context, color Color) (PieceKind, error)
}

type PromoterFunc func(ctx context.Context, color Color) (PieceKind, error)

func (f PromoterFunc) Choose(ctx context.Context, color Color) (PieceKind, error) {
	return f(ctx, color)
}

// PendingPromotion is a committed move held back until a piece is chosen.
type PendingPromotion struct {
	From Square        `json:"from"`
	To   Square        `json:"to"`
	Move CandidateMove `json:"move"`
}

// GameState is an immutable snapshot. Transitions build a new value and
// never write to the slices of an earlier one.
type GameState struct {
	Position   Position          `json:"position"`
	Active     Color             `json:"active"`
	History    History           `json:"history"`
	LegalMoves []CandidateMove   `json:"legalMoves"`
	Selected   Square            `json:"selected,omitempty"`
	Phase      Phase             `json:"phase"`
	Pending    *PendingPromotion `json:"pending,omitempty"`
	InCheck    bool              `json:"inCheck"`
	Castling   CastlingRights    `json:"castling"`
}

func newGameState(setup Setup) GameState {
	return GameState{
		Position:   setup.Position,
		Active:     setup.Active,
		History:    History{},
		LegalMoves: []CandidateMove{},
		Phase:      PhaseIdle,
		InCheck:    InCheck(setup.Position, setup.Active),
		Castling:   setup.Castling,
	}
}

// Setup returns the board, side to move and castling rights of s.
func (s GameState) Setup() Setup {
	return Setup{Position: s.Position, Active: s.Active, Castling: s.Castling}
}

func (s GameState) FEN() string {
	return FormatFEN(s.Setup())
}

// OccupantAt returns the piece at (rank, file); ok is false when the
// square is empty or off the board.
func (s GameState) OccupantAt(rank, file int) (Occupant, bool) {
	sq, ok := SquareAt(rank, file)
	if !ok {
		return Occupant{}, false
	}
	return s.Position.At(sq)
}

// LegalTargets lists the cached destinations of the current selection.
func (s GameState) LegalTargets() []Square {
	targets := make([]Square, 0, len(s.LegalMoves))
	for _, m := range s.LegalMoves {
		targets = append(targets, m.Target)
	}
	return targets
}

func (s GameState) candidate(sq Square) (CandidateMove, bool) {
	for _, m := range s.LegalMoves {
		if m.Target == sq {
			return m, true
		}
	}
	return CandidateMove{}, false
}

func (s GameState) idle() GameState {
	next := s
	next.Selected = NoSquare
	next.LegalMoves = []CandidateMove{}
	next.Phase = PhaseIdle
	next.Pending = nil
	return next
}

func (s GameState) selectSquare(sq Square, rule PromotionRule) (GameState, error) {
	if s.Phase == PhaseAwaitingPromotion {
		return s, ErrPromotionPending
	}
	if s.Selected != NoSquare {
		if c, ok := s.candidate(sq); ok {
			return s.commit(c, rule)
		}
	}
	if occ, ok := s.Position.At(sq); ok && occ.Color == s.Active {
		legal, err := legalMoves(s.Position, s.History, s.Castling, sq)
		if err != nil {
			return s, err
		}
		next := s
		next.Selected = sq
		next.LegalMoves = legal
		next.Phase = PhaseSelected
		return next, nil
	}
	return s.idle(), nil
}

func (s GameState) commit(c CandidateMove, rule PromotionRule) (GameState, error) {
	from := s.Selected
	piece, _ := s.Position.At(from)
	if rule.triggers(piece, c) {
		next := s
		next.Phase = PhaseAwaitingPromotion
		next.Pending = &PendingPromotion{From: from, To: c.Target, Move: c}
		next.LegalMoves = []CandidateMove{}
		return next, nil
	}
	pos, entry, err := apply(s.Position, s.LegalMoves, s.History, s.Castling, s.Active, c.Target, from)
	if err != nil {
		return s, err
	}
	return s.advance(pos, entry), nil
}

func (s GameState) promote(kind PieceKind) (GameState, error) {
	if s.Phase != PhaseAwaitingPromotion || s.Pending == nil {
		return s, ErrNoPromotionPending
	}
	if !kind.Promotable() {
		return s, fmt.Errorf("promote to %q: %w", kind, ErrInvalidPromotion)
	}
	p := s.Pending
	pos, moved, err := apply(s.Position, []CandidateMove{p.Move}, s.History, s.Castling, s.Active, p.To, p.From)
	if err != nil {
		return s, err
	}
	promotion := CandidateMove{Target: p.To, Action: ActionPromote, Promotion: kind}
	pos, promoted, err := apply(pos, []CandidateMove{promotion}, s.History.Append(moved), moved.Rights, s.Active, p.To, p.To)
	if err != nil {
		return s, err
	}
	return s.advance(pos, moved, promoted), nil
}

// cancelPromotion drops the pending move and reselects its source square.
func (s GameState) cancelPromotion() (GameState, error) {
	if s.Phase != PhaseAwaitingPromotion || s.Pending == nil {
		return s, ErrNoPromotionPending
	}
	from := s.Pending.From
	legal, err := legalMoves(s.Position, s.History, s.Castling, from)
	if err != nil {
		return s, err
	}
	next := s
	next.Phase = PhaseSelected
	next.Selected = from
	next.LegalMoves = legal
	next.Pending = nil
	return next, nil
}

func (s GameState) advance(pos Position, entries ...HistoryEntry) GameState {
	rights := s.Castling
	if n := len(entries); n > 0 {
		rights = entries[n-1].Rights
	}
	next := newGameState(Setup{Position: pos, Active: s.Active.Opposite(), Castling: rights})
	next.History = s.History.Append(entries...)
	return next
}

// turn rejects a step taken on behalf of a color that is not to move.
func turn(color Color, step stepFunc) stepFunc {
	return func(s GameState) (GameState, error) {
		if s.Active != color {
			return s, fmt.Errorf("%s to move: %w", s.Active, ErrNotYourTurn)
		}
		return step(s)
	}
}

type Option func(*Game)

// WithSetup starts the game from setup instead of the initial arrangement.
func WithSetup(setup Setup) Option {
	return func(g *Game) {
		g.state = newGameState(setup)
	}
}

func WithPromotionRule(rule PromotionRule) Option {
	return func(g *Game) {
		g.rule = rule
	}
}

// WithPromoter resolves promotion choices synchronously inside SelectSquare.
// Without one the game waits in PhaseAwaitingPromotion for Promote or
// CancelPromotion.
func WithPromoter(p Promoter) Option {
	return func(g *Game) {
		g.promoter = p
	}
}

type listener struct {
	id int
	fn func(GameState)
}

// Game owns the current GameState and drives the selection/turn state
// machine. Every transition replaces the state as a whole.
type Game struct {
	mu        sync.Mutex
	state     GameState
	rule      PromotionRule
	promoter  Promoter
	listeners []listener
	nextID    int
}

func NewGame(opts ...Option) *Game {
	g := &Game{
		state: newGameState(InitialSetup()),
		rule:  PromotePawnsOnly,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *Game) OccupantAt(rank, file int) (Occupant, bool) {
	return g.State().OccupantAt(rank, file)
}

func (g *Game) ActiveColor() Color {
	return g.State().Active
}

func (g *Game) LegalTargets() []Square {
	return g.State().LegalTargets()
}

// Subscribe registers fn to receive every new state. The returned function
// removes the registration.
func (g *Game) Subscribe(fn func(GameState)) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, listener{id: id, fn: fn})
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, l := range g.listeners {
			if l.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

// SelectSquare handles a click on (rank, file): it commits a cached legal
// target, selects a piece of the active color, or clears the selection.
// If the commit needs a promotion choice and a Promoter is configured, the
// choice is made before returning; a failed choice cancels the move.
func (g *Game) SelectSquare(ctx context.Context, rank, file int) (GameState, error) {
	return g.selectSquare(ctx, rank, file, anyTurn)
}

// SelectSquareAs is SelectSquare on behalf of color. It fails with
// ErrNotYourTurn unless color is to move when the click is handled.
func (g *Game) SelectSquareAs(ctx context.Context, color Color, rank, file int) (GameState, error) {
	return g.selectSquare(ctx, rank, file, func(step stepFunc) stepFunc {
		return turn(color, step)
	})
}

type stepFunc = func(GameState) (GameState, error)

func anyTurn(step stepFunc) stepFunc {
	return step
}

func (g *Game) selectSquare(ctx context.Context, rank, file int, guard func(stepFunc) stepFunc) (GameState, error) {
	sq, ok := SquareAt(rank, file)
	if !ok {
		return g.State(), fmt.Errorf("select (%d, %d): %w", rank, file, ErrInvalidSquare)
	}
	state, err := g.transition(guard(func(s GameState) (GameState, error) {
		return s.selectSquare(sq, g.rule)
	}))
	if err != nil || state.Phase != PhaseAwaitingPromotion || g.promoter == nil {
		return state, err
	}

	kind, err := g.promoter.Choose(ctx, state.Active)
	if err != nil || !kind.Promotable() {
		return g.transition(guard(GameState.cancelPromotion))
	}
	return g.transition(guard(func(s GameState) (GameState, error) {
		return s.promote(kind)
	}))
}

// Promote completes a pending promotion with the chosen kind.
func (g *Game) Promote(kind PieceKind) (GameState, error) {
	return g.transition(func(s GameState) (GameState, error) {
		return s.promote(kind)
	})
}

// PromoteAs is Promote on behalf of color.
func (g *Game) PromoteAs(color Color, kind PieceKind) (GameState, error) {
	return g.transition(turn(color, func(s GameState) (GameState, error) {
		return s.promote(kind)
	}))
}

// CancelPromotion abandons a pending promotion; the board is unchanged and
// the pawn stays selected.
func (g *Game) CancelPromotion() (GameState, error) {
	return g.transition(GameState.cancelPromotion)
}

func (g *Game) CancelPromotionAs(color Color) (GameState, error) {
	return g.transition(turn(color, GameState.cancelPromotion))
}

func (g *Game) transition(step stepFunc) (GameState, error) {
	g.mu.Lock()
	next, err := step(g.state)
	if err != nil {
		current := g.state
		g.mu.Unlock()
		return current, err
	}
	g.state = next
	listeners := make([]func(GameState), 0, len(g.listeners))
	for _, l := range g.listeners {
		listeners = append(listeners, l.fn)
	}
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next, nil
}
