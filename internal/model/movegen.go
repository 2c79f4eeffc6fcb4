package model

import (
	"fmt"
	"slices"
)

// generator holds the inputs shared by the per-piece move functions.
type generator struct {
	pos     Position
	history History
	rights  CastlingRights
	color   Color
	square  Square
	rank    int
	file    int
}

// Generate returns the pseudo-legal candidate moves for the piece on sq.
// It does not check whether a move leaves the mover's king attacked; see
// FilterLegal. Castling follows history.Rights.
func Generate(pos Position, history History, sq Square) ([]CandidateMove, error) {
	return generate(pos, history, history.Rights(), sq)
}

func generate(pos Position, history History, rights CastlingRights, sq Square) ([]CandidateMove, error) {
	rank, file, ok := sq.RankFile()
	if !ok {
		return nil, fmt.Errorf("generate moves for %d: %w", sq, ErrInvalidSquare)
	}
	occ, ok := pos.At(sq)
	if !ok {
		return nil, fmt.Errorf("generate moves for %s: %w", sq, ErrEmptySquare)
	}
	g := generator{
		pos:     pos,
		history: history,
		rights:  rights,
		color:   occ.Color,
		square:  sq,
		rank:    rank,
		file:    file,
	}

	switch occ.Kind {
	case Pawn:
		return g.pawnMoves(), nil
	case Knight:
		return g.knightMoves(), nil
	case Bishop:
		return g.bishopMoves(false), nil
	case Rook:
		return g.rookMoves(false), nil
	case Queen:
		return append(g.bishopMoves(false), g.rookMoves(false)...), nil
	case King:
		moves := append(g.bishopMoves(true), g.rookMoves(true)...)
		return append(moves, g.castleMoves()...), nil
	default:
		return nil, fmt.Errorf("generate moves for %s: unknown piece %d", sq, occ.Kind)
	}
}

// target classifies a destination: a Move if empty, a Capture if held by
// the opponent, excluded if held by a friendly piece.
func (g generator) target(to Square) (CandidateMove, bool) {
	occ, occupied := g.pos.At(to)
	if !occupied {
		return CandidateMove{Target: to, Action: ActionMove}, true
	}
	if occ.Color != g.color {
		return CandidateMove{Target: to, Action: ActionCapture}, true
	}
	return CandidateMove{}, false
}

func (g generator) pawnMoves() []CandidateMove {
	startRank, delta := 7, Square(-8)
	if g.color == Black {
		startRank, delta = 2, 8
	}
	var captures []Square
	if g.file != 1 {
		captures = append(captures, delta-1)
	}
	if g.file != 8 {
		captures = append(captures, delta+1)
	}

	var moves []CandidateMove
	one := g.square + delta
	if one.Valid() && !g.pos.Has(one) {
		moves = append(moves, CandidateMove{Target: one, Action: ActionMove})
		two := one + delta
		if g.rank == startRank && two.Valid() && !g.pos.Has(two) {
			moves = append(moves, CandidateMove{Target: two, Action: ActionMove})
		}
	}
	for _, d := range captures {
		to := g.square + d
		if occ, ok := g.pos.At(to); ok && occ.Color != g.color {
			moves = append(moves, CandidateMove{Target: to, Action: ActionCapture})
		}
	}
	if to, ok := g.enPassantTarget(delta); ok {
		moves = append(moves, CandidateMove{Target: to, Action: ActionEnPassant})
	}
	return moves
}

// enPassantTarget looks only at the most recent history entry: an
// opposing pawn that just moved 16 squares and now stands beside this one.
func (g generator) enPassantTarget(delta Square) (Square, bool) {
	last, ok := g.history.Last()
	if !ok {
		return NoSquare, false
	}
	passed, ok := g.pos.At(last.To)
	if !ok || passed.Kind != Pawn || passed.Color == g.color {
		return NoSquare, false
	}
	if abs(int(last.To-last.From)) != 16 {
		return NoSquare, false
	}
	if last.To.Rank() != g.rank || abs(last.To.File()-g.file) != 1 {
		return NoSquare, false
	}
	to := last.To + delta
	if !to.Valid() || g.pos.Has(to) {
		return NoSquare, false
	}
	return to, true
}

func (g generator) knightMoves() []CandidateMove {
	var deltas []Square
	if g.file != 1 {
		deltas = append(deltas, -17, 15)
		if g.file != 2 {
			deltas = append(deltas, -10, 6)
		}
	}
	if g.file != 8 {
		deltas = append(deltas, -15, 17)
		if g.file != 7 {
			deltas = append(deltas, -6, 10)
		}
	}
	switch g.rank {
	case 1:
		deltas = keep(deltas, func(d Square) bool { return d > 0 })
	case 2:
		deltas = keep(deltas, func(d Square) bool { return d != -17 && d != -15 })
	case 7:
		deltas = keep(deltas, func(d Square) bool { return d != 15 && d != 17 })
	case 8:
		deltas = keep(deltas, func(d Square) bool { return d < 0 })
	}

	var moves []CandidateMove
	for _, d := range deltas {
		to := g.square + d
		if !to.Valid() {
			continue
		}
		if m, ok := g.target(to); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

func (g generator) bishopMoves(once bool) []CandidateMove {
	var deltas []Square
	if g.file != 1 {
		deltas = append(deltas, -9, 7)
	}
	if g.file != 8 {
		deltas = append(deltas, -7, 9)
	}
	switch g.rank {
	case 1:
		deltas = keep(deltas, func(d Square) bool { return d > 0 })
	case 8:
		deltas = keep(deltas, func(d Square) bool { return d < 0 })
	}

	atEdge := func(rank, file int) bool {
		return rank == 1 || rank == 8 || file == 1 || file == 8
	}
	var moves []CandidateMove
	for _, d := range deltas {
		moves = g.walk(moves, d, once, atEdge)
	}
	return moves
}

type direction struct {
	delta  Square
	atEdge func(rank, file int) bool
}

var (
	north = direction{delta: -8, atEdge: func(rank, _ int) bool { return rank == 1 }}
	south = direction{delta: 8, atEdge: func(rank, _ int) bool { return rank == 8 }}
	west  = direction{delta: -1, atEdge: func(_, file int) bool { return file == 1 }}
	east  = direction{delta: 1, atEdge: func(_, file int) bool { return file == 8 }}
)

func (g generator) rookMoves(once bool) []CandidateMove {
	var dirs []direction
	for _, dir := range []direction{north, south, west, east} {
		if !dir.atEdge(g.rank, g.file) {
			dirs = append(dirs, dir)
		}
	}
	var moves []CandidateMove
	for _, dir := range dirs {
		moves = g.walk(moves, dir.delta, once, dir.atEdge)
	}
	return moves
}

// walk steps from the source by delta until it meets a piece or an edge.
// An opposing piece is included as a capture; the last square before an
// edge is included.
func (g generator) walk(moves []CandidateMove, delta Square, once bool, atEdge func(rank, file int) bool) []CandidateMove {
	for to := g.square + delta; to.Valid(); to += delta {
		m, ok := g.target(to)
		if !ok {
			return moves
		}
		moves = append(moves, m)
		if m.Action == ActionCapture || once || atEdge(to.Rank(), to.File()) {
			return moves
		}
	}
	return moves
}

// castleMoves offers castling when the right is intact, king and rook
// stand on their home squares and every square between them is empty.
// Attacked transit squares are rejected later by FilterLegal.
func (g generator) castleMoves() []CandidateMove {
	var moves []CandidateMove
	for _, side := range castleSides[g.color] {
		if !g.rights.Has(side.right) || g.square != side.king {
			continue
		}
		if occ, ok := g.pos.At(side.king); !ok || occ != (Occupant{Kind: King, Color: g.color}) {
			continue
		}
		if occ, ok := g.pos.At(side.rook); !ok || occ != (Occupant{Kind: Rook, Color: g.color}) {
			continue
		}
		if slices.ContainsFunc(side.between, g.pos.Has) {
			continue
		}
		moves = append(moves, CandidateMove{Target: side.kingTo, Action: side.action})
	}
	return moves
}

func keep(deltas []Square, ok func(Square) bool) []Square {
	return slices.DeleteFunc(deltas, func(d Square) bool { return !ok(d) })
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
