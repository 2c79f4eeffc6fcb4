package model

import (
	"fmt"
	"slices"
)

// FilterLegal keeps the candidates that do not leave the mover's king
// attacked. Each candidate is applied to a copy of the position and the
// opponent's replies are produced with Generate, never with FilterLegal,
// so the look-ahead is exactly one ply. Input order is preserved.
func FilterLegal(pos Position, history History, candidates []CandidateMove, color Color, source Square) ([]CandidateMove, error) {
	legal := make([]CandidateMove, 0, len(candidates))
	for _, c := range candidates {
		next, _, err := Apply(pos, []CandidateMove{c}, history, color, c.Target, source)
		if err != nil {
			return nil, fmt.Errorf("simulate %s-%s: %w", source, c.Target, err)
		}
		king, ok := next.KingSquare(color)
		if !ok {
			legal = append(legal, c)
			continue
		}
		watched := []Square{king}
		if c.Action.isCastle() {
			if side, ok := castleSideFor(color, c.Action); ok {
				watched = append(watched, side.transit)
			}
		}
		if !attacked(next, color.Opposite(), watched...) {
			legal = append(legal, c)
		}
	}
	return legal, nil
}

// attacked reports whether any pseudo-legal move of the attacker targets
// one of the squares.
func attacked(pos Position, attacker Color, squares ...Square) bool {
	for _, sq := range pos.Occupied() {
		if occ, _ := pos.At(sq); occ.Color != attacker {
			continue
		}
		replies, err := Generate(pos, nil, sq)
		if err != nil {
			continue
		}
		for _, r := range replies {
			if slices.Contains(squares, r.Target) {
				return true
			}
		}
	}
	return false
}

// LegalMoves generates and filters the moves of the piece on sq.
func LegalMoves(pos Position, history History, sq Square) ([]CandidateMove, error) {
	return legalMoves(pos, history, history.Rights(), sq)
}

func legalMoves(pos Position, history History, rights CastlingRights, sq Square) ([]CandidateMove, error) {
	candidates, err := generate(pos, history, rights, sq)
	if err != nil {
		return nil, err
	}
	occ, _ := pos.At(sq)
	return FilterLegal(pos, history, candidates, occ.Color, sq)
}

// LegalMovesForColor returns the legal moves of every piece of a color,
// keyed by source square. Pieces without a legal move are omitted.
func LegalMovesForColor(pos Position, history History, color Color) (map[Square][]CandidateMove, error) {
	all := make(map[Square][]CandidateMove)
	for _, sq := range pos.Occupied() {
		if occ, _ := pos.At(sq); occ.Color != color {
			continue
		}
		moves, err := LegalMoves(pos, history, sq)
		if err != nil {
			return nil, err
		}
		if len(moves) > 0 {
			all[sq] = moves
		}
	}
	return all, nil
}

// InCheck reports whether the king of color is attacked in pos.
func InCheck(pos Position, color Color) bool {
	king, ok := pos.KingSquare(color)
	if !ok {
		return false
	}
	return attacked(pos, color.Opposite(), king)
}
