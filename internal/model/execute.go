package model

import (
	"fmt"
	"slices"
)

// Apply performs the candidate tagged for target among candidates, moving
// the piece on source. It returns a new position and the history entry
// recording it; pos itself is left untouched. For ActionPromote, source and
// target are the same square and the candidate carries the chosen kind.
func Apply(pos Position, candidates []CandidateMove, history History, color Color, target, source Square) (Position, HistoryEntry, error) {
	return apply(pos, candidates, history, history.Rights(), color, target, source)
}

// apply is Apply with the castling rights in force before the move given
// explicitly.
func apply(pos Position, candidates []CandidateMove, history History, rights CastlingRights, color Color, target, source Square) (Position, HistoryEntry, error) {
	i := slices.IndexFunc(candidates, func(c CandidateMove) bool { return c.Target == target })
	if i < 0 {
		return pos, HistoryEntry{}, fmt.Errorf("apply %s-%s: %w", source, target, ErrNoCandidate)
	}
	c := candidates[i]
	if !source.Valid() || !target.Valid() {
		return pos, HistoryEntry{}, fmt.Errorf("apply %s-%s: %w", source, target, ErrInvalidSquare)
	}
	piece, ok := pos.At(source)
	if !ok {
		return pos, HistoryEntry{}, fmt.Errorf("apply %s-%s: %w", source, target, ErrEmptySquare)
	}

	var (
		next     Position
		captured *Occupant
	)
	switch c.Action {
	case ActionMove, ActionCapture:
		if occ, ok := pos.At(target); ok {
			captured = &occ
		}
		next = pos.without(source).with(target, piece)

	case ActionEnPassant:
		behind := target + 8
		if color == Black {
			behind = target - 8
		}
		if occ, ok := pos.At(behind); ok {
			captured = &occ
		}
		next = pos.without(source).with(target, piece)
		if behind.Valid() {
			next = next.without(behind)
		}

	case ActionShortCastle, ActionLongCastle:
		side, ok := castleSideFor(color, c.Action)
		if !ok {
			return pos, HistoryEntry{}, fmt.Errorf("apply %s-%s: no castle for %s", source, target, color)
		}
		rookTo := target - 1
		if c.Action == ActionLongCastle {
			rookTo = target + 1
		}
		rook, _ := pos.At(side.rook)
		next = pos.without(source).with(target, piece)
		next = next.without(side.rook).with(rookTo, rook)

	case ActionPromote:
		if source != target {
			return pos, HistoryEntry{}, fmt.Errorf("apply promotion %s-%s: source and target differ", source, target)
		}
		if !c.Promotion.Promotable() {
			return pos, HistoryEntry{}, fmt.Errorf("apply promotion to %q: %w", c.Promotion, ErrInvalidPromotion)
		}
		next = pos.with(target, Occupant{Kind: c.Promotion, Color: piece.Color})

	default:
		return pos, HistoryEntry{}, fmt.Errorf("apply %s-%s: unknown action %s", source, target, c.Action)
	}

	entry := HistoryEntry{
		Count:    history.nextCount(),
		From:     source,
		To:       target,
		Action:   c.Action,
		Piece:    piece,
		Captured: captured,
		Position: next,
		Rights:   rights.after(source, target),
	}
	entry.Notation = entry.notation()
	return next, entry, nil
}
