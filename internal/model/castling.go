package model

import (
	"fmt"
	"strings"
)

// CastlingRights holds one flag per color and side. A flag is cleared the
// first time its king or rook leaves (or is captured on) its home square
// and is never set again.
type CastlingRights uint8

const (
	WhiteShort CastlingRights = 1 << iota
	WhiteLong
	BlackShort
	BlackLong

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteShort | WhiteLong | BlackShort | BlackLong
)

func (r CastlingRights) String() string {
	if r == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if r&WhiteShort != 0 {
		sb.WriteByte('K')
	}
	if r&WhiteLong != 0 {
		sb.WriteByte('Q')
	}
	if r&BlackShort != 0 {
		sb.WriteByte('k')
	}
	if r&BlackLong != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// ParseCastlingRights reads the FEN castling field: "-" or any of "KQkq".
func ParseCastlingRights(s string) (CastlingRights, error) {
	if s == "-" {
		return NoCastling, nil
	}
	if s == "" {
		return NoCastling, fmt.Errorf("empty castling rights")
	}
	var r CastlingRights
	for _, ch := range s {
		var flag CastlingRights
		switch ch {
		case 'K':
			flag = WhiteShort
		case 'Q':
			flag = WhiteLong
		case 'k':
			flag = BlackShort
		case 'q':
			flag = BlackLong
		default:
			return NoCastling, fmt.Errorf("castling rights %q: unknown flag %q", s, ch)
		}
		if r&flag != 0 {
			return NoCastling, fmt.Errorf("castling rights %q: repeated flag %q", s, ch)
		}
		r |= flag
	}
	return r, nil
}

func (r CastlingRights) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *CastlingRights) UnmarshalText(text []byte) error {
	rights, err := ParseCastlingRights(string(text))
	if err != nil {
		return err
	}
	*r = rights
	return nil
}

type castleSide struct {
	action  MoveAction
	right   CastlingRights
	king    Square
	rook    Square
	kingTo  Square
	transit Square
	between []Square
}

// castleSides is indexed by color; short castling is listed first.
var castleSides = [2][2]castleSide{
	White: {
		{action: ActionShortCastle, right: WhiteShort, king: 61, rook: 64, kingTo: 63, transit: 62, between: []Square{62, 63}},
		{action: ActionLongCastle, right: WhiteLong, king: 61, rook: 57, kingTo: 59, transit: 60, between: []Square{58, 59, 60}},
	},
	Black: {
		{action: ActionShortCastle, right: BlackShort, king: 5, rook: 8, kingTo: 7, transit: 6, between: []Square{6, 7}},
		{action: ActionLongCastle, right: BlackLong, king: 5, rook: 1, kingTo: 3, transit: 4, between: []Square{2, 3, 4}},
	},
}

func castleSideFor(c Color, action MoveAction) (castleSide, bool) {
	for _, side := range castleSides[c] {
		if side.action == action {
			return side, true
		}
	}
	return castleSide{}, false
}

// after clears every right whose king or rook home square is touched by a
// move from one square to another.
func (r CastlingRights) after(from, to Square) CastlingRights {
	for _, sides := range castleSides {
		for _, side := range sides {
			if from == side.king || to == side.king || from == side.rook || to == side.rook {
				r &^= side.right
			}
		}
	}
	return r
}

// Has reports whether every flag in want is still set.
func (r CastlingRights) Has(want CastlingRights) bool {
	return r&want == want
}
