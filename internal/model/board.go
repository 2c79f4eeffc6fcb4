package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Color int

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

type PieceKind int

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceKindNames = map[PieceKind]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (p PieceKind) String() string {
	return pieceKindNames[p]
}

// ParsePieceKind accepts the lowercase names used on the wire.
func ParsePieceKind(s string) (PieceKind, error) {
	for kind, name := range pieceKindNames {
		if strings.EqualFold(s, name) {
			return kind, nil
		}
	}
	return NoPiece, fmt.Errorf("unknown piece %q", s)
}

func (p PieceKind) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PieceKind) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPiece
		return nil
	}
	kind, err := ParsePieceKind(string(text))
	if err != nil {
		return err
	}
	*p = kind
	return nil
}

// Promotable reports whether a pawn may become this kind.
func (p PieceKind) Promotable() bool {
	return p == Knight || p == Bishop || p == Rook || p == Queen
}

func (p PieceKind) notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

type Occupant struct {
	Kind  PieceKind `json:"kind"`
	Color Color     `json:"color"`
}

// Square is a linear board index in [1, 64]: (rank-1)*8 + file.
// Rank 1 is Black's back rank and file 1 is the a-file.
type Square int

const NoSquare Square = 0

// SquareAt maps a rank and file in [1, 8] to a square.
func SquareAt(rank, file int) (Square, bool) {
	if rank < 1 || rank > 8 || file < 1 || file > 8 {
		return NoSquare, false
	}
	return Square((rank-1)*8 + file), true
}

func (s Square) Valid() bool {
	return s >= 1 && s <= 64
}

// RankFile is the inverse of SquareAt; ok is false outside [1, 64].
func (s Square) RankFile() (rank, file int, ok bool) {
	if !s.Valid() {
		return 0, 0, false
	}
	return int(s-1)/8 + 1, int(s-1)%8 + 1, true
}

func (s Square) Rank() int {
	return int(s-1)/8 + 1
}

func (s Square) File() int {
	return int(s-1)%8 + 1
}

// String renders the square in algebraic form, e.g. 61 is "e1".
func (s Square) String() string {
	rank, file, ok := s.RankFile()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+file-1, 9-rank)
}

// ParseSquare reads an algebraic square such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("parse square %q: %w", s, ErrInvalidSquare)
	}
	sq, _ := SquareAt(9-int(s[1]-'0'), int(s[0]-'a')+1)
	return sq, nil
}

func (s Square) fileNotation() string {
	return fmt.Sprintf("%c", 'a'+s.File()-1)
}

// Position maps squares to occupants. It is a value: every change produces
// a new Position and earlier copies are never affected.
type Position struct {
	cells [64]Occupant
}

// At returns the occupant of s; ok is false for empty or invalid squares.
func (p Position) At(s Square) (Occupant, bool) {
	if !s.Valid() {
		return Occupant{}, false
	}
	occ := p.cells[s-1]
	return occ, occ.Kind != NoPiece
}

func (p Position) Has(s Square) bool {
	_, ok := p.At(s)
	return ok
}

func (p Position) with(s Square, occ Occupant) Position {
	p.cells[s-1] = occ
	return p
}

func (p Position) without(s Square) Position {
	p.cells[s-1] = Occupant{}
	return p
}

// Occupied lists the occupied squares in ascending order.
func (p Position) Occupied() []Square {
	squares := make([]Square, 0, 32)
	for i, occ := range p.cells {
		if occ.Kind != NoPiece {
			squares = append(squares, Square(i+1))
		}
	}
	return squares
}

// KingSquare locates the king of the given color.
func (p Position) KingSquare(c Color) (Square, bool) {
	for i, occ := range p.cells {
		if occ.Kind == King && occ.Color == c {
			return Square(i + 1), true
		}
	}
	return NoSquare, false
}

func (p Position) MarshalJSON() ([]byte, error) {
	board := make(map[Square]Occupant, 32)
	for _, s := range p.Occupied() {
		board[s] = p.cells[s-1]
	}
	return json.Marshal(board)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var board map[Square]Occupant
	if err := json.Unmarshal(data, &board); err != nil {
		return err
	}
	var pos Position
	for s, occ := range board {
		if !s.Valid() {
			return fmt.Errorf("position square %d: %w", s, ErrInvalidSquare)
		}
		pos.cells[s-1] = occ
	}
	*p = pos
	return nil
}

// NewPosition builds a position from explicit placements.
func NewPosition(placements map[Square]Occupant) (Position, error) {
	var pos Position
	for s, occ := range placements {
		if !s.Valid() {
			return Position{}, fmt.Errorf("placement %d: %w", s, ErrInvalidSquare)
		}
		pos = pos.with(s, occ)
	}
	return pos, nil
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialPosition is the standard starting arrangement: Black on ranks 1-2,
// White on ranks 7-8.
func InitialPosition() Position {
	var pos Position
	for file := 1; file <= 8; file++ {
		black, _ := SquareAt(1, file)
		blackPawn, _ := SquareAt(2, file)
		whitePawn, _ := SquareAt(7, file)
		white, _ := SquareAt(8, file)
		pos = pos.with(black, Occupant{Kind: backRank[file-1], Color: Black})
		pos = pos.with(blackPawn, Occupant{Kind: Pawn, Color: Black})
		pos = pos.with(whitePawn, Occupant{Kind: Pawn, Color: White})
		pos = pos.with(white, Occupant{Kind: backRank[file-1], Color: White})
	}
	return pos
}
