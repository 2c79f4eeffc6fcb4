package model

import (
	"fmt"
	"strings"
	"unicode"
)

// InitialFEN describes InitialSetup.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Setup is the starting point of a game: the placement, the side to move
// and the castling rights still available.
type Setup struct {
	Position Position
	Active   Color
	Castling CastlingRights
}

func InitialSetup() Setup {
	return Setup{Position: InitialPosition(), Active: White, Castling: AllCastling}
}

var fenPieces = map[rune]PieceKind{
	'p': Pawn,
	'n': Knight,
	'b': Bishop,
	'r': Rook,
	'q': Queen,
	'k': King,
}

// ParseFEN reads the placement, side-to-move and castling fields of a FEN
// string. The first placement row is rank 1. A missing castling field
// grants no rights; en passant and move counters are ignored.
func ParseFEN(fen string) (Setup, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return Setup{}, fmt.Errorf("empty FEN: %w", ErrInvalidFEN)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return Setup{}, fmt.Errorf("FEN has %d rows: %w", len(rows), ErrInvalidFEN)
	}

	var pos Position
	for i, row := range rows {
		rank, file := i+1, 1
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			kind, ok := fenPieces[unicode.ToLower(ch)]
			if !ok {
				return Setup{}, fmt.Errorf("FEN piece %q: %w", ch, ErrInvalidFEN)
			}
			sq, ok := SquareAt(rank, file)
			if !ok {
				return Setup{}, fmt.Errorf("FEN row %d overflows: %w", rank, ErrInvalidFEN)
			}
			color := Black
			if unicode.IsUpper(ch) {
				color = White
			}
			pos = pos.with(sq, Occupant{Kind: kind, Color: color})
			file++
		}
		if file != 9 {
			return Setup{}, fmt.Errorf("FEN row %d has %d files: %w", rank, file-1, ErrInvalidFEN)
		}
	}

	setup := Setup{Position: pos, Active: White, Castling: NoCastling}
	if len(fields) > 1 {
		if err := setup.Active.UnmarshalText([]byte(fields[1])); err != nil {
			return Setup{}, fmt.Errorf("FEN side to move %q: %w", fields[1], ErrInvalidFEN)
		}
	}
	if len(fields) > 2 {
		rights, err := ParseCastlingRights(fields[2])
		if err != nil {
			return Setup{}, fmt.Errorf("%v: %w", err, ErrInvalidFEN)
		}
		setup.Castling = rights
	}
	return setup, nil
}

// FormatFEN renders a setup. En passant and move counters are written as
// placeholders.
func FormatFEN(s Setup) string {
	var sb strings.Builder
	for rank := 1; rank <= 8; rank++ {
		empty := 0
		for file := 1; file <= 8; file++ {
			sq, _ := SquareAt(rank, file)
			occ, ok := s.Position.At(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteRune(fenLetter(occ))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank < 8 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if s.Active == Black {
		side = "b"
	}
	return sb.String() + " " + side + " " + s.Castling.String() + " - 0 1"
}

func fenLetter(occ Occupant) rune {
	for ch, kind := range fenPieces {
		if kind == occ.Kind {
			if occ.Color == White {
				return unicode.ToUpper(ch)
			}
			return ch
		}
	}
	return '?'
}
