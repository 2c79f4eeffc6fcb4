package model

import (
	"fmt"
	"strings"
)

type MoveAction int

const (
	ActionMove MoveAction = iota
	ActionCapture
	ActionEnPassant
	ActionShortCastle
	ActionLongCastle
	ActionPromote
)

var moveActionNames = [...]string{
	ActionMove:        "move",
	ActionCapture:     "capture",
	ActionEnPassant:   "enPassant",
	ActionShortCastle: "shortCastle",
	ActionLongCastle:  "longCastle",
	ActionPromote:     "promote",
}

func (a MoveAction) String() string {
	if a < 0 || int(a) >= len(moveActionNames) {
		return fmt.Sprintf("MoveAction(%d)", int(a))
	}
	return moveActionNames[a]
}

func (a MoveAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *MoveAction) UnmarshalText(text []byte) error {
	for i, name := range moveActionNames {
		if strings.EqualFold(name, string(text)) {
			*a = MoveAction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown move action %q", text)
}

func (a MoveAction) isCastle() bool {
	return a == ActionShortCastle || a == ActionLongCastle
}

// CandidateMove is a destination reachable from the square under
// evaluation. Promotion is only set for ActionPromote.
type CandidateMove struct {
	Target    Square     `json:"square"`
	Action    MoveAction `json:"action"`
	Promotion PieceKind  `json:"promotion,omitempty"`
}

// HistoryEntry records one applied move and the position after it.
type HistoryEntry struct {
	Count    int            `json:"count"`
	From     Square         `json:"from"`
	To       Square         `json:"to"`
	Action   MoveAction     `json:"action"`
	Piece    Occupant       `json:"piece"`
	Captured *Occupant      `json:"captured,omitempty"`
	Position Position       `json:"position"`
	Rights   CastlingRights `json:"rights"`
	Notation string         `json:"notation"`
}

// History is the append-only log of applied moves, oldest first.
type History []HistoryEntry

func (h History) Last() (HistoryEntry, bool) {
	if len(h) == 0 {
		return HistoryEntry{}, false
	}
	return h[len(h)-1], true
}

// Rights returns the castling rights after the most recent entry. An empty
// history grants every right; games set up from FEN carry their own
// starting rights in GameState.Castling.
func (h History) Rights() CastlingRights {
	last, ok := h.Last()
	if !ok {
		return AllCastling
	}
	return last.Rights
}

func (h History) nextCount() int {
	last, ok := h.Last()
	if !ok {
		return 1
	}
	return last.Count + 1
}

// Append returns a new history; the receiver's backing array is never
// written, so earlier snapshots stay intact.
func (h History) Append(entries ...HistoryEntry) History {
	return append(h[:len(h):len(h)], entries...)
}

func (e HistoryEntry) notation() string {
	switch e.Action {
	case ActionShortCastle:
		return "O-O"
	case ActionLongCastle:
		return "O-O-O"
	case ActionPromote:
		if occ, ok := e.Position.At(e.To); ok {
			return "=" + occ.Kind.notation()
		}
		return "="
	}
	prefix := e.Piece.Kind.notation()
	capture := ""
	if e.Captured != nil {
		capture = "x"
	}
	file := ""
	if e.Piece.Kind == Pawn && e.From.File() != e.To.File() {
		file = e.From.fileNotation()
	}
	return fmt.Sprintf("%s%s%s%s", prefix, file, capture, e.To)
}
