package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lone(t *testing.T, sq Square, occ Occupant) Position {
	t.Helper()
	pos, err := NewPosition(map[Square]Occupant{sq: occ})
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	return pos
}

func TestGenerateEmptySquare(t *testing.T) {
	pos := InitialPosition()
	if _, err := Generate(pos, nil, mustSquare(t, "e4")); !errors.Is(err, ErrEmptySquare) {
		t.Errorf("Generate(e4) error = %v, want ErrEmptySquare", err)
	}
	if _, err := Generate(pos, nil, 65); !errors.Is(err, ErrInvalidSquare) {
		t.Errorf("Generate(65) error = %v, want ErrInvalidSquare", err)
	}
}

func TestPawnForwardMoves(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		square string
		want   []Square
	}{
		{"white from start", InitialFEN, "e2", squares(t, "e3", "e4")},
		{"black from start", InitialFEN, "d7", squares(t, "d6", "d5")},
		{"blocked one ahead", "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1", "e2", squares(t)},
		{"blocked two ahead", "4k3/8/8/8/4n3/8/4P3/4K3 w - - 0 1", "e2", squares(t, "e3")},
		{"not on start rank", "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1", "e3", squares(t, "e4")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves, err := Generate(mustFEN(t, tt.fen), nil, mustSquare(t, tt.square))
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if diff := cmp.Diff(tt.want, sortedTargets(moves)); diff != "" {
				t.Errorf("targets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPawnCaptures(t *testing.T) {
	// White pawn d4 with black pawns on c5 and e5.
	pos := mustFEN(t, "4k3/8/8/2p1p3/3P4/8/8/4K3 w - - 0 1")
	moves, err := Generate(pos, nil, mustSquare(t, "d4"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []CandidateMove{
		{Target: mustSquare(t, "d5"), Action: ActionMove},
		{Target: mustSquare(t, "c5"), Action: ActionCapture},
		{Target: mustSquare(t, "e5"), Action: ActionCapture},
	}
	if diff := cmp.Diff(want, moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestPawnCaptureDoesNotWrap(t *testing.T) {
	// a4 minus 9 would land on h6; the h6 knight must not be capturable.
	pos := mustFEN(t, "4k3/8/7n/8/P7/8/8/4K3 w - - 0 1")
	moves, err := Generate(pos, nil, mustSquare(t, "a4"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff(squares(t, "a5"), sortedTargets(moves)); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestBishopOnEmptyBoard(t *testing.T) {
	sq, _ := SquareAt(4, 4)
	moves, err := Generate(lone(t, sq, Occupant{Kind: Bishop, Color: White}), nil, sq)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(moves) != 13 {
		t.Errorf("bishop at (4, 4) has %d moves, want 13", len(moves))
	}
}

// TestSlidingGeometry places each piece alone on every square and checks
// that no destination wraps around an edge and that the total mobility
// matches the known empty-board figures.
func TestSlidingGeometry(t *testing.T) {
	tests := []struct {
		kind  PieceKind
		total int
		shape func(dr, df int) bool
	}{
		{Knight, 336, func(dr, df int) bool { return (dr == 1 && df == 2) || (dr == 2 && df == 1) }},
		{Bishop, 560, func(dr, df int) bool { return dr == df && dr > 0 }},
		{Rook, 896, func(dr, df int) bool { return (dr == 0) != (df == 0) }},
		{Queen, 1456, func(dr, df int) bool { return dr == df && dr > 0 || (dr == 0) != (df == 0) }},
		{King, 420, func(dr, df int) bool { return dr <= 1 && df <= 1 && dr+df > 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			total := 0
			for i := 1; i <= 64; i++ {
				from := Square(i)
				moves, err := Generate(lone(t, from, Occupant{Kind: tt.kind, Color: White}), nil, from)
				if err != nil {
					t.Fatalf("Generate(%s): %v", from, err)
				}
				for _, m := range moves {
					dr := abs(m.Target.Rank() - from.Rank())
					df := abs(m.Target.File() - from.File())
					if !m.Target.Valid() || !tt.shape(dr, df) {
						t.Errorf("%s %s-%s has an impossible shape", tt.kind, from, m.Target)
					}
					if m.Action != ActionMove {
						t.Errorf("%s %s-%s action = %s on an empty board", tt.kind, from, m.Target, m.Action)
					}
				}
				total += len(moves)
			}
			if total != tt.total {
				t.Errorf("total mobility = %d, want %d", total, tt.total)
			}
		})
	}
}

func TestSlidingStopsAtPieces(t *testing.T) {
	// Rook d4 with a friendly pawn on d6 and an enemy knight on f4.
	pos := mustFEN(t, "4k3/8/3P4/8/3R1n2/8/8/4K3 w - - 0 1")
	moves, err := Generate(pos, nil, mustSquare(t, "d4"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := squares(t, "d5", "d3", "d2", "d1", "c4", "b4", "a4", "e4", "f4")
	if diff := cmp.Diff(want, sortedTargets(moves)); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
	for _, m := range moves {
		wantAction := ActionMove
		if m.Target == mustSquare(t, "f4") {
			wantAction = ActionCapture
		}
		if m.Action != wantAction {
			t.Errorf("%s action = %s, want %s", m.Target, m.Action, wantAction)
		}
	}
}

func TestKnightTargets(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/3n4/1N2K3 w - - 0 1")
	moves, err := Generate(pos, nil, mustSquare(t, "b1"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := map[Square]MoveAction{
		mustSquare(t, "a3"): ActionMove,
		mustSquare(t, "c3"): ActionMove,
		mustSquare(t, "d2"): ActionCapture,
	}
	got := make(map[Square]MoveAction, len(moves))
	for _, m := range moves {
		got[m.Target] = m.Action
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("knight moves mismatch (-want +got):\n%s", diff)
	}
}

func TestEnPassant(t *testing.T) {
	g := NewGame()
	play(t, g, "a2", "a3")
	play(t, g, "d7", "d5")
	play(t, g, "a3", "a4")
	play(t, g, "d5", "d4")
	state := play(t, g, "e2", "e4")

	moves, err := Generate(state.Position, state.History, mustSquare(t, "d4"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var passant []CandidateMove
	for _, m := range moves {
		if m.Action == ActionEnPassant {
			passant = append(passant, m)
		}
	}
	want := []CandidateMove{{Target: mustSquare(t, "e3"), Action: ActionEnPassant}}
	if diff := cmp.Diff(want, passant); diff != "" {
		t.Fatalf("en passant moves mismatch (-want +got):\n%s", diff)
	}

	play(t, g, "h7", "h6")
	state = play(t, g, "h2", "h3")
	moves, err = Generate(state.Position, state.History, mustSquare(t, "d4"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, m := range moves {
		if m.Action == ActionEnPassant {
			t.Errorf("en passant to %s still offered a ply later", m.Target)
		}
	}
}

func TestEnPassantCapture(t *testing.T) {
	g := NewGame()
	play(t, g, "e2", "e4")
	play(t, g, "a7", "a6")
	play(t, g, "e4", "e5")
	play(t, g, "d7", "d5")
	state := play(t, g, "e5", "d6")

	if _, ok := state.Position.At(mustSquare(t, "d5")); ok {
		t.Error("captured pawn still on d5")
	}
	if occ, ok := state.Position.At(mustSquare(t, "d6")); !ok || occ != (Occupant{Kind: Pawn, Color: White}) {
		t.Errorf("d6 = %+v, %v; want white pawn", occ, ok)
	}
	last, _ := state.History.Last()
	if last.Action != ActionEnPassant || last.Notation != "exd6" {
		t.Errorf("last entry = %s %q, want enPassant exd6", last.Action, last.Notation)
	}
}

func TestEnPassantRequiresAdjacency(t *testing.T) {
	g := NewGame()
	play(t, g, "e2", "e4")
	play(t, g, "a7", "a6")
	play(t, g, "e4", "e5")
	state := play(t, g, "b7", "b5")

	moves, err := Generate(state.Position, state.History, mustSquare(t, "e5"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, m := range moves {
		if m.Action == ActionEnPassant {
			t.Errorf("en passant to %s offered against a non-adjacent pawn", m.Target)
		}
	}
}

func TestCastleCandidates(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		square string
		want   []CandidateMove
	}{
		{
			name:   "white both sides",
			fen:    "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			square: "e1",
			want: []CandidateMove{
				{Target: 63, Action: ActionShortCastle},
				{Target: 59, Action: ActionLongCastle},
			},
		},
		{
			name:   "black both sides",
			fen:    "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
			square: "e8",
			want: []CandidateMove{
				{Target: 7, Action: ActionShortCastle},
				{Target: 3, Action: ActionLongCastle},
			},
		},
		{
			name:   "blocked short side",
			fen:    "4k3/8/8/8/8/8/8/R3KB1R w KQ - 0 1",
			square: "e1",
			want:   []CandidateMove{{Target: 59, Action: ActionLongCastle}},
		},
		{
			name:   "rook missing",
			fen:    "4k3/8/8/8/8/8/8/4K2R w KQ - 0 1",
			square: "e1",
			want:   []CandidateMove{{Target: 63, Action: ActionShortCastle}},
		},
		{
			name:   "king off home square",
			fen:    "4k3/8/8/8/8/8/8/R2K3R w KQ - 0 1",
			square: "d1",
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves, err := Generate(mustFEN(t, tt.fen), nil, mustSquare(t, tt.square))
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			var castles []CandidateMove
			for _, m := range moves {
				if m.Action.isCastle() {
					castles = append(castles, m)
				}
			}
			if diff := cmp.Diff(tt.want, castles); diff != "" {
				t.Errorf("castle moves mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCastleRightsLostAfterRookMoves(t *testing.T) {
	g := NewGame(WithSetup(mustSetup(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")))
	play(t, g, "h1", "h2")
	play(t, g, "a8", "a7")
	play(t, g, "h2", "h1")
	state := play(t, g, "a7", "a8")

	if state.Castling != WhiteLong|BlackShort {
		t.Errorf("rights = %s, want Qk", state.Castling)
	}
	if got, want := state.FEN(), "r3k2r/8/8/8/8/8/8/R3K2R w Qk - 0 1"; got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
	moves, err := Generate(state.Position, state.History, mustSquare(t, "e1"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, m := range moves {
		if m.Action == ActionShortCastle {
			t.Error("short castle offered after the h1 rook left home and came back")
		}
	}
}
