package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyMoveAndCapture(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	e4, d5 := mustSquare(t, "e4"), mustSquare(t, "d5")
	candidates, err := Generate(pos, nil, e4)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	next, entry, err := Apply(pos, candidates, nil, White, d5, e4)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if occ, ok := next.At(d5); !ok || occ != (Occupant{Kind: Pawn, Color: White}) {
		t.Errorf("d5 = %+v, %v; want white pawn", occ, ok)
	}
	if next.Has(e4) {
		t.Error("e4 still occupied after the move")
	}
	if occ, _ := pos.At(d5); occ.Color != Black {
		t.Error("Apply changed the source position")
	}

	want := HistoryEntry{
		Count:    1,
		From:     e4,
		To:       d5,
		Action:   ActionCapture,
		Piece:    Occupant{Kind: Pawn, Color: White},
		Captured: &Occupant{Kind: Pawn, Color: Black},
		Position: next,
		Rights:   AllCastling,
		Notation: "exd5",
	}
	if diff := cmp.Diff(want, entry, cmp.AllowUnexported(Position{})); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyRejectsUnknownTarget(t *testing.T) {
	pos := InitialPosition()
	e2 := mustSquare(t, "e2")
	candidates, err := Generate(pos, nil, e2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_, _, err = Apply(pos, candidates, nil, White, mustSquare(t, "e5"), e2)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("Apply(e2-e5) error = %v, want ErrNoCandidate", err)
	}
}

func TestApplyCountsFollowHistory(t *testing.T) {
	g := NewGame()
	play(t, g, "e2", "e4")
	play(t, g, "e7", "e5")
	state := play(t, g, "g1", "f3")

	for i, entry := range state.History {
		if entry.Count != i+1 {
			t.Errorf("entry %d count = %d", i, entry.Count)
		}
	}
	if got := state.History[2].Notation; got != "Nf3" {
		t.Errorf("notation = %q, want Nf3", got)
	}
	// Each entry keeps its own snapshot.
	if !state.History[0].Position.Has(mustSquare(t, "g1")) {
		t.Error("first snapshot lost the g1 knight")
	}
	if state.History[0].Position.Has(mustSquare(t, "e5")) {
		t.Error("first snapshot shows a later move")
	}
}

func TestApplyCastling(t *testing.T) {
	tests := []struct {
		name           string
		fen            string
		color          Color
		king, kingTo   string
		rook, rookTo   string
		action         MoveAction
		wantNotation   string
		wantRightsLeft CastlingRights
	}{
		{"white short", "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1", White, "e1", "g1", "h1", "f1", ActionShortCastle, "O-O", BlackShort | BlackLong},
		{"white long", "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1", White, "e1", "c1", "a1", "d1", ActionLongCastle, "O-O-O", BlackShort | BlackLong},
		{"black short", "r3k2r/8/8/8/8/8/8/R3K2R b - - 0 1", Black, "e8", "g8", "h8", "f8", ActionShortCastle, "O-O", WhiteShort | WhiteLong},
		{"black long", "r3k2r/8/8/8/8/8/8/R3K2R b - - 0 1", Black, "e8", "c8", "a8", "d8", ActionLongCastle, "O-O-O", WhiteShort | WhiteLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			king, kingTo := mustSquare(t, tt.king), mustSquare(t, tt.kingTo)
			candidates, err := LegalMoves(pos, nil, king)
			if err != nil {
				t.Fatalf("LegalMoves: %v", err)
			}
			next, entry, err := Apply(pos, candidates, nil, tt.color, kingTo, king)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if entry.Action != tt.action || entry.Notation != tt.wantNotation {
				t.Errorf("entry = %s %q, want %s %q", entry.Action, entry.Notation, tt.action, tt.wantNotation)
			}
			if occ, _ := next.At(kingTo); occ != (Occupant{Kind: King, Color: tt.color}) {
				t.Errorf("%s = %+v, want king", tt.kingTo, occ)
			}
			if occ, _ := next.At(mustSquare(t, tt.rookTo)); occ != (Occupant{Kind: Rook, Color: tt.color}) {
				t.Errorf("%s = %+v, want rook", tt.rookTo, occ)
			}
			if next.Has(king) || next.Has(mustSquare(t, tt.rook)) {
				t.Error("home squares still occupied after castling")
			}
			if entry.Rights != tt.wantRightsLeft {
				t.Errorf("rights = %s, want %s", entry.Rights, tt.wantRightsLeft)
			}
		})
	}
}

func TestApplyPromote(t *testing.T) {
	pos := mustFEN(t, "4P3/8/8/8/8/8/8/k3K3 w - - 0 1")
	e8 := mustSquare(t, "e8")
	promote := []CandidateMove{{Target: e8, Action: ActionPromote, Promotion: Queen}}

	next, entry, err := Apply(pos, promote, nil, White, e8, e8)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if occ, _ := next.At(e8); occ != (Occupant{Kind: Queen, Color: White}) {
		t.Errorf("e8 = %+v, want white queen", occ)
	}
	if entry.Notation != "=Q" {
		t.Errorf("notation = %q, want =Q", entry.Notation)
	}

	bad := []CandidateMove{{Target: e8, Action: ActionPromote, Promotion: King}}
	if _, _, err := Apply(pos, bad, nil, White, e8, e8); !errors.Is(err, ErrInvalidPromotion) {
		t.Errorf("promote to king error = %v, want ErrInvalidPromotion", err)
	}
}
