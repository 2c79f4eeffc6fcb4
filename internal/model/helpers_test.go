package model

import (
	"context"
	"slices"
	"testing"
)

func mustSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

func mustSetup(t *testing.T, fen string) Setup {
	t.Helper()
	setup, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return setup
}

func mustFEN(t *testing.T, fen string) Position {
	t.Helper()
	return mustSetup(t, fen).Position
}

func squares(t *testing.T, names ...string) []Square {
	t.Helper()
	out := make([]Square, 0, len(names))
	for _, n := range names {
		out = append(out, mustSquare(t, n))
	}
	slices.Sort(out)
	return out
}

func sortedTargets(moves []CandidateMove) []Square {
	out := make([]Square, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.Target)
	}
	slices.Sort(out)
	return out
}

// play selects from and then to, failing unless the move is committed.
func play(t *testing.T, g *Game, from, to string) GameState {
	t.Helper()
	f, tt := mustSquare(t, from), mustSquare(t, to)
	before := g.ActiveColor()
	if _, err := g.SelectSquare(context.Background(), f.Rank(), f.File()); err != nil {
		t.Fatalf("select %s: %v", from, err)
	}
	state, err := g.SelectSquare(context.Background(), tt.Rank(), tt.File())
	if err != nil {
		t.Fatalf("select %s: %v", to, err)
	}
	if state.Active == before {
		t.Fatalf("%s-%s was not committed (phase %s)", from, to, state.Phase)
	}
	return state
}
