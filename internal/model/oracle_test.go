package model

import (
	"slices"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type fromTo struct {
	From, To Square
}

func sortFromTo(moves []fromTo) {
	slices.SortFunc(moves, func(a, b fromTo) int {
		if a.From != b.From {
			return int(a.From - b.From)
		}
		return int(a.To - b.To)
	})
}

// fromBitboardIndex converts dragontoothmg's a1=0 numbering.
func fromBitboardIndex(idx uint8) Square {
	file := int(idx%8) + 1
	chessRank := int(idx/8) + 1
	sq, _ := SquareAt(9-chessRank, file)
	return sq
}

// TestLegalMovesMatchReferenceGenerator compares the legal move set with
// an independent bitboard generator on positions without en passant or
// promotion, where both follow the full rules of chess.
func TestLegalMovesMatchReferenceGenerator(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b - - 0 1",
		"4r2k/8/8/1B6/R7/8/8/4K3 w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b Kq - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"r3k1r1/8/8/8/8/8/8/R3K2R b KQq - 0 1",
		"R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			setup := mustSetup(t, fen)
			var got []fromTo
			for _, from := range setup.Position.Occupied() {
				if occ, _ := setup.Position.At(from); occ.Color != setup.Active {
					continue
				}
				moves, err := legalMoves(setup.Position, nil, setup.Castling, from)
				if err != nil {
					t.Fatalf("legalMoves(%s): %v", from, err)
				}
				for _, m := range moves {
					got = append(got, fromTo{From: from, To: m.Target})
				}
			}

			board := dragontoothmg.ParseFen(fen)
			reference := board.GenerateLegalMoves()
			want := make([]fromTo, 0, len(reference))
			for i := range reference {
				m := &reference[i]
				want = append(want, fromTo{From: fromBitboardIndex(m.From()), To: fromBitboardIndex(m.To())})
			}

			sortFromTo(got)
			sortFromTo(want)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("legal moves differ from reference (-want +got):\n%s", diff)
			}
		})
	}
}
