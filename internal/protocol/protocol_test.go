package protocol

import (
	"testing"

	"github.com/corvidchess/corvid/internal/board"
)

func TestParseMoveRoundTripsStandardNotation(t *testing.T) {
	pos := board.NewPosition()
	m := parseMove(pos, "e2e4", false)
	if m == board.NoMove {
		t.Fatal("expected e2e4 to parse as a legal move from the starting position")
	}
	if got := formatMove(pos, m, false); got != "e2e4" {
		t.Fatalf("formatMove round-trip = %q, want e2e4", got)
	}
}

func TestParseMoveRejectsIllegalMove(t *testing.T) {
	pos := board.NewPosition()
	if m := parseMove(pos, "e2e5", false); m != board.NoMove {
		t.Fatalf("expected e2e5 to be rejected as illegal, got %s", m)
	}
}

func TestChess960CastlingUsesKingCapturesRookNotation(t *testing.T) {
	// White king on e1, rooks on a1 and h1, full castling rights; the test
	// checks the kingside castle.
	pos, err := board.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	var castle board.Move
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.IsCastling() && m.To().File() == 6 {
			castle = m
			break
		}
	}
	if castle == board.NoMove {
		t.Fatal("expected a kingside castling move to be legal")
	}

	standard := formatMove(pos, castle, false)
	if standard != "e1g1" {
		t.Fatalf("formatMove(standard) = %q, want e1g1", standard)
	}

	chess960 := formatMove(pos, castle, true)
	if chess960 != "e1h1" {
		t.Fatalf("formatMove(chess960) = %q, want e1h1", chess960)
	}

	if got := parseMove(pos, "e1h1", true); got != castle {
		t.Fatalf("parseMove(e1h1, chess960=true) did not recover the castling move")
	}
}

func TestParseGoOptionsReadsDepthAndClocks(t *testing.T) {
	opts := parseGoOptions([]string{"wtime", "60000", "btime", "55000", "winc", "1000", "depth", "10"})

	if opts.Depth != 10 {
		t.Fatalf("Depth = %d, want 10", opts.Depth)
	}
	if opts.WTime.Milliseconds() != 60000 {
		t.Fatalf("WTime = %s, want 60s", opts.WTime)
	}
	if opts.BTime.Milliseconds() != 55000 {
		t.Fatalf("BTime = %s, want 55s", opts.BTime)
	}
	if opts.WInc.Milliseconds() != 1000 {
		t.Fatalf("WInc = %s, want 1s", opts.WInc)
	}
}

func TestShaveOverheadNeverGoesNegative(t *testing.T) {
	if got := shaveOverhead(5, 10); got != 0 {
		t.Fatalf("shaveOverhead(5, 10) = %d, want 0", got)
	}
}
