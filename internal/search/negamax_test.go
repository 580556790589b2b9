package search

import (
	"testing"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/tt"
)

func newTestThread() *Thread {
	shared := &Shared{TT: tt.New(1)}
	return NewThread(0, shared, nnue.NewZeroNetwork())
}

func setupThread(t *testing.T, fen string) *Thread {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	th := newTestThread()
	th.SetPosition(pos, nil)
	return th
}

func TestMateInOneIsFound(t *testing.T) {
	// White rook to e8 is back-rank mate: black king on g8 is boxed in by
	// its own f7/g7/h7 pawns with no blocker or capture on the e-file.
	th := setupThread(t, "6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1")

	_, score, _ := th.IterativeDeepen(Limits{Depth: 3}, nil)

	if score < Mate-MaxPly {
		t.Fatalf("expected a mate score, got %d", score)
	}
}

func TestStalemateScoresZero(t *testing.T) {
	// Classic stalemate: black king a8 has no legal move and is not in
	// check (white king b6, white queen c7).
	th := setupThread(t, "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1")

	score, _ := th.Negamax(1, 0, -Mate, Mate, false)
	if score != 0 {
		t.Fatalf("stalemate score = %d, want 0", score)
	}
}

func TestNullWindowNeverReturnsStrictlyInside(t *testing.T) {
	th := setupThread(t, board.StartFEN)

	for depth := 1; depth <= 4; depth++ {
		alpha := 10
		score, _ := th.Negamax(depth, 0, alpha, alpha+1, false)
		if score > alpha && score < alpha+1 {
			t.Fatalf("depth %d: null-window search returned %d strictly inside (%d,%d)", depth, score, alpha, alpha+1)
		}
	}
}

func TestDeeperSearchReusesShallowerTTEntry(t *testing.T) {
	th := setupThread(t, board.StartFEN)

	if _, _, _ = th.IterativeDeepen(Limits{Depth: 2}, nil); th.depthDone != 2 {
		t.Fatalf("depthDone = %d, want 2", th.depthDone)
	}
	entry, ok := th.shared.TT.Probe(th.pos.Hash)
	if !ok {
		t.Fatal("expected a TT entry after a depth-2 search")
	}
	shallowDepth := entry.Depth

	th.SetPosition(th.pos, nil)
	if _, _, _ = th.IterativeDeepen(Limits{Depth: 4}, nil); th.depthDone != 4 {
		t.Fatalf("depthDone = %d, want 4", th.depthDone)
	}
	entry, ok = th.shared.TT.Probe(th.pos.Hash)
	if !ok {
		t.Fatal("expected a TT entry after a depth-4 search")
	}
	if entry.Depth < shallowDepth {
		t.Fatalf("deeper search left a shallower TT entry: %d < %d", entry.Depth, shallowDepth)
	}
}

func TestRepetitionDetectedMidSearch(t *testing.T) {
	th := setupThread(t, board.StartFEN)
	// Fabricate a path where the current position (the last entry, matching
	// th.pos.Hash) has occurred twice before at the same side to move, two
	// plies apart each time, the way Negamax's push/pop leaves posHistory.
	const key = uint64(12345)
	th.pos.Hash = key
	th.pos.HalfMoveClock = 10
	th.posHistory = []uint64{1, key, 2, key, 3, key}

	if !th.isRepetitionOrFifty(5) {
		t.Fatal("expected repetition to be detected with two prior same-side-to-move occurrences")
	}
}

func TestNoRepetitionWithOnlyOnePriorOccurrence(t *testing.T) {
	th := setupThread(t, board.StartFEN)
	const key = uint64(12345)
	th.pos.Hash = key
	th.pos.HalfMoveClock = 10
	th.posHistory = []uint64{1, 2, 3, key, 5, key}

	if th.isRepetitionOrFifty(5) {
		t.Fatal("one prior occurrence should not yet count as a repetition draw")
	}
}
