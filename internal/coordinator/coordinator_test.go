package coordinator

import (
	"testing"
	"time"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/nnue"
)

func TestSearchReturnsLegalMoveFromStartPosition(t *testing.T) {
	c := New(1, 2, nnue.NewZeroNetwork())
	pos := board.NewPosition()

	move, info := c.Search(pos, nil, Limits{Depth: 4})

	if move == board.NoMove {
		t.Fatal("expected a non-null best move from the starting position")
	}
	if !pos.IsLegal(move) {
		t.Fatalf("returned move %s is not legal in the starting position", move)
	}
	if info.Depth < 1 {
		t.Fatalf("info.Depth = %d, want >= 1", info.Depth)
	}
}

func TestSearchRespectsMoveTimeDeadline(t *testing.T) {
	c := New(1, 1, nnue.NewZeroNetwork())
	pos := board.NewPosition()

	start := time.Now()
	move, _ := c.Search(pos, nil, Limits{MoveTime: 30 * time.Millisecond})
	elapsed := time.Since(start)

	if move == board.NoMove {
		t.Fatal("expected a move even under a tight time budget")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("search ran for %s, far past its time budget", elapsed)
	}
}

func TestStopEndsAnInfiniteSearch(t *testing.T) {
	c := New(1, 1, nnue.NewZeroNetwork())
	pos := board.NewPosition()

	done := make(chan board.Move, 1)
	go func() {
		m, _ := c.Search(pos, nil, Limits{Infinite: true})
		done <- m
	}()

	time.Sleep(20 * time.Millisecond)
	c.Stop()

	select {
	case m := <-done:
		if m == board.NoMove {
			t.Fatal("expected a move after stopping an infinite search")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not end the infinite search in time")
	}
}

func TestNewGameClearsTranspositionTable(t *testing.T) {
	c := New(1, 1, nnue.NewZeroNetwork())
	pos := board.NewPosition()
	c.Search(pos, nil, Limits{Depth: 5})

	if c.HashFull() == 0 {
		t.Fatal("expected a nonzero hash-full after searching")
	}
	c.NewGame()
	if c.HashFull() != 0 {
		t.Fatalf("HashFull() = %d after NewGame, want 0", c.HashFull())
	}
}
