package ordering

import (
	"testing"

	"github.com/corvidchess/corvid/internal/board"
)

func TestPickerEmitsEveryLegalMoveExactlyOnce(t *testing.T) {
	pos := board.NewPosition()
	hist := NewHistory()
	legal := pos.GenerateLegalMoves()

	seen := map[board.Move]int{}
	picker := NewPicker(pos, hist, board.NoMove, 0, board.NoMove)
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		seen[m]++
	}

	if len(seen) != legal.Len() {
		t.Fatalf("picker emitted %d distinct moves, want %d", len(seen), legal.Len())
	}
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if seen[m] != 1 {
			t.Errorf("move %s emitted %d times, want exactly 1", m.String(), seen[m])
		}
	}
}

func TestPickerHashMoveFirst(t *testing.T) {
	pos := board.NewPosition()
	hist := NewHistory()
	ttMove := board.NewMove(board.D2, board.D4)

	picker := NewPicker(pos, hist, ttMove, 0, board.NoMove)
	first, ok := picker.Next()
	if !ok || first != ttMove {
		t.Fatalf("expected hash move %s first, got %s (ok=%v)", ttMove, first, ok)
	}
}

func TestPickerGoodCapturesBeforeQuiets(t *testing.T) {
	// White to move, black knight hangs on e5 to the white rook on e1
	// (simple winning capture available).
	pos, err := board.ParseFEN("4k3/8/8/4n3/8/8/8/4R1K1 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	hist := NewHistory()
	picker := NewPicker(pos, hist, board.NoMove, 0, board.NoMove)

	capture := board.NewMove(board.E1, board.E5)
	var order []board.Move
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		order = append(order, m)
	}

	capIdx, quietIdx := -1, -1
	for i, m := range order {
		if m == capture {
			capIdx = i
		}
		if m.To() != board.E5 && quietIdx == -1 && m.From() != board.E1 {
			quietIdx = i
		}
	}
	if capIdx == -1 {
		t.Fatal("winning capture not found in emitted order")
	}
	if quietIdx != -1 && capIdx > quietIdx {
		t.Errorf("winning capture at %d should precede quiet move at %d", capIdx, quietIdx)
	}
}
