package nnue

import "github.com/corvidchess/corvid/internal/board"

// Evaluator ties a loaded Network to one search thread's accumulator stack.
// It is not safe for concurrent use; each search worker owns one.
type Evaluator struct {
	net   *Network
	stack AccumulatorStack
}

// NewEvaluator builds an evaluator over net, with its accumulator stack
// reset (root frame marked uncomputed).
func NewEvaluator(net *Network) *Evaluator {
	e := &Evaluator{net: net}
	e.stack.reset()
	return e
}

// Refresh fully recomputes both perspectives' accumulators for pos and
// resets the stack to depth zero. Called at the start of a new search and
// whenever the root position is replaced outright.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.reset()
	acc := e.stack.Current()
	refreshSide(e.net, pos, acc, board.White)
	refreshSide(e.net, pos, acc, board.Black)
}

// Push must be called with pos in its pre-move state, before pos.MakeMove
// is applied. It pushes a new accumulator frame, incrementally updating
// whichever side's king didn't move; a side whose king did move is left
// marked uncomputed and is lazily refreshed by the next Evaluate call
// (by which point the caller has applied the move, so the board reflects
// the new king square).
func (e *Evaluator) Push(pos *board.Position, m board.Move) {
	d := computeDirty(pos, m)
	e.stack.push(e.net, d)
}

// Pop undoes the most recent Push. Must be paired with pos.UnmakeMove.
func (e *Evaluator) Pop() {
	e.stack.pop()
}

// ensureComputed lazily refreshes any perspective left dirty by a king move.
func (e *Evaluator) ensureComputed(pos *board.Position) {
	acc := e.stack.Current()
	if !acc.Computed[board.White] {
		refreshSide(e.net, pos, acc, board.White)
	}
	if !acc.Computed[board.Black] {
		refreshSide(e.net, pos, acc, board.Black)
	}
}

func clippedReLU(x int16) int32 {
	v := int32(x)
	if v < 0 {
		return 0
	}
	if v > QA {
		return QA
	}
	return v
}

// Evaluate returns the static evaluation in centipawns from the side to
// move's perspective, clamped to +-31000.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	e.ensureComputed(pos)
	acc := e.stack.Current()

	us, them := pos.SideToMove, pos.SideToMove.Other()
	phi := Phase(pos)
	row := e.net.OutputWeights[phi]

	var sum int64
	for i := 0; i < H; i++ {
		sum += int64(clippedReLU(acc.Values[us][i])) * int64(row[i])
	}
	for i := 0; i < H; i++ {
		sum += int64(clippedReLU(acc.Values[them][i])) * int64(row[H+i])
	}
	sum += int64(e.net.OutputBias[phi])

	score := int(sum / int64(QA*QB))
	if score > 31000 {
		score = 31000
	}
	if score < -31000 {
		score = -31000
	}
	return score
}
