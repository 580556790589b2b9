package search

import "github.com/corvidchess/corvid/internal/board"

// aspirationWindow is the initial +/- window around the previous
// iteration's score that the next iteration's root search starts from.
const aspirationWindow = 15

// IterativeDeepen runs iterative deepening with aspiration windows from the
// current position out to limits.Depth (or until the coordinator's stop
// flag fires), returning the last fully completed iteration's best move,
// score, and principal variation. One Thread runs one copy of this loop;
// the Coordinator is responsible for stopping every thread together and for
// only trusting thread 0's result.
func (th *Thread) IterativeDeepen(limits Limits, onIter func(IterationReport)) (board.Move, int, []board.Move) {
	th.limits = limits
	th.ResetForNewSearch()

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}
	startDepth := limits.StartDepth
	if startDepth < 1 {
		startDepth = 1
	}

	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move

	score := 0
	for depth := startDepth; depth <= maxDepth; depth++ {
		alpha, beta := -Mate, Mate
		if depth >= 4 {
			alpha = maxInt(-Mate, score-aspirationWindow)
			beta = minInt(Mate, score+aspirationWindow)
		}

		delta := aspirationWindow
		var s int
		var m board.Move
		for {
			s, m = th.Negamax(depth, 0, alpha, beta, false)
			if th.stopped() {
				break
			}
			if s <= alpha {
				beta = (alpha + beta) / 2
				alpha = maxInt(-Mate, s-delta)
				delta += delta / 2
			} else if s >= beta {
				beta = minInt(Mate, s+delta)
				delta += delta / 2
			} else {
				break
			}
		}

		if th.stopped() {
			break
		}

		score = s
		bestScore = s
		if m != board.NoMove {
			bestMove = m
		}
		bestPV = append(bestPV[:0], th.stack[0].PV[:th.stack[0].PVLen]...)
		th.depthDone = depth

		if onIter != nil {
			onIter(IterationReport{
				Depth:    depth,
				SelDepth: th.SelDepth,
				Score:    bestScore,
				Nodes:    th.Nodes,
				PV:       append([]board.Move(nil), bestPV...),
			})
		}
	}

	return bestMove, bestScore, bestPV
}
