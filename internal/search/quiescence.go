package search

import (
	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/ordering"
	"github.com/corvidchess/corvid/internal/see"
	"github.com/corvidchess/corvid/internal/tt"
)

// qsearchDepth is the depth8 value quiescence nodes store into the
// transposition table, distinguishing their entries from a real search
// depth so a later probe at depth>=1 never trusts a qsearch-only bound.
const qsearchDepth = -2

// quiescence resolves tactical noise at the leaves: captures and, when in
// check, every evasion, searched to no fixed depth limit (bounded only by
// MaxPly via the caller's ply). Stand-pat gives a lower bound when not in
// check; SEE prunes captures that can't possibly raise alpha. Apart from the
// stop, MaxPly and TT-cutoff returns, every return path also stores into the
// shared transposition table at qsearchDepth, the
// same way Negamax does, so move ordering and cutoffs benefit here too.
func (th *Thread) quiescence(ply, alpha, beta int) int {
	if th.stopped() {
		return 0
	}
	th.Nodes++
	if ply > th.SelDepth {
		th.SelDepth = ply
	}
	if ply >= MaxPly-1 {
		return th.staticEval()
	}

	var ttMove board.Move
	ttHit := false
	var ttEntry tt.Entry
	if e, ok := th.shared.TT.Probe(th.pos.Hash); ok {
		ttHit = true
		ttEntry = e
		ttMove = board.Move(e.Move)
		score := tt.ScoreFromTT(int(e.Score), ply)
		switch {
		case e.Bound == tt.BoundExact,
			e.Bound == tt.BoundLower && score >= beta,
			e.Bound == tt.BoundUpper && score <= alpha:
			return score
		}
	}

	inCheck := th.pos.InCheck()
	var standPat int
	if inCheck {
		// No static eval applies in check; match Negamax's own convention of
		// storing the mate-distance floor as the TT entry's eval field here.
		standPat = -Mate + ply
	} else {
		if ttHit {
			standPat = int(ttEntry.Eval)
		} else {
			standPat = th.staticEval()
		}
		if standPat >= beta {
			th.shared.TT.Store(th.pos.Hash, 0, int16(tt.ScoreToTT(standPat, ply)), int16(standPat), qsearchDepth, tt.BoundLower, false)
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	picker := ordering.NewPicker(th.pos, th.hist, ttMove, ply, th.prevMove(ply))

	origAlpha := alpha
	best := standPat
	if inCheck {
		best = -Mate + ply
	}
	bestMove := board.NoMove
	searchedAny := false

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}

		isCapture := m.IsCapture(th.pos)
		if !inCheck {
			if !isCapture && !m.IsPromotion() {
				continue
			}
			if isCapture && see.Evaluate(th.pos, m) < 0 {
				continue
			}
		}

		th.eval.Push(th.pos, m)
		undo := th.pos.MakeMove(m)
		th.pushPosHistory()
		th.stack[ply].CurrentMove = m
		th.stack[ply].MovedPiece = th.pos.PieceAt(m.To())

		score := -th.quiescence(ply+1, -beta, -alpha)

		th.popPosHistory()
		th.pos.UnmakeMove(m, undo)
		th.eval.Pop()

		if th.stopped() {
			return 0
		}
		searchedAny = true

		if score > best {
			best = score
			bestMove = m
			if score > alpha {
				alpha = score
				th.copyPV(ply, m)
				if score >= beta {
					th.shared.TT.Store(th.pos.Hash, uint16(m), int16(tt.ScoreToTT(best, ply)), int16(standPat), qsearchDepth, tt.BoundLower, false)
					return best
				}
			}
		}
	}

	if inCheck && !searchedAny {
		mateScore := -Mate + ply
		th.shared.TT.Store(th.pos.Hash, 0, int16(tt.ScoreToTT(mateScore, ply)), int16(mateScore), qsearchDepth, tt.BoundExact, false)
		return mateScore
	}

	bound := tt.BoundUpper
	if best > origAlpha {
		bound = tt.BoundExact
	}
	th.shared.TT.Store(th.pos.Hash, uint16(bestMove), int16(tt.ScoreToTT(best, ply)), int16(standPat), qsearchDepth, bound, false)

	return best
}
