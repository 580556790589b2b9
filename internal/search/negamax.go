package search

import (
	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/ordering"
	"github.com/corvidchess/corvid/internal/see"
	"github.com/corvidchess/corvid/internal/tt"
)

// rfpMargin is the per-depth reverse futility pruning margin, M in the
// spec's "qsearch(alpha,beta) - M*depth >= beta" test.
const rfpMargin = 80

// lmpThreshold[depth] bounds how many quiet moves are tried at shallow,
// non-PV nodes before late move pruning skips the rest.
var lmpThreshold = [...]int{0, 4, 6, 10, 15, 21, 28, 36}

func lmpLimit(depth int) int {
	if depth < len(lmpThreshold) {
		return lmpThreshold[depth]
	}
	return lmpThreshold[len(lmpThreshold)-1] + (depth-len(lmpThreshold)+1)*8
}

// Negamax performs the root (or internal) search of position, in window
// [alpha,beta], to depth, at tree depth ply, returning a fail-soft score
// and the best move found. The move is NoMove when the node has no legal
// move, and also on early returns that end the node before its move loop
// (stop check, draw detection, mate-distance pruning, pruning cutoffs, and
// the drop into quiescence).
func (th *Thread) Negamax(depth, ply int, alpha, beta int, cutNode bool) (int, board.Move) {
	isPV := beta-alpha > 1

	if th.stopped() {
		return 0, board.NoMove
	}

	th.stack[ply].PVLen = 0

	if ply > 0 {
		if th.isRepetitionOrFifty(ply) {
			return th.drawScore(), board.NoMove
		}
		// Mate-distance pruning: clamp the window to what's reachable.
		alpha = maxInt(alpha, -Mate+ply)
		beta = minInt(beta, Mate-ply)
		if alpha >= beta {
			return alpha, board.NoMove
		}
	}

	if depth <= 0 {
		return th.quiescence(ply, alpha, beta), board.NoMove
	}

	th.Nodes++
	if ply > th.SelDepth {
		th.SelDepth = ply
	}
	if ply >= MaxPly-1 {
		return th.staticEval(), board.NoMove
	}

	var ttMove board.Move
	var ttEntry tt.Entry
	ttHit := false
	if th.stack[ply].Excluded == board.NoMove {
		if e, ok := th.shared.TT.Probe(th.pos.Hash); ok {
			ttHit = true
			ttEntry = e
			ttMove = board.Move(e.Move)
			if !isPV && int(e.Depth) >= depth {
				score := tt.ScoreFromTT(int(e.Score), ply)
				switch {
				case e.Bound == tt.BoundExact,
					e.Bound == tt.BoundLower && score >= beta,
					e.Bound == tt.BoundUpper && score <= alpha:
					return score, ttMove
				}
			}
		}
	}

	inCheck := th.pos.InCheck()

	// Internal iterative reduction: no hash move at a reasonably deep,
	// non-check node makes its static eval and move ordering less
	// trustworthy, so shrink the depth actually searched.
	if depth >= 4 && ttMove == board.NoMove && !inCheck {
		depth -= 2
	}

	var staticEval int
	if inCheck {
		staticEval = -Mate + ply
		th.stack[ply].StaticEval = staticEval
	} else if ttHit {
		staticEval = int(ttEntry.Eval)
		th.stack[ply].StaticEval = staticEval
	} else {
		staticEval = th.staticEval()
		th.stack[ply].StaticEval = staticEval
	}

	if !isPV && !inCheck && th.stack[ply].Excluded == board.NoMove {
		// Reverse futility pruning, using a quiescence re-search in place
		// of the static eval as specified.
		if depth <= 8 {
			qs := th.quiescence(ply, beta-1, beta)
			if qs-rfpMargin*depth >= beta {
				return qs, board.NoMove
			}
		}

		// Null-move pruning.
		if depth >= 2 && staticEval >= beta && th.pos.HasNonPawnMaterial() && !th.lastMoveWasNull(ply) {
			R := 3 + depth/4
			undo := th.pos.MakeNullMove()
			th.stack[ply].CurrentMove = board.NoMove
			score, _ := th.Negamax(depth-R, ply+1, -beta, -beta+1, !cutNode)
			score = -score
			th.pos.UnmakeNullMove(undo)
			if score >= beta {
				return beta, board.NoMove
			}
		}
	}

	picker := ordering.NewPicker(th.pos, th.hist, ttMove, ply, th.prevMove(ply))

	bestScore := -Mate
	bestMove := board.NoMove
	origAlpha := alpha
	movesSearched := 0
	var quietsTried []board.Move
	var capturesTried []board.Move
	improving := ply >= 2 && !inCheck && staticEval > th.stack[ply-2].StaticEval

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m == th.stack[ply].Excluded {
			continue
		}

		isCapture := m.IsCapture(th.pos)
		isQuiet := !isCapture && !m.IsPromotion()

		if ply > 0 && !isPV && !inCheck && bestScore > -Mate+MaxPly {
			if isQuiet && movesSearched >= lmpLimit(depth) {
				continue
			}
			if depth <= 8 {
				seeThreshold := -20 * depth
				if see.Evaluate(th.pos, m) < seeThreshold {
					continue
				}
			}
		}

		givesCheck := th.moveGivesCheck(m)

		extension := 0
		if givesCheck {
			extension = 1
		} else if isPV && ply > 0 && movesSearched == 0 && depth >= 4 {
			extension = 1
		}

		th.eval.Push(th.pos, m)
		undo := th.pos.MakeMove(m)
		th.pushPosHistory()
		th.stack[ply].CurrentMove = m
		th.stack[ply].MovedPiece = th.pos.PieceAt(m.To())

		newDepth := depth - 1 + extension
		var score int

		if movesSearched == 0 {
			score, _ = th.Negamax(newDepth, ply+1, -beta, -alpha, false)
			score = -score
		} else {
			reduction := 0
			if isQuiet && movesSearched >= 2 && depth >= 3 {
				reduction = lmrReduction(depth, movesSearched+1)
				statScore := th.hist.CombinedHistory(th.pos, m)
				reduction -= statScore * 850 / 8192
				reduction -= movesSearched * 73 / 1024
				if isPV {
					reduction--
				}
				if !improving {
					reduction++
				}
				if reduction < 0 {
					reduction = 0
				}
				if newDepth-reduction < 1 {
					reduction = newDepth - 1
				}
			}

			score, _ = th.Negamax(newDepth-reduction, ply+1, -alpha-1, -alpha, true)
			score = -score

			if score > alpha && reduction > 0 {
				score, _ = th.Negamax(newDepth, ply+1, -alpha-1, -alpha, !cutNode)
				score = -score
			}
			if score > alpha && score < beta {
				score, _ = th.Negamax(newDepth, ply+1, -beta, -alpha, false)
				score = -score
			}
		}

		th.popPosHistory()
		th.pos.UnmakeMove(m, undo)
		th.eval.Pop()

		if th.stopped() {
			return 0, board.NoMove
		}

		movesSearched++
		if isQuiet {
			quietsTried = append(quietsTried, m)
		} else if isCapture {
			capturesTried = append(capturesTried, m)
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				th.copyPV(ply, m)
				if score >= beta {
					if isQuiet {
						th.hist.UpdateKillers(m, ply)
						th.hist.UpdateHistory(th.pos, m, depth, true)
						for _, q := range quietsTried[:len(quietsTried)-1] {
							th.hist.UpdateHistory(th.pos, q, depth, false)
						}
						th.hist.UpdateCounterMove(th.prevMove(ply), m, th.prevPiece(ply))
					} else {
						attacker := th.pos.PieceAt(m.From())
						var victim board.PieceType
						switch {
						case m.IsEnPassant():
							victim = board.Pawn
						default:
							victim = th.pos.PieceAt(m.To()).Type()
						}
						th.hist.UpdateCaptureHistory(attacker, m.To(), victim, depth, true)
						for _, c := range capturesTried[:len(capturesTried)-1] {
							ca := th.pos.PieceAt(c.From())
							var cv board.PieceType
							if c.IsEnPassant() {
								cv = board.Pawn
							} else {
								cv = th.pos.PieceAt(c.To()).Type()
							}
							th.hist.UpdateCaptureHistory(ca, c.To(), cv, depth, false)
						}
					}
					th.shared.TT.Store(th.pos.Hash, uint16(m), int16(tt.ScoreToTT(score, ply)), int16(staticEval), int8(depth), tt.BoundLower, isPV)
					return bestScore, bestMove
				}
			}
		}
	}

	if movesSearched == 0 {
		if th.stack[ply].Excluded != board.NoMove {
			return alpha, board.NoMove // singular-extension probe found no alternative
		}
		if inCheck {
			return -Mate + ply, board.NoMove
		}
		return 0, board.NoMove
	}

	bound := tt.BoundUpper
	if bestScore > origAlpha {
		bound = tt.BoundExact
	}
	th.shared.TT.Store(th.pos.Hash, uint16(bestMove), int16(tt.ScoreToTT(bestScore, ply)), int16(staticEval), int8(depth), bound, isPV)

	return bestScore, bestMove
}

func (th *Thread) prevMove(ply int) board.Move {
	if ply == 0 {
		return board.NoMove
	}
	return th.stack[ply-1].CurrentMove
}

func (th *Thread) prevPiece(ply int) board.Piece {
	if ply == 0 {
		return board.NoPiece
	}
	return th.stack[ply-1].MovedPiece
}

func (th *Thread) lastMoveWasNull(ply int) bool {
	return ply > 0 && th.stack[ply-1].CurrentMove == board.NoMove
}

func (th *Thread) staticEval() int {
	return th.eval.Evaluate(th.pos)
}

func (th *Thread) moveGivesCheck(m board.Move) bool {
	us := th.pos.SideToMove
	them := us.Other()
	to := m.To()
	// Cheap under-approximation: does the moved piece, from the destination
	// square, attack the enemy king under the current occupancy with the
	// mover already gone from its origin square. Only such direct checks are
	// seen; discovered checks, checks by a castling rook or a promoted piece,
	// and king moves report false. Exact enough to drive extensions; the real
	// legality/check status is recomputed by Position after MakeMove via
	// Checkers, which callers needing exactness should prefer.
	kingSq := th.pos.KingSquare[them]
	piece := th.pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return false
	}
	switch piece.Type() {
	case board.Knight:
		return board.KnightAttacks(to)&board.SquareBB(kingSq) != 0
	case board.Pawn:
		return board.PawnAttacks(to, us)&board.SquareBB(kingSq) != 0
	default:
		occ := (th.pos.AllOccupied &^ board.SquareBB(m.From())) | board.SquareBB(to)
		switch piece.Type() {
		case board.Bishop:
			return board.BishopAttacks(to, occ)&board.SquareBB(kingSq) != 0
		case board.Rook:
			return board.RookAttacks(to, occ)&board.SquareBB(kingSq) != 0
		case board.Queen:
			return (board.BishopAttacks(to, occ)|board.RookAttacks(to, occ))&board.SquareBB(kingSq) != 0
		}
	}
	return false
}

// copyPV child-copies the principal variation from ply+1 into ply's frame,
// prefixed by the move just played; called whenever a move raises alpha,
// including the move that fails high.
func (th *Thread) copyPV(ply int, m board.Move) {
	th.stack[ply].PV[0] = m
	childLen := th.stack[ply+1].PVLen
	copy(th.stack[ply].PV[1:], th.stack[ply+1].PV[:childLen])
	th.stack[ply].PVLen = childLen + 1
}
