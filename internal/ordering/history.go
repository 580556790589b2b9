// Package ordering scores and enumerates legal moves in the order the
// search core should try them: hash move, then winning captures, killers,
// quiet moves by history, losing captures, with underpromotions always
// last within whichever stage they fall in.
package ordering

import "github.com/corvidchess/corvid/internal/board"

// MaxPly bounds the killer-move and search-stack indexing.
const MaxPly = 128

// relativeHistoryCap is the saturation bound on the two relative history
// tables, as specified.
const relativeHistoryCap = 16384

// History holds one search thread's killer, relative-history, countermove,
// capture-history and countermove-history tables. Thread-owned; never
// shared or borrowed.
type History struct {
	killers [MaxPly][2]board.Move

	// Relative history: H_piece_to[piece][to] and H_from_to[from][to].
	pieceTo [12][64]int32
	fromTo  [64][64]int32

	counterMoves [12][64]board.Move

	captureHistory     [12][64][6]int32
	countermoveHistory [12][64][12][64]int32
}

func NewHistory() *History {
	return &History{}
}

// Clear resets killers and counter-moves and halves every history table,
// aging it rather than discarding it outright; the Coordinator calls it
// between games, not between searches.
func (h *History) Clear() {
	for i := range h.killers {
		h.killers[i] = [2]board.Move{board.NoMove, board.NoMove}
	}
	for i := range h.pieceTo {
		for j := range h.pieceTo[i] {
			h.pieceTo[i][j] /= 2
		}
	}
	for i := range h.fromTo {
		for j := range h.fromTo[i] {
			h.fromTo[i][j] /= 2
		}
	}
	for i := range h.counterMoves {
		for j := range h.counterMoves[i] {
			h.counterMoves[i][j] = board.NoMove
		}
	}
	for i := range h.captureHistory {
		for j := range h.captureHistory[i] {
			for k := range h.captureHistory[i][j] {
				h.captureHistory[i][j][k] /= 2
			}
		}
	}
	for i := range h.countermoveHistory {
		for j := range h.countermoveHistory[i] {
			for k := range h.countermoveHistory[i][j] {
				for l := range h.countermoveHistory[i][j][k] {
					h.countermoveHistory[i][j][k][l] /= 2
				}
			}
		}
	}
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UpdateKillers records a quiet move that caused a beta cutoff at ply.
func (h *History) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || h.killers[ply][0] == m {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}

func (h *History) Killers(ply int) (board.Move, board.Move) {
	if ply >= MaxPly {
		return board.NoMove, board.NoMove
	}
	return h.killers[ply][0], h.killers[ply][1]
}

// UpdateHistory applies +delta*depth^2 to the cutoff move and -delta*depth^2
// to quiet moves tried earlier at the same node, saturating at +-16384.
func (h *History) UpdateHistory(pos *board.Position, m board.Move, depth int, good bool) {
	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return
	}
	bonus := int32(depth * depth)
	if !good {
		bonus = -bonus
	}
	from, to := m.From(), m.To()
	h.pieceTo[piece][to] = clamp32(h.pieceTo[piece][to]+bonus, -relativeHistoryCap, relativeHistoryCap)
	h.fromTo[from][to] = clamp32(h.fromTo[from][to]+bonus, -relativeHistoryCap, relativeHistoryCap)
}

// CombinedHistory returns H_piece_to[piece][to] + H_from_to[from][to], the
// quiet-move sort key specified for stage 4.
func (h *History) CombinedHistory(pos *board.Position, m board.Move) int {
	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return 0
	}
	return int(h.pieceTo[piece][m.To()]) + int(h.fromTo[m.From()][m.To()])
}

func (h *History) UpdateCounterMove(prevMove, counter board.Move, prevPiece board.Piece) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece {
		return
	}
	h.counterMoves[prevPiece][prevMove.To()] = counter
}

func (h *History) CounterMove(prevMove board.Move, prevPiece board.Piece) board.Move {
	if prevMove == board.NoMove || prevPiece == board.NoPiece {
		return board.NoMove
	}
	return h.counterMoves[prevPiece][prevMove.To()]
}

const captureHistoryCap = 400000

func (h *History) UpdateCaptureHistory(attacker board.Piece, to board.Square, victim board.PieceType, depth int, good bool) {
	if attacker == board.NoPiece || victim >= board.King {
		return
	}
	bonus := int32(depth * depth)
	if !good {
		bonus = -bonus
	}
	v := h.captureHistory[attacker][to][victim] + bonus
	h.captureHistory[attacker][to][victim] = clamp32(v, -captureHistoryCap, captureHistoryCap)
}

func (h *History) CaptureHistory(attacker board.Piece, to board.Square, victim board.PieceType) int {
	if attacker == board.NoPiece || victim >= board.King {
		return 0
	}
	return int(h.captureHistory[attacker][to][victim])
}

func (h *History) UpdateCountermoveHistory(prevMove board.Move, prevPiece, movePiece board.Piece, to board.Square, depth int, good bool) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return
	}
	bonus := int32(depth * depth)
	if !good {
		bonus = -bonus
	}
	v := h.countermoveHistory[prevPiece][prevMove.To()][movePiece][to] + bonus
	h.countermoveHistory[prevPiece][prevMove.To()][movePiece][to] = clamp32(v, -captureHistoryCap, captureHistoryCap)
}

func (h *History) CountermoveHistory(prevMove board.Move, prevPiece, movePiece board.Piece, to board.Square) int {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return 0
	}
	return int(h.countermoveHistory[prevPiece][prevMove.To()][movePiece][to])
}
