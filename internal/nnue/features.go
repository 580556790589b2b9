// Package nnue implements the incrementally updated evaluator: two
// per-side-to-move hidden accumulators fed by a flat 768-input feature set,
// selected through clipped-ReLU activation into one of sixteen output heads
// chosen by material phase.
package nnue

import "github.com/corvidchess/corvid/internal/board"

// InputSize is the feature-vector width: 64 squares * 6 piece types * 2
// colors, indexed from each side's own king-side perspective (not
// king-bucketed — every king square shares the same 768 inputs).
const InputSize = 768

// H is the hidden accumulator width per perspective.
const H = 384

// Buckets is the number of phase-selected output heads.
const Buckets = 16

// FeatureIndex returns the input index, from perspective's point of view,
// of a piece of type pt and color pieceColor standing on sq. Flipping the
// square vertically for the Black perspective is what makes the same 768
// weights serve both sides: from its own perspective, a side's own pawn on
// its second rank always lands on the same index regardless of color.
func FeatureIndex(perspective board.Color, sq board.Square, pieceColor board.Color, pt board.PieceType) int {
	relSq := sq
	if perspective == board.Black {
		relSq = sq.Mirror()
	}
	relColor := 0
	if pieceColor != perspective {
		relColor = 1
	}
	return (int(pt)*2+relColor)*64 + int(relSq)
}

// Phase computes the material phase index used to select an output bucket:
// phi = clamp((Q*8 + R*4 + B*2 + N*2 + P*1) - kLow, 0, 15), summed over both
// sides. Q's weight of 8 (rather than a traditional ~4) is deliberate and
// load-bearing for bucket selection, matching the spec this evaluator is
// built against. kLow is chosen so a full starting position (phase value 64)
// lands in the top bucket and a bare-king endgame lands in the bottom one.
const kLow = 49

func Phase(pos *board.Position) int {
	count := func(pt board.PieceType) int {
		return pos.Pieces[board.White][pt].PopCount() + pos.Pieces[board.Black][pt].PopCount()
	}
	raw := count(board.Queen)*8 + count(board.Rook)*4 + count(board.Bishop)*2 + count(board.Knight)*2 + count(board.Pawn)
	phi := raw - kLow
	if phi < 0 {
		phi = 0
	}
	if phi > Buckets-1 {
		phi = Buckets - 1
	}
	return phi
}

// pieceSquare names one occupied square for accumulator bookkeeping.
type pieceSquare struct {
	piece board.Piece
	sq    board.Square
}

// dirty describes the feature deltas a single move causes, computed from
// the position *before* the move is applied to the board (so captured and
// moved pieces are still queryable by PieceAt/RookSquare).
type dirty struct {
	removed      [2]pieceSquare
	added        [2]pieceSquare
	numRemoved   int
	numAdded     int
	kingMoved    [2]bool
}

func computeDirty(pos *board.Position, m board.Move) dirty {
	var d dirty
	from, to := m.From(), m.To()
	us := pos.SideToMove
	moving := pos.PieceAt(from)

	addRemoved := func(p board.Piece, sq board.Square) {
		d.removed[d.numRemoved] = pieceSquare{p, sq}
		d.numRemoved++
	}
	addAdded := func(p board.Piece, sq board.Square) {
		d.added[d.numAdded] = pieceSquare{p, sq}
		d.numAdded++
	}

	switch {
	case m.IsCastling():
		side := 0
		if to.File() == 6 {
			side = 1
		}
		rookFrom := pos.RookSquare[us][side]
		rank := from.Rank()
		var kingTo, rookTo board.Square
		if side == 1 {
			kingTo, rookTo = board.NewSquare(6, rank), board.NewSquare(5, rank)
		} else {
			kingTo, rookTo = board.NewSquare(2, rank), board.NewSquare(3, rank)
		}
		rook := pos.PieceAt(rookFrom)
		addRemoved(moving, from)
		addRemoved(rook, rookFrom)
		addAdded(moving, kingTo)
		if rookFrom != rookTo {
			addAdded(rook, rookTo)
		} else {
			addAdded(rook, rookFrom)
		}
		d.kingMoved[us] = true
	case m.IsEnPassant():
		capSq := board.NewSquare(to.File(), from.Rank())
		captured := pos.PieceAt(capSq)
		addRemoved(moving, from)
		addRemoved(captured, capSq)
		addAdded(moving, to)
	case m.IsPromotion():
		if captured := pos.PieceAt(to); captured != board.NoPiece {
			addRemoved(captured, to)
		}
		addRemoved(moving, from)
		addAdded(board.NewPiece(m.Promotion(), us), to)
	default:
		if captured := pos.PieceAt(to); captured != board.NoPiece {
			addRemoved(captured, to)
		}
		addRemoved(moving, from)
		addAdded(moving, to)
		if moving.Type() == board.King {
			d.kingMoved[us] = true
		}
	}
	return d
}
