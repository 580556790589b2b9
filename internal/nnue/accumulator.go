package nnue

import "github.com/corvidchess/corvid/internal/board"

// Accumulator holds the two perspective hidden vectors for one position.
// Invariant: when Computed[c] is true, Values[c] equals the sum of W_in
// rows (plus bias) for every feature active from color c's perspective.
type Accumulator struct {
	Values   [2][H]int16
	Computed [2]bool
}

// maxPly bounds the push/pop stack depth; matched to the search package's
// frame stack so every ply of recursion has a slot.
const maxPly = 128

// AccumulatorStack is a per-thread, per-search stack of accumulators, one
// frame per ply of the current search path plus one for the root.
type AccumulatorStack struct {
	frames [maxPly + 1]Accumulator
	top    int
}

func (s *AccumulatorStack) Current() *Accumulator {
	return &s.frames[s.top]
}

// Push duplicates the current frame onto a new one, then applies the
// feature deltas for the given dirty set to whichever side wasn't dirtied
// by a king move. A king-moved side is marked uncomputed instead, to be
// fully refreshed (from the post-move position) the next time Evaluate or
// Refresh is called for it.
func (s *AccumulatorStack) push(net *Network, d dirty) {
	prev := &s.frames[s.top]
	s.top++
	next := &s.frames[s.top]
	*next = *prev

	for side := board.White; side <= board.Black; side++ {
		if d.kingMoved[side] {
			next.Computed[side] = false
			continue
		}
		if !next.Computed[side] {
			continue
		}
		for i := 0; i < d.numRemoved; i++ {
			ps := d.removed[i]
			idx := FeatureIndex(side, ps.sq, ps.piece.Color(), ps.piece.Type())
			subRow(&next.Values[side], net.FeatureWeights[idx][:])
		}
		for i := 0; i < d.numAdded; i++ {
			ps := d.added[i]
			idx := FeatureIndex(side, ps.sq, ps.piece.Color(), ps.piece.Type())
			addRow(&next.Values[side], net.FeatureWeights[idx][:])
		}
	}
}

// Pop discards the current frame, restoring the parent. Because the parent
// frame's values were never mutated in place (push copies, then mutates the
// copy), popping is an exact, bit-identical restoration with no recompute.
func (s *AccumulatorStack) pop() {
	s.top--
}

func (s *AccumulatorStack) reset() {
	s.top = 0
	s.frames[0] = Accumulator{}
}

func addRow(acc *[H]int16, row []int16) {
	for i := 0; i < H; i++ {
		acc[i] += row[i]
	}
}

func subRow(acc *[H]int16, row []int16) {
	for i := 0; i < H; i++ {
		acc[i] -= row[i]
	}
}

// refreshSide fully recomputes one perspective's accumulator from scratch
// by iterating every piece on the board, the path taken at root and after
// any king move.
func refreshSide(net *Network, pos *board.Position, acc *Accumulator, side board.Color) {
	acc.Values[side] = net.FeatureBias
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				idx := FeatureIndex(side, sq, c, pt)
				addRow(&acc.Values[side], net.FeatureWeights[idx][:])
			}
		}
	}
	acc.Computed[side] = true
}
