// Package see implements static exchange evaluation: the net material
// result of the full sequence of captures on a single square assuming both
// sides play the locally optimal recapture. It is shared by move ordering
// (stage sorting, SEE/MVV-LVA tiebreaks) and the search core (SEE pruning),
// so it lives below both rather than inside either.
package see

import "github.com/corvidchess/corvid/internal/board"

// Piece values used for SEE, as specified: a king is "captured" only in
// positions that should never reach SEE (it would already be checkmate),
// so it carries an effectively-infinite value to make that branch of the
// swap algorithm never look profitable.
var PieceValue = [7]int{100, 300, 300, 500, 900, 20000, 0}

// Evaluate returns the signed centipawn outcome of the capture sequence
// initiated by playing m in pos. m is a capture or en passant move (a
// capturing promotion also counts the promotion gain); for a move that
// captures nothing, including a non-capturing promotion, it returns 0.
func Evaluate(pos *board.Position, m board.Move) int {
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	var capturedValue int
	if m.IsEnPassant() {
		capturedValue = PieceValue[board.Pawn]
	} else {
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			return 0
		}
		capturedValue = PieceValue[victim.Type()]
	}
	if m.IsPromotion() {
		capturedValue += PieceValue[m.Promotion()] - PieceValue[board.Pawn]
	}

	return swap(pos, to, from, attacker, capturedValue)
}

func swap(pos *board.Position, target, excludeFrom board.Square, firstAttacker board.Piece, initialGain int) int {
	var gain [32]int
	d := 0
	gain[d] = initialGain

	occupied := pos.AllOccupied &^ board.SquareBB(excludeFrom)
	attackerValue := PieceValue[firstAttacker.Type()]
	side := firstAttacker.Color().Other()

	for {
		d++
		gain[d] = attackerValue - gain[d-1]
		if maxInt(-gain[d-1], gain[d]) < 0 {
			break
		}

		sq, piece := leastValuableAttacker(pos, target, side, occupied)
		if sq == board.NoSquare {
			break
		}
		occupied &^= board.SquareBB(sq)
		attackerValue = PieceValue[piece.Type()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -maxInt(-gain[d-1], gain[d])
	}
	return gain[0]
}

func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	pawns := pos.Pieces[side][board.Pawn] & board.PawnAttacks(target, side.Other()) & occupied
	if pawns != 0 {
		return pawns.LSB(), board.NewPiece(board.Pawn, side)
	}
	knights := pos.Pieces[side][board.Knight] & board.KnightAttacks(target) & occupied
	if knights != 0 {
		return knights.LSB(), board.NewPiece(board.Knight, side)
	}
	bishopAttacks := board.BishopAttacks(target, occupied)
	bishops := pos.Pieces[side][board.Bishop] & bishopAttacks & occupied
	if bishops != 0 {
		return bishops.LSB(), board.NewPiece(board.Bishop, side)
	}
	rookAttacks := board.RookAttacks(target, occupied)
	rooks := pos.Pieces[side][board.Rook] & rookAttacks & occupied
	if rooks != 0 {
		return rooks.LSB(), board.NewPiece(board.Rook, side)
	}
	queens := pos.Pieces[side][board.Queen] & (bishopAttacks | rookAttacks) & occupied
	if queens != 0 {
		return queens.LSB(), board.NewPiece(board.Queen, side)
	}
	king := pos.Pieces[side][board.King] & board.KingAttacks(target) & occupied
	if king != 0 {
		return king.LSB(), board.NewPiece(board.King, side)
	}
	return board.NoSquare, board.NoPiece
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
