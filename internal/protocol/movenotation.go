package protocol

import "github.com/corvidchess/corvid/internal/board"

// formatMove renders m the way a GUI expects to read it back: standard UCI
// notation, except that under UCI_Chess960 a castling move is written as
// the king capturing its own rook (e.g. "e1h1") rather than moving two
// squares ("e1g1"), per the Shredder-FEN convention Chess960 GUIs use.
// internal/board always encodes castling moves as a king move to the g- or
// c-file regardless of Chess960, so only the output string changes here.
func formatMove(pos *board.Position, m board.Move, chess960 bool) string {
	if chess960 && m.IsCastling() {
		us := pos.SideToMove
		side := 0 // queenside
		if m.To().File() == 6 {
			side = 1 // kingside
		}
		return m.From().String() + pos.RookSquare[us][side].String()
	}
	return m.String()
}

// parseMove matches a UCI move string against pos's legal moves, comparing
// each legal move's own formatMove output rather than re-deriving square
// arithmetic, so the Chess960 and standard notations are both accepted
// exactly where legal. Returns board.NoMove if nothing matches.
func parseMove(pos *board.Position, s string, chess960 bool) board.Move {
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if formatMove(pos, m, chess960) == s {
			return m
		}
	}
	return board.NoMove
}
