package protocol

import (
	"fmt"
	"os"
	"strings"

	"github.com/corvidchess/corvid/internal/board"
)

// handlePosition parses:
//
//	position startpos [moves ...]
//	position fen <fen> [moves ...]
func (p *Protocol) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var pos *board.Position
	var moveStart int

	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
		moveStart = findMoves(args, 1)
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		fen := strings.Join(args[1:fenEnd], " ")
		parsed, err := board.ParseFEN(fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid FEN: %v\n", err)
			return
		}
		pos = parsed
		moveStart = findMoves(args, fenEnd)
	default:
		return
	}

	prevPosition := p.position
	prevGameHistory := p.gameHistory

	p.position = pos
	p.gameHistory = []uint64{p.position.Hash}

	for _, moveStr := range args[moveStart:] {
		m := parseMove(p.position, moveStr, p.chess960)
		if m == board.NoMove {
			fmt.Fprintf(os.Stderr, "info string illegal move in position command: %s\n", moveStr)
			p.position = prevPosition
			p.gameHistory = prevGameHistory
			return
		}
		p.position.MakeMove(m)
		p.position.UpdateCheckers()
		p.gameHistory = append(p.gameHistory, p.position.Hash)
	}
}

// findMoves returns the index just past the "moves" keyword if present at
// or after from, else len(args).
func findMoves(args []string, from int) int {
	for i := from; i < len(args); i++ {
		if args[i] == "moves" {
			return i + 1
		}
	}
	return len(args)
}
