package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/coordinator"
)

// goOptions holds one "go" command's parsed arguments. movestogo is parsed
// but unused: the Coordinator's time manager budgets off a simple
// percentage of the remaining clock rather than an estimated move count,
// so there is nothing to hand it.
type goOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
	WTime    time.Duration
	BTime    time.Duration
	WInc     time.Duration
	BInc     time.Duration
}

func parseGoOptions(args []string) goOptions {
	var opts goOptions

	atoiArg := func(i int) (int, bool) {
		if i+1 >= len(args) {
			return 0, false
		}
		n, err := strconv.Atoi(args[i+1])
		return n, err == nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if n, ok := atoiArg(i); ok {
				opts.Depth = n
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				if n, err := strconv.ParseUint(args[i+1], 10, 64); err == nil {
					opts.Nodes = n
				}
				i++
			}
		case "movetime":
			if n, ok := atoiArg(i); ok {
				opts.MoveTime = time.Duration(n) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if n, ok := atoiArg(i); ok {
				opts.WTime = time.Duration(n) * time.Millisecond
				i++
			}
		case "btime":
			if n, ok := atoiArg(i); ok {
				opts.BTime = time.Duration(n) * time.Millisecond
				i++
			}
		case "winc":
			if n, ok := atoiArg(i); ok {
				opts.WInc = time.Duration(n) * time.Millisecond
				i++
			}
		case "binc":
			if n, ok := atoiArg(i); ok {
				opts.BInc = time.Duration(n) * time.Millisecond
				i++
			}
		case "movestogo":
			i++ // consume and ignore, see goOptions doc comment
		}
	}

	return opts
}

// handleGo starts a search in a goroutine and prints the bestmove line once
// it completes.
func (p *Protocol) handleGo(args []string) {
	opts := parseGoOptions(args)

	limits := coordinator.Limits{
		Depth:    opts.Depth,
		Nodes:    opts.Nodes,
		MoveTime: opts.MoveTime,
		WTime:    shaveOverhead(opts.WTime, p.moveOverhead),
		BTime:    shaveOverhead(opts.BTime, p.moveOverhead),
		WInc:     opts.WInc,
		BInc:     opts.BInc,
		Infinite: opts.Infinite,
	}

	p.searching = true
	p.stopRequested.Store(false)
	p.searchDone = make(chan struct{})

	pos := p.position.Copy()
	history := append([]uint64(nil), p.gameHistory...)
	chess960 := p.chess960

	go func() {
		defer close(p.searchDone)

		move, _ := p.coord.Search(pos, history, limits)
		p.searching = false

		if move == board.NoMove {
			legal := pos.GenerateLegalMoves()
			if legal.Len() > 0 {
				move = legal.Get(0)
			}
		}

		if move == board.NoMove {
			p.println("bestmove 0000")
			return
		}
		p.println(fmt.Sprintf("bestmove %s", formatMove(pos, move, chess960)))
	}()
}

// shaveOverhead reduces a clock reading by the configured move overhead,
// never below zero, so the time manager's budget accounts for the
// round-trip latency to and from the GUI.
func shaveOverhead(remaining, overhead time.Duration) time.Duration {
	if remaining <= 0 {
		return remaining
	}
	remaining -= overhead
	if remaining < 0 {
		return 0
	}
	return remaining
}

// sendInfo formats one iteration's progress as a UCI "info" line.
func (p *Protocol) sendInfo(info coordinator.Info) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	if info.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %d", info.SelDepth))
	}

	switch {
	case info.Score > coordinator.Mate-100:
		parts = append(parts, fmt.Sprintf("score mate %d", (coordinator.Mate-info.Score+1)/2))
	case info.Score < -coordinator.Mate+100:
		parts = append(parts, fmt.Sprintf("score mate %d", -(coordinator.Mate+info.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	parts = append(parts, fmt.Sprintf("nps %d", info.NPS))
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		moves := make([]string, 0, len(info.PV))
		walker := p.position.Copy()
		for _, m := range info.PV {
			if !walker.IsLegal(m) {
				break
			}
			moves = append(moves, formatMove(walker, m, p.chess960))
			walker.MakeMove(m)
		}
		if len(moves) > 0 {
			parts = append(parts, "pv "+strings.Join(moves, " "))
		}
	}

	p.println("info " + strings.Join(parts, " "))
}
