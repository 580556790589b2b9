// Package protocol is the line-oriented stdio front end: it parses UCI-shaped
// commands, advertises and validates engine options, drives a
// coordinator.Coordinator, and formats its Info reports back out as "info"
// lines. Chess960 move-notation translation (king-captures-rook versus
// king-moves-two-squares) happens only at this boundary; internal/board's
// move encoding is untouched by it.
package protocol

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/coordinator"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/storage"
)

const (
	defaultHashMB  = 64
	defaultThreads = 1
)

// Protocol holds one running session's mutable state: the current position,
// its game history (for repetition detection across "position" calls), and
// the options a GUI has set.
type Protocol struct {
	coord *coordinator.Coordinator
	net   *nnue.Network

	ledger *storage.Ledger

	position    *board.Position
	gameHistory []uint64

	hashMB       int
	numThreads   int
	moveOverhead time.Duration
	chess960     bool

	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool

	out *bufio.Writer
}

// New builds a Protocol around a freshly constructed Coordinator, starting
// from the starting position with defaultHashMB of hash and defaultThreads
// worker threads.
func New(net *nnue.Network, ledger *storage.Ledger) *Protocol {
	p := &Protocol{
		net:        net,
		ledger:     ledger,
		position:   board.NewPosition(),
		hashMB:     defaultHashMB,
		numThreads: defaultThreads,
		moveOverhead: 10 * time.Millisecond,
		out:        bufio.NewWriter(os.Stdout),
	}
	p.coord = coordinator.New(p.hashMB, p.numThreads, p.net)
	p.coord.OnInfo = p.sendInfo
	p.gameHistory = []uint64{p.position.Hash}
	return p
}

// Run reads commands from stdin until "quit" or EOF.
func (p *Protocol) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			p.handleUCI()
		case "isready":
			p.println("readyok")
		case "ucinewgame":
			p.handleNewGame()
		case "position":
			p.handlePosition(args)
		case "go":
			p.handleGo(args)
		case "stop":
			p.handleStop()
		case "ponderhit":
			// No pondering support: treat exactly like a normal search in
			// progress, nothing to do.
		case "setoption":
			p.handleSetOption(args)
		case "bench":
			p.handleBench()
		case "quit":
			p.handleStop()
			p.out.Flush()
			os.Exit(0)
		case "d":
			p.println(p.position.String())
		}
	}
	p.out.Flush()
}

func (p *Protocol) println(s string) {
	fmt.Fprintln(p.out, s)
	p.out.Flush()
}

func (p *Protocol) handleUCI() {
	p.println("id name Corvid")
	p.println("id author Corvid Contributors")
	p.println("")
	p.println(fmt.Sprintf("option name Hash type spin default %d min 1 max 4096", defaultHashMB))
	p.println(fmt.Sprintf("option name Threads type spin default %d min 1 max 512", defaultThreads))
	p.println("option name MultiPV type spin default 1 min 1 max 1")
	p.println("option name Move Overhead type spin default 10 min 0 max 5000")
	p.println("option name UCI_Chess960 type check default false")
	p.println("option name EvalFile type string default <empty>")
	p.println("uciok")
}

func (p *Protocol) handleNewGame() {
	p.coord.NewGame()
	p.position = board.NewPosition()
	p.gameHistory = []uint64{p.position.Hash}
}

func (p *Protocol) handleStop() {
	if p.searching {
		p.stopRequested.Store(true)
		p.coord.Stop()
		<-p.searchDone
	}
}
