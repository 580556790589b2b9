// Package search implements the negamax search core: alpha-beta with
// principal variation search, aspiration-friendly fail-soft windows,
// selective extensions/reductions/pruning, and quiescence at the leaves.
// One Thread owns one goroutine's worth of mutable search state, including
// its own private ordering history; the only state shared between
// goroutines is the Shared struct (the *tt.Table and the stop flag).
package search

import (
	"math"
	"sync/atomic"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/ordering"
	"github.com/corvidchess/corvid/internal/tt"
)

// MaxPly bounds recursion depth and every per-ply array in this package.
const MaxPly = 128

// Mate is the score assigned to the side that has just been checkmated,
// i.e. the winning side's score at the mating node is Mate-ply.
const Mate = tt.Mate

// Frame is one ply's worth of per-thread search state: the static eval at
// this node, the move excluded for a singular-extension probe, and a PV
// buffer that child nodes copy their own PV into on an exact return.
type Frame struct {
	StaticEval   int
	Excluded     board.Move
	PV           [MaxPly]board.Move
	PVLen        int
	CurrentMove  board.Move
	MovedPiece   board.Piece
}

// PVTable holds the principal variation extracted by the root call.
type PVTable struct {
	Moves [MaxPly]board.Move
	Len   int
}

// Limits bounds one search invocation.
type Limits struct {
	Depth      int    // 0 = no depth limit
	Nodes      uint64 // 0 = no node limit
	Infinite   bool
	StartDepth int // depth staggering for LazySMP helper threads; 0 = start at 1
}

// IterationReport summarizes one completed iterative-deepening iteration,
// handed to an optional callback so the Coordinator can emit protocol info
// lines without this package knowing anything about the protocol.
type IterationReport struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	PV       []board.Move
}

// Thread is one LazySMP worker's search state: its own position copy,
// evaluator, move-ordering history, and search stack, plus shared pointers
// to the transposition table and the coordinator's stop flag.
type Thread struct {
	ID  int
	pos *board.Position

	eval *nnue.Evaluator
	hist *ordering.History

	stack   [MaxPly]Frame
	undoBuf [MaxPly]board.UndoInfo

	posHistory    []uint64 // game history + search path, for repetition detection
	gameHistoryLen int

	shared *Shared

	Nodes    uint64
	SelDepth int

	rootMoves []board.Move
	excluded  map[board.Move]bool // root moves excluded for multi-PV-style re-search; unused when nil

	limits    Limits
	PV        PVTable
	depthDone int
}

// Shared is the state LazySMP workers share: the transposition table and
// the single atomic stop flag. No other inter-thread coordination exists;
// diversity across workers comes entirely from staggered depths and the
// nondeterminism of concurrent TT writes.
type Shared struct {
	TT   *tt.Table
	Stop atomic.Bool
}

// NewThread builds one worker's search state.
func NewThread(id int, shared *Shared, net *nnue.Network) *Thread {
	return &Thread{
		ID:         id,
		eval:       nnue.NewEvaluator(net),
		hist:       ordering.NewHistory(),
		shared:     shared,
		posHistory: make([]uint64, 0, 1024),
	}
}

// SetPosition installs the root position and the game history (Zobrist
// keys of every position reached so far this game, used for repetition
// detection alongside the in-search path).
func (th *Thread) SetPosition(pos *board.Position, gameHistory []uint64) {
	th.pos = pos.Copy()
	th.posHistory = th.posHistory[:0]
	th.posHistory = append(th.posHistory, gameHistory...)
	th.gameHistoryLen = len(th.posHistory)
	th.eval.Refresh(th.pos)
}

// ResetForNewSearch clears per-search bookkeeping; history/killer tables
// are aged, not wiped, by the coordinator's own Clear call between games.
func (th *Thread) ResetForNewSearch() {
	th.Nodes = 0
	th.SelDepth = 0
	th.posHistory = th.posHistory[:th.gameHistoryLen]
}

// ClearHistory ages this thread's move-ordering tables; called by the
// Coordinator between games, not between moves of the same game.
func (th *Thread) ClearHistory() {
	th.hist.Clear()
}

// DepthDone reports the last iterative-deepening depth this thread fully
// completed (0 before any search has finished depth 1).
func (th *Thread) DepthDone() int {
	return th.depthDone
}

// lmrTable[depth][moveCount] is the Stockfish-style logarithmic late-move
// reduction base, floor(ln(depth)*ln(moveCount)/2), computed once at init.
var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int(1024 * math.Log(float64(d)) * math.Log(float64(m)) / 2.0 / 1024)
		}
	}
}

func lmrReduction(depth, moveCount int) int {
	if depth <= 0 || moveCount <= 0 {
		return 0
	}
	if depth >= 64 {
		depth = 63
	}
	if moveCount >= 64 {
		moveCount = 63
	}
	return lmrTable[depth][moveCount]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// stopped reports whether the shared stop flag is set or the node budget
// is exhausted. Checked on every node entry, which given an atomic load's
// cost keeps cancellation latency well inside the spec's bound without
// needing an explicit polling interval.
func (th *Thread) stopped() bool {
	if th.shared.Stop.Load() {
		return true
	}
	if th.limits.Nodes != 0 && th.Nodes >= th.limits.Nodes {
		return true
	}
	return false
}

// isRepetitionOrFifty reports a draw by the fifty-move rule, by insufficient
// material, or by a position that has already occurred twice in the combined game+search
// path (the standard "two prior occurrences" approximation to threefold,
// since a third occurrence at the root would already have ended the game).
func (th *Thread) isRepetitionOrFifty(ply int) bool {
	if th.pos.HalfMoveClock >= 100 {
		return true
	}
	if th.pos.IsInsufficientMaterial() {
		return true
	}
	count := 0
	key := th.pos.Hash
	n := len(th.posHistory)
	if n < 3 {
		return false
	}
	// Irreversible moves (captures, pawn moves) reset HalfMoveClock, so we
	// never need to look further back than that for a repeated key.
	limit := n - th.pos.HalfMoveClock
	if limit < 0 {
		limit = 0
	}
	// th.posHistory[n-1] is the current position (key); same-side-to-move
	// predecessors sit two plies apart, so the scan starts at n-3.
	for i := n - 3; i >= limit; i -= 2 {
		if th.posHistory[i] == key {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// drawScore returns the search's draw score, tempered by a small value
// seeded deterministically by the node count so LazySMP workers don't all
// converge on a blind repetition (an explicitly open question upstream;
// this implementation takes the jittered option over a fixed 0).
func (th *Thread) drawScore() int {
	return int(th.Nodes%11) - 5
}

// pushPosHistory/popPosHistory bracket MakeMove/UnmakeMove during search so
// repetition detection sees the in-search path, not just game history.
func (th *Thread) pushPosHistory() {
	th.posHistory = append(th.posHistory, th.pos.Hash)
}

func (th *Thread) popPosHistory() {
	th.posHistory = th.posHistory[:len(th.posHistory)-1]
}
