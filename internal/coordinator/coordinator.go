// Package coordinator drives iterative deepening across a LazySMP pool of
// search threads, owns the shared transposition table and stop flag, and
// reports progress back to whatever front end is listening. It is the only
// package that knows how many threads exist and how time is budgeted;
// internal/search knows nothing about wall-clock time at all.
package coordinator

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/search"
	"github.com/corvidchess/corvid/internal/tt"
)

// Mate re-exports the search package's mate score so a front end can
// recognize and report mate distances without importing internal/search
// itself.
const Mate = search.Mate

// Limits mirrors the UCI go-command parameters a front end hands down.
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	WTime    time.Duration
	BTime    time.Duration
	WInc     time.Duration
	BInc     time.Duration
	Infinite bool
}

// Info is one reportable snapshot of search progress, emitted once per
// completed iteration of thread 0 (the only thread whose progress is
// authoritative, per LazySMP convention).
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Time     time.Duration
	NPS      uint64
	PV       []board.Move
	HashFull int
}

// Coordinator owns the shared TT/stop-flag state and one search.Thread per
// worker.
type Coordinator struct {
	shared  *search.Shared
	net     *nnue.Network
	threads []*search.Thread

	OnInfo func(Info)
}

// New builds a Coordinator with a ttSizeMB-large transposition table and
// numThreads workers (numThreads <= 0 means GOMAXPROCS).
func New(ttSizeMB, numThreads int, net *nnue.Network) *Coordinator {
	c := &Coordinator{
		shared: &search.Shared{TT: tt.New(ttSizeMB)},
		net:    net,
	}
	c.SetThreads(numThreads)
	return c
}

// SetThreads rebuilds the worker pool with n threads, discarding any
// accumulated move-ordering history (the transposition table is untouched).
func (c *Coordinator) SetThreads(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	c.threads = make([]*search.Thread, n)
	for i := range c.threads {
		c.threads[i] = search.NewThread(i, c.shared, c.net)
	}
}

// Resize changes the transposition table's size, clearing it.
func (c *Coordinator) Resize(ttSizeMB int) {
	c.shared.TT.Resize(ttSizeMB)
}

// SetNetwork swaps the NNUE weights every thread evaluates with, rebuilding
// the worker pool at its current size (the transposition table is
// untouched, since stored scores don't depend on which network produced
// them within the same search).
func (c *Coordinator) SetNetwork(net *nnue.Network) {
	c.net = net
	c.SetThreads(len(c.threads))
}

// NewGame clears the transposition table and ages every thread's history,
// the UCI "ucinewgame" contract.
func (c *Coordinator) NewGame() {
	c.shared.TT.Clear()
	for _, th := range c.threads {
		th.ClearHistory()
	}
}

// Stop requests that an in-progress Search return as soon as possible.
// Safe to call from another goroutine while Search runs.
func (c *Coordinator) Stop() {
	c.shared.Stop.Store(true)
}

// HashFull reports the transposition table's permille occupancy.
func (c *Coordinator) HashFull() int {
	return c.shared.TT.HashFull()
}

// startDepthFor staggers helper threads to shallower starting depths than
// thread 0, trading redundant shallow search for faster divergence across
// the pool — the same staggering the teacher's workerSearch used.
func startDepthFor(threadID int) int {
	switch {
	case threadID == 0:
		return 1
	case threadID < 3:
		return 2
	case threadID < 6:
		return 3
	default:
		return 4
	}
}

func (c *Coordinator) totalNodes() uint64 {
	var total uint64
	for _, th := range c.threads {
		total += th.Nodes
	}
	return total
}

func nps(nodes uint64, elapsed time.Duration) uint64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return uint64(float64(nodes) / secs)
}

// Search runs LazySMP iterative deepening to find the best move for pos,
// blocking until every worker stops (by hard time limit, depth limit, node
// limit, or an external Stop call) and returning thread 0's result.
func (c *Coordinator) Search(pos *board.Position, gameHistory []uint64, limits Limits) (board.Move, Info) {
	c.shared.Stop.Store(false)
	c.shared.TT.NewSearch()

	for _, th := range c.threads {
		th.SetPosition(pos, gameHistory)
	}

	start := time.Now()
	tm := newTimeManager(limits, pos.SideToMove, start)

	stopTimer := make(chan struct{})
	if !limits.Infinite && tm.hard > 0 {
		go func() {
			ticker := time.NewTicker(5 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-stopTimer:
					return
				case <-ticker.C:
					if tm.pastHard() {
						c.shared.Stop.Store(true)
						return
					}
				}
			}
		}()
	}

	type threadResult struct {
		move  board.Move
		score int
		pv    []board.Move
	}
	results := make([]threadResult, len(c.threads))

	var g errgroup.Group
	for i, th := range c.threads {
		i, th := i, th
		searchLimits := search.Limits{
			Depth:      limits.Depth,
			Nodes:      limits.Nodes,
			Infinite:   limits.Infinite,
			StartDepth: startDepthFor(i),
		}
		g.Go(func() error {
			var onIter func(search.IterationReport)
			if i == 0 {
				var lastElapsed time.Duration
				onIter = func(r search.IterationReport) {
					elapsed := time.Since(start)
					iterElapsed := elapsed - lastElapsed
					lastElapsed = elapsed
					if c.OnInfo != nil {
						nodes := c.totalNodes()
						c.OnInfo(Info{
							Depth:    r.Depth,
							SelDepth: r.SelDepth,
							Score:    r.Score,
							Nodes:    nodes,
							Time:     elapsed,
							NPS:      nps(nodes, elapsed),
							PV:       r.PV,
							HashFull: c.shared.TT.HashFull(),
						})
					}
					if !limits.Infinite && limits.Nodes == 0 &&
						(tm.pastSoft() || tm.willExceedSoft(elapsed, iterElapsed)) {
						c.shared.Stop.Store(true)
					}
				}
			}
			m, s, pv := th.IterativeDeepen(searchLimits, onIter)
			results[i] = threadResult{move: m, score: s, pv: pv}
			return nil
		})
	}
	_ = g.Wait()
	close(stopTimer)
	c.shared.Stop.Store(true)

	best := results[0]
	elapsed := time.Since(start)
	info := Info{
		Depth:    c.threads[0].DepthDone(),
		Score:    best.score,
		Nodes:    c.totalNodes(),
		Time:     elapsed,
		NPS:      nps(c.totalNodes(), elapsed),
		PV:       best.pv,
		HashFull: c.shared.TT.HashFull(),
	}
	return best.move, info
}
