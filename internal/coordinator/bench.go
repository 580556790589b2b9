package coordinator

import (
	"time"

	"github.com/corvidchess/corvid/internal/board"
	"github.com/corvidchess/corvid/internal/nnue"
)

// BenchDepth and BenchTTSizeMB are the fixed parameters scenario S2 needs a
// reproducible node count against: a bench run always uses exactly one
// thread, a 16MiB table, and freshly cleared history, regardless of
// whatever the running engine's UCI options currently are.
const (
	BenchDepth   = 12
	BenchTTSizeMB = 16
)

// benchPositions is a small fixed suite spanning opening, tactical and
// endgame positions. The fifth entry repeats the standard starting position,
// and no entry is a Chess960 position.
var benchPositions = []string{
	board.StartFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"2kr3r/ppp2ppp/2n1b3/2bqp3/3p4/3P1NP1/PPP1PPBP/R1BQ1RK1 w - - 0 1",
}

// BenchPositionResult is one suite entry's outcome.
type BenchPositionResult struct {
	FEN   string
	Nodes uint64
	NPS   uint64
	Time  time.Duration
}

// BenchResult is what a bench run records to the ledger: enough to diff a
// future run's node counts against for search-determinism regression
// testing, per scenario S2.
type BenchResult struct {
	Timestamp time.Time
	Depth     int
	TTSizeMB  int
	Positions []BenchPositionResult
	TotalNodes uint64
	NPS        uint64
}

// Bench runs the fixed suite at BenchDepth on a single fresh thread with a
// BenchTTSizeMB table, ignoring whatever options the live engine currently
// has configured, and returns a result ready to hand to the bench ledger.
func Bench(net *nnue.Network) BenchResult {
	c := New(BenchTTSizeMB, 1, net)

	result := BenchResult{
		Timestamp: time.Now(),
		Depth:     BenchDepth,
		TTSizeMB:  BenchTTSizeMB,
		Positions: make([]BenchPositionResult, 0, len(benchPositions)),
	}

	for _, fen := range benchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			continue
		}
		c.NewGame()

		start := time.Now()
		_, info := c.Search(pos, nil, Limits{Depth: BenchDepth})
		elapsed := time.Since(start)

		result.Positions = append(result.Positions, BenchPositionResult{
			FEN:   fen,
			Nodes: info.Nodes,
			NPS:   nps(info.Nodes, elapsed),
			Time:  elapsed,
		})
		result.TotalNodes += info.Nodes
	}

	result.NPS = nps(result.TotalNodes, sumTimes(result.Positions))
	return result
}

func sumTimes(positions []BenchPositionResult) time.Duration {
	var total time.Duration
	for _, p := range positions {
		total += p.Time
	}
	return total
}
