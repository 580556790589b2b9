package protocol

import (
	"fmt"
	"os"

	"github.com/corvidchess/corvid/internal/coordinator"
)

// handleBench runs the fixed bench suite (scenario S2: single thread, 16MiB
// table, cleared history, depth 12) and, when a ledger is attached, records
// the result and reports the node-count delta against this configuration's
// last run.
func (p *Protocol) handleBench() {
	result := coordinator.Bench(p.net)

	p.println(fmt.Sprintf("Total nodes: %d", result.TotalNodes))
	p.println(fmt.Sprintf("Total NPS: %d", result.NPS))

	if p.ledger == nil {
		return
	}

	prev, ok, err := p.ledger.Latest(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string bench ledger read failed: %v\n", err)
	} else if ok {
		delta := int64(result.TotalNodes) - int64(prev.TotalNodes)
		p.println(fmt.Sprintf("Node count delta vs last run: %+d", delta))
	}

	if err := p.ledger.Record(result); err != nil {
		fmt.Fprintf(os.Stderr, "info string bench ledger write failed: %v\n", err)
	}
}
