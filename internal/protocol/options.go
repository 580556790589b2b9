package protocol

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/corvidchess/corvid/internal/nnue"
)

// handleSetOption processes "setoption name <name> value <value>".
func (p *Protocol) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			switch {
			case readingName:
				name = appendWord(name, arg)
			case readingValue:
				value = appendWord(value, arg)
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil && mb > 0 {
			p.hashMB = mb
			p.coord.Resize(mb)
		}
	case "threads":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			p.numThreads = n
			p.coord.SetThreads(n)
		}
	case "multipv":
		if n, err := strconv.Atoi(value); err == nil && n != 1 {
			fmt.Fprintf(os.Stderr, "info string MultiPV only supports the value 1\n")
		}
	case "move overhead":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			p.moveOverhead = time.Duration(ms) * time.Millisecond
		}
	case "uci_chess960":
		p.chess960 = strings.EqualFold(value, "true")
	case "evalfile":
		p.loadNetwork(value)
	}
}

func appendWord(s, word string) string {
	if s == "" {
		return word
	}
	return s + " " + word
}

// loadNetwork loads NNUE weights from path and swaps them into the
// Coordinator, falling back to the zero network on failure so a bad path
// never leaves the engine without an evaluator.
func (p *Protocol) loadNetwork(path string) {
	net, err := nnue.LoadNetwork(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string failed to load NNUE network %s: %v\n", path, err)
		return
	}
	p.net = net
	p.coord.SetNetwork(net)
}
