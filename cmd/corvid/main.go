// Command corvid is the engine protocol executable: it loads an NNUE
// network from a standard location if one is present, opens the bench
// ledger, and runs the stdio front end until "quit".
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/protocol"
	"github.com/corvidchess/corvid/internal/storage"
)

const defaultNetworkFile = "corvid.nnue"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	net := autoLoadNetwork()

	ledger, err := storage.OpenLedger()
	if err != nil {
		log.Printf("bench ledger unavailable: %v", err)
		ledger = nil
	} else {
		defer ledger.Close()
	}

	p := protocol.New(net, ledger)
	p.Run()
}

// autoLoadNetwork tries standard locations for the NNUE weight file before
// falling back to the all-zero network (correct but strengthless, useful
// mainly for tests and a running demo without shipped weights).
func autoLoadNetwork() *nnue.Network {
	searchPaths := []string{"./nnue", "."}
	if nnueDir, err := storage.GetNNUEDir(); err == nil {
		searchPaths = append([]string{nnueDir}, searchPaths...)
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, defaultNetworkFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		net, err := nnue.LoadNetwork(path)
		if err != nil {
			log.Printf("failed to load NNUE network at %s: %v", path, err)
			continue
		}
		log.Printf("NNUE network loaded from %s", path)
		return net
	}

	log.Printf("no NNUE network found, using the zero network")
	return nnue.NewZeroNetwork()
}
