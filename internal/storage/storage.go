package storage

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/dgraph-io/badger/v4"

	"github.com/corvidchess/corvid/internal/coordinator"
)

// Ledger persists bench command results, keyed by a content hash of the
// search configuration (depth, TT size, and position suite) that produced
// them, so a later bench run at the same configuration can be diffed
// against its own history for search-determinism regressions (scenario S2).
type Ledger struct {
	db *badger.DB
}

// OpenLedger opens, creating if necessary, the badger-backed bench ledger
// in the platform data directory.
func OpenLedger() (*Ledger, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// configKey hashes the configuration a bench run used so every run against
// the same depth/hash-size/position-suite lands in the same history
// bucket regardless of when it ran.
func configKey(r coordinator.BenchResult) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d", r.Depth, r.TTSizeMB)
	for _, pos := range r.Positions {
		fmt.Fprintf(h, "|%s", pos.FEN)
	}
	return fmt.Sprintf("bench:%016x", h.Sum64())
}

// Record appends a bench result to its configuration's history and advances
// that configuration's "latest" pointer.
func (l *Ledger) Record(r coordinator.BenchResult) error {
	key := configKey(r)
	entryKey := fmt.Sprintf("%s:%d", key, r.Timestamp.UnixNano())

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(entryKey), data); err != nil {
			return err
		}
		return txn.Set([]byte(key+":latest"), []byte(entryKey))
	})
}

// Latest returns the most recently recorded result for the same
// configuration as r (before r itself is recorded), so a caller can diff
// the run that just completed against it. ok is false if this
// configuration has no prior history.
func (l *Ledger) Latest(r coordinator.BenchResult) (result coordinator.BenchResult, ok bool, err error) {
	key := configKey(r)

	err = l.db.View(func(txn *badger.Txn) error {
		pointer, err := txn.Get([]byte(key + ":latest"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var entryKey []byte
		if err := pointer.Value(func(val []byte) error {
			entryKey = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}

		entry, err := txn.Get(entryKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return entry.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &result); err != nil {
				return err
			}
			ok = true
			return nil
		})
	})

	return result, ok, err
}
