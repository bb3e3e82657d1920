// Package storage keeps an on-disk journal of completed searches. It is
// write-mostly: the engine never reads it back while searching.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const (
	keyStats     = "stats"
	searchPrefix = "search/"
)

// SearchRecord describes one finished search.
type SearchRecord struct {
	FEN      string        `json:"fen"`
	BestMove string        `json:"bestmove"`
	Score    int           `json:"score"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Elapsed  time.Duration `json:"elapsed"`
	Outcome  string        `json:"outcome"`
	At       time.Time     `json:"at"`
}

// Stats aggregates every record written to the journal.
type Stats struct {
	Searches   int           `json:"searches"`
	Checkmates int           `json:"checkmates"`
	Stalemates int           `json:"stalemates"`
	Nodes      uint64        `json:"nodes"`
	Time       time.Duration `json:"time"`
	MaxDepth   int           `json:"max_depth"`
}

// NPS returns the average nodes per second over all searches.
func (s Stats) NPS() uint64 {
	if s.Time <= 0 {
		return 0
	}
	return uint64(float64(s.Nodes) / s.Time.Seconds())
}

// Journal wraps BadgerDB.
type Journal struct {
	db *badger.DB
}

// Open opens or creates the journal in dir.
func Open(dir string, logger zerolog.Logger) (*Journal, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{logger.With().Str("component", "badger").Logger()}
	return open(opts)
}

// OpenInMemory returns a journal that lives only as long as the process.
func OpenInMemory() (*Journal, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Journal, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close flushes and closes the database.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends rec and folds it into the running stats in one
// transaction.
func (j *Journal) Record(rec SearchRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.Searches++
		stats.Nodes += rec.Nodes
		stats.Time += rec.Elapsed
		stats.MaxDepth = max(stats.MaxDepth, rec.Depth)
		switch rec.Outcome {
		case "checkmate":
			stats.Checkmates++
		case "stalemate":
			stats.Stalemates++
		}

		if err := txn.Set(searchKey(uint64(stats.Searches)), data); err != nil {
			return err
		}
		encoded, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), encoded)
	})
}

// Stats returns the aggregate counters, zero if nothing was recorded.
func (j *Journal) Stats() (Stats, error) {
	var stats Stats
	err := j.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

// Recent returns up to n records, newest first.
func (j *Journal) Recent(n int) ([]SearchRecord, error) {
	var out []SearchRecord
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(searchPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append([]byte(searchPrefix), 0xFF)); it.Valid() && len(out) < n; it.Next() {
			var rec SearchRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func loadStats(txn *badger.Txn) (Stats, error) {
	var stats Stats
	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stats)
	})
	return stats, err
}

// searchKey orders records by sequence number under searchPrefix.
func searchKey(seq uint64) []byte {
	key := make([]byte, len(searchPrefix)+8)
	copy(key, searchPrefix)
	binary.BigEndian.PutUint64(key[len(searchPrefix):], seq)
	return key
}

// badgerLogger routes badger's own logging into zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}
