// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Badger is a persistent Store backed by BadgerDB. Entries carry Badger's
// native TTL, so expired keys are invisible to reads and reclaimed by
// compaction.
type Badger struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenBadger opens (or creates) a Badger store in dir.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(dir string, logger zerolog.Logger) (*Badger, error) {
	if dir == "" {
		return nil, errors.New("badger cache directory is required")
	}

	log := logger.With().Str("component", "badger_cache").Logger()

	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{log}
	// cached related lists are small; keep value log files small too
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %s: %w", dir, err)
	}
	return NewBadgerFromDB(db, log), nil
}

// NewBadgerFromDB wraps an already opened database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerFromDB(db *badger.DB, logger zerolog.Logger) *Badger {
	return &Badger{db: db, logger: logger}
}

// Get returns the value stored under key.
func (b *Badger) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return out, true, nil
}

// Set stores value under key with ttl.
func (b *Badger) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (b *Badger) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}

// DeletePrefix counts live keys under prefix, then drops them.
func (b *Badger) DeletePrefix(_ context.Context, prefix string) (int, error) {
	p := []byte(prefix)

	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger scan %s: %w", prefix, err)
	}
	if count == 0 {
		return 0, nil
	}

	if prefix == "" {
		err = b.db.DropAll()
	} else {
		err = b.db.DropPrefix(p)
	}
	if err != nil {
		return 0, fmt.Errorf("badger drop prefix %s: %w", prefix, err)
	}
	return count, nil
}

// RunGC reclaims value-log space. ErrNoRewrite means there was nothing to do.
func (b *Badger) RunGC() error {
	err := b.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// StartGC runs RunGC every interval until ctx is canceled.
func (b *Badger) StartGC(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := b.RunGC(); err != nil {
					b.logger.Warn().Err(err).Msg("badger value log GC failed")
				}
			}
		}
	}()
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog. Info and
// debug chatter is demoted to debug.
type badgerLogger struct {
	l zerolog.Logger
}

func (bl badgerLogger) Errorf(f string, v ...interface{})   { bl.l.Error().Msgf(f, v...) }
func (bl badgerLogger) Warningf(f string, v ...interface{}) { bl.l.Warn().Msgf(f, v...) }
func (bl badgerLogger) Infof(f string, v ...interface{})    { bl.l.Debug().Msgf(f, v...) }
func (bl badgerLogger) Debugf(f string, v ...interface{})   { bl.l.Debug().Msgf(f, v...) }
