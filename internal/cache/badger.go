package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Badger persists entries on disk, so a restarted server can answer from
// cache until the TTL runs out.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

func OpenBadger(dir string, ttl time.Duration) (*Badger, error) {
	if dir == "" {
		return nil, errors.New("badger cache needs a directory")
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return &Badger{db: db, ttl: ttl}, nil
}

func (b *Badger) Get(key string) ([]byte, bool) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Warn("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	return out, true
}

func (b *Badger) Set(key string, val []byte) {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), val).WithTTL(b.ttl))
	})
	if err != nil {
		slog.Warn("cache write failed", "key", key, "err", err)
	}
}

func (b *Badger) Purge() error { return b.db.DropAll() }

func (b *Badger) Close() error { return b.db.Close() }
