package utils

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/sudorandom/threat-globe/pkg/logging"
)

// DiskCache is a small key/value store on badger. An empty path keeps the data
// in memory for the life of the process.
type DiskCache struct {
	db *badger.DB
}

func OpenDiskCache(path string) (*DiskCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = logging.NewBadgerLogger("disk-cache")
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DiskCache{db: db}, nil
}

func (c *DiskCache) Close() error {
	return c.db.Close()
}

// Get returns the value stored under key, or nil if there is none.
func (c *DiskCache) Get(key string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

// PutTTL stores value under key until ttl elapses. A ttl of zero or less
// stores it without expiry.
func (c *DiskCache) PutTTL(key string, value []byte, ttl time.Duration) error {
	e := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

func (c *DiskCache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// BatchPut writes all entries in a single write batch.
func (c *DiskCache) BatchPut(entries map[string][]byte) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for k, v := range entries {
		if err := wb.Set([]byte(k), v); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// ForEach calls fn for every key starting with prefix, in key order. The value
// slice is only valid during the call.
func (c *DiskCache) ForEach(prefix string, fn func(key string, value []byte) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := string(item.Key())
			err := item.Value(func(v []byte) error {
				return fn(k, v)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
