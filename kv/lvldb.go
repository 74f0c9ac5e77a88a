// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// auto-flush bulks after this many pending ops to bound memory.
const bulkFlushThreshold = 8192

// Options options for opening the leveldb store.
type Options struct {
	CacheSize              int // megabytes
	OpenFilesCacheCapacity int
}

// implements StoreCloser.
type lvldb struct {
	db *leveldb.DB
}

// Open opens or creates the leveldb backed store at the given path.
func Open(path string, opts Options) (StoreCloser, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	ldb, err := openLevelDB(stg, opts)
	if err != nil {
		stg.Close()
		return nil, err
	}
	return ldb, nil
}

// NewMem creates a memory backed store, for testing.
func NewMem() StoreCloser {
	ldb, err := openLevelDB(storage.NewMemStorage(), Options{})
	if err != nil {
		panic(errors.Wrap(err, "create mem level db"))
	}
	return ldb
}

func openLevelDB(stg storage.Storage, opts Options) (*lvldb, error) {
	if opts.CacheSize < 128 {
		opts.CacheSize = 128
	}
	if opts.OpenFilesCacheCapacity < 64 {
		opts.OpenFilesCacheCapacity = 64
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
		BlockCacheCapacity:     opts.CacheSize / 2 * opt.MiB,
		WriteBuffer:            opts.CacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &lvldb{db: db}, nil
}

func (ldb *lvldb) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

func (ldb *lvldb) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

func (ldb *lvldb) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (ldb *lvldb) Put(key, val []byte) error {
	return ldb.db.Put(key, val, &writeOpt)
}

func (ldb *lvldb) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

func (ldb *lvldb) Snapshot() Snapshot {
	snap, err := ldb.db.GetSnapshot()
	return &lvldbSnapshot{snap: snap, err: err}
}

func (ldb *lvldb) Bulk() Bulk {
	return &lvldbBulk{db: ldb.db, batch: &leveldb.Batch{}}
}

func (ldb *lvldb) Iterate(r Range) Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

func (ldb *lvldb) Close() error {
	return ldb.db.Close()
}

// implements Snapshot.
type lvldbSnapshot struct {
	snap *leveldb.Snapshot
	err  error
}

func (s *lvldbSnapshot) Get(key []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap.Get(key, &readOpt)
}

func (s *lvldbSnapshot) Has(key []byte) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.snap.Has(key, &readOpt)
}

func (s *lvldbSnapshot) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (s *lvldbSnapshot) Release() {
	if s.snap != nil {
		s.snap.Release()
	}
}

// implements Bulk.
type lvldbBulk struct {
	db        *leveldb.DB
	batch     *leveldb.Batch
	autoFlush bool
}

func (b *lvldbBulk) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return b.tryFlush()
}

func (b *lvldbBulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return b.tryFlush()
}

func (b *lvldbBulk) EnableAutoFlush() {
	b.autoFlush = true
}

func (b *lvldbBulk) tryFlush() error {
	if b.autoFlush && b.batch.Len() >= bulkFlushThreshold {
		return b.Write()
	}
	return nil
}

func (b *lvldbBulk) Write() error {
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		return errors.Wrap(err, "write batch")
	}
	b.batch.Reset()
	return nil
}
