package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var (
	memoryKey = []byte("apim/memory")
	backupKey = []byte("apim/memory.corrupt.backup")
)

// BadgerStore keeps the memory document under a single BadgerDB key.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

func NewBadgerStore(dir string, now func() time.Time) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)
	return openBadger(opts, now)
}

// NewInMemoryBadgerStore opens a store that lives only in RAM.
func NewInMemoryBadgerStore(now func() time.Time) (*BadgerStore, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	return openBadger(opts, now)
}

func openBadger(opts badger.Options, now func() time.Time) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &BadgerStore{db: db, now: now}, nil
}

func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BadgerStore) Load() (*Memory, error) {
	var m *Memory
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		m, err = s.loadTxn(txn)
		return err
	})
	return m, err
}

func (s *BadgerStore) Save(m *Memory) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.saveTxn(txn, m)
	})
}

// Update retries on transaction conflicts so concurrent writers never lose
// an append.
func (s *BadgerStore) Update(fn func(m *Memory) error) error {
	for {
		err := s.db.Update(func(txn *badger.Txn) error {
			m, err := s.loadTxn(txn)
			if err != nil {
				return err
			}
			if err := fn(m); err != nil {
				return err
			}
			return s.saveTxn(txn, m)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

func (s *BadgerStore) loadTxn(txn *badger.Txn) (*Memory, error) {
	item, err := txn.Get(memoryKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		m := Default(s.now())
		return m, s.saveTxn(txn, m)
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}

	var data []byte
	if err := item.Value(func(val []byte) error {
		data = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read memory: %w", err)
	}

	m, err := decode(data, s.now())
	if err != nil {
		log.Printf("⚠️ Stored memory is corrupt (%v), keeping a copy under %s", err, backupKey)
		if err := txn.Set(backupKey, data); err != nil {
			return nil, fmt.Errorf("backup corrupt memory: %w", err)
		}
		m = Default(s.now())
		return m, s.saveTxn(txn, m)
	}
	return m, nil
}

func (s *BadgerStore) saveTxn(txn *badger.Txn, m *Memory) error {
	m.UpdatedAt = Time{s.now()}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}
	return txn.Set(memoryKey, data)
}
