package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/poa00/copyqd/internal/types"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	historyBucket  = "history"
	defaultMaxSize = 100 * 1024 * 1024 // 100MB default size budget
)

// BoltStorage persists the ordered clipboard history using BoltDB. Keys
// are big endian row indexes, so iteration returns rows in the same
// newest-first order the history keeps in memory.
type BoltStorage struct {
	db      *bbolt.DB
	maxSize int64
	logger  *zap.Logger
}

// StorageConfig holds configuration for BoltStorage initialization.
type StorageConfig struct {
	DBPath  string
	MaxSize int64
	Logger  *zap.Logger
}

// NewBoltStorage opens the database and prepares the history bucket.
func NewBoltStorage(config StorageConfig) (*BoltStorage, error) {
	maxSize := config.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bbolt.Open(config.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	storage := &BoltStorage{
		db:      db,
		maxSize: maxSize,
		logger:  logger,
	}

	logger.Debug("BoltStorage initialized",
		zap.String("db_path", config.DBPath),
		zap.Int64("max_size", maxSize))

	return storage, nil
}

// Save replaces the stored history with items, preserving their order.
// Items past the size budget are dropped from the tail.
func (s *BoltStorage) Save(items []*types.HistoryItem) error {
	var saved int
	var size int64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(historyBucket)); err != nil {
			return fmt.Errorf("failed to reset bucket: %w", err)
		}
		b, err := tx.CreateBucket([]byte(historyBucket))
		if err != nil {
			return fmt.Errorf("failed to recreate bucket: %w", err)
		}

		for i, item := range items {
			encoded, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("failed to marshal item %d: %w", i, err)
			}

			if size+int64(len(encoded)) > s.maxSize {
				s.logger.Warn("History exceeds storage size budget, dropping tail",
					zap.Int("saved", saved),
					zap.Int("dropped", len(items)-saved))
				break
			}

			var key [8]byte
			binary.BigEndian.PutUint64(key[:], uint64(i))
			if err := b.Put(key[:], encoded); err != nil {
				return fmt.Errorf("failed to store item %d: %w", i, err)
			}
			size += int64(len(encoded))
			saved++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("History saved",
		zap.Int("items", saved),
		zap.Int64("bytes", size))
	return nil
}

// Load returns the stored history in row order. Entries that fail to
// decode are skipped.
func (s *BoltStorage) Load() ([]*types.HistoryItem, error) {
	var items []*types.HistoryItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(historyBucket))
		return b.ForEach(func(k, v []byte) error {
			var item types.HistoryItem
			if err := json.Unmarshal(v, &item); err != nil {
				s.logger.Warn("Failed to unmarshal stored item",
					zap.Error(err),
					zap.Binary("key", k))
				return nil
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return items, nil
}

// Close closes the underlying database.
func (s *BoltStorage) Close() error {
	s.logger.Debug("Closing storage")
	return s.db.Close()
}
