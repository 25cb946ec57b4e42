package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("chat")

// BoltStore keeps the documents in a single bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt file.
// If path is empty, defaults to "./data/chat.bolt"
func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		path = "./data/chat.bolt"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the bolt file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Ping verifies the bucket is readable.
func (s *BoltStore) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(boltBucket) == nil {
			return errors.New("bucket missing")
		}
		return nil
	})
}

// Get retrieves the document stored under key.
func (s *BoltStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v != nil {
			// v is only valid inside the transaction
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores the document under key.
func (s *BoltStore) Set(ctx context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

// Delete removes key.
func (s *BoltStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}
