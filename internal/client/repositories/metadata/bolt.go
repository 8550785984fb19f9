package metadata

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var sessionBucket = []byte("session")

// BoltStore is a Store backed by a bbolt file with a single bucket.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens the bbolt database at path and makes sure the bucket
// exists.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) View(ctx context.Context, fn func(Repository) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltRepository{tx: tx})
	})
}

func (s *BoltStore) Update(ctx context.Context, fn func(Repository) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltRepository{tx: tx})
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// boltRepository is only valid for the lifetime of its transaction.
type boltRepository struct {
	tx *bbolt.Tx
}

func (r *boltRepository) bucket() (*bbolt.Bucket, error) {
	b := r.tx.Bucket(sessionBucket)
	if b == nil {
		return nil, fmt.Errorf("bucket %s missing", sessionBucket)
	}
	return b, nil
}

func (r *boltRepository) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.bucket()
	if err != nil {
		return nil, err
	}
	v := b.Get([]byte(key))
	if v == nil {
		return nil, nil
	}
	// bbolt memory is only valid inside the transaction.
	return append([]byte(nil), v...), nil
}

func (r *boltRepository) Set(ctx context.Context, key string, value []byte) error {
	b, err := r.bucket()
	if err != nil {
		return err
	}
	if err := b.Put([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *boltRepository) Delete(ctx context.Context, key string) error {
	b, err := r.bucket()
	if err != nil {
		return err
	}
	if err := b.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *boltRepository) List(ctx context.Context) (map[string][]byte, error) {
	b, err := r.bucket()
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte)
	err = b.ForEach(func(k, v []byte) error {
		result[string(k)] = append([]byte(nil), v...)
		return nil
	})
	return result, err
}

func (r *boltRepository) Clear(ctx context.Context) error {
	if err := r.tx.DeleteBucket(sessionBucket); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	_, err := r.tx.CreateBucket(sessionBucket)
	return err
}
