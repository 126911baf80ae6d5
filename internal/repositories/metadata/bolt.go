package metadata

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/dmitrijs2005/loadlog/internal/boltx"
	"github.com/dmitrijs2005/loadlog/internal/common"
)

var bucketMetadata = []byte("metadata")

// BoltBuckets lists the buckets BoltRepository expects to exist.
var BoltBuckets = [][]byte{bucketMetadata}

type BoltRepository struct {
	db boltx.Runner
}

func NewBoltRepository(db boltx.Runner) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		value string
		found bool
	)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	if !found {
		return "", fmt.Errorf("metadata[%s]: %w", key, common.ErrNotFound)
	}
	return value, nil
}

func (r *BoltRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return boltx.ResetBucket(tx, bucketMetadata)
	})
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func (r *BoltRepository) List(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make(map[string]string)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			result[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	return result, nil
}
