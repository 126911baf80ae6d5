package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/dmitrijs2005/loadlog/internal/boltx"
	"github.com/dmitrijs2005/loadlog/internal/common"
)

var bucketSettings = []byte("settings")

// BoltBuckets lists the buckets BoltRepository expects to exist.
var BoltBuckets = [][]byte{bucketSettings}

type BoltRepository struct {
	db boltx.Runner
}

func NewBoltRepository(db boltx.Runner) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Get(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var raw []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketSettings)
		if err != nil {
			return err
		}
		if val := b.Get([]byte(key)); val != nil {
			raw = append([]byte(nil), val...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if raw == nil {
		return fmt.Errorf("setting %s: %w", key, common.ErrNotFound)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Put(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	err = r.db.Update(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketSettings)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to put setting %s: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b, err := boltx.Bucket(tx, bucketSettings)
		if err != nil {
			return err
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.Update(func(tx *bbolt.Tx) error { return boltx.ResetBucket(tx, bucketSettings) }); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}
