// Package boltx is the bbolt counterpart of dbx: a handle satisfied both by
// an open database and by a running transaction, so the same repository code
// can run standalone or as part of a larger atomic write.
package boltx

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var ErrReadOnlyTx = errors.New("write attempted in a read-only transaction")

// Runner executes read and write closures. *bbolt.DB satisfies it directly;
// InTx adapts an open transaction.
type Runner interface {
	View(fn func(tx *bbolt.Tx) error) error
	Update(fn func(tx *bbolt.Tx) error) error
}

type txRunner struct {
	tx *bbolt.Tx
}

// InTx returns a Runner whose closures all run inside tx. Commit and rollback
// stay with whoever opened tx.
func InTx(tx *bbolt.Tx) Runner {
	return txRunner{tx: tx}
}

func (r txRunner) View(fn func(tx *bbolt.Tx) error) error {
	return fn(r.tx)
}

func (r txRunner) Update(fn func(tx *bbolt.Tx) error) error {
	if !r.tx.Writable() {
		return ErrReadOnlyTx
	}
	return fn(r.tx)
}

// Open opens (creating if needed) the bbolt file at path and makes sure every
// named bucket exists.
func Open(path string, timeout time.Duration, buckets ...[]byte) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}
	if err := EnsureBuckets(db, buckets...); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func EnsureBuckets(r Runner, names ...[]byte) error {
	return r.Update(func(tx *bbolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// ResetBucket drops every key in the named bucket.
func ResetBucket(tx *bbolt.Tx, name []byte) error {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return fmt.Errorf("delete bucket %s: %w", name, err)
		}
	}
	if _, err := tx.CreateBucket(name); err != nil {
		return fmt.Errorf("create bucket %s: %w", name, err)
	}
	return nil
}

// Bucket returns the named bucket or an error naming it when it is missing.
func Bucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("bucket %s does not exist", name)
	}
	return b, nil
}
