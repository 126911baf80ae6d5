package records

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/dmitrijs2005/loadlog/internal/boltx"
	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/models"
)

var (
	bucketEvents = []byte("events")
	// bucketByDate maps dateKey(date, id) to id.
	bucketByDate = []byte("events_by_date")
)

// BoltBuckets lists the buckets BoltRepository expects to exist.
var BoltBuckets = [][]byte{bucketEvents, bucketByDate}

type BoltRepository struct {
	db  boltx.Runner
	log logging.Logger
}

type BoltOption func(*BoltRepository)

// WithLogger sets the logger that reports rows GetAll had to skip.
func WithLogger(l logging.Logger) BoltOption {
	return func(r *BoltRepository) { r.log = l }
}

func NewBoltRepository(db boltx.Runner, opts ...BoltOption) *BoltRepository {
	r := &BoltRepository{db: db, log: logging.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// dateKey orders index entries by date and then id. Flipping the sign bit
// keeps negative dates sorted before positive ones.
func dateKey(date int64, id string) []byte {
	k := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(k, uint64(date)^(1<<63))
	return append(k, id...)
}

func buckets(tx *bbolt.Tx) (events, byDate *bbolt.Bucket, err error) {
	if events, err = boltx.Bucket(tx, bucketEvents); err != nil {
		return nil, nil, err
	}
	if byDate, err = boltx.Bucket(tx, bucketByDate); err != nil {
		return nil, nil, err
	}
	return events, byDate, nil
}

func decode(v []byte) (models.Record, error) {
	var rec models.Record
	if err := json.Unmarshal(v, &rec); err != nil {
		return models.Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

func putTx(tx *bbolt.Tx, rec *models.Record) error {
	events, byDate, err := buckets(tx)
	if err != nil {
		return err
	}

	if old := events.Get([]byte(rec.ID)); old != nil {
		prev, err := decode(old)
		if err != nil {
			return err
		}
		if err := byDate.Delete(dateKey(prev.Date, prev.ID)); err != nil {
			return err
		}
	}

	v, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := events.Put([]byte(rec.ID), v); err != nil {
		return err
	}
	return byDate.Put(dateKey(rec.Date, rec.ID), []byte(rec.ID))
}

func (r *BoltRepository) Put(ctx context.Context, rec *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.Update(func(tx *bbolt.Tx) error { return putTx(tx, rec) }); err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *BoltRepository) BulkPut(ctx context.Context, recs []models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		for i := range recs {
			if err := putTx(tx, &recs[i]); err != nil {
				return fmt.Errorf("record %s: %w", recs[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bulk upsert records: %w", err)
	}
	return nil
}

func (r *BoltRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec *models.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		events, _, err := buckets(tx)
		if err != nil {
			return err
		}
		v := events.Get([]byte(id))
		if v == nil {
			return nil
		}
		decoded, err := decode(v)
		if err != nil {
			return err
		}
		rec = &decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	return rec, nil
}

func (r *BoltRepository) GetAll(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []models.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		events, byDate, err := buckets(tx)
		if err != nil {
			return err
		}
		c := byDate.Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			v := events.Get(id)
			if v == nil {
				r.log.Warn(ctx, "skipping dangling date index entry", "id", string(id))
				continue
			}
			rec, err := decode(v)
			if err != nil {
				r.log.Warn(ctx, "skipping unreadable record", "id", string(id), "error", err)
				continue
			}
			result = append(result, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return result, nil
}

func (r *BoltRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		events, err := boltx.Bucket(tx, bucketEvents)
		if err != nil {
			return err
		}
		return events.ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *BoltRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		events, byDate, err := buckets(tx)
		if err != nil {
			return err
		}
		v := events.Get([]byte(id))
		if v == nil {
			return nil
		}
		rec, err := decode(v)
		if err != nil {
			return err
		}
		found = true
		if err := byDate.Delete(dateKey(rec.Date, rec.ID)); err != nil {
			return err
		}
		return events.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	if !found {
		return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *BoltRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range BoltBuckets {
			if err := boltx.ResetBucket(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
