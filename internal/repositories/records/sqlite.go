package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/dbx"
	"github.com/dmitrijs2005/loadlog/internal/models"
)

const upsertSQL = `
	INSERT INTO events (id, date, data, iv, is_encrypted)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		date = excluded.date,
		data = excluded.data,
		iv = excluded.iv,
		is_encrypted = excluded.is_encrypted
`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func nullableIV(iv string) sql.NullString {
	return sql.NullString{String: iv, Valid: iv != ""}
}

func put(ctx context.Context, db dbx.DBTX, rec *models.Record) error {
	_, err := db.ExecContext(ctx, upsertSQL, rec.ID, rec.Date, rec.Data, nullableIV(rec.IV), rec.IsEncrypted)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Put(ctx context.Context, rec *models.Record) error {
	return put(ctx, r.db, rec)
}

func (r *SQLiteRepository) BulkPut(ctx context.Context, recs []models.Record) error {
	return dbx.Atomically(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		for i := range recs {
			if err := put(ctx, tx, &recs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanRecord(row interface{ Scan(dest ...any) error }) (models.Record, error) {
	var (
		rec models.Record
		iv  sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Date, &rec.Data, &iv, &rec.IsEncrypted); err != nil {
		return models.Record{}, err
	}
	rec.IV = iv.String
	return rec, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, data, iv, is_encrypted
		FROM events WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, data, iv, is_encrypted
		FROM events
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
