package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"call-sentinel/internal/domain/entities"
	domainrepo "call-sentinel/internal/domain/interfaces/repository"
)

const reputationSchema = `
CREATE TABLE IF NOT EXISTS spam_numbers (
	normalized       TEXT PRIMARY KEY,
	phone_number     TEXT NOT NULL,
	is_spam          INTEGER NOT NULL DEFAULT 1,
	confidence_score REAL NOT NULL DEFAULT 1.0,
	reported_count   INTEGER NOT NULL DEFAULT 1,
	last_reported    INTEGER NOT NULL,
	source           TEXT NOT NULL DEFAULT 'manual'
)`

// is_spam only ever sets unless the write is an override. Confidence is the running max
// while the flags agree; when they disagree it belongs to the spam side, so a confident
// not-spam verdict never becomes a confident spam verdict.
const reputationUpsert = `
INSERT INTO spam_numbers (normalized, phone_number, is_spam, confidence_score, reported_count, last_reported, source)
VALUES (?1, ?2, ?3, ?4, 1, ?5, ?6)
ON CONFLICT(normalized) DO UPDATE SET
	phone_number     = excluded.phone_number,
	is_spam          = CASE WHEN ?7 THEN excluded.is_spam ELSE max(spam_numbers.is_spam, excluded.is_spam) END,
	confidence_score = CASE
		WHEN ?7 THEN excluded.confidence_score
		WHEN spam_numbers.is_spam = excluded.is_spam THEN max(spam_numbers.confidence_score, excluded.confidence_score)
		WHEN excluded.is_spam THEN excluded.confidence_score
		ELSE spam_numbers.confidence_score
	END,
	reported_count   = spam_numbers.reported_count + 1,
	last_reported    = excluded.last_reported,
	source           = excluded.source
RETURNING normalized, phone_number, is_spam, confidence_score, reported_count, last_reported, source`

const reputationSelect = `
SELECT normalized, phone_number, is_spam, confidence_score, reported_count, last_reported, source
FROM spam_numbers
WHERE normalized = ?`

// SQLiteReputationRepository stores reputation records in the spam_numbers table.
type SQLiteReputationRepository struct {
	db *sql.DB
}

// NewSQLiteReputationRepository creates the schema if needed.
func NewSQLiteReputationRepository(ctx context.Context, db *sql.DB) (*SQLiteReputationRepository, error) {
	if _, err := db.ExecContext(ctx, reputationSchema); err != nil {
		return nil, fmt.Errorf("create spam_numbers: %w", err)
	}
	return &SQLiteReputationRepository{db: db}, nil
}

func (r *SQLiteReputationRepository) Find(ctx context.Context, normalized string) (entities.ReputationRecord, error) {
	record, err := scanRecord(r.db.QueryRowContext(ctx, reputationSelect, normalized))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ReputationRecord{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return entities.ReputationRecord{}, fmt.Errorf("query spam_numbers: %w", err)
	}
	return record, nil
}

func (r *SQLiteReputationRepository) Upsert(ctx context.Context, record entities.ReputationRecord, override bool) (entities.ReputationRecord, error) {
	row := r.db.QueryRowContext(ctx, reputationUpsert,
		record.Normalized, record.PhoneNumber, record.IsSpam, record.Confidence,
		record.LastSeen.UnixMilli(), record.Source, override)
	saved, err := scanRecord(row)
	if err != nil {
		return entities.ReputationRecord{}, fmt.Errorf("upsert spam_numbers: %w", err)
	}
	return saved, nil
}

// Seed inserts records that are not present yet and returns how many were added.
func (r *SQLiteReputationRepository) Seed(ctx context.Context, records []entities.ReputationRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO spam_numbers (normalized, phone_number, is_spam, confidence_score, reported_count, last_reported, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, record := range records {
		count := record.ReportCount
		if count < 1 {
			count = 1
		}
		result, err := stmt.ExecContext(ctx, record.Normalized, record.PhoneNumber, record.IsSpam,
			record.Confidence, count, record.LastSeen.UnixMilli(), record.Source)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", record.PhoneNumber, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return added, nil
}

func (r *SQLiteReputationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spam_numbers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count spam_numbers: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (entities.ReputationRecord, error) {
	var record entities.ReputationRecord
	var lastReported int64
	if err := row.Scan(&record.Normalized, &record.PhoneNumber, &record.IsSpam, &record.Confidence,
		&record.ReportCount, &lastReported, &record.Source); err != nil {
		return entities.ReputationRecord{}, err
	}
	record.LastSeen = time.UnixMilli(lastReported).UTC()
	return record, nil
}
