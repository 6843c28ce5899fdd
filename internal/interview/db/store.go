// Package db provides a SQLite backed store for interview records.
//
// Transcripts may contain sensitive conversation data and are
// encrypted before they hit the database file.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/interview"
	"github.com/mentorai/mentorai/internal/krypto"
)

type Store struct {
	db  *sql.DB
	enc *krypto.Encryptor
}

func New(db *sql.DB, enc *krypto.Encryptor) *Store {
	return &Store{
		db:  db,
		enc: enc,
	}
}

func (s *Store) CreateRecord(ctx context.Context, r *interview.Record) error {
	if r.ID == uuid.Nil || r.UserID == uuid.Nil {
		return errorz.ErrConstraintViolated
	}

	strengths, err := json.Marshal(sliceOrEmpty(r.Strengths))
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %w", err)
	}

	weaknesses, err := json.Marshal(sliceOrEmpty(r.Weaknesses))
	if err != nil {
		return fmt.Errorf("failed to marshal weaknesses: %w", err)
	}

	transcript, err := s.sealTranscript(r.Transcript)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO interview_records (id, user_id, mode, score, strengths, weaknesses, transcript_encrypted, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, q,
		r.ID.String(),
		r.UserID.String(),
		string(r.Mode),
		r.Score,
		string(strengths),
		string(weaknesses),
		transcript,
		r.CreatedAt,
	)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func (s *Store) FindRecords(ctx context.Context, filter *interview.RecordFilter) ([]interview.Record, error) {
	q := `SELECT id, user_id, mode, score, strengths, weaknesses, transcript_encrypted, created_at FROM interview_records`

	var (
		conditions []string
		params     []any
	)

	if len(filter.IDs) > 0 {
		conditions = append(conditions, `id IN (`+placeholders(len(filter.IDs))+`)`)
		for _, id := range filter.IDs {
			params = append(params, id.String())
		}
	}

	if len(filter.UserIDs) > 0 {
		conditions = append(conditions, `user_id IN (`+placeholders(len(filter.UserIDs))+`)`)
		for _, id := range filter.UserIDs {
			params = append(params, id.String())
		}
	}

	if len(conditions) > 0 {
		q += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	q += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}
	defer rows.Close()

	var records []interview.Record
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return records, nil
}

func (s *Store) scanRecord(rows *sql.Rows) (interview.Record, error) {
	var (
		r            interview.Record
		id, userID   string
		mode         string
		strengths    string
		weaknesses   string
		transcript   []byte
		createdAt    time.Time
	)

	err := rows.Scan(&id, &userID, &mode, &r.Score, &strengths, &weaknesses, &transcript, &createdAt)
	if err != nil {
		return interview.Record{}, err
	}

	r.ID, err = uuid.Parse(id)
	if err != nil {
		return interview.Record{}, fmt.Errorf("failed to parse record id: %w", err)
	}

	r.UserID, err = uuid.Parse(userID)
	if err != nil {
		return interview.Record{}, fmt.Errorf("failed to parse user id: %w", err)
	}

	r.Mode, err = interview.ParseMode(mode)
	if err != nil {
		return interview.Record{}, err
	}

	if err := json.Unmarshal([]byte(strengths), &r.Strengths); err != nil {
		return interview.Record{}, fmt.Errorf("failed to unmarshal strengths: %w", err)
	}

	if err := json.Unmarshal([]byte(weaknesses), &r.Weaknesses); err != nil {
		return interview.Record{}, fmt.Errorf("failed to unmarshal weaknesses: %w", err)
	}

	r.Transcript, err = s.openTranscript(transcript)
	if err != nil {
		return interview.Record{}, err
	}

	r.CreatedAt = createdAt

	return r, nil
}

// sealTranscript serializes and encrypts a transcript for storage.
func (s *Store) sealTranscript(transcript []interview.Message) ([]byte, error) {
	plain, err := json.Marshal(sliceOrEmpty(transcript))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}

	sealed, err := s.enc.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt transcript: %w", err)
	}

	return sealed, nil
}

func (s *Store) openTranscript(sealed []byte) ([]interview.Message, error) {
	plain, err := s.enc.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt transcript: %w", err)
	}

	var transcript []interview.Message
	if err := json.Unmarshal(plain, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return transcript, nil
}

// sliceOrEmpty keeps nil slices from serializing as JSON null.
func sliceOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// placeholders returns n comma separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
