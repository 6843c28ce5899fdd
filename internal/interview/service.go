package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/errorz"
)

// RecordFilter is used to find records in a Store.
// Non-zero fields are combined using logical AND.
type RecordFilter struct {
	IDs     []uuid.UUID
	UserIDs []uuid.UUID
}

// Store provides persistent storage for interview records.
// Results are ordered by creation time, newest first.
type Store interface {
	CreateRecord(ctx context.Context, r *Record) error
	FindRecords(ctx context.Context, filter *RecordFilter) ([]Record, error)
}

// Service takes care of saving and retrieving interview records.
type Service struct {
	store Store

	// NowFunc is called when the service needs the current time.
	NowFunc func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:   store,
		NowFunc: time.Now,
	}
}

// Save stores a new interview record for the given user.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, in NewRecord) (Record, error) {
	if err := in.validate(); err != nil {
		return Record{}, err
	}

	record := Record{
		ID:         uuid.New(),
		UserID:     userID,
		Mode:       in.Mode,
		Score:      in.Score,
		Strengths:  in.Strengths,
		Weaknesses: in.Weaknesses,
		Transcript: in.Transcript,
		CreatedAt:  s.NowFunc(),
	}

	if err := s.store.CreateRecord(ctx, &record); err != nil {
		return Record{}, fmt.Errorf("failed to create record: %w", err)
	}

	return record, nil
}

// History returns all records of the given user, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	records, err := s.store.FindRecords(ctx, &RecordFilter{
		UserIDs: []uuid.UUID{userID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find records: %w", err)
	}

	return records, nil
}

// ByID returns a single record of the given user.
//
// Records owned by other users are reported as not found, ownership
// is not revealed to other users.
func (s *Service) ByID(ctx context.Context, userID, id uuid.UUID) (Record, error) {
	records, err := s.store.FindRecords(ctx, &RecordFilter{
		IDs:     []uuid.UUID{id},
		UserIDs: []uuid.UUID{userID},
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to find records: %w", err)
	}

	if len(records) != 1 {
		return Record{}, errorz.ErrNotFound
	}

	return records[0], nil
}
