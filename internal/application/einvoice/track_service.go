package einvoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poschain/backend/internal/domain/einvoice"
)

// TrackService manages the pools of government-assigned invoice numbers
type TrackService struct {
	tracks einvoice.TrackNumberRepository
	logger *zap.Logger
}

// NewTrackService creates a new TrackService
func NewTrackService(tracks einvoice.TrackNumberRepository, logger *zap.Logger) *TrackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackService{
		tracks: tracks,
		logger: logger.Named("einvoice.track"),
	}
}

// AddRangeRequest registers a new allocation range
type AddRangeRequest struct {
	TrackCode1  string
	TrackCode2  string
	StartNumber int64
	EndNumber   int64
	IssueDate   time.Time
}

// AddRange registers a freshly assigned number range. Overlapping an
// existing active range with the same track code is rejected.
func (s *TrackService) AddRange(ctx context.Context, req AddRangeRequest) (*einvoice.TrackNumberRange, error) {
	rng, err := einvoice.NewTrackNumberRange(req.TrackCode1, req.TrackCode2, req.StartNumber, req.EndNumber, req.IssueDate)
	if err != nil {
		return nil, err
	}

	if err := s.tracks.Save(ctx, rng); err != nil {
		return nil, err
	}

	s.logger.Info("track range registered",
		zap.String("code_pair", rng.CodePair()),
		zap.Int64("start", rng.StartNumber),
		zap.Int64("end", rng.EndNumber))

	return rng, nil
}

// ListRanges returns ranges ordered by allocation priority, oldest
// issue date first
func (s *TrackService) ListRanges(ctx context.Context, includeInactive bool) ([]einvoice.TrackNumberRange, error) {
	return s.tracks.List(ctx, includeInactive)
}

// RemainingCapacity sums the unused serials across active ranges
func (s *TrackService) RemainingCapacity(ctx context.Context) (int64, error) {
	ranges, err := s.tracks.List(ctx, false)
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range ranges {
		total += ranges[i].Remaining()
	}
	return total, nil
}

// Deactivate pulls a range out of the allocation rotation. Serials
// already handed out stay valid.
func (s *TrackService) Deactivate(ctx context.Context, id uuid.UUID) (*einvoice.TrackNumberRange, error) {
	rng, err := s.tracks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rng.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.tracks.Update(ctx, rng); err != nil {
		return nil, err
	}

	s.logger.Info("track range deactivated",
		zap.String("code_pair", rng.CodePair()),
		zap.String("range_id", id.String()))

	return rng, nil
}
