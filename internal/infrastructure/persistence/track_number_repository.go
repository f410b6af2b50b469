package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/poschain/backend/internal/domain/einvoice"
)

// GormTrackNumberRepository implements TrackNumberRepository using GORM
type GormTrackNumberRepository struct {
	db *gorm.DB
}

// NewGormTrackNumberRepository creates a new GormTrackNumberRepository
func NewGormTrackNumberRepository(db *gorm.DB) *GormTrackNumberRepository {
	return &GormTrackNumberRepository{db: db}
}

// Save inserts a new range after checking for overlaps with active
// ranges on the same code pair. The check and the insert share one
// transaction but do not lock the code pair, so two simultaneous
// inserts can still both pass the check; loading ranges is an
// infrequent operator action and the window is accepted.
func (r *GormTrackNumberRepository) Save(ctx context.Context, rng *einvoice.TrackNumberRange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&einvoice.TrackNumberRange{}).
			Where("track_code1 = ? AND track_code2 = ? AND active = ?", rng.TrackCode1, rng.TrackCode2, true).
			Where("start_number <= ? AND end_number >= ?", rng.EndNumber, rng.StartNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return einvoice.ErrRangeOverlap
		}
		return tx.Create(rng).Error
	})
}

// FindByID finds a range by ID
func (r *GormTrackNumberRepository) FindByID(ctx context.Context, id uuid.UUID) (*einvoice.TrackNumberRange, error) {
	var rng einvoice.TrackNumberRange
	if err := r.db.WithContext(ctx).First(&rng, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, einvoice.ErrRangeNotFound
		}
		return nil, err
	}
	return &rng, nil
}

// List returns ranges ordered by issue date, oldest first
func (r *GormTrackNumberRepository) List(ctx context.Context, includeInactive bool) ([]einvoice.TrackNumberRange, error) {
	var ranges []einvoice.TrackNumberRange
	query := r.db.WithContext(ctx).Order("issue_date ASC, created_at ASC")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&ranges).Error; err != nil {
		return nil, err
	}
	return ranges, nil
}

// Update persists range state changes (deactivation)
func (r *GormTrackNumberRepository) Update(ctx context.Context, rng *einvoice.TrackNumberRange) error {
	return r.db.WithContext(ctx).Save(rng).Error
}

// AcquireNext allocates the next invoice number. The oldest active
// range with capacity is locked FOR UPDATE for the duration of the
// transaction, so concurrent callers serialise on the row and every
// number is handed out exactly once. A number consumed here stays
// consumed even if the caller later fails to persist its invoice.
func (r *GormTrackNumberRepository) AcquireNext(ctx context.Context) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rng einvoice.TrackNumberRange
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("active = ? AND current_number <= end_number", true).
			Order("issue_date ASC, created_at ASC").
			First(&rng).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return einvoice.ErrTrackExhausted
			}
			return err
		}

		n, err := rng.Advance()
		if err != nil {
			return err
		}
		number = n

		return tx.Model(&einvoice.TrackNumberRange{}).
			Where("id = ?", rng.ID).
			Updates(map[string]any{
				"current_number": rng.CurrentNumber,
				"version":        rng.Version,
				"updated_at":     rng.UpdatedAt,
			}).Error
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// Ensure GormTrackNumberRepository implements the interface
var _ einvoice.TrackNumberRepository = (*GormTrackNumberRepository)(nil)
