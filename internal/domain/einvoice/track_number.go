package einvoice

import (
	"fmt"
	"time"

	"github.com/poschain/backend/internal/domain/shared"
)

// maxSerial is the largest serial representable in the 8-digit portion
// of an invoice number
const maxSerial = 99999999

// TrackNumberRange is a government-issued block of sequential invoice
// numbers, identified by a two-letter track code pair. CurrentNumber is
// the next serial to hand out; the invariant Start <= Current <= End+1
// holds for the aggregate's whole life. Ranges are never deleted, only
// deactivated, so allocation history stays auditable.
type TrackNumberRange struct {
	shared.BaseAggregateRoot
	TrackCode1    string    `json:"track_code1" gorm:"size:2;not null;index:idx_track_code"`
	TrackCode2    string    `json:"track_code2" gorm:"size:2;not null;index:idx_track_code"`
	StartNumber   int64     `json:"start_number" gorm:"not null"`
	EndNumber     int64     `json:"end_number" gorm:"not null"`
	CurrentNumber int64     `json:"current_number" gorm:"not null"`
	IssueDate     time.Time `json:"issue_date" gorm:"not null;index"`
	Active        bool      `json:"active" gorm:"not null;default:true"`
}

// NewTrackNumberRange creates a new range with the allocation pointer at
// the start of the block
func NewTrackNumberRange(code1, code2 string, start, end int64, issueDate time.Time) (*TrackNumberRange, error) {
	if !isTrackCode(code1) || !isTrackCode(code2) {
		return nil, NewRangeValidationError("Track codes must be two uppercase letters each")
	}
	if start < 1 {
		return nil, NewRangeValidationError("Start number must be positive")
	}
	if start > end {
		return nil, NewRangeValidationError("Start number cannot exceed end number")
	}
	if end > maxSerial {
		return nil, NewRangeValidationError("End number exceeds the 8-digit serial space")
	}
	if issueDate.IsZero() {
		return nil, NewRangeValidationError("Issue date is required")
	}

	r := &TrackNumberRange{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TrackCode1:        code1,
		TrackCode2:        code2,
		StartNumber:       start,
		EndNumber:         end,
		CurrentNumber:     start,
		IssueDate:         issueDate,
		Active:            true,
	}

	r.AddDomainEvent(NewTrackRangeAddedEvent(r))

	return r, nil
}

func isTrackCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// CodePair returns the combined four-letter track code
func (r *TrackNumberRange) CodePair() string {
	return r.TrackCode1 + r.TrackCode2
}

// Remaining returns the number of serials left in the range
func (r *TrackNumberRange) Remaining() int64 {
	if r.CurrentNumber > r.EndNumber {
		return 0
	}
	return r.EndNumber - r.CurrentNumber + 1
}

// IsExhausted reports whether every serial in the range has been issued
func (r *TrackNumberRange) IsExhausted() bool {
	return r.CurrentNumber > r.EndNumber
}

// CanAllocate reports whether the range may serve the next allocation
func (r *TrackNumberRange) CanAllocate() bool {
	return r.Active && !r.IsExhausted()
}

// FormatNumber renders a serial from this range as a full invoice
// number: code pair plus the serial zero-padded to 8 digits
func (r *TrackNumberRange) FormatNumber(serial int64) string {
	return fmt.Sprintf("%s%s%08d", r.TrackCode1, r.TrackCode2, serial)
}

// Advance hands out the current serial and moves the pointer forward.
// The returned number is never produced again by this range.
func (r *TrackNumberRange) Advance() (string, error) {
	if !r.Active {
		return "", shared.NewDomainError("TRACK_RANGE_INACTIVE", "Cannot allocate from an inactive range")
	}
	if r.IsExhausted() {
		return "", ErrTrackExhausted
	}

	number := r.FormatNumber(r.CurrentNumber)
	r.CurrentNumber++
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return number, nil
}

// Overlaps reports whether the other range shares the code pair and
// intersects this range's serial interval
func (r *TrackNumberRange) Overlaps(other *TrackNumberRange) bool {
	if r.CodePair() != other.CodePair() {
		return false
	}
	return r.StartNumber <= other.EndNumber && other.StartNumber <= r.EndNumber
}

// Deactivate removes the range from the allocation rotation. The range
// record itself is retained.
func (r *TrackNumberRange) Deactivate() error {
	if !r.Active {
		return shared.ErrInvalidState
	}
	r.Active = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// TableName sets the table name for GORM
func (TrackNumberRange) TableName() string {
	return "einvoice_track_ranges"
}
