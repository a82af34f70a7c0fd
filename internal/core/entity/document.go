package entity

import (
	"context"
	"time"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: InventorySession.
type Document struct {
	BaseEntity

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// ParishID is the owning parish
	ParishID id.ID `db:"parish_id" json:"parishId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(parishID id.ID) Document {
	return Document{
		BaseEntity: NewBaseEntity(),
		Date:       time.Now().UTC(),
		ParishID:   parishID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.ParishID) {
		return apperror.NewValidation("parish is required").
			WithDetail("field", "parishId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}
