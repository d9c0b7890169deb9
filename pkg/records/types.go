package records

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// DefaultUserID stamps records whose caller did not supply an owner. The
// store is single-user; the field exists for forward compatibility with
// multi-profile exports.
const DefaultUserID = "default-user"

// Categories handled by the primary store.
const (
	CategoryCalendar = "calendar"
	CategoryJournal  = "journal"
	CategoryTracker  = "tracker"
	CategoryDaily    = "daily"
	CategoryUser     = "user"
)

// Categories reserved for the secondary store.
const (
	CategoryMedicalTimeline     = "medical-timeline"
	CategoryMedicalProviders    = "medical-providers"
	CategoryMedicalAppointments = "medical-appointments"
	CategoryMedicalDocuments    = "medical-documents"
)

// Metadata is the bookkeeping block attached to every record. CreatedAt is
// immutable once set; UpdatedAt refreshes on every write; Version starts at 1
// and increments by 1 per update to the same address.
type Metadata struct {
	CreatedAt float64 `json:"created_at"`
	UpdatedAt float64 `json:"updated_at"`
	UserID    string  `json:"user_id"`
	Version   int64   `json:"version"`
}

// Record is the atomic unit of storage: one structured content payload at a
// (date, category, subcategory) address. Content is opaque to the store.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Content     any       `json:"content"`
	Tags        []string  `json:"tags,omitempty"`
	Metadata    Metadata  `json:"metadata"`
}

// Tag represents a label attached to one or more records.
type Tag struct {
	Tag       string  `json:"tag"`
	CreatedAt float64 `json:"created_at"`
	UpdatedAt float64 `json:"updated_at"`
}

// DateRange bounds a search inclusively on both ends.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
