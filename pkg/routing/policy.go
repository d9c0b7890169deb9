package routing

import (
	"github.com/chaoscascade/daybook/pkg/records"
)

// Backend identifies which store a routed operation targets.
type Backend int

const (
	BackendPrimary Backend = iota
	BackendSecondary
)

func (b Backend) String() string {
	if b == BackendSecondary {
		return "secondary"
	}
	return "primary"
}

// Policy is the static routing table mapping address shape to a backend. It
// is plain configuration data injected at Router construction; it never
// changes at runtime and never depends on record content.
type Policy struct {
	Categories    map[string]Backend
	Subcategories map[string]Backend
	Default       Backend
}

// Resolve returns the backend for an address. A subcategory-level entry
// takes precedence over a category-level entry.
func (p Policy) Resolve(category, subcategory string) Backend {
	if b, ok := p.Subcategories[subcategory]; ok {
		return b
	}
	if b, ok := p.Categories[category]; ok {
		return b
	}
	return p.Default
}

// DefaultPolicy is the shipped routing configuration: daily-life categories
// stay in the embedded store, the high-volume medical datasets go to the
// secondary store, and a handful of named subcategories override their
// category.
func DefaultPolicy() Policy {
	return Policy{
		Categories: map[string]Backend{
			records.CategoryCalendar: BackendPrimary,
			records.CategoryJournal:  BackendPrimary,
			records.CategoryTracker:  BackendPrimary,
			records.CategoryDaily:    BackendPrimary,
			records.CategoryUser:     BackendPrimary,

			records.CategoryMedicalTimeline:     BackendSecondary,
			records.CategoryMedicalProviders:    BackendSecondary,
			records.CategoryMedicalAppointments: BackendSecondary,
			records.CategoryMedicalDocuments:    BackendSecondary,
		},
		Subcategories: map[string]Backend{
			"medical-events": BackendSecondary,
			"providers":      BackendSecondary,
			"appointments":   BackendSecondary,
			"demographics":   BackendPrimary,
			"settings":       BackendPrimary,
		},
		Default: BackendPrimary,
	}
}
