package routing

import (
	"testing"

	"github.com/chaoscascade/daybook/pkg/records"
)

func TestResolveCategoryDefaults(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		category, subcategory string
		want                  Backend
	}{
		{records.CategoryCalendar, "events", BackendPrimary},
		{records.CategoryJournal, "evening", BackendPrimary},
		{records.CategoryTracker, "sleep", BackendPrimary},
		{records.CategoryDaily, "notes", BackendPrimary},
		{records.CategoryMedicalTimeline, "2026", BackendSecondary},
		{records.CategoryMedicalProviders, "specialists", BackendSecondary},
		{records.CategoryMedicalAppointments, "upcoming", BackendSecondary},
		{records.CategoryMedicalDocuments, "scans", BackendSecondary},
		// Unknown categories fall through to the default.
		{"garden-log", "tomatoes", BackendPrimary},
	}

	for _, c := range cases {
		if got := policy.Resolve(c.category, c.subcategory); got != c.want {
			t.Errorf("Resolve(%s, %s) = %s, want %s", c.category, c.subcategory, got, c.want)
		}
	}
}

func TestResolveSubcategoryOverridesCategory(t *testing.T) {
	policy := DefaultPolicy()

	// A secondary-bound subcategory pulls a primary category over.
	if got := policy.Resolve(records.CategoryUser, "medical-events"); got != BackendSecondary {
		t.Errorf("medical-events subcategory must route secondary, got %s", got)
	}
	if got := policy.Resolve(records.CategoryDaily, "appointments"); got != BackendSecondary {
		t.Errorf("appointments subcategory must route secondary, got %s", got)
	}

	// And a primary-bound subcategory pins a secondary category down.
	if got := policy.Resolve(records.CategoryMedicalTimeline, "demographics"); got != BackendPrimary {
		t.Errorf("demographics subcategory must route primary, got %s", got)
	}
	if got := policy.Resolve(records.CategoryMedicalProviders, "settings"); got != BackendPrimary {
		t.Errorf("settings subcategory must route primary, got %s", got)
	}
}
