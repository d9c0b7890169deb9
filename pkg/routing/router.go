package routing

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chaoscascade/daybook/pkg/records"
)

var (
	// ErrBackendUnavailable is returned for writes routed to the secondary
	// store when it is unreachable in the current runtime. Reads degrade to
	// empty results instead.
	ErrBackendUnavailable = errors.New("secondary backend unavailable")
)

// SecondaryQuery narrows a secondary-store listing without widening the
// boundary interface beyond four methods. Empty fields are unconstrained.
type SecondaryQuery struct {
	Category  string
	Term      string
	StartDate string
	EndDate   string
}

// Secondary is the narrow CRUD boundary the routing layer depends on. The
// adapter's internal schema is its own business.
type Secondary interface {
	Save(ctx context.Context, rec records.Record) error
	Get(ctx context.Context, date, category, subcategory string) (*records.Record, error)
	Delete(ctx context.Context, date, category, subcategory string) error
	Search(ctx context.Context, q SecondaryQuery) ([]records.Record, error)
}

// Probe reports whether the secondary backend is reachable. It runs at most
// once per process, under a context that bounds its duration.
type Probe func(ctx context.Context) bool

// probeTimeout bounds the one-time reachability check; on expiry the check
// fails closed and the secondary is treated as unavailable.
const probeTimeout = 3 * time.Second

// Router gives every caller one uniform store API regardless of host
// capability: each operation resolves its backend through the policy table,
// and secondary unavailability is masked (reads) or surfaced loudly (writes).
type Router struct {
	conn      *sql.DB
	policy    Policy
	secondary Secondary
	probe     Probe

	availableOnce sync.Once
	available     bool
}

// NewRouter wires a router over the primary connection. secondary and probe
// may be nil when the host has no secondary backend at all.
func NewRouter(conn *sql.DB, policy Policy, secondary Secondary, probe Probe) *Router {
	return &Router{
		conn:      conn,
		policy:    policy,
		secondary: secondary,
		probe:     probe,
	}
}

// secondaryAvailable resolves host capability once and caches the answer for
// the process lifetime. A restart is required to pick up a changed runtime.
func (r *Router) secondaryAvailable(ctx context.Context) bool {
	r.availableOnce.Do(func() {
		if r.secondary == nil || r.probe == nil {
			return
		}
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		r.available = r.probe(probeCtx)
	})
	return r.available
}

// Save routes an upsert by address.
func (r *Router) Save(ctx context.Context, date, category, subcategory string, content any, tags []string) (records.Record, error) {
	if r.policy.Resolve(category, subcategory) == BackendSecondary {
		if !r.secondaryAvailable(ctx) {
			return records.Record{}, ErrBackendUnavailable
		}
		rec := records.Record{
			Date:        date,
			Category:    category,
			Subcategory: subcategory,
			Content:     content,
			Tags:        tags,
			Metadata:    records.Metadata{UserID: records.DefaultUserID},
		}
		if err := r.secondary.Save(ctx, rec); err != nil {
			return records.Record{}, err
		}
		stored, err := r.secondary.Get(ctx, date, category, subcategory)
		if err != nil {
			return records.Record{}, err
		}
		if stored == nil {
			return rec, nil
		}
		return *stored, nil
	}

	return records.SaveRecord(ctx, r.conn, date, category, subcategory, content, tags)
}

// UpdateByID updates a record the caller already holds a reference to.
// Internal identifiers exist only in the primary store, so this path never
// routes to the secondary.
func (r *Router) UpdateByID(ctx context.Context, id uuid.UUID, content any, tags []string) (records.Record, error) {
	return records.UpdateRecordByID(ctx, r.conn, id, content, tags)
}

// GetOne routes an exact-address lookup. An unreachable secondary reads as
// an empty result, never a failure.
func (r *Router) GetOne(ctx context.Context, date, category, subcategory string) (*records.Record, error) {
	if r.policy.Resolve(category, subcategory) == BackendSecondary {
		if !r.secondaryAvailable(ctx) {
			return nil, nil
		}
		return r.secondary.Get(ctx, date, category, subcategory)
	}
	return records.GetRecord(ctx, r.conn, date, category, subcategory)
}

// GetByDate lists a date across all categories. Addresses without a category
// resolve to the primary store; the secondary's categories are listed through
// GetByCategory/GetAllByCategory instead.
func (r *Router) GetByDate(ctx context.Context, date string) ([]records.Record, error) {
	return records.RecordsByDate(ctx, r.conn, date)
}

// GetByCategory lists one category for one date.
func (r *Router) GetByCategory(ctx context.Context, date, category string) ([]records.Record, error) {
	if r.policy.Resolve(category, "") == BackendSecondary {
		if !r.secondaryAvailable(ctx) {
			return nil, nil
		}
		return r.secondary.Search(ctx, SecondaryQuery{Category: category, StartDate: date, EndDate: date})
	}
	return records.RecordsByCategory(ctx, r.conn, date, category)
}

// GetAllByCategory lists one category across all dates.
func (r *Router) GetAllByCategory(ctx context.Context, category string) ([]records.Record, error) {
	if r.policy.Resolve(category, "") == BackendSecondary {
		if !r.secondaryAvailable(ctx) {
			return nil, nil
		}
		return r.secondary.Search(ctx, SecondaryQuery{Category: category})
	}
	return records.AllRecordsByCategory(ctx, r.conn, category)
}

// Delete routes a delete by address. Deleting is a write: an unreachable
// secondary fails loudly rather than silently dropping the intent.
func (r *Router) Delete(ctx context.Context, date, category, subcategory string) error {
	if r.policy.Resolve(category, subcategory) == BackendSecondary {
		if !r.secondaryAvailable(ctx) {
			return ErrBackendUnavailable
		}
		return r.secondary.Delete(ctx, date, category, subcategory)
	}
	return records.DeleteRecord(ctx, r.conn, date, category, subcategory)
}

// BulkInsert always targets the primary store; the secondary's categories
// are not bulk-loaded through this API.
func (r *Router) BulkInsert(ctx context.Context, recs []records.Record) error {
	return records.BulkInsertRecords(ctx, r.conn, recs)
}

// SearchByTags searches the primary store only.
func (r *Router) SearchByTags(ctx context.Context, tags []string, dateRange *records.DateRange) ([]records.Record, error) {
	return records.SearchByTags(ctx, r.conn, tags, dateRange)
}

// SearchByContent searches the primary store only.
func (r *Router) SearchByContent(ctx context.Context, term, category string) ([]records.Record, error) {
	return records.SearchByContent(ctx, r.conn, term, category)
}

// GetDateRange scans the primary store only.
func (r *Router) GetDateRange(ctx context.Context, startDate, endDate, category string) ([]records.Record, error) {
	return records.RecordsInDateRange(ctx, r.conn, startDate, endDate, category)
}

// SecureOverwrite replaces the primary store contents wholesale.
func (r *Router) SecureOverwrite(ctx context.Context, replacements []records.Record) (int64, error) {
	return records.SecureOverwrite(ctx, r.conn, replacements)
}

// Tags lists the primary store's tag vocabulary.
func (r *Router) Tags(ctx context.Context) ([]records.Tag, error) {
	return records.ListTags(ctx, r.conn)
}
