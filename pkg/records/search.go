package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SearchByTags returns every record whose tag list intersects queryTags
// (any-of match), optionally restricted to an inclusive date range. Tag
// comparison is exact; tags are stored as the caller wrote them.
func SearchByTags(ctx context.Context, conn *sql.DB, queryTags []string, dateRange *DateRange) ([]Record, error) {
	if len(queryTags) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(queryTags)-1) + "?"

	query := fmt.Sprintf(`
	SELECT DISTINCT r.id, r.date, r.category, r.subcategory, r.content, r.user_id, r.version, r.created_at, r.updated_at
	FROM records r
	JOIN record_tags rt ON r.id = rt.record_id
	WHERE rt.tag IN (%s)`, placeholders)

	args := make([]any, 0, len(queryTags)+2)
	for _, tag := range queryTags {
		args = append(args, tag)
	}

	if dateRange != nil {
		query += `
	AND r.date >= ? AND r.date <= ?`
		args = append(args, dateRange.Start, dateRange.End)
	}

	query += `
	ORDER BY r.date, r.category, r.subcategory`

	results, err := queryRecords(ctx, conn, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute tag search: %w", err)
	}
	return results, nil
}

// SearchByContent returns every record whose serialized content contains term
// as a case-insensitive substring, optionally restricted to one category.
// This is a full table scan; there is no content index and cost is linear in
// store size.
func SearchByContent(ctx context.Context, conn *sql.DB, term, category string) ([]Record, error) {
	query := `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE instr(lower(content), lower(?)) > 0`

	args := []any{term}
	if category != "" {
		query += `
	AND category = ?`
		args = append(args, category)
	}

	query += `
	ORDER BY date, category, subcategory`

	results, err := queryRecords(ctx, conn, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute content search: %w", err)
	}
	return results, nil
}

// RecordsInDateRange is an inclusive-bounds range scan by date, optionally
// filtered by category.
func RecordsInDateRange(ctx context.Context, conn *sql.DB, startDate, endDate, category string) ([]Record, error) {
	query := `
	SELECT id, date, category, subcategory, content, user_id, version, created_at, updated_at
	FROM records
	WHERE date >= ? AND date <= ?`

	args := []any{startDate, endDate}
	if category != "" {
		query += `
	AND category = ?`
		args = append(args, category)
	}

	query += `
	ORDER BY date, category, subcategory`

	results, err := queryRecords(ctx, conn, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute date range scan: %w", err)
	}
	return results, nil
}
