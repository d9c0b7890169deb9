package mcp

import (
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/chaoscascade/daybook/pkg/records"
)

// routerDateRange builds an optional range filter; both bounds empty means
// no filter.
func routerDateRange(startDate, endDate string) *records.DateRange {
	if startDate == "" && endDate == "" {
		return nil
	}
	return &records.DateRange{Start: startDate, End: endDate}
}

// recordsResult serializes a record slice, normalizing an empty result to a
// JSON array rather than null.
func recordsResult(recs []records.Record) (*mcpgo.CallToolResult, error) {
	if len(recs) == 0 {
		return mcpgo.NewToolResultText("[]"), nil
	}
	jsonResult, err := json.Marshal(recs)
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("Failed to serialize records to JSON: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(jsonResult)), nil
}
