package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chaoscascade/daybook/pkg/decoy"
	"github.com/chaoscascade/daybook/pkg/routing"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Daybook MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_daybook"), nil
}

// parseTags accepts either a JSON array or a comma-separated list. A missing
// argument yields nil, which downstream means "keep existing tags".
func parseTags(raw any) ([]string, error) {
	str, ok := raw.(string)
	if !ok || str == "" {
		return nil, nil
	}

	if strings.HasPrefix(strings.TrimSpace(str), "[") {
		var tags []string
		if err := json.Unmarshal([]byte(str), &tags); err != nil {
			return nil, fmt.Errorf("tags must be a JSON string array or comma-separated list: %w", err)
		}
		return tags, nil
	}

	var tags []string
	for _, t := range strings.Split(str, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags, nil
}

// parseContent decodes a JSON content argument; a bare string that is not
// valid JSON is kept as-is so callers can store plain notes.
func parseContent(raw any) any {
	str, ok := raw.(string)
	if !ok || str == "" {
		return nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(str), &decoded); err != nil {
		return str
	}
	return decoded
}

// RegisterSaveRecordTool registers the save_record tool.
func RegisterSaveRecordTool(s *server.MCPServer, router *routing.Router) {
	saveTool := mcp.NewTool("save_record",
		mcp.WithDescription("Saves a record at (date, category, subcategory), creating it or bumping its version in place."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Record date in YYYY-MM-DD form.")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Top-level category, e.g. tracker or journal.")),
		mcp.WithString("subcategory", mcp.Required(), mcp.Description("Subcategory within the category, e.g. sleep.")),
		mcp.WithString("content", mcp.Description("Record payload as a JSON document.")),
		mcp.WithString("tags", mcp.Description("Tags as a JSON array or comma-separated list. Omit to keep existing tags.")),
	)
	s.AddTool(saveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, dateOk := request.Params.Arguments["date"].(string)
		category, catOk := request.Params.Arguments["category"].(string)
		subcategory, subOk := request.Params.Arguments["subcategory"].(string)
		if !dateOk || date == "" || !catOk || category == "" || !subOk || subcategory == "" {
			return mcp.NewToolResultError("'date', 'category' and 'subcategory' are required non-empty strings."), nil
		}

		tags, err := parseTags(request.Params.Arguments["tags"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content := parseContent(request.Params.Arguments["content"])

		rec, err := router.Save(ctx, date, category, subcategory, content, tags)
		if err != nil {
			if errors.Is(err, routing.ErrBackendUnavailable) {
				return mcp.NewToolResultError(fmt.Sprintf("Cannot save to '%s/%s': the secondary store is unavailable on this host.", category, subcategory)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save record: %v", err)), nil
		}

		jsonResult, err := json.Marshal(rec)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize record to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterGetRecordTool registers the get_record tool.
func RegisterGetRecordTool(s *server.MCPServer, router *routing.Router) {
	getTool := mcp.NewTool("get_record",
		mcp.WithDescription("Retrieves the single record at an exact (date, category, subcategory) address."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Record date in YYYY-MM-DD form.")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Top-level category.")),
		mcp.WithString("subcategory", mcp.Required(), mcp.Description("Subcategory within the category.")),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, dateOk := request.Params.Arguments["date"].(string)
		category, catOk := request.Params.Arguments["category"].(string)
		subcategory, subOk := request.Params.Arguments["subcategory"].(string)
		if !dateOk || date == "" || !catOk || category == "" || !subOk || subcategory == "" {
			return mcp.NewToolResultError("'date', 'category' and 'subcategory' are required non-empty strings."), nil
		}

		rec, err := router.GetOne(ctx, date, category, subcategory)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to retrieve record: %v", err)), nil
		}
		if rec == nil {
			return mcp.NewToolResultText("null"), nil
		}

		jsonResult, err := json.Marshal(rec)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize record to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterListRecordsTool registers the list_records tool.
func RegisterListRecordsTool(s *server.MCPServer, router *routing.Router) {
	listTool := mcp.NewTool("list_records",
		mcp.WithDescription("Lists records for a date, a category on a date, or a category across all dates."),
		mcp.WithString("date", mcp.Description("Record date in YYYY-MM-DD form. Omit to list a category across all dates.")),
		mcp.WithString("category", mcp.Description("Restrict the listing to one category.")),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, _ := request.Params.Arguments["date"].(string)
		category, _ := request.Params.Arguments["category"].(string)

		if date == "" && category == "" {
			return mcp.NewToolResultError("Provide 'date', 'category', or both."), nil
		}

		var (
			recs any
			err  error
		)
		switch {
		case date != "" && category != "":
			recs, err = router.GetByCategory(ctx, date, category)
		case date != "":
			recs, err = router.GetByDate(ctx, date)
		default:
			recs, err = router.GetAllByCategory(ctx, category)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list records: %v", err)), nil
		}

		jsonResult, err := json.Marshal(recs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize records to JSON: %v", err)), nil
		}
		if string(jsonResult) == "null" {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterDeleteRecordTool registers the delete_record tool.
func RegisterDeleteRecordTool(s *server.MCPServer, router *routing.Router) {
	deleteTool := mcp.NewTool("delete_record",
		mcp.WithDescription("Deletes the record at an exact (date, category, subcategory) address. Deleting an absent record is a no-op."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Record date in YYYY-MM-DD form.")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Top-level category.")),
		mcp.WithString("subcategory", mcp.Required(), mcp.Description("Subcategory within the category.")),
	)
	s.AddTool(deleteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, dateOk := request.Params.Arguments["date"].(string)
		category, catOk := request.Params.Arguments["category"].(string)
		subcategory, subOk := request.Params.Arguments["subcategory"].(string)
		if !dateOk || date == "" || !catOk || category == "" || !subOk || subcategory == "" {
			return mcp.NewToolResultError("'date', 'category' and 'subcategory' are required non-empty strings."), nil
		}

		if err := router.Delete(ctx, date, category, subcategory); err != nil {
			if errors.Is(err, routing.ErrBackendUnavailable) {
				return mcp.NewToolResultError(fmt.Sprintf("Cannot delete from '%s/%s': the secondary store is unavailable on this host.", category, subcategory)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete record: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Record at %s/%s/%s deleted.", date, category, subcategory)), nil
	})
}

// RegisterSearchTagsTool registers the search_tags tool.
func RegisterSearchTagsTool(s *server.MCPServer, router *routing.Router) {
	searchTool := mcp.NewTool("search_tags",
		mcp.WithDescription("Finds records carrying any of the given tags, optionally within an inclusive date range."),
		mcp.WithString("tags", mcp.Required(), mcp.Description("Tags as a JSON array or comma-separated list. A record matches if it carries at least one.")),
		mcp.WithString("start_date", mcp.Description("Inclusive lower bound in YYYY-MM-DD form. Requires end_date.")),
		mcp.WithString("end_date", mcp.Description("Inclusive upper bound in YYYY-MM-DD form. Requires start_date.")),
	)
	s.AddTool(searchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := parseTags(request.Params.Arguments["tags"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(tags) == 0 {
			return mcp.NewToolResultError("'tags' parameter is required and must name at least one tag."), nil
		}

		startDate, _ := request.Params.Arguments["start_date"].(string)
		endDate, _ := request.Params.Arguments["end_date"].(string)
		if (startDate == "") != (endDate == "") {
			return mcp.NewToolResultError("'start_date' and 'end_date' must be provided together."), nil
		}

		dateRange := routerDateRange(startDate, endDate)
		recs, err := router.SearchByTags(ctx, tags, dateRange)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search by tags: %v", err)), nil
		}
		return recordsResult(recs)
	})
}

// RegisterSearchContentTool registers the search_content tool.
func RegisterSearchContentTool(s *server.MCPServer, router *routing.Router) {
	searchTool := mcp.NewTool("search_content",
		mcp.WithDescription("Finds records whose content contains a case-insensitive substring, optionally within one category."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Substring to look for in record content.")),
		mcp.WithString("category", mcp.Description("Restrict the search to one category.")),
	)
	s.AddTool(searchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, termOk := request.Params.Arguments["term"].(string)
		if !termOk || term == "" {
			return mcp.NewToolResultError("'term' parameter is required and must be a non-empty string."), nil
		}
		category, _ := request.Params.Arguments["category"].(string)

		recs, err := router.SearchByContent(ctx, term, category)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search content: %v", err)), nil
		}
		return recordsResult(recs)
	})
}

// RegisterDateRangeTool registers the date_range tool.
func RegisterDateRangeTool(s *server.MCPServer, router *routing.Router) {
	rangeTool := mcp.NewTool("date_range",
		mcp.WithDescription("Lists records between two dates inclusive, optionally within one category."),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Inclusive lower bound in YYYY-MM-DD form.")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Inclusive upper bound in YYYY-MM-DD form.")),
		mcp.WithString("category", mcp.Description("Restrict the listing to one category.")),
	)
	s.AddTool(rangeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startDate, startOk := request.Params.Arguments["start_date"].(string)
		endDate, endOk := request.Params.Arguments["end_date"].(string)
		if !startOk || startDate == "" || !endOk || endDate == "" {
			return mcp.NewToolResultError("'start_date' and 'end_date' are required non-empty strings."), nil
		}
		category, _ := request.Params.Arguments["category"].(string)

		recs, err := router.GetDateRange(ctx, startDate, endDate, category)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list date range: %v", err)), nil
		}
		return recordsResult(recs)
	})
}

// RegisterListTagsTool registers the list_tags tool.
func RegisterListTagsTool(s *server.MCPServer, router *routing.Router) {
	listTool := mcp.NewTool("list_tags",
		mcp.WithDescription("Lists every tag currently stored."),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := router.Tags(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tags: %v", err)), nil
		}
		if len(tags) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		jsonResult, err := json.Marshal(tags)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize tags to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterSecureOverwriteTool registers the secure_overwrite tool.
func RegisterSecureOverwriteTool(s *server.MCPServer, router *routing.Router) {
	overwriteTool := mcp.NewTool("secure_overwrite",
		mcp.WithDescription("DESTRUCTIVE: permanently replaces the entire store with generated plausible tracker data. There is no undo."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true. Guards against accidental invocation.")),
		mcp.WithNumber("days_back", mcp.Description("How many days of replacement history to generate. Defaults to 30.")),
	)
	s.AddTool(overwriteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		confirm, ok := request.Params.Arguments["confirm"].(bool)
		if !ok || !confirm {
			return mcp.NewToolResultError("Refusing to overwrite: set 'confirm' to true to proceed."), nil
		}

		daysBack := 30
		if n, ok := request.Params.Arguments["days_back"].(float64); ok && n > 0 {
			daysBack = int(n)
		}

		replacements := decoy.NewGenerator().GenerateDays(daysBack)
		count, err := router.SecureOverwrite(ctx, replacements)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Secure overwrite failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Store overwritten: %d replacement records covering the last %d days.", count, daysBack)), nil
	})
}
