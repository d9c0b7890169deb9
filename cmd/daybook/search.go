package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaoscascade/daybook/pkg/records"
)

var (
	searchCategoryFlag string
	searchStartFlag    string
	searchEndFlag      string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search records by tags, content, or date range",
}

var searchTagsCmd = &cobra.Command{
	Use:   "tags [tag,tag,...]",
	Short: "Find records carrying any of the given tags",
	Long: `Find records carrying at least one of the given tags, optionally
restricted to an inclusive date range with --start and --end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tags []string
		for _, tag := range strings.Split(args[0], ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		if len(tags) == 0 {
			return errors.New("at least one tag is required")
		}
		if (searchStartFlag == "") != (searchEndFlag == "") {
			return errors.New("--start and --end must be provided together")
		}

		var dateRange *records.DateRange
		if searchStartFlag != "" {
			dateRange = &records.DateRange{Start: searchStartFlag, End: searchEndFlag}
		}

		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		recs, err := router.SearchByTags(cmd.Context(), tags, dateRange)
		if err != nil {
			return fmt.Errorf("failed to search by tags: %w", err)
		}

		printRecordList(recs)
		return nil
	},
}

var searchContentCmd = &cobra.Command{
	Use:   "content [term]",
	Short: "Find records whose content contains a substring",
	Long:  `Find records whose content contains the term, case-insensitively. Use --category to narrow the scan.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		recs, err := router.SearchByContent(cmd.Context(), args[0], searchCategoryFlag)
		if err != nil {
			return fmt.Errorf("failed to search content: %w", err)
		}

		printRecordList(recs)
		return nil
	},
}

var searchRangeCmd = &cobra.Command{
	Use:   "range [start-date] [end-date]",
	Short: "List records between two dates inclusive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		recs, err := router.GetDateRange(cmd.Context(), args[0], args[1], searchCategoryFlag)
		if err != nil {
			return fmt.Errorf("failed to list date range: %w", err)
		}

		printRecordList(recs)
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag currently stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		tags, err := router.Tags(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		if len(tags) == 0 {
			fmt.Println("No tags stored.")
			return nil
		}
		for _, tag := range tags {
			fmt.Printf("%s (updated %s)\n", tag.Tag, formatTimestamp(tag.UpdatedAt))
		}
		return nil
	},
}

func initSearchCmd() {
	searchTagsCmd.Flags().StringVar(&searchStartFlag, "start", "", "Inclusive lower date bound (YYYY-MM-DD)")
	searchTagsCmd.Flags().StringVar(&searchEndFlag, "end", "", "Inclusive upper date bound (YYYY-MM-DD)")
	searchContentCmd.Flags().StringVar(&searchCategoryFlag, "category", "", "Narrow the search to one category")
	searchRangeCmd.Flags().StringVar(&searchCategoryFlag, "category", "", "Narrow the listing to one category")

	searchCmd.AddCommand(searchTagsCmd, searchContentCmd, searchRangeCmd)
}
