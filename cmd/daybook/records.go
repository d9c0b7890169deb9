package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaoscascade/daybook/pkg/records"
	"github.com/chaoscascade/daybook/pkg/routing"
)

var (
	contentFlag string
	tagsFlag    string
	fileFlag    string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage daily records",
	Long:  `Save, retrieve, list, and delete records addressed by date, category and subcategory.`,
}

// splitTags turns a comma-separated flag into a tag slice, or nil when the
// flag was not set at all so existing tags stay untouched.
func splitTags(cmd *cobra.Command) []string {
	if !cmd.Flags().Changed("tags") {
		return nil
	}
	tags := []string{}
	for _, tag := range strings.Split(tagsFlag, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// loadContent decodes the --content flag or --file payload. Content that is
// not valid JSON is stored as a plain string.
func loadContent() (any, error) {
	raw := contentFlag
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file: %w", err)
		}
		raw = string(data)
	}
	if raw == "" {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw, nil
	}
	return decoded, nil
}

var saveRecordCmd = &cobra.Command{
	Use:   "save [date] [category] [subcategory]",
	Short: "Save a record, creating or updating it in place",
	Long: `Save the record at (date, category, subcategory). An existing record at the
same address is replaced and its version bumped. Omitting --tags keeps the
existing tags; passing --tags "" clears them.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := loadContent()
		if err != nil {
			return err
		}

		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := router.Save(cmd.Context(), args[0], args[1], args[2], content, splitTags(cmd))
		if errors.Is(err, routing.ErrBackendUnavailable) {
			return fmt.Errorf("cannot save '%s/%s' here: the secondary store is unavailable on this host", args[1], args[2])
		}
		if err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		printRecord(rec)
		return nil
	},
}

var getRecordCmd = &cobra.Command{
	Use:   "get [date] [category] [subcategory]",
	Short: "Get the record at an exact address",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := router.GetOne(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("failed to get record: %w", err)
		}
		if rec == nil {
			fmt.Printf("No record at %s/%s/%s.\n", args[0], args[1], args[2])
			return nil
		}

		printRecord(*rec)
		return nil
	},
}

var listRecordsCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List records for a date, optionally narrowed to one category",
	Long: `List all records stored for a date. With --category the listing narrows to
that category; with --category and no date argument it spans all dates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		date := ""
		if len(args) == 1 {
			date = args[0]
		}
		if date == "" && category == "" {
			return errors.New("provide a date argument, --category, or both")
		}

		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		var recs []records.Record
		switch {
		case date != "" && category != "":
			recs, err = router.GetByCategory(cmd.Context(), date, category)
		case date != "":
			recs, err = router.GetByDate(cmd.Context(), date)
		default:
			recs, err = router.GetAllByCategory(cmd.Context(), category)
		}
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		printRecordList(recs)
		return nil
	},
}

var deleteRecordCmd = &cobra.Command{
	Use:   "delete [date] [category] [subcategory]",
	Short: "Delete the record at an exact address",
	Long:  `Delete the record at (date, category, subcategory). Deleting an absent record is a no-op.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		err = router.Delete(cmd.Context(), args[0], args[1], args[2])
		if errors.Is(err, routing.ErrBackendUnavailable) {
			return fmt.Errorf("cannot delete '%s/%s' here: the secondary store is unavailable on this host", args[1], args[2])
		}
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		fmt.Printf("Record at %s/%s/%s deleted.\n", args[0], args[1], args[2])
		return nil
	},
}

func initRecordsCmd() {
	saveRecordCmd.Flags().StringVar(&contentFlag, "content", "", "Record payload as a JSON document")
	saveRecordCmd.Flags().StringVar(&fileFlag, "file", "", "Read the record payload from a file instead of --content")
	saveRecordCmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated tags; omit to keep existing tags")

	listRecordsCmd.Flags().String("category", "", "Narrow the listing to one category")

	recordsCmd.AddCommand(saveRecordCmd, getRecordCmd, listRecordsCmd, deleteRecordCmd)
}
