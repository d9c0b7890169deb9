package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaoscascade/daybook/pkg/decoy"
	"github.com/chaoscascade/daybook/pkg/records"
)

var (
	wipeDaysFlag  int
	wipeYesFlag   bool
	wipeEmptyFlag bool
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Permanently replace the entire store with generated plausible data",
	Long: `Permanently destroys every record, tag, and tag link in the store and
replaces them with a generated history of plausible tracker data, then
truncates the WAL so the old contents do not linger in the journal.

There is no undo and no backup. Use --empty to wipe without replacement
data, leaving a bare store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeYesFlag {
			fmt.Print("This permanently destroys all stored records. Type 'wipe' to continue: ")
			reader := bufio.NewReader(os.Stdin)
			answer, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			if strings.TrimSpace(answer) != "wipe" {
				return errors.New("aborted")
			}
		}

		var replacements []records.Record
		if !wipeEmptyFlag {
			replacements = decoy.NewGenerator().GenerateDays(wipeDaysFlag)
		}

		router, cleanup, err := openRouter()
		if err != nil {
			return err
		}
		defer cleanup()

		count, err := router.SecureOverwrite(cmd.Context(), replacements)
		if err != nil {
			return fmt.Errorf("secure overwrite failed: %w", err)
		}

		if wipeEmptyFlag {
			fmt.Println("Store wiped; no replacement data written.")
		} else {
			fmt.Printf("Store overwritten: %d replacement records covering the last %d days.\n", count, wipeDaysFlag)
		}
		return nil
	},
}

func initWipeCmd() {
	wipeCmd.Flags().IntVar(&wipeDaysFlag, "days", 30, "Days of replacement history to generate")
	wipeCmd.Flags().BoolVar(&wipeYesFlag, "yes", false, "Skip the interactive confirmation")
	wipeCmd.Flags().BoolVar(&wipeEmptyFlag, "empty", false, "Wipe without writing replacement data")
}
