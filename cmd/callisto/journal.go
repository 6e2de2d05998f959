package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatops-hq/callisto/pkg/cli"
	"chatops-hq/callisto/pkg/journal"
)

var journalFlags struct {
	limit  int
	output string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent sweep activity from the audit journal",
	Long: `Read the most recent revocation actions from the audit journal,
newest first.

Examples:
  callisto journal
  callisto journal --limit 20 --output json`,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().IntVarP(&journalFlags.limit, "limit", "n", 50, "maximum number of actions to show")
	journalCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "text", "output format (text, json)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.Journal.Enabled {
		return cli.NewConfigError("journal.enabled", "journaling is disabled")
	}

	jrnl, err := journal.NewSQLiteJournal(journal.SQLiteJournalConfig{
		Path: cfg.Journal.Path,
	})
	if err != nil {
		return cli.NewCommandError("journal", err)
	}
	defer jrnl.Close()

	actions, err := jrnl.RecentActions(cmd.Context(), journalFlags.limit)
	if err != nil {
		return cli.NewCommandError("journal", err)
	}

	if journalFlags.output == string(cli.FormatJSON) {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), actions)
	}

	if len(actions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no journal entries")
		return nil
	}

	for _, action := range actions {
		detail := ""
		if action.Detail != "" {
			detail = " " + action.Detail
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s user=%s cycle=%s%s\n",
			action.RecordedAt.Format("2006-01-02 15:04:05"),
			action.Outcome, action.UserID, action.CycleID, detail)
	}
	return nil
}
