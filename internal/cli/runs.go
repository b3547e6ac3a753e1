package cli

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TWRT/board-sync/internal/config"
	"github.com/TWRT/board-sync/internal/repository"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show recent runs recorded in the ledger",
	Long: `Without arguments, lists the most recent runs. With a run id,
shows what happened to each item during that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "How many runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := repository.InitDB(config.LedgerPath())
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		return showRun(db, args[0])
	}

	runs, err := repository.NewRunRepository(db).GetRuns(runsLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-8s  %-9s  %-14s  created=%d updated=%d relocated=%d deleted=%d skipped=%d\n",
			run.Id,
			run.Direction,
			run.Status,
			humanize.Time(run.StartedAt),
			run.CreatedCount,
			run.UpdatedCount,
			run.RelocatedCount,
			run.DeletedCount,
			run.SkippedCount,
		)
	}
	return nil
}

func showRun(db *sql.DB, id string) error {
	run, err := repository.NewRunRepository(db).GetRun(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s run %s, started %s, board %d of %s\n",
		run.Direction, run.Status, humanize.Time(run.StartedAt), run.BoardNumber, run.BoardOwner)
	if run.FinishedAt != nil {
		fmt.Printf("took %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	if run.ErrorMessage != nil && *run.ErrorMessage != "" {
		fmt.Printf("error: %s\n", *run.ErrorMessage)
	}

	events, err := repository.NewItemEventRepository(db).GetEvents(id)
	if err != nil {
		return err
	}

	for _, event := range events {
		line := fmt.Sprintf("  %-9s #%d %s", event.Action, event.Identifier, event.Title)
		if event.Detail != "" {
			line += " (" + event.Detail + ")"
		}
		fmt.Println(line)
	}
	return nil
}
